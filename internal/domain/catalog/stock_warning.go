package catalog

import (
	"context"
	"fmt"
	"strings"

	"petkimlik/internal/ports/notify"
)

type StockWarningResult struct {
	Products []Product
	Sent     bool
}

// StockWarning manda al admin el resumen de productos con stock bajo.
// Sin productos bajos no se manda nada.
func (s *Service) StockWarning(ctx context.Context, mailer notify.Mailer, adminEmail string, override int) (StockWarningResult, error) {
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" {
		return StockWarningResult{}, fmt.Errorf("stock warning: admin email not configured: %w", ErrInvalidInput)
	}

	low, err := s.LowStock(ctx, override)
	if err != nil {
		return StockWarningResult{}, err
	}
	if len(low) == 0 {
		return StockWarningResult{}, nil
	}

	if err := mailer.Send(ctx, notify.Message{
		To:      []string{adminEmail},
		Subject: fmt.Sprintf("Stok uyarısı: %d ürün", len(low)),
		Body:    StockWarningBody(low),
	}); err != nil {
		return StockWarningResult{Products: low}, err
	}
	return StockWarningResult{Products: low, Sent: true}, nil
}

func StockWarningBody(items []Product) string {
	var b strings.Builder
	b.WriteString("Aşağıdaki ürünlerin stoğu azaldı:\n\n")
	for _, p := range items {
		fmt.Fprintf(&b, "- %s (%s): %d adet (eşik %d)\n", p.Name, p.Slug, p.Stock, p.LowStockThreshold)
	}
	return b.String()
}
