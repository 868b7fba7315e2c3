package locations

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"petkimlik/internal/platform/textnorm"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrInvalidLocation = errors.New("invalid location")
	ErrBadHeader       = errors.New("csv header must contain il and ilce columns")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProvinces(ctx context.Context) ([]Province, error) {
	return s.repo.ListProvinces(ctx)
}

func (s *Service) ListDistricts(ctx context.Context, provinceID int64) ([]District, error) {
	if _, err := s.repo.GetProvince(ctx, provinceID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.ListDistricts(ctx, provinceID)
}

func (s *Service) ListNeighborhoods(ctx context.Context, districtID int64) ([]Neighborhood, error) {
	if _, err := s.repo.GetDistrict(ctx, districtID); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.ListNeighborhoods(ctx, districtID)
}

// Names resuelve nombres legibles para snapshots (direcciones de envío, perfiles).
func (s *Service) Names(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) (province, district, neighborhood string, err error) {
	p, err := s.repo.GetProvince(ctx, provinceID)
	if err != nil {
		return "", "", "", ErrInvalidLocation
	}
	d, err := s.repo.GetDistrict(ctx, districtID)
	if err != nil {
		return "", "", "", ErrInvalidLocation
	}
	if neighborhoodID != nil {
		n, err := s.repo.GetNeighborhood(ctx, *neighborhoodID)
		if err != nil {
			return "", "", "", ErrInvalidLocation
		}
		neighborhood = n.Name
	}
	return p.Name, d.Name, neighborhood, nil
}

// ValidatePair exige que el distrito pertenezca a la provincia (y el barrio al distrito, si viene).
func (s *Service) ValidatePair(ctx context.Context, provinceID, districtID int64, neighborhoodID *int64) error {
	if provinceID <= 0 || districtID <= 0 {
		return ErrInvalidLocation
	}
	d, err := s.repo.GetDistrict(ctx, districtID)
	if err != nil || d.ProvinceID != provinceID {
		return ErrInvalidLocation
	}
	if neighborhoodID != nil {
		n, err := s.repo.GetNeighborhood(ctx, *neighborhoodID)
		if err != nil || n.DistrictID != districtID {
			return ErrInvalidLocation
		}
	}
	return nil
}

// ImportCSV carga un CSV con cabecera `il,ilce` (opcional `mahalle`).
// Las filas incompletas se cuentan como skipped y se reportan en Lines.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, dryRun bool) (ImportStats, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ImportStats{}, ErrBadHeader
		}
		return ImportStats{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := indexHeader(header)
	ilIdx, okIl := cols["il"]
	ilceIdx, okIlce := cols["ilce"]
	if !okIl || !okIlce {
		return ImportStats{}, ErrBadHeader
	}
	mahIdx, hasMah := cols["mahalle"]

	var (
		rows    []ImportRow
		skipped []string
		line    = 1
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return ImportStats{}, fmt.Errorf("read csv line %d: %w", line, err)
		}

		row := ImportRow{
			Province: NormalizeName(field(rec, ilIdx)),
			District: NormalizeName(field(rec, ilceIdx)),
		}
		if hasMah {
			row.Neighborhood = NormalizeName(field(rec, mahIdx))
		}
		if row.Province == "" && row.District == "" && row.Neighborhood == "" {
			continue
		}
		if row.Province == "" || row.District == "" {
			skipped = append(skipped, fmt.Sprintf("line %d: skipped (il/ilce empty)", line))
			continue
		}
		rows = append(rows, row)
	}

	stats, err := s.repo.Import(ctx, rows, dryRun)
	if err != nil {
		return ImportStats{}, err
	}
	stats.Skipped += len(skipped)
	stats.Lines = append(skipped, stats.Lines...)
	return stats, nil
}

// NormalizeName aplica trim, colapsa espacios y title-case turco
// ("İSTANBUL" -> "İstanbul", "ŞANLIURFA" -> "Şanlıurfa").
func NormalizeName(s string) string {
	return textnorm.TitleTR(s)
}

func indexHeader(header []string) map[string]int {
	out := map[string]int{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		h = strings.ReplaceAll(h, "ç", "c")
		if _, dup := out[h]; !dup {
			out[h] = i
		}
	}
	return out
}

func field(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}
