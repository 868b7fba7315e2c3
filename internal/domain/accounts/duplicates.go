package accounts

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// FixReport es el resultado de los fixers de duplicados. Lines sirve tanto para
// la vista previa del dry-run como para el log de lo aplicado.
type FixReport struct {
	Groups  int
	Updated int
	Cleared int
	DryRun  bool
	Lines   []string
}

// FixDuplicateEmails agrupa usuarios por email normalizado. Se queda la cuenta más
// antigua (empate: último login más reciente); el resto se desactiva y su email se
// reescribe a dup-<id8>+<local>@<dominio>. También pasa a minúsculas los emails que
// no lo estaban.
func (s *Service) FixDuplicateEmails(ctx context.Context, dryRun bool) (FixReport, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return FixReport{}, err
	}

	groups := map[string][]User{}
	for _, u := range users {
		key, ok := NormalizeEmail(u.Email)
		if !ok {
			key = strings.ToLower(strings.TrimSpace(u.Email))
		}
		groups[key] = append(groups[key], u)
	}

	rep := FixReport{DryRun: dryRun}
	now := s.now()

	for _, key := range sortedKeys(groups) {
		members := groups[key]
		sortKeepers(members)
		keeper, losers := members[0], members[1:]

		if len(losers) > 0 {
			rep.Groups++
		}

		// Primero los perdedores: liberan el email antes de normalizar al ganador.
		for _, u := range losers {
			newEmail := duplicateEmail(u.ID, key)
			rep.Lines = append(rep.Lines, fmt.Sprintf("email %s: user %s -> %s (deactivated, keeper %s)", key, u.ID, newEmail, keeper.ID))
			rep.Updated++
			if dryRun {
				continue
			}
			u.Email = newEmail
			u.IsActive = false
			u.UpdatedAt = now
			if err := s.repo.Update(ctx, u); err != nil {
				return rep, fmt.Errorf("update user %s: %w", u.ID, err)
			}
		}

		if keeper.Email != key {
			rep.Lines = append(rep.Lines, fmt.Sprintf("email %q: user %s normalized -> %s", keeper.Email, keeper.ID, key))
			rep.Updated++
			if dryRun {
				continue
			}
			keeper.Email = key
			keeper.UpdatedAt = now
			if err := s.repo.Update(ctx, keeper); err != nil {
				return rep, fmt.Errorf("update user %s: %w", keeper.ID, err)
			}
		}
	}
	return rep, nil
}

// FixDuplicatePhones normaliza teléfonos a E.164. Los no parseables se vacían; en
// cada grupo duplicado se queda la cuenta más antigua y al resto se le vacía el
// teléfono (la cuenta sigue activa).
func (s *Service) FixDuplicatePhones(ctx context.Context, dryRun bool) (FixReport, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return FixReport{}, err
	}

	rep := FixReport{DryRun: dryRun}
	now := s.now()

	groups := map[string][]User{}
	for _, u := range users {
		if u.Phone == nil || strings.TrimSpace(*u.Phone) == "" {
			continue
		}
		norm, ok := NormalizePhone(*u.Phone)
		if !ok {
			rep.Lines = append(rep.Lines, fmt.Sprintf("phone %q: user %s unparsable -> cleared", *u.Phone, u.ID))
			rep.Cleared++
			if !dryRun {
				u.Phone = nil
				u.UpdatedAt = now
				if err := s.repo.Update(ctx, u); err != nil {
					return rep, fmt.Errorf("update user %s: %w", u.ID, err)
				}
			}
			continue
		}
		groups[norm] = append(groups[norm], u)
	}

	for _, key := range sortedKeys(groups) {
		members := groups[key]
		sortKeepers(members)
		keeper, losers := members[0], members[1:]

		if len(losers) > 0 {
			rep.Groups++
		}

		for _, u := range losers {
			rep.Lines = append(rep.Lines, fmt.Sprintf("phone %s: user %s cleared (keeper %s)", key, u.ID, keeper.ID))
			rep.Cleared++
			if dryRun {
				continue
			}
			u.Phone = nil
			u.UpdatedAt = now
			if err := s.repo.Update(ctx, u); err != nil {
				return rep, fmt.Errorf("update user %s: %w", u.ID, err)
			}
		}

		if *keeper.Phone != key {
			rep.Lines = append(rep.Lines, fmt.Sprintf("phone %q: user %s normalized -> %s", *keeper.Phone, keeper.ID, key))
			rep.Updated++
			if dryRun {
				continue
			}
			k := key
			keeper.Phone = &k
			keeper.UpdatedAt = now
			if err := s.repo.Update(ctx, keeper); err != nil {
				return rep, fmt.Errorf("update user %s: %w", keeper.ID, err)
			}
		}
	}
	return rep, nil
}

// sortKeepers: el primero es el que se conserva.
func sortKeepers(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := users[i], users[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		switch {
		case a.LastLoginAt != nil && b.LastLoginAt != nil:
			if !a.LastLoginAt.Equal(*b.LastLoginAt) {
				return a.LastLoginAt.After(*b.LastLoginAt)
			}
		case a.LastLoginAt != nil:
			return true
		case b.LastLoginAt != nil:
			return false
		}
		return a.ID < b.ID
	})
}

func duplicateEmail(userID, email string) string {
	short := userID
	if len(short) > 8 {
		short = short[:8]
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return "dup-" + short + "+" + email + "@invalid.local"
	}
	return "dup-" + short + "+" + local + "@" + domain
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
