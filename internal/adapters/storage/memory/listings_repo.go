package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"petkimlik/internal/domain/listings"
)

type listingsRepo struct {
	mu       sync.RWMutex
	byID     map[string]listings.Listing
	packages map[string]listings.CreditPackage
	txs      []listings.CreditTransaction
}

func NewListingsRepo() listings.Repository {
	return &listingsRepo{
		byID:     map[string]listings.Listing{},
		packages: map[string]listings.CreditPackage{},
	}
}

func (r *listingsRepo) Create(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[l.ID] = l
	return nil
}

func (r *listingsRepo) GetByID(ctx context.Context, id string) (listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.byID[id]
	if !ok {
		return listings.Listing{}, listings.ErrNotFound
	}
	return l, nil
}

func (r *listingsRepo) Update(ctx context.Context, l listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[l.ID]; !ok {
		return listings.ErrNotFound
	}
	r.byID[l.ID] = l
	return nil
}

func (r *listingsRepo) ListActive(ctx context.Context, f listings.ListFilter) ([]listings.Listing, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]listings.Listing, 0)
	for _, l := range r.byID {
		if l.Status != listings.StatusActive {
			continue
		}
		if f.Kind != "" && l.Kind != f.Kind {
			continue
		}
		if f.ProvinceID != 0 && l.ProvinceID != f.ProvinceID {
			continue
		}
		matched = append(matched, l)
	}
	sort.Slice(matched, func(i, j int) bool {
		bi, bj := matched[i].Boosted(f.Now), matched[j].Boosted(f.Now)
		if bi != bj {
			return bi
		}
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return append([]listings.Listing(nil), matched[start:end]...), total, nil
}

func (r *listingsRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, l := range r.byID {
		if l.Status == listings.StatusActive {
			n++
		}
	}
	return n, nil
}

func (r *listingsRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time, dryRun bool) ([]listings.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]listings.Listing, 0)
	for id, l := range r.byID {
		if l.Status != listings.StatusActive || !l.CreatedAt.Before(cutoff) {
			continue
		}
		out = append(out, l)
		if !dryRun {
			l.Status = listings.StatusExpired
			l.UpdatedAt = time.Now()
			r.byID[id] = l
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *listingsRepo) ListPackages(ctx context.Context, activeOnly bool) ([]listings.CreditPackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.CreditPackage, 0, len(r.packages))
	for _, p := range r.packages {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Credits == out[j].Credits {
			return out[i].Name < out[j].Name
		}
		return out[i].Credits < out[j].Credits
	})
	return out, nil
}

func (r *listingsRepo) GetPackage(ctx context.Context, id string) (listings.CreditPackage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.packages[id]
	if !ok {
		return listings.CreditPackage{}, listings.ErrPackageNotFound
	}
	return p, nil
}

func (r *listingsRepo) CreatePackage(ctx context.Context, p listings.CreditPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.packages {
		if existing.Name == p.Name {
			return listings.ErrPackageExists
		}
	}
	r.packages[p.ID] = p
	return nil
}

func (r *listingsRepo) balanceLocked(userID string) int {
	sum := 0
	for _, tx := range r.txs {
		if tx.UserID == userID {
			sum += tx.Amount
		}
	}
	return sum
}

func (r *listingsRepo) Balance(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balanceLocked(userID), nil
}

func (r *listingsRepo) AddCredits(ctx context.Context, tx listings.CreditTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.balanceLocked(tx.UserID)+tx.Amount < 0 {
		return listings.ErrInsufficientCredits
	}
	r.txs = append(r.txs, tx)
	return nil
}

func (r *listingsRepo) ListTransactions(ctx context.Context, userID string, limit int) ([]listings.CreditTransaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]listings.CreditTransaction, 0)
	for i := len(r.txs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if r.txs[i].UserID == userID {
			out = append(out, r.txs[i])
		}
	}
	return out, nil
}

func (r *listingsRepo) SpendForBoost(ctx context.Context, tx listings.CreditTransaction, listingID string, days int) (listings.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.byID[listingID]
	if !ok {
		return listings.Listing{}, listings.ErrNotFound
	}
	if r.balanceLocked(tx.UserID)+tx.Amount < 0 {
		return listings.Listing{}, listings.ErrInsufficientCredits
	}
	until := l.BoostEnd(tx.CreatedAt, days)
	r.txs = append(r.txs, tx)
	l.BoostedUntil = &until
	l.UpdatedAt = tx.CreatedAt
	r.byID[listingID] = l
	return l, nil
}
