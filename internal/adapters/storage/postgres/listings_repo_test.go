package postgres_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"petkimlik/internal/adapters/storage/postgres"
	"petkimlik/internal/domain/listings"
	"petkimlik/internal/domain/tags"
)

// dryRunDB construye SQL sin conectarse y guarda cada SELECT generado.
func dryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(gormpg.New(gormpg.Config{DSN: "host=localhost user=petkimlik dbname=petkimlik sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var stmts []string
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		stmts = append(stmts, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, &stmts
}

func TestListingsRepo_ListActiveOrdersBoostedFirst_SQL(t *testing.T) {
	db, stmts := dryRunDB(t)
	repo := postgres.NewListingsRepo(db)

	_, _, err := repo.ListActive(context.Background(), listings.ListFilter{Now: time.Now(), Limit: 20})
	require.NoError(t, err)

	var sel string
	for _, s := range *stmts {
		if strings.Contains(s, "ORDER BY") {
			sel = s
		}
	}
	require.NotEmpty(t, sel, "no SELECT with ORDER BY in %v", *stmts)
	assert.Contains(t, sel, "ORDER BY (boosted_until IS NOT NULL AND boosted_until > $2) DESC, created_at DESC, id ASC")
	assert.Equal(t, 1, strings.Count(sel, "ORDER BY"))
}

func newListing(title string, created time.Time, boostedUntil *time.Time) listings.Listing {
	return listings.Listing{
		ID: uuid.NewString(), UserID: uuid.NewString(), Kind: listings.KindAdoption, Title: title,
		ProvinceID: 6, DistrictID: 1, Status: listings.StatusActive,
		BoostedUntil: boostedUntil, CreatedAt: created, UpdatedAt: created,
	}
}

func TestListingsRepo_ListActiveOrder(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	repo := postgres.NewListingsRepo(db)

	now := time.Now().UTC().Truncate(time.Second)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	for _, l := range []listings.Listing{
		newListing("eski-destacada", now.Add(-3*time.Hour), &future),
		newListing("nueva", now.Add(-1*time.Hour), nil),
		newListing("destacada-vencida", now.Add(-2*time.Hour), &past),
		newListing("mas-vieja", now.Add(-4*time.Hour), nil),
	} {
		require.NoError(t, repo.Create(ctx, l))
	}

	got, total, err := repo.ListActive(ctx, listings.ListFilter{Now: now})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	titles := make([]string, 0, len(got))
	for _, l := range got {
		titles = append(titles, l.Title)
	}
	assert.Equal(t, []string{"eski-destacada", "nueva", "destacada-vencida", "mas-vieja"}, titles)
}

func TestListingsRepo_SpendForBoostExtendsStoredEnd(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	repo := postgres.NewListingsRepo(db)

	now := time.Now().UTC().Truncate(time.Second)
	l := newListing("ilan", now, nil)
	require.NoError(t, repo.Create(ctx, l))
	require.NoError(t, repo.AddCredits(ctx, listings.CreditTransaction{
		ID: uuid.NewString(), UserID: l.UserID, Amount: 2, Reason: listings.ReasonGrant, CreatedAt: now,
	}))

	spend := func() (listings.Listing, error) {
		lid := l.ID
		return repo.SpendForBoost(ctx, listings.CreditTransaction{
			ID: uuid.NewString(), UserID: l.UserID, Amount: -1, Reason: listings.ReasonBoost, ListingID: &lid, CreatedAt: now,
		}, l.ID, 1)
	}
	_, err := spend()
	require.NoError(t, err)
	got, err := spend()
	require.NoError(t, err)
	require.NotNil(t, got.BoostedUntil)
	assert.True(t, now.Add(48*time.Hour).Equal(*got.BoostedUntil))

	_, err = spend()
	assert.ErrorIs(t, err, listings.ErrInsufficientCredits)
	bal, err := repo.Balance(ctx, l.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, bal)
}

func TestTagsRepo_ActivateOnlyFreeTags(t *testing.T) {
	db, _ := openTestDB(t)
	ctx := context.Background()
	repo := postgres.NewTagsRepo(db)

	tg := tags.Tag{ID: uuid.NewString(), Code: "PK-ABCDEF", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.CreateBatch(ctx, []tags.Tag{tg}))

	first, second := uuid.NewString(), uuid.NewString()
	now := time.Now().UTC()
	a := tg
	a.AnimalID, a.ActivatedAt = &first, &now
	require.NoError(t, repo.Activate(ctx, a))

	b := tg
	b.AnimalID, b.ActivatedAt = &second, &now
	assert.ErrorIs(t, repo.Activate(ctx, b), tags.ErrAlreadyActive)

	got, err := repo.GetByCode(ctx, tg.Code)
	require.NoError(t, err)
	require.NotNil(t, got.AnimalID)
	assert.Equal(t, first, *got.AnimalID)
}
