package shopcards_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "petkimlik/internal/adapters/storage/memory"
	"petkimlik/internal/domain/shopcards"
)

func TestIssueLookupRedeemRefund(t *testing.T) {
	ctx := context.Background()
	svc := shopcards.NewService(mem.NewShopCardsRepo())

	_, err := svc.Issue(ctx, 0, 0)
	assert.ErrorIs(t, err, shopcards.ErrInvalidInput)

	c, err := svc.Issue(ctx, 10000, 30)
	require.NoError(t, err)
	assert.Regexp(t, `^HK-[2-9A-Z]{4}-[2-9A-Z]{4}$`, c.Code)
	require.NotNil(t, c.ExpiresAt)

	got, err := svc.Lookup(ctx, "  "+c.Code+" ")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got.BalanceKurus)

	_, discount, err := svc.Quote(ctx, c.Code, 25000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), discount)
	_, discount, err = svc.Quote(ctx, c.Code, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), discount)

	c, err = svc.Redeem(ctx, c.Code, 7000)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), c.BalanceKurus)

	_, err = svc.Redeem(ctx, c.Code, 3001)
	assert.ErrorIs(t, err, shopcards.ErrInsufficient)

	c, err = svc.Refund(ctx, c.Code, 7000)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), c.BalanceKurus)
}

func TestQuote_Expired(t *testing.T) {
	ctx := context.Background()
	svc := shopcards.NewService(mem.NewShopCardsRepo())

	c, err := svc.Issue(ctx, 5000, 1)
	require.NoError(t, err)

	shopcards.SetNow(svc, func() time.Time { return time.Now().Add(48 * time.Hour) })
	_, _, err = svc.Quote(ctx, c.Code, 100)
	assert.ErrorIs(t, err, shopcards.ErrUnusable)
}

func TestIssue_RetriesCodeCollision(t *testing.T) {
	ctx := context.Background()
	svc := shopcards.NewService(mem.NewShopCardsRepo())

	codes := []string{"HK-AAAA-AAAA", "HK-AAAA-AAAA", "HK-BBBB-BBBB"}
	i := 0
	shopcards.SetCodeSource(svc, func() (string, error) {
		c := codes[i]
		i++
		return c, nil
	})

	first, err := svc.Issue(ctx, 100, 0)
	require.NoError(t, err)
	second, err := svc.Issue(ctx, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, "HK-AAAA-AAAA", first.Code)
	assert.Equal(t, "HK-BBBB-BBBB", second.Code)
	assert.Nil(t, second.ExpiresAt)
}
