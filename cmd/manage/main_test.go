package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"petkimlik/internal/config"
	"petkimlik/internal/platform/logger"
	"petkimlik/internal/router"
)

func testCfg() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Environment: "test", BaseURL: "http://petkimlik.test"},
		Mail: config.MailConfig{AdminEmail: "admin@petkimlik.test"},
		Shop: config.ShopConfig{StockWarningThreshold: 5},
	}
}

// run ejecuta el comando sobre stores compartidos entre llamadas.
func run(t *testing.T, st router.Stores, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := &cli{
		out: &out,
		cfg: cfg,
		log: logger.Nop(),
		open: func(*config.Config, logger.Logger) (router.Stores, *gorm.DB, error) {
			return st, nil, nil
		},
	}
	root := newRootCmd(c)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestSeedLocations_DryRunWritesNothing(t *testing.T) {
	st := router.MemoryStores()
	cfg := testCfg()
	csv := writeFile(t, "iller.csv", "il,ilce\nİzmir,Karşıyaka\nİzmir,Bornova\n")

	out, err := run(t, st, cfg, "seed-locations", "--file", csv, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "dry-run")
	assert.Contains(t, out, "Karşıyaka")

	provs, err := router.NewServices(cfg, st).Locations.ListProvinces(context.Background())
	require.NoError(t, err)
	assert.Empty(t, provs)

	out, err = run(t, st, cfg, "seed-locations", "--file", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "provinces=1 districts=2")
}

func TestSeedLocations_RequiresFile(t *testing.T) {
	_, err := run(t, router.MemoryStores(), testCfg(), "seed-locations")
	require.Error(t, err)
}

func TestMigrate_NeedsDatabase(t *testing.T) {
	_, err := run(t, router.MemoryStores(), testCfg(), "migrate")
	require.ErrorIs(t, err, errNoDatabase)
}

func TestSeedFixtures_RefusesProductionWithoutForce(t *testing.T) {
	cfg := testCfg()
	cfg.App.Environment = "production"

	_, err := run(t, router.MemoryStores(), cfg, "seed-fixtures")
	require.Error(t, err)

	out, err := run(t, router.MemoryStores(), cfg, "seed-fixtures", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "created")
}

func TestStockWarning_ListsLowProducts(t *testing.T) {
	st := router.MemoryStores()
	cfg := testCfg()
	_, err := run(t, st, cfg, "seed-fixtures")
	require.NoError(t, err)

	out, err := run(t, st, cfg, "stock-warning", "--threshold", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "warning sent to admin@petkimlik.test")
}

func TestGenerateTagsAndIssueCard(t *testing.T) {
	st := router.MemoryStores()
	cfg := testCfg()

	out, err := run(t, st, cfg, "generate-tags", "--count", "3")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "http://petkimlik.test/")

	out, err = run(t, st, cfg, "issue-shop-card", "--amount", "25000", "--days", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "250,00")
	assert.NotContains(t, out, "expires=never")

	_, err = run(t, st, cfg, "generate-tags")
	require.Error(t, err)
}

func TestExpireListings_RejectsZeroDays(t *testing.T) {
	_, err := run(t, router.MemoryStores(), testCfg(), "expire-listings", "--days", "0")
	require.Error(t, err)

	out, err := run(t, router.MemoryStores(), testCfg(), "expire-listings", "--days", "30", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "expired=0 (dry-run")
}
