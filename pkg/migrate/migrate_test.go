package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/kickstock-backend/pkg/config"
	"github.com/angelmondragon/kickstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/kickstock-backend/pkg/logger"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "migration %s", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestShoesMigrationEnforcesCausalOrder(t *testing.T) {
	content := readMigration(t, "create_shoes")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS shoes",
		"CHECK (payment_status = 'Pending' OR listing_status = 'Sold')",
		"CHECK (shipping_status = 'Not Shipped' OR payment_status = 'Completed')",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shoes_upc",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_shoes_ebay_listing_id",
		"DROP TABLE IF EXISTS shoes",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
}

func TestQueueMigrationCascadesImages(t *testing.T) {
	content := readMigration(t, "create_users_and_queue")
	assert.Contains(t, content, "FOREIGN KEY (queue_id) REFERENCES queue(id) ON DELETE CASCADE")
	assert.Contains(t, content, "CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email")
	assert.Contains(t, content, "DROP TABLE IF EXISTS users")
}

func TestAuditMigrationIndexesTrailOrder(t *testing.T) {
	content := readMigration(t, "create_transactions_and_audits")
	assert.Contains(t, content, "idx_audits_shoe_created ON audits (shoe_id, created_at, id)")
	assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS transactions")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Shoe Notes!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_shoe_notes.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestValidateDirChecksAnnotations(t *testing.T) {
	cases := map[string]string{
		"no down":    "-- +goose Up\nSELECT 1;\n",
		"reversed":   "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"unbalanced": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_broken.sql"), []byte(body), 0o644))
			assert.Error(t, ValidateDir(dir))
		})
	}
}

func TestListDirOrdersByVersion(t *testing.T) {
	files, err := ListDir("migrations")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "create_users_and_queue", files[0].Name)
	assert.Equal(t, "create_transactions_and_audits", files[2].Name)
	assert.Less(t, files[0].Version, files[1].Version)

	dir := t.TempDir()
	for _, name := range []string{"20250101000000_a.sql", "20250101000000_b.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	}
	_, err = ListDir(dir)
	assert.Error(t, err)
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	client := dbtest.Open(t)
	cfg := &config.Config{App: config.AppConfig{Env: "prod"}}
	logg := logger.New(logger.Options{ServiceName: "test", Output: os.Stderr})
	assert.NoError(t, MaybeRunDev(context.Background(), cfg, logg, client))
}

func TestMaybeRunDevMigratesSQLite(t *testing.T) {
	client := dbtest.Open(t)
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: os.Stderr})
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logg, client))
	assert.True(t, client.DB().Migrator().HasTable("shoes"))
}
