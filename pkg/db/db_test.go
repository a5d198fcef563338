package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/otherjamesbrown/tmsledger/pkg/errors"
	"github.com/otherjamesbrown/tmsledger/pkg/logging"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: ":memory:"},
		WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero value defaults to sqlite", Config{}, false},
		{"sqlite file", Config{Driver: DriverSQLite, DSN: "x.sqlite"}, false},
		{"postgres with dsn", Config{Driver: DriverPostgres, DSN: "postgres://localhost/tms"}, false},
		{"postgres without dsn", Config{Driver: DriverPostgres}, true},
		{"unknown driver", Config{Driver: "mysql", DSN: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, lerrors.IsValidation(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultConfig(), cfg)

	pg := Config{Driver: DriverPostgres}.withDefaults()
	assert.Equal(t, "", pg.DSN)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TMSLEDGER_DB_DRIVER", DriverPostgres)
	t.Setenv("TMSLEDGER_DB_DSN", "postgres://db/tms")

	cfg := ConfigFromEnv(DefaultConfig())
	assert.Equal(t, Config{Driver: DriverPostgres, DSN: "postgres://db/tms"}, cfg)
}

func TestOpen_RejectsInvalidConfig(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	require.Error(t, err)
	assert.True(t, lerrors.IsValidation(err))
}

func TestOpen_SQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetings.sqlite")
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: DriverSQLite, DSN: path}, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, s.Driver())
	require.NoError(t, s.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)

	// Reopening finds the schema already applied.
	s, err = Open(ctx, Config{Driver: DriverSQLite, DSN: path}, WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	defer s.Close()

	pending, err := GetPendingMigrations(ctx, s.DB(), Migrations())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	s := openTestStore(t)

	var on int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&on))
	assert.Equal(t, 1, on)
}

func TestStore_CloseNil(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
