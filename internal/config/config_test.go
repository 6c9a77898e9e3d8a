package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":5000", cfg.Addr())
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 20, cfg.RateLimitAuth)
	assert.Equal(t, "pgx", cfg.DB.Driver)
	assert.False(t, cfg.DB.AutoMigrate)
	assert.False(t, cfg.GitHub.Enabled())
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_BadDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/m.db")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("GITHUB_CLIENT_ID", "id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("GITHUB_CALLBACK_URL", "http://localhost:5000/auth/github/callback")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "/tmp/m.db", cfg.DB.DSN())
	assert.True(t, cfg.DB.AutoMigrate)
	assert.True(t, cfg.GitHub.Enabled())
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		db   DB
		want string
	}{
		{
			name: "postgres from parts",
			db:   DB{Driver: "pgx", Host: "db", Port: "5432", User: "app", Password: "p@ss", Name: "movies", SSLMode: "disable"},
			want: "postgres://app:p%40ss@db:5432/movies?sslmode=disable",
		},
		{
			name: "postgres without password",
			db:   DB{Driver: "pgx", Host: "localhost", Port: "5432", User: "postgres", Name: "movie_app_db", SSLMode: "require"},
			want: "postgres://postgres@localhost:5432/movie_app_db?sslmode=require",
		},
		{
			name: "DATABASE_URL wins",
			db:   DB{Driver: "pgx", URL: "postgres://u@h/d", Host: "ignored"},
			want: "postgres://u@h/d",
		},
		{
			name: "sqlite path",
			db:   DB{Driver: "sqlite", Path: "data/movies.db"},
			want: "data/movies.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.db.DSN())
		})
	}
}
