package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("REDIS_DB", "3")

	path := writeEnv(t, `DB_HOST=db.internal
DB_PORT=5432
DB_AUTO_MIGRATE=true
JWT_SECRET=s3cret
JWT_ACCESS_EXPIRY=30m
JWT_REFRESH_EXPIRY=not-a-duration
CACHE_CLUB_DIRECTORY_TTL=-5m
STORAGE_MAX_UPLOAD_SIZE=2097152
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.DB.Host != "db.internal" || !cfg.DB.AutoMigrate {
		t.Errorf("db = %+v", cfg.DB)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("redis db = %d, want the process env value 3", cfg.Redis.DB)
	}
	if cfg.JWT.AccessExpiry != 30*time.Minute {
		t.Errorf("access expiry = %s", cfg.JWT.AccessExpiry)
	}
	if cfg.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Errorf("refresh expiry = %s, want default", cfg.JWT.RefreshExpiry)
	}
	if cfg.Cache.ClubDirectoryTTL != 10*time.Minute || cfg.Cache.ReferralTTL != 72*time.Hour {
		t.Errorf("cache = %+v, want defaults", cfg.Cache)
	}
	if cfg.Storage.MaxUploadSize != 2<<20 || cfg.Storage.BaseDir != "./uploads" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.App.Port != "8080" || cfg.App.LogLevel != "info" || cfg.App.Timezone != "Asia/Jakarta" {
		t.Errorf("app = %+v", cfg.App)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("LoadConfig() error = nil for a missing file")
	}
}
