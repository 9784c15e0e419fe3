package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/storage"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":1323", cfg.Addr)
	assert.Equal(t, "forms-advanced", cfg.Bucket)
	assert.Equal(t, storage.DriverSupabase, cfg.StorageDriver)
	assert.Equal(t, registration.LocaleEnglish, cfg.Form.Locale)
	assert.Equal(t, registration.DefaultEmailSuffix, cfg.Form.EmailSuffix)
	assert.Equal(t, int64(registration.DefaultMaxAvatarSize), cfg.Form.MaxAvatarBytes)
	assert.False(t, cfg.Form.RequireAvatar)
	assert.True(t, cfg.S3.UseSSL)
}

func TestLoadEnvFileThenEnvironment(t *testing.T) {
	path := writeEnv(t, "SUPABASE_URL=https://project.supabase.co\n"+
		"SUPABASE_SECRET=from-file\n"+
		"FORMS_LOCALE=pt\n"+
		"FORMS_REQUIRE_AVATAR=true\n"+
		"FORMS_MAX_AVATAR_BYTES=1024\n")
	t.Setenv("SUPABASE_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://project.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "from-env", cfg.Supabase.Secret)
	assert.Equal(t, registration.LocalePortuguese, cfg.Form.Locale)
	assert.True(t, cfg.Form.RequireAvatar)
	assert.Equal(t, int64(1024), cfg.Form.MaxAvatarBytes)

	schema, err := registration.NewSchema(cfg.SchemaOptions()...)
	require.NoError(t, err)
	assert.True(t, schema.RequireAvatar())
	assert.Equal(t, registration.LocalePortuguese, schema.Locale())
}

func TestLoadViteNames(t *testing.T) {
	t.Setenv("VITE_SUPABASE_URL", "https://vite.supabase.co")
	t.Setenv("VITE_SUPABASE_SECRET", "vite-secret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://vite.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, "vite-secret", cfg.Supabase.Secret)

	store, err := cfg.NewStore()
	require.NoError(t, err)
	_, ok := store.(*storage.Supabase)
	assert.True(t, ok)
}

func TestLoadS3Driver(t *testing.T) {
	t.Setenv("FORMS_STORAGE_DRIVER", "S3")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("S3_ACCESS_KEY_ID", "key")
	t.Setenv("S3_SECRET_ACCESS_KEY", "secret")
	t.Setenv("S3_USE_SSL", "false")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, storage.DriverS3, cfg.StorageDriver)
	assert.False(t, cfg.S3.UseSSL)

	store, err := cfg.NewStore()
	require.NoError(t, err)
	_, ok := store.(*storage.S3)
	assert.True(t, ok)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"FORMS_STORAGE_DRIVER":   "ftp",
		"FORMS_REQUIRE_AVATAR":   "maybe",
		"FORMS_MAX_AVATAR_BYTES": "five",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestNewStoreWithoutCredentials(t *testing.T) {
	cfg := &Config{StorageDriver: storage.DriverSupabase}
	_, err := cfg.NewStore()
	assert.Error(t, err)
}

func TestLoggerLevel(t *testing.T) {
	cases := map[string]log.Lvl{
		"debug":   log.DEBUG,
		"info":    log.INFO,
		"WARN":    log.WARN,
		"error":   log.ERROR,
		"off":     log.OFF,
		"verbose": log.INFO,
	}
	for name, want := range cases {
		cfg := &Config{LogLevel: name}
		assert.Equal(t, want, cfg.LoggerLevel(), name)
	}
}

func TestBodyLimit(t *testing.T) {
	cfg := &Config{Form: FormConfig{MaxAvatarBytes: registration.DefaultMaxAvatarSize}}
	assert.Equal(t, "6144K", cfg.BodyLimit())
}
