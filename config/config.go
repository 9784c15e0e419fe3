// Package config loads service settings from an optional .env file and the
// environment; environment variables win.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/AlhimicMan/formsadvanced/registration"
	"github.com/AlhimicMan/formsadvanced/storage"
	"github.com/AlhimicMan/formsadvanced/submission"
)

const formOverheadBytes = 1 << 20

type Config struct {
	Addr          string
	LogLevel      string
	Bucket        string
	StorageDriver string
	Supabase      SupabaseConfig
	S3            storage.S3Config
	Form          FormConfig
}

type SupabaseConfig struct {
	URL    string
	Secret string
}

type FormConfig struct {
	Locale         string
	RequireAvatar  bool
	EmailSuffix    string
	MaxAvatarBytes int64
}

// Load reads envPath when it exists, then the process environment.
func Load(envPath string) (*Config, error) {
	k := koanf.New(".")
	if envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			if err := k.Load(file.Provider(envPath), dotenv.Parser()); err != nil {
				return nil, errors.Wrapf(err, "cannot load %s", envPath)
			}
		}
	}
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, errors.Wrap(err, "cannot load environment")
	}

	useSSL, err := boolOr(k, true, "S3_USE_SSL")
	if err != nil {
		return nil, err
	}
	requireAvatar, err := boolOr(k, false, "FORMS_REQUIRE_AVATAR")
	if err != nil {
		return nil, err
	}
	maxAvatarBytes, err := int64Or(k, registration.DefaultMaxAvatarSize, "FORMS_MAX_AVATAR_BYTES")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:          stringOr(k, ":1323", "FORMS_ADDR"),
		LogLevel:      strings.ToLower(stringOr(k, "info", "FORMS_LOG_LEVEL")),
		Bucket:        stringOr(k, submission.DefaultBucket, "FORMS_BUCKET"),
		StorageDriver: strings.ToLower(stringOr(k, storage.DriverSupabase, "FORMS_STORAGE_DRIVER")),
		Supabase: SupabaseConfig{
			URL:    stringOr(k, "", "SUPABASE_URL", "VITE_SUPABASE_URL"),
			Secret: stringOr(k, "", "SUPABASE_SECRET", "VITE_SUPABASE_SECRET"),
		},
		S3: storage.S3Config{
			Endpoint:        stringOr(k, "", "S3_ENDPOINT"),
			AccessKeyID:     stringOr(k, "", "S3_ACCESS_KEY_ID"),
			SecretAccessKey: stringOr(k, "", "S3_SECRET_ACCESS_KEY"),
			Region:          stringOr(k, "", "S3_REGION"),
			UseSSL:          useSSL,
		},
		Form: FormConfig{
			Locale:         stringOr(k, registration.LocaleEnglish, "FORMS_LOCALE"),
			RequireAvatar:  requireAvatar,
			EmailSuffix:    stringOr(k, registration.DefaultEmailSuffix, "FORMS_EMAIL_SUFFIX"),
			MaxAvatarBytes: maxAvatarBytes,
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case storage.DriverSupabase, storage.DriverS3:
	default:
		return errors.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.Bucket == "" {
		return errors.New("FORMS_BUCKET must not be empty")
	}
	if c.Form.MaxAvatarBytes <= 0 {
		return errors.Errorf("FORMS_MAX_AVATAR_BYTES must be positive, have %d", c.Form.MaxAvatarBytes)
	}
	return nil
}

// SchemaOptions turns the form settings into registration schema options.
func (c *Config) SchemaOptions() []registration.Option {
	return []registration.Option{
		registration.WithLocale(c.Form.Locale),
		registration.WithRequiredAvatar(c.Form.RequireAvatar),
		registration.WithEmailSuffix(c.Form.EmailSuffix),
		registration.WithMaxAvatarSize(c.Form.MaxAvatarBytes),
	}
}

// NewStore builds the configured storage driver.
func (c *Config) NewStore() (storage.Store, error) {
	if c.StorageDriver == storage.DriverS3 {
		s3, err := storage.NewS3(c.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	}
	sb, err := storage.NewSupabase(c.Supabase.URL, c.Supabase.Secret)
	if err != nil {
		return nil, err
	}
	return sb, nil
}

func stringOr(k *koanf.Koanf, def string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(k.String(key)); v != "" {
			return v
		}
	}
	return def
}

func boolOr(k *koanf.Koanf, def bool, key string) (bool, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.Errorf("%s: invalid boolean %q", key, raw)
	}
	return v, nil
}

func int64Or(k *koanf.Koanf, def int64, key string) (int64, error) {
	raw := strings.TrimSpace(k.String(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Errorf("%s: invalid integer %q", key, raw)
	}
	return v, nil
}

// LoggerLevel maps FORMS_LOG_LEVEL onto the echo logger levels; unknown
// names fall back to INFO.
func (c *Config) LoggerLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

// BodyLimit is the request size accepted by the server: the avatar limit
// plus room for the other form fields, in echo BodyLimit notation.
func (c *Config) BodyLimit() string {
	return strconv.FormatInt((c.Form.MaxAvatarBytes+formOverheadBytes)/1024, 10) + "K"
}
