package config

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Storage StorageConfig
	Cache   CacheConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StorageConfig controls where uploaded documents and avatars land.
type StorageConfig struct {
	BaseDir       string
	PublicBaseURL string
	MaxUploadSize int64
}

type CacheConfig struct {
	ClubDirectoryTTL time.Duration
	ReferralTTL      time.Duration
}

// LoadConfig reads the given env file (".env" when empty) overlaid with process env.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ".env"
	}
	viper.SetConfigFile(path)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("STORAGE_BASE_DIR", "./uploads")
	viper.SetDefault("STORAGE_PUBLIC_BASE_URL", "/uploads")
	viper.SetDefault("STORAGE_MAX_UPLOAD_SIZE", 10<<20)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	return fromViper(), nil
}

func fromViper() *Config {
	return &Config{
		App: AppConfig{
			Port:     viper.GetString("APP_PORT"),
			Env:      viper.GetString("APP_ENV"),
			LogLevel: viper.GetString("LOG_LEVEL"),
			Timezone: viper.GetString("APP_TIMEZONE"),
		},
		DB: DBConfig{
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASSWORD"),
			Name:        viper.GetString("DB_NAME"),
			AutoMigrate: cast.ToBool(viper.Get("DB_AUTO_MIGRATE")),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       cast.ToInt(viper.Get("REDIS_DB")),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  durationOr("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: durationOr("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Storage: StorageConfig{
			BaseDir:       viper.GetString("STORAGE_BASE_DIR"),
			PublicBaseURL: viper.GetString("STORAGE_PUBLIC_BASE_URL"),
			MaxUploadSize: cast.ToInt64(viper.Get("STORAGE_MAX_UPLOAD_SIZE")),
		},
		Cache: CacheConfig{
			ClubDirectoryTTL: durationOr("CACHE_CLUB_DIRECTORY_TTL", 10*time.Minute),
			ReferralTTL:      durationOr("CACHE_REFERRAL_TTL", 72*time.Hour),
		},
	}
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// WatchLogLevel re-applies LOG_LEVEL whenever the env file changes.
func WatchLogLevel(log *logrus.Logger) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		level, err := logrus.ParseLevel(viper.GetString("LOG_LEVEL"))
		if err != nil {
			log.Warnf("Ignoring invalid LOG_LEVEL after %s: %v", e.Name, err)
			return
		}
		log.SetLevel(level)
		log.Infof("Log level changed to %s", level)
	})
	viper.WatchConfig()
}
