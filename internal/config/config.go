package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ACCIDENTES_SERVER_PORT.
const EnvPrefix = "ACCIDENTES"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Records  RecordsConfig  `mapstructure:"records"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readtimeout"`
	WriteTimeout    time.Duration `mapstructure:"writetimeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdowntimeout"`
	CORSOrigins     []string      `mapstructure:"corsorigins"`
}

// Address returns host:port for the HTTP listener.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the driver and its connection settings. The
// postgres and mysql fields keep the names of the DB_* variables.
type DatabaseConfig struct {
	Driver        string        `mapstructure:"driver"`
	Host          string        `mapstructure:"host"`
	Port          string        `mapstructure:"port"`
	User          string        `mapstructure:"user"`
	Password      string        `mapstructure:"password"`
	Name          string        `mapstructure:"name"`
	SSLMode       string        `mapstructure:"sslmode"`
	Timezone      string        `mapstructure:"timezone"`
	Path          string        `mapstructure:"path"`
	MaxOpenConns  int           `mapstructure:"maxopenconns"`
	MaxIdleConns  int           `mapstructure:"maxidleconns"`
	SlowThreshold time.Duration `mapstructure:"slowthreshold"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"maxsizemb"`
	MaxBackups int    `mapstructure:"maxbackups"`
	MaxAgeDays int    `mapstructure:"maxagedays"`
	AddSource  bool   `mapstructure:"addsource"`
}

type StorageConfig struct {
	Backend     string   `mapstructure:"backend"`
	LocalDir    string   `mapstructure:"localdir"`
	MaxUploadMB int64    `mapstructure:"maxuploadmb"`
	S3          S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket   string `mapstructure:"bucket"`
	Region   string `mapstructure:"region"`
	Prefix   string `mapstructure:"prefix"`
	Endpoint string `mapstructure:"endpoint"`
}

// RecordsConfig holds defaults applied to accident records.
type RecordsConfig struct {
	DefaultGraceDays int `mapstructure:"defaultgracedays"`
	PageSize         int `mapstructure:"pagesize"`
	RecentLimit      int `mapstructure:"recentlimit"`
}

type CacheConfig struct {
	ReferenceTTL time.Duration `mapstructure:"referencettl"`
	IdentityTTL  time.Duration `mapstructure:"identityttl"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readtimeout", 30*time.Second)
	v.SetDefault("server.writetimeout", 60*time.Second)
	v.SetDefault("server.shutdowntimeout", 10*time.Second)
	v.SetDefault("server.corsorigins", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "America/Bogota")
	v.SetDefault("database.path", "accidentes.db")
	v.SetDefault("database.maxopenconns", 20)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.slowthreshold", 200*time.Millisecond)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.maxsizemb", 50)
	v.SetDefault("logging.maxbackups", 5)
	v.SetDefault("logging.maxagedays", 30)

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.localdir", "media")
	v.SetDefault("storage.maxuploadmb", 10)

	v.SetDefault("records.defaultgracedays", 1)
	v.SetDefault("records.pagesize", 10)
	v.SetDefault("records.recentlimit", 5)

	v.SetDefault("cache.referencettl", 10*time.Minute)
	v.SetDefault("cache.identityttl", 5*time.Minute)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// legacyEnv maps the plain DB_* variables onto their config keys.
var legacyEnv = map[string]string{
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.name":     "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",
	"database.timezone": "DB_TIMEZONE",
}

// Load reads .env.local, an optional YAML file and the environment, in
// increasing order of precedence. An empty path searches the usual locations.
func Load(path string) (*Config, error) {
	// .env.local only exists on developer machines
	_ = godotenv.Load(".env.local", "../.env.local")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/accidentes")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Database.Driver {
	case "postgres", "mysql":
		if c.Database.Host == "" || c.Database.Port == "" || c.Database.User == "" || c.Database.Name == "" {
			errs = append(errs, errors.New("database host, port, user and name are required"))
		}
	case "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalDir == "" {
			errs = append(errs, errors.New("storage.localdir is required"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			errs = append(errs, errors.New("storage.s3.bucket is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage.backend %q", c.Storage.Backend))
	}
	if c.Storage.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("storage.maxuploadmb must be positive"))
	}

	if c.Records.DefaultGraceDays < 1 {
		errs = append(errs, errors.New("records.defaultgracedays must be at least 1"))
	}
	if c.Records.PageSize < 1 {
		errs = append(errs, errors.New("records.pagesize must be at least 1"))
	}

	return errors.Join(errs...)
}
