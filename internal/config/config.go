package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env           string        `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer    HTTPServer    `yaml:"http_server"`
	Gateway       Gateway       `yaml:"gateway"`
	Storage       Storage       `yaml:"storage"`
	Redis         Redis         `yaml:"redis"`
	Media         Media         `yaml:"media"`
	Auth          Auth          `yaml:"auth"`
	Registration  Registration  `yaml:"registration"`
	Notifications Notifications `yaml:"notifications"`
	Log           Log           `yaml:"log"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	// MaxRequestSize bounds a whole multipart upload request in bytes.
	MaxRequestSize int64 `yaml:"max_request_size" env:"HTTP_MAX_REQUEST_SIZE" env-default:"1073741824"`
}

// Gateway holds the record store connection. An empty DatabaseURL disables
// every data operation.
type Gateway struct {
	DatabaseURL string `yaml:"database_url" env:"GATEWAY_DATABASE_URL"`
}

// Storage holds the object store connection. Uploads and deletes are disabled
// when the endpoint, the access key or the bucket is missing.
type Storage struct {
	Endpoint        string `yaml:"endpoint" env:"STORAGE_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	BucketName      string `yaml:"bucket_name" env:"STORAGE_BUCKET"`
	UseSSL          bool   `yaml:"use_ssl" env:"STORAGE_USE_SSL" env-default:"false"`
	PublicBaseURL   string `yaml:"public_base_url" env:"STORAGE_PUBLIC_BASE_URL"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Media struct {
	MaxFileSize        int64         `yaml:"max_file_size" env:"MEDIA_MAX_FILE_SIZE" env-default:"104857600"`
	DefaultContentType string        `yaml:"default_content_type" env:"MEDIA_DEFAULT_CONTENT_TYPE" env-default:"video/mp4"`
	UploadWorkers      int           `yaml:"upload_workers" env:"MEDIA_UPLOAD_WORKERS" env-default:"1"`
	ListCacheTTL       time.Duration `yaml:"list_cache_ttl" env:"MEDIA_LIST_CACHE_TTL" env-default:"30s"`
	OrphanGracePeriod  time.Duration `yaml:"orphan_grace_period" env:"MEDIA_ORPHAN_GRACE_PERIOD" env-default:"1h"`
	SweepInterval      time.Duration `yaml:"sweep_interval" env:"MEDIA_SWEEP_INTERVAL" env-default:"10m"`
}

type Auth struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"super_secret_key"`
	WorkspaceIdle time.Duration `yaml:"workspace_idle" env:"AUTH_WORKSPACE_IDLE" env-default:"2h"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"24h"`
}

type Registration struct {
	// DoctorSecretHash is the bcrypt hash of the doctor registration key.
	DoctorSecretHash string `yaml:"doctor_secret_hash" env:"REGISTRATION_DOCTOR_SECRET_HASH"`
}

type Notifications struct {
	TTL time.Duration `yaml:"ttl" env:"NOTIFICATIONS_TTL" env-default:"4s"`
}

type Log struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Path       string `yaml:"path" env:"LOG_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"7"`
	Compress   bool   `yaml:"compress" env:"LOG_COMPRESS" env-default:"false"`
}

// DatabaseEnabled reports whether the record store is configured.
func (c *Config) DatabaseEnabled() bool {
	return c.Gateway.DatabaseURL != ""
}

// ObjectStorageEnabled reports whether the object store is configured.
func (c *Config) ObjectStorageEnabled() bool {
	return c.Storage.Endpoint != "" && c.Storage.AccessKeyID != "" && c.Storage.BucketName != ""
}

// RedisEnabled reports whether caching and rate limiting are available.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Address != ""
}

// Warnings lists the user-visible messages for every disabled feature.
func (c *Config) Warnings() []string {
	var warnings []string
	if !c.DatabaseEnabled() {
		warnings = append(warnings, "Gateway connection is missing; sign in and video features are disabled.")
	}
	if !c.ObjectStorageEnabled() {
		warnings = append(warnings, "Storage bucket is not configured; uploads and deletes are disabled.")
	}
	return warnings
}

// MustLoad reads the config file named by CONFIG_PATH or -config. Without a
// file the configuration comes from the environment alone.
func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags
	}

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("failed to read config from environment: %s", err)
		}
		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist at path: %s", configPath)
	}

	err := cleanenv.ReadConfig(configPath, &cfg)

	if err != nil {
		log.Fatalf("failed to read config: %s", err)
	}

	return &cfg
}

// Load reads a config file without exiting on failure.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
