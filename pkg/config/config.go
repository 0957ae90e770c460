package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

// Config holds runtime settings. Values come from an optional YAML file
// named by CONFIG_FILE and are overridden by environment variables.
type Config struct {
	Port                    string        `yaml:"port"`
	Env                     string        `yaml:"env"`
	PostgresConnStr         string        `yaml:"postgres_conn_str"`
	MongoURI                string        `yaml:"mongo_uri"`
	SearchMongoDB           string        `yaml:"search_mongo_db"`
	JWTSecret               string        `yaml:"jwt_secret"`
	AuthProvider            string        `yaml:"auth_provider"`
	FirebaseCredentialsPath string        `yaml:"firebase_credentials_path"`
	FirebaseProjectID       string        `yaml:"firebase_project_id"`
	FirebaseCheckRevoked    bool          `yaml:"firebase_check_revoked"`
	AdminToken              string        `yaml:"admin_token"`
	AutoMigrate             bool          `yaml:"db_auto_migrate"`
	RequestTimeout          time.Duration `yaml:"request_timeout"`
	SearchWorkers           int           `yaml:"search_workers"`
	SearchQueueSize         int           `yaml:"search_queue_size"`
	LogFile                 string        `yaml:"log_file"`
	CORSOrigins             []string      `yaml:"cors_origins"`
	BodyLimit               string        `yaml:"body_limit"`
}

func defaults() *Config {
	return &Config{
		Port:            "8080",
		Env:             "development",
		SearchMongoDB:   "murmur_search",
		AuthProvider:    AuthProviderJWT,
		RequestTimeout:  10 * time.Second,
		SearchWorkers:   4,
		SearchQueueSize: 1024,
		CORSOrigins:     []string{"*"},
		BodyLimit:       "64K",
	}
}

// Load reads .env, the optional CONFIG_FILE and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", path)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Env = getEnv("ENV", cfg.Env)
	cfg.PostgresConnStr = getEnv("POSTGRES_CONN_STR", cfg.PostgresConnStr)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.SearchMongoDB = getEnv("SEARCH_MONGO_DB", cfg.SearchMongoDB)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AuthProvider = strings.ToLower(getEnv("AUTH_PROVIDER", cfg.AuthProvider))
	cfg.FirebaseCredentialsPath = getEnv("FIREBASE_CREDENTIALS_PATH", cfg.FirebaseCredentialsPath)
	cfg.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", cfg.FirebaseProjectID)
	cfg.AdminToken = getEnv("ADMIN_TOKEN", cfg.AdminToken)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)
	cfg.BodyLimit = getEnv("BODY_LIMIT", cfg.BodyLimit)
	cfg.CORSOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)

	var err error
	if cfg.AutoMigrate, err = getEnvBool("DB_AUTO_MIGRATE", cfg.AutoMigrate); err != nil {
		return nil, err
	}
	if cfg.FirebaseCheckRevoked, err = getEnvBool("FIREBASE_CHECK_REVOKED", cfg.FirebaseCheckRevoked); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.SearchWorkers, err = getEnvInt("SEARCH_WORKERS", cfg.SearchWorkers); err != nil {
		return nil, err
	}
	if cfg.SearchQueueSize, err = getEnvInt("SEARCH_QUEUE_SIZE", cfg.SearchQueueSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that do not depend on which command runs.
func (c *Config) Validate() error {
	switch c.AuthProvider {
	case AuthProviderJWT, AuthProviderFirebase:
	default:
		return errors.Errorf("AUTH_PROVIDER must be %q or %q, got %q", AuthProviderJWT, AuthProviderFirebase, c.AuthProvider)
	}
	if c.SearchWorkers < 1 {
		return errors.New("SEARCH_WORKERS must be at least 1")
	}
	if c.SearchQueueSize < 0 {
		return errors.New("SEARCH_QUEUE_SIZE must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping blank items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "%s", key)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", key)
	}
	return d, nil
}
