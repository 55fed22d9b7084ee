package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// MaxRecentLimit is the largest number of records a single listing returns.
const MaxRecentLimit = 1000

// Config is built once at process start and handed to every component.
type Config struct {
	Port       string
	Env        string
	AppVersion string
	LogLevel   string

	BucketURL     string
	ResultsPrefix string
	KeyScheme     string
	RecentLimit   int

	ProviderTimeout    time.Duration
	Temperature        float64
	MaxOutputTokens    int
	CompareParallelism int

	RedisAddr string
	LockTTL   time.Duration

	SecretsURLTemplate string
	GoogleProject      string
	GoogleLocation     string
	ProvidersFile      string
}

// Load reads the given dotenv files when they exist, then the process
// environment.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil {
			log.Printf("Warning: %s file not found, using system environment variables", f)
		}
	}

	var errs error
	cfg := &Config{
		Port:               getString("PORT", "8080"),
		Env:                getString("ENV", "production"),
		AppVersion:         getString("APP_VERSION", "dev"),
		LogLevel:           getString("LOG_LEVEL", "info"),
		BucketURL:          getString("BUCKET_URL", "mem://"),
		ResultsPrefix:      getString("RESULTS_PREFIX", "benchmark_results"),
		KeyScheme:          getString("KEY_SCHEME", "readable"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		SecretsURLTemplate: os.Getenv("SECRETS_URL_TEMPLATE"),
		GoogleProject:      os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleLocation:     getString("GOOGLE_CLOUD_LOCATION", "us-central1"),
		ProvidersFile:      os.Getenv("PROVIDERS_FILE"),
	}

	var err error
	if cfg.RecentLimit, err = getInt("RECENT_LIMIT", 100); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if cfg.MaxOutputTokens, err = getInt("MAX_OUTPUT_TOKENS", 512); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if cfg.CompareParallelism, err = getInt("COMPARE_PARALLELISM", 4); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if cfg.Temperature, err = getFloat("TEMPERATURE", 0.7); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if cfg.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", 60*time.Second); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 30*time.Second); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if errs != nil {
		return nil, errs
	}

	if cfg.RecentLimit <= 0 {
		return nil, errors.Newf("RECENT_LIMIT must be positive, got %d", cfg.RecentLimit)
	}
	if cfg.RecentLimit > MaxRecentLimit {
		log.Printf("Warning: RECENT_LIMIT %d is above %d, using %d", cfg.RecentLimit, MaxRecentLimit, MaxRecentLimit)
		cfg.RecentLimit = MaxRecentLimit
	}
	return cfg, nil
}

func getString(name, defaultValue string) string {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return defaultValue
	}
	return v
}

func getInt(name string, defaultValue int) (int, error) {
	v := getString(name, "")
	if v == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Newf("environment variable %s is not valid: %q is not an integer", name, v)
	}
	return i, nil
}

func getFloat(name string, defaultValue float64) (float64, error) {
	v := getString(name, "")
	if v == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Newf("environment variable %s is not valid: %q is not a number", name, v)
	}
	return f, nil
}

func getDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	v := getString(name, "")
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Newf("environment variable %s is not valid: %q is not a duration", name, v)
	}
	return d, nil
}
