package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

var (
	// ErrRunMode is returned when run.mode is neither development nor production.
	ErrRunMode = errors.New("run mode is not set, check BLOG_RUN_MODE")
	// ErrAPIURL is returned when the API url for the active mode is empty.
	ErrAPIURL = errors.New("api url is not set for run mode")
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Run struct {
		Mode string
	}
	API struct {
		URLDev         string
		URLProd        string
		TimeoutSeconds int
	}
	Server struct {
		Addr          string
		SecureCookies bool
	}
	Client struct {
		StatePath string
	}
	Uploads struct {
		BaseURL string
	}
	Storage struct {
		Bucket         string
		KeyPrefix      string
		Region         string
		Endpoint       string
		PresignMinutes int
	}
	AWS struct {
		Profile string
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	loadDotEnv(".env")

	v := viper.New()
	v.SetEnvPrefix("BLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("run.mode", "")
	v.SetDefault("api.urldev", "")
	v.SetDefault("api.urlprod", "")
	v.SetDefault("api.timeoutseconds", 15)
	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.securecookies", false)
	v.SetDefault("client.statepath", "data/blogctl.db")
	v.SetDefault("uploads.baseurl", "http://localhost:4000/uploads")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "uploads")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.presignminutes", 15)
	v.SetDefault("aws.profile", "")
	v.SetDefault("log.level", "info")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// BaseURL picks the API url for the configured run mode.
func (c Config) BaseURL() (string, error) {
	var url string
	switch strings.TrimSpace(c.Run.Mode) {
	case ModeDevelopment:
		url = c.API.URLDev
	case ModeProduction:
		url = c.API.URLProd
	default:
		return "", ErrRunMode
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return "", fmt.Errorf("%w %q", ErrAPIURL, c.Run.Mode)
	}
	return strings.TrimRight(url, "/"), nil
}

// Timeout is the per-request API timeout.
func (c Config) Timeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// PresignTTL is the lifetime of presigned thumbnail URLs.
func (c Config) PresignTTL() time.Duration {
	if c.Storage.PresignMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Storage.PresignMinutes) * time.Minute
}

func loadDotEnv(path string) {
	file, err := os.Open(path)
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
