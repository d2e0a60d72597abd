package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Backend
	APIURL string

	// Client storage
	StorageDir  string
	DatabaseURL string // optional, switches the session store to Postgres

	// Logging
	LogLevel string

	// Rate Limiting
	RateLimitRPS int

	// CORS
	AllowedOrigins []string

	// UI catalogs
	Catalog Catalog
}

// Catalog holds the picklists the views offer. Loaded from the optional
// YAML file; defaults match the hosted dashboard.
type Catalog struct {
	Locations    []string `yaml:"locations"`
	ProxyPortals []string `yaml:"proxy_portals"`
	MaxPriority  int      `yaml:"max_priority"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Locations: []string{
			"Hyderabad", "Bangalore", "Gurgaon", "Mumbai", "Pune", "Chennai", "Kolkata",
			"Kochi", "Noida", "Delhi", "Remote", "US", "UK", "Singapore",
		},
		ProxyPortals: []string{"naukri", "indeed"},
		MaxPriority:  6,
	}
}

func Load() (*Config, error) {
	// .env is optional, real env vars take precedence
	_ = godotenv.Load()

	cfg := &Config{
		Port:         getEnv("PORT", "8090"),
		Env:          getEnv("ENV", "development"),
		APIURL:       strings.TrimRight(getEnv("API_URL", "http://localhost:3001"), "/"),
		StorageDir:   getEnv("STORAGE_DIR", ".jobhunter"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
		}),
		Catalog: DefaultCatalog(),
	}

	if err := loadCatalog(getEnv("CONFIG_FILE", "configs/dashboard.yaml"), &cfg.Catalog); err != nil {
		return nil, err
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}

	return cfg, nil
}

// loadCatalog overlays the YAML catalog file onto the defaults.
// A missing file is not an error.
func loadCatalog(path string, c *Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var fromFile Catalog
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if len(fromFile.Locations) > 0 {
		c.Locations = fromFile.Locations
	}
	if len(fromFile.ProxyPortals) > 0 {
		c.ProxyPortals = fromFile.ProxyPortals
	}
	if fromFile.MaxPriority > 0 {
		c.MaxPriority = fromFile.MaxPriority
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
