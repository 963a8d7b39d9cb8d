package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds every runtime setting of the shop server.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	CookieSecure   bool
	RabbitMQURL    string

	StorageDriver          string
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SlipBucket             string
	StorageTimeout         time.Duration
	PublicBaseURL          string

	AdminEmail    string
	AdminPassword string
	AdminName     string
	SeedDemoItems bool
}

// Error describes a missing or invalid deployment setting. Message is safe to
// show to operators and API clients.
type Error struct {
	Key     string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Missing builds the error reported for an unset required variable.
func Missing(key string) *Error {
	return &Error{Key: key, Message: fmt.Sprintf("Missing required environment variable: %s", key)}
}

// New returns a viper instance with defaults applied, environment variables
// bound, and the optional env file merged in.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=sitfc port=5432 sslmode=disable")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("STORAGE_DRIVER", "supabase")
	v.SetDefault("SUPABASE_URL", "")
	v.SetDefault("NEXT_PUBLIC_SUPABASE_URL", "")
	v.SetDefault("SUPABASE_SERVICE_ROLE_KEY", "")
	v.SetDefault("SUPABASE_ORDER_SLIP_BUCKET", "")
	v.SetDefault("NEXT_PUBLIC_SUPABASE_ORDER_SLIP_BUCKET", "payment-slips")
	v.SetDefault("STORAGE_TIMEOUT", "30s")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("ADMIN_NAME", "Club Admin")
	v.SetDefault("SEED_DEMO_ITEMS", false)
	v.SetDefault("CONFIG_FILE", ".env.local")
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		if _, err := os.Stat(file); err == nil {
			v.SetConfigFile(file)
			v.SetConfigType("env")
			if err := v.MergeInConfig(); err != nil {
				log.Printf("Ignoring config file %s: %v", file, err)
			} else {
				log.Printf("Loaded configuration from %s", file)
			}
		}
	}
	return v
}

// Load reads the configuration from the environment (and env file).
func Load() (*Config, error) {
	return FromViper(New())
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppPort:        v.GetString("APP_PORT"),
		DatabaseDriver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		CookieSecure:   v.GetBool("COOKIE_SECURE"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),

		StorageDriver:          strings.ToLower(v.GetString("STORAGE_DRIVER")),
		SupabaseURL:            firstNonEmpty(v.GetString("SUPABASE_URL"), v.GetString("NEXT_PUBLIC_SUPABASE_URL")),
		SupabaseServiceRoleKey: v.GetString("SUPABASE_SERVICE_ROLE_KEY"),
		SlipBucket:             firstNonEmpty(v.GetString("SUPABASE_ORDER_SLIP_BUCKET"), v.GetString("NEXT_PUBLIC_SUPABASE_ORDER_SLIP_BUCKET")),
		StorageTimeout:         v.GetDuration("STORAGE_TIMEOUT"),
		PublicBaseURL:          strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		AdminName:     v.GetString("ADMIN_NAME"),
		SeedDemoItems: v.GetBool("SEED_DEMO_ITEMS"),
	}

	if !strings.HasPrefix(cfg.AppPort, ":") && !strings.Contains(cfg.AppPort, ":") {
		cfg.AppPort = ":" + cfg.AppPort
	}
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", cfg.DatabaseDriver)
	}
	switch cfg.StorageDriver {
	case "supabase", "memory":
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be supabase or memory, got %q", cfg.StorageDriver)
	}
	if cfg.SlipBucket == "" {
		return nil, errors.New("slip bucket name must not be empty")
	}
	if cfg.JWTSecret == "" {
		log.Println("JWT_SECRET is not set; admin routes will answer with a configuration error")
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
