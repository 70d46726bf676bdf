package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastygo/goaltracker/domain"
)

// Snapshot backends.
const (
	SnapshotBolt   = "bolt"
	SnapshotRedis  = "redis"
	SnapshotMemory = "memory"

	DefaultSnapshotKey = "goal-tracker-storage"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Tracker     TrackerConfig
	Snapshot    SnapshotConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Buffer      BufferConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

// TrackerConfig feeds store.Settings.
type TrackerConfig struct {
	WakingHoursPerDay  float64
	DefaultTaskMinutes int
	SleepTargetMinutes int
	SleepWindowDays    int
	TimelineCapacity   int
	Timezone           string
	Location           *time.Location
	PersistTimeout     time.Duration
	SeedTimeSlots      bool
}

type SnapshotConfig struct {
	Backend string
	Path    string
	Key     string
	TTL     time.Duration
}

// DatabaseConfig describes the optional Postgres mirror.
type DatabaseConfig struct {
	MirrorEnabled   bool
	MirrorUserID    string
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type BufferConfig struct {
	Path           string
	RetentionHours int
	SyncInterval   time.Duration
	MaxRetry       int
	BatchSize      int
	QueueSize      int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env)
// and applies defaults so the tracker boots with no external services.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "goal-tracker"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString("SERVER_HOST", "0.0.0.0"),
			Port:         getString("SERVER_PORT", "8080"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt("SERVER_MAX_CONN", 0),
		},
		Tracker: TrackerConfig{
			WakingHoursPerDay:  getFloat("TRACKER_WAKING_HOURS", 16),
			DefaultTaskMinutes: getInt("TRACKER_DEFAULT_TASK_MINUTES", 30),
			SleepTargetMinutes: getInt("TRACKER_SLEEP_TARGET_MINUTES", 480),
			SleepWindowDays:    getInt("TRACKER_SLEEP_WINDOW_DAYS", 30),
			TimelineCapacity:   getInt("TRACKER_TIMELINE_CAPACITY", 500),
			Timezone:           getString("TRACKER_TIMEZONE", "UTC"),
			PersistTimeout:     getDuration("TRACKER_PERSIST_TIMEOUT", 5*time.Second),
			SeedTimeSlots:      getBool("TRACKER_SEED_TIME_SLOTS", false),
		},
		Snapshot: SnapshotConfig{
			Backend: strings.ToLower(getString("SNAPSHOT_BACKEND", SnapshotBolt)),
			Path:    getString("SNAPSHOT_PATH", "./data/tracker.db"),
			Key:     getString("SNAPSHOT_KEY", DefaultSnapshotKey),
			TTL:     getDuration("SNAPSHOT_TTL", 0),
		},
		Database: DatabaseConfig{
			MirrorEnabled:   getBool("MIRROR_ENABLED", false),
			MirrorUserID:    os.Getenv("MIRROR_USER_ID"),
			URL:             os.Getenv("DATABASE_URL"),
			Host:            getString("DB_HOST", "localhost"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "goal_tracker"),
			User:            getString("DB_USER", "tracker"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString("REDIS_URL", "redis://localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			Issuer: getString("JWT_ISSUER", "goal-tracker"),
		},
		Buffer: BufferConfig{
			RetentionHours: getInt("BUFFER_RETENTION_HOURS", 72),
			SyncInterval:   getDuration("SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:       getInt("MAX_RETRY_ATTEMPTS", 5),
			BatchSize:      getInt("BUFFER_BATCH_SIZE", 50),
			QueueSize:      getInt("MIRROR_QUEUE_SIZE", 256),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
			Path:    getString("MIGRATIONS_PATH", "./assets/migrations"),
		},
	}
	// The buffer shares the snapshot file unless pointed elsewhere.
	cfg.Buffer.Path = getString("BOLTDB_PATH", cfg.Snapshot.Path)

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks enumerations and resolves the tracker timezone.
func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case SnapshotBolt, SnapshotRedis, SnapshotMemory:
	default:
		return domain.NewError(domain.ErrCodeInvalid, fmt.Sprintf("unknown snapshot backend %q", c.Snapshot.Backend))
	}
	if c.Snapshot.Key == "" {
		return domain.NewError(domain.ErrCodeInvalid, "snapshot key must not be empty")
	}
	loc, err := time.LoadLocation(c.Tracker.Timezone)
	if err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid tracker timezone", err)
	}
	c.Tracker.Location = loc
	return nil
}

// UsesBolt reports whether any component needs the local bbolt file.
func (c *Config) UsesBolt() bool {
	return c.Snapshot.Backend == SnapshotBolt || c.Database.MirrorEnabled
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
