package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds every setting read from the environment.
type Config struct {
	AppPort string
	AppEnv  string

	DBDriver      string
	DBDSN         string
	DBReplicaDSNs []string
	AutoMigrate   bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TimelineTTL   time.Duration

	BatchSize      int
	FanoutInterval time.Duration

	JWTSecret []byte
	JWTTTL    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MediaPublicURL string

	CORSOrigins []string

	OTelEndpoint    string
	OTelServiceName string
	OTelSampleRatio float64
}

// Init loads .env when present and returns the parsed configuration.
// Missing required settings are fatal, as the server cannot start without them.
func Init() *Config {
	if err := godotenv.Load(); err != nil {
		Logger.Info("No .env file found, using system environment variables")
	}

	cfg, err := Load()
	if err != nil {
		Logger.Fatal("Invalid configuration", zap.Error(err))
	}
	return cfg
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		AppPort:       envDefault("APP_PORT", "8080"),
		AppEnv:        envDefault("APP_ENV", "development"),
		DBDriver:      strings.ToLower(envDefault("DB_DRIVER", "mysql")),
		DBDSN:         os.Getenv("DB_DSN"),
		DBReplicaDSNs: splitList(os.Getenv("DB_REPLICA_DSNS")),
		AutoMigrate:   envBool("AUTO_MIGRATE", true),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envInt("REDIS_DB", 0),
		TimelineTTL:   envDuration("TIMELINE_TTL", time.Minute),

		BatchSize:      envInt("BATCH_SIZE", 100),
		FanoutInterval: envDuration("FANOUT_INTERVAL", time.Second),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    envDuration("JWT_TTL", 24*time.Hour),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   envDefault("KAFKA_TOPIC", "posts.events"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envDefault("MINIO_BUCKET", "media"),
		MinioUseSSL:    envBool("MINIO_USE_SSL", false),
		MediaPublicURL: strings.TrimRight(os.Getenv("MEDIA_PUBLIC_URL"), "/"),

		CORSOrigins: splitList(envDefault("CORS_ORIGINS", "*")),

		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName: envDefault("OTEL_SERVICE_NAME", "socialfeed"),
		OTelSampleRatio: envRatio("OTEL_TRACES_SAMPLER_ARG", 1.0),
	}

	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is not set")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.DBDriver != "mysql" && cfg.DBDriver != "postgres" {
		return nil, errors.New("DB_DRIVER must be mysql or postgres")
	}
	if cfg.MediaPublicURL == "" && cfg.MinioEndpoint != "" {
		scheme := "http://"
		if cfg.MinioUseSSL {
			scheme = "https://"
		}
		cfg.MediaPublicURL = scheme + cfg.MinioEndpoint
	}
	return cfg, nil
}

func envDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d < 0 {
		return def
	}
	return d
}

func envRatio(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f < 0 || f > 1 {
		return def
	}
	return f
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
