package config

import (
	"errors"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	PlotsDir        string
	SiteNamesFile   string
	StationMetaFile string
	NetworkOrder    []string // nil selects the built-in precedence

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	LogFile         string
	ShutdownTimeout time.Duration

	// Thumbnail cache and scan guards. Zero disables each bound.
	ThumbnailCacheSize int
	ThumbnailCacheTTL  time.Duration
	ScanMaxFiles       int
	ScanTimeout        time.Duration

	// Plot change feed (cache invalidation).
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	// FDSN station service used by the site-name fetch job.
	FDSNURL     string
	FDSNTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseNonNegativeInt("THUMBNAIL_CACHE_SIZE")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseNonNegativeDuration("THUMBNAIL_CACHE_TTL", "0")
	if err != nil {
		return nil, err
	}
	scanMaxFiles, err := parseNonNegativeInt("SCAN_MAX_FILES")
	if err != nil {
		return nil, err
	}
	scanTimeout, err := parseNonNegativeDuration("SCAN_TIMEOUT", "0")
	if err != nil {
		return nil, err
	}
	fdsnTimeout, err := parseNonNegativeDuration("FDSN_TIMEOUT", "30s")
	if err != nil || fdsnTimeout == 0 {
		return nil, errors.New("invalid FDSN_TIMEOUT")
	}

	cfg := &Config{
		PlotsDir:        sharedcfg.EnvOrDefault("PLOTS_DIR", "/darrays/qc-working/images"),
		SiteNamesFile:   sharedcfg.EnvOrDefault("SITE_NAMES_FILE", "stations.json"),
		StationMetaFile: sharedcfg.EnvOrDefault("STATION_META_FILE", "stations_meta.json"),
		NetworkOrder:    parseNetworkOrder(os.Getenv("NETWORK_ORDER")),

		HTTPAddr:        httpAddr(),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		ThumbnailCacheSize: cacheSize,
		ThumbnailCacheTTL:  cacheTTL,
		ScanMaxFiles:       scanMaxFiles,
		ScanTimeout:        scanTimeout,

		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "plot-updates"),
		KafkaGroupID: sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "plot-catalog"),

		FDSNURL:     strings.TrimRight(sharedcfg.EnvOrDefault("FDSN_URL", "https://eida.gein.noa.gr"), "/"),
		FDSNTimeout: fdsnTimeout,
	}

	if strings.TrimSpace(cfg.PlotsDir) == "" {
		return nil, errors.New("PLOTS_DIR is required")
	}
	if cfg.HTTPAddr == "" {
		return nil, errors.New("invalid HTTP_ADDR")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// httpAddr prefers HTTP_ADDR and falls back to the legacy FLASK_HOST/FLASK_PORT pair.
func httpAddr() string {
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		return v
	}
	host := os.Getenv("FLASK_HOST")
	port := os.Getenv("FLASK_PORT")
	if host == "" && port == "" {
		return ":8080"
	}
	if port == "" {
		port = "5000"
	}
	if _, err := strconv.Atoi(port); err != nil {
		return ""
	}
	return net.JoinHostPort(host, port)
}

func parseNetworkOrder(v string) []string {
	var order []string
	for _, code := range strings.Split(v, ",") {
		if code = strings.TrimSpace(code); code != "" {
			order = append(order, code)
		}
	}
	return order
}

func parseNonNegativeInt(key string) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseNonNegativeDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}
