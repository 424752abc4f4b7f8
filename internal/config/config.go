package config

import (
	"errors"
	"strings"
	"time"

	"sales_arena/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Stage removal modes.
const (
	StageRemovalApplied = "applied"
	StageRemovalLegacy  = "legacy"
)

type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string

	LogLevel string
	LogJSON  bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Rate limits
	APIRateLimit   int
	APIRateWindow  time.Duration
	MutationRate   float64
	MutationBurst  int
	AllowedOrigins []string

	RankingCacheTTL        time.Duration
	RankingRefreshInterval time.Duration

	StageRemovalMode string
	ChatHistoryLimit int
}

// Загрузка конфига из env
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := load(newViper())
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_JSON", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("API_RATE_LIMIT", 120)
	v.SetDefault("API_RATE_WINDOW_SECONDS", 60)
	v.SetDefault("MUTATION_RATE_PER_SECOND", 5)
	v.SetDefault("MUTATION_BURST", 10)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("RANKING_CACHE_TTL_SECONDS", 30)
	v.SetDefault("RANKING_REFRESH_INTERVAL_SECONDS", 60)
	v.SetDefault("STAGE_REMOVAL_MODE", StageRemovalApplied)
	v.SetDefault("CHAT_HISTORY_LIMIT", 100)

	// optional yaml file, env still wins
	if path := v.GetString("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("config file not loaded", "path", path, "error", err)
		}
	}
	return v
}

func load(v *viper.Viper) (*Config, error) {
	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}

	jwtSecret := v.GetString("JWT_SECRET")
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	mode := strings.ToLower(v.GetString("STAGE_REMOVAL_MODE"))
	if mode != StageRemovalApplied && mode != StageRemovalLegacy {
		return nil, errors.New("STAGE_REMOVAL_MODE must be applied or legacy")
	}

	var origins []string
	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		AppPort:                v.GetString("APP_PORT"),
		DatabaseURL:            dbURL,
		JWTSecret:              jwtSecret,
		JWTIssuer:              v.GetString("JWT_ISSUER"),
		LogLevel:               v.GetString("LOG_LEVEL"),
		LogJSON:                v.GetBool("LOG_JSON"),
		RedisAddr:              v.GetString("REDIS_ADDR"),
		RedisPassword:          v.GetString("REDIS_PASSWORD"),
		RedisDB:                v.GetInt("REDIS_DB"),
		APIRateLimit:           positiveInt(v.GetInt("API_RATE_LIMIT"), 120),
		APIRateWindow:          seconds(v.GetInt("API_RATE_WINDOW_SECONDS"), 60),
		MutationRate:           positiveFloat(v.GetFloat64("MUTATION_RATE_PER_SECOND"), 5),
		MutationBurst:          positiveInt(v.GetInt("MUTATION_BURST"), 10),
		AllowedOrigins:         origins,
		RankingCacheTTL:        seconds(v.GetInt("RANKING_CACHE_TTL_SECONDS"), 30),
		RankingRefreshInterval: seconds(v.GetInt("RANKING_REFRESH_INTERVAL_SECONDS"), 60),
		StageRemovalMode:       mode,
		ChatHistoryLimit:       positiveInt(v.GetInt("CHAT_HISTORY_LIMIT"), 100),
	}, nil
}

// AllowAllOrigins reports whether CORS and websocket origin checks are open.
func (c *Config) AllowAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return len(c.AllowedOrigins) == 0
}

func positiveInt(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

func positiveFloat(n, def float64) float64 {
	if n > 0 {
		return n
	}
	return def
}

func seconds(n, def int) time.Duration {
	return time.Duration(positiveInt(n, def)) * time.Second
}
