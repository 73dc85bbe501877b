package shared

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	// StoreDriver selects the backing store: "mysql", "rest" or "memory".
	StoreDriver string
	MySQLDSN    string
	RESTBase    string
	RESTKey     string
	RESTRPS     int

	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	SessionKey    string
	SessionSecure bool

	SeedWorkers int
	SeedFile    string // loaded into the memory store at startup
	ContactRPS  float64
	LoginRPS    float64
}

func (c Config) IsDev() bool { return isDev(c.AppEnv) }

func isDev(env string) bool { return env == "dev" || env == "development" }

// Load reads configuration from the environment, optionally seeded by a
// .env file in the working directory. Environment variables win.
func Load() Config {
	return load(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func load(v *viper.Viper) Config {
	def := map[string]any{
		"APP_ENV":           "prod",
		"HTTP_ADDR":         ":8080",
		"METRICS_ADDR":      "",
		"STORE_DRIVER":      "mysql",
		"MYSQL_DSN":         "root:root@tcp(localhost:3306)/kotobuki?parseTime=true&charset=utf8mb4,utf8&loc=UTC&clientFoundRows=true",
		"REST_BASE_URL":     "",
		"REST_API_KEY":      "",
		"REST_RPS":          10,
		"REDIS_ADDR":        "",
		"REDIS_PASSWORD":    "",
		"REDIS_DB":          0,
		"CACHE_TTL_SECONDS": 60,
		"SESSION_KEY":       "",
		"SEED_WORKERS":      4,
		"SEED_FILE":         "",
		"CONTACT_RPS":       0.2,
		"LOGIN_RPS":         0.5,
	}
	for k, d := range def {
		v.SetDefault(k, d)
	}
	// plain http on localhost in dev
	v.SetDefault("SESSION_SECURE", !isDev(v.GetString("APP_ENV")))

	c := Config{
		AppEnv:        v.GetString("APP_ENV"),
		HTTPAddr:      v.GetString("HTTP_ADDR"),
		MetricsAddr:   v.GetString("METRICS_ADDR"),
		StoreDriver:   strings.ToLower(v.GetString("STORE_DRIVER")),
		MySQLDSN:      v.GetString("MYSQL_DSN"),
		RESTBase:      v.GetString("REST_BASE_URL"),
		RESTKey:       v.GetString("REST_API_KEY"),
		RESTRPS:       v.GetInt("REST_RPS"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPass:     v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		SessionKey:    v.GetString("SESSION_KEY"),
		SessionSecure: v.GetBool("SESSION_SECURE"),
		SeedWorkers:   v.GetInt("SEED_WORKERS"),
		SeedFile:      v.GetString("SEED_FILE"),
		ContactRPS:    v.GetFloat64("CONTACT_RPS"),
		LoginRPS:      v.GetFloat64("LOGIN_RPS"),
	}
	if c.StoreDriver == "rest" && c.RESTKey == "" {
		log.Warn().Msg("REST_API_KEY is empty")
	}
	if c.SessionKey == "" && !c.IsDev() {
		log.Warn().Msg("SESSION_KEY is empty; sessions will not survive a restart")
	}
	return c
}
