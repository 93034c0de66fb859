package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Store backends understood by storage.Open.
const (
	StoreFile   = "file"
	StoreDiskv  = "diskv"
	StoreRedis  = "redis"
	StoreMySQL  = "mysql"
	StoreRemote = "remote"
)

// Settings is the resolved runtime configuration. Every key can be set in
// ghg_reports.yaml, as GHG_<KEY>, or through the plain variable listed in
// envAliases.
type Settings struct {
	Port     string
	Env      string
	LogLevel string

	StoreBackend    string
	DataFile        string
	DiskvPath       string
	DiskvCacheBytes uint64
	RedisAddress    string
	RecordTTL       time.Duration
	RemoteBaseURL   string
	RemoteTimeout   time.Duration
	SaveDebounce    time.Duration
	SkipMigrations  bool
	MySQL           MySQLSettings

	CORSAllowedOrigins []string
	RateLimitEnabled   bool
	RateLimitMax       int64
	RateLimitWindow    time.Duration

	ReportCacheEnabled bool
	ReportCacheTTL     time.Duration
	ReportSlow         time.Duration

	ExportBucket  string
	ExportTopic   string
	PubSubProject string
}

// Production reports whether the service runs with GO_ENV=production.
func (s Settings) Production() bool {
	return strings.EqualFold(strings.TrimSpace(s.Env), "production")
}

var defaults = map[string]any{
	"port":                      "8080",
	"env":                       "",
	"log_level":                 "info",
	"store":                     StoreFile,
	"data_file":                 "server-data.json",
	"diskv_path":                "~/.ghg_reports",
	"diskv_cache_bytes":         1024 * 1024,
	"redis_address":             "localhost:6379",
	"record_ttl_seconds":        0,
	"remote_url":                "",
	"remote_timeout_seconds":    10,
	"save_debounce_ms":          2000,
	"skip_migrations":           false,
	"cors_allowed_origins":      "",
	"rate_limit_enabled":        false,
	"rate_limit_max_requests":   600,
	"rate_limit_window_seconds": 60,
	"report_cache_enabled":      false,
	"report_cache_ttl_seconds":  120,
	"report_slow_ms":            500,
	"export_bucket":             "",
	"export_topic":              "",
	"pubsub_project":            "",

	"db_host":                       "localhost",
	"db_port":                       "3306",
	"db_user":                       "",
	"db_password":                   "",
	"db_name":                       "ghg_reports",
	"db_max_open_conns":             50,
	"db_max_idle_conns":             25,
	"db_conn_max_lifetime_seconds":  300,
	"db_conn_max_idle_time_seconds": 60,
	"gorm_log":                      "",
}

// envAliases keeps the unprefixed variable names deployments already set.
var envAliases = map[string]string{
	"port":                      "PORT",
	"env":                       "GO_ENV",
	"log_level":                 "LOG_LEVEL",
	"store":                     "STORE_BACKEND",
	"data_file":                 "DATA_FILE",
	"redis_address":             "REDIS_ADDRESS",
	"save_debounce_ms":          "SAVE_DEBOUNCE_MS",
	"skip_migrations":           "SKIP_MIGRATIONS",
	"cors_allowed_origins":      "CORS_ALLOWED_ORIGINS",
	"rate_limit_enabled":        "RATE_LIMIT_ENABLED",
	"rate_limit_max_requests":   "RATE_LIMIT_MAX_REQUESTS",
	"rate_limit_window_seconds": "RATE_LIMIT_WINDOW_SECONDS",
	"report_cache_enabled":      "ENABLE_REPORT_CACHE",
	"report_cache_ttl_seconds":  "REPORT_CACHE_TTL_SECONDS",
	"report_slow_ms":            "REPORT_SLOW_MS",
	"export_bucket":             "GCS_BUCKET",
	"export_topic":              "PUBSUB_TOPIC",
	"pubsub_project":            "PUBSUB_PROJECT_ID",

	"db_host":                       "DB_HOST",
	"db_port":                       "DB_PORT",
	"db_user":                       "DB_USER",
	"db_password":                   "DB_PASSWORD",
	"db_name":                       "DB_NAME",
	"db_max_open_conns":             "DB_MAX_OPEN_CONNS",
	"db_max_idle_conns":             "DB_MAX_IDLE_CONNS",
	"db_conn_max_lifetime_seconds":  "DB_CONN_MAX_LIFETIME_SECONDS",
	"db_conn_max_idle_time_seconds": "DB_CONN_MAX_IDLE_TIME_SECONDS",
	"gorm_log":                      "GORM_LOG",
}

var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error
)

func init() {
	// Load env from .env
	godotenv.Load()
}

// GetSettings loads the settings once per process.
func GetSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = LoadSettings(newViper())
	})
	return settings, settingsErr
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("ghg_reports") // .yaml is implicit
	v.SetEnvPrefix("GHG")
	v.AutomaticEnv()
	if override := os.Getenv("GHG_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	for key, def := range defaults {
		v.SetDefault(key, def)
	}
	for key, env := range envAliases {
		_ = v.BindEnv(key, env)
	}
	return v
}

// LoadSettings resolves Settings from v. A missing config file is not an
// error.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, err
		}
	}
	diskvPath, err := homedir.Expand(v.GetString("diskv_path"))
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Port:     v.GetString("port"),
		Env:      v.GetString("env"),
		LogLevel: v.GetString("log_level"),

		StoreBackend:    strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		DataFile:        v.GetString("data_file"),
		DiskvPath:       diskvPath,
		DiskvCacheBytes: v.GetUint64("diskv_cache_bytes"),
		RedisAddress:    v.GetString("redis_address"),
		RecordTTL:       seconds(v.GetInt("record_ttl_seconds")),
		RemoteBaseURL:   strings.TrimRight(v.GetString("remote_url"), "/"),
		RemoteTimeout:   seconds(v.GetInt("remote_timeout_seconds")),
		SaveDebounce:    time.Duration(v.GetInt("save_debounce_ms")) * time.Millisecond,
		SkipMigrations:  v.GetBool("skip_migrations"),
		MySQL: MySQLSettings{
			Host:            v.GetString("db_host"),
			Port:            v.GetString("db_port"),
			User:            v.GetString("db_user"),
			Password:        v.GetString("db_password"),
			Name:            v.GetString("db_name"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: seconds(v.GetInt("db_conn_max_lifetime_seconds")),
			ConnMaxIdleTime: seconds(v.GetInt("db_conn_max_idle_time_seconds")),
			LogFile:         v.GetString("gorm_log"),
		},

		CORSAllowedOrigins: SplitAndTrim(v.GetString("cors_allowed_origins")),
		RateLimitEnabled:   v.GetBool("rate_limit_enabled"),
		RateLimitMax:       v.GetInt64("rate_limit_max_requests"),
		RateLimitWindow:    seconds(v.GetInt("rate_limit_window_seconds")),

		ReportCacheEnabled: v.GetBool("report_cache_enabled"),
		ReportCacheTTL:     seconds(v.GetInt("report_cache_ttl_seconds")),
		ReportSlow:         time.Duration(v.GetInt("report_slow_ms")) * time.Millisecond,

		ExportBucket:  v.GetString("export_bucket"),
		ExportTopic:   v.GetString("export_topic"),
		PubSubProject: firstNonEmpty(v.GetString("pubsub_project"), os.Getenv("GOOGLE_CLOUD_PROJECT"), os.Getenv("GCP_PROJECT")),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// SplitAndTrim splits a comma separated list and drops empty parts.
func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
