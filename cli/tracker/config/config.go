package config

/*
Описание конфигурационного файла
*/

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/daniil11ru/qrtrack/cli/tracker/domain"
	"github.com/daniil11ru/qrtrack/cli/tracker/storage"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	SourcePostgreSQL = "postgresql"
	SourceMemory     = "memory"

	defaultApiPort                = 8080
	defaultFillLocationNamesCron  = "*/30 * * * *"
	defaultGeocoderTimeoutSec     = 5
	defaultGeocoderRequestsPerSec = 1.0
	defaultExportBuffer           = 1024
	defaultRateLimitWindowSec     = 60
	defaultShutdownTimeoutSec     = 10
)

type Policies struct {
	Locations string `yaml:"locations"`
	Devices   string `yaml:"devices"`
	QRCodes   string `yaml:"qrcodes"`
}

type Geocoder struct {
	Enabled           *bool   `yaml:"enabled"`
	URL               string  `yaml:"url"`
	UserAgent         string  `yaml:"user_agent"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

type RateLimit struct {
	Requests  int `yaml:"requests"`
	WindowSec int `yaml:"window_sec"`
}

type Settings struct {
	Host                   string                       `yaml:"host"`
	ApiPort                int                          `yaml:"api_port"`
	LogLevel               string                       `yaml:"log_level"`
	LogFilePath            string                       `yaml:"log_file_path"`
	LogMaxAgeDays          int                          `yaml:"log_max_age_days"`
	MigrationsPath         string                       `yaml:"migrations_path"`
	Source                 string                       `yaml:"source"`
	Database               map[string]string            `yaml:"database"`
	Store                  map[string]map[string]string `yaml:"storage"`
	EventFormat            string                       `yaml:"event_format"`
	Policies               Policies                     `yaml:"policies"`
	Geocoder               Geocoder                     `yaml:"geocoder"`
	CodeMaxAttempts        int                          `yaml:"code_max_attempts"`
	FillLocationNamesCron  string                       `yaml:"fill_location_names_cron"`
	FillLocationNamesBatch int                          `yaml:"fill_location_names_batch"`
	ExportBuffer           int                          `yaml:"export_buffer"`
	ExportWorkers          int                          `yaml:"export_workers"`
	RateLimit              RateLimit                    `yaml:"rate_limit"`
	ShutdownTimeoutSec     int                          `yaml:"shutdown_timeout_sec"`
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func (s *Settings) GetApiAddress() string {
	return s.Host + ":" + strconv.Itoa(s.ApiPort)
}

func (s *Settings) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		s.Database["host"], s.Database["user"], s.Database["password"], s.Database["database"], s.Database["port"], s.Database["sslmode"])
}

func (s *Settings) GetDatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.Database["user"], s.Database["password"]),
		Host:     s.Database["host"] + ":" + s.Database["port"],
		Path:     "/" + s.Database["database"],
		RawQuery: "sslmode=" + s.Database["sslmode"],
	}
	return u.String()
}

func (s *Settings) GetGeocoderTimeout() time.Duration {
	return time.Duration(s.Geocoder.TimeoutSec) * time.Second
}

func (s *Settings) IsGeocoderEnabled() bool {
	return s.Geocoder.Enabled == nil || *s.Geocoder.Enabled
}

func (s *Settings) GetRateLimitWindow() time.Duration {
	return time.Duration(s.RateLimit.WindowSec) * time.Second
}

func (s *Settings) GetShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSec) * time.Second
}

func (s *Settings) GetPolicies() (locations, devices, qrcodes domain.UpdatePolicy) {
	return domain.UpdatePolicy(s.Policies.Locations), domain.UpdatePolicy(s.Policies.Devices), domain.UpdatePolicy(s.Policies.QRCodes)
}

func (s *Settings) GetEventFormat() storage.Format {
	return storage.Format(s.EventFormat)
}

func validatePolicy(name string, value *string, def domain.UpdatePolicy) {
	if *value == "" {
		*value = string(def)
		return
	}
	if _, err := domain.ParseUpdatePolicy(*value); err != nil {
		log.Errorf("Недопустимая политика обновления для %s: %q. Используется %s.", name, *value, def)
		*value = string(def)
	}
}

func (s *Settings) applyDefaults() {
	if s.ApiPort <= 0 || s.ApiPort > 65535 {
		if s.ApiPort != 0 {
			log.Errorf("Недопустимый api_port (%d). Используется %d.", s.ApiPort, defaultApiPort)
		}
		s.ApiPort = defaultApiPort
	}

	switch s.Source {
	case "":
		s.Source = SourcePostgreSQL
	case SourcePostgreSQL, SourceMemory:
	default:
		log.Errorf("Неизвестный источник данных %q. Используется %s.", s.Source, SourcePostgreSQL)
		s.Source = SourcePostgreSQL
	}

	if s.MigrationsPath == "" {
		s.MigrationsPath = "file://migrations"
	}

	if _, err := storage.ParseFormat(s.EventFormat); err != nil {
		log.Errorf("Неизвестный формат событий %q. Используется json.", s.EventFormat)
		s.EventFormat = string(storage.FormatJSON)
	} else if s.EventFormat == "" {
		s.EventFormat = string(storage.FormatJSON)
	}

	validatePolicy("locations", &s.Policies.Locations, domain.PolicyAlwaysAppend)
	validatePolicy("devices", &s.Policies.Devices, domain.PolicyAlwaysAppend)
	validatePolicy("qrcodes", &s.Policies.QRCodes, domain.PolicyAppendIfMoved)

	if s.Geocoder.TimeoutSec <= 0 {
		s.Geocoder.TimeoutSec = defaultGeocoderTimeoutSec
	}
	if s.Geocoder.RequestsPerSecond <= 0 {
		s.Geocoder.RequestsPerSecond = defaultGeocoderRequestsPerSec
	}

	if s.CodeMaxAttempts <= 0 {
		s.CodeMaxAttempts = domain.DefaultMaxAttempts
	}

	if s.FillLocationNamesCron == "" {
		s.FillLocationNamesCron = defaultFillLocationNamesCron
	}
	if s.FillLocationNamesBatch <= 0 {
		s.FillLocationNamesBatch = domain.DefaultFillLocationNamesBatch
	}

	if s.ExportBuffer <= 0 {
		s.ExportBuffer = defaultExportBuffer
	}

	if s.RateLimit.Requests < 0 {
		log.Errorf("Недопустимое rate_limit.requests (%d). Ограничение отключено.", s.RateLimit.Requests)
		s.RateLimit.Requests = 0
	}
	if s.RateLimit.WindowSec <= 0 {
		s.RateLimit.WindowSec = defaultRateLimitWindowSec
	}

	if s.ShutdownTimeoutSec <= 0 {
		s.ShutdownTimeoutSec = defaultShutdownTimeoutSec
	}
}

// applyEnv подгружает .env рядом с конфигом и переопределяет секреты и порт из окружения.
func (s *Settings) applyEnv(confPath string) error {
	envPath := filepath.Join(filepath.Dir(confPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("ошибка чтения %s: %w", envPath, err)
	}

	if v := os.Getenv("TRACKER_DB_PASSWORD"); v != "" {
		if s.Database == nil {
			s.Database = make(map[string]string)
		}
		s.Database["password"] = v
	}
	if v := os.Getenv("TRACKER_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("некорректный TRACKER_API_PORT: %w", err)
		}
		s.ApiPort = port
	}
	if v := os.Getenv("TRACKER_LOG_LEVEL"); v != "" {
		s.LogLevel = v
	}
	return nil
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		return c, err
	}

	if err = c.applyEnv(confPath); err != nil {
		return c, err
	}

	c.applyDefaults()

	return c, nil
}
