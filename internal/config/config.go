package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-SalonBooking/internal/domain"
	"github.com/m04kA/SMC-SalonBooking/pkg/types"
)

// ErrInvalidConfig конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logs      LogsConfig      `toml:"logs"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Tracing   TracingConfig   `toml:"tracing"`
	Calendar  CalendarConfig  `toml:"calendar"`
	Catalog   CatalogConfig   `toml:"catalog"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Outbox    OutboxConfig    `toml:"outbox"`
}

type ServerConfig struct {
	HTTPPort        int   `toml:"http_port"`
	ReadTimeout     int   `toml:"read_timeout"`     // секунды
	WriteTimeout    int   `toml:"write_timeout"`    // секунды
	IdleTimeout     int   `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int   `toml:"shutdown_timeout"` // секунды
	RequestTimeout  int   `toml:"request_timeout"`  // секунды, таймаут обработчика
	MaxBodyBytes    int64 `toml:"max_body_bytes"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `toml:"auto_migrate"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type TracingConfig struct {
	Enabled     bool    `toml:"enabled"`
	ServiceName string  `toml:"service_name"`
	Endpoint    string  `toml:"endpoint"`
	SampleRatio float64 `toml:"sample_ratio"`
}

type CalendarConfig struct {
	Timezone        string              `toml:"timezone"`
	SlotStepMinutes int                 `toml:"slot_step_minutes"`
	MinLeadMinutes  int                 `toml:"min_lead_minutes"`
	MaxHorizonDays  int                 `toml:"max_horizon_days"`
	MaxRangeDays    int                 `toml:"max_range_days"`
	Weekly          map[string][]string `toml:"weekly"` // monday = ["10:00-14:00", "16:00-20:00"]
}

type CatalogConfig struct {
	CacheTTL int `toml:"cache_ttl"` // секунды, 0 - без кэша
}

type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	Limit         int    `toml:"limit"` // запросов за окно на клиента
	WindowSeconds int    `toml:"window_seconds"`
	RedisAddr     string `toml:"redis_addr"` // пусто - лимитер в памяти процесса
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	FailOpen      bool   `toml:"fail_open"`

	// Адреса или подсети прокси, которым доверяется X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`
}

// TrustedProxyPrefixes разбирает trusted_proxies; одиночный адрес превращается в подсеть из одного адреса
func (c RateLimitConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, entry := range c.TrustedProxies {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: rate_limit.trusted_proxies %q: %v", ErrInvalidConfig, entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: rate_limit.trusted_proxies %q: %v", ErrInvalidConfig, entry, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

type OutboxConfig struct {
	Enabled             bool     `toml:"enabled"`
	Brokers             []string `toml:"brokers"`
	TopicPrefix         string   `toml:"topic_prefix"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	BatchSize           int      `toml:"batch_size"`
}

// Load читает TOML, затем .env (если есть) и переменные окружения поверх файла
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
			RequestTimeout:  12,
			MaxBodyBytes:    1 << 20,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs:    LogsConfig{Level: "info"},
		Metrics: MetricsConfig{ServiceName: "salon_booking", Path: "/metrics"},
		Tracing: TracingConfig{ServiceName: "salon-booking", SampleRatio: 1},
		Calendar: CalendarConfig{
			Timezone:        "Europe/Madrid",
			SlotStepMinutes: 15,
			MaxHorizonDays:  183,
			MaxRangeDays:    62,
		},
		Catalog:   CatalogConfig{CacheTTL: 60},
		RateLimit: RateLimitConfig{Limit: 30, WindowSeconds: 60, FailOpen: true},
		Outbox:    OutboxConfig{TopicPrefix: "salon", PollIntervalSeconds: 2, BatchSize: 50},
	}
}

// applyEnv переопределяет секреты и адреса из окружения
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, key, v)
		}
		*dst = n
		return nil
	}

	setString("DB_HOST", &c.Database.Host)
	setString("DB_USER", &c.Database.User)
	setString("DB_PASSWORD", &c.Database.Password)
	setString("DB_NAME", &c.Database.DBName)
	setString("LOG_LEVEL", &c.Logs.Level)
	setString("REDIS_ADDR", &c.RateLimit.RedisAddr)
	setString("REDIS_PASSWORD", &c.RateLimit.RedisPassword)
	setString("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Tracing.Endpoint)

	if v, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		c.Outbox.Brokers = splitList(v)
	}

	if err := setInt("DB_PORT", &c.Database.Port); err != nil {
		return err
	}
	return setInt("HTTP_PORT", &c.Server.HTTPPort)
}

// Validate проверяет конфигурацию; ошибка календаря фатальна при старте
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database.host and database.dbname are required", ErrInvalidConfig)
	}
	if c.Calendar.MaxRangeDays <= 0 {
		return fmt.Errorf("%w: calendar.max_range_days must be positive", ErrInvalidConfig)
	}
	if c.Outbox.Enabled && len(c.Outbox.Brokers) == 0 {
		return fmt.Errorf("%w: outbox.brokers is required when outbox is enabled", ErrInvalidConfig)
	}
	if _, err := c.RateLimit.TrustedProxyPrefixes(); err != nil {
		return err
	}
	if _, err := c.CalendarSettings(); err != nil {
		return err
	}
	return nil
}

// CalendarSettings собирает настройки BusinessCalendar из секции calendar
func (c *Config) CalendarSettings() (domain.CalendarSettings, error) {
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return domain.CalendarSettings{}, fmt.Errorf("%w: calendar.timezone %q: %v", ErrInvalidConfig, c.Calendar.Timezone, err)
	}

	weekly := make(map[time.Weekday][]domain.DayBlock, len(c.Calendar.Weekly))
	for name, ranges := range c.Calendar.Weekly {
		day, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return domain.CalendarSettings{}, fmt.Errorf("%w: calendar.weekly: unknown weekday %q", ErrInvalidConfig, name)
		}
		for _, r := range ranges {
			block, err := parseBlock(r)
			if err != nil {
				return domain.CalendarSettings{}, fmt.Errorf("%w: calendar.weekly.%s: %v", ErrInvalidConfig, name, err)
			}
			weekly[day] = append(weekly[day], block)
		}
	}

	settings := domain.CalendarSettings{
		Location:    loc,
		Weekly:      weekly,
		SlotStep:    time.Duration(c.Calendar.SlotStepMinutes) * time.Minute,
		MinLeadTime: time.Duration(c.Calendar.MinLeadMinutes) * time.Minute,
		MaxHorizon:  time.Duration(c.Calendar.MaxHorizonDays) * 24 * time.Hour,
	}

	// Та же проверка, что и при построении календаря
	if _, err := domain.NewBusinessCalendar(settings); err != nil {
		return domain.CalendarSettings{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return settings, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseBlock разбирает "10:00-14:00"
func parseBlock(s string) (domain.DayBlock, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return domain.DayBlock{}, fmt.Errorf("block %q: expected HH:MM-HH:MM", s)
	}
	start, err := types.ParseTimeOfDay(strings.TrimSpace(parts[0]))
	if err != nil {
		return domain.DayBlock{}, fmt.Errorf("block %q: %v", s, err)
	}
	end, err := types.ParseTimeOfDay(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.DayBlock{}, fmt.Errorf("block %q: %v", s, err)
	}
	return domain.DayBlock{Start: start, End: end}, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
