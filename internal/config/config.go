// Package config собирает настройки клиента и dev сервера из флагов,
// переменных окружения BANKTECH_* и необязательного файла конфигурации.
// Приоритет: флаг, затем переменная окружения, затем файл, затем значение по умолчанию.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "BANKTECH"

// Ключи настроек. Совпадают с именами флагов.
const (
	KeyConfig              = "config"
	KeyServer              = "server"
	KeyDB                  = "db"
	KeyTimeout             = "timeout"
	KeyLogLevel            = "log-level"
	KeyStorePassphrase     = "store-passphrase"
	KeyStorePassphraseFile = "store-passphrase-file"
	KeyAddr                = "addr"
	KeyDSN                 = "dsn"
	KeyJWTSecret           = "jwt-secret"
	KeyAccessTTL           = "access-ttl"
	KeyRefreshTTL          = "refresh-ttl"
	KeyAuthRateLimit       = "auth-rate-limit"
)

// Значения по умолчанию
const (
	DefaultServer     = "http://localhost:8080/api"
	DefaultDB         = "banktech-client.db"
	DefaultTimeout    = 30 * time.Second
	DefaultLogLevel   = "warn"
	DefaultAddr       = ":8080"
	DefaultDSN        = "banktech-server.db"
	DefaultJWTSecret  = "banktech-dev-secret"
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour

	DefaultAuthRateLimit = 20 // запросов в минуту с одного адреса
)

var (
	// ErrInvalidServerURL адрес API не является http(s) URL
	ErrInvalidServerURL = errors.New("invalid server URL")

	// ErrInvalidDuration неположительная длительность
	ErrInvalidDuration = errors.New("duration must be positive")

	// ErrEmptyPassphraseFile файл с ключевой фразой пуст
	ErrEmptyPassphraseFile = errors.New("passphrase file is empty")
)

// Client настройки CLI клиента
type Client struct {
	Server          string        // базовый URL API
	DBPath          string        // путь к файлу bbolt
	StorePassphrase string        // ключевая фраза шифрования токенов, пустая строка отключает шифрование
	Timeout         time.Duration // таймаут HTTP запроса
	LogLevel        slog.Level
}

// Server настройки dev сервера
type Server struct {
	Addr       string
	DSN        string // путь к файлу sqlite
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	LogLevel   slog.Level
	// AuthRateLimit лимит запросов к публичным /auth маршрутам в минуту
	AuthRateLimit int
}

// New создает viper, читающий переменные окружения BANKTECH_*.
// Дефисы в ключах заменяются подчеркиваниями: log-level -> BANKTECH_LOG_LEVEL.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// RegisterClientFlags добавляет флаги клиента
func RegisterClientFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "Path to config file (yaml, json or toml)")
	fs.String(KeyServer, DefaultServer, "API base URL")
	fs.String(KeyDB, DefaultDB, "Path to local session database")
	fs.Duration(KeyTimeout, DefaultTimeout, "HTTP request timeout")
	fs.String(KeyLogLevel, DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.String(KeyStorePassphrase, "", "Passphrase for encrypting stored tokens (prefer env or file)")
	fs.String(KeyStorePassphraseFile, "", "Path to file containing the store passphrase")
}

// RegisterServerFlags добавляет флаги dev сервера
func RegisterServerFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "Path to config file (yaml, json or toml)")
	fs.String(KeyAddr, DefaultAddr, "Listen address")
	fs.String(KeyDSN, DefaultDSN, "Path to sqlite database")
	fs.String(KeyJWTSecret, DefaultJWTSecret, "HMAC secret for access tokens")
	fs.Duration(KeyAccessTTL, DefaultAccessTTL, "Access token lifetime")
	fs.Duration(KeyRefreshTTL, DefaultRefreshTTL, "Refresh token lifetime")
	fs.Int(KeyAuthRateLimit, DefaultAuthRateLimit, "Requests per minute per client to public auth routes")
	fs.String(KeyLogLevel, "info", "Log level: debug, info, warn, error")
}

// bind связывает флаги с viper и читает файл конфигурации, если он задан
func bind(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if path := v.GetString(KeyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return nil
}

// LoadClient читает настройки клиента
func LoadClient(v *viper.Viper, fs *pflag.FlagSet) (*Client, error) {
	if err := bind(v, fs); err != nil {
		return nil, err
	}

	server := strings.TrimRight(v.GetString(KeyServer), "/")
	if err := validateServerURL(server); err != nil {
		return nil, err
	}

	timeout := v.GetDuration(KeyTimeout)
	if timeout <= 0 {
		return nil, fmt.Errorf("%s: %w", KeyTimeout, ErrInvalidDuration)
	}

	level, err := ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}

	passphrase, err := readPassphrase(v.GetString(KeyStorePassphrase), v.GetString(KeyStorePassphraseFile))
	if err != nil {
		return nil, err
	}

	return &Client{
		Server:          server,
		DBPath:          v.GetString(KeyDB),
		StorePassphrase: passphrase,
		Timeout:         timeout,
		LogLevel:        level,
	}, nil
}

// LoadServer читает настройки dev сервера
func LoadServer(v *viper.Viper, fs *pflag.FlagSet) (*Server, error) {
	if err := bind(v, fs); err != nil {
		return nil, err
	}

	cfg := &Server{
		Addr:       v.GetString(KeyAddr),
		DSN:        v.GetString(KeyDSN),
		JWTSecret:  v.GetString(KeyJWTSecret),
		AccessTTL:  v.GetDuration(KeyAccessTTL),
		RefreshTTL: v.GetDuration(KeyRefreshTTL),

		AuthRateLimit: v.GetInt(KeyAuthRateLimit),
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("%s: %w", KeyAccessTTL, ErrInvalidDuration)
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("%s: %w", KeyRefreshTTL, ErrInvalidDuration)
	}
	if cfg.AuthRateLimit <= 0 {
		return nil, fmt.Errorf("%s must be positive", KeyAuthRateLimit)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyJWTSecret)
	}

	level, err := ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

// readPassphrase возвращает ключевую фразу: значение из флага или окружения,
// иначе содержимое файла без завершающих пробелов
func readPassphrase(value, file string) (string, error) {
	if value != "" {
		return value, nil
	}
	if file == "" {
		return "", nil
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase file: %w", err)
	}
	passphrase := strings.TrimSpace(string(content))
	if passphrase == "" {
		return "", ErrEmptyPassphraseFile
	}
	return passphrase, nil
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidServerURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidServerURL, raw)
	}
	return nil
}

// ParseLogLevel разбирает уровень логирования
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger создает текстовый логгер с заданным уровнем
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
