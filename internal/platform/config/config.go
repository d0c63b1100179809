package config

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultInvitationTTL   = 7 * 24 * time.Hour
	defaultTokenTTL        = 30 * time.Minute
	defaultSMTPSendTimeout = 30 * time.Second
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultHealthAddr      = ":50051"
	defaultPublicRPS       = 5
	defaultPublicBurst     = 10
	minJWTSecretLength     = 32
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
	Auth       AuthConfig       `yaml:"auth"`
	SMTP       SMTPConfig       `yaml:"smtp"`
	Invitation InvitationConfig `yaml:"invitation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig は HTTP サーバーとヘルスチェック用 gRPC サーバーの設定です。
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr" env:"SERVER_LISTEN_ADDR"`
	HealthAddr      string        `yaml:"health_addr" env:"SERVER_HEALTH_ADDR"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ReadTimeoutRaw  string        `yaml:"read_timeout"`
	WriteTimeoutRaw string        `yaml:"write_timeout"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host" env:"DATABASE_HOST"`
	Port               int           `yaml:"port" env:"DATABASE_PORT"`
	User               string        `yaml:"user" env:"DATABASE_USER"`
	Password           string        `yaml:"password" env:"DATABASE_PASSWORD"`
	Name               string        `yaml:"name" env:"DATABASE_NAME"`
	SSLMode            string        `yaml:"ssl_mode" env:"DATABASE_SSL_MODE"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL"`
	Development bool   `yaml:"development" env:"LOG_DEV"`
}

// AuthConfig はアクセストークンとパスワードハッシュの設定です。
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	Issuer      string        `yaml:"issuer"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
	TokenTTL    time.Duration `yaml:"-"`
	TokenTTLRaw string        `yaml:"token_ttl"`
}

// SMTPConfig はメール送信の設定です。Enabled が false の場合はログ出力のみ行います。
type SMTPConfig struct {
	Enabled        bool          `yaml:"enabled" env:"SMTP_ENABLED"`
	Host           string        `yaml:"host" env:"SMTP_HOST"`
	Port           int           `yaml:"port" env:"SMTP_PORT"`
	Username       string        `yaml:"username" env:"SMTP_USERNAME"`
	Password       string        `yaml:"password" env:"SMTP_PASSWORD"`
	FromEmail      string        `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	FromName       string        `yaml:"from_name" env:"SMTP_FROM_NAME"`
	SendTimeout    time.Duration `yaml:"-"`
	SendTimeoutRaw string        `yaml:"send_timeout"`
}

// InvitationConfig は招待の有効期限と受諾画面の URL を保持します。
type InvitationConfig struct {
	AcceptURL string        `yaml:"accept_url" env:"INVITATION_ACCEPT_URL"`
	TTL       time.Duration `yaml:"-"`
	TTLRaw    string        `yaml:"ttl"`
}

// RateLimitConfig は認証不要エンドポイントのレート制限です。
type RateLimitConfig struct {
	PublicRPS   float64 `yaml:"public_rps"`
	PublicBurst int     `yaml:"public_burst"`
}

// Load は指定されたパスから設定ファイルを読み込み、環境変数で上書きします。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if err := c.Server.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Auth.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.SMTP.validateAndNormalize(); err != nil {
		return err
	}
	if err := c.Invitation.validateAndNormalize(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RateLimit.PublicRPS <= 0 {
		c.RateLimit.PublicRPS = defaultPublicRPS
	}
	if c.RateLimit.PublicBurst <= 0 {
		c.RateLimit.PublicBurst = defaultPublicBurst
	}

	return nil
}

func (s *ServerConfig) validateAndNormalize() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}
	if s.HealthAddr == "" {
		s.HealthAddr = defaultHealthAddr
	}
	if s.HealthAddr == s.ListenAddr {
		return fmt.Errorf("config: server.health_addr must differ from server.listen_addr")
	}

	read, err := parseDurationDefault(s.ReadTimeoutRaw, defaultReadTimeout)
	if err != nil {
		return fmt.Errorf("config: server.read_timeout: %w", err)
	}
	s.ReadTimeout = read

	write, err := parseDurationDefault(s.WriteTimeoutRaw, defaultWriteTimeout)
	if err != nil {
		return fmt.Errorf("config: server.write_timeout: %w", err)
	}
	s.WriteTimeout = write

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationDefault(d.ConnMaxLifetimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationDefault(d.ConnMaxIdleTimeRaw, 0)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (a *AuthConfig) validateAndNormalize() error {
	if len(a.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("config: auth.jwt_secret must be at least %d bytes", minJWTSecretLength)
	}
	if a.Issuer == "" {
		a.Issuer = "workforce-api"
	}

	ttl, err := parseDurationDefault(a.TokenTTLRaw, defaultTokenTTL)
	if err != nil {
		return fmt.Errorf("config: auth.token_ttl: %w", err)
	}
	a.TokenTTL = ttl

	return nil
}

func (s *SMTPConfig) validateAndNormalize() error {
	timeout, err := parseDurationDefault(s.SendTimeoutRaw, defaultSMTPSendTimeout)
	if err != nil {
		return fmt.Errorf("config: smtp.send_timeout: %w", err)
	}
	s.SendTimeout = timeout

	if s.FromName == "" {
		s.FromName = "Employee Management System"
	}

	if !s.Enabled {
		return nil
	}
	if s.Host == "" {
		return fmt.Errorf("config: smtp.host must be set when smtp is enabled")
	}
	if s.Port == 0 {
		s.Port = 587
	}
	if _, err := mail.ParseAddress(s.FromEmail); err != nil {
		return fmt.Errorf("config: smtp.from_email: %w", err)
	}
	return nil
}

func (i *InvitationConfig) validateAndNormalize() error {
	if i.AcceptURL == "" {
		return fmt.Errorf("config: invitation.accept_url must be set")
	}
	if _, err := url.ParseRequestURI(i.AcceptURL); err != nil {
		return fmt.Errorf("config: invitation.accept_url: %w", err)
	}

	ttl, err := parseDurationDefault(i.TTLRaw, defaultInvitationTTL)
	if err != nil {
		return fmt.Errorf("config: invitation.ttl: %w", err)
	}
	i.TTL = ttl

	return nil
}

func parseDurationDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", raw)
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。認証情報は URL エスケープされます。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
