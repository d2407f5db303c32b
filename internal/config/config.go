package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix は設定用環境変数の接頭辞。
const envPrefix = "MAKINA_"

// ErrInvalidConfig は設定値の検証に失敗したことを表す。
var ErrInvalidConfig = errors.New("設定値が不正です")

// Config はアプリケーション全体の設定。
type Config struct {
	// Server はHTTP APIの設定。
	Server ServerConfig `koanf:"server"`
	// Database はストアの接続設定。
	Database DatabaseConfig `koanf:"database"`
	// Sweep は日次スイープの設定。
	Sweep SweepConfig `koanf:"sweep"`
	// Mail はメール配信の設定。
	Mail MailConfig `koanf:"mail"`
	// Log はログ出力の設定。
	Log LogConfig `koanf:"log"`
	// Sentry はエラー通知の設定。
	Sentry SentryConfig `koanf:"sentry"`
}

// ServerConfig はHTTP APIの設定。
type ServerConfig struct {
	// Port は待ち受けポート番号。
	Port int `koanf:"port" validate:"min=1,max=65535"`
	// JWTSecret はJWT署名検証用のシークレット。
	JWTSecret string `koanf:"jwt_secret" validate:"required"`
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string `koanf:"allowed_origins"`
	// DevTokens は開発用JWTの発行エンドポイントを有効にするかどうか。
	DevTokens bool `koanf:"dev_tokens"`
}

// DatabaseConfig はストアの接続設定。
type DatabaseConfig struct {
	// Driver はdatabase/sqlドライバー名（sqlite または pgx）。
	Driver string `koanf:"driver" validate:"oneof=sqlite pgx"`
	// DSN はドライバーに渡す接続文字列。
	DSN string `koanf:"dsn" validate:"required"`
}

// SweepConfig は日次スイープの設定。
type SweepConfig struct {
	// At はスイープを実行する時刻（HH:MM、Timezoneの現地時刻）。
	At string `koanf:"at" validate:"required"`
	// Timezone は実行時刻と基準日の算出に使うIANAタイムゾーン名。
	Timezone string `koanf:"timezone" validate:"required"`
	// MaxReminders は1回のスイープで読み込むリマインダーの上限。
	MaxReminders int `koanf:"max_reminders" validate:"min=1"`
	// EmailConcurrency はメール送信の同時実行数。
	EmailConcurrency int `koanf:"email_concurrency" validate:"min=1,max=64"`
	// Lock は重複実行防止ロックの設定。
	Lock LockConfig `koanf:"lock"`
}

// LockConfig は重複実行防止ロックの設定。RedisURLが空の場合は無効。
type LockConfig struct {
	// RedisURL はロックに使うRedisのURL。
	RedisURL string `koanf:"redis_url" validate:"omitempty,url"`
	// TTL はロックの有効期限。
	TTL time.Duration `koanf:"ttl" validate:"min=1s"`
}

// MailConfig はメール配信の設定。
type MailConfig struct {
	// Driver は配信方式（brevo, smtp, none）。
	Driver string `koanf:"driver" validate:"oneof=brevo smtp none"`
	// SenderName は差出人名。
	SenderName string `koanf:"sender_name" validate:"required"`
	// SenderEmail は差出人メールアドレス。
	SenderEmail string `koanf:"sender_email" validate:"required,email"`
	// DashboardURL はメール本文のリンク先。
	DashboardURL string `koanf:"dashboard_url" validate:"required,url"`
	// Brevo はBrevo APIの設定。
	Brevo BrevoConfig `koanf:"brevo"`
	// SMTP はSMTPサーバーの設定。
	SMTP SMTPConfig `koanf:"smtp"`
}

// BrevoConfig はBrevo トランザクションメールAPIの設定。
type BrevoConfig struct {
	// APIKey はAPIキー。空の場合メール配信は無効になる。
	APIKey string `koanf:"api_key"`
	// BaseURL はAPIのベースURL。
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// Timeout は1リクエストのタイムアウト。
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// SMTPConfig はSMTPサーバーの設定。
type SMTPConfig struct {
	// Host はSMTPサーバーのホスト名。
	Host string `koanf:"host"`
	// Port はSMTPサーバーのポート番号。
	Port int `koanf:"port" validate:"min=1,max=65535"`
	// Username は認証ユーザー名。空の場合は認証しない。
	Username string `koanf:"username"`
	// Password は認証パスワード。
	Password string `koanf:"password"`
}

// LogConfig はログ出力の設定。
type LogConfig struct {
	// Level はログレベル（debug, info, warn, error）。
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	// Development は開発用の人間向けフォーマットで出力するかどうか。
	Development bool `koanf:"development"`
}

// SentryConfig はSentryへのエラー通知設定。DSNが空の場合は無効。
type SentryConfig struct {
	// DSN はSentryのDSN。
	DSN string `koanf:"dsn"`
	// Environment はSentry上の環境名。
	Environment string `koanf:"environment"`
}

// Load はデフォルト値、YAMLファイル、環境変数の順に設定を読み込み、検証して返す。
// pathが空の場合はファイルを読み込まない。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(newDefaultProvider(), nil); err != nil {
		return nil, fmt.Errorf("デフォルト設定の読み込みに失敗: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("設定ファイルの読み込みに失敗: %w", err)
		}
	}

	if err := loadLegacyEnv(k); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("設定の変換に失敗: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey は MAKINA_SWEEP__LOCK__TTL を sweep.lock.ttl に変換する。
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// loadLegacyEnv は旧デプロイの環境変数を対応する設定キーに反映する。
// MAKINA_ 接頭辞の環境変数はこの後に読み込まれるため、そちらが優先される。
func loadLegacyEnv(k *koanf.Koanf) error {
	legacy := []struct {
		name string
		key  string
	}{
		{name: "BREVO_API_KEY", key: "mail.brevo.api_key"},
		{name: "JWT_SECRET", key: "server.jwt_secret"},
		{name: "PORT", key: "server.port"},
		{name: "DATABASE_URL", key: "database.dsn"},
	}
	for _, l := range legacy {
		v := os.Getenv(l.name)
		if v == "" {
			continue
		}
		if err := k.Set(l.key, v); err != nil {
			return fmt.Errorf("環境変数 %s の反映に失敗: %w", l.name, err)
		}
	}

	if dsn := os.Getenv("DATABASE_URL"); strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		if err := k.Set("database.driver", "pgx"); err != nil {
			return fmt.Errorf("環境変数 DATABASE_URL の反映に失敗: %w", err)
		}
	}
	return nil
}

// Validate は設定値を検証する。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if _, _, err := c.Sweep.Clock(); err != nil {
		return fmt.Errorf("%w: sweep.at: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Sweep.Location(); err != nil {
		return fmt.Errorf("%w: sweep.timezone: %w", ErrInvalidConfig, err)
	}
	if c.Mail.Driver == "smtp" && c.Mail.SMTP.Host == "" {
		return fmt.Errorf("%w: mail.driver=smtp の場合 mail.smtp.host は必須です", ErrInvalidConfig)
	}
	return nil
}

// Clock はAtを時と分に分解する。
func (s SweepConfig) Clock() (hour, minute int, err error) {
	t, err := time.Parse("15:04", s.At)
	if err != nil {
		return 0, 0, fmt.Errorf("時刻はHH:MM形式で指定してください: %q", s.At)
	}
	return t.Hour(), t.Minute(), nil
}

// Location はTimezoneを解決する。"Local" はプロセスのローカルタイムゾーンを表す。
func (s SweepConfig) Location() (*time.Location, error) {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("タイムゾーンの解決に失敗: %w", err)
	}
	return loc, nil
}
