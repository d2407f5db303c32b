package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearLegacyEnv はテスト実行環境の旧環境変数の影響を取り除く。
func clearLegacyEnv(t *testing.T) {
	t.Helper()

	for _, name := range []string{"BREVO_API_KEY", "JWT_SECRET", "PORT", "DATABASE_URL"} {
		t.Setenv(name, "")
	}
}

// writeYAML は一時ディレクトリに設定ファイルを書き出してパスを返す。
func writeYAML(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "makina.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("設定ファイルの書き込みに失敗: %v", err)
	}
	return path
}

// TestLoad_Defaults はファイルも環境変数も無い場合にデフォルト値が使われることを検証する。
func TestLoad_Defaults(t *testing.T) {
	clearLegacyEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}

	if cfg.Server.Port != 8086 {
		t.Errorf("Server.Port = %d, want 8086", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "sqlite")
	}
	if cfg.Sweep.At != "09:00" {
		t.Errorf("Sweep.At = %q, want %q", cfg.Sweep.At, "09:00")
	}
	if cfg.Sweep.EmailConcurrency != 1 {
		t.Errorf("Sweep.EmailConcurrency = %d, want 1", cfg.Sweep.EmailConcurrency)
	}
	if cfg.Sweep.MaxReminders != 10000 {
		t.Errorf("Sweep.MaxReminders = %d, want 10000", cfg.Sweep.MaxReminders)
	}
	if cfg.Sweep.Lock.TTL != 10*time.Minute {
		t.Errorf("Sweep.Lock.TTL = %v, want 10m", cfg.Sweep.Lock.TTL)
	}
	if cfg.Sweep.Lock.RedisURL != "" {
		t.Errorf("Sweep.Lock.RedisURL = %q, want empty", cfg.Sweep.Lock.RedisURL)
	}
	if cfg.Mail.Driver != "brevo" {
		t.Errorf("Mail.Driver = %q, want %q", cfg.Mail.Driver, "brevo")
	}
	if cfg.Mail.SenderName != "Makina Ime" || cfg.Mail.SenderEmail != "infomakinaime@gmail.com" {
		t.Errorf("差出人 = %q <%q>", cfg.Mail.SenderName, cfg.Mail.SenderEmail)
	}
	if cfg.Mail.DashboardURL != "https://makinaime.dpdns.org" {
		t.Errorf("Mail.DashboardURL = %q", cfg.Mail.DashboardURL)
	}
	if cfg.Mail.Brevo.Timeout != 30*time.Second {
		t.Errorf("Mail.Brevo.Timeout = %v, want 30s", cfg.Mail.Brevo.Timeout)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("Server.AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.DevTokens {
		t.Error("Server.DevTokens は既定で無効であるべき")
	}
}

// TestLoad_FileAndEnv はファイルと環境変数の優先順位を検証する。
func TestLoad_FileAndEnv(t *testing.T) {
	clearLegacyEnv(t)

	path := writeYAML(t, `
server:
  port: 9000
sweep:
  at: "07:30"
  timezone: Europe/Tirane
  email_concurrency: 4
mail:
  driver: smtp
  smtp:
    host: smtp.example.com
`)
	t.Setenv("MAKINA_SERVER__PORT", "9100")
	t.Setenv("MAKINA_SWEEP__LOCK__TTL", "90s")
	t.Setenv("MAKINA_SERVER__ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100（環境変数が優先）", cfg.Server.Port)
	}
	if cfg.Sweep.At != "07:30" {
		t.Errorf("Sweep.At = %q, want %q", cfg.Sweep.At, "07:30")
	}
	if cfg.Sweep.EmailConcurrency != 4 {
		t.Errorf("Sweep.EmailConcurrency = %d, want 4", cfg.Sweep.EmailConcurrency)
	}
	if cfg.Sweep.Lock.TTL != 90*time.Second {
		t.Errorf("Sweep.Lock.TTL = %v, want 90s", cfg.Sweep.Lock.TTL)
	}
	if cfg.Mail.SMTP.Host != "smtp.example.com" {
		t.Errorf("Mail.SMTP.Host = %q", cfg.Mail.SMTP.Host)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("Server.AllowedOrigins = %v, want 2件", cfg.Server.AllowedOrigins)
	}

	loc, err := cfg.Sweep.Location()
	if err != nil {
		t.Fatalf("Location()でエラーが発生: %v", err)
	}
	if loc.String() != "Europe/Tirane" {
		t.Errorf("Location = %q, want %q", loc.String(), "Europe/Tirane")
	}
}

// TestLoad_LegacyEnv は旧デプロイの環境変数が反映されることを検証する。
func TestLoad_LegacyEnv(t *testing.T) {
	clearLegacyEnv(t)
	t.Setenv("BREVO_API_KEY", "xkeysib-legacy")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("PORT", "8123")
	t.Setenv("DATABASE_URL", "postgres://makina:pw@db:5432/makina?sslmode=disable")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load()でエラーが発生: %v", err)
	}

	if cfg.Mail.Brevo.APIKey != "xkeysib-legacy" {
		t.Errorf("Mail.Brevo.APIKey = %q", cfg.Mail.Brevo.APIKey)
	}
	if cfg.Server.JWTSecret != "legacy-secret" {
		t.Errorf("Server.JWTSecret = %q", cfg.Server.JWTSecret)
	}
	if cfg.Server.Port != 8123 {
		t.Errorf("Server.Port = %d, want 8123", cfg.Server.Port)
	}
	if cfg.Database.Driver != "pgx" {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, "pgx")
	}

	t.Run("MAKINA_接頭辞の環境変数が旧環境変数より優先されること", func(t *testing.T) {
		t.Setenv("MAKINA_MAIL__BREVO__API_KEY", "xkeysib-new")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load()でエラーが発生: %v", err)
		}
		if cfg.Mail.Brevo.APIKey != "xkeysib-new" {
			t.Errorf("Mail.Brevo.APIKey = %q, want %q", cfg.Mail.Brevo.APIKey, "xkeysib-new")
		}
	})
}

// TestLoad_Invalid は不正な設定でErrInvalidConfigが返ることを検証する。
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "不正なドライバー", yaml: "database:\n  driver: mysql\n"},
		{name: "不正な時刻形式", yaml: "sweep:\n  at: \"9am\"\n"},
		{name: "存在しないタイムゾーン", yaml: "sweep:\n  timezone: Mars/Olympus\n"},
		{name: "同時実行数が0", yaml: "sweep:\n  email_concurrency: 0\n"},
		{name: "SMTPホスト未設定", yaml: "mail:\n  driver: smtp\n"},
		{name: "不正なメール配信方式", yaml: "mail:\n  driver: pigeon\n"},
		{name: "不正なログレベル", yaml: "log:\n  level: verbose\n"},
		{name: "不正な差出人アドレス", yaml: "mail:\n  sender_email: not-an-address\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearLegacyEnv(t)

			_, err := Load(writeYAML(t, tt.yaml))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	t.Run("存在しない設定ファイルでエラーが返ること", func(t *testing.T) {
		clearLegacyEnv(t)

		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatal("Load()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestSweepConfig_Clock は実行時刻の分解を検証する。
func TestSweepConfig_Clock(t *testing.T) {
	t.Parallel()

	h, m, err := SweepConfig{At: "09:05"}.Clock()
	if err != nil {
		t.Fatalf("Clock()でエラーが発生: %v", err)
	}
	if h != 9 || m != 5 {
		t.Errorf("Clock() = %d:%d, want 9:5", h, m)
	}

	if _, _, err := (SweepConfig{At: "25:00"}).Clock(); err == nil {
		t.Error("範囲外の時刻でエラーが返るべき")
	}
}
