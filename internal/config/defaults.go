package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

// defaultConfig は全設定キーのデフォルト値を返す。
func defaultConfig() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"port":            8086,
			"jwt_secret":      "dev-secret-key",
			"allowed_origins": []string{"http://localhost:5173"},
			"dev_tokens":      false,
		},
		"database": map[string]any{
			"driver": "sqlite",
			"dsn":    "/data/makina.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
		},
		"sweep": map[string]any{
			"at":                "09:00",
			"timezone":          "Local",
			"max_reminders":     10000,
			"email_concurrency": 1,
			"lock": map[string]any{
				"redis_url": "",
				"ttl":       "10m",
			},
		},
		"mail": map[string]any{
			"driver":        "brevo",
			"sender_name":   "Makina Ime",
			"sender_email":  "infomakinaime@gmail.com",
			"dashboard_url": "https://makinaime.dpdns.org",
			"brevo": map[string]any{
				"api_key":  "",
				"base_url": "https://api.brevo.com",
				"timeout":  "30s",
			},
			"smtp": map[string]any{
				"host":     "",
				"port":     587,
				"username": "",
				"password": "",
			},
		},
		"log": map[string]any{
			"level":       "info",
			"development": false,
		},
		"sentry": map[string]any{
			"dsn":         "",
			"environment": "production",
		},
	}
}

// newDefaultProvider はデフォルト値のkoanfプロバイダーを返す。
func newDefaultProvider() *confmap.Confmap {
	return confmap.Provider(defaultConfig(), ".")
}
