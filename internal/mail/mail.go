package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/config"
)

// Message は1通のHTMLメール。
type Message struct {
	// To は宛先メールアドレス。
	To string
	// Subject は件名。
	Subject string
	// HTML はHTML本文。
	HTML string
}

// Address は差出人の表示名とアドレス。
type Address struct {
	// Name は表示名。
	Name string
	// Email はメールアドレス。
	Email string
}

// Sender はメールを1通送信する。
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New は設定に応じたSenderを返す。
// メール配信が無効な場合（driver=none、またはBrevoのAPIキー未設定）はnilを返す。
func New(cfg config.MailConfig, logger *zap.Logger) (Sender, error) {
	from := Address{Name: cfg.SenderName, Email: cfg.SenderEmail}

	switch cfg.Driver {
	case "none":
		logger.Info("メール配信は無効に設定されています")
		return nil, nil
	case "brevo":
		if cfg.Brevo.APIKey == "" {
			logger.Warn("BrevoのAPIキーが未設定のため、メール配信を無効にします")
			return nil, nil
		}
		return NewBrevoSender(cfg.Brevo.BaseURL, cfg.Brevo.APIKey, from, cfg.Brevo.Timeout, logger), nil
	case "smtp":
		return NewSMTPSender(SMTPOptions{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     from,
		}), nil
	default:
		return nil, fmt.Errorf("未対応のメール配信方式です: %q", cfg.Driver)
	}
}
