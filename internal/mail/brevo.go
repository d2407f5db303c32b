package mail

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/pkg/httpclient"
)

// brevoSendPath はトランザクションメール送信APIのパス。
const brevoSendPath = "/v3/smtp/email"

// brevoAccountPath はAPIキーの疎通確認に使うアカウント情報APIのパス。
const brevoAccountPath = "/v3/account"

// BrevoSender はBrevo のトランザクションメールAPIでメールを送信する。
type BrevoSender struct {
	client *httpclient.Client
	from   Address
	logger *zap.Logger
}

type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmailRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type brevoEmailResponse struct {
	MessageID string `json:"messageId"`
}

// NewBrevoSender はBrevoSenderを生成する。baseURLは通常 "https://api.brevo.com"。
func NewBrevoSender(baseURL, apiKey string, from Address, timeout time.Duration, logger *zap.Logger) *BrevoSender {
	return &BrevoSender{
		client: httpclient.New(baseURL,
			httpclient.WithHeader("api-key", apiKey),
			httpclient.WithTimeout(timeout),
		),
		from:   from,
		logger: logger,
	}
}

// Send はメールを1通送信する。2xx以外の応答はエラーになる。
func (b *BrevoSender) Send(ctx context.Context, msg Message) error {
	req := brevoEmailRequest{
		Sender:      brevoContact{Name: b.from.Name, Email: b.from.Email},
		To:          []brevoContact{{Email: msg.To}},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}

	var resp brevoEmailResponse
	if err := b.client.PostJSON(ctx, brevoSendPath, req, &resp); err != nil {
		return fmt.Errorf("Brevoへのメール送信に失敗: %w", err)
	}
	b.logger.Debug("Brevoがメールを受け付けました",
		zap.String("message_id", resp.MessageID),
	)
	return nil
}

// Verify はAPIキーが有効かどうかをアカウント情報APIで確認する。
func (b *BrevoSender) Verify(ctx context.Context) error {
	var account map[string]any
	if err := b.client.GetJSON(ctx, brevoAccountPath, &account); err != nil {
		return fmt.Errorf("Brevo APIキーの確認に失敗: %w", err)
	}
	return nil
}
