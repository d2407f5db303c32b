package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	gomail "github.com/emersion/go-message/mail"
)

// smtpDialTimeout はコンテキストに期限が無い場合の接続タイムアウト。
const smtpDialTimeout = 30 * time.Second

// SMTPOptions はSMTPSenderの設定。
type SMTPOptions struct {
	// Host はSMTPサーバーのホスト名。
	Host string
	// Port はSMTPサーバーのポート番号。
	Port int
	// Username は認証ユーザー名。空の場合は認証しない。
	Username string
	// Password は認証パスワード。
	Password string
	// From は差出人。
	From Address
}

// SMTPSender はSMTPサーバー経由でメールを送信する。
// サーバーがSTARTTLSを提供する場合は暗号化してから認証する。
type SMTPSender struct {
	opts SMTPOptions
	now  func() time.Time
}

// NewSMTPSender はSMTPSenderを生成する。
func NewSMTPSender(opts SMTPOptions) *SMTPSender {
	return &SMTPSender{opts: opts, now: time.Now}
}

// Send はメールを1通送信する。
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	body, err := compose(s.opts.From, msg, s.now())
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
	dialer := &net.Dialer{Timeout: smtpDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("SMTPサーバー %s への接続に失敗: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(smtpDialTimeout))
	}

	client, err := smtp.NewClient(conn, s.opts.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTPクライアントの生成に失敗: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.opts.Host}); err != nil {
			return fmt.Errorf("SMTP STARTTLSに失敗: %w", err)
		}
	}

	if s.opts.Username != "" {
		auth := smtp.PlainAuth("", s.opts.Username, s.opts.Password, s.opts.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP認証に失敗: %w", err)
		}
	}

	if err := client.Mail(s.opts.From.Email); err != nil {
		return fmt.Errorf("SMTP MAIL FROMに失敗: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("SMTP RCPT TOに失敗: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATAに失敗: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("メール本文の書き込みに失敗: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("メール本文の送信に失敗: %w", err)
	}

	return client.Quit()
}

// compose はHTML単一パートのRFC 5322メッセージを組み立てる。
func compose(from Address, msg Message, now time.Time) ([]byte, error) {
	var h gomail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*gomail.Address{{Name: from.Name, Address: from.Email}})
	h.SetAddressList("To", []*gomail.Address{{Address: msg.To}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("Message-IDの生成に失敗: %w", err)
	}
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := gomail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("メッセージの生成に失敗: %w", err)
	}
	if _, err := io.WriteString(w, msg.HTML); err != nil {
		return nil, fmt.Errorf("メッセージ本文の書き込みに失敗: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("メッセージの生成に失敗: %w", err)
	}
	return buf.Bytes(), nil
}
