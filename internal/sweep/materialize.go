package sweep

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Kejsan/makina-ime/internal/mail"
	"github.com/Kejsan/makina-ime/internal/model"
)

// emailTemplate はリマインダー通知メールのHTML本文。
const emailTemplate = `<div style="font-family: sans-serif; padding: 20px;">
  <h2>Reminder Alert</h2>
  <p>{{.Body}}</p>
  <a href="{{.DashboardURL}}" style="background: #0B1120; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Dashboard</a>
</div>`

// Materializer は通知対象のリマインダーからアプリ内通知とメールを組み立てる。
type Materializer struct {
	tmpl         *template.Template
	dashboardURL string
}

// NewMaterializer はメール本文のリンク先を指定してMaterializerを生成する。
func NewMaterializer(dashboardURL string) (*Materializer, error) {
	tmpl, err := template.New("reminder-email").Parse(emailTemplate)
	if err != nil {
		return nil, fmt.Errorf("メールテンプレートの解析に失敗: %w", err)
	}
	return &Materializer{tmpl: tmpl, dashboardURL: dashboardURL}, nil
}

// Notification はアプリ内通知を組み立てる。IDと作成日時は保存時に採番される。
func (m *Materializer) Notification(r model.Reminder, daysRemaining int) model.Notification {
	return model.Notification{
		UserID:     r.UserID,
		Title:      "Upcoming: " + r.Title,
		Body:       fmt.Sprintf("Your %s is due in %d days.", r.Title, daysRemaining),
		Category:   r.Category,
		ReminderID: r.ID,
		Read:       false,
	}
}

// Email はアプリ内通知と同じ件名・本文でメールを組み立てる。
func (m *Materializer) Email(to string, n model.Notification) (mail.Message, error) {
	var buf bytes.Buffer
	err := m.tmpl.Execute(&buf, struct {
		Body         string
		DashboardURL string
	}{
		Body:         n.Body,
		DashboardURL: m.dashboardURL,
	})
	if err != nil {
		return mail.Message{}, fmt.Errorf("メール本文の生成に失敗: %w", err)
	}
	return mail.Message{To: to, Subject: n.Title, HTML: buf.String()}, nil
}
