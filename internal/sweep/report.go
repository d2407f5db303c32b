package sweep

import (
	"time"

	"github.com/Kejsan/makina-ime/internal/model"
)

// EmailStatus は通知1件分のメール配信結果。
type EmailStatus string

const (
	// EmailSent は送信に成功したことを表す。
	EmailSent EmailStatus = "sent"
	// EmailFailed は送信に失敗したことを表す。
	EmailFailed EmailStatus = "failed"
	// EmailNoAddress は宛先が解決できず送信しなかったことを表す。
	EmailNoAddress EmailStatus = "no_address"
	// EmailDisabled はメール配信が無効なため送信しなかったことを表す。
	EmailDisabled EmailStatus = "disabled"

	emailQueued EmailStatus = "queued"
)

// Delivery は通知対象となったリマインダー1件の処理結果。
type Delivery struct {
	// ReminderID は元のリマインダーのID。
	ReminderID string
	// UserID は通知先のユーザーID。
	UserID string
	// DaysRemaining は期日までの残り日数。
	DaysRemaining int
	// Email はメール配信結果。
	Email EmailStatus
	// Err はメール送信に失敗した場合のエラー。
	Err error
}

// Report は1回のスイープの結果。
type Report struct {
	// RunAt はスイープの実行時刻。
	RunAt time.Time
	// ReferenceDate は判定に使った基準日（実行時刻の現地日付）。
	ReferenceDate model.Date
	// Scanned は読み込んだ未完了リマインダーの件数。期限切れのものは含まない。
	Scanned int
	// Skipped は所有者または期日が欠けていて読み飛ばした件数。
	Skipped int
	// Eligible は通知対象となった件数。
	Eligible int
	// Notified は保存したアプリ内通知の件数。保存に失敗した場合は0。
	Notified int
	// Emailed はメール送信に成功した件数。
	Emailed int
	// EmailFailed はメール送信に失敗した件数。
	EmailFailed int
	// NoEmail は宛先が解決できずメールを送らなかった件数。
	NoEmail int
	// Truncated は読み込み上限に達し、一部のリマインダーを評価しなかったかどうか。
	Truncated bool
	// Duration はスイープの所要時間。
	Duration time.Duration
	// Deliveries は通知対象ごとの処理結果。
	Deliveries []Delivery
}
