package sweep

import (
	"github.com/Kejsan/makina-ime/internal/model"
)

// Malformed は所有者または期日が欠けていて評価できないリマインダーかどうかを返す。
func Malformed(r model.Reminder) bool {
	return r.UserID == "" || r.DueDate == nil || r.DueDate.IsZero()
}

// Evaluate は基準日から見た期日までの残り日数と、通知期間内かどうかを返す。
// 残り日数が0以上かつリードタイム以下のときに通知対象となる。
// 期限切れ（負の残り日数）や負のリードタイムは常に対象外。
// 呼び出し側でMalformedを先に確認すること。
func Evaluate(r model.Reminder, ref model.Date) (daysRemaining int, eligible bool) {
	daysRemaining = ref.DaysUntil(*r.DueDate)
	lead := r.LeadTime()
	return daysRemaining, daysRemaining >= 0 && daysRemaining <= lead
}
