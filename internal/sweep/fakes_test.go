package sweep

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Kejsan/makina-ime/internal/mail"
	"github.com/Kejsan/makina-ime/internal/model"
)

// fakeReminders はメモリ上のリマインダー一覧を返すReminderSource。
// ストアと同様に期日がfromより前のものは返さない。
type fakeReminders struct {
	reminders []model.Reminder
	err       error
	calls     int
	gotFrom   model.Date
	gotLimit  int
}

func (f *fakeReminders) ListIncompleteReminders(_ context.Context, from model.Date, limit int) ([]model.Reminder, error) {
	f.calls++
	f.gotFrom = from
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Reminder
	for _, r := range f.reminders {
		if r.DueDate != nil && r.DueDate.Before(from) {
			continue
		}
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeUsers はメモリ上のメールアドレス表を引くUserDirectory。
type fakeUsers struct {
	mu     sync.Mutex
	emails map[string]string
	errs   map[string]error
	calls  map[string]int
}

var errUserNotFound = errors.New("ユーザーが見つかりません")

func (f *fakeUsers) LookupEmail(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[userID]++
	if err := f.errs[userID]; err != nil {
		return "", err
	}
	email, ok := f.emails[userID]
	if !ok {
		return "", errUserNotFound
	}
	return email, nil
}

// fakeWriter はコミットされた通知を記録するNotificationWriter。
type fakeWriter struct {
	err       error
	calls     int
	committed [][]model.Notification
}

func (f *fakeWriter) CreateNotifications(_ context.Context, ns []model.Notification) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.committed = append(f.committed, append([]model.Notification(nil), ns...))
	return nil
}

// all はこれまでにコミットされた全通知を返す。
func (f *fakeWriter) all() []model.Notification {
	var out []model.Notification
	for _, batch := range f.committed {
		out = append(out, batch...)
	}
	return out
}

// fakeMailer は送信内容を記録し、指定した宛先で失敗するMailer。
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]error
	delay   time.Duration

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failFor[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// fakeLocker は取得可否を固定で返すLocker。
type fakeLocker struct {
	acquired bool
	err      error
	unlocked bool
}

func (f *fakeLocker) TryLock(_ context.Context) (func(context.Context) error, bool, error) {
	if f.err != nil || !f.acquired {
		return nil, false, f.err
	}
	return func(context.Context) error {
		f.unlocked = true
		return nil
	}, true, nil
}
