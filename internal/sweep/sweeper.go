package sweep

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Kejsan/makina-ime/internal/mail"
	"github.com/Kejsan/makina-ime/internal/model"
)

// ErrSweepInProgress は別のスイープが実行中のため今回の実行を見送ったことを表す。
var ErrSweepInProgress = errors.New("別のスイープが実行中です")

// ReminderSource は未完了のリマインダーを読み込む。
// 期日がfromより前のリマインダーは通知対象にならないため、返さなくてよい。
type ReminderSource interface {
	ListIncompleteReminders(ctx context.Context, from model.Date, limit int) ([]model.Reminder, error)
}

// UserDirectory はユーザーIDからメールアドレスを解決する。
type UserDirectory interface {
	LookupEmail(ctx context.Context, userID string) (string, error)
}

// NotificationWriter はアプリ内通知を1回の原子的な書き込みで保存する。
type NotificationWriter interface {
	CreateNotifications(ctx context.Context, ns []model.Notification) error
}

// Mailer はメールを1通送信する。
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// Locker はスイープの重複実行を防ぐ。
// 取得できた場合は解放関数とtrueを、他者が保持している場合はfalseを返す。
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error)
}

// Deps はSweeperが依存するコンポーネント。MailerとLockerはnilでよい。
type Deps struct {
	// Reminders はリマインダーの読み込み元。
	Reminders ReminderSource
	// Users はメールアドレスの解決先。
	Users UserDirectory
	// Notifications はアプリ内通知の保存先。
	Notifications NotificationWriter
	// Mailer はメール送信手段。nilの場合メール配信は行わない。
	Mailer Mailer
	// Locker は重複実行防止ロック。nilの場合ロックしない。
	Locker Locker
	// OnFailure はスイープが失敗したときに呼ばれる。
	OnFailure func(error)
}

// Options はスイープの動作設定。
type Options struct {
	// Location は基準日を決めるタイムゾーン。
	Location *time.Location
	// MaxReminders は1回に読み込むリマインダーの上限。
	MaxReminders int
	// EmailConcurrency はメール送信の同時実行数。
	EmailConcurrency int
	// DashboardURL はメール本文のリンク先。
	DashboardURL string
}

// Sweeper はリマインダー通知のスイープを実行する。
type Sweeper struct {
	deps         Deps
	opts         Options
	materializer *Materializer
	logger       *zap.Logger
}

// New はSweeperを生成する。loggerがnilの場合はログを出力しない。
func New(deps Deps, opts Options, logger *zap.Logger) (*Sweeper, error) {
	if deps.Reminders == nil || deps.Users == nil || deps.Notifications == nil {
		return nil, errors.New("リマインダー、ユーザー、通知のストアは必須です")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxReminders <= 0 {
		opts.MaxReminders = 10000
	}
	if opts.EmailConcurrency <= 0 {
		opts.EmailConcurrency = 1
	}

	m, err := NewMaterializer(opts.DashboardURL)
	if err != nil {
		return nil, err
	}
	return &Sweeper{deps: deps, opts: opts, materializer: m, logger: logger}, nil
}

// emailJob は送信待ちのメール1通。
type emailJob struct {
	delivery int
	msg      mail.Message
}

// RunReminderSweep は時刻nowを基準に1回分のスイープを実行する。
// 読み込みまたは保存に失敗した場合はエラーを返し、Report.Notifiedは0になる。
func (s *Sweeper) RunReminderSweep(ctx context.Context, now time.Time) (Report, error) {
	started := time.Now()
	report := Report{
		RunAt:         now,
		ReferenceDate: model.DateOf(now.In(s.opts.Location)),
	}

	if s.deps.Locker != nil {
		unlock, acquired, err := s.deps.Locker.TryLock(ctx)
		if err != nil {
			return report, s.fail(fmt.Errorf("スイープのロック取得に失敗: %w", err))
		}
		if !acquired {
			s.logger.Warn("別のスイープが実行中のため今回の実行を見送ります")
			return report, ErrSweepInProgress
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("スイープのロック解放に失敗しました", zap.Error(err))
			}
		}()
	}

	reminders, err := s.deps.Reminders.ListIncompleteReminders(ctx, report.ReferenceDate, s.opts.MaxReminders+1)
	if err != nil {
		return report, s.fail(fmt.Errorf("リマインダーの読み込みに失敗: %w", err))
	}
	if len(reminders) > s.opts.MaxReminders {
		reminders = reminders[:s.opts.MaxReminders]
		report.Truncated = true
		s.logger.Warn("読み込み上限に達したため、一部のリマインダーを評価しません",
			zap.Int("max_reminders", s.opts.MaxReminders),
		)
	}
	report.Scanned = len(reminders)

	notifications, jobs := s.plan(ctx, reminders, &report)
	s.sendEmails(ctx, jobs, &report)

	if err := s.deps.Notifications.CreateNotifications(ctx, notifications); err != nil {
		report.Duration = time.Since(started)
		return report, s.fail(fmt.Errorf("通知の保存に失敗: %w", err))
	}
	report.Notified = len(notifications)
	report.Duration = time.Since(started)

	s.logger.Info("スイープが完了しました",
		zap.String("reference_date", report.ReferenceDate.String()),
		zap.Int("scanned", report.Scanned),
		zap.Int("skipped", report.Skipped),
		zap.Int("eligible", report.Eligible),
		zap.Int("notified", report.Notified),
		zap.Int("emailed", report.Emailed),
		zap.Int("email_failed", report.EmailFailed),
		zap.Int("no_email", report.NoEmail),
		zap.Bool("truncated", report.Truncated),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// plan は各リマインダーを評価し、保存する通知と送信するメールを組み立てる。
func (s *Sweeper) plan(ctx context.Context, reminders []model.Reminder, report *Report) ([]model.Notification, []emailJob) {
	var (
		notifications []model.Notification
		jobs          []emailJob
		emails        = make(map[string]string)
	)

	for _, r := range reminders {
		if r.Completed {
			continue
		}
		if Malformed(r) {
			report.Skipped++
			continue
		}

		days, eligible := Evaluate(r, report.ReferenceDate)
		if !eligible {
			continue
		}
		report.Eligible++

		n := s.materializer.Notification(r, days)
		notifications = append(notifications, n)
		delivery := Delivery{ReminderID: r.ID, UserID: r.UserID, DaysRemaining: days}

		msg, status, err := s.prepareEmail(ctx, emails, r.UserID, n)
		delivery.Email = status
		delivery.Err = err
		switch status {
		case EmailNoAddress:
			report.NoEmail++
		case EmailFailed:
			report.EmailFailed++
		case emailQueued:
			jobs = append(jobs, emailJob{delivery: len(report.Deliveries), msg: msg})
		}
		report.Deliveries = append(report.Deliveries, delivery)
	}
	return notifications, jobs
}

// prepareEmail は通知1件分のメールを組み立てる。
// 送信すべき場合はemailQueuedを返し、結果はsendEmailsで確定する。
// emailsは1回のスイープ内でのアドレス解決結果のキャッシュ。
func (s *Sweeper) prepareEmail(ctx context.Context, emails map[string]string, userID string, n model.Notification) (mail.Message, EmailStatus, error) {
	if s.deps.Mailer == nil {
		return mail.Message{}, EmailDisabled, nil
	}

	to, ok := emails[userID]
	if !ok {
		to = s.lookupEmail(ctx, userID)
		emails[userID] = to
	}
	if to == "" {
		return mail.Message{}, EmailNoAddress, nil
	}

	msg, err := s.materializer.Email(to, n)
	if err != nil {
		return mail.Message{}, EmailFailed, err
	}
	return msg, emailQueued, nil
}

// lookupEmail はユーザーのメールアドレスを解決する。見つからない場合は空文字列を返す。
func (s *Sweeper) lookupEmail(ctx context.Context, userID string) string {
	email, err := s.deps.Users.LookupEmail(ctx, userID)
	if err != nil {
		s.logger.Debug("メールアドレスを解決できませんでした",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return ""
	}
	return email
}

// sendEmails はメールを並行送信し、結果をDeliveriesに反映する。
// 送信失敗は記録するのみで、他の送信やスイープは中断しない。
func (s *Sweeper) sendEmails(ctx context.Context, jobs []emailJob, report *Report) {
	if len(jobs) == 0 {
		return
	}

	results := make([]error, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.opts.EmailConcurrency)
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = s.deps.Mailer.Send(ctx, job.msg)
			return nil
		})
	}
	_ = g.Wait()

	for i, job := range jobs {
		d := &report.Deliveries[job.delivery]
		if err := results[i]; err != nil {
			d.Email = EmailFailed
			d.Err = err
			report.EmailFailed++
			s.logger.Error("リマインダーメールの送信に失敗しました",
				zap.String("reminder_id", d.ReminderID),
				zap.String("user_id", d.UserID),
				zap.Error(err),
			)
			continue
		}
		d.Email = EmailSent
		report.Emailed++
	}
}

// fail は致命的な失敗をログに出力し、失敗フックを呼び出す。
func (s *Sweeper) fail(err error) error {
	s.logger.Error("スイープが失敗しました", zap.Error(err))
	if s.deps.OnFailure != nil {
		s.deps.OnFailure(err)
	}
	return err
}
