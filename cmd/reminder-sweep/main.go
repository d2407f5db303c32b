// リマインダースイープワーカーのエントリポイント。
// 毎日決まった時刻に未完了のリマインダーを走査し、
// リードタイム内のものをアプリ内通知とメールでユーザーに知らせる。
// --once を指定すると1回だけ実行して終了する（外部のcron向け）。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/internal/config"
	"github.com/Kejsan/makina-ime/internal/lock"
	"github.com/Kejsan/makina-ime/internal/mail"
	"github.com/Kejsan/makina-ime/internal/schedule"
	"github.com/Kejsan/makina-ime/internal/store"
	"github.com/Kejsan/makina-ime/internal/sweep"
	"github.com/Kejsan/makina-ime/pkg/logging"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "設定ファイル（YAML）のパス")
	once := pflag.Bool("once", false, "スイープを1回だけ実行して終了する")
	pflag.Parse()

	if err := run(*configPath, *once); err != nil {
		fmt.Fprintf(os.Stderr, "reminder-sweep: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, once bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	onFailure, flush, err := setupSentry(cfg.Sentry)
	if err != nil {
		return err
	}
	defer flush()

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	sender, err := mail.New(cfg.Mail, logger.Named("mail"))
	if err != nil {
		return err
	}
	if v, ok := sender.(interface{ Verify(context.Context) error }); ok {
		if err := v.Verify(ctx); err != nil {
			logger.Warn("メール配信サービスの疎通確認に失敗しました", zap.Error(err))
		}
	}

	loc, err := cfg.Sweep.Location()
	if err != nil {
		return err
	}

	deps := sweep.Deps{
		Reminders:     st,
		Users:         st,
		Notifications: st,
		Mailer:        sender,
		OnFailure:     onFailure,
	}
	if cfg.Sweep.Lock.RedisURL != "" {
		l, err := lock.Connect(ctx, cfg.Sweep.Lock.RedisURL, lock.DefaultKey, cfg.Sweep.Lock.TTL)
		if err != nil {
			return err
		}
		defer l.Close()
		deps.Locker = l
	}

	sweeper, err := sweep.New(deps, sweep.Options{
		Location:         loc,
		MaxReminders:     cfg.Sweep.MaxReminders,
		EmailConcurrency: cfg.Sweep.EmailConcurrency,
		DashboardURL:     cfg.Mail.DashboardURL,
	}, logger.Named("sweep"))
	if err != nil {
		return err
	}

	sweepOnce := func(ctx context.Context, at time.Time) error {
		_, err := sweeper.RunReminderSweep(ctx, at)
		if errors.Is(err, sweep.ErrSweepInProgress) {
			return nil
		}
		return err
	}

	if once {
		return sweepOnce(ctx, time.Now())
	}

	hour, minute, err := cfg.Sweep.Clock()
	if err != nil {
		return err
	}
	daily := schedule.Daily{Hour: hour, Minute: minute, Location: loc}
	logger.Info("リマインダースイープを開始します",
		zap.String("at", cfg.Sweep.At),
		zap.String("timezone", loc.String()),
		zap.String("mail_driver", cfg.Mail.Driver),
		zap.Bool("lock", deps.Locker != nil),
	)
	return daily.Run(ctx, logger.Named("scheduler"), sweepOnce)
}

// setupSentry はDSNが設定されている場合にSentryを初期化し、
// スイープ失敗時の通知関数と終了時のフラッシュ関数を返す。
func setupSentry(cfg config.SentryConfig) (func(error), func(), error) {
	if cfg.DSN == "" {
		return nil, func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
	}); err != nil {
		return nil, nil, fmt.Errorf("Sentryの初期化に失敗: %w", err)
	}

	onFailure := func(err error) {
		sentry.CaptureException(err)
	}
	flush := func() {
		sentry.Flush(2 * time.Second)
	}
	return onFailure, flush, nil
}
