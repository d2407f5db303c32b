// makina-apiのエントリポイント。
// アプリ内通知の一覧・既読管理と、リマインダーの登録・完了・削除を提供する。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/Kejsan/makina-ime/internal/config"
	"github.com/Kejsan/makina-ime/internal/notification"
	"github.com/Kejsan/makina-ime/internal/store"
	"github.com/Kejsan/makina-ime/pkg/event"
	"github.com/Kejsan/makina-ime/pkg/logging"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "設定ファイル（YAML）のパス")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "makina-api: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
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

	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, logger.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	events := event.NewDispatcher(logger.Named("event"))
	notification.RegisterTriggers(events, logger.Named("trigger"))

	server := notification.NewServer(st, events, notification.Options{
		JWTSecret:      cfg.Server.JWTSecret,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		DevTokens:      cfg.Server.DevTokens,
	}, logger.Named("http"))

	return server.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
}
