package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Daily は毎日Hour:Minuteの現地時刻に起動するスケジュール。
type Daily struct {
	// Hour は起動する時（0-23）。
	Hour int
	// Minute は起動する分（0-59）。
	Minute int
	// Location は時刻を解釈するタイムゾーン。nilの場合はtime.Local。
	Location *time.Location
}

// location は実際に使うタイムゾーンを返す。
func (d Daily) location() *time.Location {
	if d.Location == nil {
		return time.Local
	}
	return d.Location
}

// Next はnowより後で最初に来る起動時刻を返す。
// nowがちょうど起動時刻の場合は翌日を返す。
func (d Daily) Next(now time.Time) time.Time {
	loc := d.location()
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(now) {
		// 翌日の同じ現地時刻。夏時間の切り替え日は24時間と限らない
		next = time.Date(local.Year(), local.Month(), local.Day()+1, d.Hour, d.Minute, 0, 0, loc)
	}
	return next
}

// Run はctxがキャンセルされるまで、起動時刻ごとにfnを呼び出す。
// fnにはスケジュール上の起動時刻が渡される。fnのエラーはログに出力してループを継続する。
func (d Daily) Run(ctx context.Context, logger *zap.Logger, fn func(ctx context.Context, at time.Time) error) error {
	return d.run(ctx, logger, time.Now, fn)
}

// run はRunの本体。nowは現在時刻の取得元。
func (d Daily) run(ctx context.Context, logger *zap.Logger, now func() time.Time, fn func(context.Context, time.Time) error) error {
	for {
		next := d.Next(now())
		logger.Info("次回の起動時刻を設定しました", zap.Time("next", next))

		timer := time.NewTimer(next.Sub(now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("スケジューラーを停止します")
			return nil
		case <-timer.C:
		}

		if err := fn(ctx, next); err != nil {
			logger.Error("スケジュール実行に失敗しました", zap.Time("at", next), zap.Error(err))
		}
	}
}
