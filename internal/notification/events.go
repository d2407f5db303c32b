package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/Kejsan/makina-ime/pkg/event"
)

// RegisterTriggers はサーバーが発行するイベントの購読者を登録する。
// リマインダーの作成はLogReminderCreatedで、完了・削除・既読化はLogActivityで記録する。
func RegisterTriggers(d *event.Dispatcher, logger *zap.Logger) {
	d.Subscribe(event.TypeReminderCreated, LogReminderCreated(logger))
	activity := LogActivity(logger)
	d.Subscribe(event.TypeReminderCompleted, activity)
	d.Subscribe(event.TypeReminderDeleted, activity)
	d.Subscribe(event.TypeNotificationsRead, activity)
}

// LogActivity はユーザー操作のイベントをログに出力する購読者を返す。
func LogActivity(logger *zap.Logger) event.Handler {
	return func(_ context.Context, e *event.Event) error {
		fields := []zap.Field{
			zap.String("event_type", string(e.EventType)),
			zap.String("aggregate_id", e.AggregateID),
		}
		switch e.EventType {
		case event.TypeNotificationsRead:
			data, err := event.DecodeData[event.NotificationsReadData](e)
			if err != nil {
				return err
			}
			fields = append(fields, zap.String("user_id", data.UserID), zap.Int64("count", data.Count))
		default:
			data, err := event.DecodeData[event.ReminderChangedData](e)
			if err != nil {
				return err
			}
			fields = append(fields, zap.String("user_id", data.UserID))
		}
		logger.Info("ユーザー操作を記録しました", fields...)
		return nil
	}
}
