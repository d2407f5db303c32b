package event

import (
	"encoding/json"
	"time"
)

// AggregateType はイベントの対象となるエンティティの種類を表す。
type AggregateType string

const (
	// AggregateTypeReminder はリマインダーエンティティを表す。
	AggregateTypeReminder AggregateType = "Reminder"
	// AggregateTypeNotification は通知エンティティを表す。
	AggregateTypeNotification AggregateType = "Notification"
)

// Type はイベントの種類を表す。
type Type string

const (
	// TypeReminderCreated はリマインダーが登録されたことを表す。
	TypeReminderCreated Type = "ReminderCreated"
	// TypeReminderCompleted はリマインダーが完了にされたことを表す。
	TypeReminderCompleted Type = "ReminderCompleted"
	// TypeReminderDeleted はリマインダーが削除されたことを表す。
	TypeReminderDeleted Type = "ReminderDeleted"
	// TypeNotificationsRead は通知が既読にされたことを表す。
	TypeNotificationsRead Type = "NotificationsRead"
)

// Event はドメイン内で発生した出来事を表す不変のレコード。
// APIハンドラーが生成し、Dispatcherを通じて購読者に配送される。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `json:"id"`
	// AggregateID は対象エンティティの識別子。
	AggregateID string `json:"aggregate_id"`
	// AggregateType は対象エンティティの種類。
	AggregateType AggregateType `json:"aggregate_type"`
	// EventType はイベントの種類。
	EventType Type `json:"event_type"`
	// Data はイベント固有のデータ（JSON形式）。
	Data json.RawMessage `json:"data"`
	// CreatedAt はイベントが作成された日時。
	CreatedAt time.Time `json:"created_at"`
}

// ReminderCreatedData はReminderCreatedイベントのデータ。
type ReminderCreatedData struct {
	// UserID はリマインダーの所有者。
	UserID string `json:"user_id"`
	// VehicleID は対象車両のID。
	VehicleID string `json:"vehicle_id"`
	// Title はリマインダーのタイトル。
	Title string `json:"title"`
	// Category はリマインダーの種類（tax, insurance など）。
	Category string `json:"type"`
	// DueDate は期日（YYYY-MM-DD）。
	DueDate string `json:"due_date"`
}

// ReminderChangedData はReminderCompleted / ReminderDeletedイベントのデータ。
type ReminderChangedData struct {
	// UserID は操作したユーザーのID。
	UserID string `json:"user_id"`
}

// NotificationsReadData はNotificationsReadイベントのデータ。
type NotificationsReadData struct {
	// UserID は操作したユーザーのID。
	UserID string `json:"user_id"`
	// Count は既読にした件数。
	Count int64 `json:"count"`
}
