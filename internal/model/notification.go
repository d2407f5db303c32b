package model

import "time"

// Notification はスイープが生成するアプリ内通知を表す。
// 所有ユーザーごとのパーティションに保存される。
type Notification struct {
	// ID は通知の一意識別子（UUID）。
	ID string
	// UserID は通知先のユーザーID。保存先のパーティションを決める。
	UserID string
	// Title は通知のタイトル。
	Title string
	// Body は通知本文。
	Body string
	// Category は元になったリマインダーの種別。
	Category Category
	// ReminderID は元になったリマインダーのID。
	ReminderID string
	// Read は既読状態。
	Read bool
	// CreatedAt はストアが書き込み時に付与する作成日時。
	CreatedAt time.Time
}
