package event

import (
	"testing"
	"time"
)

// TestNew はNew関数でイベントが正しく生成されることを検証する。
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("ReminderCreatedDataでイベントを正常に生成できること", func(t *testing.T) {
		t.Parallel()

		data := ReminderCreatedData{
			UserID:    "user-1",
			VehicleID: "vehicle-1",
			Title:     "Road tax",
			Category:  "tax",
			DueDate:   "2025-03-10",
		}

		before := time.Now().UTC()
		ev, err := New("reminder-1", AggregateTypeReminder, TypeReminderCreated, data)
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}

		if ev.ID == "" {
			t.Error("IDが空文字列")
		}
		if ev.AggregateID != "reminder-1" {
			t.Errorf("AggregateID = %q, want %q", ev.AggregateID, "reminder-1")
		}
		if ev.AggregateType != AggregateTypeReminder {
			t.Errorf("AggregateType = %q, want %q", ev.AggregateType, AggregateTypeReminder)
		}
		if ev.EventType != TypeReminderCreated {
			t.Errorf("EventType = %q, want %q", ev.EventType, TypeReminderCreated)
		}
		if ev.CreatedAt.Before(before) || ev.CreatedAt.After(after) {
			t.Errorf("CreatedAt = %v, 期待する範囲: [%v, %v]", ev.CreatedAt, before, after)
		}

		decoded, err := DecodeData[ReminderCreatedData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if *decoded != data {
			t.Errorf("DecodeData() = %+v, want %+v", *decoded, data)
		}
	})

	t.Run("IDが毎回異なること", func(t *testing.T) {
		t.Parallel()

		a, _ := New("r", AggregateTypeReminder, TypeReminderDeleted, ReminderChangedData{UserID: "u"})
		b, _ := New("r", AggregateTypeReminder, TypeReminderDeleted, ReminderChangedData{UserID: "u"})
		if a.ID == b.ID {
			t.Errorf("同じIDが生成された: %q", a.ID)
		}
	})

	t.Run("シリアライズできないデータでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		if _, err := New("r", AggregateTypeReminder, TypeReminderCreated, make(chan int)); err == nil {
			t.Fatal("New()がエラーを返すべきだが、nilが返った")
		}
	})
}

// TestDecodeData はDecodeData関数を検証する。
func TestDecodeData(t *testing.T) {
	t.Parallel()

	t.Run("不正なJSONでエラーが返ること", func(t *testing.T) {
		t.Parallel()

		ev := &Event{Data: []byte(`{broken`)}
		if _, err := DecodeData[NotificationsReadData](ev); err == nil {
			t.Fatal("DecodeData()がエラーを返すべきだが、nilが返った")
		}
	})

	t.Run("既読イベントの件数を復元できること", func(t *testing.T) {
		t.Parallel()

		ev, err := New("user-1", AggregateTypeNotification, TypeNotificationsRead, NotificationsReadData{UserID: "user-1", Count: 3})
		if err != nil {
			t.Fatalf("New()でエラーが発生: %v", err)
		}
		got, err := DecodeData[NotificationsReadData](ev)
		if err != nil {
			t.Fatalf("DecodeData()でエラーが発生: %v", err)
		}
		if got.Count != 3 {
			t.Errorf("Count = %d, want 3", got.Count)
		}
	})
}
