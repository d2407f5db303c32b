package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCategory はリマインダーの種別が定義外であることを表す。
	ErrInvalidCategory = errors.New("リマインダーの種別が不正です")
	// ErrInvalidRecurrence はリマインダーの繰り返し設定が定義外であることを表す。
	ErrInvalidRecurrence = errors.New("リマインダーの繰り返し設定が不正です")
)

// DefaultLeadTimeDays はリードタイムが未設定のリマインダーに適用する日数。
const DefaultLeadTimeDays = 7

// Category はリマインダーの種別を表す。通知にもそのままコピーされる。
type Category string

const (
	// CategoryTax は自動車税などの納付期限。
	CategoryTax Category = "tax"
	// CategoryInsurance は保険の更新期限。
	CategoryInsurance Category = "insurance"
	// CategoryInspection は車検・定期点検の期限。
	CategoryInspection Category = "inspection"
	// CategoryMaintenance はオイル交換などの整備予定。
	CategoryMaintenance Category = "maintenance"
	// CategoryOther はその他の予定。
	CategoryOther Category = "other"
)

// IsValid は定義済みの種別かどうかを返す。
func (c Category) IsValid() bool {
	switch c {
	case CategoryTax, CategoryInsurance, CategoryInspection, CategoryMaintenance, CategoryOther:
		return true
	default:
		return false
	}
}

// Recurrence はリマインダーの繰り返し設定を表す。
// 保存はされるが、スイープでは参照しない。
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceYearly  Recurrence = "yearly"
	RecurrenceMonthly Recurrence = "monthly"
)

// IsValid は定義済みの繰り返し設定かどうかを返す。
func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceYearly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// Reminder は車両に紐づく期限付きの予定を表す。
// 完了済みのリマインダーはスイープの対象から永久に除外される。
type Reminder struct {
	// ID はリマインダーの一意識別子。
	ID string
	// UserID は所有ユーザーのID。欠落したレコードはスイープで読み飛ばされる。
	UserID string
	// VehicleID は対象車両のID。
	VehicleID string
	// Title は利用者が入力した件名。
	Title string
	// Category はリマインダーの種別。
	Category Category
	// DueDate は期日。欠落したレコードはスイープで読み飛ばされるため nil を許容する。
	DueDate *Date
	// LeadTimeDays は期日の何日前から通知するか。nil または 0 の場合は既定値を使う。
	LeadTimeDays *int
	// Recurrence は繰り返し設定。
	Recurrence Recurrence
	// Completed は完了済みかどうか。
	Completed bool
	// CreatedAt はリマインダーの作成日時。
	CreatedAt time.Time
}

// ResolveLeadTime は実際に適用するリードタイム（日数）を返す。
// 未設定と 0 はどちらも DefaultLeadTimeDays として扱う。負の値はそのまま返すため、
// そのリマインダーはどの日にも通知対象にならない。
func ResolveLeadTime(days *int) int {
	if days == nil || *days == 0 {
		return DefaultLeadTimeDays
	}
	return *days
}

// LeadTime はこのリマインダーに適用するリードタイムを返す。
func (r Reminder) LeadTime() int {
	return ResolveLeadTime(r.LeadTimeDays)
}

// Validate は利用者が新規作成するリマインダーとして妥当かを検証する。
// ストアに既に存在する不完全なレコードはこの検証を経ずにスイープへ渡される。
func (r Reminder) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id は必須です")
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		return errors.New("vehicle_id は必須です")
	}
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title は必須です")
	}
	if r.DueDate == nil || r.DueDate.IsZero() {
		return errors.New("due_date は必須です")
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	if !r.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, r.Recurrence)
	}
	return nil
}
