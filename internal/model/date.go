package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate は暦日の文字列表現が不正であることを表す。
var ErrInvalidDate = errors.New("日付の形式が不正です")

// dateLayout は暦日の文字列表現（ISO 8601）。
const dateLayout = "2006-01-02"

// Date は時刻とタイムゾーンを持たない暦日を表す。
// リマインダーの期日やスイープの基準日に使用する。
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate は年月日から暦日を生成する。範囲外の値は time.Date と同様に正規化される。
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf は時刻をそのタイムゾーンにおける暦日に変換する。
// 呼び出し側で t.In(loc) を適用してから渡すこと。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate は "2006-01-02" 形式の文字列を暦日に変換する。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// String は "2006-01-02" 形式の文字列を返す。
func (d Date) String() string {
	return d.midnight().Format(dateLayout)
}

// IsZero はゼロ値かどうかを返す。
func (d Date) IsZero() bool {
	return d == Date{}
}

// DaysUntil は d から other までの日数を返す。other が過去なら負になる。
// 両者ともUTCの0時として扱うため、夏時間の切り替えで端数が出ることはない。
func (d Date) DaysUntil(other Date) int {
	return int(other.midnight().Sub(d.midnight()).Hours() / 24)
}

// AddDays は n 日後の暦日を返す。
func (d Date) AddDays(n int) Date {
	return DateOf(d.midnight().AddDate(0, 0, n))
}

// Before は d が other より前の日付かどうかを返す。
func (d Date) Before(other Date) bool {
	return d.midnight().Before(other.midnight())
}

// In は指定タイムゾーンにおける d の0時を返す。
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON は暦日を "2006-01-02" 形式のJSON文字列に変換する。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON は "2006-01-02" 形式のJSON文字列を暦日に変換する。
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
