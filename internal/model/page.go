// Package model はドメインモデルを定義する。
package model

import "time"

const (
	// DefaultPage はページ番号のデフォルト値。
	DefaultPage = 1
	// DefaultPageLimit は1ページあたりの件数のデフォルト値。
	DefaultPageLimit = 5
	// MaxPageLimit は1ページあたりの件数の上限。
	MaxPageLimit = 100
	// MaxPageNumber はページ番号の上限。OFFSETが32bitのintでも溢れない範囲に収める。
	MaxPageNumber = 1_000_000
)

// Page はオフセット方式のページ指定を表す。
type Page struct {
	Number int
	Limit  int
}

// NewPage はページ番号と件数からPageを生成する。
// 1未満の値はデフォルト値に置き換え、ページ番号はMaxPageNumber、件数はMaxPageLimitで頭打ちにする。
func NewPage(number, limit int) Page {
	if number < 1 {
		number = DefaultPage
	}
	if number > MaxPageNumber {
		number = MaxPageNumber
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Offset はSQLのOFFSET値を返す。
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages は総件数から総ページ数を返す。
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Limit <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// DateRange は半開区間 [Start, End) の期間を表す。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthRange は指定年月の1日から翌月1日までの期間を返す。
func MonthRange(year int, month time.Month, loc *time.Location) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// Contains は指定時刻が期間内かどうかを返す。
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
