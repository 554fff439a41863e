package transaction

import (
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/kakeibo/internal/model"
)

// dateOnlyLayout は日付のみの入力形式。
const dateOnlyLayout = "2006-01-02"

// ParseDate はRFC 3339または YYYY-MM-DD 形式の日時を解析する。
// 日付のみの場合はUTCの0時として扱い、dateOnlyにtrueを返す。
func ParseDate(s string) (t time.Time, dateOnly bool, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, nil
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid date %q: expected RFC 3339 or YYYY-MM-DD", s)
}

// ParseDateRange は開始日と終了日の文字列から半開区間を組み立てる。
// 終了日は含む扱いで、日付のみの場合はその日の終わりまでを含める。
// 開始が終了より後の場合はINVALID_DATE_RANGEを返す。
func ParseDateRange(startRaw, endRaw string) (model.DateRange, error) {
	start, _, err := ParseDate(startRaw)
	if err != nil {
		return model.DateRange{}, model.NewInvalidDateRangeError("start の形式が不正です")
	}
	end, endDateOnly, err := ParseDate(endRaw)
	if err != nil {
		return model.DateRange{}, model.NewInvalidDateRangeError("end の形式が不正です")
	}
	if start.After(end) {
		return model.DateRange{}, model.NewInvalidDateRangeError("start は end 以前の日時を指定してください")
	}

	if endDateOnly {
		end = end.AddDate(0, 0, 1)
	} else {
		// 半開区間で end ちょうどの取引も含めるため最小単位だけ進める
		end = end.Add(time.Microsecond)
	}
	return model.DateRange{Start: start, End: end}, nil
}
