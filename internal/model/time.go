package model

import "time"

// DateLayout 是打卡记录与日期参数使用的格式。
const DateLayout = "2006-01-02"

// DateKey 以服务器本地时区格式化日期。
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// StartOfDay 返回 t 所在本地日期的零点。
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// DaysBetween 返回两个日历日之间相差的天数（to - from），不受夏令时影响。
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
