package daterange

import "time"

// 日期区间工具：所有比较都先归一到“自然日”粒度。
// 约定：区间为闭区间 [start, end]，start 归一到当天 00:00:00，
// end 归一到当天 23:59:59.999999999。零值时间视为无效日期，
// 无效日期既不参与重叠判断，也不会触发任何状态流转。

// DayStart 返回 t 所在自然日的起点（00:00:00）。
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayEnd 返回 t 所在自然日的终点（23:59:59.999999999）。
func DayEnd(t time.Time) time.Time {
	return DayStart(t).Add(24*time.Hour - time.Nanosecond)
}

// Overlaps 判断两个闭区间是否相交（按自然日归一后比较）。
// 任一端点为零值时返回 false。
func Overlaps(startA, endA, startB, endB time.Time) bool {
	if startA.IsZero() || endA.IsZero() || startB.IsZero() || endB.IsZero() {
		return false
	}
	s1, e1 := DayStart(startA), DayEnd(endA)
	s2, e2 := DayStart(startB), DayEnd(endB)
	return !s1.After(e2) && !e1.Before(s2)
}

// Range 一条已存在记录的日期区间。
type Range struct {
	Start time.Time
	End   time.Time
}

// HasOverlap 扫描已有区间，判断新区间是否与任意一条相交。
// 调用方负责把候选集过滤到同一车辆、同一类型、scheduled/active 状态。
func HasOverlap(newStart, newEnd time.Time, existing []Range) bool {
	for _, r := range existing {
		if Overlaps(newStart, newEnd, r.Start, r.End) {
			return true
		}
	}
	return false
}

// Contains 判断 day 是否落在闭区间 [start, end] 内（自然日粒度）。
// 任一端点为零值时返回 false。
func Contains(start, end, day time.Time) bool {
	if start.IsZero() || end.IsZero() || day.IsZero() {
		return false
	}
	d := DayStart(day)
	return !d.Before(DayStart(start)) && !d.After(DayEnd(end))
}

// OnOrBefore 判断 a 所在自然日是否不晚于 b 所在自然日。
// a 为零值时返回 false（无效日期不触发流转）。
func OnOrBefore(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return !DayStart(a).After(DayStart(b))
}

// After 判断 a 所在自然日是否严格晚于 b 所在自然日。
// 任一为零值时返回 false。
func After(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return DayStart(a).After(DayStart(b))
}
