package service

import (
	"hash/fnv"
	"time"
)

// RecordingCalendar 单设备录像日历（演示数据）
// 对窗口内每一天给出 available/missing，完全由 device_id+日期 决定，
// 同一输入永远得到同一日历
type RecordingCalendar struct {
	TotalDays     int
	AvailableDays int
	MissingDays   int
}

// CompliancePercent available/total，窗口为空时为 0。
func (c RecordingCalendar) CompliancePercent() float64 {
	if c.TotalDays == 0 {
		return 0
	}
	return float64(c.AvailableDays) / float64(c.TotalDays) * 100
}

// BuildRecordingCalendar walks each calendar day in [start, end] and
// marks it available or missing from a hash of device id + day.
// Roughly 92% of days come out available.
func BuildRecordingCalendar(deviceID string, start, end time.Time) RecordingCalendar {
	cal := RecordingCalendar{}
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	for !day.After(last) {
		cal.TotalDays++
		if recordingAvailable(deviceID, day) {
			cal.AvailableDays++
		} else {
			cal.MissingDays++
		}
		day = day.AddDate(0, 0, 1)
	}
	return cal
}

func recordingAvailable(deviceID string, day time.Time) bool {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	_, _ = h.Write([]byte(day.Format("20060102")))
	return h.Sum32()%100 < 92
}
