package vamp

import (
	"fmt"
	"math"
	"time"
)

// FrameToRealTime converts a sample frame index to a timestamp.
func FrameToRealTime(frame int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	sec := frame / int64(sampleRate)
	rem := frame % int64(sampleRate)
	nsec := int64(math.Round(float64(rem) * 1e9 / float64(sampleRate)))
	return time.Duration(sec)*time.Second + time.Duration(nsec)
}

// RealTimeToFrame converts a timestamp to the nearest sample frame index.
func RealTimeToFrame(t time.Duration, sampleRate int) int64 {
	return int64(math.Round(t.Seconds() * float64(sampleRate)))
}

// FormatRealTime renders t as seconds with nanosecond precision, the layout
// hosts print in front of feature values.
func FormatRealTime(t time.Duration) string {
	sign := ""
	if t < 0 {
		sign = "-"
		t = -t
	}
	sec := int64(t / time.Second)
	nsec := int64(t % time.Second)
	return fmt.Sprintf("%s%d.%09d", sign, sec, nsec)
}
