package domain

import (
	"fmt"
	"strings"
)

type ValueFormat int

const (
	FormatValue ValueFormat = iota
	FormatScore
	FormatFrames
	FormatCentiseconds
	FormatSeconds
	FormatMinutes
	FormatSecondsAsMinutes
	FormatTens
	FormatHundreds
	FormatThousands
	FormatUnsigned
	FormatOther
)

var valueFormatNames = map[string]ValueFormat{
	"VALUE":        FormatValue,
	"SCORE":        FormatScore,
	"POINTS":       FormatScore,
	"TIME":         FormatFrames,
	"FRAMES":       FormatFrames,
	"MILLISECS":    FormatCentiseconds,
	"SECS":         FormatSeconds,
	"TIMESECS":     FormatSeconds,
	"MINUTES":      FormatMinutes,
	"SECS_AS_MINS": FormatSecondsAsMinutes,
	"TENS":         FormatTens,
	"HUNDREDS":     FormatHundreds,
	"THOUSANDS":    FormatThousands,
	"UNSIGNED":     FormatUnsigned,
	"OTHER":        FormatOther,
}

// ParseValueFormat maps a format name to a ValueFormat. Unknown names format as plain values.
func ParseValueFormat(name string) ValueFormat {
	format, ok := valueFormatNames[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return FormatValue
	}
	return format
}

func (f ValueFormat) String() string {
	for name, format := range valueFormatNames {
		// Prefer the canonical names
		if format == f && name != "POINTS" && name != "FRAMES" && name != "TIMESECS" {
			return name
		}
	}
	return "VALUE"
}

func formatCentiseconds(centiseconds int64) string {
	hours := centiseconds / 360000
	minutes := (centiseconds / 6000) % 60
	seconds := (centiseconds / 100) % 60
	hundredths := centiseconds % 100
	if hours > 0 {
		return fmt.Sprintf("%dh%02d:%02d.%02d", hours, minutes, seconds, hundredths)
	}
	return fmt.Sprintf("%d:%02d.%02d", minutes, seconds, hundredths)
}

func formatSeconds(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds / 60) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02d:%02d", hours, minutes, seconds%60)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds%60)
}

func formatMinutes(minutes int64) string {
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh%02d", hours, minutes%60)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Format renders a leaderboard or rich presence value
func (f ValueFormat) Format(value int64) string {
	switch f {
	case FormatScore:
		return fmt.Sprintf("%06d", value)
	case FormatFrames:
		// 60 frames per second
		return formatCentiseconds(value * 10 / 6)
	case FormatCentiseconds:
		return formatCentiseconds(value)
	case FormatSeconds:
		return formatSeconds(value)
	case FormatMinutes:
		return formatMinutes(value)
	case FormatSecondsAsMinutes:
		return formatMinutes(value / 60)
	case FormatTens:
		return fmt.Sprintf("%d", value*10)
	case FormatHundreds:
		return fmt.Sprintf("%d", value*100)
	case FormatThousands:
		return fmt.Sprintf("%d", value*1000)
	case FormatUnsigned:
		return fmt.Sprintf("%d", uint32(value))
	default:
		return fmt.Sprintf("%d", value)
	}
}
