package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Layouts used across exports, templates and reports
const (
	DateLayout      = "02/01/2006"
	DateTimeLayout  = "02/01/2006 15:04"
	InputDateLayout = "2006-01-02"
	FileStampLayout = "20060102_150405"
)

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// FormatDate renders t as dd/mm/yyyy, or "" for nil
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatDateTime renders t as dd/mm/yyyy HH:MM, or "" for nil
func FormatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

// FormatOptional returns a pointer to the formatted value so JSON exports emit null for missing times
func FormatOptional(t *time.Time, layout string) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(layout)
	return &s
}
