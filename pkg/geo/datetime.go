package geo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeData holds the point in time shown in the overlay, together with
// how it should be displayed. Immutable per render call.
type DateTimeData struct {
	Time       time.Time
	Timezone   string // IANA or offset label, informational
	UTCOffset  string // "+07:00" style, drives the GMT suffix and conversion
	TwelveHour bool
}

// dayNames is the fixed day-name table used by the display format. The table
// is Indonesian; tests pin it, so changing it changes golden output.
var dayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// ParseUTCOffset parses a "+HH:MM" / "-HH:MM" offset into seconds.
func ParseUTCOffset(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return 0, fmt.Errorf("offset must look like +HH:MM, got %q", s)
	}
	hh, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid offset hours in %q: %w", s, err)
	}
	mm, err := strconv.Atoi(s[4:6])
	if err != nil {
		return 0, fmt.Errorf("invalid offset minutes in %q: %w", s, err)
	}
	secs := hh*3600 + mm*60
	if s[0] == '-' {
		secs = -secs
	}
	return secs, nil
}

// local returns the instant shifted into the data's UTC offset. A malformed
// offset falls back to the time's own zone.
func (d DateTimeData) local() time.Time {
	secs, err := ParseUTCOffset(d.UTCOffset)
	if err != nil {
		return d.Time
	}
	return d.Time.In(time.FixedZone("GMT"+d.UTCOffset, secs))
}

// Format renders the display string used by the info panel:
//
//	24h: "Jumat, 15/03/2024 14:30 GMT +07:00"
//	12h: "Jumat, 15/03/2024 02:30 PM GMT +07:00"
func (d DateTimeData) Format() string {
	t := d.local()
	day := dayNames[int(t.Weekday())]

	offset := d.UTCOffset
	if offset == "" {
		offset = "+00:00"
	}

	if d.TwelveHour {
		hour := t.Hour() % 12
		if hour == 0 {
			hour = 12
		}
		meridiem := "AM"
		if t.Hour() >= 12 {
			meridiem = "PM"
		}
		return fmt.Sprintf("%s, %02d/%02d/%04d %02d:%02d %s GMT %s",
			day, t.Day(), int(t.Month()), t.Year(), hour, t.Minute(), meridiem, offset)
	}

	return fmt.Sprintf("%s, %02d/%02d/%04d %02d:%02d GMT %s",
		day, t.Day(), int(t.Month()), t.Year(), t.Hour(), t.Minute(), offset)
}

// FormatCompact renders the timestamp tokens used for export filenames:
// zero-padded YYYYMMDD and HHMM in 24h.
func (d DateTimeData) FormatCompact() (date string, clock string) {
	t := d.local()
	return fmt.Sprintf("%04d%02d%02d", t.Year(), int(t.Month()), t.Day()),
		fmt.Sprintf("%02d%02d", t.Hour(), t.Minute())
}
