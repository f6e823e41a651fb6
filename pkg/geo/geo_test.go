package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp24h(t *testing.T) {
	zone := time.FixedZone("GMT+07:00", 7*3600)
	dt := DateTimeData{
		Time:      time.Date(2024, 3, 15, 14, 30, 0, 0, zone),
		Timezone:  "Asia/Jakarta",
		UTCOffset: "+07:00",
	}

	assert.Equal(t, "Jumat, 15/03/2024 14:30 GMT +07:00", dt.Format())
}

func TestFormatTimestamp12h(t *testing.T) {
	zone := time.FixedZone("GMT+07:00", 7*3600)

	tests := []struct {
		name     string
		hour     int
		minute   int
		expected string
	}{
		{"afternoon", 14, 30, "Jumat, 15/03/2024 02:30 PM GMT +07:00"},
		{"midnight", 0, 5, "Jumat, 15/03/2024 12:05 AM GMT +07:00"},
		{"noon", 12, 0, "Jumat, 15/03/2024 12:00 PM GMT +07:00"},
		{"morning", 9, 59, "Jumat, 15/03/2024 09:59 AM GMT +07:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := DateTimeData{
				Time:       time.Date(2024, 3, 15, tt.hour, tt.minute, 0, 0, zone),
				UTCOffset:  "+07:00",
				TwelveHour: true,
			}
			assert.Equal(t, tt.expected, dt.Format())
		})
	}
}

func TestFormatConvertsIntoOffset(t *testing.T) {
	// 07:30 UTC shown at +07:00 is 14:30 local
	dt := DateTimeData{
		Time:      time.Date(2024, 3, 15, 7, 30, 0, 0, time.UTC),
		UTCOffset: "+07:00",
	}
	assert.Equal(t, "Jumat, 15/03/2024 14:30 GMT +07:00", dt.Format())
}

func TestFormatCompact(t *testing.T) {
	zone := time.FixedZone("GMT+07:00", 7*3600)
	dt := DateTimeData{
		Time:      time.Date(2024, 3, 15, 14, 5, 0, 0, zone),
		UTCOffset: "+07:00",
	}

	date, clock := dt.FormatCompact()
	assert.Equal(t, "20240315", date)
	assert.Equal(t, "1405", clock)
}

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		input   string
		seconds int
		wantErr bool
	}{
		{"+07:00", 7 * 3600, false},
		{"-03:30", -(3*3600 + 30*60), false},
		{"+00:00", 0, false},
		{"07:00", 0, true},
		{"+7:00", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			secs, err := ParseUTCOffset(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.seconds, secs)
		})
	}
}

func TestFlagIconName(t *testing.T) {
	tests := []struct {
		code     string
		expected string
		wantErr  bool
	}{
		{"ID", "u1f1ee_1f1e9", false},
		{"id", "u1f1ee_1f1e9", false},
		{"US", "u1f1fa_1f1f8", false},
		{"DE", "u1f1e9_1f1ea", false},
		{"D", "", true},
		{"D3", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			name, err := FlagIconName(tt.code)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestFlagIconURL(t *testing.T) {
	url, err := FlagIconURL("ID")
	require.NoError(t, err)
	assert.Contains(t, url, "emoji_u1f1ee_1f1e9.png")
}

func TestFormatCoordinates(t *testing.T) {
	assert.Equal(t, "-7.597110, 110.949835", FormatCoordinates(-7.59711, 110.949835))
}

func TestLocationTitle(t *testing.T) {
	loc := LocationData{District: "Ngaglik", Province: "Jawa Tengah", Country: "Indonesia"}
	assert.Equal(t, "Ngaglik, Jawa Tengah, Indonesia", loc.Title())

	loc.District = ""
	assert.Equal(t, "Jawa Tengah, Indonesia", loc.Title())
}
