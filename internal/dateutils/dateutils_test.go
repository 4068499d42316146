package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name       string
		dateStr    string
		expectedOk bool
		expectedY  int
		expectedM  time.Month
		expectedD  int
		expectedFm string
	}{
		{"ISO format", "2023-01-15", true, 2023, time.January, 15, DateLayoutISO},
		{"US format", "01/15/2023", true, 2023, time.January, 15, DateLayoutUS},
		{"US short", "1/5/2023", true, 2023, time.January, 5, "1/2/2006"},
		{"European format", "15.01.2023", true, 2023, time.January, 15, DateLayoutEuropean},
		{"OFX compact", "20230115", true, 2023, time.January, 15, DateLayoutOFX},
		{"Full timestamp", "2023-01-15  10:30:45", true, 2023, time.January, 15, DateLayoutFull},
		{"With month name", "15-Jan-2023", true, 2023, time.January, 15, DateLayoutWithMonth},
		{"Empty string", "", false, 0, 0, 0, ""},
		{"Invalid format", "not a date", false, 0, 0, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, layout, err := ParseDate(tc.dateStr)
			if !tc.expectedOk {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedY, date.Year())
			assert.Equal(t, tc.expectedM, date.Month())
			assert.Equal(t, tc.expectedD, date.Day())
			assert.Equal(t, tc.expectedFm, layout)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2024-03-09", NormalizeDate("03/09/2024"))
	assert.Equal(t, "2024-03-09", NormalizeDate(" 2024-03-09 "))
	assert.Equal(t, "sometime", NormalizeDate(" sometime "))
}

func TestMonthOf(t *testing.T) {
	m, ok := MonthOf("2024-11-02")
	assert.True(t, ok)
	assert.Equal(t, time.November, m)

	_, ok = MonthOf("")
	assert.False(t, ok)
}

func TestCompareDateStrings(t *testing.T) {
	assert.Equal(t, -1, CompareDateStrings("2024-01-02", "2024-01-10"))
	assert.Equal(t, 1, CompareDateStrings("02/01/2024", "2024-01-10"))
	assert.Equal(t, 0, CompareDateStrings("2024-01-02", "01/02/2024"))
	assert.Equal(t, -1, CompareDateStrings("2024-01-02", "garbage"))
	assert.Equal(t, 1, CompareDateStrings("zzz", "2024-01-02"))
	assert.Equal(t, -1, CompareDateStrings("aaa", "bbb"))
}
