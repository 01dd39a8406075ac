package timeparse_test

import (
	"testing"

	"github.com/classgrid/classgrid/pkg/timeparse"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"M", "Monday"},
		{"m", "Monday"},
		{"TH", "Thursday"},
		{"th", "Thursday"},
		{"SAT", "Saturday"},
		{"Sun", "Sunday"},
		{" W ", "Wednesday"},
		{"Wednesday", "Wednesday"},
		{"XYZ", "XYZ"}, // unknown tokens pass through unchanged
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timeparse.NormalizeDay(tt.token), "token %q", tt.token)
	}
}

func TestExpandDays(t *testing.T) {
	tests := []struct {
		token string
		want  []string
	}{
		{"MWF", []string{"Monday", "Wednesday", "Friday"}},
		{"mwf", []string{"Monday", "Wednesday", "Friday"}},
		{"TTH", []string{"Tuesday", "Thursday"}},
		{"TH", []string{"Tuesday", "Thursday"}},
		{"MW", []string{"Monday", "Wednesday"}},
		{"W", []string{"Wednesday"}},
		{"M/W", []string{"Monday", "Wednesday"}},
		{"T/TH", []string{"Tuesday", "Thursday"}},
		{"F", []string{"Friday"}},
		{"XYZ", []string{"XYZ"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, timeparse.ExpandDays(tt.token), "token %q", tt.token)
	}
}

func TestParseTimeTo24(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"2:30 PM", "14:30:00", true},
		{"2:30PM", "14:30:00", true},
		{"2:30 pm", "14:30:00", true},
		{"12:00 AM", "00:00:00", true},
		{"12:00 PM", "12:00:00", true},
		{"9:00", "09:00:00", true},
		{"09:05", "09:05:00", true},
		{"14:45", "14:45:00", true},
		{"garbage", "", false},
		{"", "", false},
		{"9", "", false},
		{"9:0", "", false},
	}
	for _, tt := range tests {
		got, ok := timeparse.ParseTimeTo24(tt.text)
		assert.Equal(t, tt.ok, ok, "text %q", tt.text)
		assert.Equal(t, tt.want, got, "text %q", tt.text)
	}
}

func TestParseScheduleTime(t *testing.T) {
	// The AM/PM suffix applies only to the side carrying it: the bare start
	// in "9:00-10:30 AM" stays morning by the no-suffix branch, not by
	// inheriting the end's period.
	tr := timeparse.ParseScheduleTime("9:00-10:30 AM")
	assert.Equal(t, "09:00:00", tr.Start)
	assert.Equal(t, "10:30:00", tr.End)

	tr = timeparse.ParseScheduleTime("1:00 PM - 2:30 PM")
	assert.Equal(t, "13:00:00", tr.Start)
	assert.Equal(t, "14:30:00", tr.End)

	tr = timeparse.ParseScheduleTime("bogus-2:00 PM")
	assert.Equal(t, "", tr.Start)
	assert.Equal(t, "14:00:00", tr.End)

	tr = timeparse.ParseScheduleTime("10:00")
	assert.Equal(t, "10:00:00", tr.Start)
	assert.Equal(t, "", tr.End)
}
