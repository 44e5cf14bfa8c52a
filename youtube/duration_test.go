package youtube

import (
	"testing"
	"time"
)

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"hours minutes seconds", "PT1H2M30S", 3662},
		{"seconds only", "PT45S", 45},
		{"hours only", "PT2H", 7200},
		{"minutes only", "PT15M", 900},
		{"hours and seconds", "PT1H30S", 3630},
		{"empty", "", 0},
		{"zero days live stream", "P0D", 0},
		{"garbage", "not a duration", 0},
		{"malformed hour segment ignored", "PTxH5M", 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := int64(ParseISODuration(tt.input) / time.Second)
			if got != tt.want {
				t.Errorf("ParseISODuration(%q) = %d seconds, want %d", tt.input, got, tt.want)
			}
		})
	}
}
