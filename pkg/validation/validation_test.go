package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		token   string
		def     string
		want    time.Duration
		wantErr bool
	}{
		{"10s", "5m", 10 * time.Second, false},
		{"1m", "5m", time.Minute, false},
		{"15m", "5m", 15 * time.Minute, false},
		{"30m", "5m", 30 * time.Minute, false},
		{"1h", "5m", time.Hour, false},
		{"", "5m", 5 * time.Minute, false},
		{" 1m ", "5m", time.Minute, false},
		{"2h", "5m", 0, true},
		{"1d", "5m", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseRange(tt.token, tt.def)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRange)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRanges_AllParse(t *testing.T) {
	for _, r := range Ranges() {
		assert.True(t, IsRange(r), r)
	}
	assert.False(t, IsRange("3m"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "reroute s1", SanitizeString("  reroute\x00 s1\x07 "))
	assert.Equal(t, "a\tb", SanitizeString("a\tb"))
}

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		target  string
		wantErr bool
	}{
		{"", false},
		{"s1", false},
		{"of:0000000000000001", false},
		{"path-2.backup", false},
		{"-leading", true},
		{"drop table;", true},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0, 50, 500))
	assert.Equal(t, 10, ClampLimit(10, 50, 500))
	assert.Equal(t, 500, ClampLimit(10000, 50, 500))
	assert.Equal(t, 1, ClampLimit(-3, 0, 0))
}
