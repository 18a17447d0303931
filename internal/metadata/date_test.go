package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"2024:05:01 10:20:30", "2024-05-01T10:20:30"},
		{" 2019:12:31 23:59:59 ", "2019-12-31T23:59:59"},
		{"2024-05-01", "2024-05-01"},
		{"0000:00:00 00:00:00", "0000:00:00 00:00:00"},
		{"garbage", "garbage"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDate(tt.raw), tt.raw)
	}
}
