package remoteaddr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLsTime(t *testing.T) {
	cases := []struct {
		in   string
		year int
		want int64
	}{
		{"Nov 5 16:32", 2020, 1604593920},
		{"Dec 2 21:32", 2020, 1606944720},
		{"Nov 5 2018", 2020, 1541376000},
	}
	for _, tc := range cases {
		got, err := ParseLsTime(tc.in, tc.year)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Unix())
	}
}

func TestParseLsTime_Invalid(t *testing.T) {
	_, err := ParseLsTime("not a date", 2020)
	assert.Error(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.500", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "0.005", FormatDuration(5*time.Millisecond))
}
