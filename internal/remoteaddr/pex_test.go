package remoteaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPex(t *testing.T) {
	cases := []struct {
		o, g, ot uint8
		want     string
	}{
		{7, 7, 7, "rwxrwxrwx"},
		{7, 5, 5, "rwxr-xr-x"},
		{6, 6, 6, "rw-rw-rw-"},
		{6, 4, 4, "rw-r--r--"},
		{6, 0, 0, "rw-------"},
		{0, 0, 0, "---------"},
		{4, 4, 4, "r--r--r--"},
		{1, 2, 1, "--x-w---x"},
	}
	for _, tc := range cases {
		got := FormatPex(tc.o, tc.g, tc.ot)
		assert.Equal(t, tc.want, got)
		assert.Len(t, got, 9)
	}
}
