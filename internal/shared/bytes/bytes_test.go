package bytes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFmtMem(t *testing.T) {
	cases := []struct {
		in   uint64
		want string
	}{
		{0, "0B"},
		{512, "512B"},
		{1024, "1KB 0B"},
		{1536, "1KB 512B"},
		{1024 * 1024, "1MB 0KB"},
		{5*1024*1024 + 256*1024, "5MB 256KB"},
		{3 * 1024 * 1024 * 1024, "3GB 0MB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2TB 0GB"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, FmtMem(c.in))
	}
}
