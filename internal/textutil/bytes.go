package textutil

import "github.com/dustin/go-humanize"

// FormatBytes renders n using IEC units, e.g. "1.5 MiB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
