package remoteaddr

import "github.com/rescale-labs/gateway/internal/model"

// FormatPex renders three permission triads (each 0-7) in ls notation,
// e.g. FormatPex(7, 5, 5) == "rwxr-xr-x". It is a total function over
// 0..=7³: any triad value out of that range simply ignores bits beyond
// the low 3.
func FormatPex(owner, group, others uint8) string {
	b := make([]byte, 0, 9)
	b = appendTriad(b, owner)
	b = appendTriad(b, group)
	b = appendTriad(b, others)
	return string(b)
}

func appendTriad(b []byte, triad uint8) []byte {
	read := (triad >> 2) & 0x1
	write := (triad >> 1) & 0x1
	exec := triad & 0x1
	b = append(b, pexChar(read, 'r'))
	b = append(b, pexChar(write, 'w'))
	b = append(b, pexChar(exec, 'x'))
	return b
}

func pexChar(bit uint8, c byte) byte {
	if bit == 1 {
		return c
	}
	return '-'
}

// FormatUnixPex is a convenience wrapper over model.UnixPex.
func FormatUnixPex(p model.UnixPex) string {
	return FormatPex(p.Owner, p.Group, p.Others)
}
