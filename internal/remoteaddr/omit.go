package remoteaddr

import "strings"

// OmitWrkdirPath truncates path to "{ancestor}/.../{parent}/{basename}"
// when "host:path" would not fit in width columns (spec.md §4.3, §8
// testable property 7). When it already fits, or the path is too
// shallow to usefully abbreviate, path is returned unchanged.
func OmitWrkdirPath(path, host string, width int) string {
	full := host + ":" + path
	if len(full) <= width {
		return path
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) <= 3 {
		return path
	}
	first := segs[0]
	parent := segs[len(segs)-2]
	base := segs[len(segs)-1]
	return "/" + first + "/.../" + parent + "/" + base
}
