package platform

import "strings"

// MatchLocation reports whether a page location matches a glob pattern. A
// '*' matches any run of characters, slashes included; the pattern is
// anchored at both ends, so patterns usually start and end with '*'.
func MatchLocation(pattern, location string) bool {
	if pattern == "" {
		return false
	}

	parts := strings.Split(pattern, "*")

	if !strings.HasPrefix(location, parts[0]) {
		return false
	}
	location = location[len(parts[0]):]

	last := len(parts) - 1
	for _, part := range parts[1:last] {
		if part == "" {
			continue
		}
		idx := strings.Index(location, part)
		if idx < 0 {
			return false
		}
		location = location[idx+len(part):]
	}

	if last == 0 {
		// No '*' at all: the prefix check consumed the whole pattern.
		return location == ""
	}

	return strings.HasSuffix(location, parts[last])
}
