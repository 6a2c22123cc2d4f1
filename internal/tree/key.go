package tree

import (
	"strconv"
	"strings"
)

// AppendKey extends a path key by one segment. Segments are length-prefixed,
// so scope names may contain any byte without colliding with other paths.
func AppendKey(parent, name string) string {
	var b strings.Builder
	b.Grow(len(parent) + len(name) + 4)
	b.WriteString(parent)
	b.WriteString(strconv.Itoa(len(name)))
	b.WriteByte(':')
	b.WriteString(name)
	return b.String()
}

// KeyOf returns the arena key for a full call path.
func KeyOf(path []string) string {
	key := ""
	for _, name := range path {
		key = AppendKey(key, name)
	}
	return key
}
