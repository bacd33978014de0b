package position

import (
	"strconv"
	"strings"
)

// Join renders path segments with dots. Segments that would not survive a
// round trip through Split use bracket-quoted form, e.g. a["b.c"].
func Join(segments []string) string {
	var b strings.Builder
	for i, seg := range segments {
		if needsQuoting(seg) {
			b.WriteByte('[')
			b.WriteString(strconv.Quote(seg))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Split parses a path produced by Join.
// Examples: "items.0" -> ["items", "0"]
//
//	"items[0].tags" -> ["items", "0", "tags"]
//	`meta["a.b"]` -> ["meta", "a.b"]
func Split(path string) []string {
	var parts []string
	var current strings.Builder

	for i := 0; i < len(path); i++ {
		ch := path[i]
		switch ch {
		case '.':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		case '[':
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			seg, end := readBracket(path, i)
			parts = append(parts, seg)
			i = end
		default:
			current.WriteByte(ch)
		}
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

// readBracket reads a [..] segment starting at path[start] and returns the
// segment and the index of the closing bracket.
func readBracket(path string, start int) (string, int) {
	j := start + 1
	if j < len(path) && path[j] == '"' {
		// quoted: scan to the matching unescaped quote
		k := j + 1
		for k < len(path) {
			if path[k] == '\\' {
				k += 2
				continue
			}
			if path[k] == '"' {
				break
			}
			k++
		}
		if k < len(path) {
			if seg, err := strconv.Unquote(path[j : k+1]); err == nil {
				end := k + 1
				if end < len(path) && path[end] == ']' {
					return seg, end
				}
				return seg, k
			}
		}
	}
	for j < len(path) && path[j] != ']' {
		j++
	}
	if j >= len(path) {
		return path[start+1:], len(path) - 1
	}
	return path[start+1 : j], j
}

func needsQuoting(seg string) bool {
	if seg == "" {
		return true
	}
	return strings.ContainsAny(seg, `.[]"`)
}
