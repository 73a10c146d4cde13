package buffer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// EscapeMarker introduces an escaped control byte inside a line.
const EscapeMarker = '\x01'

var (
	controlBytes  = regexp.MustCompile(`[\x00-\x09\x0b-\x1f\x7f]`)
	escapedBytes  = regexp.MustCompile(`\x01([0-9a-fA-F]{2})`)
	lineSeparator = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// CodecOptions controls how stored bytes become lines.
type CodecOptions struct {
	// TabSize is the distance between tab stops.
	TabSize int
	// ExpandTabs replaces tabs with spaces up to the next tab stop.
	ExpandTabs bool
}

// DefaultCodecOptions returns the codec settings used when none are given.
func DefaultCodecOptions() CodecOptions {
	return CodecOptions{TabSize: 8, ExpandTabs: true}
}

// Deserialize converts stored bytes to lines. CRLF and CR line endings are
// normalized, tabs are optionally expanded and control bytes are escaped.
// The result always has at least one line.
func Deserialize(data []byte, opts CodecOptions) []string {
	text := lineSeparator.Replace(string(data))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if opts.ExpandTabs && strings.IndexByte(line, '\t') >= 0 {
			line = ExpandTabs(line, opts.TabSize)
		}
		lines[i] = controlBytes.ReplaceAllStringFunc(line, func(s string) string {
			return fmt.Sprintf("\x01%02x", s[0])
		})
	}
	return lines
}

// Serialize joins lines with newlines and restores escaped control bytes.
func Serialize(lines []string) []byte {
	text := strings.Join(lines, "\n")
	if strings.IndexByte(text, EscapeMarker) < 0 {
		return []byte(text)
	}
	text = escapedBytes.ReplaceAllStringFunc(text, func(s string) string {
		v, err := strconv.ParseUint(s[1:], 16, 8)
		if err != nil {
			return s
		}
		return string([]byte{byte(v)})
	})
	return []byte(text)
}

// ExpandTabs replaces each tab with spaces up to the next multiple of size.
func ExpandTabs(line string, size int) string {
	if size <= 0 {
		return strings.ReplaceAll(line, "\t", "")
	}
	var sb strings.Builder
	sb.Grow(len(line))
	col := 0
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\t' {
			n := size - col%size
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteByte(c)
		col++
	}
	return sb.String()
}
