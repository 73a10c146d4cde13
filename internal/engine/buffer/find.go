package buffer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/dshills/cistorm/internal/engine/history"
)

// Messages reported by search operations.
const (
	MsgFindWrapped = "Find wrapped around."
	MsgNotFound    = "Not found"
	MsgNoMatches   = "No matches found"
)

// Find searches for pattern starting at the cursor and selects the match.
// An empty pattern clears the search.
func (b *TextBuffer) Find(pattern string) {
	b.find(pattern, 0)
}

// FindNext searches for pattern after the cursor.
func (b *TextBuffer) FindNext(pattern string) {
	b.find(pattern, 1)
}

// FindPrior searches for pattern before the cursor.
func (b *TextBuffer) FindPrior(pattern string) {
	b.find(pattern, -1)
}

// FindAgain repeats the last search downwards.
func (b *TextBuffer) FindAgain() {
	b.findCurrent(1)
}

// FindBack repeats the last search upwards.
func (b *TextBuffer) FindBack() {
	b.findCurrent(-1)
}

// FindPattern returns the active search expression, or nil.
func (b *TextBuffer) FindPattern() *regexp.Regexp {
	return b.findRe
}

func (b *TextBuffer) find(pattern string, direction int) {
	if pattern == "" {
		b.findRe = nil
		b.SelectionNone()
		return
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		b.SetMessage(fmt.Sprintf("Invalid pattern: %v", err))
		return
	}
	b.findRe = re
	b.findCurrent(direction)
}

// findCurrent looks for the active pattern on the cursor row, then the rows
// in the search direction, then wraps around. direction is -1 for backward,
// 0 for at the cursor and 1 for after the cursor.
func (b *TextBuffer) findCurrent(direction int) {
	re := b.findRe
	if re == nil {
		return
	}
	line := b.lines[b.cursorRow]
	if direction >= 0 {
		offset := min(b.cursorCol+direction, len(line))
		if loc := re.FindStringIndex(line[offset:]); loc != nil {
			b.selectText(b.cursorRow, offset+loc[0], loc[1]-loc[0], SelectionCharacter)
			return
		}
	} else if loc := lastMatch(re, line[:b.cursorCol]); loc != nil {
		b.selectText(b.cursorRow, loc[0], loc[1]-loc[0], SelectionCharacter)
		return
	}

	var rows, wrapped []int
	if direction >= 0 {
		for row := b.cursorRow + 1; row < len(b.lines); row++ {
			rows = append(rows, row)
		}
		for row := 0; row < b.cursorRow; row++ {
			wrapped = append(wrapped, row)
		}
	} else {
		for row := b.cursorRow - 1; row >= 0; row-- {
			rows = append(rows, row)
		}
		for row := len(b.lines) - 1; row > b.cursorRow; row-- {
			wrapped = append(wrapped, row)
		}
	}
	if b.findInRows(re, rows, direction) {
		return
	}
	b.SetMessage(MsgFindWrapped)
	if b.findInRows(re, wrapped, direction) {
		return
	}
	b.SetMessage(MsgNotFound)
	b.SelectionNone()
}

func (b *TextBuffer) findInRows(re *regexp.Regexp, rows []int, direction int) bool {
	for _, row := range rows {
		var loc []int
		if direction >= 0 {
			loc = re.FindStringIndex(b.lines[row])
		} else {
			loc = lastMatch(re, b.lines[row])
		}
		if loc != nil {
			b.selectText(row, loc[0], loc[1]-loc[0], SelectionCharacter)
			return true
		}
	}
	return false
}

func lastMatch(re *regexp.Regexp, s string) []int {
	all := re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// FindReplace applies a substitution command of the form
// <sep>find<sep>replace<sep>flags to the whole document as a single
// undoable change. The separator is the command's first character. Flags
// are i (ignore case) and s (dot matches newline); ^ and $ always match at
// line boundaries. The replacement may use \1 or \g<name> group references.
func (b *TextBuffer) FindReplace(cmd string) {
	if cmd == "" {
		return
	}
	sep := cmd[:1]
	parts := strings.SplitN(cmd, sep, 4)
	if len(parts) < 4 {
		b.SetMessage("An exchange needs three " + sep + " separators")
		return
	}
	find, replace, flags := parts[1], parts[2], parts[3]
	re, err := regexp.Compile(regexpFlags(flags) + find)
	if err != nil {
		b.SetMessage(fmt.Sprintf("Invalid pattern: %v", err))
		return
	}

	data := string(Serialize(b.lines))
	replaced := re.ReplaceAllString(data, expandReplacement(replace))
	ops := diffLines(b.lines, b.Decode([]byte(replaced)))
	if len(ops) == 0 || (len(ops) == 1 && ops[0].Op == history.DiffKeep) {
		b.SetMessage(MsgNoMatches)
		return
	}
	b.record(history.LineDiff{Ops: ops})

	// Keep the cursor inside the new text.
	row := min(b.cursorRow, len(b.lines)-1)
	col := min(b.cursorCol, len(b.lines[row]))
	if row != b.cursorRow || col != b.cursorCol {
		b.record(history.Move{Delta: history.MoveDelta{
			CursorRow: row - b.cursorRow,
			CursorCol: col - b.cursorCol,
			GoalCol:   col - b.goalCol,
			MarkerRow: row - b.markerRow,
			MarkerCol: col - b.markerCol,
		}})
	}
}

func regexpFlags(flags string) string {
	out := "m"
	if strings.Contains(flags, "i") {
		out += "i"
	}
	if strings.Contains(flags, "s") {
		out += "s"
	}
	return "(?" + out + ")"
}

// expandReplacement converts a replacement written with backslash group
// references into regexp.Expand syntax.
func expandReplacement(repl string) string {
	var sb strings.Builder
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch {
		case c == '$':
			sb.WriteString("$$")
		case c != '\\' || i+1 == len(repl):
			sb.WriteByte(c)
		default:
			i++
			n := repl[i]
			switch {
			case n >= '0' && n <= '9':
				j := i
				for j < len(repl) && j < i+2 && repl[j] >= '0' && repl[j] <= '9' {
					j++
				}
				sb.WriteString("${" + repl[i:j] + "}")
				i = j - 1
			case n == 'g' && i+1 < len(repl) && repl[i+1] == '<':
				end := strings.IndexByte(repl[i:], '>')
				if end < 0 {
					sb.WriteString(`\g`)
					continue
				}
				sb.WriteString("${" + repl[i+2:i+end] + "}")
				i += end
			case n == 'n':
				sb.WriteByte('\n')
			case n == 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(n)
			}
		}
	}
	return sb.String()
}

// diffLines returns the line diff turning before into after, with runs of
// unchanged lines collapsed to counts.
func diffLines(before, after []string) []history.DiffOp {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var ops []history.DiffOp
	keep := 0
	for _, d := range diffs {
		lines := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		if d.Type == diffmatchpatch.DiffEqual {
			keep += len(lines)
			continue
		}
		if keep > 0 {
			ops = append(ops, history.Keep(keep))
			keep = 0
		}
		for _, line := range lines {
			if d.Type == diffmatchpatch.DiffInsert {
				ops = append(ops, history.Added(line))
			} else {
				ops = append(ops, history.Removed(line))
			}
		}
	}
	if keep > 0 {
		ops = append(ops, history.Keep(keep))
	}
	return ops
}
