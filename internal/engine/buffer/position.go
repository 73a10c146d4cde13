package buffer

import "fmt"

// Position is a row and column in the buffer.
// Both are 0-indexed; Col is a byte offset within the row.
type Position struct {
	Row int
	Col int
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Row, p.Col)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Row < other.Row {
		return -1
	}
	if p.Row > other.Row {
		return 1
	}
	if p.Col < other.Col {
		return -1
	}
	if p.Col > other.Col {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// Ordered returns a and b sorted by document order.
func Ordered(a, b Position) (Position, Position) {
	if b.Before(a) {
		return b, a
	}
	return a, b
}
