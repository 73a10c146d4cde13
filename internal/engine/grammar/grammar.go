package grammar

import (
	"fmt"
	"regexp"
	"strings"
)

// Attributes are display hints for text inside a grammar.
type Attributes struct {
	// Color is the color name for ordinary text.
	Color string
	// KeywordsColor is the color name for keywords.
	KeywordsColor string
}

// Grammar is a compiled syntax region. It must not be modified once the
// registry that built it is returned.
type Grammar struct {
	Name       string
	Pattern    *regexp.Regexp
	Children   []*Grammar
	EndsRegion bool
	Attributes Attributes

	keywords map[string]struct{}
	begin    string

	// Group numbers in Pattern; zero when the alternative is absent.
	escapeGroup  int
	endGroup     int
	childGroups  []int
	newlineGroup int
}

// MatchKind identifies which alternative of the combined pattern matched.
type MatchKind int

// Match kinds, in pattern group order.
const (
	MatchEscape MatchKind = iota
	MatchEnd
	MatchChild
	MatchNewline
)

// String returns the name of the kind.
func (k MatchKind) String() string {
	switch k {
	case MatchEscape:
		return "escape"
	case MatchEnd:
		return "end"
	case MatchChild:
		return "child"
	case MatchNewline:
		return "newline"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// Match is the earliest match of a grammar's pattern. Start and End are byte
// offsets into the searched text.
type Match struct {
	Kind  MatchKind
	Child *Grammar
	Start int
	End   int
}

// Find searches text for the earliest escape, end, child start or newline.
func (g *Grammar) Find(text string) (Match, bool) {
	loc := g.Pattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Match{}, false
	}
	group := func(n int) (int, int, bool) {
		if n <= 0 || 2*n+1 >= len(loc) || loc[2*n] < 0 {
			return 0, 0, false
		}
		return loc[2*n], loc[2*n+1], true
	}
	if s, e, ok := group(g.escapeGroup); ok {
		return Match{Kind: MatchEscape, Start: s, End: e}, true
	}
	if s, e, ok := group(g.endGroup); ok {
		return Match{Kind: MatchEnd, Start: s, End: e}, true
	}
	for i, n := range g.childGroups {
		if s, e, ok := group(n); ok {
			return Match{Kind: MatchChild, Child: g.Children[i], Start: s, End: e}, true
		}
	}
	s, e, _ := group(g.newlineGroup)
	return Match{Kind: MatchNewline, Start: s, End: e}, true
}

// IsKeyword reports whether word is a keyword of g.
func (g *Grammar) IsKeyword(word string) bool {
	_, ok := g.keywords[word]
	return ok
}

// Keywords returns the number of keywords known to g.
func (g *Grammar) Keywords() int {
	return len(g.keywords)
}

func (g *Grammar) String() string {
	return g.Name
}

// compile builds the combined pattern. Each alternative is wrapped in its own
// group and the group numbers are computed from the sub-patterns' own group
// counts, so user patterns may contain capture groups.
func (g *Grammar) compile(escape, end string) error {
	var alts []string
	next := 1
	add := func(what, pattern string) (int, error) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return 0, fmt.Errorf("grammar %q: %s pattern: %w", g.Name, what, err)
		}
		group := next
		next += 1 + re.NumSubexp()
		alts = append(alts, "("+pattern+")")
		return group, nil
	}

	var err error
	if escape != "" {
		if g.escapeGroup, err = add("escape", escape); err != nil {
			return err
		}
	}
	if end != "" {
		if g.endGroup, err = add("end", end); err != nil {
			return err
		}
		g.EndsRegion = true
	}
	g.childGroups = make([]int, len(g.Children))
	for i, child := range g.Children {
		if g.childGroups[i], err = add("child "+child.Name, child.begin); err != nil {
			return err
		}
	}
	if g.newlineGroup, err = add("newline", `\n`); err != nil {
		return err
	}

	g.Pattern, err = regexp.Compile(strings.Join(alts, "|"))
	if err != nil {
		return fmt.Errorf("grammar %q: %w", g.Name, err)
	}
	return nil
}
