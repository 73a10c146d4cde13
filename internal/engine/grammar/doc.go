// Package grammar describes the syntax regions recognized by the parser.
//
// A Grammar is an immutable rule: a combined regular expression whose
// alternatives are, in order, an escape sequence, the end of the region, the
// start of each child region and a bare newline. Grammars reference their
// children by pointer, so recursive and mutually recursive regions are
// allowed.
//
// Grammars are built from Definitions, which are plain data loaded from TOML
// or YAML. A Registry compiles a set of definitions and resolves grammars by
// name, file extension or path. A default set is embedded in the package:
//
//	reg, err := grammar.DefaultRegistry()
//	if err != nil {
//		return err
//	}
//	root := reg.ForPath("main.c")
//
// Keyword sets come from the definitions plus an optional dictionary supplied
// with WithDictionary. The registry never reads process-wide state.
package grammar
