// Package macro expands path-joining call sites in source text into calls of
// file-loading primitives.
//
// # Call Sites
//
// Three entry points are recognized by default:
//
//	load_path(...)        → include("...")
//	load_path_bytes(...)  → include_bytes("...")
//	load_path_str(...)    → include_str("...")
//
// The argument list is a flat sequence of string literals separated by
// commas, with an optional trailing comma:
//
//	Args → ( String ( ',' String )* ','? )?
//
// The literal values are joined with the separator of the selected platform
// [Family] and the call site is replaced by a call of the primitive with the
// joined path as its only argument:
//
//	load_path_str("dir", "file.txt")   → include_str("dir/file.txt")
//	load_path_bytes("..", "res", "data.bin",) → include_bytes("../res/data.bin")
//	load_path()                        → include("")
//
// No normalization is performed: segments are concatenated verbatim.
//
// # Validation
//
// [Extract] runs a two-state machine over the argument tokens. It expects a
// string literal, then a comma, then a string literal, and so on. End of
// input is accepted in either state. The first token that breaks the
// alternation is reported as a [*Diagnostic] carrying its position and a
// [Violation]:
//
//	load_path_str(42, "file.txt")  // unexpected literal type at 42
//	load_path_str("a",, "b")       // unexpected punctuation at the second ','
//	load_path_str(,"a")            // unexpected punctuation at the leading ','
//	load_path_str("a" "b")         // unexpected token at "b"
//
// # Platform Family
//
// [HostFamily] is fixed when this package is compiled: [FamilyWindows] on
// Windows, [FamilyUnix] everywhere else. A binary cross-compiled for one
// family produces the other family's separator unless [WithFamily] is used.
//
// # Sources
//
// [ExpandSource] scans a complete source file with [Scan], expands every call
// site independently and splices the results over the call-site text. Text
// outside call sites, including comments and string literals that merely
// mention an entry point, is left untouched. If any call site fails, the
// error is a [Diagnostics] with one entry per failing call site.
package macro
