// Package frontmatter reads the YAML header of markdown builtin manifests.
//
// A manifest written in markdown keeps its metadata between "---" lines and
// uses the remaining text as the help body:
//
//	---
//	name: greet
//	short_doc: greet [-n name]
//	---
//
//	Print a greeting.
//
// [MustParse] returns [ErrMissingFrontmatter] for documents that do not
// start with a delimiter line and [ErrUnterminated] when the closing line
// is missing. Both LF and CRLF line endings are handled.
package frontmatter
