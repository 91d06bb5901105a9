// Package commonmark provides the core of a CommonMark-family Markdown
// parser: a two-pass document-tree builder that turns a byte buffer of
// Markdown text into an in-memory tree of block and inline nodes.
//
// Parsing happens in two phases. The block parser ([BlockParser]) is a
// line-oriented state machine that discovers, opens, continues, and closes
// container and leaf blocks. Once a document's block structure is settled,
// the inline parser walks every leaf block that can hold inline content and
// tokenizes its raw text into [Node] trees of its own, resolving emphasis,
// strong emphasis, and smart quotes along the way.
//
// The two phases share a single tree representation: see [Node].
package commonmark
