package commonmark

// Kind is an enumeration of the types of [Node] in a parsed document.
// A single Kind space covers both block and inline nodes, since both live
// in the same tree.
type Kind uint16

const (
	// DocumentKind is the kind of the root node returned by [Parse].
	DocumentKind Kind = 1 + iota
	// BlockQuoteKind is used for block quotes.
	BlockQuoteKind
	// ListKind is used for ordered or unordered lists. Its children are
	// always [ItemKind].
	ListKind
	// ItemKind is used for items in an ordered or unordered list.
	ItemKind
	// CodeBlockKind is used for code blocks, whether fenced or indented.
	// See [*Node.IsFenced].
	CodeBlockKind
	// HTMLBlockKind is used for blocks of raw HTML. It is never rendered
	// wrapped in any tag.
	HTMLBlockKind
	// ParagraphKind is used for a block of text.
	ParagraphKind
	// HeadingKind is used for both ATX and setext headings.
	// See [*Node.IsSetext] and [*Node.HeadingLevel].
	HeadingKind
	// ThematicBreakKind is used for a thematic break, also known as a
	// horizontal rule. It never has children.
	ThematicBreakKind
	// LinkReferenceDefinitionKind is used for a link reference definition
	// recognized while finalizing a paragraph. It never has children;
	// see [*Node.LinkLabel], [*Node.LinkDestination], and [*Node.LinkTitle].
	LinkReferenceDefinitionKind

	// TextKind is used for a run of literal text.
	TextKind
	// SoftBreakKind is used for a line break within a paragraph that is
	// rendered as whitespace (typically a single space or newline).
	SoftBreakKind
	// LineBreakKind is used for a hard line break.
	LineBreakKind
	// EmphasisKind is used for emphasized (usually italicized) text.
	EmphasisKind
	// StrongKind is used for strongly emphasized (usually bolded) text.
	StrongKind
)

// IsBlock reports whether the kind is a block kind.
func (k Kind) IsBlock() bool {
	return k >= DocumentKind && k <= LinkReferenceDefinitionKind
}

// IsInline reports whether the kind is an inline kind.
func (k Kind) IsInline() bool {
	return k >= TextKind && k <= StrongKind
}

// IsContainer reports whether the kind is a container block, i.e. a block
// that holds other blocks rather than raw content or inlines.
func (k Kind) IsContainer() bool {
	switch k {
	case DocumentKind, BlockQuoteKind, ListKind, ItemKind:
		return true
	default:
		return false
	}
}

// AcceptsLines reports whether a block of this kind directly accumulates
// raw source lines into its content buffer while open.
func (k Kind) AcceptsLines() bool {
	switch k {
	case ParagraphKind, HeadingKind, CodeBlockKind, HTMLBlockKind:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case DocumentKind:
		return "Document"
	case BlockQuoteKind:
		return "BlockQuote"
	case ListKind:
		return "List"
	case ItemKind:
		return "Item"
	case CodeBlockKind:
		return "CodeBlock"
	case HTMLBlockKind:
		return "HTMLBlock"
	case ParagraphKind:
		return "Paragraph"
	case HeadingKind:
		return "Heading"
	case ThematicBreakKind:
		return "ThematicBreak"
	case LinkReferenceDefinitionKind:
		return "LinkReferenceDefinition"
	case TextKind:
		return "Text"
	case SoftBreakKind:
		return "SoftBreak"
	case LineBreakKind:
		return "LineBreak"
	case EmphasisKind:
		return "Emphasis"
	case StrongKind:
		return "Strong"
	default:
		return "Kind(0)"
	}
}
