package commonmark

// A Node is a single element of a parsed document tree: either a block
// (paragraph, list, code block, …) or an inline (text, emphasis, …). Both
// kinds share one representation so that the tree can be walked uniformly.
//
// Nodes are ordinary Go values reachable only through the tree that owns
// them: there is no explicit arena or free function. A node becomes eligible
// for garbage collection once [*Node.Detach] (or simply never being
// appended) removes the last live reference to it. Node-to-node pointers
// (parent, sibling, child) are non-owning in the sense that none of them by
// themselves keep a subtree alive independent of the root the caller holds.
type Node struct {
	kind Kind

	parent      *Node
	firstChild  *Node
	lastChild   *Node
	prev        *Node
	next        *Node

	// content holds the raw accumulated source lines for leaf blocks that
	// AcceptsLines, and the literal bytes for TextKind inlines. It is
	// otherwise empty.
	content []byte

	startLine, startColumn int
	endLine, endColumn     int
	open                   bool
	lastLineBlank          bool

	// Heading-specific.
	headingLevel int
	setext       bool

	// CodeBlock-specific.
	fenced      bool
	fenceChar   byte
	fenceLength int
	fenceOffset int
	info        string

	// HTMLBlock-specific: 1..7, selecting which start/end condition opened it.
	htmlBlockType int

	// List/Item-specific.
	listOrdered bool
	listDelim   byte // '-', '+', '*', '.', or ')'
	listStart   int  // starting number for ordered lists
	listTight   bool

	// containerIndent is the number of columns of indentation a
	// continuation line of this block must have to remain part of it.
	// Valid for ItemKind (marker width + padding) and fenced CodeBlockKind
	// (the indentation of the opening fence, stripped from each line).
	containerIndent int

	// LinkReferenceDefinition-specific.
	linkLabel       string
	linkDestination string
	linkTitle       string
	linkTitleSet    bool
}

// NewNode allocates a detached node of the given kind with the given
// 1-indexed start position. The caller is responsible for attaching it to a
// tree with [*Node.AppendChild] or [*Node.InsertAfter].
func NewNode(kind Kind, startLine, startColumn int) *Node {
	return &Node{
		kind:        kind,
		startLine:   startLine,
		startColumn: startColumn,
		open:        true,
	}
}

// Kind returns the node's kind, or zero if n is nil.
func (n *Node) Kind() Kind {
	if n == nil {
		return 0
	}
	return n.kind
}

// Content returns the node's raw content buffer. For most kinds this is
// empty; see the per-field documentation on [Node].
func (n *Node) Content() []byte {
	if n == nil {
		return nil
	}
	return n.content
}

// StartLine, StartColumn, EndLine, and EndColumn return the node's
// 1-indexed source position. EndLine/EndColumn are only meaningful once the
// node is closed (see [*Node.Open]).
func (n *Node) StartLine() int   { return n.intField(func(n *Node) int { return n.startLine }) }
func (n *Node) StartColumn() int { return n.intField(func(n *Node) int { return n.startColumn }) }
func (n *Node) EndLine() int     { return n.intField(func(n *Node) int { return n.endLine }) }
func (n *Node) EndColumn() int   { return n.intField(func(n *Node) int { return n.endColumn }) }

func (n *Node) intField(f func(*Node) int) int {
	if n == nil {
		return 0
	}
	return f(n)
}

// Open reports whether the node is still accepting lines (for blocks) or is
// otherwise still under construction. All nodes are closed after [Parse]
// returns.
func (n *Node) Open() bool {
	return n != nil && n.open
}

// LastLineBlank reports whether the most recently appended line was blank
// in the context of this block.
func (n *Node) LastLineBlank() bool {
	return n != nil && n.lastLineBlank
}

// HeadingLevel returns the 1-6 level of a HeadingKind node, or zero
// otherwise.
func (n *Node) HeadingLevel() int {
	if n.Kind() != HeadingKind {
		return 0
	}
	return n.headingLevel
}

// IsSetext reports whether a HeadingKind node was closed by a setext
// underline rather than an ATX `#` prefix.
func (n *Node) IsSetext() bool {
	return n.Kind() == HeadingKind && n.setext
}

// IsFenced reports whether a CodeBlockKind node was opened by a code fence
// rather than indentation.
func (n *Node) IsFenced() bool {
	return n.Kind() == CodeBlockKind && n.fenced
}

// FenceChar, FenceLength, and FenceOffset describe a fenced CodeBlockKind
// node's opening fence; they are zero for indented code blocks.
func (n *Node) FenceChar() byte  { return n.byteField(func(n *Node) byte { return n.fenceChar }) }
func (n *Node) FenceLength() int { return n.intField(func(n *Node) int { return n.fenceLength }) }
func (n *Node) FenceOffset() int { return n.intField(func(n *Node) int { return n.fenceOffset }) }

func (n *Node) byteField(f func(*Node) byte) byte {
	if n == nil {
		return 0
	}
	return f(n)
}

// Info returns a fenced CodeBlockKind node's info string, taken from the
// opening fence line when the block is opened. It is empty for indented
// code blocks.
func (n *Node) Info() string {
	if n.Kind() != CodeBlockKind {
		return ""
	}
	return n.info
}

// HTMLBlockType returns the 1-7 condition that opened an HTMLBlockKind node.
func (n *Node) HTMLBlockType() int {
	if n.Kind() != HTMLBlockKind {
		return 0
	}
	return n.htmlBlockType
}

// IsOrderedList reports whether the node is an ordered list or list item.
func (n *Node) IsOrderedList() bool {
	return (n.Kind() == ListKind || n.Kind() == ItemKind) && n.listOrdered
}

// ListDelimiter returns the delimiter byte ('-', '+', '*', '.', or ')') for
// a ListKind or ItemKind node.
func (n *Node) ListDelimiter() byte {
	return n.byteField(func(n *Node) byte { return n.listDelim })
}

// ListStart returns the starting number of an ordered ListKind node.
func (n *Node) ListStart() int {
	if n.Kind() != ListKind {
		return 0
	}
	return n.listStart
}

// IsTightList reports whether a ListKind or ItemKind node is tight, i.e.
// whether paragraphs inside it should be rendered without wrapping <p> tags.
func (n *Node) IsTightList() bool {
	return (n.Kind() == ListKind || n.Kind() == ItemKind) && n.listTight
}

// LinkLabel, LinkDestination, and LinkTitle return the parsed fields of a
// LinkReferenceDefinitionKind node.
func (n *Node) LinkLabel() string {
	if n.Kind() != LinkReferenceDefinitionKind {
		return ""
	}
	return n.linkLabel
}

func (n *Node) LinkDestination() string {
	if n.Kind() != LinkReferenceDefinitionKind {
		return ""
	}
	return n.linkDestination
}

func (n *Node) LinkTitle() (title string, ok bool) {
	if n.Kind() != LinkReferenceDefinitionKind {
		return "", false
	}
	return n.linkTitle, n.linkTitleSet
}

// Parent returns n's parent, or nil if n is nil or has no parent.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// FirstChild returns n's first child, or nil if n has none.
func (n *Node) FirstChild() *Node {
	if n == nil {
		return nil
	}
	return n.firstChild
}

// LastChild returns n's last child, or nil if n has none.
func (n *Node) LastChild() *Node {
	if n == nil {
		return nil
	}
	return n.lastChild
}

// NextSibling returns the sibling following n, or nil if n is the last
// child of its parent (or has no parent).
func (n *Node) NextSibling() *Node {
	if n == nil {
		return nil
	}
	return n.next
}

// PrevSibling returns the sibling preceding n, or nil if n is the first
// child of its parent (or has no parent).
func (n *Node) PrevSibling() *Node {
	if n == nil {
		return nil
	}
	return n.prev
}

// Children returns n's children as a slice, in document order. Calling
// Children on nil returns nil.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	children := make([]*Node, 0, n.ChildCount())
	for c := n.firstChild; c != nil; c = c.next {
		children = append(children, c)
	}
	return children
}

// ChildCount returns the number of children n has.
func (n *Node) ChildCount() int {
	count := 0
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		count++
	}
	return count
}

// Same reports whether n and other refer to the same node. Two nil
// pointers are considered the same.
func (n *Node) Same(other *Node) bool {
	return n == other
}

// LastChildIsOpen reports whether n has a last child and that child is
// still open.
func (n *Node) LastChildIsOpen() bool {
	return n.LastChild().Open()
}

// CanContain reports whether a node of kind n can directly hold a child of
// the given kind, per §4.1's exhaustive table.
func (n *Node) CanContain(kind Kind) bool {
	switch n.Kind() {
	case DocumentKind, BlockQuoteKind, ItemKind:
		return kind != ItemKind
	case ListKind:
		return kind == ItemKind
	case ParagraphKind, HeadingKind, EmphasisKind, StrongKind:
		return kind.IsInline()
	default:
		return false
	}
}

// AppendChild detaches child (if attached elsewhere) and appends it as n's
// new last child.
func (n *Node) AppendChild(child *Node) {
	child.Detach()
	child.parent = n
	if n.lastChild == nil {
		n.firstChild = child
		n.lastChild = child
		return
	}
	child.prev = n.lastChild
	n.lastChild.next = child
	n.lastChild = child
}

// InsertAfter detaches sibling (if attached elsewhere) and inserts it
// immediately after n in n's parent's child list. It panics if n has no
// parent.
func (n *Node) InsertAfter(sibling *Node) {
	if n.parent == nil {
		panic("commonmark: InsertAfter on a node with no parent")
	}
	sibling.Detach()
	sibling.parent = n.parent
	sibling.prev = n
	sibling.next = n.next
	if n.next != nil {
		n.next.prev = sibling
	} else {
		n.parent.lastChild = sibling
	}
	n.next = sibling
}

// InsertBefore detaches sibling (if attached elsewhere) and inserts it
// immediately before n in n's parent's child list. It panics if n has no
// parent.
func (n *Node) InsertBefore(sibling *Node) {
	if n.parent == nil {
		panic("commonmark: InsertBefore on a node with no parent")
	}
	sibling.Detach()
	sibling.parent = n.parent
	sibling.next = n
	sibling.prev = n.prev
	if n.prev != nil {
		n.prev.next = sibling
	} else {
		n.parent.firstChild = sibling
	}
	n.prev = sibling
}

// Detach removes n from its current parent (if any), leaving its former
// siblings and parent consistent. Detaching a node with no parent is a
// no-op. n's own children are left untouched.
func (n *Node) Detach() {
	if n == nil || n.parent == nil {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		n.parent.firstChild = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		n.parent.lastChild = n.prev
	}
	n.parent = nil
	n.prev = nil
	n.next = nil
}

// Text returns the literal bytes of a TextKind inline node.
func (n *Node) Text() []byte {
	if n.Kind() != TextKind {
		return nil
	}
	return n.content
}
