package commonmark

import (
	"bytes"

	"go4.org/bytereplacer"
)

// This file implements the line-oriented block-structure algorithm: feeding
// raw bytes a line at a time, matching them against the rightmost chain of
// still-open blocks, opening whatever new blocks a line's remaining text
// starts, and finally routing the line's content into whichever block ends
// up accepting it. See the scanners in scanners.go for the per-construct
// recognizers this drives.

const (
	tabStopSize     = 8
	codeIndentLimit = 4
)

// nulReplacer substitutes the NUL bytes CommonMark requires to be treated
// as U+FFFD REPLACEMENT CHARACTER (§2.3) before a line is matched against
// any block-opening rule.
var nulReplacer = bytereplacer.New("\x00", "�")

// BlockParser consumes Markdown source incrementally, building the block
// structure of a document tree. Once all input has been fed, Finish runs
// link reference collection and the inline pass and returns the finished
// root node.
type BlockParser struct {
	root    *Node
	current *Node // the tip: the deepest still-open block

	lineNumber int

	offset, column                            int
	firstNonspace, firstNonspaceColumn, indent int
	blank                                      bool
	partiallyConsumedTab                       bool
	lastLineLength                             int

	linebuf               []byte
	lastBufferEndedWithCR bool
	sawFirstLine          bool

	refMap  ReferenceMap
	options ParserOptions
}

// NewBlockParser returns a parser ready to accept input via Feed.
func NewBlockParser(options ParserOptions) *BlockParser {
	root := NewNode(DocumentKind, 0, 0)
	p := &BlockParser{
		root:    root,
		options: options,
		refMap:  make(ReferenceMap),
	}
	p.current = root
	return p
}

// References returns the parser's reference map. It is populated
// incrementally as paragraphs finalize, and complete once Finish returns.
func (p *BlockParser) References() ReferenceMap {
	return p.refMap
}

// Feed appends buffer to the parser's input. Set eof once the final chunk
// of input has been passed; this allows a buffer that doesn't end in a line
// terminator to be processed as a final, complete line.
func (p *BlockParser) Feed(buf []byte, eof bool) {
	if p.lastBufferEndedWithCR && len(buf) > 0 && buf[0] == '\n' {
		buf = buf[1:]
	}
	p.lastBufferEndedWithCR = false

	for len(buf) > 0 {
		eol := 0
		for eol < len(buf) && !isLineEnd(buf[eol]) {
			eol++
		}
		process := eol < len(buf) || eof

		if process {
			if len(p.linebuf) > 0 {
				p.linebuf = append(p.linebuf, buf[:eol]...)
				line := p.linebuf
				p.linebuf = nil
				p.processLine(line)
			} else {
				p.processLine(buf[:eol])
			}
		} else {
			p.linebuf = append(p.linebuf, buf[:eol]...)
		}

		buf = buf[eol:]
		if len(buf) > 0 && buf[0] == '\r' {
			buf = buf[1:]
			if len(buf) == 0 {
				p.lastBufferEndedWithCR = true
			}
		}
		if len(buf) > 0 && buf[0] == '\n' {
			buf = buf[1:]
		}
	}
}

// Finish flushes any buffered partial line, closes every remaining open
// block, runs the inline pass over the finished tree, and returns the root.
func (p *BlockParser) Finish() *Node {
	if len(p.linebuf) > 0 {
		line := p.linebuf
		p.linebuf = nil
		p.processLine(line)
	}
	for p.current != nil {
		p.current = p.finalizeNode(p.current)
	}
	processInlines(p.root, p.options)
	return p.root
}

// Parse is the package's top-level driver: it feeds source in full, closes
// out the document, and returns the finished tree alongside the link
// reference definitions collected along the way.
func Parse(source []byte, options ParserOptions) (*Node, ReferenceMap) {
	p := NewBlockParser(options)
	p.Feed(source, true)
	root := p.Finish()
	return root, p.refMap
}

func (p *BlockParser) processLine(line []byte) {
	if bytes.IndexByte(line, 0) >= 0 {
		line = nulReplacer.Replace(append([]byte(nil), line...))
	}

	if len(line) == 0 || !isLineEnd(line[len(line)-1]) {
		buf := make([]byte, len(line)+1)
		copy(buf, line)
		buf[len(line)] = '\n'
		line = buf
	}

	p.offset = 0
	p.column = 0
	p.blank = false
	p.partiallyConsumedTab = false

	if !p.sawFirstLine {
		p.sawFirstLine = true
		if len(line) >= 3 && line[0] == 0xEF && line[1] == 0xBB && line[2] == 0xBF {
			p.offset = 3
		}
	}
	p.lineNumber++

	lastMatched, allMatched := p.checkOpenBlocks(line)
	tipBefore := p.current
	container := p.openNewBlocks(lastMatched, line, allMatched)
	if p.current.Same(tipBefore) {
		p.addTextToContainer(container, lastMatched, line)
	}

	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	p.lastLineLength = n
}

// checkOpenBlocks walks the rightmost chain of open blocks, testing each
// against line in turn, and reports the deepest block the line still
// belongs to along with whether every open block matched.
func (p *BlockParser) checkOpenBlocks(line []byte) (lastMatched *Node, allMatched bool) {
	container := p.root
	matchFailed := false

	for container.LastChildIsOpen() {
		child := container.LastChild()
		p.findFirstNonspace(line)

		switch child.Kind() {
		case BlockQuoteKind:
			if !p.consumeBlockQuotePrefix(line) {
				matchFailed = true
			}
		case ItemKind:
			if !p.consumeItemPrefix(line, child) {
				matchFailed = true
			}
		case CodeBlockKind:
			if !child.fenced {
				switch {
				case p.indent >= codeIndentLimit:
					p.advanceOffset(line, codeIndentLimit, true)
				case p.blank:
					// A blank line doesn't need to meet the indent
					// requirement to remain part of the code block.
				default:
					matchFailed = true
				}
			} else {
				if p.indent <= 3 && p.firstNonspace < len(line) && line[p.firstNonspace] == child.fenceChar &&
					closingCodeFence(line, p.firstNonspace, child.fenceChar, child.fenceLength) {
					p.advanceOffset(line, len(line)-p.offset, false)
					p.current = p.finalizeNode(child)
					continue
				}
				toConsume := child.containerIndent
				if p.indent < toConsume {
					toConsume = p.indent
				}
				p.advanceOffset(line, toConsume, true)
			}
		case HTMLBlockKind:
			if p.blank && (child.htmlBlockType == 6 || child.htmlBlockType == 7) {
				matchFailed = true
			}
		case HeadingKind, ThematicBreakKind:
			matchFailed = true
		case ParagraphKind:
			if p.blank {
				matchFailed = true
			}
		}

		if matchFailed {
			break
		}
		container = child
	}

	return container, !matchFailed
}

func (p *BlockParser) consumeBlockQuotePrefix(line []byte) bool {
	if p.indent > 3 {
		return false
	}
	if p.firstNonspace >= len(line) || line[p.firstNonspace] != '>' {
		return false
	}
	p.advanceOffset(line, p.firstNonspace+1-p.offset, false)
	if p.offset < len(line) && isSpaceOrTab(line[p.offset]) {
		p.advanceOffset(line, 1, true)
	}
	return true
}

func (p *BlockParser) consumeItemPrefix(line []byte, item *Node) bool {
	if p.blank {
		if item.FirstChild() == nil {
			return false
		}
		p.advanceOffset(line, p.indent, true)
		return true
	}
	if p.indent >= item.containerIndent {
		p.advanceOffset(line, item.containerIndent, true)
		return true
	}
	return false
}

// openNewBlocks implements the fixed-priority block-opening chain: block
// quote, ATX heading, fenced code, HTML block, setext heading, thematic
// break, list item, indented code block.
func (p *BlockParser) openNewBlocks(container *Node, line []byte, allMatched bool) *Node {
	maybeLazy := p.current.Kind() == ParagraphKind

	for {
		if container.Kind() == CodeBlockKind || container.Kind() == HTMLBlockKind {
			return container
		}

		p.findFirstNonspace(line)
		indented := p.indent >= codeIndentLimit

		if !indented && p.firstNonspace < len(line) && line[p.firstNonspace] == '>' {
			startCol := p.firstNonspace
			p.advanceOffset(line, p.firstNonspace+1-p.offset, false)
			if p.offset < len(line) && isSpaceOrTab(line[p.offset]) {
				p.advanceOffset(line, 1, true)
			}
			container = p.addChild(container, BlockQuoteKind, startCol+1)
			maybeLazy = false
			continue
		}

		if !indented {
			if nc, ok := p.openATXHeading(container, line); ok {
				return nc
			}
		}

		if !indented {
			if nc, ok := p.openFencedCode(container, line); ok {
				return nc
			}
		}

		if !indented {
			if nc, ok := p.openHTMLBlock(container, line, container.Kind() == ParagraphKind); ok {
				return nc
			}
		}

		if !indented && container.Kind() == ParagraphKind {
			if nc, ok := p.morphSetext(container, line); ok {
				return nc
			}
		}

		if !indented && !(container.Kind() == ParagraphKind && !allMatched) {
			if nc, ok := p.openThematicBreak(container, line); ok {
				return nc
			}
		}

		if !indented || container.Kind() == ListKind {
			if nc, ok := p.openListItem(container, line); ok {
				container = nc
				maybeLazy = false
				continue
			}
		}

		if indented && !maybeLazy && !p.blank {
			p.advanceOffset(line, codeIndentLimit, true)
			return p.addChild(container, CodeBlockKind, p.offset+1)
		}

		return container
	}
}

func (p *BlockParser) openATXHeading(container *Node, line []byte) (*Node, bool) {
	level, content, ok := atxHeadingStart(line, p.firstNonspace)
	if !ok {
		return nil, false
	}
	startCol := p.firstNonspace
	p.advanceOffset(line, content.Start-p.offset, false)
	heading := p.addChild(container, HeadingKind, startCol+1)
	heading.headingLevel = level
	heading.content = append(heading.content, spanSlice(line, content)...)
	p.advanceOffset(line, len(line)-p.offset, false)
	return p.finalizeNode(heading), true
}

func (p *BlockParser) openFencedCode(container *Node, line []byte) (*Node, bool) {
	fenceChar, fenceLength, info, ok := openCodeFence(line, p.firstNonspace)
	if !ok {
		return nil, false
	}
	startCol := p.firstNonspace
	fenceIndent := p.indent
	p.advanceOffset(line, p.firstNonspace-p.offset, false)
	p.advanceOffset(line, fenceLength, false)
	code := p.addChild(container, CodeBlockKind, startCol+1)
	code.fenced = true
	code.fenceChar = fenceChar
	code.fenceLength = fenceLength
	code.fenceOffset = fenceIndent
	code.containerIndent = fenceIndent
	if info.IsValid() {
		code.info = string(spanSlice(line, info))
	}
	p.advanceOffset(line, len(line)-p.offset, false)
	return code, true
}

func (p *BlockParser) openHTMLBlock(container *Node, line []byte, isParagraph bool) (*Node, bool) {
	if cond, ok := htmlBlockStart(line, p.firstNonspace); ok {
		if isParagraph && !htmlBlockConditions[cond-1].canInterruptParagraph {
			return nil, false
		}
		startCol := p.firstNonspace
		block := p.addChild(container, HTMLBlockKind, startCol+1)
		block.htmlBlockType = cond
		if cond <= 5 && htmlBlockEnd(cond, line) {
			p.advanceOffset(line, p.firstNonspace-p.offset, false)
			p.addLine(block, line)
			return p.finalizeNode(block), true
		}
		return block, true
	}
	if htmlBlockStart7(line, p.firstNonspace, isParagraph) {
		startCol := p.firstNonspace
		block := p.addChild(container, HTMLBlockKind, startCol+1)
		block.htmlBlockType = 7
		return block, true
	}
	return nil, false
}

func (p *BlockParser) morphSetext(container *Node, line []byte) (*Node, bool) {
	level, ok := setextHeadingLine(line, p.firstNonspace)
	if !ok {
		return nil, false
	}
	container.kind = HeadingKind
	container.headingLevel = level
	container.setext = true
	p.advanceOffset(line, len(line)-p.offset, false)
	return p.finalizeNode(container), true
}

func (p *BlockParser) openThematicBreak(container *Node, line []byte) (*Node, bool) {
	matched, ok := thematicBreak(line, p.firstNonspace)
	if !ok {
		return nil, false
	}
	startCol := p.firstNonspace
	p.advanceOffset(line, p.firstNonspace+matched-p.offset, false)
	tb := p.addChild(container, ThematicBreakKind, startCol+1)
	p.advanceOffset(line, len(line)-p.offset, false)
	return p.finalizeNode(tb), true
}

func (p *BlockParser) openListItem(container *Node, line []byte) (*Node, bool) {
	interruptsParagraph := container.Kind() == ParagraphKind
	m, ok := parseListMarker(line, p.firstNonspace, interruptsParagraph)
	if !ok {
		return nil, false
	}
	if interruptsParagraph {
		afterMarker := p.firstNonspace + m.end
		if afterMarker > len(line) || isBlankLine(line[afterMarker:]) {
			return nil, false
		}
	}

	startCol := p.firstNonspace
	markerIndent := p.indent
	p.advanceOffset(line, p.firstNonspace-p.offset, false)

	if container.Kind() != ListKind || container.listDelim != m.delim || container.listOrdered != m.isOrdered() {
		list := p.addChild(container, ListKind, startCol+1)
		list.listOrdered = m.isOrdered()
		list.listDelim = m.delim
		list.listStart = m.n
		container = list
	}
	item := p.addChild(container, ItemKind, startCol+1)
	item.listOrdered = m.isOrdered()
	item.listDelim = m.delim

	p.advanceOffset(line, m.end, false)
	p.findFirstNonspace(line)

	if p.blank {
		item.containerIndent = markerIndent + m.end + 1
		p.advanceOffset(line, len(line)-p.offset, false)
		return item, true
	}

	padding := p.indent
	switch {
	case padding < 1:
		padding = 1
	case padding > 4:
		padding = 1
		p.advanceOffset(line, 1, true)
	default:
		p.advanceOffset(line, padding, true)
	}
	item.containerIndent = markerIndent + m.end + padding
	return item, true
}

// addTextToContainer routes the remainder of line into container, which
// must be reachable from p.current by closing zero or more open blocks.
func (p *BlockParser) addTextToContainer(container, lastMatched *Node, line []byte) {
	p.findFirstNonspace(line)

	if p.blank {
		if lc := container.LastChild(); lc != nil {
			lc.lastLineBlank = true
		}
	}

	container.lastLineBlank = p.blank
	switch container.Kind() {
	case BlockQuoteKind, HeadingKind, ThematicBreakKind:
		container.lastLineBlank = false
	case CodeBlockKind:
		if container.fenced {
			container.lastLineBlank = false
		}
	case ItemKind:
		container.lastLineBlank = p.blank && (container.FirstChild() != nil || container.StartLine() != p.lineNumber)
	}

	for parent := container.Parent(); parent != nil; parent = parent.Parent() {
		parent.lastLineBlank = false
	}

	if !p.current.Same(lastMatched) && container.Same(lastMatched) && !p.blank && p.current.Kind() == ParagraphKind {
		// Lazy continuation: an open paragraph swallows a line that didn't
		// match any of its ancestor containers' continuation rules.
		p.addLine(p.current, line)
		return
	}

	for !p.current.Same(lastMatched) {
		p.current = p.finalizeNode(p.current)
	}

	switch container.Kind() {
	case CodeBlockKind:
		p.addLine(container, line)
	case HTMLBlockKind:
		p.addLine(container, line)
		if htmlBlockShouldClose(container, line) {
			container = p.finalizeNode(container)
		}
	default:
		switch {
		case p.blank:
			// Nothing to add.
		case container.Kind().AcceptsLines():
			count := p.firstNonspace - p.offset
			p.advanceOffset(line, count, false)
			p.addLine(container, line)
		default:
			container = p.addChild(container, ParagraphKind, p.firstNonspace+1)
			count := p.firstNonspace - p.offset
			p.advanceOffset(line, count, false)
			p.addLine(container, line)
		}
	}

	p.current = container
}

func htmlBlockShouldClose(container *Node, line []byte) bool {
	t := container.htmlBlockType
	if t < 1 || t > 5 {
		return false
	}
	return htmlBlockEnd(t, line)
}

// addChild closes ancestors of parent up to the first one that can hold a
// node of kind, then appends and returns a new node of that kind.
func (p *BlockParser) addChild(parent *Node, kind Kind, startColumn int) *Node {
	for !parent.CanContain(kind) {
		parent = p.finalizeNode(parent)
	}
	child := NewNode(kind, p.lineNumber, startColumn)
	parent.AppendChild(child)
	return child
}

// addLine appends the unconsumed remainder of line (from p.offset) to
// node's content buffer, restoring any partially consumed tab as spaces.
func (p *BlockParser) addLine(node *Node, line []byte) {
	if !node.open {
		panic("commonmark: addLine on a closed node")
	}
	if p.partiallyConsumedTab {
		p.offset++
		charsToTab := tabStopSize - (p.column % tabStopSize)
		for i := 0; i < charsToTab; i++ {
			node.content = append(node.content, ' ')
		}
	}
	if p.offset < len(line) {
		node.content = append(node.content, line[p.offset:]...)
	}
}

// finalizeNode closes node, stamping its end position, runs any
// kind-specific finalization, and returns node's former parent.
func (p *BlockParser) finalizeNode(node *Node) *Node {
	if !node.open {
		panic("commonmark: finalize on an already-closed node")
	}
	node.open = false

	switch {
	case len(p.linebuf) == 0:
		node.endLine = p.lineNumber
		node.endColumn = p.lastLineLength
	case node.kind == DocumentKind, node.kind == CodeBlockKind && node.fenced, node.kind == HeadingKind && node.setext:
		n := len(p.linebuf)
		if n > 0 && p.linebuf[n-1] == '\n' {
			n--
		}
		if n > 0 && p.linebuf[n-1] == '\r' {
			n--
		}
		node.endLine = p.lineNumber
		node.endColumn = n
	default:
		node.endLine = p.lineNumber - 1
		node.endColumn = p.lastLineLength
	}

	parent := node.Parent()
	switch node.kind {
	case ParagraphKind:
		p.finalizeParagraph(node)
	case CodeBlockKind:
		p.finalizeCodeBlock(node)
	case ListKind:
		p.finalizeList(node)
	}

	return parent
}

func (p *BlockParser) finalizeCodeBlock(node *Node) {
	if node.fenced {
		return
	}
	// Trailing blank lines are not part of an indented code block.
	content := node.content
	end := len(content)
	for end > 0 {
		lineStart := end - 1
		for lineStart > 0 && content[lineStart-1] != '\n' {
			lineStart--
		}
		if !isBlankLine(content[lineStart:end]) {
			break
		}
		end = lineStart
	}
	node.content = content[:end]
}

func (p *BlockParser) finalizeList(list *Node) {
	items := list.Children()
	tight := true

loose:
	for i, item := range items {
		if i < len(items)-1 && blockEndsBlank(item) {
			tight = false
			break loose
		}
		sub := item.Children()
		for j, s := range sub {
			if (i < len(items)-1 || j < len(sub)-1) && blockEndsBlank(s) {
				tight = false
				break loose
			}
		}
	}

	list.listTight = tight
	for _, item := range items {
		item.listTight = tight
	}
}

// blockEndsBlank reports whether n, or its rightmost descendant chain of
// List/Item containers, was last closed by a blank line.
func blockEndsBlank(n *Node) bool {
	for n != nil {
		if n.lastLineBlank {
			return true
		}
		if n.Kind() != ListKind && n.Kind() != ItemKind {
			return false
		}
		n = n.LastChild()
	}
	return false
}

// findFirstNonspace scans forward from p.offset, computing the column of
// the first non-space/tab byte (or line end), tab-expanded to tabStopSize.
func (p *BlockParser) findFirstNonspace(line []byte) {
	p.firstNonspace = p.offset
	p.firstNonspaceColumn = p.column
	charsToTab := tabStopSize - (p.column % tabStopSize)

scan:
	for p.firstNonspace < len(line) {
		switch line[p.firstNonspace] {
		case ' ':
			p.firstNonspace++
			p.firstNonspaceColumn++
			charsToTab--
			if charsToTab == 0 {
				charsToTab = tabStopSize
			}
		case '\t':
			p.firstNonspace++
			p.firstNonspaceColumn += charsToTab
			charsToTab = tabStopSize
		default:
			break scan
		}
	}

	p.indent = p.firstNonspaceColumn - p.column
	p.blank = p.firstNonspace >= len(line) || isLineEnd(line[p.firstNonspace])
}

// advanceOffset moves p.offset/p.column forward by count units: bytes if
// byColumns is false, display columns (tab-expanding) if true.
func (p *BlockParser) advanceOffset(line []byte, count int, byColumns bool) {
	for count > 0 && p.offset < len(line) {
		if line[p.offset] != '\t' {
			p.partiallyConsumedTab = false
			p.offset++
			p.column++
			count--
			continue
		}

		charsToTab := tabStopSize - (p.column % tabStopSize)
		if byColumns {
			advance := count
			if charsToTab < advance {
				advance = charsToTab
			}
			p.partiallyConsumedTab = charsToTab > count
			p.column += advance
			if !p.partiallyConsumedTab {
				p.offset++
			}
			count -= advance
		} else {
			p.partiallyConsumedTab = false
			p.column += charsToTab
			p.offset++
			count--
		}
	}
}
