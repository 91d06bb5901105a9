// Package htmlrender serializes a parsed commonmark document tree to HTML5.
package htmlrender

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/mdtree/commonmark"
)

// A Renderer converts a fully parsed commonmark document tree into HTML.
//
// Raw HTML blocks are passed through verbatim unless IgnoreRaw is set or
// FilterTag rejects a particular tag. Untrusted input should still be run
// through an HTML sanitizer downstream; FilterTag only narrows the set of
// tags that can appear, it does not guarantee well-formed output.
type Renderer struct {
	// ReferenceMap holds the document's link reference definitions. It is
	// unused by the core renderer (inline link resolution is out of
	// scope) but is exposed for renderer extensions built on top of it.
	ReferenceMap commonmark.ReferenceMap
	// SoftBreakBehavior determines how soft line breaks are rendered.
	SoftBreakBehavior SoftBreakBehavior
	// If IgnoreRaw is true, HTML block content is omitted entirely.
	IgnoreRaw bool
	// FilterTag reports whether an element with the given lowercased tag
	// name appearing in raw HTML should have its leading angle bracket
	// escaped. A nil FilterTag performs no filtering.
	FilterTag func(tag []byte) bool
}

// Render writes root as HTML to w, filtering the default set of unsafe raw
// HTML tags (script, style, title, textarea). It is the safe entry point
// for untrusted documents; construct a Renderer directly for more control.
func Render(w io.Writer, root *commonmark.Node, refMap commonmark.ReferenceMap) error {
	r := &Renderer{ReferenceMap: refMap, FilterTag: DefaultFilterTag}
	return r.Render(w, root)
}

// Render writes root as HTML to w, returning the first write error
// encountered, if any.
func (r *Renderer) Render(w io.Writer, root *commonmark.Node) error {
	dst := r.AppendNode(nil, root)
	if _, err := w.Write(dst); err != nil {
		return fmt.Errorf("render markdown to html: %w", err)
	}
	return nil
}

// AppendNode appends the rendered HTML of root to dst and returns the
// resulting byte slice.
func (r *Renderer) AppendNode(dst []byte, root *commonmark.Node) []byte {
	state := &renderState{Renderer: r, dst: dst}
	commonmark.Walk(root, &commonmark.WalkOptions{
		Pre:  state.pre,
		Post: state.post,
	})
	return state.dst
}

// SoftBreakBehavior is an enumeration of rendering styles for soft line
// breaks.
type SoftBreakBehavior int

const (
	// SoftBreakPreserve renders a soft line break as a literal newline.
	SoftBreakPreserve SoftBreakBehavior = iota
	// SoftBreakSpace renders a soft line break as a single space.
	SoftBreakSpace
	// SoftBreakHarden renders a soft line break as a hard line break.
	SoftBreakHarden
)

type renderState struct {
	*Renderer
	dst []byte
}

func (s *renderState) openTagAttr(name atom.Atom) {
	start := len(s.dst)
	s.dst = append(s.dst, '<')
	s.dst = append(s.dst, name.String()...)
	if s.FilterTag != nil && s.FilterTag(s.dst[start+1:]) {
		s.dst = s.dst[:start]
		s.dst = append(s.dst, "&lt;"...)
		s.dst = append(s.dst, name.String()...)
	}
}

func (s *renderState) openTag(name atom.Atom) {
	s.openTagAttr(name)
	s.dst = append(s.dst, '>')
}

func (s *renderState) closeTag(name atom.Atom) {
	start := len(s.dst)
	s.dst = append(s.dst, "</"...)
	s.dst = append(s.dst, name.String()...)
	if s.FilterTag != nil && s.FilterTag(s.dst[start+2:]) {
		s.dst = s.dst[:start]
		s.dst = append(s.dst, "&lt;/"...)
		s.dst = append(s.dst, name.String()...)
	}
	s.dst = append(s.dst, '>')
}

func headingTag(level int) atom.Atom {
	switch level {
	case 1:
		return atom.H1
	case 2:
		return atom.H2
	case 3:
		return atom.H3
	case 4:
		return atom.H4
	case 5:
		return atom.H5
	default:
		return atom.H6
	}
}

// isTightParagraph reports whether n is a Paragraph directly inside a tight
// list item, and so should be rendered without its wrapping <p> tag.
func isTightParagraph(c *commonmark.Cursor) bool {
	parent := c.Parent()
	return parent.Kind() == commonmark.ItemKind && parent.IsTightList()
}

func (s *renderState) pre(c *commonmark.Cursor) bool {
	n := c.Node()
	switch n.Kind() {
	case commonmark.DocumentKind:
		return true
	case commonmark.LinkReferenceDefinitionKind:
		return false
	case commonmark.ParagraphKind:
		if !isTightParagraph(c) {
			s.openTag(atom.P)
		}
		return true
	case commonmark.ThematicBreakKind:
		s.openTag(atom.Hr)
		return false
	case commonmark.HeadingKind:
		s.openTag(headingTag(n.HeadingLevel()))
		return true
	case commonmark.CodeBlockKind:
		s.openTag(atom.Pre)
		s.openTagAttr(atom.Code)
		if words := strings.Fields(n.Info()); len(words) > 0 {
			s.dst = append(s.dst, ` class="language-`...)
			s.dst = append(s.dst, html.EscapeString(words[0])...)
			s.dst = append(s.dst, '"')
		}
		s.dst = append(s.dst, '>')
		s.dst = escapeHTML(s.dst, n.Content())
		s.closeTag(atom.Code)
		s.closeTag(atom.Pre)
		return false
	case commonmark.HTMLBlockKind:
		if !s.IgnoreRaw {
			s.appendRaw(n.Content())
		}
		return false
	case commonmark.BlockQuoteKind:
		s.openTag(atom.Blockquote)
		return true
	case commonmark.ListKind:
		if n.IsOrderedList() {
			s.openTagAttr(atom.Ol)
			if start := n.ListStart(); start != 1 {
				s.dst = append(s.dst, ` start="`...)
				s.dst = strconv.AppendInt(s.dst, int64(start), 10)
				s.dst = append(s.dst, '"')
			}
			s.dst = append(s.dst, '>')
		} else {
			s.openTag(atom.Ul)
		}
		return true
	case commonmark.ItemKind:
		s.openTag(atom.Li)
		return true
	case commonmark.TextKind:
		s.dst = escapeHTML(s.dst, n.Text())
		return false
	case commonmark.SoftBreakKind:
		switch s.SoftBreakBehavior {
		case SoftBreakHarden:
			s.dst = append(s.dst, "<br>\n"...)
		case SoftBreakSpace:
			s.dst = append(s.dst, ' ')
		default:
			s.dst = append(s.dst, '\n')
		}
		return false
	case commonmark.LineBreakKind:
		s.dst = append(s.dst, "<br>\n"...)
		return false
	case commonmark.EmphasisKind:
		s.openTag(atom.Em)
		return true
	case commonmark.StrongKind:
		s.openTag(atom.Strong)
		return true
	default:
		// Unknown kind (e.g. an extension bit added by a caller): render
		// its literal content, if any, so the renderer degrades instead
		// of silently dropping content.
		s.dst = escapeHTML(s.dst, n.Content())
		return true
	}
}

func (s *renderState) post(c *commonmark.Cursor) bool {
	switch n := c.Node(); n.Kind() {
	case commonmark.ParagraphKind:
		if !isTightParagraph(c) {
			s.closeTag(atom.P)
		}
	case commonmark.HeadingKind:
		s.closeTag(headingTag(n.HeadingLevel()))
	case commonmark.BlockQuoteKind:
		s.closeTag(atom.Blockquote)
	case commonmark.ListKind:
		if n.IsOrderedList() {
			s.closeTag(atom.Ol)
		} else {
			s.closeTag(atom.Ul)
		}
	case commonmark.ItemKind:
		s.closeTag(atom.Li)
	case commonmark.EmphasisKind:
		s.closeTag(atom.Em)
	case commonmark.StrongKind:
		s.closeTag(atom.Strong)
	}
	return true
}

// appendRaw appends a raw HTML block's content, escaping the tag name of
// any element FilterTag rejects and leaving everything else untouched.
func (s *renderState) appendRaw(raw []byte) {
	if s.FilterTag == nil {
		s.dst = append(s.dst, raw...)
		return
	}

	const (
		commentPrefix = "<!--"
		commentSuffix = "-->"
		cdataPrefix   = "<![CDATA["
		cdataSuffix   = "]]>"
	)

	copyStart := 0
	i := 0
	for i < len(raw) {
		if raw[i] != '<' {
			i++
			continue
		}
		switch {
		case bytes.HasPrefix(raw[i:], []byte(commentPrefix)):
			if j := bytes.Index(raw[i:], []byte(commentSuffix)); j >= 0 {
				i += j + len(commentSuffix)
			} else {
				i = len(raw)
			}
		case bytes.HasPrefix(raw[i:], []byte(cdataPrefix)):
			if j := bytes.Index(raw[i:], []byte(cdataSuffix)); j >= 0 {
				i += j + len(cdataSuffix)
			} else {
				i = len(raw)
			}
		case i+1 < len(raw) && (raw[i+1] == '!' || raw[i+1] == '?'):
			if j := bytes.IndexByte(raw[i:], '>'); j >= 0 {
				i += j + 1
			} else {
				i = len(raw)
			}
		default:
			tagStart := i + 1
			if tagStart < len(raw) && raw[tagStart] == '/' {
				tagStart++
			}
			tagEnd := tagStart
			for tagEnd < len(raw) && isTagNameByte(raw[tagEnd]) {
				tagEnd++
			}
			closeIdx := bytes.IndexByte(raw[tagEnd:], '>')
			elementEnd := len(raw)
			if closeIdx >= 0 {
				elementEnd = tagEnd + closeIdx + 1
			}
			if tagEnd > tagStart && s.FilterTag(lowerTagName(raw[tagStart:tagEnd])) {
				s.dst = append(s.dst, raw[copyStart:i]...)
				s.dst = append(s.dst, "&lt;"...)
				s.dst = append(s.dst, raw[i+1:elementEnd]...)
				copyStart = elementEnd
			}
			i = elementEnd
		}
	}
	s.dst = append(s.dst, raw[copyStart:]...)
}

func isTagNameByte(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || '0' <= b && b <= '9' || b == '-'
}

func lowerTagName(tag []byte) []byte {
	out := make([]byte, len(tag))
	for i, b := range tag {
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		out[i] = b
	}
	return out
}

// escapeHTML appends the HTML-escaped version of src to dst.
func escapeHTML(dst []byte, src []byte) []byte {
	verbatimStart := 0
	for i, b := range src {
		switch b {
		case '&':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&amp;"...)
			verbatimStart = i + 1
		case '<':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&lt;"...)
			verbatimStart = i + 1
		case '>':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&gt;"...)
			verbatimStart = i + 1
		case '"':
			dst = append(dst, src[verbatimStart:i]...)
			dst = append(dst, "&quot;"...)
			verbatimStart = i + 1
		}
	}
	if verbatimStart < len(src) {
		dst = append(dst, src[verbatimStart:]...)
	}
	return dst
}

// DefaultFilterTag blocks the tags whose content is unsafe to surface
// without a script-capable sanitizer: script, style, title, and textarea.
func DefaultFilterTag(tag []byte) bool {
	switch atom.Lookup(tag) {
	case atom.Script, atom.Style, atom.Title, atom.Textarea:
		return true
	default:
		return false
	}
}
