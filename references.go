package commonmark

import (
	"bytes"
	"strings"

	"golang.org/x/text/cases"
)

// LinkDefinition is the destination and optional title collected from a
// single link reference definition.
type LinkDefinition struct {
	Destination  string
	Title        string
	TitlePresent bool
}

// ReferenceMatcher reports whether a normalized label (see NormalizeLabel)
// has a known definition. It exists so that an inline-link resolution pass
// built on top of this package (out of scope here) has a ready-made
// collaborator to query during parsing.
type ReferenceMatcher interface {
	MatchReference(normalizedLabel string) bool
}

// ReferenceMap collects the link reference definitions found while
// finalizing paragraphs, keyed by normalized label.
type ReferenceMap map[string]LinkDefinition

// MatchReference implements ReferenceMatcher.
func (m ReferenceMap) MatchReference(normalizedLabel string) bool {
	_, ok := m[normalizedLabel]
	return ok
}

var labelFold = cases.Fold()

// NormalizeLabel implements CommonMark's link label matching rule:
// consecutive internal whitespace collapses to a single space, leading and
// trailing whitespace is stripped, and case differences are folded using
// Unicode case folding.
func NormalizeLabel(label string) string {
	label = strings.Join(strings.Fields(label), " ")
	return labelFold.String(label)
}

// finalizeParagraph strips any leading run of link reference definitions
// from node's content, turning each into a LinkReferenceDefinitionKind
// sibling inserted immediately before node, and records it in the parser's
// reference map (first definition for a given label wins). If the entire
// paragraph consists of definitions, node is detached.
func (p *BlockParser) finalizeParagraph(node *Node) {
	for {
		def, rest, ok := scanLeadingLinkReferenceDefinition(node.content)
		if !ok {
			break
		}
		refNode := NewNode(LinkReferenceDefinitionKind, node.startLine, node.startColumn)
		refNode.open = false
		refNode.endLine, refNode.endColumn = node.startLine, node.startColumn
		refNode.linkLabel = def.label
		refNode.linkDestination = def.dest
		if def.titlePresent {
			refNode.linkTitle = def.title
			refNode.linkTitleSet = true
		}

		if node.Parent() != nil {
			node.InsertBefore(refNode)
		}

		if p.refMap != nil {
			key := NormalizeLabel(def.label)
			if _, exists := p.refMap[key]; !exists {
				p.refMap[key] = LinkDefinition{
					Destination:  def.dest,
					Title:        def.title,
					TitlePresent: def.titlePresent,
				}
			}
		}

		node.content = rest
	}

	if len(bytes.TrimSpace(node.content)) == 0 {
		node.Detach()
	}
}

type linkReferenceDefinition struct {
	label        string
	dest         string
	title        string
	titlePresent bool
}

// scanLeadingLinkReferenceDefinition recognizes a single `[label]: dest
// "title"` definition (title optional, destination bare or <angle
// bracketed>, label non-empty and not containing an unescaped closing
// bracket) at the very start of content. It returns the remainder of
// content following the definition (and its trailing line break) on
// success.
func scanLeadingLinkReferenceDefinition(content []byte) (def linkReferenceDefinition, rest []byte, ok bool) {
	n := len(content)
	i := 0

	if i >= n || content[i] != '[' {
		return def, nil, false
	}
	i++
	labelStart := i
	for i < n {
		c := content[i]
		if c == '\\' && i+1 < n {
			i += 2
			continue
		}
		if c == '\n' && i > labelStart+200 {
			return def, nil, false
		}
		if c == ']' {
			break
		}
		i++
	}
	if i >= n || content[i] != ']' {
		return def, nil, false
	}
	label := string(content[labelStart:i])
	if strings.TrimSpace(label) == "" {
		return def, nil, false
	}
	i++
	if i >= n || content[i] != ':' {
		return def, nil, false
	}
	i++
	i = skipLinkWhitespace(content, i)
	if i >= n {
		return def, nil, false
	}

	destStart := i
	var dest string
	if content[i] == '<' {
		i++
		for i < n && content[i] != '>' && content[i] != '\n' {
			i++
		}
		if i >= n || content[i] != '>' {
			return def, nil, false
		}
		dest = string(content[destStart+1 : i])
		i++
	} else {
		for i < n && !isSpaceTabOrLineEnd(content[i]) {
			i++
		}
		if i == destStart {
			return def, nil, false
		}
		dest = string(content[destStart:i])
	}

	afterDest := i
	title, titlePresent, afterTitle, titleOK := scanLinkTitle(content, i)
	if titleOK {
		i = afterTitle
	} else {
		i = afterDest
		for i < n && isSpaceOrTab(content[i]) {
			i++
		}
		if i < n && !isLineEnd(content[i]) {
			return def, nil, false
		}
	}
	if i < n && content[i] == '\r' {
		i++
	}
	if i < n && content[i] == '\n' {
		i++
	}

	def = linkReferenceDefinition{label: label, dest: dest, title: title, titlePresent: titlePresent}
	return def, content[i:], true
}

func skipLinkWhitespace(content []byte, i int) int {
	for i < len(content) && isSpaceTabOrLineEnd(content[i]) {
		i++
	}
	return i
}

// scanLinkTitle attempts to read a "title", 'title', or (title) immediately
// after whitespace at offset i, requiring it to be followed only by
// trailing spaces/tabs and a line end (or end of input).
func scanLinkTitle(content []byte, i int) (title string, present bool, end int, ok bool) {
	n := len(content)
	j := i
	for j < n && isSpaceOrTab(content[j]) {
		j++
	}
	if j < n && isLineEnd(content[j]) {
		j = skipLinkWhitespace(content, j)
	}
	if j >= n {
		return "", false, 0, false
	}
	var closer byte
	switch content[j] {
	case '"':
		closer = '"'
	case '\'':
		closer = '\''
	case '(':
		closer = ')'
	default:
		return "", false, 0, false
	}
	titleStart := j + 1
	k := titleStart
	for k < n && content[k] != closer {
		if content[k] == '\\' {
			k++
		}
		k++
	}
	if k >= n {
		return "", false, 0, false
	}
	closeEnd := k + 1
	m := closeEnd
	for m < n && isSpaceOrTab(content[m]) {
		m++
	}
	if m < n && !isLineEnd(content[m]) {
		return "", false, 0, false
	}
	return string(content[titleStart:k]), true, m, true
}
