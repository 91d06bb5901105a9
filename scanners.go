package commonmark

import (
	"golang.org/x/net/html/atom"
)

// This file implements the scanners the distilled core specification
// declares as an external contract: pure predicates over a line buffer that
// return how many bytes they matched. The block parser in block_parser.go
// treats these purely as black boxes with the signatures below; nothing
// here depends on parser state.

// thematicBreak reports whether line[offset:] begins with a thematic break
// (three or more matching '*', '-', or '_' characters, optionally
// interspersed with spaces or tabs) and, if so, how many bytes it consumed.
func thematicBreak(line []byte, offset int) (matched int, ok bool) {
	n := 0
	var want byte
	end := offset
	for i := offset; i < len(line); i++ {
		switch b := line[i]; b {
		case '-', '_', '*':
			if n == 0 {
				want = b
			} else if b != want {
				return 0, false
			}
			n++
			end = i + 1
		case ' ', '\t', '\r', '\n':
			// ignore
		default:
			return 0, false
		}
	}
	if n < 3 {
		return 0, false
	}
	return end - offset, true
}

// atxHeadingStart reports whether line[offset:] begins an ATX heading
// (1-6 '#' characters followed by a space, tab, or line ending) and, if so,
// the heading level and the span of the heading's trimmed content.
func atxHeadingStart(line []byte, offset int) (level int, content Span, ok bool) {
	i := offset
	for i < len(line) && line[i] == '#' {
		i++
	}
	level = i - offset
	if level == 0 || level > 6 {
		return 0, NullSpan(), false
	}
	if i >= len(line) || isLineEnd(line[i]) {
		return level, Span{Start: i, End: i}, true
	}
	if !isSpaceOrTab(line[i]) {
		return 0, NullSpan(), false
	}
	i++
	for i < len(line) && isSpaceOrTab(line[i]) {
		i++
	}
	start := i
	end := len(line)
	hitHash := false
scanBack:
	for ; end > start; end-- {
		switch line[end-1] {
		case '\r', '\n':
			// skip past EOL
		case ' ', '\t':
			if isEndEscaped(line[:end-1]) {
				break scanBack
			}
		case '#':
			hitHash = true
			break scanBack
		default:
			break scanBack
		}
	}
	if !hitHash {
		return level, Span{Start: start, End: end}, true
	}
scanTrailingHashes:
	for j := end - 1; ; j-- {
		if j <= start {
			end = start
			break
		}
		switch line[j] {
		case '#':
			// keep going
		case ' ', '\t':
			end = j + 1
			break scanTrailingHashes
		default:
			return level, Span{Start: start, End: end}, true
		}
	}
	for ; end > start; end-- {
		if b := line[end-1]; !isSpaceOrTab(b) || isEndEscaped(line[:end-1]) {
			break
		}
	}
	return level, Span{Start: start, End: end}, true
}

// setextHeadingLine reports whether line[offset:] is a setext heading
// underline ('=' for level 1, '-' for level 2) and, if so, the level.
func setextHeadingLine(line []byte, offset int) (level int, ok bool) {
	if offset >= len(line) {
		return 0, false
	}
	switch line[offset] {
	case '=':
		level = 1
	case '-':
		level = 2
	default:
		return 0, false
	}
	for i := offset + 1; i < len(line); i++ {
		if line[i] != line[offset] {
			if !isBlankLine(line[i:]) {
				return 0, false
			}
			return level, true
		}
	}
	return level, true
}

// openCodeFence reports whether line[offset:] opens a code fence (three or
// more consecutive '`' or '~' characters) and, if so, the fence character,
// its length, and the span of its (possibly empty) info string.
func openCodeFence(line []byte, offset int) (fenceChar byte, fenceLength int, info Span, ok bool) {
	const minConsecutive = 3
	if offset >= len(line) || (line[offset] != '`' && line[offset] != '~') {
		return 0, 0, NullSpan(), false
	}
	fenceChar = line[offset]
	i := offset
	for i < len(line) && line[i] == fenceChar {
		i++
	}
	fenceLength = i - offset
	if fenceLength < minConsecutive {
		return 0, 0, NullSpan(), false
	}
	info = NullSpan()
	for j := i; j < len(line) && info.Start < 0; j++ {
		if !isSpaceTabOrLineEnd(line[j]) {
			info.Start = j
		}
	}
	if info.Start >= 0 {
		for info.End = len(line); info.End > info.Start; info.End-- {
			if !isSpaceTabOrLineEnd(line[info.End-1]) {
				break
			}
		}
		if fenceChar == '`' {
			for k := info.Start; k < info.End; k++ {
				if line[k] == '`' {
					return 0, 0, NullSpan(), false
				}
			}
		}
	}
	return fenceChar, fenceLength, info, true
}

// closingCodeFence reports whether line[offset:] closes a fence opened with
// startChar repeated startLength times: a run of only startChar, at least
// startLength long, with no info string.
func closingCodeFence(line []byte, offset int, startChar byte, startLength int) bool {
	fenceChar, fenceLength, info, ok := openCodeFence(line, offset)
	return ok && !info.IsValid() && fenceChar == startChar && fenceLength >= startLength
}

// listMarker is the payload returned by parseListMarker.
type listMarker struct {
	delim byte // '-', '+', '*', '.', or ')'
	n     int  // start number for ordered lists
	end   int  // offset (from the scan start, not from line start) just past the marker
}

func (m listMarker) isOrdered() bool {
	return m.delim == '.' || m.delim == ')'
}

// parseListMarker attempts to parse a list marker at line[offset:].
// interruptsParagraph restricts ordered lists to those starting at 1, per
// CommonMark's rule that a list can only interrupt a paragraph if it starts
// with 1.
func parseListMarker(line []byte, offset int, interruptsParagraph bool) (listMarker, bool) {
	rest := line[offset:]
	if len(rest) == 0 {
		return listMarker{}, false
	}
	switch c := rest[0]; {
	case c == '-' || c == '+' || c == '*':
		if !hasTabOrSpacePrefixOrEOL(rest[1:]) {
			return listMarker{}, false
		}
		return listMarker{delim: c, end: 1}, true
	case isASCIIDigit(c):
		n := int(c - '0')
		const maxDigits = 9
		for i := 1; i < maxDigits+1 && i < len(rest); i++ {
			switch d := rest[i]; {
			case isASCIIDigit(d):
				n = n*10 + int(d-'0')
			case d == '.' || d == ')':
				if !hasTabOrSpacePrefixOrEOL(rest[i+1:]) {
					return listMarker{}, false
				}
				if interruptsParagraph && n != 1 {
					return listMarker{}, false
				}
				return listMarker{delim: d, n: n, end: i + 1}, true
			default:
				return listMarker{}, false
			}
		}
		return listMarker{}, false
	default:
		return listMarker{}, false
	}
}

// htmlBlockConditions is the set of HTML block start/end conditions, in
// CommonMark's 1-indexed rule order (index 0 of this slice is rule 1).
// Rules 1-6 can be detected purely from the line text; rule 7 (a generic
// open/closing tag alone on its line) is handled separately by
// htmlBlockStart7 because it additionally depends on whether it would
// interrupt a paragraph.
var htmlBlockConditions = []struct {
	start                  func(line []byte) bool
	end                    func(line []byte) bool
	canInterruptParagraph  bool
}{
	{ // 1: <script>, <pre>, <style>, <textarea>
		start: func(line []byte) bool {
			for _, starter := range htmlBlockStarters1 {
				if hasCaseInsensitiveBytePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTabOrLineEnd(rest[0]) || rest[0] == '>' {
						return true
					}
				}
			}
			return false
		},
		end: func(line []byte) bool {
			for _, ender := range htmlBlockEnders1 {
				if caseInsensitiveContains(line, ender) {
					return true
				}
			}
			return false
		},
		canInterruptParagraph: true,
	},
	{ // 2: <!--
		start:                 func(line []byte) bool { return hasBytePrefix(line, "<!--") },
		end:                   func(line []byte) bool { return containsString(line, "-->") },
		canInterruptParagraph: true,
	},
	{ // 3: <?
		start:                 func(line []byte) bool { return hasBytePrefix(line, "<?") },
		end:                   func(line []byte) bool { return containsString(line, "?>") },
		canInterruptParagraph: true,
	},
	{ // 4: <!LETTER
		start: func(line []byte) bool {
			return hasBytePrefix(line, "<!") && len(line) >= 3 && isASCIILetter(line[2])
		},
		end:                   func(line []byte) bool { return containsString(line, ">") },
		canInterruptParagraph: true,
	},
	{ // 5: <![CDATA[
		start:                 func(line []byte) bool { return hasBytePrefix(line, "<![CDATA[") },
		end:                   func(line []byte) bool { return containsString(line, "]]>") },
		canInterruptParagraph: true,
	},
	{ // 6: a known block-level tag
		start: func(line []byte) bool {
			switch {
			case hasBytePrefix(line, "</"):
				line = line[2:]
			case hasBytePrefix(line, "<"):
				line = line[1:]
			default:
				return false
			}
			for _, starter := range htmlBlockStarters6 {
				if hasCaseInsensitiveBytePrefix(line, starter) {
					rest := line[len(starter):]
					if len(rest) == 0 || isSpaceTabOrLineEnd(rest[0]) || rest[0] == '>' || hasBytePrefix(rest, "/>") {
						return true
					}
				}
			}
			return false
		},
		end:                   isBlankLine,
		canInterruptParagraph: true,
	},
}

// htmlBlockStart reports whether line[offset:] opens an HTML block under
// rules 1-6, returning the 1-indexed rule number.
func htmlBlockStart(line []byte, offset int) (condition int, ok bool) {
	rest := line[offset:]
	if len(rest) == 0 || rest[0] != '<' {
		return 0, false
	}
	for i, cond := range htmlBlockConditions {
		if cond.start(rest) {
			return i + 1, true
		}
	}
	return 0, false
}

// htmlBlockEnd reports whether line matches the end condition for the
// given 1-indexed HTML block rule. Rules 6 and 7 close on a blank line,
// which the block parser checks directly rather than calling this.
func htmlBlockEnd(condition int, line []byte) bool {
	if condition < 1 || condition > len(htmlBlockConditions) {
		return false
	}
	return htmlBlockConditions[condition-1].end(line)
}

// htmlBlockStart7 reports whether line[offset:] is a generic open tag or
// closing tag (rule 7), which may only start an HTML block when it would
// not be lazy continuation text for an open paragraph.
func htmlBlockStart7(line []byte, offset int, interruptsParagraph bool) bool {
	if interruptsParagraph {
		return false
	}
	rest := line[offset:]
	tagEnd, isOpen := scanHTMLTagOnly(rest)
	if tagEnd < 0 {
		return false
	}
	_ = isOpen
	return isBlankLine(rest[tagEnd:])
}

// scanHTMLTagOnly is a narrow scanner for rule 7: it recognizes either a
// generic open tag (optionally self-closing, with simple attribute syntax)
// or a generic closing tag at the start of rest, and reports the offset
// just past the tag (or -1 if no such tag starts there).
func scanHTMLTagOnly(rest []byte) (end int, isOpenTag bool) {
	if len(rest) == 0 || rest[0] != '<' {
		return -1, false
	}
	if hasBytePrefix(rest, "</") {
		i := 2
		nameStart := i
		for i < len(rest) && isTagNameByte(rest[i]) {
			i++
		}
		if i == nameStart {
			return -1, false
		}
		i = skipSpacesAndTabsFrom(rest, i)
		if i >= len(rest) || rest[i] != '>' {
			return -1, false
		}
		return i + 1, false
	}
	i := 1
	nameStart := i
	for i < len(rest) && isTagNameByte(rest[i]) {
		i++
	}
	if i == nameStart {
		return -1, false
	}
	for {
		before := i
		i = skipSpacesAndTabsFrom(rest, i)
		if i == before && i < len(rest) && rest[i] != '>' && rest[i] != '/' {
			return -1, false
		}
		if i >= len(rest) {
			return -1, false
		}
		if rest[i] == '/' {
			i++
			if i >= len(rest) || rest[i] != '>' {
				return -1, false
			}
			return i + 1, true
		}
		if rest[i] == '>' {
			return i + 1, true
		}
		// Attribute name.
		attrStart := i
		for i < len(rest) && isAttributeNameByte(rest[i]) {
			i++
		}
		if i == attrStart {
			return -1, false
		}
		i = skipSpacesAndTabsFrom(rest, i)
		if i < len(rest) && rest[i] == '=' {
			i = skipSpacesAndTabsFrom(rest, i+1)
			if i >= len(rest) {
				return -1, false
			}
			switch rest[i] {
			case '\'':
				i++
				for i < len(rest) && rest[i] != '\'' {
					i++
				}
				if i >= len(rest) {
					return -1, false
				}
				i++
			case '"':
				i++
				for i < len(rest) && rest[i] != '"' {
					i++
				}
				if i >= len(rest) {
					return -1, false
				}
				i++
			default:
				for i < len(rest) && isUnquotedAttributeValueByte(rest[i]) {
					i++
				}
			}
		}
	}
}

func skipSpacesAndTabsFrom(b []byte, i int) int {
	for i < len(b) && isSpaceOrTab(b[i]) {
		i++
	}
	return i
}

func isTagNameByte(b byte) bool {
	return isASCIILetter(b) || isASCIIDigit(b) || b == '-'
}

func isAttributeNameByte(b byte) bool {
	return isASCIILetter(b) || isASCIIDigit(b) || b == '_' || b == ':' || b == '.' || b == '-'
}

func isUnquotedAttributeValueByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '"', '\'', '=', '<', '>', '`':
		return false
	default:
		return true
	}
}

var (
	htmlBlockStarters1 = []string{"<pre", "<script", "<style", "<textarea"}
	htmlBlockEnders1   = []string{"</pre>", "</script>", "</style>", "</textarea>"}

	// htmlBlockStarters6 is the CommonMark rule-6 tag-name list, built from
	// the WHATWG tag atoms rather than a hand-maintained string list.
	htmlBlockStarters6 = []string{
		atom.Address.String(), atom.Article.String(), atom.Aside.String(),
		atom.Base.String(), atom.Basefont.String(), atom.Blockquote.String(),
		atom.Body.String(), atom.Caption.String(), atom.Center.String(),
		atom.Col.String(), atom.Colgroup.String(), atom.Dd.String(),
		atom.Details.String(), atom.Dialog.String(), atom.Dir.String(),
		atom.Div.String(), atom.Dl.String(), atom.Dt.String(),
		atom.Fieldset.String(), atom.Figcaption.String(), atom.Figure.String(),
		atom.Footer.String(), atom.Form.String(), atom.Frame.String(),
		atom.Frameset.String(), atom.H1.String(), atom.H2.String(),
		atom.H3.String(), atom.H4.String(), atom.H5.String(), atom.H6.String(),
		atom.Head.String(), atom.Header.String(), atom.Hr.String(),
		atom.Html.String(), atom.Iframe.String(), atom.Legend.String(),
		atom.Li.String(), atom.Link.String(), atom.Main.String(),
		atom.Menu.String(), atom.Menuitem.String(), atom.Nav.String(),
		atom.Noframes.String(), atom.Ol.String(), atom.Optgroup.String(),
		atom.Option.String(), atom.P.String(), atom.Param.String(),
		atom.Section.String(), atom.Source.String(), atom.Summary.String(),
		atom.Table.String(), atom.Tbody.String(), atom.Td.String(),
		atom.Tfoot.String(), atom.Th.String(), atom.Thead.String(),
		atom.Title.String(), atom.Tr.String(), atom.Track.String(),
		atom.Ul.String(),
	}
)

func hasBytePrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}

func hasCaseInsensitiveBytePrefix(b []byte, prefix string) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if toASCIILower(b[i]) != toASCIILower(prefix[i]) {
			return false
		}
	}
	return true
}

func containsString(b []byte, search string) bool {
	if len(search) == 0 {
		return true
	}
	for i := 0; i+len(search) <= len(b); i++ {
		if string(b[i:i+len(search)]) == search {
			return true
		}
	}
	return false
}

func caseInsensitiveContains(b []byte, search string) bool {
	if len(search) == 0 {
		return true
	}
	for i := 0; i+len(search) <= len(b); i++ {
		match := true
		for j := 0; j < len(search); j++ {
			if toASCIILower(b[i+j]) != toASCIILower(search[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func toASCIILower(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func isASCIILetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isASCIIDigit(b byte) bool {
	return '0' <= b && b <= '9'
}

func isLineEnd(b byte) bool {
	return b == '\n' || b == '\r'
}

func isSpaceOrTab(b byte) bool {
	return b == ' ' || b == '\t'
}

func isSpaceTabOrLineEnd(b byte) bool {
	return isSpaceOrTab(b) || isLineEnd(b)
}

func isBlankLine(line []byte) bool {
	for _, b := range line {
		if !isSpaceTabOrLineEnd(b) {
			return false
		}
	}
	return true
}

func hasTabOrSpacePrefixOrEOL(line []byte) bool {
	return len(line) == 0 || isSpaceTabOrLineEnd(line[0])
}

// isEndEscaped reports whether s ends with an odd number of backslashes,
// i.e. the last character of s is backslash-escaped.
func isEndEscaped(s []byte) bool {
	n := 0
	for ; n < len(s); n++ {
		if s[len(s)-n-1] != '\\' {
			break
		}
	}
	return n%2 == 1
}
