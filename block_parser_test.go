package commonmark

import "testing"

func TestBlockParserFeedInChunks(t *testing.T) {
	p := NewBlockParser(DefaultOptions)
	p.Feed([]byte("hel"), false)
	p.Feed([]byte("lo wor"), false)
	p.Feed([]byte("ld\n"), false)
	root := p.Finish()

	para := root.FirstChild()
	if para == nil || para.Kind() != ParagraphKind {
		t.Fatalf("first child kind = %v; want Paragraph", para.Kind())
	}
	text := para.FirstChild()
	if string(text.Text()) != "hello world" {
		t.Fatalf("text = %q; want %q", text.Text(), "hello world")
	}
}

func TestBlockParserFeedSplitAcrossLineEnd(t *testing.T) {
	p := NewBlockParser(DefaultOptions)
	p.Feed([]byte("foo\r"), false)
	p.Feed([]byte("\nbar\n"), false)
	root := p.Finish()

	text := root.FirstChild().FirstChild()
	brk := text.NextSibling()
	if string(text.Text()) != "foo" || brk.Kind() != SoftBreakKind || string(brk.NextSibling().Text()) != "bar" {
		t.Fatalf("inlines = %q, %v, %q; want \"foo\", SoftBreak, \"bar\"", text.Text(), brk.Kind(), brk.NextSibling().Text())
	}
}

func TestBlockParserFeedNoTrailingNewline(t *testing.T) {
	p := NewBlockParser(DefaultOptions)
	p.Feed([]byte("no newline at all"), true)
	root := p.Finish()

	text := root.FirstChild().FirstChild()
	if string(text.Text()) != "no newline at all" {
		t.Fatalf("text = %q; want %q", text.Text(), "no newline at all")
	}
}

func TestBlockParserReferencesPopulatedByFinish(t *testing.T) {
	p := NewBlockParser(DefaultOptions)
	p.Feed([]byte("[foo]: /url\n"), true)
	p.Finish()

	refs := p.References()
	if def, ok := refs["foo"]; !ok || def.Destination != "/url" {
		t.Fatalf("refs[\"foo\"] = %+v, %v; want destination /url", def, ok)
	}
}

func TestBlockParserLazyContinuation(t *testing.T) {
	root, _ := Parse([]byte("> foo\nbar\n"), DefaultOptions)
	bq := root.FirstChild()
	if bq.Kind() != BlockQuoteKind {
		t.Fatalf("first child kind = %v; want BlockQuote", bq.Kind())
	}
	p := bq.FirstChild()
	text := p.FirstChild()
	brk := text.NextSibling()
	if string(text.Text()) != "foo" || brk.Kind() != SoftBreakKind || string(brk.NextSibling().Text()) != "bar" {
		t.Fatalf("lazily-continued paragraph inlines = %q, %v, %q; want \"foo\", SoftBreak, \"bar\"", text.Text(), brk.Kind(), brk.NextSibling().Text())
	}
}

func TestBlockParserListItemContainment(t *testing.T) {
	root, _ := Parse([]byte("- foo\n  continued\n"), DefaultOptions)
	list := root.FirstChild()
	item := list.FirstChild()
	para := item.FirstChild()
	text := para.FirstChild()
	brk := text.NextSibling()
	if string(text.Text()) != "foo" || brk.Kind() != SoftBreakKind || string(brk.NextSibling().Text()) != "continued" {
		t.Fatalf("inlines = %q, %v, %q; want \"foo\", SoftBreak, \"continued\"", text.Text(), brk.Kind(), brk.NextSibling().Text())
	}
	if item.StartLine() > para.StartLine() || para.EndLine() > item.EndLine() {
		t.Errorf("child range [%d,%d] not within parent range [%d,%d]",
			para.StartLine(), para.EndLine(), item.StartLine(), item.EndLine())
	}
}

func TestBlockParserRightmostOpenPath(t *testing.T) {
	p := NewBlockParser(DefaultOptions)
	p.Feed([]byte("> - foo\n"), false)
	// The rightmost open chain should be root -> BlockQuote -> List -> Item -> Paragraph.
	n := p.current
	var kinds []Kind
	for n != nil {
		kinds = append(kinds, n.Kind())
		n = n.Parent()
	}
	want := []Kind{ParagraphKind, ItemKind, ListKind, BlockQuoteKind, DocumentKind}
	if len(kinds) != len(want) {
		t.Fatalf("open chain = %v; want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("open chain[%d] = %v; want %v", i, kinds[i], want[i])
		}
	}
	p.Finish()
}
