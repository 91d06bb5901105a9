package commonmark

import "testing"

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"foo", "foo"},
		{"Foo", "foo"},
		{"FOO", "foo"},
		{"  foo   bar  ", "foo bar"},
		{"foo\nbar", "foo bar"},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.label); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.label, got, test.want)
		}
	}
}

func TestScanLeadingLinkReferenceDefinition(t *testing.T) {
	tests := []struct {
		name    string
		content string
		label   string
		dest    string
		title   string
		present bool
		rest    string
		ok      bool
	}{
		{
			name:    "bare",
			content: "[foo]: /url\n",
			label:   "foo", dest: "/url", rest: "", ok: true,
		},
		{
			name:    "angle bracketed dest",
			content: "[foo]: <my url>\n",
			label:   "foo", dest: "my url", rest: "", ok: true,
		},
		{
			name:    "with title",
			content: "[foo]: /url \"a title\"\n",
			label: "foo", dest: "/url", title: "a title", present: true, rest: "", ok: true,
		},
		{
			name:    "title on next line",
			content: "[foo]: /url\n\"a title\"\nrest\n",
			label: "foo", dest: "/url", title: "a title", present: true, rest: "rest\n", ok: true,
		},
		{
			name:    "followed by more content",
			content: "[foo]: /url\nmore text\n",
			label:   "foo", dest: "/url", rest: "more text\n", ok: true,
		},
		{
			name:    "not a definition",
			content: "just a paragraph\n",
			ok: false,
		},
		{
			name:    "empty label",
			content: "[]: /url\n",
			ok: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			def, rest, ok := scanLeadingLinkReferenceDefinition([]byte(test.content))
			if ok != test.ok {
				t.Fatalf("ok = %v; want %v", ok, test.ok)
			}
			if !ok {
				return
			}
			if def.label != test.label || def.dest != test.dest || def.title != test.title || def.titlePresent != test.present {
				t.Errorf("def = %+v; want label=%q dest=%q title=%q present=%v",
					def, test.label, test.dest, test.title, test.present)
			}
			if string(rest) != test.rest {
				t.Errorf("rest = %q; want %q", rest, test.rest)
			}
		})
	}
}

func TestFinalizeParagraphStripsDefinitions(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	para := NewNode(ParagraphKind, 1, 1)
	para.content = []byte("[foo]: /url\nactual text")
	root.AppendChild(para)

	p := NewBlockParser(DefaultOptions)
	p.finalizeParagraph(para)

	if root.ChildCount() != 2 {
		t.Fatalf("root.ChildCount() = %d; want 2 (definition + paragraph)", root.ChildCount())
	}
	def := root.FirstChild()
	if def.Kind() != LinkReferenceDefinitionKind || def.LinkLabel() != "foo" {
		t.Fatalf("first child = kind %v label %q; want LinkReferenceDefinition \"foo\"", def.Kind(), def.LinkLabel())
	}
	remaining := def.NextSibling()
	if string(remaining.content) != "actual text" {
		t.Fatalf("remaining paragraph content = %q; want %q", remaining.content, "actual text")
	}
	if got, ok := p.refMap["foo"]; !ok || got.Destination != "/url" {
		t.Fatalf("refMap[\"foo\"] = %+v, %v; want destination /url", got, ok)
	}
}

func TestFinalizeParagraphAllDefinitionsDetaches(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	para := NewNode(ParagraphKind, 1, 1)
	para.content = []byte("[foo]: /url\n")
	root.AppendChild(para)

	p := NewBlockParser(DefaultOptions)
	p.finalizeParagraph(para)

	if root.ChildCount() != 1 {
		t.Fatalf("root.ChildCount() = %d; want 1 (definition only)", root.ChildCount())
	}
	if root.FirstChild().Kind() != LinkReferenceDefinitionKind {
		t.Fatalf("remaining child kind = %v; want LinkReferenceDefinition", root.FirstChild().Kind())
	}
}
