package htmlrender

import (
	"bytes"
	"testing"

	"github.com/mdtree/commonmark"
)

func renderString(t *testing.T, source string) string {
	t.Helper()
	root, refMap := commonmark.Parse([]byte(source), commonmark.DefaultOptions)
	var buf bytes.Buffer
	if err := Render(&buf, root, refMap); err != nil {
		t.Fatalf("Render(%q) error: %v", source, err)
	}
	return buf.String()
}

func TestRenderParagraph(t *testing.T) {
	got := renderString(t, "hello world\n")
	want := "<p>hello world</p>"
	if got != want {
		t.Errorf("render(%q) = %q; want %q", "hello world\n", got, want)
	}
}

func TestRenderHeading(t *testing.T) {
	got := renderString(t, "## Title\n")
	want := "<h2>Title</h2>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderEmphasisAndStrong(t *testing.T) {
	got := renderString(t, "*a* **b**\n")
	want := "<p><em>a</em> <strong>b</strong></p>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderTightList(t *testing.T) {
	got := renderString(t, "- a\n- b\n")
	want := "<ul><li>a</li><li>b</li></ul>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderLooseList(t *testing.T) {
	got := renderString(t, "- a\n\n- b\n")
	want := "<ul><li><p>a</p></li><li><p>b</p></li></ul>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderOrderedListWithStart(t *testing.T) {
	got := renderString(t, "3. a\n4. b\n")
	want := `<ol start="3"><li>a</li><li>b</li></ol>`
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderCodeBlockWithInfo(t *testing.T) {
	got := renderString(t, "```go\nfmt.Println(1)\n```\n")
	want := "<pre><code class=\"language-go\">fmt.Println(1)\n</code></pre>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderBlockQuote(t *testing.T) {
	got := renderString(t, "> foo\n")
	want := "<blockquote><p>foo</p></blockquote>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderThematicBreak(t *testing.T) {
	got := renderString(t, "foo\n\n---\n")
	want := "<p>foo</p><hr>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderEscapesText(t *testing.T) {
	got := renderString(t, "a < b & c > d\n")
	want := "<p>a &lt; b &amp; c &gt; d</p>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestRenderDefaultFiltersScript(t *testing.T) {
	got := renderString(t, "<script>alert(1)</script>\n")
	if bytes.Contains([]byte(got), []byte("<script>")) {
		t.Errorf("render = %q; should not contain an unescaped <script> tag", got)
	}
}

func TestRenderUnsafeAllowsScript(t *testing.T) {
	root, refMap := commonmark.Parse([]byte("<script>alert(1)</script>\n"), commonmark.DefaultOptions)
	r := &Renderer{ReferenceMap: refMap}
	var buf bytes.Buffer
	if err := r.Render(&buf, root); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("<script>alert(1)</script>")) {
		t.Errorf("render = %q; want raw script tag to pass through with no FilterTag set", buf.String())
	}
}

func TestRenderIgnoreRaw(t *testing.T) {
	root, refMap := commonmark.Parse([]byte("<div>foo</div>\n"), commonmark.DefaultOptions)
	r := &Renderer{ReferenceMap: refMap, IgnoreRaw: true}
	var buf bytes.Buffer
	if err := r.Render(&buf, root); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("render with IgnoreRaw = %q; want empty", buf.String())
	}
}

func TestRenderSoftBreakBehavior(t *testing.T) {
	root, refMap := commonmark.Parse([]byte("foo\nbar\n"), commonmark.DefaultOptions)

	r := &Renderer{ReferenceMap: refMap, SoftBreakBehavior: SoftBreakSpace}
	var buf bytes.Buffer
	r.Render(&buf, root)
	if want := "<p>foo bar</p>"; buf.String() != want {
		t.Errorf("SoftBreakSpace render = %q; want %q", buf.String(), want)
	}

	r2 := &Renderer{ReferenceMap: refMap, SoftBreakBehavior: SoftBreakHarden}
	var buf2 bytes.Buffer
	r2.Render(&buf2, root)
	if want := "<p>foo<br>\nbar</p>"; buf2.String() != want {
		t.Errorf("SoftBreakHarden render = %q; want %q", buf2.String(), want)
	}
}

func TestRenderHardLineBreak(t *testing.T) {
	got := renderString(t, "foo  \nbar\n")
	want := "<p>foo<br>\nbar</p>"
	if got != want {
		t.Errorf("render = %q; want %q", got, want)
	}
}

func TestDefaultFilterTag(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"script", true},
		{"style", true},
		{"title", true},
		{"textarea", true},
		{"div", false},
		{"span", false},
	}
	for _, test := range tests {
		if got := DefaultFilterTag([]byte(test.tag)); got != test.want {
			t.Errorf("DefaultFilterTag(%q) = %v; want %v", test.tag, got, test.want)
		}
	}
}
