package commonmark

import (
	"testing"
)

func TestNodeAppendChild(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	a := NewNode(ParagraphKind, 1, 1)
	b := NewNode(ParagraphKind, 2, 1)
	root.AppendChild(a)
	root.AppendChild(b)

	if got := root.Children(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("root.Children() = %v; want [a b]", got)
	}
	if a.Parent() != root {
		t.Error("a.Parent() != root")
	}
	if a.NextSibling() != b {
		t.Error("a.NextSibling() != b")
	}
	if b.PrevSibling() != a {
		t.Error("b.PrevSibling() != a")
	}
}

func TestNodeInsertBeforeAfter(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	a := NewNode(ParagraphKind, 1, 1)
	c := NewNode(ParagraphKind, 3, 1)
	root.AppendChild(a)
	root.AppendChild(c)

	b := NewNode(ParagraphKind, 2, 1)
	a.InsertAfter(b)
	if got := root.Children(); len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Fatalf("after InsertAfter, root.Children() = %v; want [a b c]", got)
	}

	z := NewNode(ParagraphKind, 0, 1)
	a.InsertBefore(z)
	if got := root.Children(); len(got) != 4 || got[0] != z || got[1] != a {
		t.Fatalf("after InsertBefore, root.Children() = %v; want [z a b c]", got)
	}
}

func TestNodeDetach(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	a := NewNode(ParagraphKind, 1, 1)
	b := NewNode(ParagraphKind, 2, 1)
	c := NewNode(ParagraphKind, 3, 1)
	root.AppendChild(a)
	root.AppendChild(b)
	root.AppendChild(c)

	b.Detach()
	if got := root.Children(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("after Detach, root.Children() = %v; want [a c]", got)
	}
	if b.Parent() != nil {
		t.Error("b.Parent() != nil after Detach")
	}
	if a.NextSibling() != c {
		t.Error("a.NextSibling() != c after removing b")
	}
}

func TestNodeCanContain(t *testing.T) {
	tests := []struct {
		parent Kind
		child  Kind
		want   bool
	}{
		{DocumentKind, ParagraphKind, true},
		{DocumentKind, ItemKind, false},
		{ListKind, ItemKind, true},
		{ListKind, ParagraphKind, false},
		{ItemKind, ListKind, true},
		{ParagraphKind, TextKind, true},
		{ParagraphKind, ParagraphKind, false},
		{CodeBlockKind, TextKind, false},
	}
	for _, test := range tests {
		n := NewNode(test.parent, 1, 1)
		if got := n.CanContain(test.child); got != test.want {
			t.Errorf("%v.CanContain(%v) = %v; want %v", test.parent, test.child, got, test.want)
		}
	}
}

func TestNodeLastChildIsOpen(t *testing.T) {
	root := NewNode(DocumentKind, 1, 1)
	if root.LastChildIsOpen() {
		t.Error("LastChildIsOpen() on empty node = true; want false")
	}
	a := NewNode(ParagraphKind, 1, 1)
	root.AppendChild(a)
	if !root.LastChildIsOpen() {
		t.Error("LastChildIsOpen() = false; want true for freshly opened child")
	}
	a.open = false
	if root.LastChildIsOpen() {
		t.Error("LastChildIsOpen() = true; want false once child is closed")
	}
}
