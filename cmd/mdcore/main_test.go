package main

import (
	"strings"
	"testing"
)

func TestRunBasic(t *testing.T) {
	var out strings.Builder
	code := run(strings.NewReader("hello **world**\n"), &out, nil)
	if code != 0 {
		t.Fatalf("run() = %d; want 0", code)
	}
	if want := "<p>hello <strong>world</strong></p>"; out.String() != want {
		t.Errorf("run() output = %q; want %q", out.String(), want)
	}
}

func TestRunFiltersScriptByDefault(t *testing.T) {
	var out strings.Builder
	code := run(strings.NewReader("<script>alert(1)</script>\n"), &out, nil)
	if code != 0 {
		t.Fatalf("run() = %d; want 0", code)
	}
	if strings.Contains(out.String(), "<script>") {
		t.Errorf("run() output = %q; should filter the script tag by default", out.String())
	}
}

func TestRunUnsafeAllowsScript(t *testing.T) {
	var out strings.Builder
	code := run(strings.NewReader("<script>alert(1)</script>\n"), &out, []string{"-unsafe"})
	if code != 0 {
		t.Fatalf("run() = %d; want 0", code)
	}
	if !strings.Contains(out.String(), "<script>alert(1)</script>") {
		t.Errorf("run() output = %q; want the raw script tag under -unsafe", out.String())
	}
}

func TestRunBadFlag(t *testing.T) {
	var out strings.Builder
	code := run(strings.NewReader(""), &out, []string{"-bogus"})
	if code != 2 {
		t.Fatalf("run() = %d; want 2", code)
	}
}
