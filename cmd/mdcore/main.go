// Command mdcore reads Markdown from stdin and writes rendered HTML to
// stdout.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mdtree/commonmark"
	"github.com/mdtree/commonmark/htmlrender"
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Args[1:]))
}

func run(stdin io.Reader, stdout io.Writer, args []string) int {
	fs := flag.NewFlagSet("mdcore", flag.ContinueOnError)
	unsafe := fs.Bool("unsafe", false, "disable the default raw-HTML/script tag filtering")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	source, err := io.ReadAll(stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdcore: read stdin: %v\n", err)
		return 1
	}

	root, refMap := commonmark.Parse(source, commonmark.DefaultOptions)

	r := &htmlrender.Renderer{ReferenceMap: refMap}
	if !*unsafe {
		r.FilterTag = htmlrender.DefaultFilterTag
	}
	if err := r.Render(stdout, root); err != nil {
		fmt.Fprintf(os.Stderr, "mdcore: %v\n", err)
		return 1
	}
	return 0
}
