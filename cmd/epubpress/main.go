// Command epubpress recompresses EPUB books. "serve" runs the HTTP API and
// "compress" processes local files.
package main

import (
	"fmt"
	"os"
	"strings"
)

const usage = `usage:
  epubpress [serve] [-config file]
  epubpress compress [-config file] [-level low|medium|high] [-o dir] [-report yaml|json] book.epub...`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "epubpress:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "serve":
		return serve(args)
	case "compress":
		return compress(args)
	case "help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}
