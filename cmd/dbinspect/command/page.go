package command

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/joeandaverde/db3image"
)

// PageCommand decodes and prints a single page by number.
type PageCommand struct {
	Log *log.Logger
}

func (c *PageCommand) Help() string {
	helpText := `
Usage: dbinspect page <path> <page-number>

Prints the header and cell count of the given page. Page numbers are
0-based; page 0 is the file's first page.
`
	return strings.TrimSpace(helpText)
}

func (c *PageCommand) Synopsis() string {
	return "Prints a single page's header and cell summary"
}

func (c *PageCommand) Run(args []string) int {
	flags := flag.NewFlagSet("page", flag.ContinueOnError)
	if err := flags.Parse(args); err != nil {
		return 1
	}

	rest := flags.Args()
	if len(rest) != 2 {
		c.Log.Error("page requires a db3 file path and a page number")
		return 1
	}

	pageNo, err := strconv.ParseUint(rest[1], 10, 32)
	if err != nil {
		c.Log.Errorf("invalid page number %q: %s", rest[1], err)
		return 1
	}

	f, err := os.Open(rest[0])
	if err != nil {
		c.Log.Errorf("opening %s: %s", rest[0], err)
		return 1
	}
	defer f.Close()

	reader, err := db3image.Open(f)
	if err != nil {
		c.Log.Errorf("reading header: %s", err)
		return 1
	}

	p, err := reader.GetPage(uint32(pageNo))
	if err != nil {
		c.Log.Errorf("decoding page %d: %s", pageNo, err)
		return 1
	}

	fmt.Printf("page %d: type=%s cells=%d\n", p.Number, p.Header.Type, len(p.Cells))
	return 0
}
