package command

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/joeandaverde/db3image"
)

// SchemaCommand opens a db3 file and prints its sqlite_master entries.
type SchemaCommand struct {
	Log *log.Logger
}

func (c *SchemaCommand) Help() string {
	helpText := `
Usage: dbinspect schema [options] <path>

Options:

	-config=""	yaml config file (default_format, verbose)
	-format=""	override the configured output format (table, yaml)
`
	return strings.TrimSpace(helpText)
}

func (c *SchemaCommand) Synopsis() string {
	return "Prints the sqlite_master entries of a db3 file"
}

func (c *SchemaCommand) Run(args []string) int {
	var configPath, format string

	flags := flag.NewFlagSet("schema", flag.ContinueOnError)
	flags.StringVar(&configPath, "config", "", "config file")
	flags.StringVar(&format, "format", "", "output format")
	if err := flags.Parse(args); err != nil {
		return 1
	}

	cfg := defaultConfig()
	if configPath != "" {
		loaded, err := loadConfig(configPath)
		if err != nil {
			c.Log.Errorf("loading config: %s", err)
			return 1
		}
		cfg = loaded
	}
	if cfg.Verbose {
		c.Log.SetLevel(log.DebugLevel)
	}
	if format == "" {
		format = cfg.DefaultFormat
	}

	rest := flags.Args()
	if len(rest) != 1 {
		c.Log.Error("schema requires exactly one db3 file path")
		return 1
	}
	path := rest[0]

	f, err := os.Open(path)
	if err != nil {
		c.Log.Errorf("opening %s: %s", path, err)
		return 1
	}
	defer f.Close()

	reader, err := db3image.Open(f)
	if err != nil {
		c.Log.Errorf("reading header: %s", err)
		return 1
	}
	c.Log.Debugf("page size %d, %d pages, encoding %s",
		reader.FileHeader().PageSize.RealSize(), reader.FileHeader().SizeInPages, reader.FileHeader().TextEncoding)

	entries, err := reader.GetSchema()
	if err != nil {
		c.Log.Errorf("decoding schema: %s", err)
		return 1
	}

	switch format {
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			c.Log.Errorf("marshaling schema: %s", err)
			return 1
		}
		fmt.Print(string(out))
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tNAME\tTBL_NAME\tROOTPAGE")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.Type, e.Name, e.TblName, e.RootPage)
		}
		w.Flush()
	}

	return 0
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := defaultConfig()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
