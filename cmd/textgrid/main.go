// Command textgrid validates, converts, inspects, packs and archives Praat
// TextGrid files.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/arloliu/textgrid/internal/config"
	"github.com/arloliu/textgrid/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Config    string `name:"config" short:"c" help:"YAML or TOML file with command defaults" type:"existingfile"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error (overrides config)"`
	LogFormat string `name:"log-format" help:"Log format: text, json (overrides config)"`
	DB        string `name:"db" help:"SQLite archive path for store commands (overrides config)"`

	Validate   ValidateCmd   `cmd:"" help:"Check files against every TextGrid invariant"`
	Convert    ConvertCmd    `cmd:"" help:"Convert between long text, short text, binary and packed"`
	Info       InfoCmd       `cmd:"" help:"Show bounds, tiers and digests of a file"`
	Pack       PackCmd       `cmd:"" help:"Write a compressed, checksummed pack"`
	RenameTier RenameTierCmd `cmd:"" name:"rename-tier" help:"Rename a tier"`
	MergeTiers MergeTiersCmd `cmd:"" name:"merge-tiers" help:"Merge two interval tiers into a new tier"`
	Store      StoreGroup    `cmd:"" help:"SQLite archive operations"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// env is bound into every command's Run method.
type env struct {
	out    io.Writer
	cfg    config.Config
	logger *slog.Logger
}

// run parses args, loads the config and runs the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("textgrid"),
		kong.Description("Praat TextGrid tools"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		return err
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
	if cli.DB != "" {
		cfg.Store = cli.DB
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logFormat, err := logging.ParseFormat(cfg.Log.Format)
	if err != nil {
		return err
	}

	e := &env{out: stdout, cfg: cfg, logger: logging.New(stderr, level, logFormat)}
	e.logger.Debug("command start", "command", kctx.Command(), "config", cli.Config)

	return kctx.Run(e)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "textgrid:", err)
		os.Exit(1)
	}
}
