// ndstool inspects Nintendo DS cartridge images: it prints the header,
// lists and extracts the file system, dumps the decoded tables and mounts
// the files over FUSE.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/pflag"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cart"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/cli"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/config"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/romio"
)

type command struct {
	summary string
	usage   string
	run     func(e *env, args []string) error
	flags   func(fs *pflag.FlagSet, cfg *config.Config)
}

var commands = map[string]command{
	"info":    infoCommand,
	"tree":    treeCommand,
	"dump":    dumpCommand,
	"extract": extractCommand,
	"mount":   mountCommand,
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage()
		return nil
	}
	name := args[0]
	cmd, ok := commands[name]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown command %q", name)
	}

	flagSet := pflag.NewFlagSet("ndstool "+name, pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "config file (default: $"+config.EnvVar+")")
	logLevel := flagSet.String("log-level", "", "debug, info, warn or error")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ndstool %s %s\n\n%s\n\nFlags:\n%s", name, cmd.usage, cmd.summary, flagSet.FlagUsages())
	}

	// Flags are declared against the defaults, then re-applied over the
	// loaded file so that only flags given on the command line win.
	cfg := config.Default()
	if cmd.flags != nil {
		cmd.flags(flagSet, cfg)
	}
	if err := flagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	loaded, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	applyFlags(flagSet, loaded, cmd)
	if *logLevel != "" {
		loaded.LogLevel = *logLevel
	}
	level, err := loaded.Level()
	if err != nil {
		return err
	}

	e := &env{cfg: loaded, logger: cli.NewCommandLogger(level).With("command", name)}
	return cmd.run(e, flagSet.Args())
}

// applyFlags copies every flag set on the command line into cfg. The
// values are captured before the command's flags are bound to cfg, since
// binding resets each destination to its default.
func applyFlags(flagSet *pflag.FlagSet, cfg *config.Config, cmd command) {
	if cmd.flags == nil {
		return
	}
	given := make(map[string]string)
	flagSet.Visit(func(f *pflag.Flag) {
		given[f.Name] = f.Value.String()
	})

	bound := pflag.NewFlagSet("", pflag.ContinueOnError)
	cmd.flags(bound, cfg)
	for name, value := range given {
		if bound.Lookup(name) != nil {
			_ = bound.Set(name, value)
		}
	}
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(os.Stderr, "Usage: ndstool <command> [flags] <rom>\n\nCommands:\n")
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(os.Stderr, "\nImages may be raw, zstd or LZ4 compressed. Run 'ndstool <command> --help' for flags.\n")
}

// env is what every command runs with.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
}

// romImage is a loaded and decoded cartridge image.
type romImage struct {
	rom    []byte
	header *cart.Header
}

func (e *env) load(path string) (*romImage, error) {
	rom, err := romio.Load(path, e.logger)
	if err != nil {
		return nil, err
	}
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	e.logger.Debug("header parsed", "title", h.Title().String(), "game_code", h.GameCode().String())
	return &romImage{rom: rom, header: h}, nil
}
