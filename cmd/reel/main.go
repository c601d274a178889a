package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// command is one reel subcommand
type command struct {
	usage string
	help  string
	run   func(ctx context.Context, env *appEnv, args []string) error
}

// commands is filled in init; the run funcs refer back to it for usage text
var commands map[string]command

func init() {
	commands = map[string]command{
		"login":      {"login [-url URL] [-username NAME]", "save and verify panel credentials", runLogin},
		"logout":     {"logout [-purge]", "forget panel credentials (-purge also deletes its cached catalog)", runLogout},
		"sync":       {"sync", "refresh the local catalog from the panel", runSync},
		"status":     {"status", "show the local catalog summary", runStatus},
		"recommend":  {"recommend [-limit N] [-scores]", "list movies ranked for you", runRecommend},
		"search":     {"search [-limit N] QUERY", "fuzzy-search cached movie titles", runSearch},
		"categories": {"categories [FILTER]", "list cached categories", runCategories},
		"fav":        {"fav ID", "toggle a movie as favourite", runFav},
		"favs":       {"favs", "list favourite movies", runFavs},
		"recent":     {"recent", "list recently viewed movies", runRecent},
		"play":       {"play ID", "play a movie in the external player", runPlay},
	}
}

func main() {
	var showVersion bool
	var configDir string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configDir, "config", "", "config directory (default ~/.config/reel)")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, configDir, cmd, args[1:]); err != nil {
		fmt.Fprint(os.Stderr, tui.RenderError(err))
		if errors.Is(err, domain.ErrNotConfigured) {
			fmt.Fprintln(os.Stderr, "Run 'reel login' first.")
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir string, cmd command, args []string) error {
	env, err := newAppEnv(configDir)
	if err != nil {
		return err
	}
	defer env.Close()

	env.logger.Info("starting reel", "version", Version, "command", cmd.usage)
	return cmd.run(ctx, env, args)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: reel [-v] [-config DIR] <command> [args]\n\nCommands:\n")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(out, "  %-36s %s\n", c.usage, c.help)
	}
	fmt.Fprintln(out, strings.TrimSpace(`
Global flags:
  -config DIR   config directory
  -v            print version`))
}
