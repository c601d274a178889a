package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/adapter/source"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui"
	"github.com/mmcdole/reel/internal/tui/styles"
)

const loginTimeout = 15 * time.Second

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: reel %s\n", commands[name].usage)
		fs.PrintDefaults()
	}
	return fs
}

func runLogin(ctx context.Context, env *appEnv, args []string) error {
	fs := newFlagSet("login")
	serverURL := fs.String("url", "", "panel base URL")
	username := fs.String("username", "", "panel username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	if *serverURL == "" {
		v, err := prompt(reader, "Server URL (e.g., http://panel.example:8080): ")
		if err != nil {
			return err
		}
		*serverURL = v
	}
	if *username == "" {
		v, err := prompt(reader, "Username: ")
		if err != nil {
			return err
		}
		*username = v
	}
	password, err := promptPassword(reader, "Password: ")
	if err != nil {
		return err
	}

	cfg := *env.cfg
	cfg.Server = adapter.ServerConfig{
		URL:      adapter.NormalizeServerURL(*serverURL),
		Username: strings.TrimSpace(*username),
		Password: password,
	}
	if !cfg.IsConfigured() {
		return errors.New("server URL, username and password are all required")
	}

	client, err := source.NewClientFromConfig(&cfg, env.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	acct, err := client.Account(ctx)
	if err != nil {
		return fmt.Errorf("could not verify credentials: %w", err)
	}

	if err := env.configs.Save(&cfg); err != nil {
		return err
	}
	*env.cfg = cfg

	status := string(acct.UserInfo.Status)
	if status == "" {
		status = "Active"
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Logged in as "+cfg.Server.Username) + styles.DimStyle.Render(" ("+status+")"))
	fmt.Println("Run 'reel sync' to download the catalog.")
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(input), nil
}

func promptPassword(reader *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(reader, label)
	}
	fmt.Print(label)
	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func runLogout(ctx context.Context, env *appEnv, args []string) error {
	fs := newFlagSet("logout")
	purge := fs.Bool("purge", false, "also delete the cached catalog")
	if err := fs.Parse(args); err != nil {
		return err
	}

	serverURL := env.cfg.Server.URL
	if err := env.configs.ClearServer(); err != nil {
		return err
	}
	// Only this server's catalog goes; favourites and history are kept
	if *purge && serverURL != "" {
		if err := env.Close(); err != nil {
			env.logger.Warn("closing storage before purge", "error", err)
		}
		env.closers = nil
		if err := adapter.ClearCache(store.CatalogDir(env.cfg.CachePath(), serverURL)); err != nil {
			return err
		}
	}
	fmt.Println("Logged out.")
	return nil
}

func runSync(ctx context.Context, env *appEnv, args []string) error {
	if err := newFlagSet("sync").Parse(args); err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}
	cmds, err := env.commands()
	if err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		err = tui.RunSync(ctx, cmds, os.Stdout)
	} else {
		cmds.SetObserver(tui.PlainObserver(os.Stdout))
		err = cmds.Sync(ctx)
	}
	if err != nil {
		if msg := env.state.SyncError(); msg != "" {
			return fmt.Errorf("%s (%w)", msg, err)
		}
		return err
	}

	snap := domain.Snapshot{Categories: env.state.Categories(), Rows: env.state.Rows(), LastSync: env.state.LastSync()}
	fmt.Printf("Synced %d categories, %d movies.\n", len(snap.Categories), snap.MovieCount())
	return nil
}

func runStatus(ctx context.Context, env *appEnv, args []string) error {
	if err := newFlagSet("status").Parse(args); err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	snap := domain.Snapshot{Categories: env.state.Categories(), Rows: env.state.Rows(), LastSync: env.state.LastSync()}
	fmt.Print(tui.RenderStatus(env.cfg.Server.URL, snap, len(env.prefs.FavouriteIDs()), len(env.prefs.RecentIDs())))
	return nil
}

func runRecommend(ctx context.Context, env *appEnv, args []string) error {
	fs := newFlagSet("recommend")
	limit := fs.Int("limit", env.cfg.Recommend.Limit, "number of movies to show (0 for all)")
	showScores := fs.Bool("scores", false, "show scores")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	scored := env.scorer().Score(env.state.Rows())
	if *limit > 0 && len(scored) > *limit {
		scored = scored[:*limit]
	}

	rows := make([]tui.MovieRow, len(scored))
	for i, s := range scored {
		rows[i] = tui.MovieRow{
			Movie:     s.Movie,
			Category:  s.Category,
			Favourite: env.prefs.Favourites.IsFavourite(s.Movie.StreamID),
		}
		if *showScores {
			score := s.Score
			rows[i].Score = &score
		}
	}
	fmt.Print(tui.RenderMovies(rows))
	return nil
}

func runSearch(ctx context.Context, env *appEnv, args []string) error {
	fs := newFlagSet("search")
	limit := fs.Int("limit", 25, "maximum results (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fs.Usage()
		return errors.New("missing search query")
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	results := env.search().Movies(query, env.state.Rows(), *limit)
	rows := make([]tui.MovieRow, len(results))
	for i, r := range results {
		rows[i] = tui.MovieRow{
			Movie:     r.Movie,
			Category:  r.Category,
			Favourite: env.prefs.Favourites.IsFavourite(r.Movie.StreamID),
			Matched:   r.MatchedIndexes,
		}
	}
	fmt.Print(tui.RenderMovies(rows))
	return nil
}

func runCategories(ctx context.Context, env *appEnv, args []string) error {
	fs := newFlagSet("categories")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	counts, err := env.queries.CategoryCounts(ctx)
	if err != nil {
		return err
	}
	cats := env.search().FilterCategories(strings.Join(fs.Args(), " "), env.state.Categories())
	fmt.Print(tui.RenderCategories(cats, counts))
	return nil
}

func runFav(ctx context.Context, env *appEnv, args []string) error {
	id, err := parseMovieID("fav", args)
	if err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	movie, _, err := env.queries.Movie(id)
	if err != nil {
		return err
	}
	now, err := env.prefs.Favourites.Toggle(id)
	if err != nil {
		return fmt.Errorf("failed to save favourites: %w", err)
	}

	if now {
		fmt.Printf("%s Added %s to favourites.\n", styles.FavouriteStar, movie.Name)
	} else {
		fmt.Printf("Removed %s from favourites.\n", movie.Name)
	}
	return nil
}

func runFavs(ctx context.Context, env *appEnv, args []string) error {
	if err := newFlagSet("favs").Parse(args); err != nil {
		return err
	}
	return listByIDs(ctx, env, env.prefs.FavouriteIDs())
}

func runRecent(ctx context.Context, env *appEnv, args []string) error {
	if err := newFlagSet("recent").Parse(args); err != nil {
		return err
	}
	return listByIDs(ctx, env, env.prefs.RecentIDs())
}

// listByIDs renders the cached movies for ids in order, noting any no longer in the catalog
func listByIDs(ctx context.Context, env *appEnv, ids []int64) error {
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	rows := make([]tui.MovieRow, 0, len(ids))
	missing := 0
	for _, id := range ids {
		movie, cat, ok := env.state.FindMovie(id)
		if !ok {
			missing++
			continue
		}
		rows = append(rows, tui.MovieRow{
			Movie:     movie,
			Category:  cat,
			Favourite: env.prefs.Favourites.IsFavourite(id),
		})
	}

	fmt.Print(tui.RenderMovies(rows))
	if missing > 0 {
		fmt.Println(styles.DimStyle.Render(fmt.Sprintf("%d no longer in the catalog.", missing)))
	}
	return nil
}

func runPlay(ctx context.Context, env *appEnv, args []string) error {
	id, err := parseMovieID("play", args)
	if err != nil {
		return err
	}
	if err := env.openCatalog(ctx); err != nil {
		return err
	}

	movie, _, err := env.queries.Movie(id)
	if err != nil {
		return err
	}
	client, err := env.client()
	if err != nil {
		return err
	}

	if err := env.launcher().Launch(client.StreamURL(movie)); err != nil {
		return fmt.Errorf("failed to launch player: %w", err)
	}
	if err := env.prefs.Recent.Add(id); err != nil {
		env.logger.Warn("failed to record view", "id", id, "error", err)
	}

	fmt.Printf("Playing %s\n", movie.Name)
	return nil
}

func parseMovieID(name string, args []string) (int64, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return 0, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 0, errors.New("expected exactly one movie ID")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie ID %q", fs.Arg(0))
	}
	return id, nil
}
