package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/voyagen/bretontv/internal/cache"
	"github.com/voyagen/bretontv/internal/config"
	"github.com/voyagen/bretontv/internal/loader"
	"github.com/voyagen/bretontv/internal/logging"
	"github.com/voyagen/bretontv/internal/models"
	"github.com/voyagen/bretontv/internal/query"
	"github.com/voyagen/bretontv/internal/render"
	"golang.org/x/term"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	country       string
	group         string
	search        string
	limit         int
	format        string
	listGroups    bool
	listCountries bool
	configPath    string
	serve         bool
	sync          bool
	paths         []string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "bretontv: %v\n", err)
		return exitUsage
	}

	var cfg *config.Config
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	if opts.format == "" {
		opts.format = cfg.Format
	}
	logging.Setup(logging.ParseLevel(cfg.LogLevel), cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it remote playlists are fetched every time
	// and sync runs unlocked.
	var rds *cache.Redis
	if cfg.RedisURL != "" {
		rds, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logging.Warn("redis disabled: %v", err)
		} else {
			defer rds.Close()
		}
	}

	l := &loader.Loader{Workers: cfg.Workers, UserAgent: cfg.UserAgent, Timeout: cfg.Timeout}
	if rds != nil {
		l.Cache = cache.NewPlaylistCache(rds, cfg.CacheTTL)
	}

	switch {
	case opts.sync:
		err = runSync(ctx, cfg, l, rds, opts.paths)
	case opts.serve:
		err = runServe(ctx, cfg, l, rds, opts)
	default:
		err = runQuery(ctx, l, opts, stdout)
	}
	if err != nil {
		return report(stderr, err)
	}
	return exitOK
}

// report prints err and maps it to an exit code.
func report(stderr io.Writer, err error) int {
	var nf *loader.NotFoundError
	switch {
	case errors.As(err, &nf):
		fmt.Fprintf(stderr, "bretontv: unable to locate %s\n", nf.Path)
		return exitUsage
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "bretontv: %v\n", err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "bretontv: %v\n", err)
		return exitError
	}
}

func runQuery(ctx context.Context, l *loader.Loader, opts *options, stdout io.Writer) error {
	if len(opts.paths) == 0 {
		return fmt.Errorf("%w: at least one playlist path is required", errUsage)
	}
	channels, err := l.Load(ctx, opts.paths)
	if err != nil {
		return err
	}
	channels = query.Sort(query.Filter(channels, query.Criteria{
		Country: opts.country,
		Group:   opts.group,
		Keyword: opts.search,
	}))

	switch {
	case opts.listGroups:
		return render.Lines(stdout, query.DistinctGroups(channels))
	case opts.listCountries:
		return render.Lines(stdout, query.DistinctCountries(channels))
	}

	channels = query.Limit(channels, opts.limit)
	if opts.format == config.FormatJSON {
		return render.JSON(stdout, channels)
	}
	return render.Table(stdout, channels, urlWidth(stdout, channels))
}

// urlWidth fits the URL column to the terminal when stdout is one.
func urlWidth(stdout io.Writer, channels []models.Channel) int {
	f, ok := stdout.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return render.DefaultURLWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return render.DefaultURLWidth
	}
	return render.URLBudget(channels, width)
}

func connectRedis(ctx context.Context, url string) (*cache.Redis, error) {
	rds, err := cache.New(url)
	if err != nil {
		return nil, err
	}
	if err := rds.Ping(ctx); err != nil {
		rds.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logging.Info("redis connected (caching enabled)")
	return rds, nil
}

// parseArgs parses flags and positional paths; flags may follow paths.
func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("bretontv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Explore and filter BretonTV M3U playlists.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "usage: bretontv [flags] PATH...")
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.country, "country", "", "Filter channels by ISO country code (case insensitive)")
	fs.StringVar(&opts.group, "group", "", "Filter channels by their group-title metadata")
	fs.StringVar(&opts.search, "search", "", "Return only channels matching the given keyword")
	fs.IntVar(&opts.limit, "limit", 0, "Limit the number of channels displayed")
	fs.StringVar(&opts.format, "format", "", "Output format: table or json (default from config, else table)")
	fs.BoolVar(&opts.listGroups, "list-groups", false, "Show the available groups and exit")
	fs.BoolVar(&opts.listCountries, "list-countries", false, "Show the available countries and exit")
	fs.StringVar(&opts.configPath, "config", "", "Optional config file path (YAML); else use the environment")
	fs.BoolVar(&opts.serve, "serve", false, "Serve the channels over HTTP")
	fs.BoolVar(&opts.sync, "sync", false, "Store the channels of each PATH in PostgreSQL")

	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		opts.paths = append(opts.paths, rest[0])
		args = rest[1:]
	}

	limitSet := false
	fs.Visit(func(f *flag.Flag) { limitSet = limitSet || f.Name == "limit" })
	switch {
	case !limitSet:
		opts.limit = -1
	case opts.limit < 0:
		return nil, fmt.Errorf("invalid -limit %d: must not be negative", opts.limit)
	}
	if opts.format != "" && opts.format != config.FormatTable && opts.format != config.FormatJSON {
		return nil, fmt.Errorf("invalid -format %q: choose table or json", opts.format)
	}
	if opts.serve && opts.sync {
		return nil, errors.New("-serve and -sync cannot be combined")
	}
	return opts, nil
}
