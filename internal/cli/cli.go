package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/cfp-events/internal/cfp"
	"github.com/pfrederiksen/cfp-events/internal/config"
	"github.com/pfrederiksen/cfp-events/internal/logger"
	"github.com/pfrederiksen/cfp-events/internal/scraper"
	"github.com/pfrederiksen/cfp-events/internal/storage"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNewCFPs = 2
)

// errNewCFPs signals that "list --new" found CFPs; Execute maps it to ExitNewCFPs
var errNewCFPs = errors.New("new CFPs found")

// app holds the state shared by all subcommands of one invocation
type app struct {
	configPath string
	dataDir    string
	format     string
	verbose    bool

	cfg       *config.Config
	out       io.Writer
	scraper   *scraper.Scraper
	store     *storage.Storage
	outFormat OutputFormat
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{out: os.Stdout}

	cmd := &cobra.Command{
		Use:   "cfp-events",
		Short: "List open conference calls for papers from Sessionize",
		Long: `A CLI tool to list open conference calls for papers (CFPs) published on
Sessionize, look up the CFP details of a single event, and report CFPs that
opened since the last check.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.config/cfp-events/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "Data directory for snapshots and cached details")
	cmd.PersistentFlags().StringVar(&a.format, "format", "text", "Output format: text or json")
	cmd.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "Enable debug logging on stderr")

	cmd.AddCommand(newListCmd(a), newDetailCmd(a))
	return cmd
}

// setup loads configuration and builds the collaborators of a command
func (a *app) setup(cmd *cobra.Command, args []string) error {
	format, err := ParseFormat(a.format)
	if err != nil {
		return err
	}
	a.outFormat = format
	a.out = cmd.OutOrStdout()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dataDir != "" {
		cfg.DataDir = a.dataDir
	}
	a.cfg = cfg

	level, _ := logger.ParseLevel(cfg.LogLevel)
	if a.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	a.store = store
	a.scraper = scraper.New(cfg.ScraperOptions()...)

	logger.Debug("Configured", logger.Fields{
		"listing_url": cfg.ListingURL,
		"data_dir":    store.Dir(),
		"timeout":     cfg.Timeout.String(),
	})
	return nil
}

type listOptions struct {
	limit   int
	onlyNew bool
	sort    string
	details bool
}

func newListCmd(a *app) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open CFPs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd.Context(), opts, cmd.Flags().Changed("limit"))
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of CFPs to print in text output, 0 for all (default from config)")
	cmd.Flags().BoolVar(&opts.onlyNew, "new", false, "Only show CFPs not seen on the previous run (exit code 2 when some are found)")
	cmd.Flags().StringVar(&opts.sort, "sort", string(SortByListing), "Sort order: listing, date or title")
	cmd.Flags().BoolVar(&opts.details, "details", false, "Fetch each event page for CFP deadlines")

	return cmd
}

func (a *app) runList(ctx context.Context, opts *listOptions, limitSet bool) error {
	order, err := ParseSortOrder(opts.sort)
	if err != nil {
		return err
	}
	limit := a.cfg.MaxEntries
	if limitSet {
		limit = opts.limit
	}

	logger.Debug("Fetching listing", logger.Fields{"url": a.scraper.ListingURL()})
	events, err := a.scraper.FetchListing(ctx)
	if err != nil {
		return fmt.Errorf("fetching CFPs: %w", err)
	}

	// Positions match the stored snapshot, which drops repeated IDs
	positions := make(map[string]int, len(events))
	for _, evt := range events {
		if _, ok := positions[cfp.ID(evt)]; !ok {
			positions[cfp.ID(evt)] = len(positions) + 1
		}
	}

	selected := events
	if opts.onlyNew {
		previous, err := a.store.LoadSnapshot()
		if err != nil {
			return err
		}
		diff := cfp.Diff(previous, events)
		selected = diff.NewEvents
		logger.Debug("Computed diff", logger.Fields{
			"new":     len(diff.NewEvents),
			"removed": len(diff.RemovedEvents),
		})
	}

	if err := a.store.SaveListing(events); err != nil {
		return err
	}

	listed := make([]*ListedEvent, 0, len(selected))
	for _, evt := range selected {
		listed = append(listed, &ListedEvent{Index: positions[cfp.ID(evt)], Event: evt})
	}
	sortEvents(listed, order)

	if opts.details {
		toEnrich := listed
		if a.outFormat == FormatText && limit > 0 && len(toEnrich) > limit {
			toEnrich = toEnrich[:limit]
		}
		if err := a.enrich(ctx, toEnrich); err != nil {
			return err
		}
	}

	result := &ListResult{
		CheckedAt:  time.Now().UTC(),
		ListingURL: a.scraper.ListingURL(),
		OnlyNew:    opts.onlyNew,
		Events:     listed,
		EventCount: len(listed),
	}
	if err := WriteList(a.out, result, a.outFormat, limit); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if opts.onlyNew && len(listed) > 0 {
		return errNewCFPs
	}
	return nil
}

// enrich fetches the detail record of each event with bounded concurrency.
// A failed fetch leaves that event without a detail.
func (a *app) enrich(ctx context.Context, listed []*ListedEvent) error {
	cache, err := a.store.LoadDetailCache(a.cfg.CacheTTL)
	if err != nil {
		return err
	}

	details := make([]*cfp.Detail, len(listed))
	fresh := make([]bool, len(listed))
	for i, le := range listed {
		details[i] = cache.Get(le.Link)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Concurrency)
	for i, le := range listed {
		if details[i] != nil || le.Link == "" {
			continue
		}
		i, le := i, le // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			d, err := a.scraper.FetchDetail(gctx, le.Link)
			if err != nil {
				logger.Warn("Fetching detail failed", logger.Fields{"url": le.Link, "error": err.Error()})
				return nil
			}
			details[i] = d
			fresh[i] = true
			return nil
		})
	}
	_ = g.Wait()

	for i, le := range listed {
		le.Detail = details[i]
		if fresh[i] {
			cache.Set(le.Link, details[i])
		}
	}
	return a.store.SaveDetailCache(cache)
}

type detailOptions struct {
	refresh bool
}

func newDetailCmd(a *app) *cobra.Command {
	opts := &detailOptions{}

	cmd := &cobra.Command{
		Use:   "detail <link|index>",
		Short: "Show the CFP details of one event",
		Long: `Show the CFP details of one event, addressed either by its link or by its
1-based position in the output of the last "list" run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDetail(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Ignore the detail cache")
	return cmd
}

func (a *app) runDetail(ctx context.Context, target string, opts *detailOptions) error {
	link, err := a.resolveTarget(target)
	if err != nil {
		return err
	}

	cache, err := a.store.LoadDetailCache(a.cfg.CacheTTL)
	if err != nil {
		return err
	}

	result := &DetailResult{Link: link}
	if !opts.refresh {
		if d := cache.Get(link); d != nil {
			result.Detail = d
			result.Cached = true
		}
	}

	if result.Detail == nil {
		d, err := a.scraper.FetchDetail(ctx, link)
		if err != nil {
			return fmt.Errorf("fetching event details: %w", err)
		}
		result.Detail = d
		cache.Set(link, d)
		if err := a.store.SaveDetailCache(cache); err != nil {
			return err
		}
	}

	if err := WriteDetail(a.out, result, a.outFormat); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// resolveTarget turns a detail argument into an absolute event link
func (a *app) resolveTarget(target string) (string, error) {
	target = strings.TrimSpace(target)

	if index, err := strconv.Atoi(target); err == nil {
		evt, err := a.store.EventByIndex(index)
		if err != nil {
			return "", fmt.Errorf("looking up event %d: %w (run \"cfp-events list\" first)", index, err)
		}
		if evt.Link == "" {
			return "", fmt.Errorf("event %d has no link", index)
		}
		return evt.Link, nil
	}

	if strings.HasPrefix(target, "/") {
		return strings.TrimRight(a.cfg.SiteOrigin, "/") + target, nil
	}
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target, nil
	}
	return "", fmt.Errorf("invalid event %q: want a link or a list index", target)
}

// Execute runs the CLI and exits with the matching code
func Execute() {
	os.Exit(run(context.Background(), NewRootCmd(), os.Stderr))
}

func run(ctx context.Context, cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errNewCFPs):
		return ExitNewCFPs
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}
