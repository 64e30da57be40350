package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/Zachkp/portfolio/internal/reveal"
)

// timelineOptions are the flags of the timeline command.
type timelineOptions struct {
	page     string
	config   string
	compact  bool
	gap      time.Duration
	limit    time.Duration
	element  string
	markdown bool
	realtime bool
}

// NewTimelineCmd creates the timeline command.
func NewTimelineCmd() *cobra.Command {
	opts := &timelineOptions{}
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Simulate a visit and print the mutation timeline",
		Long: `Scroll each section of the page fully into view, one per --gap, and print
every mutation in the order it happens. Times are milliseconds since page load.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTimeline(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.page, "page", "p", "public/index.html", "HTML page to load")
	f.StringVarP(&opts.config, "config", "c", "", "sequence config YAML (defaults when empty)")
	f.BoolVar(&opts.compact, "compact", false, "use the compact education card delay")
	f.DurationVarP(&opts.gap, "gap", "g", 500*time.Millisecond, "time between section scrolls")
	f.DurationVar(&opts.limit, "limit", time.Minute, "stop the simulation after this much virtual time")
	f.StringVarP(&opts.element, "element", "e", "", "only show mutations of this element label")
	f.BoolVarP(&opts.markdown, "markdown", "m", false, "output as Markdown")
	f.BoolVar(&opts.realtime, "realtime", false, "play the visit in wall-clock time instead of on a virtual clock")
	return cmd
}

func loadTimelineConfig(opts *timelineOptions) (reveal.Config, error) {
	cfg := reveal.DefaultConfig()
	if opts.config != "" {
		var err error
		if cfg, err = reveal.LoadConfig(opts.config); err != nil {
			return cfg, fmt.Errorf("load %s: %w", opts.config, err)
		}
	}
	if opts.compact {
		cfg.Education.CardDelay = reveal.CompactEducationCardDelay
	}
	return cfg, nil
}

func runTimeline(cmd *cobra.Command, opts *timelineOptions) error {
	if opts.gap < 0 {
		return fmt.Errorf("--gap must not be negative")
	}
	cfg, err := loadTimelineConfig(opts)
	if err != nil {
		return err
	}
	logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := os.Open(opts.page) //nolint:gosec // operator-supplied path
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	defer f.Close()

	page, err := reveal.ParsePage(f)
	if err != nil {
		return err
	}

	scrolls := reveal.PageOrder(cfg, opts.gap)
	var result *reveal.Result
	if opts.realtime {
		result, err = reveal.SimulateRealtime(cmd.Context(), page, cfg, scrolls, opts.limit, logger)
	} else {
		result, err = reveal.Simulate(page, cfg, scrolls, opts.limit, logger)
	}
	if err != nil {
		return err
	}

	journal := result.Journal
	if opts.element != "" {
		journal = filterJournal(journal, opts.element)
	}

	if opts.markdown {
		return writeTimelineMarkdown(cmd.OutOrStdout(), result, journal)
	}
	return writeTimelineText(cmd.OutOrStdout(), result, journal)
}

func filterJournal(journal []reveal.Mutation, label string) []reveal.Mutation {
	var out []reveal.Mutation
	for _, m := range journal {
		if m.Element == label {
			out = append(out, m)
		}
	}
	return out
}

func writeTimelineText(w io.Writer, result *reveal.Result, journal []reveal.Mutation) error {
	for _, m := range journal {
		if _, err := fmt.Fprintln(w, m.String()); err != nil {
			return err
		}
	}
	var states []string
	for _, s := range result.Sequencer.Sections() {
		states = append(states, s.ID()+"="+s.State().String())
	}
	_, err := fmt.Fprintf(w, "%s (%s)\n", summary(result, journal), strings.Join(states, " "))
	return err
}

// summary reports where the run stopped; "settled" only when every section did.
func summary(result *reveal.Result, journal []reveal.Mutation) string {
	verb := "ended"
	if result.Sequencer.Settled() {
		verb = "settled"
	}
	return fmt.Sprintf("%d mutations, %s at %dms", len(journal), verb, result.End.Milliseconds())
}

func writeTimelineMarkdown(w io.Writer, result *reveal.Result, journal []reveal.Mutation) error {
	md := markdown.NewMarkdown(w)
	md.H1("Reveal Timeline")
	md.PlainText("")

	var sections [][]string
	for _, s := range result.Sequencer.Sections() {
		sections = append(sections, []string{
			"`" + s.ID() + "`",
			strconv.FormatFloat(s.Threshold(), 'f', 2, 64),
			s.State().String(),
			strconv.Itoa(len(s.Programs())),
			strconv.Itoa(s.Runs()),
		})
	}
	md.H2("Sections")
	md.Table(markdown.TableSet{
		Header: []string{"Section", "Threshold", "State", "Programs", "Runs"},
		Rows:   sections,
	})
	md.PlainText("")

	rows := make([][]string, 0, len(journal))
	for _, m := range journal {
		rows = append(rows, []string{
			strconv.FormatInt(m.At.Milliseconds(), 10),
			"`" + m.Element + "`",
			string(m.Kind),
			m.Name,
			m.Value,
		})
	}
	md.H2("Mutations")
	md.Table(markdown.TableSet{
		Header: []string{"At (ms)", "Element", "Kind", "Name", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
	md.PlainText(summary(result, journal) + ".")
	return md.Build()
}
