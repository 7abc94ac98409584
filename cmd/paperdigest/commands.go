package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kailas-cloud/paperdigest/internal/db/sqlite"
	"github.com/kailas-cloud/paperdigest/internal/domain"
	dompaper "github.com/kailas-cloud/paperdigest/internal/domain/paper"
	exportuc "github.com/kailas-cloud/paperdigest/internal/usecase/export"
	fetchuc "github.com/kailas-cloud/paperdigest/internal/usecase/fetch"
	paperuc "github.com/kailas-cloud/paperdigest/internal/usecase/paper"
	"github.com/kailas-cloud/paperdigest/internal/version"
)

var errSummariesDisabled = errors.New("summaries are disabled (summary.enabled is false)")

func runFetch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	categories := fs.String("categories", "", "comma-separated arXiv categories (default: configured)")
	keywords := fs.String("keywords", "", "comma-separated keywords (default: subscriptions)")
	limit := fs.Int("limit", 0, "max papers per category (default: configured)")
	noSummarize := fs.Bool("no-summarize", false, "skip LLM summaries")
	allPapers := fs.Bool("all", false, "keep every fetched paper, ignoring keywords")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	res, err := a.fetch.Run(ctx, fetchuc.Options{
		Categories:     splitList(*categories),
		Keywords:       splitList(*keywords),
		UseKeywords:    !*allPapers,
		Summarize:      !*noSummarize && a.summaries != nil,
		MaxPerCategory: *limit,
		Trigger:        fetchuc.TriggerCLI,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Fetched %d papers, %d matched, %d new\n", res.Fetched, res.Matched, res.New)
	printPapers(os.Stdout, res.Papers)
	printUsage(usage)
	return nil
}

func runSearch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	count := fs.Int("count", 10, "number of results (1-25)")
	summarize := fs.Bool("summarize", false, "summarize results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.Join(fs.Args(), " ")
	if query == "" {
		return errors.New("usage: paperdigest search [flags] <query>")
	}
	if *summarize && a.summaries == nil {
		return errSummariesDisabled
	}

	ctx, usage := domain.NewContextWithUsage(ctx)
	papers, err := a.papers.Search(ctx, query, *count, *summarize)
	if err != nil {
		return err
	}
	printPapers(os.Stdout, papers)
	printUsage(usage)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	sortBy := fs.String("sort", dompaper.SortDate, "sort order: date, votes, title")
	limit := fs.Int("limit", paperuc.DefaultLimit, "max papers")
	offset := fs.Int("offset", 0, "papers to skip")
	keyword := fs.String("keyword", "", "only papers matching keyword")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page, err := a.papers.List(ctx, dompaper.ListQuery{
		Limit:   *limit,
		Offset:  *offset,
		Keyword: *keyword,
		Sort:    *sortBy,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPUBLISHED\tSCORE\tTITLE")
	for _, p := range page.Papers {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID(), formatDate(p.PublishedAt()), p.Score(), truncate(p.Title(), 80))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d papers\n", len(page.Papers), page.Total)
	return nil
}

func runSimilar(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("similar", flag.ContinueOnError)
	k := fs.Int("k", a.cfg.Similar.DefaultK, "number of similar papers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: paperdigest similar [-k N] <paper-id>")
	}

	matches, err := a.similar.Similar(ctx, fs.Arg(0), *k)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No similar papers found.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tTITLE")
	for _, m := range matches {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\n", m.Score, m.Paper.ID(), truncate(m.Paper.Title(), 80))
	}
	return tw.Flush()
}

func runKeywords(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: paperdigest keywords <paper-id>")
	}
	if a.summaries == nil {
		return errSummariesDisabled
	}

	p, err := a.papers.Get(ctx, args[0])
	if err != nil {
		return err
	}
	keywords, err := a.summaries.ExtractKeywords(ctx, p)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(keywords, ", "))
	return nil
}

func runSubscribe(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: paperdigest subscribe <keyword>")
	}
	sub, created, err := a.subscriptions.Add(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("Subscribed to %q\n", sub.Keyword())
	} else {
		fmt.Printf("Already subscribed to %q\n", sub.Keyword())
	}
	return nil
}

func runUnsubscribe(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: paperdigest unsubscribe <keyword>")
	}
	keyword := strings.Join(args, " ")
	if err := a.subscriptions.Remove(ctx, keyword); err != nil {
		return err
	}
	fmt.Printf("Unsubscribed from %q\n", keyword)
	return nil
}

func runSubscriptions(ctx context.Context, a *app, _ []string) error {
	subs, err := a.subscriptions.List(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No subscriptions.")
		return nil
	}
	for _, s := range subs {
		fmt.Printf("%s\t(since %s)\n", s.Keyword(), formatDate(s.CreatedAt()))
	}
	return nil
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", string(exportuc.BibTeX), "bibtex, markdown, csv or json")
	out := fs.String("o", "", "output file (default: stdout)")
	limit := fs.Int("limit", exportuc.DefaultLimit, "max papers")
	keyword := fs.String("keyword", "", "only papers matching keyword")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := exportuc.ParseFormat(*format)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		file, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("create %s: %w", *out, err)
		}
		defer file.Close()
		w = file
	}

	n, err := a.export.Export(ctx, w, exportuc.Request{Format: f, Limit: *limit, Keyword: *keyword})
	if err != nil {
		return err
	}
	if *out != "" {
		fmt.Fprintf(os.Stderr, "Exported %d papers to %s\n", n, *out)
	}
	return nil
}

func runVote(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: paperdigest vote up|down <paper-id>")
	}
	score, err := a.papers.Vote(ctx, args[1], args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s score: %d\n", args[1], score)
	return nil
}

func runStats(ctx context.Context, a *app, _ []string) error {
	st, err := a.papers.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Papers:        %d\n", st.TotalPapers)
	fmt.Printf("Subscriptions: %d\n", st.Subscriptions)
	fmt.Printf("Votes:         %d\n", st.TotalVotes)
	fmt.Printf("Collections:   %d\n", st.Collections)
	if st.LastFetch.IsZero() {
		fmt.Println("Last fetch:    never")
	} else {
		fmt.Printf("Last fetch:    %s\n", st.LastFetch.Local().Format(time.DateTime))
	}
	return nil
}

func runMigrate(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: paperdigest migrate up|down")
	}

	m := sqlite.Manager{}
	switch args[0] {
	case "up":
		if err := m.UpToLatest(ctx, a.conn); err != nil {
			return err
		}
	case "down":
		if err := m.DownOne(ctx, a.conn); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown migrate direction %q", args[0])
	}

	v, err := m.Version(ctx, a.conn)
	if err != nil {
		return err
	}
	fmt.Printf("Schema version: %d\n", v)
	return nil
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.String())
}

func printPapers(w io.Writer, papers []dompaper.Paper) {
	for i, p := range papers {
		fmt.Fprintf(w, "\n[%d] %s\n", i+1, p.Title())
		fmt.Fprintf(w, "    %s  %s  %s\n", p.ID(), p.PrimaryCategory(), formatDate(p.PublishedAt()))
		if authors := p.Authors(); len(authors) > 0 {
			fmt.Fprintf(w, "    %s\n", truncate(strings.Join(authors, ", "), 100))
		}
		if kws := p.MatchedKeywords(); len(kws) > 0 {
			fmt.Fprintf(w, "    matched: %s\n", strings.Join(kws, ", "))
		}
		if summary, ok := p.Summary(); ok {
			fmt.Fprintf(w, "    TLDR: %s\n", summary)
		}
		fmt.Fprintf(w, "    %s\n", p.URL())
	}
}

func printUsage(u *domain.SummaryUsage) {
	if u.Used() {
		fmt.Fprintf(os.Stderr, "\nSummary tokens used: %d\n", u.TotalTokens())
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}
