package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const usage = `paperdigest - arXiv paper digest

Usage:
  paperdigest <command> [flags]

Commands:
  serve          run the HTTP API and the digest scheduler
  fetch          fetch, filter and summarize new papers
  search         search arXiv live
  list           list stored papers
  similar        find stored papers similar to one
  keywords       extract topical keywords for a stored paper
  subscribe      add a keyword subscription
  unsubscribe    remove a keyword subscription
  subscriptions  list keyword subscriptions
  export         export stored papers (bibtex, markdown, csv, json)
  vote           vote a paper up or down
  stats          show global stats
  migrate        apply (up) or roll back (down) schema migrations
  version        print build info

Configuration is read from config/<ENV>.yaml (ENV defaults to local).
`

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"serve":         runServe,
	"fetch":         runFetch,
	"search":        runSearch,
	"list":          runList,
	"similar":       runSimilar,
	"keywords":      runKeywords,
	"subscribe":     runSubscribe,
	"unsubscribe":   runUnsubscribe,
	"subscriptions": runSubscriptions,
	"export":        runExport,
	"vote":          runVote,
	"stats":         runStats,
	"migrate":       runMigrate,
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	name, args := os.Args[1], os.Args[2:]
	switch name {
	case "version", "-version", "--version":
		printVersion(os.Stdout)
		return
	case "help", "-h", "-help", "--help":
		fmt.Fprint(os.Stdout, usage)
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, name, cmd, args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, name string, cmd command, args []string) error {
	a, err := newApp(ctx, appOptions{migrate: name != "migrate", quiet: name != "serve"})
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd(ctx, a, args)
}
