package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/storage/sqlite"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type contactsCommand struct {
	limit     int
	format    string
	olderThan time.Duration

	out io.Writer
}

func contactsCmd() *cli.Command {
	cmd := &contactsCommand{out: os.Stdout}
	return &cli.Command{
		Name:  "contacts",
		Usage: "Inspect and maintain the contact inbox",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the most recent messages",
				UsageText: "portfolio contacts list [--limit N] [--format table|json|yaml]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "maximum number of messages",
						Value:       20,
						Destination: &cmd.limit,
					},
					&cli.StringFlag{
						Name:        "format",
						Aliases:     []string{"f"},
						Usage:       "output format (table, json, yaml)",
						Value:       formatTable,
						Destination: &cmd.format,
					},
				},
				Action: cmd.list,
			},
			{
				Name:   "stats",
				Usage:  "Show message counts for today, this week and overall",
				Action: cmd.stats,
			},
			{
				Name:      "prune",
				Usage:     "Delete messages older than the retention window",
				UsageText: "portfolio contacts prune [--older-than 8760h]",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:        "older-than",
						Usage:       "age cutoff (defaults to CONTACT_RETENTION)",
						Destination: &cmd.olderThan,
					},
				},
				Action: cmd.prune,
			},
		},
	}
}

func openStore() (*config.Config, *sqlite.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := sqlite.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return cfg, store, nil
}

func (cmd *contactsCommand) list(ctx context.Context, _ *cli.Command) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	msgs, err := store.ListContacts(ctx, cmd.limit)
	if err != nil {
		return err
	}
	return writeContacts(cmd.out, cmd.format, msgs)
}

func writeContacts(w io.Writer, format string, msgs []contact.Message) error {
	switch strings.ToLower(format) {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(msgs); err != nil {
			return err
		}
		return enc.Close()
	case formatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tRECEIVED\tNAME\tEMAIL\tSUBJECT")
		for _, m := range msgs {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
				m.ID, m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Name, m.Email, truncate(m.Subject, 40))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (cmd *contactsCommand) stats(ctx context.Context, _ *cli.Command) error {
	_, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx, time.Now())
	if err != nil {
		return err
	}
	_, err = io.WriteString(cmd.out, row("total", fmt.Sprint(stats.Total))+
		row("today", fmt.Sprint(stats.Today))+
		row("this week", fmt.Sprint(stats.ThisWeek)))
	return err
}

func (cmd *contactsCommand) prune(ctx context.Context, _ *cli.Command) error {
	cfg, store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	age := cmd.olderThan
	if age <= 0 {
		age = cfg.Retention
	}
	n, err := store.DeleteOlderThan(ctx, time.Now().Add(-age))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.out, "removed %d messages older than %s\n", n, age)
	return nil
}

type pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// pruneContacts runs once at server startup.
func pruneContacts(ctx context.Context, store pruner, retention time.Duration) {
	if retention <= 0 {
		return
	}
	n, err := store.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		log.Error().Err(err).Msg("error cleaning up old contact messages")
		return
	}
	if n > 0 {
		log.Info().Int64("removed", n).Dur("retention", retention).Msg("retention cleanup")
	}
}
