package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/curhat/internal/transcript"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit   int
		session string
		search  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversations",
		Long: `Reads the transcript database under data_dir. Without flags it lists the
most recent conversations; --session prints one conversation turn by turn and
--search finds turns mentioning the given words.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.cfg.Transcript {
				return errors.New("transcripts are disabled (transcript: false)")
			}
			store, err := transcript.New(transcript.Config{DataDir: a.cfg.DataDir})
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			switch {
			case session != "":
				return printSession(out, store, session)
			case search != "":
				return printSearch(out, store, search, limit)
			default:
				return printRecent(out, store, limit)
			}
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show")
	cmd.Flags().StringVar(&session, "session", "", "Show every turn of this session id")
	cmd.Flags().StringVar(&search, "search", "", "Full-text search over what was said")
	return cmd
}

func printRecent(out io.Writer, store *transcript.Store, limit int) error {
	sessions, err := store.RecentSessions(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(out, "No conversations recorded yet.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tUSER\tSTARTED\tTURNS\tSTATUS")
	for _, s := range sessions {
		status := "open"
		if s.EndedAt != nil {
			status = "ended"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.UserName, s.StartedAt, s.TurnCount, status)
	}
	return tw.Flush()
}

func printSession(out io.Writer, store *transcript.Store, id string) error {
	sess, err := store.GetSession(id)
	if err != nil {
		return err
	}
	turns, err := store.Turns(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s with %s, started %s\n", sess.ID, sess.UserName, sess.StartedAt)
	for _, t := range turns {
		topic := ""
		if t.Topic != nil {
			topic = " · " + *t.Topic
		}
		fmt.Fprintf(out, "\n[%d %s%s]\n%s: %s\nBot: %s\n", t.Seq, t.Stage, topic, sess.UserName, t.UserText, t.BotReply)
	}
	if sess.EndedAt != nil {
		fmt.Fprintf(out, "\nended %s\n", *sess.EndedAt)
	}
	return nil
}

func printSearch(out io.Writer, store *transcript.Store, query string, limit int) error {
	results, err := store.Search(query, limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		_, err := fmt.Fprintf(out, "No turns match %q.\n", query)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tSEQ\tWHEN\tSAID")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.SessionID, r.Seq, r.CreatedAt, r.UserText)
	}
	return tw.Flush()
}
