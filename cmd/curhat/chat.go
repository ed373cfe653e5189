package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/curhat/internal/conversation"
	curhatserver "github.com/HendryAvila/curhat/internal/server"
)

const separator = "=================================================="

func newChatCmd(a *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk in the terminal",
		Long: `Starts a conversation in the terminal. Type 'selesai' or 'stop' at any
time to finish and get a short summary of what you talked about.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := curhatserver.NewRuntime(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := &chatLoop{
				registry:    rt.Registry,
				defaultName: a.cfg.UserName,
				out:         cmd.OutOrStdout(),
				render:      newRenderer(plain),
				logger:      a.logger,
			}
			return c.run(ctx, cmd.InOrStdin())
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print replies as plain text instead of rendered markdown")
	return cmd
}

// chatLoop runs one terminal conversation.
type chatLoop struct {
	registry    *conversation.Registry
	defaultName string
	out         io.Writer
	render      func(string) string
	logger      *zap.Logger
}

func (c *chatLoop) run(ctx context.Context, in io.Reader) error {
	lines := readLines(ctx, in)

	fmt.Fprintln(c.out, separator)
	fmt.Fprintln(c.out, "CURHAT - teman cerita")
	fmt.Fprintln(c.out, separator)
	fmt.Fprintln(c.out, "\nKetik 'selesai' atau 'stop' kapan saja untuk mengakhiri percakapan.")
	fmt.Fprint(c.out, "\nBoleh aku tahu namamu? ")

	name, ok := next(ctx, lines)
	if !ok {
		fmt.Fprintln(c.out, "\n\nSampai jumpa! 👋")
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultName
	}

	start, err := c.registry.Start(ctx, name)
	if err != nil {
		return fmt.Errorf("starting conversation: %w", err)
	}
	id := start.SessionID
	c.say(start.Text)

	for {
		fmt.Fprintf(c.out, "%s: ", name)
		line, ok := next(ctx, lines)
		if !ok {
			if ctx.Err() != nil {
				fmt.Fprintf(c.out, "\n\nSampai jumpa, %s! Jaga diri baik-baik! 👋\n", name)
				c.end(context.Background(), id)
				return nil
			}
			// Input closed: finish as if the user said goodbye.
			if reply, ok := c.end(ctx, id); ok {
				c.closing(reply.Text)
			}
			return nil
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		reply, err := c.registry.Say(ctx, id, text)
		if err != nil {
			return fmt.Errorf("processing turn: %w", err)
		}
		if reply.Closed {
			c.closing(reply.Text)
			c.end(ctx, id)
			return nil
		}
		c.say(reply.Text)
	}
}

func (c *chatLoop) say(text string) {
	fmt.Fprintf(c.out, "\nBot: %s\n\n", c.render(text))
}

func (c *chatLoop) closing(text string) {
	fmt.Fprintf(c.out, "\n%s\nBot: %s\n%s\n", separator, c.render(text), separator)
}

// end releases the conversation. Failures only matter for the transcript,
// so they are logged.
func (c *chatLoop) end(ctx context.Context, id string) (conversation.Reply, bool) {
	reply, err := c.registry.End(ctx, id)
	if err != nil {
		c.logger.Warn("ending conversation", zap.String("session", id), zap.Error(err))
		return reply, false
	}
	return reply, true
}

// readLines feeds lines from r into a channel that is closed at EOF.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

func next(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

// newRenderer returns a markdown renderer for replies, or the identity when
// plain output is requested or glamour cannot initialize.
func newRenderer(plain bool) func(string) string {
	identity := func(s string) string { return s }
	if plain {
		return identity
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return identity
	}
	return func(s string) string {
		out, err := r.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimSpace(out)
	}
}
