package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HendryAvila/curhat/internal/config"
	curhatserver "github.com/HendryAvila/curhat/internal/server"
)

// app carries flag values and the state PersistentPreRunE resolves from them.
type app struct {
	configPath  string
	contentPath string
	verbose     bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	chat := newChatCmd(a)

	root := &cobra.Command{
		Use:   "curhat",
		Short: "Curhat - a supportive listening companion",
		Long: `Curhat is a scripted supportive-listening companion.

It listens, validates how you feel, asks gentle open questions and offers
one reflection per topic. It is not therapy and not crisis support.

Run without arguments to start chatting in the terminal.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: chat.RunE,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(), "Path to the YAML config file")
	root.PersistentFlags().StringVar(&a.contentPath, "content", "", "Content pack YAML (overrides config and "+config.EnvContent+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.Flags().AddFlagSet(chat.Flags())

	root.AddCommand(chat)
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// setup loads configuration and builds the logger shared by every command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.contentPath != "" {
		cfg.ContentPath = a.contentPath
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", a.configPath, err)
	}
	a.cfg = cfg

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	// The terminal chat shares stderr with the user; keep it quiet unless asked.
	if isChat(cmd) && !a.verbose && level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

func isChat(cmd *cobra.Command) bool {
	return cmd.Name() == "chat" || !cmd.HasParent()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No config or logger needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "curhat v%s\n", curhatserver.Version)
		},
	}
}
