// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it builds the content pack, dialogue engine,
// conversation registry and transcript store from configuration and injects
// them into the tools, prompts and resources. No conversation logic lives here.
package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/curhat/internal/config"
	"github.com/HendryAvila/curhat/internal/content"
	"github.com/HendryAvila/curhat/internal/conversation"
	"github.com/HendryAvila/curhat/internal/dialogue"
	"github.com/HendryAvila/curhat/internal/prompts"
	"github.com/HendryAvila/curhat/internal/resources"
	"github.com/HendryAvila/curhat/internal/tools"
	"github.com/HendryAvila/curhat/internal/transcript"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Runtime holds the shared dependencies of every front end (MCP server and
// terminal chat).
type Runtime struct {
	Pack     *content.Pack
	Engine   *dialogue.Engine
	Registry *conversation.Registry
	// Transcript is nil when transcripts are disabled or failed to open.
	Transcript *transcript.Store

	logger *zap.Logger
	stop   context.CancelFunc
	done   chan struct{}
}

// NewRuntime resolves configuration into live components and starts the idle
// conversation janitor. A transcript that fails to open is logged and
// disabled; everything else still works. Close must be called on shutdown.
func NewRuntime(cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pack := content.DefaultPack()
	if cfg.ContentPath != "" {
		p, err := content.LoadPack(cfg.ContentPath)
		if err != nil {
			return nil, fmt.Errorf("loading content pack: %w", err)
		}
		pack = p
		logger.Info("content pack loaded", zap.String("path", cfg.ContentPath), zap.Int("topics", len(p.Topics)))
	}

	engine := dialogue.NewEngine(content.NewStatic(pack),
		dialogue.WithThreshold(cfg.SuggestionThreshold),
		dialogue.WithLogger(logger.Named("dialogue")),
	)

	rt := &Runtime{Pack: pack, Engine: engine, logger: logger}

	regOpts := []conversation.Option{
		conversation.WithLogger(logger.Named("conversation")),
		conversation.WithIdleTimeout(cfg.GetIdleTimeout()),
	}
	if cfg.Transcript {
		store, err := transcript.New(transcript.Config{DataDir: cfg.DataDir})
		if err != nil {
			logger.Warn("transcript disabled", zap.Error(err))
		} else {
			rt.Transcript = store
			regOpts = append(regOpts, conversation.WithRecorder(store))
		}
	}
	rt.Registry = conversation.New(engine, regOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	rt.stop = cancel
	rt.done = make(chan struct{})
	go func() {
		defer close(rt.done)
		rt.Registry.Run(ctx, cfg.GetSweepInterval())
	}()

	return rt, nil
}

// Close stops the janitor and closes the transcript store. It is safe to
// call more than once.
func (rt *Runtime) Close() {
	if rt.stop == nil {
		return
	}
	rt.stop()
	<-rt.done
	rt.stop = nil

	if rt.Transcript != nil {
		if err := rt.Transcript.Close(); err != nil {
			rt.logger.Warn("transcript close", zap.Error(err))
		}
	}
}

// New creates and configures the MCP server with all tools, prompts,
// and resources registered.
//
// The returned cleanup function stops background work and closes the
// transcript database. It is always non-nil and safe to call even if
// construction failed.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	rt, err := NewRuntime(cfg, logger)
	if err != nil {
		return nil, noop, err
	}
	return NewWithRuntime(rt), rt.Close, nil
}

// NewWithRuntime registers everything on a fresh MCP server backed by rt.
func NewWithRuntime(rt *Runtime) *server.MCPServer {
	s := server.NewMCPServer(
		"curhat",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register conversation tools ---

	startTool := tools.NewStartTool(rt.Registry)
	s.AddTool(startTool.Definition(), startTool.Handle)

	sayTool := tools.NewSayTool(rt.Registry)
	s.AddTool(sayTool.Definition(), sayTool.Handle)

	statusTool := tools.NewStatusTool(rt.Registry)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	endTool := tools.NewEndTool(rt.Registry)
	s.AddTool(endTool.Definition(), endTool.Handle)

	// --- Register transcript tools ---
	//
	// History is only offered when the transcript store is open.

	if rt.Transcript != nil {
		historyTool := tools.NewHistoryTool(rt.Transcript)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	startPrompt := prompts.NewStartPrompt()
	s.AddPrompt(startPrompt.Definition(), startPrompt.Handle)

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(rt.Pack)
	s.AddResource(resourceHandler.DistortionsResource(), resourceHandler.HandleDistortions)
	s.AddResource(resourceHandler.TechniquesResource(), resourceHandler.HandleTechniques)
	s.AddResource(resourceHandler.TopicsResource(), resourceHandler.HandleTopics)

	return s
}

// noop is the cleanup returned when construction failed.
func noop() {}

// serverInstructions tells the host model how to use curhat.
func serverInstructions() string {
	return `You have access to Curhat, a scripted supportive-listening companion.

## WHEN TO USE Curhat

Offer Curhat when the user wants to vent, says they feel sad, tired, anxious,
lonely or stressed, or asks for someone to listen ("aku mau curhat").
Curhat is NOT therapy and NOT crisis support. If the user mentions self-harm
or danger, stop and point them to local emergency services instead.

## HOW IT WORKS

1. Call curhat_start (optionally with user_name) and show the greeting.
2. Pass every user message, unchanged, to curhat_say with the session_id.
3. Show each reply verbatim. Do not add your own advice, diagnosis or
   rephrasing; the conversation follows a fixed empathic flow:
   listen, validate once, ask open questions, then offer one reflection.
4. The conversation ends when the user says selesai, bye, stop, keluar,
   quit, exit or ringkasan, or when you call curhat_end. The closing reply
   summarizes the topics discussed.

The text after the "---" line of a tool result is bookkeeping for you
(session_id, stage, topic). Do not show it to the user.

## OTHER TOOLS

- curhat_status: where a live conversation stands.
- curhat_history: past conversations (only when transcripts are enabled).

## RESOURCES

- curhat://glossary/techniques: the empathic techniques behind the replies.
- curhat://glossary/distortions: common thinking traps with reframing questions.
- curhat://content/topics: the topics Curhat recognizes.`
}
