// Package conversation routes turns from hosts to per-conversation sessions.
//
// One dialogue.Session exists per conversation id. Turns for the same id are
// serialized by a per-entry mutex; different conversations never share
// mutable state. Every processed turn is handed to a Recorder.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/curhat/internal/dialogue"
)

const (
	// DefaultIdleTimeout is how long a conversation may stay silent before
	// Sweep drops it.
	DefaultIdleTimeout = 30 * time.Minute

	// DefaultSweepInterval is the janitor tick used by Run when none is given.
	DefaultSweepInterval = time.Minute

	// DefaultUserName is used when a host starts a conversation without a name.
	DefaultUserName = "User"

	closingTrigger = "selesai"
)

var (
	// ErrEmptyInput is returned for blank turn text.
	ErrEmptyInput = errors.New("conversation: empty input")

	// ErrNotFound is returned for an unknown conversation id.
	ErrNotFound = errors.New("conversation: not found")
)

// timeNow is replaced in tests.
var timeNow = time.Now

// Recorder persists conversations. transcript.Store implements it.
type Recorder interface {
	StartSession(id, userName string) error
	RecordTurn(sessionID string, t dialogue.Turn) error
	EndSession(id, summary string) error
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) StartSession(string, string) error { return nil }
func (NopRecorder) RecordTurn(string, dialogue.Turn) error { return nil }
func (NopRecorder) EndSession(string, string) error { return nil }

// Reply is the outcome of one turn.
type Reply struct {
	SessionID string         `json:"session_id"`
	Text      string         `json:"text"`
	Stage     dialogue.Stage `json:"stage"`
	Topic     string         `json:"topic,omitempty"`
	Closed    bool           `json:"closed"`
}

// Status describes a live conversation.
type Status struct {
	SessionID  string              `json:"session_id"`
	UserName   string              `json:"user_name"`
	Stage      dialogue.Stage      `json:"stage"`
	Topic      dialogue.TopicState `json:"topic"`
	Turns      int                 `json:"turns"`
	StartedAt  time.Time           `json:"started_at"`
	LastActive time.Time           `json:"last_active"`
	Closed     bool                `json:"closed"`
}

type entry struct {
	mu         sync.Mutex
	session    *dialogue.Session
	startedAt  time.Time
	lastActive time.Time
	ended      bool // recorder.EndSession already called
	gone       bool // removed from the registry; later turns are refused
}

// Registry maps conversation ids to sessions.
type Registry struct {
	engine   *dialogue.Engine
	recorder Recorder
	logger   *zap.Logger
	idle     time.Duration

	mu      sync.RWMutex
	entries map[string]*entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithRecorder sets where turns are persisted. Defaults to NopRecorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIdleTimeout sets how long a silent conversation survives Sweep.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// New creates a Registry over engine.
func New(engine *dialogue.Engine, opts ...Option) *Registry {
	r := &Registry{
		engine:   engine,
		recorder: NopRecorder{},
		logger:   zap.NewNop(),
		idle:     DefaultIdleTimeout,
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start opens a conversation and returns its greeting.
func (r *Registry) Start(ctx context.Context, userName string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	userName = strings.TrimSpace(userName)
	if userName == "" {
		userName = DefaultUserName
	}

	s := r.engine.NewSession(userName)
	if err := r.recorder.StartSession(s.ID, userName); err != nil {
		r.logger.Warn("recording session start", zap.String("session", s.ID), zap.Error(err))
	}

	text := r.engine.Process(s, "halo, nama saya "+userName)
	r.recordTurn(s)

	now := timeNow()
	e := &entry{session: s, startedAt: now, lastActive: now}

	r.mu.Lock()
	r.entries[s.ID] = e
	r.mu.Unlock()

	r.logger.Info("conversation started", zap.String("session", s.ID))
	return replyFor(s, text), nil
}

// Say processes one user turn.
func (r *Registry) Say(ctx context.Context, id, text string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyInput
	}

	e, err := r.get(id)
	if err != nil {
		return Reply{}, err
	}
	return r.say(e, id, text)
}

// say runs one turn on an entry fetched earlier. End or Sweep may have
// removed it in the meantime.
func (r *Registry) say(e *entry, id, text string) (Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Reply{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	out := r.engine.Process(e.session, text)
	e.lastActive = timeNow()
	r.recordTurn(e.session)
	if e.session.Closed() {
		r.endRecording(e, out)
	}
	return replyFor(e.session, out), nil
}

// Status reports the state of a live conversation.
func (r *Registry) Status(id string) (Status, error) {
	e, err := r.get(id)
	if err != nil {
		return Status{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return Status{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s := e.session
	return Status{
		SessionID:  s.ID,
		UserName:   s.UserName,
		Stage:      s.Stage(),
		Topic:      s.Topic(),
		Turns:      len(s.Turns()),
		StartedAt:  e.startedAt,
		LastActive: e.lastActive,
		Closed:     s.Closed(),
	}, nil
}

// End closes a conversation, returning its closing summary, and forgets it.
func (r *Registry) End(ctx context.Context, id string) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}

	e, err := r.get(id)
	if err != nil {
		return Reply{}, err
	}

	e.mu.Lock()
	if e.gone {
		e.mu.Unlock()
		return Reply{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	var out string
	if e.session.Closed() {
		last, _ := e.session.LastTurn()
		out = last.BotReply
	} else {
		out = r.engine.Process(e.session, closingTrigger)
		r.recordTurn(e.session)
	}
	r.endRecording(e, out)
	reply := replyFor(e.session, out)
	e.gone = true
	e.mu.Unlock()

	r.remove(id)
	r.logger.Info("conversation ended", zap.String("session", id))
	return reply, nil
}

// Sweep drops conversations idle for longer than the idle timeout and
// returns how many were removed. Conversations with a turn in flight are
// skipped, and the recorder is only called after the registry lock is
// released.
func (r *Registry) Sweep(now time.Time) int {
	var idle []*entry

	r.mu.Lock()
	for id, e := range r.entries {
		// Busy means not idle.
		if !e.mu.TryLock() {
			continue
		}
		if now.Sub(e.lastActive) > r.idle {
			e.gone = true
			delete(r.entries, id)
			idle = append(idle, e)
		}
		e.mu.Unlock()
	}
	r.mu.Unlock()

	for _, e := range idle {
		e.mu.Lock()
		r.endRecording(e, "")
		e.mu.Unlock()
	}
	return len(idle)
}

// Run sweeps every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("conversation janitor stopping")
			return
		case <-ticker.C:
			if n := r.Sweep(timeNow()); n > 0 {
				r.logger.Info("swept idle conversations", zap.Int("removed", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}

// Len returns the number of live conversations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) get(id string) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.entries, id)
	r.mu.Unlock()
}

// recordTurn persists the latest turn. Failures are logged only; the
// session stays authoritative.
func (r *Registry) recordTurn(s *dialogue.Session) {
	t, ok := s.LastTurn()
	if !ok {
		return
	}
	if err := r.recorder.RecordTurn(s.ID, t); err != nil {
		r.logger.Warn("recording turn", zap.String("session", s.ID), zap.Error(err))
	}
}

// endRecording closes the session in the recorder once. Caller holds e.mu.
func (r *Registry) endRecording(e *entry, summary string) {
	if e.ended {
		return
	}
	e.ended = true
	if err := r.recorder.EndSession(e.session.ID, summary); err != nil {
		r.logger.Warn("recording session end", zap.String("session", e.session.ID), zap.Error(err))
	}
}

func replyFor(s *dialogue.Session, text string) Reply {
	return Reply{
		SessionID: s.ID,
		Text:      text,
		Stage:     s.Stage(),
		Topic:     s.ActiveTopic(),
		Closed:    s.Closed(),
	}
}
