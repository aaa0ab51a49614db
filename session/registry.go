// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/roundvote/models"
	"github.com/danielhkuo/roundvote/notify"
	"github.com/danielhkuo/roundvote/timing"
)

// RegistryConfig holds what every created session shares
type RegistryConfig struct {
	Policies  map[models.Mode]Policy
	Clock     timing.Clock
	Publisher Publisher
	Logger    *slog.Logger
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// Registry owns the running sessions of the process
type Registry struct {
	cfg    RegistryConfig
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewRegistry creates an empty registry. Session loops stop when ctx is done
// or Close is called.
func NewRegistry(ctx context.Context, cfg RegistryConfig) *Registry {
	cfg.Logger = notify.ResolveLogger(cfg.Logger)
	ctx, cancel := context.WithCancel(ctx)
	return &Registry{
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session in the given mode
func (r *Registry) Create(mode models.Mode) (*Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ctx.Err(); err != nil {
		return nil, models.ErrSessionClosed
	}

	s := New(Config{
		ID:        uuid.NewString(),
		Mode:      mode,
		Policy:    r.cfg.Policies[mode],
		Clock:     r.cfg.Clock,
		Publisher: r.cfg.Publisher,
		Logger:    r.cfg.Logger,
	})

	ctx, cancel := context.WithCancel(r.ctx)
	r.sessions[s.ID()] = &entry{session: s, cancel: cancel}
	r.group.Go(func() error {
		return s.Run(ctx)
	})

	r.cfg.Logger.Info("session created", "session_id", s.ID(), "mode", mode)
	return s, nil
}

// Get looks up a running session
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return e.session, nil
}

// Remove stops a session and forgets it
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return models.ErrSessionNotFound
	}
	e.cancel()
	<-e.session.Done()

	r.cfg.Logger.Info("session removed", "session_id", id)
	return nil
}

// Len returns the number of running sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops every session and waits for their loops to exit
func (r *Registry) Close() error {
	r.mu.Lock()
	r.cancel()
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	return r.group.Wait()
}
