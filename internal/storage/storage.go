// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage provides the durable media the data store snapshots to.
// Every medium stores one opaque snapshot document: a flat JSON file, a row
// in an embedded SQLite file or PostgreSQL, a Valkey key, or an S3 object.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSnapshot is returned by Load when the medium holds no snapshot yet.
var ErrNoSnapshot = errors.New("storage: no snapshot")

// DefaultTimeout bounds a single network round trip to a remote medium.
const DefaultTimeout = 10 * time.Second

// Medium is a place a snapshot can be read from and written to.
type Medium interface {
	// Name identifies the medium in logs.
	Name() string
	// Load returns the last saved snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)
	// Save atomically replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Discard is the medium for deployments without a writable location.
// It never holds a snapshot and drops every save.
type Discard struct{}

func (Discard) Name() string { return "discard" }

func (Discard) Load(context.Context) ([]byte, error) { return nil, ErrNoSnapshot }

func (Discard) Save(context.Context, []byte) error { return nil }

func (Discard) Close() error { return nil }

// Memory keeps the snapshot in process memory. Used in tests and to share
// state between store instances within one process.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

// NewMemory returns an empty in-memory medium.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "memory" }

// Load returns a copy of the stored snapshot.
func (m *Memory) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, ErrNoSnapshot
	}
	return append([]byte(nil), m.data...), nil
}

// Save stores a copy of data.
func (m *Memory) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Memory) Close() error { return nil }

// withTimeout applies DefaultTimeout unless the caller's context already
// carries an earlier deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < d {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
