// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", fmt.Sprintf("%s:%s", host, port))
	return client, nil
}

// Valkey stores the snapshot under a single key. Useful on hosts without a
// writable disk.
type Valkey struct {
	client *redis.Client
	key    string
}

// NewValkey returns a medium that keeps the snapshot at key.
func NewValkey(client *redis.Client, key string) *Valkey {
	return &Valkey{client: client, key: key}
}

func (v *Valkey) Name() string { return "valkey:" + v.key }

// Load fetches the snapshot key.
func (v *Valkey) Load(ctx context.Context) ([]byte, error) {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	data, err := v.client.Get(ctx, v.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %s: %w", v.key, err)
	}
	return data, nil
}

// Save overwrites the snapshot key without expiry.
func (v *Valkey) Save(ctx context.Context, data []byte) error {
	ctx, cancel := withTimeout(ctx, DefaultTimeout)
	defer cancel()

	if err := v.client.Set(ctx, v.key, data, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", v.key, err)
	}
	return nil
}

func (v *Valkey) Close() error { return v.client.Close() }
