// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"njyot/internal/config"
)

// Open builds the medium selected by the configuration. Ephemeral mode
// always wins and yields Discard.
func Open(ctx context.Context, cfg *config.Config) (Medium, error) {
	if cfg.Ephemeral {
		slog.Warn("persistence disabled, state lives only for this process")
		return Discard{}, nil
	}

	switch cfg.StoreBackend {
	case config.BackendFile:
		return NewFile(cfg.DataFile), nil

	case config.BackendSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)

	case config.BackendPostgres:
		return ConnectPostgres(ctx, cfg.DSN())

	case config.BackendValkey:
		client, err := ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return nil, err
		}
		return NewValkey(client, cfg.SnapshotKey), nil

	case config.BackendS3:
		m, err := NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.SnapshotKey)
		if err != nil {
			return nil, err
		}
		slog.Info("s3 storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return m, nil

	case config.BackendMemory:
		return NewMemory(), nil
	}

	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
