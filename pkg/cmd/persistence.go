// Package cmd provides shared construction helpers for the binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chrisrneal/task-manager-sub000/pkg/persistence"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence/file"
	"github.com/chrisrneal/task-manager-sub000/pkg/persistence/postgresql"
)

// NewPersistence selects a persistence backend from the database URL scheme.
// postgres:// and postgresql:// use PostgreSQL, anything else falls back to
// the file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch parseProvider(databaseURL) {
	case "postgres", "postgresql":
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create PostgreSQL persistence: %w", err))
		}

		return p
	default:
		return file.NewPersistence(databaseURL)
	}
}

func parseProvider(databaseURL string) string {
	scheme, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return scheme
}
