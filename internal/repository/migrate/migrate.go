// Package migrate applies and reverts the PostgreSQL schema the
// MetadataStore depends on, as an explicit Up/Down pair invoked from
// the CLI.
package migrate

import (
	"context"
	"database/sql"

	log "github.com/sirupsen/logrus"
)

// migration is the shape every versioned schema change implements.
type migration interface {
	Version() string
	Up(ctx context.Context, conn *sql.DB) error
	Down(ctx context.Context, conn *sql.DB) error
}

// all returns the ordered list of migrations to apply. There is exactly
// one today; new ones are appended, never reordered.
func all() []migration {
	return []migration{
		&CreateFileTable{},
	}
}

// Up applies every migration in order.
func Up(ctx context.Context, conn *sql.DB) error {
	for _, m := range all() {
		log.WithField("version", m.Version()).Info("applying migration")
		if err := m.Up(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}

// Down reverts every migration in reverse order.
func Down(ctx context.Context, conn *sql.DB) error {
	ms := all()
	for i := len(ms) - 1; i >= 0; i-- {
		m := ms[i]
		log.WithField("version", m.Version()).Info("reverting migration")
		if err := m.Down(ctx, conn); err != nil {
			return err
		}
	}
	return nil
}
