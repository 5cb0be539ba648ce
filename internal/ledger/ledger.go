// Package ledger records the outcome of every application attempt and
// produces the weekly summary report. Two backends exist: an append-only CSV
// file and a Postgres table; both serve the same Recorder contract.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Statuses written by the session orchestration.
const (
	StatusApplied = "Applied"
	StatusFailed  = "Failed"
)

// MethodEasyApply is the default application method.
const MethodEasyApply = "LinkedIn Easy Apply"

// timeLayout matches the on-disk CSV date format.
const timeLayout = "2006-01-02 15:04"

// Application is one recorded attempt.
type Application struct {
	ID        uuid.UUID
	JobTitle  string
	Company   string
	Method    string
	Status    string
	FollowUp  string
	Notes     string
	Details   map[string]string
	AppliedAt time.Time
}

// Recorder persists application outcomes and reads them back for reporting.
type Recorder interface {
	Record(ctx context.Context, app Application) error
	// Since returns every application recorded at or after cutoff.
	Since(ctx context.Context, cutoff time.Time) ([]Application, error)
	Close() error
}

// normalize fills the defaults a caller may omit.
func normalize(app *Application) {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Method == "" {
		app.Method = MethodEasyApply
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}
}
