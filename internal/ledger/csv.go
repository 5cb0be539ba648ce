package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// csvHeader is the fixed column set of the on-disk log. Order matters; it is
// the format users open in a spreadsheet.
var csvHeader = []string{
	"Job Title",
	"Company",
	"Date Applied",
	"Method",
	"Status",
	"Follow-up",
	"Notes",
}

// CSVRecorder appends application records to a CSV file, creating it with a
// header row on first use.
type CSVRecorder struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
}

// NewCSVRecorder builds a recorder for path. The file is created lazily.
func NewCSVRecorder(path string, logger *zap.Logger) *CSVRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVRecorder{path: path, log: logger.Named("ledger")}
}

// Record appends one row.
func (r *CSVRecorder) Record(ctx context.Context, app Application) error {
	normalize(&app)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureFile(); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		app.JobTitle,
		app.Company,
		app.AppliedAt.Format(timeLayout),
		app.Method,
		app.Status,
		app.FollowUp,
		app.Notes,
	}); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}
	w.Flush()
	return w.Error()
}

// Since reads the file back and returns rows applied at or after cutoff.
// Rows with an unparseable date are skipped, matching the tolerant read
// behavior of the summary report.
func (r *CSVRecorder) Since(ctx context.Context, cutoff time.Time) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureFile(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var apps []Application
	for i, row := range rows {
		if i == 0 || len(row) < len(csvHeader) {
			continue
		}
		appliedAt, err := time.ParseInLocation(timeLayout, row[2], time.Local)
		if err != nil {
			r.log.Debug("Skipping ledger row with bad date.", zap.String("date", row[2]))
			continue
		}
		if appliedAt.Before(cutoff) {
			continue
		}
		apps = append(apps, Application{
			JobTitle:  row[0],
			Company:   row[1],
			AppliedAt: appliedAt,
			Method:    row[3],
			Status:    row[4],
			FollowUp:  row[5],
			Notes:     row[6],
		})
	}
	return apps, nil
}

// Close is a no-op; the file is opened per operation.
func (r *CSVRecorder) Close() error { return nil }

func (r *CSVRecorder) ensureFile() error {
	if _, err := os.Stat(r.path); err == nil {
		return nil
	}
	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create ledger: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}
	w.Flush()
	return w.Error()
}
