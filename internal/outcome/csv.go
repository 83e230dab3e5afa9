package outcome

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonathan/job-applier/internal/types"
)

// DateLayout is the format of the date column.
const DateLayout = "2006-01-02"

// CSVHeader is written once, when the file is created.
var CSVHeader = []string{"title", "company", "url", "status", "date"}

// CSV appends one row per outcome to a CSV file.
type CSV struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a log writing to path. The file is created on first Append.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Append implements Log.
func (c *CSV) Append(_ context.Context, o types.Outcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create outcome log directory: %w", err)
		}
	}

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open outcome log %s: %w", c.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat outcome log %s: %w", c.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(CSVHeader); err != nil {
			return fmt.Errorf("failed to write outcome log header: %w", err)
		}
	}
	row := []string{o.Title, o.Company, o.URL, string(o.Status), o.Timestamp.Format(DateLayout)}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to write outcome for %s: %w", o.JobKey, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush outcome log: %w", err)
	}
	return nil
}

// ReadCSV returns every data row of the log at path, header excluded.
func ReadCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open outcome log %s: %w", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read outcome log %s: %w", path, err)
	}
	if len(rows) > 0 {
		rows = rows[1:]
	}
	return rows, nil
}
