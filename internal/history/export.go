package history

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/verte-zerg/speedtype/internal/model"
)

// DateLayout formats result timestamps in exports and tables.
const DateLayout = "01/02 15:04"

// Header is the column header of exports and result tables.
var Header = []string{"Test", "Date", "WPM", "Accuracy", "Time", "Difficulty", "Level"}

// WriteCSV writes the log as CSV with a 1-based test index.
func (s *Store) WriteCSV(w io.Writer) error {
	return WriteCSV(w, s.results)
}

// ExportCSV writes the log to path. The file is replaced atomically, so a
// failed export leaves no partial file behind.
func (s *Store) ExportCSV(path string) error {
	return ExportCSV(path, s.results)
}

// WriteCSV writes results as CSV.
func WriteCSV(w io.Writer, results []model.TestResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for i, r := range results {
		if err := cw.Write(Row(i+1, r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Row formats a result with its 1-based test index.
func Row(index int, r model.TestResult) []string {
	return []string{
		strconv.Itoa(index),
		r.CreatedAt.Local().Format(DateLayout),
		fmt.Sprintf("%.1f", r.WPM),
		fmt.Sprintf("%d%%", r.Accuracy),
		fmt.Sprintf("%.1fs", r.TimeSeconds),
		string(r.Tier),
		strconv.Itoa(r.Level),
	}
}

// ExportCSV writes results to path through a temp file and rename.
func ExportCSV(path string, results []model.TestResult) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "export-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := WriteCSV(writer, results); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
