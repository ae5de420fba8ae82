package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"paycalc/internal/domain/payroll"
)

// WriteJSON writes the report array with two-space indentation. An empty
// batch is written as [].
func WriteJSON(w io.Writer, results []payroll.PayrollResult) error {
	if results == nil {
		results = []payroll.PayrollResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(results)
}

// SaveJSON writes the report to path through a temp file so a failed write
// never leaves a truncated report behind.
func SaveJSON(path string, results []payroll.PayrollResult) error {
	return writeFileAtomic(path, func(w io.Writer) error {
		return WriteJSON(w, results)
	})
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
