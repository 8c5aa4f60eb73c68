package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/multiplica-sam/sam/internal/ui/client"
)

// Save writes the report into dir under its file name and returns the final path.
//
// The data is written to a temporary file in dir first and renamed once complete; the temporary file is removed on any failure.
func Save(dir string, r *client.Report) (string, error) {
	if r == nil || r.FileName == "" {
		return "", fmt.Errorf("report has no file name")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".sam-report-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(r.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to set report permissions: %w", err)
	}

	final := filepath.Join(dir, filepath.Base(r.FileName))
	if err := os.Rename(tmpName, final); err != nil {
		return "", fmt.Errorf("failed to move report to %s: %w", final, err)
	}
	committed = true

	return final, nil
}
