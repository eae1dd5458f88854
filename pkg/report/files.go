package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mercator-hq/piiaudit/pkg/pii"
	"mercator-hq/piiaudit/pkg/policy"
)

// Base names of the result files; the exporter format is the extension.
const (
	ScanFileBase       = "pii_scan"
	ViolationsFileBase = "violations"
)

// ScanPath returns the registry file path in dir for e.
func ScanPath(dir string, e Exporter) string {
	return filepath.Join(dir, ScanFileBase+"."+e.Format())
}

// ViolationsPath returns the violations file path in dir for e.
func ViolationsPath(dir string, e Exporter) string {
	return filepath.Join(dir, ViolationsFileBase+"."+e.Format())
}

// WriteRegistryFile writes the registry to ScanPath and returns the path.
func WriteRegistryFile(ctx context.Context, dir string, e Exporter, rows []pii.RegistryRow) (string, error) {
	path := ScanPath(dir, e)
	err := writeFileAtomic(path, func(w io.Writer) error {
		return e.ExportRegistry(ctx, rows, w)
	})
	return path, err
}

// WriteViolationsFile writes violations to ViolationsPath and returns the path.
func WriteViolationsFile(ctx context.Context, dir string, e Exporter, rows []policy.ViolationRow) (string, error) {
	path := ViolationsPath(dir, e)
	err := writeFileAtomic(path, func(w io.Writer) error {
		return e.ExportViolations(ctx, rows, w)
	})
	return path, err
}

// writeFileAtomic writes through a temporary file in the same directory and
// renames it over path, so readers never see a partial file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions on %q: %w", path, err)
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %q into place: %w", path, err)
	}
	return nil
}
