// Package workspace manages the writable data folder the tool operates in:
// inbound receipts, a duplicates holding area, exports, and label presets.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is the filesystem layout rooted at a single writable directory.
type Workspace struct {
	Root string
}

func New(root string) *Workspace {
	return &Workspace{Root: root}
}

// Ensure creates the workspace folder structure if missing.
func (w *Workspace) Ensure() error {
	if err := os.MkdirAll(w.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace root: %w", err)
	}
	for _, sub := range []string{"receipts", "exports", "imports", "log", "label_presets"} {
		if err := os.MkdirAll(filepath.Join(w.Root, sub), 0o755); err != nil {
			return fmt.Errorf("create workspace dir %q: %w", sub, err)
		}
	}
	return nil
}

func (w *Workspace) ReceiptsDir() string { return filepath.Join(w.Root, "receipts") }
func (w *Workspace) ExportsDir() string  { return filepath.Join(w.Root, "exports") }
func (w *Workspace) ImportsDir() string  { return filepath.Join(w.Root, "imports") }
func (w *Workspace) LogDir() string      { return filepath.Join(w.Root, "log") }

// LabelPresetsDir holds saved label layout JSON documents.
func (w *Workspace) LabelPresetsDir() string { return filepath.Join(w.Root, "label_presets") }

// MoveToDuplicates moves a file into a duplicates/ folder next to it,
// suffixing the name with __dupN when the target already exists. Returns the
// final destination path.
func MoveToDuplicates(path string) (string, error) {
	dir := filepath.Join(filepath.Dir(path), "duplicates")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create duplicates dir: %w", err)
	}

	base := filepath.Base(path)
	dest := filepath.Join(dir, base)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(base)
		stem := base[:len(base)-len(ext)]
		for i := 2; ; i++ {
			candidate := filepath.Join(dir, fmt.Sprintf("%s__dup%d%s", stem, i, ext))
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				dest = candidate
				break
			}
		}
	}

	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("move to duplicates: %w", err)
	}
	return dest, nil
}
