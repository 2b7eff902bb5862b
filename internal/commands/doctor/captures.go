package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hay-kot/lens/internal/core/history"
)

// EntryLister exposes the current history entries.
type EntryLister interface {
	Entries() []history.Entry
}

// CaptureCheck detects captured photos that no history entry refers to. Both
// the loaded entries and the persisted list count as references; when the
// persisted list cannot be read nothing is reported as orphaned.
type CaptureCheck struct {
	history    EntryLister
	store      ListReader
	listKey    string
	captureDir string
	fix        bool
}

// NewCaptureCheck creates a new orphaned capture check.
// If fix is true, orphaned captures will be deleted.
func NewCaptureCheck(hist EntryLister, store ListReader, listKey, captureDir string, fix bool) *CaptureCheck {
	return &CaptureCheck{
		history:    hist,
		store:      store,
		listKey:    listKey,
		captureDir: captureDir,
		fix:        fix,
	}
}

func (c *CaptureCheck) Name() string {
	return "Captures"
}

func (c *CaptureCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	persisted, err := readList(ctx, c.store, c.listKey)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Orphan scan skipped",
			Status: StatusWarn,
			Detail: fmt.Sprintf("search history is unreadable: %v", err),
		})
		return result
	}

	referenced := make(map[string]bool)
	for _, e := range append(c.history.Entries(), persisted...) {
		if e.ImageRef != "" {
			referenced[filepath.Clean(e.ImageRef)] = true
		}
	}

	if _, err := os.Stat(c.captureDir); os.IsNotExist(err) {
		result.Items = append(result.Items, CheckItem{
			Label:  "Capture directory",
			Status: StatusPass,
			Detail: "no captures yet",
		})
		return result
	}

	entries, err := os.ReadDir(c.captureDir)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "Read capture directory",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "capture-") {
			continue
		}
		if !referenced[filepath.Join(c.captureDir, entry.Name())] {
			orphans = append(orphans, entry.Name())
		}
	}

	if len(orphans) == 0 {
		result.Items = append(result.Items, CheckItem{
			Label:  "No orphans",
			Status: StatusPass,
			Detail: "every capture is in the search history",
		})
		return result
	}

	for _, name := range orphans {
		path := filepath.Join(c.captureDir, name)

		if !c.fix {
			result.Items = append(result.Items, CheckItem{
				Label:   name,
				Status:  StatusWarn,
				Detail:  "orphaned capture (not in search history)",
				Fixable: true,
			})
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  name,
				Status: StatusFail,
				Detail: fmt.Sprintf("failed to delete: %v", err),
			})
			continue
		}

		result.Items = append(result.Items, CheckItem{
			Label:  name,
			Status: StatusPass,
			Detail: "deleted orphaned capture",
		})
	}

	return result
}
