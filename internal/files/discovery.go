package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery provides file discovery operations
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindReportFiles walks dir recursively and returns every .xlsx workbook, sorted by
// path. Office lock files ("~$name.xlsx") are skipped.
func (d *Discovery) FindReportFiles(dir string) ([]FileInfo, error) {
	root := d.resolve(dir)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("report directory %s: %w", root, err)
	}

	var found []FileInfo
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !IsReportWorkbook(entry.Name()) {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		found = append(found, FileInfo{
			Path:    path,
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].Path < found[j].Path
	})
	return found, nil
}

// IsReportWorkbook reports whether a file name looks like a report spreadsheet.
func IsReportWorkbook(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xlsx") && !strings.HasPrefix(name, "~$")
}

// resolve joins relative directories onto the base path.
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
