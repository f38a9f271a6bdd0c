package files

import (
	"fmt"
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

// Discovery provides file discovery operations over the data directories.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// aggregateWorkbooks are whole-country rollups published alongside the
// per-state HMIS files; they would double-count every district.
var aggregateWorkbooks = map[string]bool{
	"all_india.xls":  true,
	"all india.xls":  true,
	"all_india.xlsx": true,
	"all india.xlsx": true,
}

// ListStateWorkbooks finds the per-state HMIS Excel workbooks in dir,
// sorted by name so processing order is stable. Office lock files ("~$")
// and national aggregate files are skipped.
func (d *Discovery) ListStateWorkbooks(dir string) ([]FileInfo, error) {
	files, err := d.listByExtension(dir, ".xls", ".xlsx")
	if err != nil {
		return nil, err
	}

	kept := files[:0]
	for _, f := range files {
		if strings.HasPrefix(f.Name, "~$") {
			continue
		}
		if aggregateWorkbooks[strings.ToLower(f.Name)] {
			continue
		}
		kept = append(kept, f)
	}

	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Name < kept[j].Name
	})
	return kept, nil
}

// FindCSVFiles finds all CSV files in the specified directory, sorted by
// name.
func (d *Discovery) FindCSVFiles(dir string) ([]FileInfo, error) {
	files, err := d.listByExtension(dir, ".csv")
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

func (d *Discovery) listByExtension(dir string, extensions ...string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		lower := strings.ToLower(name)
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(lower, ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}
