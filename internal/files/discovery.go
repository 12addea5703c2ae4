package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	apperrors "salespulse/internal/errors"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds input files inside a folder
type Discovery struct {
	extensions map[string]bool
	logger     *slog.Logger
}

// NewDiscovery creates a discovery that accepts the given extensions, e.g. ".csv"
func NewDiscovery(extensions []string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = true
	}
	return &Discovery{extensions: exts, logger: logger}
}

// FindInputFiles lists the files in dir with an accepted extension, oldest first.
// Hidden files and office lock files (~$name.xlsx) are skipped.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if !d.extensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Sort by modification time (oldest first), then by name
	sort.SliceStable(files, func(i, j int) bool {
		if !files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].ModTime.Before(files[j].ModTime)
		}
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// ResolveInput returns path unchanged unless it names a folder, in which case
// it returns the most recently modified input file inside it
func (d *Discovery) ResolveInput(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return path, nil
	}

	files, err := d.FindInputFiles(path)
	if err != nil {
		return "", apperrors.NewReadError("failed to list input folder", err).WithContext("path", path)
	}
	latest, ok := GetLatestFile(files)
	if !ok {
		return "", apperrors.NewNotFoundError(fmt.Sprintf("sales file in %s", path), nil)
	}

	d.logger.Info("Using latest input file from folder",
		slog.String("folder", path),
		slog.String("file", latest.Name),
		slog.Int("candidates", len(files)))
	return latest.Path, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}
