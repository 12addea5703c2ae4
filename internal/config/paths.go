package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations for one run
type Paths struct {
	InputFile string
	OutputDir string
	LogFile   string
}

// ResolvePaths turns the configured locations into absolute paths.
// Relative paths are resolved against the working directory, which is
// where an analyst launches the run from.
func ResolvePaths(cfg *Config) (*Paths, error) {
	input, err := filepath.Abs(cfg.Input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve input path: %w", err)
	}
	output, err := filepath.Abs(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output dir: %w", err)
	}

	paths := &Paths{
		InputFile: input,
		OutputDir: output,
	}
	if cfg.Logging.Output != "console" && cfg.Logging.FilePath != "" {
		logFile, err := filepath.Abs(cfg.Logging.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve log file: %w", err)
		}
		paths.LogFile = logFile
	}
	return paths, nil
}

// GetReportPath returns the location of a report file inside the output directory
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// EnsureDirectories creates the log directory when file logging is on.
// The output directory is left to the export, so a run that fails earlier leaves nothing behind.
func (p *Paths) EnsureDirectories() error {
	var directories []string
	if p.LogFile != "" {
		directories = append(directories, filepath.Dir(p.LogFile))
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}
