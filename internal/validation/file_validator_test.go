package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salespulse/internal/errors"
)

func TestFileValidator_ValidateFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantType      apperrors.ErrorType
		errorContains string
	}{
		{
			name: "existing file",
			setupFunc: func(t *testing.T) string {
				file := filepath.Join(t.TempDir(), "sales.csv")
				require.NoError(t, os.WriteFile(file, []byte("Order_ID\n"), 0644))
				return file
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantType:      apperrors.ErrTypeNotFound,
			errorContains: "not found",
		},
		{
			name: "path is directory",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantType:      apperrors.ErrTypeNotFound,
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validator := NewFileValidator(slog.Default())
			err := validator.ValidateFile(tt.setupFunc(t))

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	validator := NewFileValidator(nil)
	dir := t.TempDir()

	for _, name := range []string{"sales.csv", "sales.xlsx", "sales.dat"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		assert.NoError(t, validator.ValidateInputFile(path), name)
	}

	err := validator.ValidateInputFile(filepath.Join(dir, "absent.csv"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "results", "run")
		validator := NewFileValidator(nil)

		require.NoError(t, validator.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		_, err = os.Stat(filepath.Join(dir, ".write_test"))
		assert.True(t, os.IsNotExist(err), "write probe is removed")
	})

	t.Run("path blocked by a file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "results")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := NewFileValidator(nil).ValidateOutputDirectory(filepath.Join(blocker, "sub"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWrite))
	})
}
