package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var unsafeNameRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// LocalFileStorage writes generated invoices under a base directory
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) *LocalFileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// SaveDocument writes a generated PDF under the base directory with a sanitized name
// and returns the full path
func (s *LocalFileStorage) SaveDocument(name string, content []byte) (string, error) {
	safeName := SanitizeFileName(name)
	if safeName == "" {
		return "", fmt.Errorf("cannot save document: empty file name")
	}
	if !bytes.HasPrefix(content, []byte("%PDF-")) {
		return "", fmt.Errorf("content is not a PDF document: %s", safeName)
	}

	fullPath := filepath.Join(s.baseDir, safeName)
	if err := s.writeFile(fullPath, content); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (s *LocalFileStorage) writeFile(fullPath string, content []byte) error {
	if err := s.ValidatePath(fullPath); err != nil {
		return err
	}

	parentDir := filepath.Dir(fullPath)
	if err := os.MkdirAll(parentDir, 0755); err != nil {
		s.logger.Error("Failed to create parent directories",
			zap.String("path", parentDir),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int("size", len(content)))

	return nil
}

// ValidatePath checks that the path is safe and within baseDir
func (s *LocalFileStorage) ValidatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}

	return nil
}

// SanitizeFileName returns a filesystem-safe version of a file name.
// Path separators, parent references and anything outside [a-zA-Z0-9-_.] are removed.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "..", "")
	name = strings.ReplaceAll(name, "/", "")
	name = strings.ReplaceAll(name, "\\", "")
	return unsafeNameRegex.ReplaceAllString(name, "")
}
