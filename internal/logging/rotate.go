package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// rotatingFile appends to path and rotates it once it reaches maxSize.
type rotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int
	f          *os.File
	size       int64
}

func openRotating(path string, maxSize int64, maxBackups int) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	r := &rotatingFile{path: path, maxSize: maxSize, maxBackups: maxBackups}
	if err := r.open(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("opening log file: %w", err)
	}
	r.f, r.size = f, info.Size()
	return nil
}

// Write rotates before a write once the file has reached maxSize, so a
// single line is never split across files. If rotation fails the line still
// goes to the reopened file.
func (r *rotatingFile) Write(p []byte) (int, error) {
	if r.f == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	var rotErr error
	if r.size >= r.maxSize {
		rotErr = r.rotate()
		if r.f == nil {
			return 0, rotErr
		}
	}
	n, err := r.f.Write(p)
	r.size += int64(n)
	if err == nil {
		err = rotErr
	}
	return n, err
}

func (r *rotatingFile) rotate() error {
	if r.f != nil {
		r.f.Close()
		r.f = nil
	}
	rotErr := rotateFiles(r.path, r.maxBackups)
	if err := r.open(); err != nil {
		return err
	}
	return rotErr
}

func (r *rotatingFile) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// backupName returns dir/name.N.ext for the Nth rotated log.
func backupName(dir, name, ext string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("%s.%d%s", name, n, ext))
}

// rotateFiles shifts name.N.ext to name.N+1.ext, drops anything at or past
// maxBackups, then moves the live log to name.1.ext.
func rotateFiles(basePath string, maxBackups int) error {
	dir := filepath.Dir(basePath)
	base := filepath.Base(basePath)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	backups, err := findBackups(dir, name, ext)
	if err != nil {
		return err
	}

	slices.Sort(backups)
	slices.Reverse(backups)

	for _, num := range backups {
		oldPath := backupName(dir, name, ext, num)
		if num >= maxBackups {
			os.Remove(oldPath)
			continue
		}
		newPath := backupName(dir, name, ext, num+1)
		if err := os.Rename(oldPath, newPath); err != nil {
			return fmt.Errorf("failed to rotate %s to %s: %w", oldPath, newPath, err)
		}
	}

	if _, err := os.Stat(basePath); err == nil {
		if err := os.Rename(basePath, backupName(dir, name, ext, 1)); err != nil {
			return fmt.Errorf("failed to rotate current log: %w", err)
		}
	}

	return nil
}

func findBackups(dir, name, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var backups []int
	prefix := name + "."
	for _, entry := range entries {
		fname := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fname, prefix) || !strings.HasSuffix(fname, ext) {
			continue
		}

		num, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(fname, prefix), ext))
		if err != nil {
			continue
		}
		backups = append(backups, num)
	}

	return backups, nil
}
