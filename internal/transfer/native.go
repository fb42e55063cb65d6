package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// NativeTransferer moves by copying into dst, syncing, and removing src.
type NativeTransferer struct {
	bufferSize int
}

func NewNativeTransferer(bufferSize int) *NativeTransferer {
	if bufferSize <= 0 {
		bufferSize = 1024 * 1024
	}
	return &NativeTransferer{bufferSize: bufferSize}
}

func (n *NativeTransferer) Name() string {
	return "native"
}

func (n *NativeTransferer) Move(src, dst string, opts TransferOptions) (*TransferResult, error) {
	result := &TransferResult{Backend: n.Name()}
	start := time.Now()

	srcInfo, err := os.Stat(src)
	if err != nil {
		result.Error = fmt.Errorf("%w: %v", ErrSourceNotFound, err)
		return result, result.Error
	}
	if !srcInfo.Mode().IsRegular() {
		result.Error = fmt.Errorf("%w: %s is not a regular file", ErrTransferFailed, src)
		return result, result.Error
	}
	result.BytesTotal = srcInfo.Size()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		result.Error = fmt.Errorf("%w: %v", ErrDestinationNotWritable, err)
		return result, result.Error
	}

	mode := opts.FileMode
	if mode == 0 {
		mode = srcInfo.Mode().Perm()
	}

	if err := n.copyFile(src, dst, mode); err != nil {
		os.Remove(dst)
		result.Error = fmt.Errorf("%w: %v", ErrTransferFailed, err)
		return result, result.Error
	}

	if err := ApplyPermissions(dst, mode, opts.TargetUID, opts.TargetGID); err != nil {
		result.Error = fmt.Errorf("permission error: %w", err)
		return result, result.Error
	}

	if err := os.Remove(src); err != nil {
		result.Error = fmt.Errorf("copied but could not remove source: %w", err)
		return result, result.Error
	}

	result.SourceRemoved = true
	result.Success = true
	result.Duration = time.Since(start)
	return result, nil
}

func (n *NativeTransferer) copyFile(src, dst string, mode os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}

	buf := make([]byte, n.bufferSize)
	if _, err := io.CopyBuffer(dstFile, srcFile, buf); err != nil {
		dstFile.Close()
		return fmt.Errorf("copy error: %w", err)
	}

	if err := dstFile.Sync(); err != nil {
		dstFile.Close()
		return fmt.Errorf("sync error: %w", err)
	}

	return dstFile.Close()
}
