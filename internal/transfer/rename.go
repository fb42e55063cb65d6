package transfer

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// RenameTransferer moves files with a single rename. It cannot cross
// filesystems; it reports ErrCrossDevice so a FallbackTransferer can retry
// with a copying backend.
type RenameTransferer struct{}

func NewRenameTransferer() *RenameTransferer {
	return &RenameTransferer{}
}

func (r *RenameTransferer) Name() string {
	return "rename"
}

func (r *RenameTransferer) Move(src, dst string, opts TransferOptions) (*TransferResult, error) {
	result := &TransferResult{Backend: r.Name()}
	start := time.Now()

	info, err := os.Lstat(src)
	if err != nil {
		result.Error = fmt.Errorf("%w: %v", ErrSourceNotFound, err)
		return result, result.Error
	}
	result.BytesTotal = info.Size()

	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			result.Error = fmt.Errorf("%w: %v", ErrCrossDevice, err)
		} else {
			result.Error = fmt.Errorf("%w: %v", ErrTransferFailed, err)
		}
		return result, result.Error
	}
	result.SourceRemoved = true

	if err := ApplyPermissions(dst, opts.FileMode, opts.TargetUID, opts.TargetGID); err != nil {
		result.Error = fmt.Errorf("permission error: %w", err)
		return result, result.Error
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result, nil
}
