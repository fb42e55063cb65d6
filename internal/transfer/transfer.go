// Package transfer moves a single file to a new path, replacing whatever is
// already at the destination.
//
// The rename backend is a plain os.Rename and covers the common case of a
// photo moving into a subdirectory of its own folder. The native backend
// copies and then removes the source, which is what a move has to do when
// source and destination sit on different filesystems. BackendAuto chains
// the two.
package transfer

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var (
	// ErrSourceNotFound is returned when the source file doesn't exist
	ErrSourceNotFound = errors.New("source file not found")

	// ErrDestinationNotWritable is returned when the destination can't be created
	ErrDestinationNotWritable = errors.New("destination not writable")

	// ErrCrossDevice is returned by the rename backend when src and dst are
	// on different filesystems
	ErrCrossDevice = errors.New("source and destination on different devices")

	// ErrTransferFailed is returned when a transfer fails for other reasons
	ErrTransferFailed = errors.New("transfer failed")
)

// TransferOptions configures a single move.
type TransferOptions struct {
	// TargetUID sets the owner of the moved file. -1 leaves it unchanged.
	TargetUID int

	// TargetGID sets the group of the moved file. -1 leaves it unchanged.
	TargetGID int

	// FileMode sets the permissions of the moved file. 0 keeps the source mode.
	FileMode os.FileMode

	// DirMode sets the permissions of directories created for the move.
	// 0 means 0755.
	DirMode os.FileMode
}

// DefaultOptions returns options that leave ownership and modes alone.
func DefaultOptions() TransferOptions {
	return TransferOptions{
		TargetUID: -1,
		TargetGID: -1,
		FileMode:  0,
		DirMode:   0,
	}
}

// TransferResult contains details about a completed move.
type TransferResult struct {
	// Success indicates whether the file reached its destination
	Success bool

	// Backend names the transferer that performed the move
	Backend string

	// BytesTotal is the size of the source file
	BytesTotal int64

	// Duration is how long the move took
	Duration time.Duration

	// SourceRemoved indicates whether the source path is gone
	SourceRemoved bool

	// Error contains the error if Success is false
	Error error
}

// Transferer moves files. Implementations must be safe for concurrent use.
type Transferer interface {
	// Move transfers src to dst, replacing dst if it exists, then removes src.
	// Returns ErrSourceNotFound if src doesn't exist.
	Move(src, dst string, opts TransferOptions) (*TransferResult, error)

	// Name returns a human-readable name for this implementation.
	Name() string
}

type Backend int

const (
	BackendAuto Backend = iota
	BackendRename
	BackendNative
)

func (b Backend) String() string {
	switch b {
	case BackendAuto:
		return "auto"
	case BackendRename:
		return "rename"
	case BackendNative:
		return "native"
	default:
		return "unknown"
	}
}

func New(backend Backend) (Transferer, error) {
	switch backend {
	case BackendRename:
		return NewRenameTransferer(), nil
	case BackendNative:
		return NewNativeTransferer(1024 * 1024), nil
	case BackendAuto:
		return NewFallbackTransferer(NewRenameTransferer(), NewNativeTransferer(1024*1024)), nil
	default:
		return nil, fmt.Errorf("unknown transfer backend %d", backend)
	}
}

func MustNew(backend Backend) Transferer {
	t, err := New(backend)
	if err != nil {
		panic(fmt.Sprintf("transfer.MustNew: %v", err))
	}
	return t
}

// ParseBackend maps a config or flag value to a Backend. Empty means auto.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return BackendAuto, nil
	case "rename":
		return BackendRename, nil
	case "native":
		return BackendNative, nil
	default:
		return BackendAuto, fmt.Errorf("unknown transfer backend %q (want auto, rename or native)", s)
	}
}
