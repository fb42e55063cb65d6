package transfer

import (
	"errors"
	"fmt"
	"strings"
)

// FallbackTransferer tries multiple backends in order until one succeeds.
type FallbackTransferer struct {
	backends []Transferer
}

// NewFallbackTransferer creates a transferer that tries backends in order.
func NewFallbackTransferer(backends ...Transferer) *FallbackTransferer {
	return &FallbackTransferer{backends: backends}
}

func (f *FallbackTransferer) Name() string {
	names := make([]string, len(f.backends))
	for i, b := range f.backends {
		names[i] = b.Name()
	}
	return "fallback(" + strings.Join(names, ",") + ")"
}

// Move stops at the first success. A missing source is final: no other
// backend can find it either.
func (f *FallbackTransferer) Move(src, dst string, opts TransferOptions) (*TransferResult, error) {
	var lastResult *TransferResult
	var lastErr error
	var errs []string

	for _, backend := range f.backends {
		result, err := backend.Move(src, dst, opts)
		if err == nil && result.Success {
			return result, nil
		}
		if errors.Is(err, ErrSourceNotFound) {
			return result, err
		}

		lastResult = result
		lastErr = err
		errs = append(errs, fmt.Sprintf("%s: %v", backend.Name(), err))
	}

	combined := fmt.Errorf("all backends failed: %s: %w", strings.Join(errs, "; "), lastErr)
	if lastResult == nil {
		lastResult = &TransferResult{}
	}
	lastResult.Success = false
	lastResult.Error = combined
	return lastResult, combined
}
