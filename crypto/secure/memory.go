// Package secure provides explicit zeroization for key material that must not
// outlive the operation that needs it.
package secure

import (
	"errors"
	"runtime"
	"sync"
)

// ErrCleared is returned when a cleared SecureBytes is used.
var ErrCleared = errors.New("secure bytes has been cleared")

// SecureBytes holds sensitive bytes and wipes them on Clear. A finalizer wipes
// the buffer if Clear is never called.
type SecureBytes struct {
	data    []byte
	mu      sync.Mutex
	cleared bool
}

// FromBytes copies data into a new SecureBytes. The caller should zeroize its own copy.
func FromBytes(data []byte) *SecureBytes {
	sb := &SecureBytes{data: make([]byte, len(data))}
	copy(sb.data, data)
	runtime.SetFinalizer(sb, (*SecureBytes).Clear)
	return sb
}

// Use calls fn with the underlying buffer. fn must not retain the slice.
func (sb *SecureBytes) Use(fn func([]byte) error) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.cleared {
		return ErrCleared
	}
	return fn(sb.data)
}

// Size returns the number of bytes held, or 0 once cleared.
func (sb *SecureBytes) Size() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.cleared {
		return 0
	}
	return len(sb.data)
}

// IsCleared reports whether Clear has run.
func (sb *SecureBytes) IsCleared() bool {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	return sb.cleared
}

// Clear zeros the memory and removes the finalizer. It is safe to call more than once.
func (sb *SecureBytes) Clear() {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if sb.cleared {
		return
	}
	Zeroize(sb.data)
	sb.data = nil
	sb.cleared = true
	runtime.SetFinalizer(sb, nil)
}

// Zeroize overwrites data with zeros.
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
	// keep the writes from being optimized away
	runtime.KeepAlive(data)
}
