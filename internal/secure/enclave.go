package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when a destroyed buffer is opened.
var ErrDestroyed = errors.New("secure: buffer destroyed")

// Buffer holds a retrieved secret value in protected memory while the
// readiness checks inspect and compare it. The value is encrypted at rest
// via memguard.Enclave and mlocked where the platform allows it, so a
// crash dump or swap file never contains plaintext credentials.
type Buffer struct {
	enclave *memguard.Enclave
	mu      sync.RWMutex
	// destroyed allows idempotent Destroy calls and prevents use after
	// destroy
	destroyed bool
}

// NewBuffer copies secret bytes into a protected memory region.
// The caller should zero its own copy once the buffer is created.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{
		enclave: memguard.NewEnclave(data),
	}
}

// NewBufferFromString copies a secret string into a protected buffer.
func NewBufferFromString(value string) *Buffer {
	return NewBuffer([]byte(value))
}

// Open decrypts and returns the protected data in a locked buffer.
// The caller MUST call Destroy() on the returned LockedBuffer when done.
//
//	locked, err := buf.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	value := locked.String()
func (b *Buffer) Open() (*memguard.LockedBuffer, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.destroyed {
		return nil, ErrDestroyed
	}
	return b.enclave.Open()
}

// Equal reports whether two buffers hold byte-identical values.
// Both plaintexts are wiped before returning.
func (b *Buffer) Equal(other *Buffer) (bool, error) {
	left, err := b.Open()
	if err != nil {
		return false, err
	}
	defer left.Destroy()

	right, err := other.Open()
	if err != nil {
		return false, err
	}
	defer right.Destroy()

	return left.EqualTo(right.Bytes()), nil
}

// Destroy marks the buffer as destroyed and prevents further use.
// The encrypted enclave data is safe even without explicit destruction;
// call memguard.Purge() in main for full cleanup at exit.
// Idempotent; after Destroy, Open returns ErrDestroyed.
func (b *Buffer) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.destroyed {
		return
	}
	b.enclave = nil
	b.destroyed = true
}
