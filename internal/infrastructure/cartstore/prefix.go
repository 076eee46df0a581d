package cartstore

import (
	"context"
	"strings"

	"github.com/outpost-commerce/backend/internal/domain/checkout"
)

// prefixStorage namespaces every slot under a fixed prefix so multiple
// cart sessions can share one underlying storage.
type prefixStorage struct {
	inner  checkout.Storage
	prefix string
}

// SlotPrefix wraps storage so all slots are read and written under prefix
func SlotPrefix(inner checkout.Storage, prefix string) checkout.Storage {
	return &prefixStorage{inner: inner, prefix: prefix}
}

func (p *prefixStorage) Read(ctx context.Context, slot string) ([]byte, error) {
	return p.inner.Read(ctx, p.prefix+slot)
}

func (p *prefixStorage) Write(ctx context.Context, slot string, data []byte) error {
	return p.inner.Write(ctx, p.prefix+slot, data)
}

func (p *prefixStorage) Delete(ctx context.Context, slot string) error {
	return p.inner.Delete(ctx, p.prefix+slot)
}

// SafeToken reduces a client-supplied session ID to characters that are
// safe to embed in a file name. Session IDs arrive in headers and cookies
// and must never be trusted as path components.
func SafeToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "anonymous"
	}
	return b.String()
}
