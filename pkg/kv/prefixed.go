package kv

import "context"

type prefixed struct {
	prefix string
	next   Backend
}

// Prefixed namespaces every key of next with prefix. It partitions one
// physical backend between accounts while domain keys stay unchanged.
func Prefixed(next Backend, prefix string) Backend {
	if prefix == "" {
		return next
	}
	return &prefixed{prefix: prefix, next: next}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Delete(ctx context.Context, key string) error {
	return p.next.Delete(ctx, p.prefix+key)
}
