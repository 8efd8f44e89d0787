package store

import "github.com/philippgille/gokv"

type prefixStore struct {
	inner  gokv.Store
	prefix string
}

// WithKeyPrefix namespaces every key of s, so several deployments can share
// one bucket or directory.
func WithKeyPrefix(s gokv.Store, prefix string) gokv.Store {
	if prefix == "" {
		return s
	}
	return &prefixStore{inner: s, prefix: prefix}
}

func (p *prefixStore) Set(k string, v interface{}) error {
	return p.inner.Set(p.prefix+k, v)
}

func (p *prefixStore) Get(k string, v interface{}) (bool, error) {
	return p.inner.Get(p.prefix+k, v)
}

func (p *prefixStore) Delete(k string) error {
	return p.inner.Delete(p.prefix + k)
}

func (p *prefixStore) Close() error {
	return p.inner.Close()
}
