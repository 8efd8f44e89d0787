// Package pin stores JSON documents under content identifiers, the way an IPFS
// pinning service would, so that a content address published on L2 can be
// resolved back to the document it commits to.
package pin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/celer-network/goutils/log"
	"github.com/gowebpki/jcs"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/philippgille/gokv"
)

var ErrNotFound = errors.New("pinned document not found")

// Pinner publishes documents and resolves content identifiers.
type Pinner interface {
	Pin(ctx context.Context, v any) (string, error)
	Fetch(ctx context.Context, id string, out any) error
}

var prefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// ContentID returns the CIDv1 of the canonical JSON encoding of v and the
// encoded bytes it was computed over.
func ContentID(v any) (string, []byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("marshal document: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", nil, fmt.Errorf("canonicalize document: %w", err)
	}
	c, err := prefix.Sum(canonical)
	if err != nil {
		return "", nil, fmt.Errorf("hash document: %w", err)
	}
	return c.String(), canonical, nil
}

// Store is a Pinner over a gokv store. Identical documents map to the same
// identifier regardless of field order.
type Store struct {
	kv gokv.Store
}

var _ Pinner = (*Store)(nil)

func NewStore(kv gokv.Store) *Store {
	return &Store{kv: kv}
}

func (s *Store) Pin(ctx context.Context, v any) (string, error) {
	id, data, err := ContentID(v)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.kv.Set(id, data); err != nil {
		return "", fmt.Errorf("pin %s: %w", id, err)
	}
	log.Infof("pinned document %s (%d bytes)", id, len(data))
	return id, nil
}

// Fetch loads the document pinned under id into out after checking it still
// hashes to id.
func (s *Store) Fetch(ctx context.Context, id string, out any) error {
	c, err := cid.Decode(id)
	if err != nil {
		return fmt.Errorf("invalid content id %q: %w", id, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	var data []byte
	found, err := s.kv.Get(c.String(), &data)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", id, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sum, err := c.Prefix().Sum(data)
	if err != nil {
		return fmt.Errorf("hash %s: %w", id, err)
	}
	if !sum.Equals(c) {
		return fmt.Errorf("document under %s does not match its content id", id)
	}
	log.Debugf("fetched pinned document %s", id)
	return json.Unmarshal(data, out)
}
