// Implements the kv stores kept on the local host: in-memory, one file per
// key, or an embedded BadgerDB.
package store

import (
	"encoding/json"
	"fmt"

	"github.com/philippgille/gokv"
	"github.com/philippgille/gokv/badgerdb"
	"github.com/philippgille/gokv/encoding"
	"github.com/philippgille/gokv/file"
	"github.com/philippgille/gokv/syncmap"
)

type LocalStoreOptions struct {
	Dir           string `json:"dir"`
	FileExtension string `json:"file_extension"`
	KeyPrefix     string `json:"key_prefix"`
	Codec         string `json:"codec"`
}

func parseLocalOptions(optionsJSON string) (LocalStoreOptions, encoding.Codec, error) {
	var options LocalStoreOptions
	if optionsJSON == "" {
		return options, nil, nil
	}
	if err := json.Unmarshal([]byte(optionsJSON), &options); err != nil {
		return options, nil, fmt.Errorf("json.Unmarshal err: %w", err)
	}
	codec, err := getStoreCodec(options.Codec)
	if err != nil {
		return options, nil, fmt.Errorf("getStoreCodec err: %w", err)
	}
	return options, codec, nil
}

func NewSyncMapStore(optionsJSON string) (gokv.Store, error) {
	options, codec, err := parseLocalOptions(optionsJSON)
	if err != nil {
		return nil, err
	}
	if codec == nil {
		codec = syncmap.DefaultOptions.Codec
	}
	return WithKeyPrefix(syncmap.NewStore(syncmap.Options{Codec: codec}), options.KeyPrefix), nil
}

func NewFileStore(optionsJSON string) (gokv.Store, error) {
	options, codec, err := parseLocalOptions(optionsJSON)
	if err != nil {
		return nil, err
	}
	fo := file.DefaultOptions
	if options.Dir != "" {
		fo.Directory = options.Dir
	}
	if options.FileExtension != "" {
		ext := options.FileExtension
		fo.FilenameExtension = &ext
	}
	if codec != nil {
		fo.Codec = codec
	}
	s, err := file.NewStore(fo)
	if err != nil {
		return nil, fmt.Errorf("file.NewStore err: %w", err)
	}
	return WithKeyPrefix(s, options.KeyPrefix), nil
}

func NewBadgerDBStore(optionsJSON string) (gokv.Store, error) {
	options, codec, err := parseLocalOptions(optionsJSON)
	if err != nil {
		return nil, err
	}
	bo := badgerdb.DefaultOptions
	if options.Dir != "" {
		bo.Dir = options.Dir
	}
	if codec != nil {
		bo.Codec = codec
	}
	s, err := badgerdb.NewStore(bo)
	if err != nil {
		return nil, fmt.Errorf("badgerdb.NewStore err: %w", err)
	}
	return WithKeyPrefix(s, options.KeyPrefix), nil
}
