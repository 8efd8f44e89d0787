package store

import (
	"fmt"

	"github.com/philippgille/gokv"
	"github.com/philippgille/gokv/encoding"
)

const (
	TypeSyncMap  = "syncmap"
	TypeFile     = "file"
	TypeBadgerDB = "badgerdb"
	TypeS3       = "s3"
)

func getStoreCodec(codec string) (encoding.Codec, error) {
	switch codec {
	case "":
		// Allowed, as gokv will pick its default Codec
		return nil, nil
	case "json":
		return encoding.JSON, nil
	case "gob":
		return encoding.Gob, nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}
}

// InitStore opens the kv store backing pinned documents and cached strategy
// lookups. An empty persistenceType means an in-memory store.
func InitStore(persistenceType string, persistenceOptions string) (gokv.Store, error) {
	switch persistenceType {
	case "", TypeSyncMap:
		return NewSyncMapStore(persistenceOptions)
	case TypeFile:
		return NewFileStore(persistenceOptions)
	case TypeBadgerDB:
		return NewBadgerDBStore(persistenceOptions)
	case TypeS3:
		return NewS3Store(persistenceOptions)
	default:
		return nil, fmt.Errorf("unsupported persistence type %s", persistenceType)
	}
}
