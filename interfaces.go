package datastoreflex

import (
	"context"
)

// FromContext is set by the datastore backend package imported for its
// side effect (e.g. clouddatastore).
var FromContext DatastoreGenerator

// DatastoreGenerator creates a Datastore collaborator.
type DatastoreGenerator func(ctx context.Context, opts ...ClientOption) (Datastore, error)

// Datastore is the key-value datastore collaborator. It owns entity
// durability, transactions and retry policy; this package only reads and
// writes PropertyLists through it.
type Datastore interface {
	GetMulti(ctx context.Context, keys []Key, psList []PropertyList) error
	PutMulti(ctx context.Context, keys []Key, psList []PropertyList) ([]Key, error)
	DeleteMulti(ctx context.Context, keys []Key) error

	IncompleteKey(kind string, parent Key) Key
	NameKey(kind, name string, parent Key) Key
	IDKey(kind string, id int64, parent Key) Key

	Namespace() string

	Close() error
}

type Key interface {
	Kind() string
	ID() int64
	Name() string
	ParentKey() Key
	Namespace() string

	String() string
	Equal(o Key) bool
	Incomplete() bool
}
