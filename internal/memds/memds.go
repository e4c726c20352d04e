// Package memds is an in-memory implementation of the datastoreflex
// Datastore collaborator, for hermetic tests.
package memds

import (
	"context"
	"sync"

	w "github.com/CAVEconnectome/datastore-flex"
)

var _ w.Datastore = (*Datastore)(nil)

// New creates an empty in-memory datastore scoped to namespace.
func New(namespace string) *Datastore {
	return &Datastore{
		namespace: namespace,
		entities:  map[string]w.PropertyList{},
	}
}

type Datastore struct {
	m         sync.Mutex
	namespace string
	entities  map[string]w.PropertyList
	lastID    int64

	getCalls int
	putCalls int
}

func (d *Datastore) GetMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) error {
	d.m.Lock()
	defer d.m.Unlock()

	d.getCalls++

	merr := make(w.MultiError, len(keys))
	foundError := false
	for idx, key := range keys {
		ps, ok := d.entities[encodeKey(key)]
		if !ok {
			merr[idx] = w.ErrNoSuchEntity
			foundError = true
			continue
		}
		psList[idx] = append(w.PropertyList(nil), ps...)
	}

	if foundError {
		return merr
	}
	return nil
}

func (d *Datastore) PutMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) ([]w.Key, error) {
	d.m.Lock()
	defer d.m.Unlock()

	d.putCalls++

	newKeys := make([]w.Key, len(keys))
	for idx, key := range keys {
		if key.Incomplete() {
			d.lastID++
			key = d.idKeyLocked(key.Kind(), d.lastID, key.ParentKey())
		}
		d.entities[encodeKey(key)] = append(w.PropertyList(nil), psList[idx]...)
		newKeys[idx] = key
	}

	return newKeys, nil
}

func (d *Datastore) DeleteMulti(ctx context.Context, keys []w.Key) error {
	d.m.Lock()
	defer d.m.Unlock()

	for _, key := range keys {
		delete(d.entities, encodeKey(key))
	}

	return nil
}

func (d *Datastore) IncompleteKey(kind string, parent w.Key) w.Key {
	return &keyImpl{kind: kind, parent: parent, namespace: d.namespace}
}

func (d *Datastore) NameKey(kind, name string, parent w.Key) w.Key {
	return &keyImpl{kind: kind, name: name, parent: parent, namespace: d.namespace}
}

func (d *Datastore) IDKey(kind string, id int64, parent w.Key) w.Key {
	return d.idKeyLocked(kind, id, parent)
}

func (d *Datastore) idKeyLocked(kind string, id int64, parent w.Key) w.Key {
	return &keyImpl{kind: kind, id: id, parent: parent, namespace: d.namespace}
}

func (d *Datastore) Namespace() string {
	return d.namespace
}

func (d *Datastore) Close() error {
	return nil
}

// GetCalls returns how many GetMulti calls have been served.
func (d *Datastore) GetCalls() int {
	d.m.Lock()
	defer d.m.Unlock()
	return d.getCalls
}

// PutCalls returns how many PutMulti calls have been served.
func (d *Datastore) PutCalls() int {
	d.m.Lock()
	defer d.m.Unlock()
	return d.putCalls
}

func encodeKey(key w.Key) string {
	return key.Namespace() + ":" + key.String()
}
