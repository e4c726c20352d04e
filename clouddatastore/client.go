package clouddatastore

import (
	"context"

	"cloud.google.com/go/datastore"
	w "github.com/CAVEconnectome/datastore-flex"
)

var _ w.Datastore = (*datastoreImpl)(nil)

type datastoreImpl struct {
	client    *datastore.Client
	namespace string
}

func (d *datastoreImpl) GetMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) error {
	origKeys := toOriginalKeys(keys)
	origPss := make([]datastore.PropertyList, len(keys))

	err := d.client.GetMulti(ctx, origKeys, origPss)
	if err != nil {
		if merr, ok := err.(datastore.MultiError); ok {
			for idx, elemErr := range merr {
				if elemErr != nil {
					continue
				}
				psList[idx] = toWrapperPropertyList(origPss[idx])
			}
			return toWrapperError("get", err)
		}
		return toWrapperError("get", err)
	}

	for idx := range keys {
		psList[idx] = toWrapperPropertyList(origPss[idx])
	}

	return nil
}

func (d *datastoreImpl) PutMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) ([]w.Key, error) {
	origKeys := toOriginalKeys(keys)
	origPss := make([]datastore.PropertyList, len(psList))
	for idx, ps := range psList {
		origPss[idx] = toOriginalPropertyList(ps)
	}

	respKeys, err := d.client.PutMulti(ctx, origKeys, origPss)
	if err != nil {
		return nil, toWrapperError("put", err)
	}

	return toWrapperKeys(respKeys), nil
}

func (d *datastoreImpl) DeleteMulti(ctx context.Context, keys []w.Key) error {
	err := d.client.DeleteMulti(ctx, toOriginalKeys(keys))
	if err != nil {
		return toWrapperError("delete", err)
	}

	return nil
}

func (d *datastoreImpl) IncompleteKey(kind string, parent w.Key) w.Key {
	key := datastore.IncompleteKey(kind, toOriginalKey(parent))
	key.Namespace = d.namespace
	return toWrapperKey(key)
}

func (d *datastoreImpl) NameKey(kind, name string, parent w.Key) w.Key {
	key := datastore.NameKey(kind, name, toOriginalKey(parent))
	key.Namespace = d.namespace
	return toWrapperKey(key)
}

func (d *datastoreImpl) IDKey(kind string, id int64, parent w.Key) w.Key {
	key := datastore.IDKey(kind, id, toOriginalKey(parent))
	key.Namespace = d.namespace
	return toWrapperKey(key)
}

func (d *datastoreImpl) Namespace() string {
	return d.namespace
}

func (d *datastoreImpl) Close() error {
	return d.client.Close()
}
