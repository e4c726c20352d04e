package clouddatastore

import (
	"cloud.google.com/go/datastore"
	w "github.com/CAVEconnectome/datastore-flex"
)

func toOriginalKey(key w.Key) *datastore.Key {
	if key == nil {
		return nil
	}

	return &datastore.Key{
		Kind:      key.Kind(),
		ID:        key.ID(),
		Name:      key.Name(),
		Parent:    toOriginalKey(key.ParentKey()),
		Namespace: key.Namespace(),
	}
}

func toOriginalKeys(keys []w.Key) []*datastore.Key {
	if keys == nil {
		return nil
	}

	origKeys := make([]*datastore.Key, len(keys))
	for idx, key := range keys {
		origKeys[idx] = toOriginalKey(key)
	}

	return origKeys
}

func toWrapperKey(key *datastore.Key) *keyImpl {
	if key == nil {
		return nil
	}

	return &keyImpl{
		kind:      key.Kind,
		id:        key.ID,
		name:      key.Name,
		parent:    toWrapperKey(key.Parent),
		namespace: key.Namespace,
	}
}

func toWrapperKeys(keys []*datastore.Key) []w.Key {
	if keys == nil {
		return nil
	}

	wKeys := make([]w.Key, len(keys))
	for idx, key := range keys {
		wKeys[idx] = toWrapperKey(key)
	}

	return wKeys
}

func toOriginalPropertyList(ps w.PropertyList) datastore.PropertyList {
	if ps == nil {
		return nil
	}

	origPs := make(datastore.PropertyList, len(ps))
	for idx, p := range ps {
		origPs[idx] = datastore.Property{
			Name:    p.Name,
			Value:   toOriginalValue(p.Value),
			NoIndex: p.NoIndex,
		}
	}

	return origPs
}

func toWrapperPropertyList(origPs datastore.PropertyList) w.PropertyList {
	if origPs == nil {
		return nil
	}

	ps := make(w.PropertyList, len(origPs))
	for idx, p := range origPs {
		ps[idx] = w.Property{
			Name:    p.Name,
			Value:   toWrapperValue(p.Value),
			NoIndex: p.NoIndex,
		}
	}

	return ps
}

func toOriginalValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		origVs := make([]interface{}, 0, len(v))
		for _, elem := range v {
			origVs = append(origVs, toOriginalValue(elem))
		}
		return origVs

	case w.Key:
		return toOriginalKey(v)

	default:
		return v
	}
}

func toWrapperValue(v interface{}) interface{} {
	switch v := v.(type) {
	case []interface{}:
		wVs := make([]interface{}, 0, len(v))
		for _, elem := range v {
			wVs = append(wVs, toWrapperValue(elem))
		}
		return wVs

	case *datastore.Key:
		return toWrapperKey(v)

	default:
		return v
	}
}

func toWrapperError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch err := err.(type) {
	case datastore.MultiError:
		newErr := make(w.MultiError, 0, len(err))
		for _, elemErr := range err {
			if elemErr != nil {
				newErr = append(newErr, toWrapperError(op, elemErr))
				continue
			}
			newErr = append(newErr, nil)
		}
		return newErr
	}

	switch {
	case err == datastore.ErrNoSuchEntity:
		return w.ErrNoSuchEntity

	default:
		return &w.DatastoreError{Op: op, Err: err}
	}
}
