package membucket

import (
	"context"
	"sync"

	w "github.com/CAVEconnectome/datastore-flex"
)

// Scheme is the URI scheme served by this backend.
const Scheme = "mem"

var _ w.Bucket = (*Bucket)(nil)

func init() {
	w.RegisterBucket(Scheme, func(ctx context.Context) (w.Bucket, error) {
		return New(), nil
	})
}

// New creates an empty in-memory bucket.
func New() *Bucket {
	return &Bucket{objects: map[string]*w.Object{}}
}

// Bucket keeps objects in process memory, keyed by full path. It serves
// mem:// paths in tests and local development; content and attributes
// are stored exactly as written, without transcoding.
type Bucket struct {
	m       sync.Mutex
	objects map[string]*w.Object
}

func (b *Bucket) WriteMulti(ctx context.Context, objects []*w.Object) error {
	b.m.Lock()
	defer b.m.Unlock()

	for _, obj := range objects {
		cp := *obj
		cp.Content = append([]byte(nil), obj.Content...)
		b.objects[obj.Path] = &cp
	}

	return nil
}

func (b *Bucket) ReadMulti(ctx context.Context, paths []string) ([]*w.Object, error) {
	b.m.Lock()
	defer b.m.Unlock()

	objs := make([]*w.Object, len(paths))
	merr := make(w.MultiError, len(paths))
	foundError := false
	for idx, path := range paths {
		obj, ok := b.objects[path]
		if !ok {
			merr[idx] = &w.BucketError{Op: "read", Path: path, Err: w.ErrNoSuchObject}
			foundError = true
			continue
		}
		cp := *obj
		cp.Content = append([]byte(nil), obj.Content...)
		objs[idx] = &cp
	}

	if foundError {
		return objs, merr
	}
	return objs, nil
}

func (b *Bucket) Close() error {
	return nil
}

// Len returns the number of stored objects.
func (b *Bucket) Len() int {
	b.m.Lock()
	defer b.m.Unlock()
	return len(b.objects)
}
