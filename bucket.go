package datastoreflex

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Object is one bucket object. Paths are URI-like, scheme included,
// e.g. "gs://my-bucket/segmentation/g1/u1".
type Object struct {
	Path            string
	Content         []byte
	ContentType     string
	ContentEncoding string
	CacheControl    string
}

// Bucket is the object storage collaborator. It owns authentication,
// transport and retry policy for object I/O.
type Bucket interface {
	// WriteMulti creates or overwrites the objects at their paths.
	WriteMulti(ctx context.Context, objects []*Object) error
	// ReadMulti returns a slice of Objects of the same length as paths.
	// When some paths fail it returns a MultiError of the same length;
	// the corresponding Object elements are nil.
	ReadMulti(ctx context.Context, paths []string) ([]*Object, error)
	Close() error
}

// BucketOpener creates a Bucket for paths of one URI scheme.
type BucketOpener func(ctx context.Context) (Bucket, error)

var bucketMu sync.RWMutex
var bucketOpeners = map[string]BucketOpener{}

// RegisterBucket makes a Bucket backend available for the given URI
// scheme. It is intended to be called from the init function of backend
// packages, in the manner of database/sql drivers.
func RegisterBucket(scheme string, opener BucketOpener) {
	bucketMu.Lock()
	defer bucketMu.Unlock()

	if opener == nil {
		panic("datastoreflex: RegisterBucket opener is nil")
	}
	if _, dup := bucketOpeners[scheme]; dup {
		panic("datastoreflex: RegisterBucket called twice for scheme " + scheme)
	}
	bucketOpeners[scheme] = opener
}

// BucketSchemes returns the registered scheme names, sorted.
func BucketSchemes() []string {
	bucketMu.RLock()
	defer bucketMu.RUnlock()

	schemes := make([]string, 0, len(bucketOpeners))
	for scheme := range bucketOpeners {
		schemes = append(schemes, scheme)
	}
	sort.Strings(schemes)
	return schemes
}

func openBucket(ctx context.Context, scheme string) (Bucket, error) {
	bucketMu.RLock()
	opener, ok := bucketOpeners[scheme]
	bucketMu.RUnlock()

	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("no bucket backend registered for scheme %q (forgot to import a backend package?)", scheme)}
	}

	return opener(ctx)
}

// PathScheme returns the URI scheme of a bucket path, e.g. "gs" for
// "gs://my-bucket/segmentation".
func PathScheme(path string) (string, error) {
	idx := strings.Index(path, "://")
	if idx < 1 {
		return "", &ConfigError{Reason: fmt.Sprintf("bucket path %q has no scheme", path)}
	}

	return path[:idx], nil
}
