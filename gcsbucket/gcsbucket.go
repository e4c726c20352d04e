package gcsbucket

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	w "github.com/CAVEconnectome/datastore-flex"
)

// Scheme is the URI scheme served by this backend.
const Scheme = "gs"

var _ w.Bucket = (*bucketImpl)(nil)

func init() {
	w.RegisterBucket(Scheme, Open)
}

// Open creates a Bucket backed by Google Cloud Storage using application
// default credentials. The Client opens it lazily on the first gs:// path.
func Open(ctx context.Context) (w.Bucket, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, &w.BucketError{Op: "open", Path: Scheme + "://", Err: err}
	}
	return &bucketImpl{client: client}, nil
}

// New wraps an existing storage client, e.g. one built with custom
// options. Useful together with datastoreflex.WithBucket.
func New(client *storage.Client) w.Bucket {
	return &bucketImpl{client: client}
}

type bucketImpl struct {
	client *storage.Client
}

func (b *bucketImpl) WriteMulti(ctx context.Context, objects []*w.Object) error {
	for _, obj := range objects {
		bucket, name, err := splitPath(obj.Path)
		if err != nil {
			return err
		}

		wc := b.client.Bucket(bucket).Object(name).NewWriter(ctx)
		wc.ContentType = obj.ContentType
		wc.ContentEncoding = obj.ContentEncoding
		wc.CacheControl = obj.CacheControl
		if _, err := wc.Write(obj.Content); err != nil {
			wc.Close()
			return &w.BucketError{Op: "write", Path: obj.Path, Err: err}
		}
		if err := wc.Close(); err != nil {
			return &w.BucketError{Op: "write", Path: obj.Path, Err: err}
		}
	}

	return nil
}

func (b *bucketImpl) ReadMulti(ctx context.Context, paths []string) ([]*w.Object, error) {
	objs := make([]*w.Object, len(paths))
	merr := make(w.MultiError, len(paths))
	foundError := false
	for idx, path := range paths {
		obj, err := b.read(ctx, path)
		if err != nil {
			merr[idx] = err
			foundError = true
			continue
		}
		objs[idx] = obj
	}

	if foundError {
		return objs, merr
	}
	return objs, nil
}

func (b *bucketImpl) read(ctx context.Context, path string) (*w.Object, error) {
	bucket, name, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	// ReadCompressed keeps gzip encoded objects as stored; the redirector
	// decides about decompression itself, uniformly across backends.
	r, err := b.client.Bucket(bucket).Object(name).ReadCompressed(true).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, &w.BucketError{Op: "read", Path: path, Err: w.ErrNoSuchObject}
	} else if err != nil {
		return nil, &w.BucketError{Op: "read", Path: path, Err: err}
	}
	defer r.Close()

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &w.BucketError{Op: "read", Path: path, Err: err}
	}

	return &w.Object{
		Path:            path,
		Content:         content,
		ContentType:     r.Attrs.ContentType,
		ContentEncoding: r.Attrs.ContentEncoding,
		CacheControl:    r.Attrs.CacheControl,
	}, nil
}

func (b *bucketImpl) Close() error {
	return b.client.Close()
}

func splitPath(path string) (bucket, name string, err error) {
	rest := strings.TrimPrefix(path, Scheme+"://")
	if rest == path {
		return "", "", &w.BucketError{Op: "parse", Path: path, Err: fmt.Errorf("not a %s:// path", Scheme)}
	}

	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", &w.BucketError{Op: "parse", Path: path, Err: fmt.Errorf("want %s://bucket/object", Scheme)}
	}

	return parts[0], parts[1], nil
}
