package flexlog

import (
	"context"
	"strings"
	"sync"

	w "github.com/CAVEconnectome/datastore-flex"
)

// Logf is the log function shared by the decorators.
type Logf func(ctx context.Context, format string, args ...interface{})

var _ w.Datastore = (*dsLogger)(nil)
var _ w.Bucket = (*bucketLogger)(nil)

// NewDatastore wraps a Datastore collaborator so that every operation is
// logged with a per-logger sequence number.
func NewDatastore(ds w.Datastore, prefix string, logf Logf) w.Datastore {
	return &dsLogger{ds: ds, prefix: prefix, logf: logf, counter: 1}
}

type dsLogger struct {
	ds     w.Datastore
	prefix string
	logf   Logf

	m       sync.Mutex
	counter int
}

func (l *dsLogger) next() int {
	l.m.Lock()
	defer l.m.Unlock()
	cnt := l.counter
	l.counter++
	return cnt
}

func keysToString(keys []w.Key) string {
	keyStrings := make([]string, 0, len(keys))
	for _, key := range keys {
		keyStrings = append(keyStrings, key.String())
	}

	return strings.Join(keyStrings, ", ")
}

func (l *dsLogger) GetMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) error {
	cnt := l.next()
	l.logf(ctx, l.prefix+"GetMulti #%d, len(keys)=%d, keys=[%s]", cnt, len(keys), keysToString(keys))

	err := l.ds.GetMulti(ctx, keys, psList)
	if err != nil {
		l.logf(ctx, l.prefix+"GetMulti #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *dsLogger) PutMulti(ctx context.Context, keys []w.Key, psList []w.PropertyList) ([]w.Key, error) {
	cnt := l.next()
	l.logf(ctx, l.prefix+"PutMulti #%d, len(keys)=%d, keys=[%s]", cnt, len(keys), keysToString(keys))

	keys, err := l.ds.PutMulti(ctx, keys, psList)
	if err == nil {
		l.logf(ctx, l.prefix+"PutMulti #%d, keys=[%s]", cnt, keysToString(keys))
	} else {
		l.logf(ctx, l.prefix+"PutMulti #%d, err=%s", cnt, err.Error())
	}

	return keys, err
}

func (l *dsLogger) DeleteMulti(ctx context.Context, keys []w.Key) error {
	cnt := l.next()
	l.logf(ctx, l.prefix+"DeleteMulti #%d, len(keys)=%d, keys=[%s]", cnt, len(keys), keysToString(keys))

	err := l.ds.DeleteMulti(ctx, keys)
	if err != nil {
		l.logf(ctx, l.prefix+"DeleteMulti #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *dsLogger) IncompleteKey(kind string, parent w.Key) w.Key {
	return l.ds.IncompleteKey(kind, parent)
}

func (l *dsLogger) NameKey(kind, name string, parent w.Key) w.Key {
	return l.ds.NameKey(kind, name, parent)
}

func (l *dsLogger) IDKey(kind string, id int64, parent w.Key) w.Key {
	return l.ds.IDKey(kind, id, parent)
}

func (l *dsLogger) Namespace() string {
	return l.ds.Namespace()
}

func (l *dsLogger) Close() error {
	return l.ds.Close()
}

// NewBucket wraps a Bucket collaborator so that every operation is logged
// with a per-logger sequence number.
func NewBucket(b w.Bucket, prefix string, logf Logf) w.Bucket {
	return &bucketLogger{b: b, prefix: prefix, logf: logf, counter: 1}
}

type bucketLogger struct {
	b      w.Bucket
	prefix string
	logf   Logf

	m       sync.Mutex
	counter int
}

func (l *bucketLogger) next() int {
	l.m.Lock()
	defer l.m.Unlock()
	cnt := l.counter
	l.counter++
	return cnt
}

func (l *bucketLogger) WriteMulti(ctx context.Context, objects []*w.Object) error {
	cnt := l.next()

	paths := make([]string, 0, len(objects))
	for _, obj := range objects {
		paths = append(paths, obj.Path)
	}
	l.logf(ctx, l.prefix+"WriteMulti #%d, len(objects)=%d, paths=[%s]", cnt, len(objects), strings.Join(paths, ", "))

	err := l.b.WriteMulti(ctx, objects)
	if err != nil {
		l.logf(ctx, l.prefix+"WriteMulti #%d, err=%s", cnt, err.Error())
	}

	return err
}

func (l *bucketLogger) ReadMulti(ctx context.Context, paths []string) ([]*w.Object, error) {
	cnt := l.next()
	l.logf(ctx, l.prefix+"ReadMulti #%d, len(paths)=%d, paths=[%s]", cnt, len(paths), strings.Join(paths, ", "))

	objs, err := l.b.ReadMulti(ctx, paths)
	if err != nil {
		l.logf(ctx, l.prefix+"ReadMulti #%d, err=%s", cnt, err.Error())
	}

	return objs, err
}

func (l *bucketLogger) Close() error {
	return l.b.Close()
}
