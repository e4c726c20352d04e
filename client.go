package datastoreflex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

const (
	defaultCacheControl     = "public; max-age=3600"
	defaultCompressionLevel = 6
)

// NewClient wraps a datastore collaborator in a config-driven redirector.
// Bucket backends are opened lazily, by the URI scheme of each configured
// bucket path.
func NewClient(ds Datastore, opts ...Option) *Client {
	c := &Client{
		ds:               ds,
		buckets:          map[string]Bucket{},
		compression:      true,
		compressionLevel: defaultCompressionLevel,
	}

	for _, opt := range opts {
		opt.Apply(c)
	}

	if c.logf == nil {
		c.logf = func(ctx context.Context, format string, args ...interface{}) {}
	}
	if c.cacheControl == "" {
		c.cacheControl = os.Getenv("CACHE_CONTROL")
		if c.cacheControl == "" {
			c.cacheControl = defaultCacheControl
		}
	}

	return c
}

// Client redirects configured property values to bucket objects on Put
// and resolves them back on Get. Every other concern is delegated to the
// wrapped collaborators, sequentially, with no retries of its own.
//
// The column config is read once and kept until AddConfig replaces it.
// Calling AddConfig concurrently with in-flight Put or Get calls is the
// caller's responsibility to avoid.
type Client struct {
	ds Datastore

	m       sync.Mutex
	config  Config
	buckets map[string]Bucket

	logf             func(ctx context.Context, format string, args ...interface{})
	cacheControl     string
	compression      bool
	compressionLevel int
}

func (c *Client) configKey() Key {
	return c.ds.NameKey(c.ds.Namespace()+configKindSuffix, configKeyName, nil)
}

// Config returns the current column config, reading the config entity on
// first use. A namespace that has never been configured yields an empty
// config, not an error.
func (c *Client) Config(ctx context.Context) (Config, error) {
	c.m.Lock()
	defer c.m.Unlock()
	return c.configLocked(ctx)
}

func (c *Client) configLocked(ctx context.Context) (Config, error) {
	if c.config != nil {
		return c.config, nil
	}

	psList := make([]PropertyList, 1)
	err := c.ds.GetMulti(ctx, []Key{c.configKey()}, psList)
	if err != nil && !isNoSuchEntity(err) {
		return nil, err
	}

	cfg := Config{}
	if err == nil {
		raw, _ := psList[0].Value(configValueField)
		s, ok := raw.(string)
		if !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("config entity %s field is not a string", configValueField)}
		}
		cfg, err = decodeConfig(s)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	c.config = cfg
	c.logf(ctx, "datastoreflex.Config: loaded %d configured properties", len(cfg))
	return cfg, nil
}

// AddConfig validates cfg, merges it into the stored column config and
// persists the result. Later calls overwrite earlier entries for the same
// property name. No bucket I/O is performed.
func (c *Client) AddConfig(ctx context.Context, cfg Config) (*Entity, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c.m.Lock()
	defer c.m.Unlock()

	current, err := c.configLocked(ctx)
	if err != nil {
		return nil, err
	}

	merged := current.clone()
	for name, pc := range cfg {
		merged[name] = pc
	}

	encoded, err := encodeConfig(merged)
	if err != nil {
		return nil, err
	}

	key := c.configKey()
	entity := &Entity{Key: key}
	entity.Properties.Set(configValueField, encoded, true)

	if _, err := c.ds.PutMulti(ctx, []Key{key}, []PropertyList{entity.Properties}); err != nil {
		// stored state unknown, force a re-read on next use
		c.config = nil
		return nil, err
	}

	c.config = merged
	c.logf(ctx, "datastoreflex.AddConfig: %d properties configured", len(merged))
	return entity, nil
}

// Put is the single entity version of PutMulti.
func (c *Client) Put(ctx context.Context, e *Entity) (Key, error) {
	keys, err := c.PutMulti(ctx, []*Entity{e})
	if merr, ok := err.(MultiError); ok {
		return nil, merr[0]
	} else if err != nil {
		return nil, err
	}

	return keys[0], nil
}

// PutMulti writes the configured property values of each entity to bucket
// objects, replaces each in-record value with the derived object path,
// then delegates the mutated entities to the datastore collaborator.
//
// All object paths are derived before any I/O: a missing path element
// field fails the whole call with *MissingFieldError and nothing is
// written. The bucket writes and the datastore write are not
// transactionally coupled.
func (c *Client) PutMulti(ctx context.Context, entities []*Entity) ([]Key, error) {
	cfg, err := c.Config(ctx)
	if err != nil {
		return nil, err
	}

	type redirect struct {
		entity *Entity
		name   string
		obj    *Object
	}
	var redirects []redirect
	for _, e := range entities {
		for _, name := range cfg.PropertyNames() {
			value, ok := e.Property(name)
			if !ok {
				continue
			}
			path, err := derivePath(name, cfg[name], e.Properties)
			if err != nil {
				return nil, err
			}
			obj, err := c.buildObject(name, path, value)
			if err != nil {
				return nil, err
			}
			redirects = append(redirects, redirect{entity: e, name: name, obj: obj})
		}
	}

	byScheme := map[string][]*Object{}
	var order []string
	for _, r := range redirects {
		scheme, err := PathScheme(r.obj.Path)
		if err != nil {
			return nil, err
		}
		if _, ok := byScheme[scheme]; !ok {
			order = append(order, scheme)
		}
		byScheme[scheme] = append(byScheme[scheme], r.obj)
	}
	for _, scheme := range order {
		b, err := c.bucket(ctx, scheme)
		if err != nil {
			return nil, err
		}
		if err := b.WriteMulti(ctx, byScheme[scheme]); err != nil {
			return nil, err
		}
		c.logf(ctx, "datastoreflex.PutMulti: wrote %d objects via %s", len(byScheme[scheme]), scheme)
	}

	for _, r := range redirects {
		r.entity.Properties.Set(r.name, r.obj.Path, true)
	}

	keys := make([]Key, len(entities))
	psList := make([]PropertyList, len(entities))
	for idx, e := range entities {
		keys[idx] = e.Key
		psList[idx] = e.Properties
	}

	newKeys, err := c.ds.PutMulti(ctx, keys, psList)
	if err != nil {
		return nil, err
	}
	for idx, e := range entities {
		e.Key = newKeys[idx]
	}

	return newKeys, nil
}

// Get is the single entity version of GetMulti.
func (c *Client) Get(ctx context.Context, key Key) (*Entity, error) {
	entities, err := c.GetMulti(ctx, []Key{key})
	if merr, ok := err.(MultiError); ok {
		return nil, merr[0]
	} else if err != nil {
		return nil, err
	}

	return entities[0], nil
}

// GetMulti retrieves the raw entities, re-derives the object path of each
// configured property from its sibling fields, and substitutes the bucket
// object content back into properties whose stored value carries the
// path reference. Configured properties stored inline, and properties not
// configured at all, pass through unmodified.
//
// When the datastore collaborator reports per-key failures, the returned
// MultiError is aligned with keys and redirection is still resolved for
// the entities that were found.
func (c *Client) GetMulti(ctx context.Context, keys []Key) ([]*Entity, error) {
	cfg, err := c.Config(ctx)
	if err != nil {
		return nil, err
	}

	psList := make([]PropertyList, len(keys))
	dsErr := c.ds.GetMulti(ctx, keys, psList)
	var merr MultiError
	if dsErr != nil {
		var ok bool
		if merr, ok = dsErr.(MultiError); !ok {
			return nil, dsErr
		}
	}

	entities := make([]*Entity, len(keys))
	for idx := range keys {
		if merr != nil && merr[idx] != nil {
			continue
		}
		entities[idx] = &Entity{Key: keys[idx], Properties: psList[idx]}
	}

	type redirect struct {
		entity *Entity
		name   string
		path   string
	}
	var redirects []redirect
	for _, e := range entities {
		if e == nil {
			continue
		}
		for _, name := range cfg.PropertyNames() {
			value, ok := e.Property(name)
			if !ok {
				continue
			}
			path, err := derivePath(name, cfg[name], e.Properties)
			if err != nil {
				return nil, err
			}
			if ref, ok := value.(string); !ok || ref != path {
				// stored inline, no reference to resolve
				continue
			}
			redirects = append(redirects, redirect{entity: e, name: name, path: path})
		}
	}

	byScheme := map[string][]int{}
	var order []string
	for idx, r := range redirects {
		scheme, err := PathScheme(r.path)
		if err != nil {
			return nil, err
		}
		if _, ok := byScheme[scheme]; !ok {
			order = append(order, scheme)
		}
		byScheme[scheme] = append(byScheme[scheme], idx)
	}
	for _, scheme := range order {
		idxs := byScheme[scheme]
		paths := make([]string, len(idxs))
		for i, ri := range idxs {
			paths[i] = redirects[ri].path
		}

		b, err := c.bucket(ctx, scheme)
		if err != nil {
			return nil, err
		}
		objs, err := b.ReadMulti(ctx, paths)
		if err != nil {
			return nil, err
		}

		for i, ri := range idxs {
			r := redirects[ri]
			value, err := objectValue(objs[i])
			if err != nil {
				return nil, err
			}
			r.entity.Properties.Set(r.name, value, true)
		}
		c.logf(ctx, "datastoreflex.GetMulti: resolved %d objects via %s", len(idxs), scheme)
	}

	if merr != nil {
		return entities, merr
	}
	return entities, nil
}

// Delete passes through to the datastore collaborator. Bucket objects
// referenced by the entity are left in place.
func (c *Client) Delete(ctx context.Context, key Key) error {
	err := c.DeleteMulti(ctx, []Key{key})
	if merr, ok := err.(MultiError); ok {
		return merr[0]
	}
	return err
}

// DeleteMulti passes through to the datastore collaborator.
func (c *Client) DeleteMulti(ctx context.Context, keys []Key) error {
	return c.ds.DeleteMulti(ctx, keys)
}

// Datastore returns the wrapped datastore collaborator.
func (c *Client) Datastore() Datastore {
	return c.ds
}

// Close closes the opened bucket backends and the datastore collaborator.
func (c *Client) Close() error {
	c.m.Lock()
	defer c.m.Unlock()

	var errs []error
	for scheme, b := range c.buckets {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(c.buckets, scheme)
	}
	if err := c.ds.Close(); err != nil {
		errs = append(errs, err)
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return MultiError(errs)
}

func (c *Client) bucket(ctx context.Context, scheme string) (Bucket, error) {
	c.m.Lock()
	defer c.m.Unlock()

	if b, ok := c.buckets[scheme]; ok {
		return b, nil
	}

	b, err := openBucket(ctx, scheme)
	if err != nil {
		return nil, err
	}
	c.buckets[scheme] = b
	return b, nil
}

func (c *Client) buildObject(name, path string, value interface{}) (*Object, error) {
	obj := &Object{Path: path, CacheControl: c.cacheControl}

	switch v := value.(type) {
	case string:
		obj.Content = []byte(v)
		obj.ContentType = "text/plain; charset=utf-8"
	case []byte:
		obj.Content = v
		obj.ContentType = "application/octet-stream"
	default:
		return nil, &ConfigError{Property: name, Reason: fmt.Sprintf("value of type %T cannot be redirected to a bucket", value)}
	}

	if c.compression {
		var buf bytes.Buffer
		zw, err := gzip.NewWriterLevel(&buf, c.compressionLevel)
		if err != nil {
			return nil, &ConfigError{Property: name, Reason: err.Error()}
		}
		if _, err := zw.Write(obj.Content); err != nil {
			return nil, &BucketError{Op: "compress", Path: path, Err: err}
		}
		if err := zw.Close(); err != nil {
			return nil, &BucketError{Op: "compress", Path: path, Err: err}
		}
		obj.Content = buf.Bytes()
		obj.ContentEncoding = "gzip"
	}

	return obj, nil
}

// derivePath joins the bucket path with the entity's path element field
// values. The same sibling values always produce the same path; repeated
// writes overwrite the same object.
func derivePath(name string, pc PropertyConfig, ps PropertyList) (string, error) {
	elems := make([]string, 0, len(pc.PathElements)+1)
	elems = append(elems, strings.TrimSuffix(pc.BucketPath, "/"))
	for _, field := range pc.PathElements {
		v, ok := ps.Value(field)
		if !ok {
			return "", &MissingFieldError{Property: name, Field: field}
		}
		s, err := pathElement(v)
		if err != nil {
			return "", &MissingFieldError{Property: name, Field: field, Reason: err.Error()}
		}
		elems = append(elems, s)
	}
	return strings.Join(elems, "/"), nil
}

func pathElement(v interface{}) (string, error) {
	switch v := v.(type) {
	case string:
		if v == "" {
			return "", errors.New("empty value")
		}
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return "", fmt.Errorf("value of type %T cannot be used in an object path", v)
}

func objectValue(obj *Object) (interface{}, error) {
	content := obj.Content
	if obj.ContentEncoding == "gzip" {
		zr, err := gzip.NewReader(bytes.NewReader(content))
		if err != nil {
			return nil, &BucketError{Op: "decompress", Path: obj.Path, Err: err}
		}
		content, err = io.ReadAll(zr)
		if err != nil {
			return nil, &BucketError{Op: "decompress", Path: obj.Path, Err: err}
		}
		if err := zr.Close(); err != nil {
			return nil, &BucketError{Op: "decompress", Path: obj.Path, Err: err}
		}
	}

	if strings.HasPrefix(obj.ContentType, "text/plain") {
		return string(content), nil
	}
	return content, nil
}

func isNoSuchEntity(err error) bool {
	if merr, ok := err.(MultiError); ok {
		for _, e := range merr {
			if e != nil && e != ErrNoSuchEntity {
				return false
			}
		}
		return true
	}
	return err == ErrNoSuchEntity
}
