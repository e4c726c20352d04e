package datastoreflex

import "context"

// An Option configures the redirector Client.
type Option interface {
	Apply(*Client)
}

// WithLogf sets the log function used for operation traces.
func WithLogf(logf func(ctx context.Context, format string, args ...interface{})) Option {
	return &withLogf{logf}
}

type withLogf struct {
	logf func(ctx context.Context, format string, args ...interface{})
}

func (w *withLogf) Apply(o *Client) {
	o.logf = w.logf
}

// WithCacheControl sets the Cache-Control metadata applied to every
// bucket object written. The default is taken from the CACHE_CONTROL
// environment variable, falling back to "public; max-age=3600".
func WithCacheControl(value string) Option {
	return &withCacheControl{value}
}

type withCacheControl struct{ s string }

func (w *withCacheControl) Apply(o *Client) {
	o.cacheControl = w.s
}

// WithCompressionLevel sets the gzip level used for bucket object
// payloads. The default is 6.
func WithCompressionLevel(level int) Option {
	return &withCompressionLevel{level}
}

type withCompressionLevel struct{ level int }

func (w *withCompressionLevel) Apply(o *Client) {
	o.compression = true
	o.compressionLevel = w.level
}

// WithoutCompression stores bucket object payloads uncompressed.
func WithoutCompression() Option {
	return &withoutCompression{}
}

type withoutCompression struct{}

func (w *withoutCompression) Apply(o *Client) {
	o.compression = false
}

// WithBucket injects a pre-opened Bucket for the given URI scheme instead
// of going through the registered opener. The Client takes ownership and
// closes it on Close.
func WithBucket(scheme string, b Bucket) Option {
	return &withBucket{scheme, b}
}

type withBucket struct {
	scheme string
	b      Bucket
}

func (w *withBucket) Apply(o *Client) {
	o.buckets[w.scheme] = w.b
}
