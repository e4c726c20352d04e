package testutils

import (
	"context"
	"testing"

	datastoreflex "github.com/CAVEconnectome/datastore-flex"
	"github.com/CAVEconnectome/datastore-flex/internal/memds"
	"github.com/CAVEconnectome/datastore-flex/membucket"
)

// Namespace used by all hermetic tests.
const Namespace = "fly"

// SetupFlexClient wires a redirector Client to in-memory collaborators.
// The returned memds and membucket instances allow direct inspection of
// what was stored.
func SetupFlexClient(t *testing.T, opts ...datastoreflex.Option) (context.Context, *datastoreflex.Client, *memds.Datastore, *membucket.Bucket, func()) {
	t.Helper()

	ctx := context.Background()
	ds := memds.New(Namespace)
	bucket := membucket.New()

	opts = append([]datastoreflex.Option{datastoreflex.WithBucket(membucket.Scheme, bucket)}, opts...)
	client := datastoreflex.NewClient(ds, opts...)

	return ctx, client, ds, bucket, func() {
		if err := client.Close(); err != nil {
			t.Fatal(err)
		}
	}
}
