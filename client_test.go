package datastoreflex_test

import (
	"bytes"
	"errors"
	"testing"

	datastoreflex "github.com/CAVEconnectome/datastore-flex"
	"github.com/CAVEconnectome/datastore-flex/internal/testutils"
	"github.com/CAVEconnectome/datastore-flex/membucket"
)

func segmentationConfig() datastoreflex.Config {
	return datastoreflex.Config{
		"v1": {
			BucketPath:   "mem://b",
			PathElements: []string{"group_id", "user_id"},
		},
	}
}

func newRow(client *datastoreflex.Client, name string, value interface{}) *datastoreflex.Entity {
	e := &datastoreflex.Entity{Key: client.Datastore().NameKey("Row", name, nil)}
	e.SetProperty("group_id", "g1")
	e.SetProperty("user_id", "u1")
	e.SetProperty("v1", value)
	return e
}

func TestClient_PutGetRoundTrip(t *testing.T) {
	ctx, client, ds, bucket, cleanUp := testutils.SetupFlexClient(t, datastoreflex.WithoutCompression())
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	e := newRow(client, "r1", "hello")
	key, err := client.Put(ctx, e)
	if err != nil {
		t.Fatal(err)
	}

	// bucket object at the derived path holds the payload
	objs, err := bucket.ReadMulti(ctx, []string{"mem://b/g1/u1"})
	if err != nil {
		t.Fatal(err)
	}
	if v := string(objs[0].Content); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
	if v := objs[0].ContentType; v != "text/plain; charset=utf-8" {
		t.Errorf("unexpected: %v", v)
	}
	if v := objs[0].CacheControl; v == "" {
		t.Errorf("unexpected: %v", v)
	}

	// the datastore record keeps only the reference, in place
	if v, _ := e.Property("v1"); v != "mem://b/g1/u1" {
		t.Errorf("unexpected: %v", v)
	}
	psList := make([]datastoreflex.PropertyList, 1)
	if err := ds.GetMulti(ctx, []datastoreflex.Key{key}, psList); err != nil {
		t.Fatal(err)
	}
	if v, _ := psList[0].Value("v1"); v != "mem://b/g1/u1" {
		t.Errorf("unexpected: %v", v)
	}

	// Get resolves the reference back to the payload
	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("v1"); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
	if v, _ := got.Property("group_id"); v != "g1" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_CompressionRoundTrip(t *testing.T) {
	ctx, client, _, bucket, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	key, err := client.Put(ctx, newRow(client, "r1", "hello"))
	if err != nil {
		t.Fatal(err)
	}

	objs, err := bucket.ReadMulti(ctx, []string{"mem://b/g1/u1"})
	if err != nil {
		t.Fatal(err)
	}
	if v := objs[0].ContentEncoding; v != "gzip" {
		t.Errorf("unexpected: %v", v)
	}
	if v := objs[0].Content; !bytes.HasPrefix(v, []byte{0x1f, 0x8b}) {
		t.Errorf("unexpected: %v", v)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("v1"); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_BytesPayload(t *testing.T) {
	ctx, client, _, _, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	payload := []byte{0x00, 0x01, 0x02, 0xff}
	key, err := client.Put(ctx, newRow(client, "r1", payload))
	if err != nil {
		t.Fatal(err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	v, _ := got.Property("v1")
	b, ok := v.([]byte)
	if !ok {
		t.Fatalf("unexpected: %T", v)
	}
	if !bytes.Equal(b, payload) {
		t.Errorf("unexpected: %v", b)
	}
}

func TestClient_MissingFieldNoIO(t *testing.T) {
	ctx, client, ds, bucket, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}
	putCalls := ds.PutCalls()

	e := &datastoreflex.Entity{Key: client.Datastore().NameKey("Row", "r1", nil)}
	e.SetProperty("group_id", "g1")
	// user_id is absent
	e.SetProperty("v1", "hello")

	_, err := client.Put(ctx, e)
	var mfErr *datastoreflex.MissingFieldError
	if !errors.As(err, &mfErr) {
		t.Fatalf("unexpected: %v", err)
	}
	if v := mfErr.Field; v != "user_id" {
		t.Errorf("unexpected: %v", v)
	}

	// neither collaborator was touched
	if v := bucket.Len(); v != 0 {
		t.Errorf("unexpected: %v", v)
	}
	if v := ds.PutCalls(); v != putCalls {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_UnconfiguredPassThrough(t *testing.T) {
	ctx, client, _, bucket, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	e := &datastoreflex.Entity{Key: client.Datastore().NameKey("Row", "r1", nil)}
	e.SetProperty("group_id", "g1")
	e.SetProperty("other", "inline value")

	key, err := client.Put(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	if v := bucket.Len(); v != 0 {
		t.Errorf("unexpected: %v", v)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("other"); v != "inline value" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_InlineValuePassThrough(t *testing.T) {
	ctx, client, ds, _, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	// entity written behind the redirector's back, configured property inline
	key := ds.NameKey("Row", "r1", nil)
	ps := datastoreflex.PropertyList{}
	ps.Set("group_id", "g1", false)
	ps.Set("user_id", "u1", false)
	ps.Set("v1", "inline, not a reference", false)
	if _, err := ds.PutMulti(ctx, []datastoreflex.Key{key}, []datastoreflex.PropertyList{ps}); err != nil {
		t.Fatal(err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("v1"); v != "inline, not a reference" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_DeterministicOverwrite(t *testing.T) {
	ctx, client, _, bucket, cleanUp := testutils.SetupFlexClient(t, datastoreflex.WithoutCompression())
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	if _, err := client.Put(ctx, newRow(client, "r1", "first")); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Put(ctx, newRow(client, "r2", "second")); err != nil {
		t.Fatal(err)
	}

	// same sibling values, same path: last writer wins
	if v := bucket.Len(); v != 1 {
		t.Errorf("unexpected: %v", v)
	}
	objs, err := bucket.ReadMulti(ctx, []string{"mem://b/g1/u1"})
	if err != nil {
		t.Fatal(err)
	}
	if v := string(objs[0].Content); v != "second" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_AddConfigOverwrite(t *testing.T) {
	ctx, client, _, bucket, cleanUp := testutils.SetupFlexClient(t, datastoreflex.WithoutCompression())
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}
	if _, err := client.AddConfig(ctx, datastoreflex.Config{
		"v1": {
			BucketPath:   "mem://b2",
			PathElements: []string{"group_id"},
		},
	}); err != nil {
		t.Fatal(err)
	}

	cfg, err := client.Config(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if v := cfg["v1"].BucketPath; v != "mem://b2" {
		t.Errorf("unexpected: %v", v)
	}

	key, err := client.Put(ctx, newRow(client, "r1", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bucket.ReadMulti(ctx, []string{"mem://b2/g1"}); err != nil {
		t.Fatal(err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("v1"); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_ConfigPersistsAcrossClients(t *testing.T) {
	ctx, client, ds, bucket, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}
	key, err := client.Put(ctx, newRow(client, "r1", "hello"))
	if err != nil {
		t.Fatal(err)
	}

	// a second client over the same collaborators reads the stored config
	other := datastoreflex.NewClient(ds, datastoreflex.WithBucket(membucket.Scheme, bucket))
	got, err := other.Get(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Property("v1"); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_GetMissingEntity(t *testing.T) {
	ctx, client, _, _, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	key := client.Datastore().NameKey("Row", "nope", nil)
	_, err := client.Get(ctx, key)
	if err != datastoreflex.ErrNoSuchEntity {
		t.Fatalf("unexpected: %v", err)
	}
}

func TestClient_GetMultiPartialMissing(t *testing.T) {
	ctx, client, _, _, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}
	key, err := client.Put(ctx, newRow(client, "r1", "hello"))
	if err != nil {
		t.Fatal(err)
	}
	missing := client.Datastore().NameKey("Row", "nope", nil)

	entities, err := client.GetMulti(ctx, []datastoreflex.Key{key, missing})
	merr, ok := err.(datastoreflex.MultiError)
	if !ok {
		t.Fatalf("unexpected: %v", err)
	}
	if v := merr[0]; v != nil {
		t.Errorf("unexpected: %v", v)
	}
	if v := merr[1]; v != datastoreflex.ErrNoSuchEntity {
		t.Errorf("unexpected: %v", v)
	}

	// redirection is still resolved for the found entity
	if v, _ := entities[0].Property("v1"); v != "hello" {
		t.Errorf("unexpected: %v", v)
	}
	if v := entities[1]; v != nil {
		t.Errorf("unexpected: %v", v)
	}
}

func TestClient_NonRedirectableValue(t *testing.T) {
	ctx, client, _, _, cleanUp := testutils.SetupFlexClient(t)
	defer cleanUp()

	if _, err := client.AddConfig(ctx, segmentationConfig()); err != nil {
		t.Fatal(err)
	}

	_, err := client.Put(ctx, newRow(client, "r1", int64(42)))
	var cfgErr *datastoreflex.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("unexpected: %v", err)
	}
}
