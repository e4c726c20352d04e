package gcsbucket

import (
	"testing"

	w "github.com/CAVEconnectome/datastore-flex"
)

func TestSplitPath(t *testing.T) {
	bucket, name, err := splitPath("gs://my-bucket/segmentation/g1/u1")
	if err != nil {
		t.Fatal(err)
	}
	if v := bucket; v != "my-bucket" {
		t.Errorf("unexpected: %v", v)
	}
	if v := name; v != "segmentation/g1/u1" {
		t.Errorf("unexpected: %v", v)
	}
}

func TestSplitPath_Malformed(t *testing.T) {
	for _, path := range []string{
		"mem://b/x",
		"gs://bucket-only",
		"gs:///no-bucket",
		"plain/path",
	} {
		_, _, err := splitPath(path)
		if _, ok := err.(*w.BucketError); !ok {
			t.Errorf("unexpected for %q: %v", path, err)
		}
	}
}

func TestSchemeRegistered(t *testing.T) {
	for _, scheme := range w.BucketSchemes() {
		if scheme == Scheme {
			return
		}
	}
	t.Errorf("scheme %q not registered", Scheme)
}
