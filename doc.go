/*
Package datastoreflex is a thin adapter over Cloud Datastore that
transparently offloads the values of configured entity properties to
objects in a cloud storage bucket.

repository https://github.com/CAVEconnectome/datastore-flex

A column configuration maps a property name to a bucket path and an
ordered list of sibling field names. On Put, the value of each configured
property is written to the bucket at a path derived from those sibling
fields, and the datastore record keeps only the derived path as a
reference. On Get, the reference is detected, the same path is re-derived,
and the object content is substituted back into the property before the
entity is returned.

The configuration itself lives in Datastore, as a single entity of kind
"{namespace}_config" with the name key "column", holding the JSON encoded
column map. AddConfig merges into it; later entries win for the same
property name.


Basic usage

Create a Datastore collaborator with the FromContext function of the
clouddatastore package, then wrap it in a Client:

	ds, err := clouddatastore.FromContext(ctx,
		datastoreflex.WithProjectID("example"),
		datastoreflex.WithNamespace("fly"),
	)
	if err != nil { ... }
	client := datastoreflex.NewClient(ds)
	defer client.Close()

	_, err = client.AddConfig(ctx, datastoreflex.Config{
		"segmentation": {
			BucketPath:   "gs://my-bucket/segmentation",
			PathElements: []string{"group_id", "user_id"},
		},
	})

Bucket backends are selected by the URI scheme of the configured bucket
path. Import a backend package for its side effect to register its scheme:

	import (
		_ "github.com/CAVEconnectome/datastore-flex/gcsbucket" // gs://
		_ "github.com/CAVEconnectome/datastore-flex/membucket" // mem://
	)


What this package does not do

Durability, consistency, transactions, retries, caching and
authentication all belong to the wrapped collaborators. A bucket write
and the subsequent datastore write are not transactionally coupled; a
failure in between can leave an orphaned bucket object. Repeated writes
with identical sibling field values overwrite the same object path,
last writer wins.
*/
package datastoreflex // import "github.com/CAVEconnectome/datastore-flex"
