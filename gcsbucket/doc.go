/*
Package gcsbucket provides the Google Cloud Storage bucket backend for
datastoreflex, serving configured bucket paths with the gs:// scheme.
Import it for its side effect:

	import _ "github.com/CAVEconnectome/datastore-flex/gcsbucket"

Related document.

https://cloud.google.com/storage/docs/
https://godoc.org/cloud.google.com/go/storage
*/
package gcsbucket // import "github.com/CAVEconnectome/datastore-flex/gcsbucket"
