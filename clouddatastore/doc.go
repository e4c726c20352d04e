/*
Package clouddatastore provides the Cloud Datastore collaborator for
datastoreflex. Create one with FromContext, then wrap it in a
datastoreflex.Client.

Related document.

https://cloud.google.com/datastore/docs/
https://godoc.org/cloud.google.com/go/datastore
*/
package clouddatastore // import "github.com/CAVEconnectome/datastore-flex/clouddatastore"
