/*
Package flexlog wraps the datastoreflex collaborators with operation
logging. It is mainly useful in tests, to assert the exact sequence of
datastore and bucket calls an operation performs.
*/
package flexlog // import "github.com/CAVEconnectome/datastore-flex/flexlog"
