package clouddatastore

import (
	"context"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/datastore"
	w "github.com/CAVEconnectome/datastore-flex"
	"github.com/CAVEconnectome/datastore-flex/internal"
	"google.golang.org/api/option"
)

func init() {
	w.FromContext = FromContext
}

var projectID *string

func newClientSettings(opts ...w.ClientOption) *internal.ClientSettings {
	if projectID == nil {
		pID, err := metadata.ProjectID()
		if err != nil {
			// don't check again even if it was failed...
			pID = internal.GetProjectID()
		}
		projectID = &pID
	}
	settings := &internal.ClientSettings{
		ProjectID: *projectID,
	}
	for _, opt := range opts {
		opt.Apply(settings)
	}
	return settings
}

// FromContext creates a datastoreflex.Datastore backed by Cloud Datastore.
func FromContext(ctx context.Context, opts ...w.ClientOption) (w.Datastore, error) {
	settings := newClientSettings(opts...)
	origOpts := make([]option.ClientOption, 0, len(opts))
	if len(settings.Scopes) != 0 {
		origOpts = append(origOpts, option.WithScopes(settings.Scopes...))
	}
	if settings.TokenSource != nil {
		origOpts = append(origOpts, option.WithTokenSource(settings.TokenSource))
	}
	if settings.CredentialsFile != "" {
		origOpts = append(origOpts, option.WithCredentialsFile(settings.CredentialsFile))
	}
	if settings.HTTPClient != nil {
		origOpts = append(origOpts, option.WithHTTPClient(settings.HTTPClient))
	}

	client, err := datastore.NewClient(ctx, settings.ProjectID, origOpts...)
	if err != nil {
		return nil, err
	}

	return &datastoreImpl{client: client, namespace: settings.Namespace}, nil
}

// IsCloudDatastore reports whether ds was created by this package.
func IsCloudDatastore(ds w.Datastore) bool {
	_, ok := ds.(*datastoreImpl)
	return ok
}
