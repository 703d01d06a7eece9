package cmd

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// newFirestoreClient builds a Firestore client for projectID. An explicit
// credentials file wins; otherwise application default credentials are
// tried, falling back to unauthenticated access so publicly readable
// instances and local emulators work without a service account.
func newFirestoreClient(ctx context.Context, projectID, credentialsPath string) (*firestore.Client, error) {
	if credentialsPath == "" {
		credentialsPath = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if credentialsPath != "" {
		client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsPath))
		if err != nil {
			return nil, fmt.Errorf("creating Firestore client: %w", err)
		}
		return client, nil
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err == nil {
		return client, nil
	}
	logrus.WithError(err).Debug("Default credentials unavailable; retrying without authentication")

	client, err = firestore.NewClient(ctx, projectID, option.WithoutAuthentication())
	if err != nil {
		return nil, fmt.Errorf("creating Firestore client: %w", err)
	}
	return client, nil
}
