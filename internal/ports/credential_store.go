package ports

import "context"

// CredentialStore persists opaque credential blobs (cookie jars, tokens)
// keyed by the credential ref recorded on a session.
type CredentialStore interface {
	Get(ctx context.Context, ref string) ([]byte, error)
	Put(ctx context.Context, ref string, blob []byte) error
	Delete(ctx context.Context, ref string) error
}
