package dashboard

import "context"

// FilterStateRepository persists the serialized filter state of a user.
// Load returns ErrFilterStateNotFound when nothing was stored yet.
type FilterStateRepository interface {
	Load(ctx context.Context, userID string) ([]byte, error)
	Save(ctx context.Context, userID string, payload []byte) error
}
