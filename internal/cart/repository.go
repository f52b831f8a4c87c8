package cart

import "context"

// Repository is the persistence port of a cart. Data is the JSON array layout; a missing cart
// loads as nil data and a nil error.
type Repository interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
}

// Broadcaster fans the payload-free cartUpdated signal out to observers outside this process.
type Broadcaster interface {
	Publish(ctx context.Context, sessionID string) error
}
