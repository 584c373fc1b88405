package port

import "context"

// Publisher produces one key/value pair to the binding topic.
type Publisher interface {
	Publish(ctx context.Context, key, value any, headers map[string]string) error
	Close()
}
