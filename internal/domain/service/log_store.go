package service

import "context"

// LogStore archives deployment logs outside the database
type LogStore interface {
	// Put writes data under key, replacing any previous object
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// DeletePrefix removes every object whose key starts with prefix
	DeletePrefix(ctx context.Context, prefix string) error
}
