package ports

import "context"

// AccountService removes an identity together with everything it owns.
type AccountService interface {
	Delete(ctx context.Context, userID string) error
}

// Serializer runs fn with exclusive access to the aggregate named by key.
// Calls for the same key never overlap.
type Serializer interface {
	Do(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// AvatarGenerator derives a profile picture URL from an email address.
type AvatarGenerator interface {
	AvatarURL(email string) string
}
