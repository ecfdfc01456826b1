package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh document identifier (24 hex chars, time-ordered).
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidateID rejects identifiers that could never name a stored document.
func ValidateID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return ErrInvalidIdentifier
	}
	return nil
}

// insertHead returns s with v prepended.
func insertHead[T any](s []T, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, v)
	return append(out, s...)
}

// removeWhere drops every element matching pred. The second result reports
// whether anything was removed; when false the input slice is returned as is.
func removeWhere[T any](s []T, pred func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(s))
	for _, v := range s {
		if !pred(v) {
			out = append(out, v)
		}
	}
	if len(out) == len(s) {
		return s, false
	}
	return out, true
}
