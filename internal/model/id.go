package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a new 24 character hex object id. Both storage backends use
// the same identifier format.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s has the internal identifier format.
func IsValidID(s string) bool {
	return primitive.IsValidObjectID(s)
}
