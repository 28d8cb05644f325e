package pkg

import "github.com/google/uuid"

// GenerateGameID returns a new random session id.
func GenerateGameID() string {
	return uuid.NewString()
}

// IsGameID reports whether id looks like an id from GenerateGameID.
func IsGameID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
