package utils

import (
	"os"

	"github.com/google/uuid"
)

// GetUUID returns a fresh random identifier, used for uploaded file names.
func GetUUID() string {
	return uuid.New().String()
}

func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
