package dbevolve

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// Hash returns the lowercase hex SHA-256 of content. The bytes are hashed as
// they are: line endings and whitespace are significant.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// HashFile reads a file and returns its Hash.
func HashFile(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return Hash(data), nil
}
