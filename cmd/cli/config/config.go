package config

import (
	"os"
	"path/filepath"
)

const (
	defaultAPIURL = "http://localhost:8080"
	tokenFileName = ".agora_token"
)

// APIURL returns the base URL for the forum API.
// It can be overridden with the AGORA_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("AGORA_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// SaveToken writes the JWT token to the user's home directory.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// LoadToken reads the locally stored JWT token.
func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ClearToken removes the stored token. Missing file is not an error.
func ClearToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// TokenExists reports whether a stored token is present.
func TokenExists() bool {
	_, err := os.Stat(tokenPath())
	return err == nil
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
