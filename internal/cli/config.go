package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	UserID    string
	UserFile  string
	Output    string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("STROOP_SERVER", "http://localhost:8080"),
		UserID:    os.Getenv("STROOP_USER"),
		UserFile:  getEnvOrDefault("STROOP_USER_FILE", defaultUserFile()),
		Output:    "text",
	}
}

// LoadUser loads the user ID from file if not already set
func (c *Config) LoadUser() error {
	if c.UserID != "" {
		return nil
	}

	data, err := os.ReadFile(c.UserFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not logged in yet
		}
		return err
	}

	c.UserID = strings.TrimSpace(string(data))
	return nil
}

// SaveUser saves the user ID to the user file
func (c *Config) SaveUser(userID string) error {
	c.UserID = userID

	dir := filepath.Dir(c.UserFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.UserFile, []byte(userID), 0600)
}

func defaultUserFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stroop/user"
	}
	return filepath.Join(home, ".stroop", "user")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
