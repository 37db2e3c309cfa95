package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL     string
	Token         string
	TokenFile     string
	CompetitionID string
	Output        string
}

// savedSession is what sign-in commands leave in the token file
type savedSession struct {
	Token         string `json:"token"`
	CompetitionID string `json:"competitionId,omitempty"`
}

// DefaultConfig reads the SCORECTL_* environment
func DefaultConfig() *Config {
	cfg := &Config{
		ServerURL:     "http://localhost:8080",
		TokenFile:     defaultTokenFile(),
		CompetitionID: os.Getenv("SCORECTL_COMPETITION"),
		Token:         os.Getenv("SCORECTL_TOKEN"),
		Output:        "text",
	}
	if v := os.Getenv("SCORECTL_SERVER"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv("SCORECTL_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	return cfg
}

// LoadToken fills the token, and the competition when none was given, from
// the token file. A missing file leaves the caller anonymous. Files holding a
// bare token are still accepted.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var saved savedSession
	if json.Unmarshal(data, &saved) != nil {
		saved = savedSession{Token: strings.TrimSpace(string(data))}
	}

	c.Token = saved.Token
	if c.CompetitionID == "" {
		c.CompetitionID = saved.CompetitionID
	}
	return nil
}

// SaveToken stores a freshly issued token and the competition it belongs to
func (c *Config) SaveToken(token, competitionID string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0o700); err != nil {
		return err
	}

	data, err := json.Marshal(savedSession{Token: token, CompetitionID: competitionID})
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, data, 0o600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scorectl", "token")
	}
	return filepath.Join(home, ".scorectl", "token")
}
