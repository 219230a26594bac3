package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings for one deployment. The spreadsheet is the only persistence;
// credentials themselves are handled by the Google client, we only carry
// the path.
type Settings struct {
	ListenAddress   string
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

type configStore struct {
	Settings Settings
}

type Config struct {
	Filename string
	Store    configStore
}

// Write the current config out to a toml file.
func (c *Config) Save() error {
	b, err := toml.Marshal(c.Store)
	if err != nil {
		return err
	}
	return os.WriteFile(c.Filename, b, 0644)
}

// Load the current config from a toml file.
func (c *Config) Load() error {
	b, err := os.ReadFile(c.Filename)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, &c.Store)
}

func New(filename string) (*Config, error) {
	c := &Config{
		Filename: filename,
	}
	if err := c.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := c.Save(); err != nil {
			return nil, err
		}
	}
	// Set some defaults
	if c.Store.Settings.ListenAddress == "" {
		c.Store.Settings.ListenAddress = ":8080"
	}
	if c.Store.Settings.SheetName == "" {
		c.Store.Settings.SheetName = "Página1"
	}
	// Environment wins over the file
	s := &c.Store.Settings
	s.ListenAddress = getEnv("LISTEN_ADDRESS", s.ListenAddress)
	s.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", s.CredentialsFile)
	s.SpreadsheetID = getEnv("SPREADSHEET_ID", s.SpreadsheetID)
	s.SheetName = getEnv("SHEET_NAME", s.SheetName)
	return c, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
