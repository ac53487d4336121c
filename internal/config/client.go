package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// ClientConfig configures the taskctl command line client.
type ClientConfig struct {
	APIURL      string
	SessionPath string
	Timeout     time.Duration
}

// LoadClient reads TASKCTL_API_URL, TASKCTL_SESSION_PATH and TASKCTL_TIMEOUT.
// The session file defaults to ~/.taskctl/session.db.
func LoadClient() ClientConfig {
	_ = godotenv.Load(".env")

	sessionPath := os.Getenv("TASKCTL_SESSION_PATH")
	if sessionPath == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			dir = "."
		}
		sessionPath = filepath.Join(dir, ".taskctl", "session.db")
	}
	return ClientConfig{
		APIURL:      getString("TASKCTL_API_URL", "http://localhost:9000"),
		SessionPath: sessionPath,
		Timeout:     getDuration("TASKCTL_TIMEOUT", 10*time.Second),
	}
}
