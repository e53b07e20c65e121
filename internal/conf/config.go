// Package conf handles loading and validating the application configuration
// from YAML files and environment variables.
package conf

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// WebServerSettings contains the HTTP server configuration
type WebServerSettings struct {
	Host string // interface to bind, empty for all
	Port string // port to listen on
}

// SQLiteSettings contains the SQLite output configuration
type SQLiteSettings struct {
	Enabled bool
	Path    string
}

// MySQLSettings contains the MySQL output configuration
type MySQLSettings struct {
	Enabled  bool
	Username string
	Password string
	Host     string
	Port     string
	Database string
}

// OutputSettings groups the supported datastore backends
type OutputSettings struct {
	SQLite SQLiteSettings
	MySQL  MySQLSettings
}

// SecuritySettings contains session and cookie configuration
type SecuritySettings struct {
	SessionSecret   string        // secret for cookie session store, generated if empty
	SessionDuration time.Duration // how long sessions remain valid
	CookieSecure    bool          // require HTTPS for session cookies
}

// WikipediaSettings contains the external lookup configuration
type WikipediaSettings struct {
	Endpoint   string        // MediaWiki action API endpoint
	Timeout    time.Duration // per-request timeout
	MaxRetries int           // attempts per API call
	CacheTTL   time.Duration // how long successful lookups are cached
}

// NotificationSettings contains the in-memory notification service configuration
type NotificationSettings struct {
	MaxNotifications   int
	CleanupInterval    time.Duration
	RateLimitWindow    time.Duration
	RateLimitMaxEvents int
}

// Settings is the root configuration struct
type Settings struct {
	Debug bool // enables debug logging across services

	Main struct {
		Name string // node name, used to identify this instance
	}

	WebServer    WebServerSettings
	Output       OutputSettings
	Security     SecuritySettings
	Wikipedia    WikipediaSettings
	Notification NotificationSettings
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance and makes it the current one.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/biodex")
	viper.AddConfigPath("/etc/biodex")

	viper.SetEnvPrefix("biodex")
	viper.AutomaticEnv()

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	// If the session secret is not set, generate a random one
	if viper.GetString("security.sessionsecret") == "" {
		viper.Set("security.sessionsecret", GenerateRandomSecret())
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file, run entirely on defaults and env
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, initializing it if necessary
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("Error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}

// GenerateRandomSecret returns a URL-safe random secret suitable for signing
// session cookies.
func GenerateRandomSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		log.Printf("Error generating random secret: %v", err)
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
