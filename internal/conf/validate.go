package conf

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError holds the accumulated configuration problems
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks the loaded settings for impossible combinations.
// All problems are reported at once.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateWebServerSettings(&settings.WebServer); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOutputSettings(&settings.Output); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateWikipediaSettings(&settings.Wikipedia); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateSecuritySettings(&settings.Security); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(settings *WebServerSettings) error {
	port, err := strconv.Atoi(settings.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("webserver port must be a number between 1 and 65535, got %q", settings.Port)
	}
	return nil
}

func validateOutputSettings(settings *OutputSettings) error {
	if !settings.SQLite.Enabled && !settings.MySQL.Enabled {
		return fmt.Errorf("no datastore enabled, enable output.sqlite or output.mysql")
	}
	if settings.SQLite.Enabled && settings.SQLite.Path == "" {
		return fmt.Errorf("output.sqlite.path must not be empty when SQLite is enabled")
	}
	if settings.MySQL.Enabled {
		if settings.MySQL.Database == "" {
			return fmt.Errorf("output.mysql.database must not be empty when MySQL is enabled")
		}
		if _, err := strconv.Atoi(settings.MySQL.Port); err != nil {
			return fmt.Errorf("output.mysql.port must be a number, got %q", settings.MySQL.Port)
		}
	}
	return nil
}

func validateWikipediaSettings(settings *WikipediaSettings) error {
	if settings.Endpoint == "" {
		return fmt.Errorf("wikipedia.endpoint must not be empty")
	}
	if settings.MaxRetries < 1 {
		return fmt.Errorf("wikipedia.maxretries must be at least 1, got %d", settings.MaxRetries)
	}
	if settings.Timeout <= 0 {
		return fmt.Errorf("wikipedia.timeout must be positive, got %v", settings.Timeout)
	}
	return nil
}

func validateSecuritySettings(settings *SecuritySettings) error {
	if settings.SessionDuration <= 0 {
		return fmt.Errorf("security.sessionduration must be positive, got %v", settings.SessionDuration)
	}
	return nil
}
