package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestSettings() *Settings {
	s := &Settings{}
	s.WebServer.Port = "8080"
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "biodex.db"
	s.Wikipedia.Endpoint = "https://en.wikipedia.org/w/api.php"
	s.Wikipedia.Timeout = 10 * time.Second
	s.Wikipedia.MaxRetries = 3
	s.Security.SessionDuration = time.Hour
	return s
}

func TestValidateSettings_Valid(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validTestSettings()))
}

func TestValidateSettings_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.WebServer.Port = "not-a-port"
	s.Output.SQLite.Enabled = false
	s.Wikipedia.MaxRetries = 0

	err := ValidateSettings(s)
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)
}

func TestValidateSettings_MySQLRequiresDatabase(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.Output.SQLite.Enabled = false
	s.Output.MySQL.Enabled = true
	s.Output.MySQL.Port = "3306"
	s.Output.MySQL.Database = ""

	assert.Error(t, ValidateSettings(s))
}

func TestGenerateRandomSecret(t *testing.T) {
	t.Parallel()

	a := GenerateRandomSecret()
	b := GenerateRandomSecret()

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
