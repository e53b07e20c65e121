// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "Biodex")

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", "8080")

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "biodex.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "biodex")
	viper.SetDefault("output.mysql.password", "")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "biodex")

	viper.SetDefault("security.sessionduration", 168*time.Hour)
	viper.SetDefault("security.cookiesecure", false)

	viper.SetDefault("wikipedia.endpoint", "https://en.wikipedia.org/w/api.php")
	viper.SetDefault("wikipedia.timeout", 10*time.Second)
	viper.SetDefault("wikipedia.maxretries", 3)
	viper.SetDefault("wikipedia.cachettl", 15*time.Minute)

	viper.SetDefault("notification.maxnotifications", 1000)
	viper.SetDefault("notification.cleanupinterval", 5*time.Minute)
	viper.SetDefault("notification.ratelimitwindow", 1*time.Minute)
	viper.SetDefault("notification.ratelimitmaxevents", 100)
}
