// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "PhotoIndex")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/photoindex.log")

	viper.SetDefault("geocoding.provider", "google")
	viper.SetDefault("geocoding.apikey", "")
	viper.SetDefault("geocoding.endpoint", "")
	viper.SetDefault("geocoding.resolution", 9)
	viper.SetDefault("geocoding.batchsize", 100)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "photoindex.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "photoindex")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "photoindex")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
}
