package config

import (
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override config values.
const EnvPrefix = "ORDERBOT"

// ApplyEnv overrides config values from ORDERBOT_* environment variables.
func ApplyEnv(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("order_url") {
		cfg.Site.OrderURL = v.GetString("order_url")
	}
	if v.IsSet("source_url") {
		cfg.Source.URL = v.GetString("source_url")
	}
	if v.IsSet("output_dir") {
		cfg.Output.Directory = v.GetString("output_dir")
	}
	if v.IsSet("headless") {
		cfg.Browser.Headless = v.GetBool("headless")
	}
	if v.IsSet("chrome_path") {
		cfg.Browser.ChromePath = v.GetString("chrome_path")
	}
	if v.IsSet("cdp_url") {
		cfg.Browser.CDPURL = v.GetString("cdp_url")
	}
	if v.IsSet("log_level") {
		cfg.Logging.Level = v.GetString("log_level")
	}
}
