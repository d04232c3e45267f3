package poliastro

import (
	"os"

	"github.com/spf13/viper"
)

var (
	cfgLoaded = false
	config    = _pconfig{}
)

// _pconfig is a "hidden" struct, just use `pConfig`
type _pconfig struct {
	VSOP87    bool
	VSOP87Dir string
	outputDir string
}

// pConfig returns the library configuration, loading it on first use.
// The configuration directory is read from the POLIASTRO_CONF environment
// variable and must contain a conf.toml. If the variable is unset or the file
// is missing, defaults apply: no ephemerides, exports to the system temp dir.
func pConfig() _pconfig {
	if cfgLoaded {
		return config
	}
	cfgLoaded = true
	config = _pconfig{VSOP87: false, VSOP87Dir: "", outputDir: os.TempDir()}
	confPath := os.Getenv("POLIASTRO_CONF")
	if confPath == "" {
		return config
	}
	viper.SetConfigName("conf")
	viper.AddConfigPath(confPath)
	if err := viper.ReadInConfig(); err != nil {
		return config
	}
	config.VSOP87 = viper.GetBool("VSOP87.enabled")
	config.VSOP87Dir = viper.GetString("VSOP87.directory")
	if outputDir := viper.GetString("general.output_path"); outputDir != "" {
		config.outputDir = outputDir
	}
	return config
}
