package main

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultAppName    = "lsm6ctl"
	defaultConfigName = "config"
	defaultI2CBus     = 1
	defaultI2CAddr    = 0x6A
	defaultSampleHz   = 50
	defaultServeAddr  = ":8000"
)

type deviceOpt struct {
	Bus  int `yaml:"bus"`
	Addr int `yaml:"addr"`
}

type streamOpt struct {
	SampleHz int    `yaml:"sample_hz" mapstructure:"sample_hz"`
	Rate     string `yaml:"rate"`
	AccelFS  string `yaml:"accel_fs" mapstructure:"accel_fs"`
	GyroFS   string `yaml:"gyro_fs" mapstructure:"gyro_fs"`
}

type serveOpt struct {
	Addr string `yaml:"addr"`
}

type lsm6ctlOpt struct {
	Device deviceOpt `yaml:"device"`
	Stream streamOpt `yaml:"stream"`
	Serve  serveOpt  `yaml:"serve"`
	Debug  bool      `yaml:"debug"`
}

func newLsm6ctlOpt() lsm6ctlOpt {
	return lsm6ctlOpt{
		Device: deviceOpt{Bus: defaultI2CBus, Addr: defaultI2CAddr},
		Stream: streamOpt{SampleHz: defaultSampleHz, Rate: "104hz", AccelFS: "2g", GyroFS: "250dps"},
		Serve:  serveOpt{Addr: defaultServeAddr},
	}
}

// parseConfig layers the yaml config file, LSM6CTL_* environment variables
// and command line flags, in increasing priority.
func parseConfig(cmd *cobra.Command) (lsm6ctlOpt, error) {
	opt := newLsm6ctlOpt()

	vipCfg := viper.New()
	vipCfg.SetDefault("device.bus", defaultI2CBus)
	vipCfg.SetDefault("device.addr", defaultI2CAddr)
	vipCfg.SetDefault("stream.sample_hz", defaultSampleHz)
	vipCfg.SetDefault("serve.addr", defaultServeAddr)

	if cfgFile, err := cmd.Flags().GetString("config"); err == nil && cfgFile != "" {
		vipCfg.SetConfigFile(cfgFile)
	} else if cfgEnv := os.Getenv("LSM6CTL_CONFIG"); cfgEnv != "" {
		vipCfg.SetConfigFile(cfgEnv)
	} else {
		vipCfg.SetConfigName(defaultConfigName)
		vipCfg.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			vipCfg.AddConfigPath(home + "/.config/" + defaultAppName)
		}
		vipCfg.AddConfigPath("/etc/" + defaultAppName)
		vipCfg.AddConfigPath("./")
	}

	vipCfg.SetEnvPrefix(defaultAppName)
	vipCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vipCfg.AutomaticEnv()

	_ = vipCfg.BindPFlag("device.bus", cmd.Flags().Lookup("bus"))
	_ = vipCfg.BindPFlag("device.addr", cmd.Flags().Lookup("addr"))
	_ = vipCfg.BindPFlag("debug", cmd.Flags().Lookup("debug"))

	if err := vipCfg.ReadInConfig(); err == nil {
		log.Debugln("using config file:", vipCfg.ConfigFileUsed())
	} else {
		log.Debugln(err)
	}

	if err := vipCfg.Unmarshal(&opt); err != nil {
		return opt, err
	}

	if opt.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return opt, nil
}
