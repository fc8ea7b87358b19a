package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var rootCmd = &cobra.Command{
	Use:   "lsm6ctl",
	Short: "control and stream an LSM6DSO16IS inertial module",
	Long: `lsm6ctl talks to an LSM6DSO16IS 6-axis inertial module over I2C.
It can stream samples, run the factory self test, load ISPU programs and
read secondary sensors wired behind the chip's sensor hub.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "print a configuration template to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := newLsm6ctlOpt()
		out, err := yaml.Marshal(opt)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "configuration file path")
	rootCmd.PersistentFlags().Int("bus", defaultI2CBus, "I2C bus number")
	rootCmd.PersistentFlags().Int("addr", defaultI2CAddr, "I2C device address")
	rootCmd.PersistentFlags().Bool("debug", false, "toggle debug logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(selfTestCmd)
	rootCmd.AddCommand(ispuCmd)
	rootCmd.AddCommand(hubCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
