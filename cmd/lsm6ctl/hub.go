package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/westphae/lsm6dso16is"
	"github.com/westphae/lsm6dso16is/lis2mdl"
)

var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "read a LIS2MDL magnetometer behind the sensor hub",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := parseConfig(cmd)
		if err != nil {
			return err
		}
		dev, b, err := openDevice(opt)
		if err != nil {
			return err
		}
		defer b.Close()

		if err := dev.SetShPullUp(true); err != nil {
			return err
		}
		master := lsm6dso16is.NewMaster(dev)
		mag, err := lis2mdl.New(master.Passthrough(lis2mdl.I2CAddr))
		if err != nil {
			return err
		}
		log.Info("found LIS2MDL behind the hub")

		if err := mag.SetBlockDataUpdate(true); err != nil {
			return err
		}
		if err := mag.SetTempCompensation(true); err != nil {
			return err
		}
		if err := mag.SetDataRate(lis2mdl.Rate20Hz); err != nil {
			return err
		}
		if err := mag.SetMode(lis2mdl.ModeContinuous); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		clock := time.NewTicker(time.Second / 5)
		defer clock.Stop()

		for {
			select {
			case <-clock.C:
				m, err := mag.Magnetic()
				if err != nil {
					log.Warnf("mag read error: %s", err)
					continue
				}
				fmt.Printf("m % 9.1f % 9.1f % 9.1f mgauss\n", m[0], m[1], m[2])
			case <-sig:
				return mag.SetMode(lis2mdl.ModeIdle)
			}
		}
	},
}
