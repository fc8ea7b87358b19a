package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/westphae/lsm6dso16is"
)

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "stream scaled accel/gyro/temperature samples to stdout",
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

		rate, err := parseRate(opt.Stream.Rate)
		if err != nil {
			return err
		}
		afs, err := parseAccelFS(opt.Stream.AccelFS)
		if err != nil {
			return err
		}
		gfs, err := parseGyroFS(opt.Stream.GyroFS)
		if err != nil {
			return err
		}

		imu, err := lsm6dso16is.NewIMU(dev, rate, afs, gfs, opt.Stream.SampleHz)
		if err != nil {
			return err
		}
		defer imu.Close()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		clock := time.NewTicker(time.Second / 10)
		defer clock.Stop()

		log.Info("streaming, ^C to stop")
		for {
			select {
			case <-clock.C:
				d := <-imu.C
				if d.Error != nil {
					log.Warnf("read error: %s", d.Error)
					continue
				}
				fmt.Printf("g % 9.1f % 9.1f % 9.1f mdps  a % 8.1f % 8.1f % 8.1f mg  t %5.1f C\n",
					d.G1, d.G2, d.G3, d.A1, d.A2, d.A3, d.Temp)
			case <-sig:
				return nil
			}
		}
	},
}
