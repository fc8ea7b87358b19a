package main

import (
	"encoding/json"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/westphae/lsm6dso16is"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "stream samples to websocket clients",
	Long: `serve starts a websocket endpoint on /imu and pushes one JSON sample
message per tick to every connected client.`,
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

		r := newRoom()
		go r.run()
		go func() {
			clock := time.NewTicker(time.Second / time.Duration(opt.Stream.SampleHz))
			defer clock.Stop()
			for range clock.C {
				d := <-imu.C
				if d.Error != nil {
					continue
				}
				msg, err := json.Marshal(d)
				if err != nil {
					log.Warnf("lsm6ctl: marshaling sample: %s", err)
					continue
				}
				r.forward <- msg
			}
		}()

		http.Handle("/imu", r)
		log.Infof("serving websocket samples on %s/imu", opt.Serve.Addr)
		return http.ListenAndServe(opt.Serve.Addr, nil)
	},
}
