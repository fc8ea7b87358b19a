package main

import (
	"fmt"

	"github.com/westphae/lsm6dso16is"
	"github.com/westphae/lsm6dso16is/bus"
)

// openDevice opens the configured I2C bus and probes the chip.
func openDevice(opt lsm6ctlOpt) (*lsm6dso16is.LSM6DSO16IS, *bus.I2C, error) {
	b := bus.OpenI2C(byte(opt.Device.Bus), byte(opt.Device.Addr))
	dev, err := lsm6dso16is.New(b, lsm6dso16is.SleepTimer())
	if err != nil {
		b.Close()
		return nil, nil, err
	}
	return dev, b, nil
}

func parseRate(s string) (lsm6dso16is.DataRate, error) {
	switch s {
	case "12.5hz":
		return lsm6dso16is.Rate12Hz5HP, nil
	case "26hz":
		return lsm6dso16is.Rate26HzHP, nil
	case "52hz":
		return lsm6dso16is.Rate52HzHP, nil
	case "104hz", "":
		return lsm6dso16is.Rate104HzHP, nil
	case "208hz":
		return lsm6dso16is.Rate208HzHP, nil
	case "416hz":
		return lsm6dso16is.Rate416HzHP, nil
	case "833hz":
		return lsm6dso16is.Rate833HzHP, nil
	case "1667hz":
		return lsm6dso16is.Rate1667HzHP, nil
	case "3333hz":
		return lsm6dso16is.Rate3333HzHP, nil
	case "6667hz":
		return lsm6dso16is.Rate6667HzHP, nil
	}
	return 0, fmt.Errorf("unknown data rate %q", s)
}

func parseAccelFS(s string) (lsm6dso16is.AccelFS, error) {
	switch s {
	case "2g", "":
		return lsm6dso16is.AccelFS2G, nil
	case "4g":
		return lsm6dso16is.AccelFS4G, nil
	case "8g":
		return lsm6dso16is.AccelFS8G, nil
	case "16g":
		return lsm6dso16is.AccelFS16G, nil
	}
	return 0, fmt.Errorf("unknown accel full scale %q", s)
}

func parseGyroFS(s string) (lsm6dso16is.GyroFS, error) {
	switch s {
	case "125dps":
		return lsm6dso16is.GyroFS125DPS, nil
	case "250dps", "":
		return lsm6dso16is.GyroFS250DPS, nil
	case "500dps":
		return lsm6dso16is.GyroFS500DPS, nil
	case "1000dps":
		return lsm6dso16is.GyroFS1000DPS, nil
	case "2000dps":
		return lsm6dso16is.GyroFS2000DPS, nil
	}
	return 0, fmt.Errorf("unknown gyro full scale %q", s)
}
