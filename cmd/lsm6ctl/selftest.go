package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/westphae/lsm6dso16is"
)

// Self-test pass bands from the datasheet.
const (
	accelStMinMg  = 50.0
	accelStMaxMg  = 1700.0
	gyroStMinMdps = 150000.0
	gyroStMaxMdps = 700000.0
)

const stSamples = 5

var selfTestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "run the factory accel and gyro self test",
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

		if err := dev.SoftwareReset(); err != nil {
			return err
		}
		if err := dev.SetBlockDataUpdate(true); err != nil {
			return err
		}

		aerr := accelSelfTest(dev)
		gerr := gyroSelfTest(dev)
		if aerr != nil {
			return aerr
		}
		if gerr != nil {
			return gerr
		}
		fmt.Println("self test PASS")
		return nil
	},
}

func accelSelfTest(dev *lsm6dso16is.LSM6DSO16IS) error {
	if err := dev.SetAccelFullScale(lsm6dso16is.AccelFS4G); err != nil {
		return err
	}
	if err := dev.SetAccelDataRate(lsm6dso16is.Rate52HzHP); err != nil {
		return err
	}
	defer dev.SetAccelDataRate(lsm6dso16is.RateOff)

	base, err := averageAccel(dev)
	if err != nil {
		return err
	}
	if err := dev.SetAccelSelfTest(lsm6dso16is.SelfTestPositive); err != nil {
		return err
	}
	defer dev.SetAccelSelfTest(lsm6dso16is.SelfTestDisable)
	time.Sleep(100 * time.Millisecond)
	st, err := averageAccel(dev)
	if err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		diff := st[i] - base[i]
		if diff < 0 {
			diff = -diff
		}
		if diff < accelStMinMg || diff > accelStMaxMg {
			return fmt.Errorf("accel self test FAIL: axis %d deviation %.1f mg outside [%.0f, %.0f]",
				i, diff, accelStMinMg, accelStMaxMg)
		}
	}
	return nil
}

func gyroSelfTest(dev *lsm6dso16is.LSM6DSO16IS) error {
	if err := dev.SetGyroFullScale(lsm6dso16is.GyroFS2000DPS); err != nil {
		return err
	}
	if err := dev.SetGyroDataRate(lsm6dso16is.Rate208HzHP); err != nil {
		return err
	}
	defer dev.SetGyroDataRate(lsm6dso16is.RateOff)

	base, err := averageGyro(dev)
	if err != nil {
		return err
	}
	if err := dev.SetGyroSelfTest(lsm6dso16is.SelfTestPositive); err != nil {
		return err
	}
	defer dev.SetGyroSelfTest(lsm6dso16is.SelfTestDisable)
	time.Sleep(100 * time.Millisecond)
	st, err := averageGyro(dev)
	if err != nil {
		return err
	}

	for i := 0; i < 3; i++ {
		diff := st[i] - base[i]
		if diff < 0 {
			diff = -diff
		}
		if diff < gyroStMinMdps || diff > gyroStMaxMdps {
			return fmt.Errorf("gyro self test FAIL: axis %d deviation %.1f mdps outside [%.0f, %.0f]",
				i, diff, gyroStMinMdps, gyroStMaxMdps)
		}
	}
	return nil
}

func averageAccel(dev *lsm6dso16is.LSM6DSO16IS) ([3]float64, error) {
	var sum [3]float64
	for n := 0; n < stSamples; n++ {
		if err := waitReady(dev.AccelDataReady); err != nil {
			return sum, err
		}
		raw, err := dev.AccelerationRaw()
		if err != nil {
			return sum, err
		}
		for i := 0; i < 3; i++ {
			sum[i] += lsm6dso16is.AccelToMg(lsm6dso16is.AccelFS4G, raw[i])
		}
	}
	for i := 0; i < 3; i++ {
		sum[i] /= stSamples
	}
	return sum, nil
}

func averageGyro(dev *lsm6dso16is.LSM6DSO16IS) ([3]float64, error) {
	var sum [3]float64
	for n := 0; n < stSamples; n++ {
		if err := waitReady(dev.GyroDataReady); err != nil {
			return sum, err
		}
		raw, err := dev.AngularRateRaw()
		if err != nil {
			return sum, err
		}
		for i := 0; i < 3; i++ {
			sum[i] += lsm6dso16is.GyroToMdps(lsm6dso16is.GyroFS2000DPS, raw[i])
		}
	}
	for i := 0; i < 3; i++ {
		sum[i] /= stSamples
	}
	return sum, nil
}

func waitReady(ready func() (bool, error)) error {
	for i := 0; i < 100; i++ {
		ok, err := ready()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("timed out waiting for data ready")
}
