package lsm6dso16is

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

const imuBufSize = 250

// IMUData is one scaled sample set: angular rates in mdps, accelerations in
// mg, temperature in Celsius.
type IMUData struct {
	G1, G2, G3 float64
	A1, A2, A3 float64
	Temp       float64
	Error      error
	N          int
	T          time.Time
	DT         time.Duration
}

// IMU streams scaled samples from the device on channels, one goroutine
// owning the bus.
type IMU struct {
	C    chan *IMUData // Current instantaneous sensor values
	CAvg chan *IMUData // Average sensor values (since CAvg last read)
	CBuf chan *IMUData // Buffer of instantaneous sensor values

	dev     *LSM6DSO16IS
	accelFS AccelFS
	gyroFS  GyroFS
	cClose  chan bool
}

// NewIMU configures the device for continuous reading at the given rate and
// full scales and starts the sampling goroutine.
func NewIMU(dev *LSM6DSO16IS, rate DataRate, afs AccelFS, gfs GyroFS, sampleHz int) (*IMU, error) {
	if sampleHz <= 0 {
		return nil, errors.New("LSM6DSO16IS: sample rate must be positive")
	}
	if err := dev.SetBlockDataUpdate(true); err != nil {
		return nil, err
	}
	if err := dev.SetAccelFullScale(afs); err != nil {
		return nil, err
	}
	if err := dev.SetGyroFullScale(gfs); err != nil {
		return nil, err
	}
	if err := dev.SetAccelDataRate(rate); err != nil {
		return nil, err
	}
	if err := dev.SetGyroDataRate(rate); err != nil {
		return nil, err
	}
	m := &IMU{
		C:       make(chan *IMUData),
		CAvg:    make(chan *IMUData),
		CBuf:    make(chan *IMUData, imuBufSize),
		dev:     dev,
		accelFS: afs,
		gyroFS:  gfs,
		cClose:  make(chan bool),
	}
	go m.readSensors(sampleHz)
	return m, nil
}

// Close stops the sampling goroutine and shuts the sensors down.
func (m *IMU) Close() {
	m.cClose <- true
}

func (m *IMU) readSensors(sampleHz int) {
	var (
		g, a             [3]int16
		temp             int16
		rdErr            error
		t, t0            time.Time
		avg1, avg2, avg3 float64
		ava1, ava2, ava3 float64
		avt, n           float64
	)

	defer close(m.C)
	defer close(m.CAvg)
	defer close(m.CBuf)

	clock := time.NewTicker(time.Duration(int(1000.0/float32(sampleHz)+0.5)) * time.Millisecond)
	defer clock.Stop()
	t0 = time.Now()

	makeIMUData := func() *IMUData {
		d := IMUData{
			G1: GyroToMdps(m.gyroFS, g[0]),
			G2: GyroToMdps(m.gyroFS, g[1]),
			G3: GyroToMdps(m.gyroFS, g[2]),
			A1: AccelToMg(m.accelFS, a[0]),
			A2: AccelToMg(m.accelFS, a[1]),
			A3: AccelToMg(m.accelFS, a[2]),
			Temp:  FromLsbToCelsius(temp),
			Error: rdErr,
			N:     1,
			T:     t,
		}
		if rdErr != nil {
			d.N = 0
		}
		return &d
	}

	makeAvgIMUData := func() *IMUData {
		d := IMUData{}
		if n > 0.5 {
			d.G1, d.G2, d.G3 = avg1/n, avg2/n, avg3/n
			d.A1, d.A2, d.A3 = ava1/n, ava2/n, ava3/n
			d.Temp = avt / n
			d.N = int(n + 0.5)
			d.T = t
			d.DT = t.Sub(t0)
		} else {
			d.Error = errors.New("LSM6DSO16IS Error: No new accel/gyro values")
		}
		return &d
	}

	for {
		select {
		case t = <-clock.C:
			g, rdErr = m.dev.AngularRateRaw()
			if rdErr == nil {
				a, rdErr = m.dev.AccelerationRaw()
			}
			if rdErr == nil {
				temp, rdErr = m.dev.TemperatureRaw()
			}
			if rdErr != nil {
				log.Warnf("LSM6DSO16IS: error reading sensors: %s", rdErr)
				continue
			}
			avg1 += GyroToMdps(m.gyroFS, g[0])
			avg2 += GyroToMdps(m.gyroFS, g[1])
			avg3 += GyroToMdps(m.gyroFS, g[2])
			ava1 += AccelToMg(m.accelFS, a[0])
			ava2 += AccelToMg(m.accelFS, a[1])
			ava3 += AccelToMg(m.accelFS, a[2])
			avt += FromLsbToCelsius(temp)
			n++
		case m.C <- makeIMUData(): // Send the latest values
		case m.CBuf <- makeIMUData():
		case m.CAvg <- makeAvgIMUData(): // Send the averages
			avg1, avg2, avg3 = 0, 0, 0
			ava1, ava2, ava3 = 0, 0, 0
			avt, n = 0, 0
			t0 = t
		case <-m.cClose:
			if err := m.dev.SetAccelDataRate(RateOff); err != nil {
				log.Warnf("LSM6DSO16IS: error stopping accel: %s", err)
			}
			if err := m.dev.SetGyroDataRate(RateOff); err != nil {
				log.Warnf("LSM6DSO16IS: error stopping gyro: %s", err)
			}
			return
		}
	}
}
