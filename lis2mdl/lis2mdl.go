// Package lis2mdl drives the ST LIS2MDL magnetometer over any bus.Bus,
// including a sensor-hub passthrough, so the same driver serves the chip
// whether it hangs off the host bus or behind an IMU's auxiliary master.
package lis2mdl

import (
	"fmt"

	"github.com/westphae/lsm6dso16is/bus"
)

const (
	MDLREG_CFG_REG_A  = 0x60
	MDLREG_CFG_REG_B  = 0x61
	MDLREG_CFG_REG_C  = 0x62
	MDLREG_STATUS_REG = 0x67
	MDLREG_OUTX_L_REG = 0x68
	MDLREG_TEMP_OUT_L = 0x6E
	MDLREG_WHO_AM_I   = 0x4F
)

// WhoAmI is the fixed content of WHO_AM_I.
const WhoAmI = 0x40

// I2CAddr is the chip's only I2C address.
const I2CAddr = 0x1E

// Bit layout of CFG_REG_A.
const (
	maskMode      = 0x03
	maskOdr       = 0x0C
	bitSoftRst    = 1 << 5
	bitReboot     = 1 << 6
	bitCompTempEn = 1 << 7
)

const bitBdu = 1 << 4 // CFG_REG_C

const bitZyxda = 1 << 3 // STATUS_REG

// Sensitivity in mgauss per LSB, fixed for this part.
const mgaussPerLsb = 1.5

// Mode is the operating mode in CFG_REG_A.
type Mode byte

const (
	ModeContinuous Mode = 0x0
	ModeSingle     Mode = 0x1
	ModeIdle       Mode = 0x3
)

// DataRate is the output data rate in CFG_REG_A.
type DataRate byte

const (
	Rate10Hz  DataRate = 0x0
	Rate20Hz  DataRate = 0x1
	Rate50Hz  DataRate = 0x2
	Rate100Hz DataRate = 0x3
)

// LIS2MDL is a handle on one magnetometer.
type LIS2MDL struct {
	bus bus.Bus
}

// New checks the chip identity and returns a handle. The caller keeps
// ownership of the bus.
func New(b bus.Bus) (*LIS2MDL, error) {
	m := &LIS2MDL{bus: b}
	id, err := m.readReg(MDLREG_WHO_AM_I)
	if err != nil {
		return nil, fmt.Errorf("LIS2MDL: reading WHO_AM_I: %w", err)
	}
	if id != WhoAmI {
		return nil, fmt.Errorf("LIS2MDL: unexpected chip id %#02x, want %#02x", id, WhoAmI)
	}
	return m, nil
}

func (m *LIS2MDL) writeReg(reg, v byte) error {
	return m.bus.WriteBytes([]byte{reg, v})
}

func (m *LIS2MDL) readReg(reg byte) (byte, error) {
	var buf [1]byte
	err := m.bus.WriteByteReadBytes(reg, buf[:])
	return buf[0], err
}

func (m *LIS2MDL) modifyReg(reg byte, f func(byte) byte) error {
	v, err := m.readReg(reg)
	if err != nil {
		return err
	}
	return m.writeReg(reg, f(v))
}

// Reset restores the configuration registers to their defaults.
func (m *LIS2MDL) Reset() error {
	return m.modifyReg(MDLREG_CFG_REG_A, func(r byte) byte { return r | bitSoftRst })
}

// SetBlockDataUpdate holds output registers stable between the low and high
// byte reads of a sample.
func (m *LIS2MDL) SetBlockDataUpdate(on bool) error {
	return m.modifyReg(MDLREG_CFG_REG_C, func(r byte) byte {
		if on {
			return r | bitBdu
		}
		return r &^ bitBdu
	})
}

// SetTempCompensation enables the internal temperature compensation; ST
// recommends leaving it on in continuous mode.
func (m *LIS2MDL) SetTempCompensation(on bool) error {
	return m.modifyReg(MDLREG_CFG_REG_A, func(r byte) byte {
		if on {
			return r | bitCompTempEn
		}
		return r &^ bitCompTempEn
	})
}

// SetDataRate sets the output data rate.
func (m *LIS2MDL) SetDataRate(rate DataRate) error {
	return m.modifyReg(MDLREG_CFG_REG_A, func(r byte) byte {
		return r&^maskOdr | byte(rate&0x3)<<2
	})
}

// SetMode sets the operating mode; ModeContinuous starts conversions.
func (m *LIS2MDL) SetMode(mode Mode) error {
	return m.modifyReg(MDLREG_CFG_REG_A, func(r byte) byte {
		return r&^maskMode | byte(mode&0x3)
	})
}

// DataReady reports whether a new XYZ sample is available.
func (m *LIS2MDL) DataReady() (bool, error) {
	v, err := m.readReg(MDLREG_STATUS_REG)
	return v&bitZyxda != 0, err
}

// MagneticRaw returns one raw XYZ sample.
func (m *LIS2MDL) MagneticRaw() ([3]int16, error) {
	var buf [6]byte
	if err := m.bus.WriteByteReadBytes(MDLREG_OUTX_L_REG, buf[:]); err != nil {
		return [3]int16{}, fmt.Errorf("LIS2MDL: reading output: %w", err)
	}
	return [3]int16{
		int16(uint16(buf[0]) | uint16(buf[1])<<8),
		int16(uint16(buf[2]) | uint16(buf[3])<<8),
		int16(uint16(buf[4]) | uint16(buf[5])<<8),
	}, nil
}

// Magnetic returns one sample scaled to mgauss.
func (m *LIS2MDL) Magnetic() ([3]float64, error) {
	raw, err := m.MagneticRaw()
	if err != nil {
		return [3]float64{}, err
	}
	return [3]float64{
		float64(raw[0]) * mgaussPerLsb,
		float64(raw[1]) * mgaussPerLsb,
		float64(raw[2]) * mgaussPerLsb,
	}, nil
}

// TemperatureRaw returns the raw die temperature sample.
func (m *LIS2MDL) TemperatureRaw() (int16, error) {
	var buf [2]byte
	if err := m.bus.WriteByteReadBytes(MDLREG_TEMP_OUT_L, buf[:]); err != nil {
		return 0, fmt.Errorf("LIS2MDL: reading temperature: %w", err)
	}
	return int16(uint16(buf[0]) | uint16(buf[1])<<8), nil
}
