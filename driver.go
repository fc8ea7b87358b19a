// Package lsm6dso16is drives the ST LSM6DSO16IS 6-axis IMU, including its
// embedded sensor-hub I2C master and ISPU signal-processing core.
//
// Approach adapted from the ST reference drivers for this part.
package lsm6dso16is

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/westphae/lsm6dso16is/bus"
)

// Driver errors. Bus-level failures are wrapped with chip context and can be
// unwrapped to the transport's native error.
var (
	ErrUnexpectedValue     = errors.New("LSM6DSO16IS: unexpected value")
	ErrTimeout             = errors.New("LSM6DSO16IS: timed out")
	ErrFailedToReadMemBank = errors.New("LSM6DSO16IS: could not read memory bank selector")
)

// FailedToSetMemBankError reports a failed switch to a specific bank.
type FailedToSetMemBankError struct {
	Bank MemBank
}

func (e FailedToSetMemBankError) Error() string {
	return fmt.Sprintf("LSM6DSO16IS: could not select memory bank %s", e.Bank)
}

// Timer supplies the millisecond delays used by the busy-poll loops. It is an
// interface so tests can run the loops instantaneously.
type Timer interface {
	DelayMs(ms int)
}

type sleepTimer struct{}

func (sleepTimer) DelayMs(ms int) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// SleepTimer returns the default Timer backed by time.Sleep.
func SleepTimer() Timer { return sleepTimer{} }

const (
	defaultPollIntervalMs = 20
	defaultPollRetries    = 250 // 5 s at the default interval
)

// LSM6DSO16IS represents one chip on a bus. The driver holds no register
// state in software: every get re-reads the device, so it stays correct
// across external resets.
type LSM6DSO16IS struct {
	bus bus.Bus
	tim Timer

	pollIntervalMs int
	pollRetries    int
}

// New builds a driver over an already-configured bus (I2C or SPI, see the bus
// package) and verifies the chip identity before returning.
func New(b bus.Bus, tim Timer) (*LSM6DSO16IS, error) {
	d := &LSM6DSO16IS{
		bus:            b,
		tim:            tim,
		pollIntervalMs: defaultPollIntervalMs,
		pollRetries:    defaultPollRetries,
	}
	id, err := d.DeviceID()
	if err != nil {
		return nil, fmt.Errorf("LSM6DSO16IS: could not read WHO_AM_I: %w", err)
	}
	if id != WhoAmI {
		return nil, fmt.Errorf("%w: WHO_AM_I %#02x, expecting %#02x", ErrUnexpectedValue, id, WhoAmI)
	}
	return d, nil
}

// SetPollTimeout tunes the busy-poll loops used by the sensor-hub handshake
// and the software-reset wait. retries <= 0 restores the default cap.
func (d *LSM6DSO16IS) SetPollTimeout(intervalMs, retries int) {
	if intervalMs > 0 {
		d.pollIntervalMs = intervalMs
	}
	if retries > 0 {
		d.pollRetries = retries
	} else {
		d.pollRetries = defaultPollRetries
	}
}

// Register access helpers. Multi-byte reads and writes rely on the device's
// register auto-increment (IF_INC, enabled at power-up).

func (d *LSM6DSO16IS) writeRegs(reg byte, buf []byte) error {
	wbuf := make([]byte, len(buf)+1)
	wbuf[0] = reg
	copy(wbuf[1:], buf)
	return d.bus.WriteBytes(wbuf)
}

func (d *LSM6DSO16IS) writeReg(reg, v byte) error {
	return d.bus.WriteBytes([]byte{reg, v})
}

func (d *LSM6DSO16IS) readRegs(reg byte, buf []byte) error {
	return d.bus.WriteByteReadBytes(reg, buf)
}

func (d *LSM6DSO16IS) readReg(reg byte) (byte, error) {
	var buf [1]byte
	err := d.bus.WriteByteReadBytes(reg, buf[:])
	return buf[0], err
}

// modifyReg reads a control register, lets f rewrite it, and writes it back,
// so sibling fields survive the write.
func (d *LSM6DSO16IS) modifyReg(reg byte, f func(byte) byte) error {
	v, err := d.readReg(reg)
	if err != nil {
		return err
	}
	return d.writeReg(reg, f(v))
}

func (d *LSM6DSO16IS) readU16(reg byte) (uint16, error) {
	var buf [2]byte
	if err := d.readRegs(reg, buf[:]); err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

func (d *LSM6DSO16IS) readU32(reg byte) (uint32, error) {
	var buf [4]byte
	if err := d.readRegs(reg, buf[:]); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

// poll re-runs f every pollIntervalMs until it reports done, the retry cap is
// reached (ErrTimeout), or f fails.
func (d *LSM6DSO16IS) poll(what string, f func() (bool, error)) error {
	for i := 0; i < d.pollRetries; i++ {
		done, err := f()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		d.tim.DelayMs(d.pollIntervalMs)
	}
	return fmt.Errorf("%w waiting for %s", ErrTimeout, what)
}

// DeviceID reads WHO_AM_I. A healthy, correctly-addressed chip answers WhoAmI.
func (d *LSM6DSO16IS) DeviceID() (byte, error) {
	return d.readReg(LSMREG_WHO_AM_I)
}

// SoftwareReset restores the default values in all user registers and waits
// (bounded) for the device to clear the reset bit.
func (d *LSM6DSO16IS) SoftwareReset() error {
	if err := d.SetAccelDataRate(RateOff); err != nil {
		return err
	}
	if err := d.SetGyroDataRate(RateOff); err != nil {
		return err
	}
	if err := d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte { return v | bitSwReset }); err != nil {
		return err
	}
	return d.poll("software reset", func() (bool, error) {
		v, err := d.readReg(LSMREG_CTRL3_C)
		return v&bitSwReset == 0, err
	})
}

// SetBoot reboots the memory content when on, reloading trim parameters.
func (d *LSM6DSO16IS) SetBoot(on bool) error {
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		if on {
			return v | bitBoot
		}
		return v &^ bitBoot
	})
}

func (d *LSM6DSO16IS) Boot() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return v&bitBoot != 0, err
}

// SetAccelHighPerformance enables (true) or disables the accelerometer
// high-performance mode (CTRL6_C.XL_HM_MODE, which is active-low on the chip).
func (d *LSM6DSO16IS) SetAccelHighPerformance(on bool) error {
	return d.modifyReg(LSMREG_CTRL6_C, func(v byte) byte {
		if on {
			return v &^ (1 << 4)
		}
		return v | 1<<4
	})
}

func (d *LSM6DSO16IS) AccelHighPerformance() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL6_C)
	return v&(1<<4) == 0, err
}

// SetAccelFullScale sets FS_XL in CTRL1_XL.
func (d *LSM6DSO16IS) SetAccelFullScale(fs AccelFS) error {
	return d.modifyReg(LSMREG_CTRL1_XL, func(v byte) byte {
		return v&^(0x3<<2) | byte(fs&0x3)<<2
	})
}

func (d *LSM6DSO16IS) AccelFullScale() (AccelFS, error) {
	v, err := d.readReg(LSMREG_CTRL1_XL)
	return AccelFS(v >> 2 & 0x3), err
}

// SetAccelDataRate programs ODR_XL. Low-power rates (bit 4 set) also turn the
// high-performance mode off, matching the encoding of DataRate.
func (d *LSM6DSO16IS) SetAccelDataRate(rate DataRate) error {
	if err := d.SetAccelHighPerformance(rate&0x10 == 0); err != nil {
		return err
	}
	return d.modifyReg(LSMREG_CTRL1_XL, func(v byte) byte {
		return v&0x0F | byte(rate&0xF)<<4
	})
}

func (d *LSM6DSO16IS) AccelDataRate() (DataRate, error) {
	v, err := d.readReg(LSMREG_CTRL1_XL)
	if err != nil {
		return RateOff, err
	}
	hp, err := d.AccelHighPerformance()
	if err != nil {
		return RateOff, err
	}
	rate := DataRate(v >> 4 & 0xF)
	if !hp {
		rate |= 0x10
	}
	return rate, nil
}

// SetGyroHighPerformance mirrors SetAccelHighPerformance for the gyroscope
// (CTRL7_G.G_HM_MODE).
func (d *LSM6DSO16IS) SetGyroHighPerformance(on bool) error {
	return d.modifyReg(LSMREG_CTRL7_G, func(v byte) byte {
		if on {
			return v &^ (1 << 7)
		}
		return v | 1<<7
	})
}

func (d *LSM6DSO16IS) GyroHighPerformance() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL7_G)
	return v&(1<<7) == 0, err
}

// SetGyroFullScale sets FS_G and FS_125 in CTRL2_G.
func (d *LSM6DSO16IS) SetGyroFullScale(fs GyroFS) error {
	return d.modifyReg(LSMREG_CTRL2_G, func(v byte) byte {
		v = v&^(0x3<<2) | byte(fs&0x3)<<2
		return v&^(1<<1) | byte(fs>>4&0x1)<<1
	})
}

func (d *LSM6DSO16IS) GyroFullScale() (GyroFS, error) {
	v, err := d.readReg(LSMREG_CTRL2_G)
	return GyroFS(v>>1&0x1)<<4 | GyroFS(v>>2&0x3), err
}

// SetGyroDataRate programs ODR_G, with the same low-power coupling as the
// accelerometer.
func (d *LSM6DSO16IS) SetGyroDataRate(rate DataRate) error {
	if err := d.SetGyroHighPerformance(rate&0x10 == 0); err != nil {
		return err
	}
	return d.modifyReg(LSMREG_CTRL2_G, func(v byte) byte {
		return v&0x0F | byte(rate&0xF)<<4
	})
}

func (d *LSM6DSO16IS) GyroDataRate() (DataRate, error) {
	v, err := d.readReg(LSMREG_CTRL2_G)
	if err != nil {
		return RateOff, err
	}
	hp, err := d.GyroHighPerformance()
	if err != nil {
		return RateOff, err
	}
	rate := DataRate(v >> 4 & 0xF)
	if !hp {
		rate |= 0x10
	}
	return rate, nil
}

// SetAutoIncrement controls register auto-increment on multi-byte access
// (enabled at power-up; the multi-byte codecs in this driver require it).
func (d *LSM6DSO16IS) SetAutoIncrement(on bool) error {
	if !on {
		log.Warn("LSM6DSO16IS: disabling register auto-increment breaks multi-byte reads")
	}
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		if on {
			return v | bitIfInc
		}
		return v &^ bitIfInc
	})
}

func (d *LSM6DSO16IS) AutoIncrement() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return v&bitIfInc != 0, err
}

// SetBlockDataUpdate makes output registers hold until both bytes are read.
func (d *LSM6DSO16IS) SetBlockDataUpdate(on bool) error {
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		if on {
			return v | bitBdu
		}
		return v &^ bitBdu
	})
}

func (d *LSM6DSO16IS) BlockDataUpdate() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return v&bitBdu != 0, err
}

// SetGyroSleep enables the gyroscope sleep mode (CTRL4_C.SLEEP_G).
func (d *LSM6DSO16IS) SetGyroSleep(on bool) error {
	return d.modifyReg(LSMREG_CTRL4_C, func(v byte) byte {
		if on {
			return v | 1<<6
		}
		return v &^ (1 << 6)
	})
}

func (d *LSM6DSO16IS) GyroSleep() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL4_C)
	return v&(1<<6) != 0, err
}

// SetAccelSelfTest drives the accelerometer self-test (ST_XL).
func (d *LSM6DSO16IS) SetAccelSelfTest(st SelfTest) error {
	return d.modifyReg(LSMREG_CTRL5_C, func(v byte) byte {
		return v&^0x3 | byte(st&0x3)
	})
}

func (d *LSM6DSO16IS) AccelSelfTest() (SelfTest, error) {
	v, err := d.readReg(LSMREG_CTRL5_C)
	return SelfTest(v & 0x3), err
}

// SetGyroSelfTest drives the gyroscope self-test (ST_G).
func (d *LSM6DSO16IS) SetGyroSelfTest(st SelfTest) error {
	return d.modifyReg(LSMREG_CTRL5_C, func(v byte) byte {
		return v&^(0x3<<2) | byte(st&0x3)<<2
	})
}

func (d *LSM6DSO16IS) GyroSelfTest() (SelfTest, error) {
	v, err := d.readReg(LSMREG_CTRL5_C)
	return SelfTest(v >> 2 & 0x3), err
}

// SetSdoPullUp controls the pull-up on the SDO pin.
func (d *LSM6DSO16IS) SetSdoPullUp(on bool) error {
	return d.modifyReg(LSMREG_PIN_CTRL, func(v byte) byte {
		if on {
			return v | 1<<6
		}
		return v &^ (1 << 6)
	})
}

func (d *LSM6DSO16IS) SdoPullUp() (bool, error) {
	v, err := d.readReg(LSMREG_PIN_CTRL)
	return v&(1<<6) != 0, err
}

// SetSpiMode selects 3- or 4-wire SPI (CTRL3_C.SIM).
func (d *LSM6DSO16IS) SetSpiMode(m SpiMode) error {
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		return v&^bitSim | byte(m&0x1)<<3
	})
}

func (d *LSM6DSO16IS) SpiMode() (SpiMode, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return SpiMode(v >> 3 & 0x1), err
}

// SetI2CDisable turns the I2C user interface off (CTRL4_C.I2C_disable); only
// meaningful when driving the chip over SPI.
func (d *LSM6DSO16IS) SetI2CDisable(off bool) error {
	return d.modifyReg(LSMREG_CTRL4_C, func(v byte) byte {
		if off {
			return v | 1<<2
		}
		return v &^ (1 << 2)
	})
}

func (d *LSM6DSO16IS) I2CDisabled() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL4_C)
	return v&(1<<2) != 0, err
}

// SetDataReadyMode selects latched or pulsed data-ready.
func (d *LSM6DSO16IS) SetDataReadyMode(m DataReadyMode) error {
	return d.modifyReg(LSMREG_DRDY_PULSED_REG, func(v byte) byte {
		return v&^(1<<7) | byte(m&0x1)<<7
	})
}

func (d *LSM6DSO16IS) DataReadyMode() (DataReadyMode, error) {
	v, err := d.readReg(LSMREG_DRDY_PULSED_REG)
	return DataReadyMode(v >> 7 & 0x1), err
}

// SetOdrCal trims the effective ODR in 0.15% steps, 8-bit two's complement
// (INTERNAL_FREQ_FINE).
func (d *LSM6DSO16IS) SetOdrCal(v byte) error {
	return d.writeReg(LSMREG_INTERNAL_FREQ_FINE, v)
}

func (d *LSM6DSO16IS) OdrCal() (byte, error) {
	return d.readReg(LSMREG_INTERNAL_FREQ_FINE)
}

// SetTimestamp starts or stops the 32-bit timestamp counter.
func (d *LSM6DSO16IS) SetTimestamp(on bool) error {
	return d.modifyReg(LSMREG_CTRL10_C, func(v byte) byte {
		if on {
			return v | 1<<5
		}
		return v &^ (1 << 5)
	})
}

func (d *LSM6DSO16IS) Timestamp() (bool, error) {
	v, err := d.readReg(LSMREG_CTRL10_C)
	return v&(1<<5) != 0, err
}

// TimestampRaw reads the 32-bit timestamp counter (25 us per LSB).
func (d *LSM6DSO16IS) TimestampRaw() (uint32, error) {
	return d.readU32(LSMREG_TIMESTAMP0)
}

// Status reads and decodes STATUS_REG.
func (d *LSM6DSO16IS) Status() (StatusReg, error) {
	v, err := d.readReg(LSMREG_STATUS_REG)
	return decodeStatusReg(v), err
}

// AccelDataReady reports whether a new accelerometer sample is available.
func (d *LSM6DSO16IS) AccelDataReady() (bool, error) {
	v, err := d.readReg(LSMREG_STATUS_REG)
	return v&bitXlda != 0, err
}

func (d *LSM6DSO16IS) GyroDataReady() (bool, error) {
	v, err := d.readReg(LSMREG_STATUS_REG)
	return v&bitGda != 0, err
}

func (d *LSM6DSO16IS) TempDataReady() (bool, error) {
	v, err := d.readReg(LSMREG_STATUS_REG)
	return v&bitTda != 0, err
}

// AllSources snapshots every interrupt source in one pass.
func (d *LSM6DSO16IS) AllSources() (AllSources, error) {
	var src AllSources
	status, err := d.readReg(LSMREG_STATUS_REG)
	if err != nil {
		return src, err
	}
	master, err := d.readReg(LSMREG_STATUS_MASTER_MAIN)
	if err != nil {
		return src, err
	}
	ispu, err := d.readU32(LSMREG_ISPU_INT_STATUS0)
	if err != nil {
		return src, err
	}
	src.AccelReady = status&bitXlda != 0
	src.GyroReady = status&bitGda != 0
	src.TempReady = status&bitTda != 0
	src.StatusMaster = decodeStatusMaster(master)
	src.Ispu = ispu
	return src, nil
}

// TemperatureRaw reads OUT_TEMP as a signed 16-bit LSB count.
func (d *LSM6DSO16IS) TemperatureRaw() (int16, error) {
	v, err := d.readU16(LSMREG_OUT_TEMP_L)
	return int16(v), err
}

// AngularRateRaw reads the three gyroscope axes.
func (d *LSM6DSO16IS) AngularRateRaw() ([3]int16, error) {
	return d.readXYZ(LSMREG_OUTX_L_G)
}

// AccelerationRaw reads the three accelerometer axes.
func (d *LSM6DSO16IS) AccelerationRaw() ([3]int16, error) {
	return d.readXYZ(LSMREG_OUTX_L_A)
}

func (d *LSM6DSO16IS) readXYZ(reg byte) ([3]int16, error) {
	var buf [6]byte
	var out [3]int16
	if err := d.readRegs(reg, buf[:]); err != nil {
		return out, err
	}
	for i := range out {
		out[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	return out, nil
}

// SetIntPinMode selects push-pull or open-drain for both interrupt pins.
func (d *LSM6DSO16IS) SetIntPinMode(m IntPinMode) error {
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		return v&^bitPpOd | byte(m&0x1)<<4
	})
}

func (d *LSM6DSO16IS) IntPinMode() (IntPinMode, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return IntPinMode(v >> 4 & 0x1), err
}

// SetPinPolarity selects the interrupt active level.
func (d *LSM6DSO16IS) SetPinPolarity(p PinPolarity) error {
	return d.modifyReg(LSMREG_CTRL3_C, func(v byte) byte {
		return v&^bitHLactive | byte(p&0x1)<<5
	})
}

func (d *LSM6DSO16IS) PinPolarity() (PinPolarity, error) {
	v, err := d.readReg(LSMREG_CTRL3_C)
	return PinPolarity(v >> 5 & 0x1), err
}

// SetPinInt1Route routes interrupt signals to the INT1 pin (INT1_CTRL and
// MD1_CFG together).
func (d *LSM6DSO16IS) SetPinInt1Route(r PinInt1Route) error {
	err := d.modifyReg(LSMREG_INT1_CTRL, func(v byte) byte {
		v &^= 0x07
		return v | bit(r.AccelReady, 0) | bit(r.GyroReady, 1) | bit(r.Boot, 2)
	})
	if err != nil {
		return err
	}
	return d.modifyReg(LSMREG_MD1_CFG, func(v byte) byte {
		v &^= 0x03
		return v | bit(r.ShEndOp, 0) | bit(r.Ispu, 1)
	})
}

func (d *LSM6DSO16IS) PinInt1Route() (PinInt1Route, error) {
	var r PinInt1Route
	ctrl, err := d.readReg(LSMREG_INT1_CTRL)
	if err != nil {
		return r, err
	}
	md, err := d.readReg(LSMREG_MD1_CFG)
	if err != nil {
		return r, err
	}
	r.AccelReady = ctrl&(1<<0) != 0
	r.GyroReady = ctrl&(1<<1) != 0
	r.Boot = ctrl&(1<<2) != 0
	r.ShEndOp = md&(1<<0) != 0
	r.Ispu = md&(1<<1) != 0
	return r, nil
}

// SetPinInt2Route routes interrupt signals to the INT2 pin (INT2_CTRL and
// MD2_CFG together).
func (d *LSM6DSO16IS) SetPinInt2Route(r PinInt2Route) error {
	err := d.modifyReg(LSMREG_INT2_CTRL, func(v byte) byte {
		v &^= 0x87
		return v | bit(r.AccelReady, 0) | bit(r.GyroReady, 1) | bit(r.TempReady, 2) | bit(r.IspuSleep, 7)
	})
	if err != nil {
		return err
	}
	return d.modifyReg(LSMREG_MD2_CFG, func(v byte) byte {
		v &^= 0x03
		return v | bit(r.Timestamp, 0) | bit(r.Ispu, 1)
	})
}

func (d *LSM6DSO16IS) PinInt2Route() (PinInt2Route, error) {
	var r PinInt2Route
	ctrl, err := d.readReg(LSMREG_INT2_CTRL)
	if err != nil {
		return r, err
	}
	md, err := d.readReg(LSMREG_MD2_CFG)
	if err != nil {
		return r, err
	}
	r.AccelReady = ctrl&(1<<0) != 0
	r.GyroReady = ctrl&(1<<1) != 0
	r.TempReady = ctrl&(1<<2) != 0
	r.IspuSleep = ctrl&(1<<7) != 0
	r.Timestamp = md&(1<<0) != 0
	r.Ispu = md&(1<<1) != 0
	return r, nil
}
