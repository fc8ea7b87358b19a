package lsm6dso16is

import (
	"fmt"
	"sync"

	"github.com/westphae/lsm6dso16is/bus"
)

// Master owns the chip's sensor-hub I2C master and serializes access to it.
// Secondary-device drivers obtain a Passthrough from it and use that as their
// bus; the hub cycles behind each transfer borrow the accelerometer as the
// trigger source, so direct accel use must go through Do while transfers are
// in flight.
type Master struct {
	mu  sync.Mutex
	dev *LSM6DSO16IS
}

func NewMaster(dev *LSM6DSO16IS) *Master {
	return &Master{dev: dev}
}

// Do runs f with exclusive access to the device, mutually excluded with any
// hub transfer.
func (m *Master) Do(f func(*LSM6DSO16IS) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return f(m.dev)
}

// Passthrough returns a bus for the secondary device at the given 7-bit I2C
// address. The returned bus is safe for concurrent use with other
// passthroughs from the same Master.
func (m *Master) Passthrough(addr byte) *Passthrough {
	return &Passthrough{m: m, addr: addr}
}

// Passthrough adapts the sensor hub into a bus.Bus, so drivers written
// against a direct connection run unchanged behind the chip.
type Passthrough struct {
	m    *Master
	addr byte
}

var _ bus.Bus = (*Passthrough)(nil)

// WriteBytes writes wbuf[1:] to the secondary device starting at register
// wbuf[0]. The hub writes one byte per cycle, so each data byte costs a full
// triggered cycle.
func (p *Passthrough) WriteBytes(wbuf []byte) error {
	if len(wbuf) < 2 {
		return fmt.Errorf("%w: passthrough write needs a register and at least one byte", ErrUnexpectedValue)
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	d := p.m.dev
	reg := wbuf[0]
	for i, v := range wbuf[1:] {
		err := d.ShCfgWrite(ShCfgWrite{
			SlvAddr:   p.addr,
			SlvSubAdd: reg + byte(i),
			SlvData:   v,
		})
		if err != nil {
			return err
		}
		if err := d.shTriggerCycle(); err != nil {
			return err
		}
	}
	return nil
}

// ReadBytes cannot work through the hub: every hub read is addressed, and the
// secondary's internal pointer is not observable from here.
func (p *Passthrough) ReadBytes(rbuf []byte) error {
	return fmt.Errorf("%w: passthrough requires a register-addressed read", ErrUnexpectedValue)
}

// WriteByteReadBytes reads len(rbuf) bytes from the secondary device starting
// at register cmd, in a single hub cycle.
func (p *Passthrough) WriteByteReadBytes(cmd byte, rbuf []byte) error {
	if len(rbuf) == 0 || len(rbuf) > shMaxReadLen {
		return fmt.Errorf("%w: passthrough read of %d bytes", ErrUnexpectedValue, len(rbuf))
	}
	p.m.mu.Lock()
	defer p.m.mu.Unlock()
	d := p.m.dev
	err := d.ShSlvCfgRead(0, ShCfgRead{
		SlvAddr:   p.addr,
		SlvSubAdd: cmd,
		SlvLen:    byte(len(rbuf)),
	})
	if err != nil {
		return err
	}
	if err := d.SetShSlaveConnected(ShSlave0); err != nil {
		return err
	}
	if err := d.shTriggerCycle(); err != nil {
		return err
	}
	return d.ShReadDataRaw(rbuf)
}

// shTriggerCycle runs one hub cycle. The hub master only clocks when the
// accelerometer produces a sample, so the accel is switched on at a low rate
// just long enough to trigger the transfer, then everything is switched back
// off.
func (d *LSM6DSO16IS) shTriggerCycle() error {
	if err := d.SetAccelDataRate(RateOff); err != nil {
		return err
	}
	if err := d.SetShMaster(true); err != nil {
		return err
	}
	if err := d.SetAccelDataRate(Rate26HzHP); err != nil {
		return err
	}
	// Flush the stale sample so the data-ready below marks a fresh cycle.
	if _, err := d.AccelerationRaw(); err != nil {
		return err
	}
	err := d.poll("accel data-ready", func() (bool, error) {
		return d.AccelDataReady()
	})
	if err == nil {
		err = d.poll("sensor hub end-of-op", func() (bool, error) {
			st, err := d.ShStatus()
			return st.EndOp, err
		})
	}
	if merr := d.SetShMaster(false); merr != nil && err == nil {
		err = merr
	}
	if aerr := d.SetAccelDataRate(RateOff); aerr != nil && err == nil {
		err = aerr
	}
	return err
}
