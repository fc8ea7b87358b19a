package lsm6dso16is

import (
	log "github.com/sirupsen/logrus"
)

// MemBank identifies one of the three register address spaces multiplexed on
// the chip's 8-bit register bus. The device powers up in MemBankMain.
type MemBank byte

const (
	MemBankMain      MemBank = 0x0
	MemBankSensorHub MemBank = 0x2
	MemBankIspu      MemBank = 0x3
)

func (b MemBank) String() string {
	switch b {
	case MemBankMain:
		return "main"
	case MemBankSensorHub:
		return "sensor hub"
	case MemBankIspu:
		return "ispu"
	}
	return "unknown"
}

// memBankSet selects the active bank by rewriting FUNC_CFG_ACCESS, which is
// reachable from every bank. The selector bits are the whole write; the
// ISPU-reset bit is left at zero deliberately.
func (d *LSM6DSO16IS) memBankSet(bank MemBank) error {
	var v byte
	switch bank {
	case MemBankSensorHub:
		v = bitShubRegAccess
	case MemBankIspu:
		v = bitIspuRegAccess
	}
	if err := d.writeReg(LSMREG_FUNC_CFG_ACCESS, v); err != nil {
		return FailedToSetMemBankError{Bank: bank}
	}
	return nil
}

// MemBankGet reconstructs the active bank from the device itself. There is no
// software mirror to go stale across an external reset.
func (d *LSM6DSO16IS) MemBankGet() (MemBank, error) {
	v, err := d.readReg(LSMREG_FUNC_CFG_ACCESS)
	if err != nil {
		return MemBankMain, ErrFailedToReadMemBank
	}
	switch {
	case v&bitShubRegAccess != 0:
		return MemBankSensorHub, nil
	case v&bitIspuRegAccess != 0:
		return MemBankIspu, nil
	}
	return MemBankMain, nil
}

// shBank scopes register access to the sensor-hub bank. It is handed to the
// callback of operateOverSensorHub and must not outlive it.
type shBank struct {
	d *LSM6DSO16IS
}

func (b *shBank) writeReg(reg, v byte) error          { return b.d.writeReg(reg, v) }
func (b *shBank) readReg(reg byte) (byte, error)      { return b.d.readReg(reg) }
func (b *shBank) readRegs(reg byte, buf []byte) error { return b.d.readRegs(reg, buf) }
func (b *shBank) modifyReg(reg byte, f func(byte) byte) error {
	return b.d.modifyReg(reg, f)
}

// ispuBank scopes register access to the ISPU bank.
type ispuBank struct {
	d *LSM6DSO16IS
}

func (b *ispuBank) writeReg(reg, v byte) error           { return b.d.writeReg(reg, v) }
func (b *ispuBank) writeRegs(reg byte, buf []byte) error { return b.d.writeRegs(reg, buf) }
func (b *ispuBank) readReg(reg byte) (byte, error)       { return b.d.readReg(reg) }
func (b *ispuBank) readRegs(reg byte, buf []byte) error  { return b.d.readRegs(reg, buf) }
func (b *ispuBank) modifyReg(reg byte, f func(byte) byte) error {
	return b.d.modifyReg(reg, f)
}

// selMemoryAddr programs the 16-bit ISPU memory address window.
func (b *ispuBank) selMemoryAddr(addr uint16) error {
	return b.writeRegs(ISPUREG_MEM_ADDR0, []byte{byte(addr), byte(addr >> 8)})
}

// operateOverSensorHub runs f with the sensor-hub bank selected and restores
// the main bank on every exit path. If f fails, its error wins; a restore
// failure on top of it is logged, not returned, so the root cause is never
// masked.
func (d *LSM6DSO16IS) operateOverSensorHub(f func(*shBank) error) error {
	return d.operateOverBank(MemBankSensorHub, func() error { return f(&shBank{d: d}) })
}

// operateOverIspu is operateOverSensorHub for the ISPU bank.
func (d *LSM6DSO16IS) operateOverIspu(f func(*ispuBank) error) error {
	return d.operateOverBank(MemBankIspu, func() error { return f(&ispuBank{d: d}) })
}

func (d *LSM6DSO16IS) operateOverBank(bank MemBank, f func() error) error {
	if err := d.memBankSet(bank); err != nil {
		return err
	}
	ferr := f()
	if rerr := d.memBankSet(MemBankMain); rerr != nil {
		if ferr != nil {
			log.Warnf("LSM6DSO16IS: could not restore main bank after failed %s operation: %s", bank, rerr)
			return ferr
		}
		return rerr
	}
	return ferr
}
