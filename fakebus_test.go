package lsm6dso16is

import (
	"errors"
	"fmt"
)

// fakeChip models the register file of the device closely enough to exercise
// the driver: three banks multiplexed on FUNC_CFG_ACCESS, ISPU memory behind
// the address/data window, and a scripted sensor-hub handshake.
type fakeChip struct {
	main [128]byte
	sh   [128]byte
	ispu [128]byte

	// ISPU memory model. Each selMemoryAddr starts a new stream; the bytes
	// written through MEM_DATA afterwards are appended to it.
	memSel       byte
	memAddr      uint16
	dummyPending bool
	progStreams []fakeStream
	dataStreams []fakeStream
	readMem     map[uint16]byte // backing store for windowed reads

	log []string // every register write, "bank reg=val"

	failWrite func(bank MemBank, reg byte) error
	failRead  func(bank MemBank, reg byte) error
}

type fakeStream struct {
	addr uint16
	data []byte
}

var errFakeBus = errors.New("fake bus failure")

func newFakeChip() *fakeChip {
	c := &fakeChip{readMem: make(map[uint16]byte)}
	c.main[LSMREG_WHO_AM_I] = WhoAmI
	// Data-ready and hub end-of-op always asserted so handshakes finish on
	// the first poll.
	c.main[LSMREG_STATUS_REG] = bitXlda | bitGda | bitTda
	c.main[LSMREG_STATUS_MASTER_MAIN] = bitSensHubEndop
	c.sh[SHREG_STATUS_MASTER] = bitSensHubEndop
	return c
}

func (c *fakeChip) bank() MemBank {
	switch {
	case c.main[LSMREG_FUNC_CFG_ACCESS]&bitShubRegAccess != 0:
		return MemBankSensorHub
	case c.main[LSMREG_FUNC_CFG_ACCESS]&bitIspuRegAccess != 0:
		return MemBankIspu
	}
	return MemBankMain
}

func (c *fakeChip) file() *[128]byte {
	switch c.bank() {
	case MemBankSensorHub:
		return &c.sh
	case MemBankIspu:
		return &c.ispu
	}
	return &c.main
}

func (c *fakeChip) WriteBytes(wbuf []byte) error {
	if len(wbuf) < 2 {
		return fmt.Errorf("fake: short write")
	}
	reg := wbuf[0]
	for i, v := range wbuf[1:] {
		if err := c.writeOne(reg+byte(i), v); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeChip) writeOne(reg, v byte) error {
	bank := c.bank()
	if c.failWrite != nil {
		if err := c.failWrite(bank, reg); err != nil {
			return err
		}
	}
	c.log = append(c.log, fmt.Sprintf("%s %02x=%02x", bank, reg, v))

	// FUNC_CFG_ACCESS is reachable from every bank and always lands in the
	// shared selector.
	if reg == LSMREG_FUNC_CFG_ACCESS {
		c.main[reg] = v
		return nil
	}

	if bank == MemBankIspu {
		switch reg {
		case ISPUREG_MEM_SEL:
			c.memSel = v
			return nil
		case ISPUREG_MEM_ADDR0:
			c.memAddr = c.memAddr&0xFF00 | uint16(v)
			return nil
		case ISPUREG_MEM_ADDR0 + 1:
			// The address takes effect once both bytes are written.
			c.memAddr = c.memAddr&0x00FF | uint16(v)<<8
			c.startStream()
			return nil
		case ISPUREG_MEM_DATA:
			c.appendStream(v)
			return nil
		}
	}

	c.file()[reg] = v
	// Software reset self-clears immediately.
	if bank == MemBankMain && reg == LSMREG_CTRL3_C {
		c.main[reg] &^= bitSwReset
	}
	return nil
}

// startStream is called on each address-register write; the second byte of
// the 16-bit address completes the window setup.
func (c *fakeChip) startStream() {
	if c.memSel&bitReadMemEn != 0 {
		c.dummyPending = true
		return
	}
	s := fakeStream{addr: c.memAddr}
	if c.memSel&bitMemSel != 0 {
		c.progStreams = append(c.progStreams, s)
	} else {
		c.dataStreams = append(c.dataStreams, s)
	}
}

func (c *fakeChip) appendStream(v byte) {
	var streams *[]fakeStream
	if c.memSel&bitMemSel != 0 {
		streams = &c.progStreams
	} else {
		streams = &c.dataStreams
	}
	last := &(*streams)[len(*streams)-1]
	last.data = append(last.data, v)
}

func (c *fakeChip) ReadBytes(rbuf []byte) error {
	return fmt.Errorf("fake: unaddressed read")
}

func (c *fakeChip) WriteByteReadBytes(cmd byte, rbuf []byte) error {
	bank := c.bank()
	if c.failRead != nil {
		if err := c.failRead(bank, cmd); err != nil {
			return err
		}
	}
	for i := range rbuf {
		reg := cmd + byte(i)
		if reg == LSMREG_FUNC_CFG_ACCESS {
			rbuf[i] = c.main[reg]
			continue
		}
		if bank == MemBankIspu && reg == ISPUREG_MEM_DATA {
			// First read after an address write returns the stale latch;
			// later reads stream with post-increment.
			if c.dummyPending {
				c.dummyPending = false
				rbuf[i] = 0xFF
				continue
			}
			rbuf[i] = c.readMem[c.memAddr]
			c.memAddr++
			continue
		}
		rbuf[i] = c.file()[reg]
	}
	return nil
}

// instantTimer keeps poll loops from sleeping in tests.
type instantTimer struct{}

func (instantTimer) DelayMs(int) {}

func newTestDriver(c *fakeChip) *LSM6DSO16IS {
	d, err := New(c, instantTimer{})
	if err != nil {
		panic(err)
	}
	return d
}
