package lis2mdl

import (
	"errors"
	"fmt"
	"testing"
)

// fakeBus models the magnetometer's register file with auto-increment.
type fakeBus struct {
	regs [256]byte
}

func newFakeBus() *fakeBus {
	b := &fakeBus{}
	b.regs[MDLREG_WHO_AM_I] = WhoAmI
	return b
}

func (b *fakeBus) WriteBytes(wbuf []byte) error {
	if len(wbuf) < 2 {
		return fmt.Errorf("short write")
	}
	reg := wbuf[0]
	for i, v := range wbuf[1:] {
		b.regs[reg+byte(i)] = v
	}
	return nil
}

func (b *fakeBus) ReadBytes(rbuf []byte) error {
	return errors.New("unaddressed read")
}

func (b *fakeBus) WriteByteReadBytes(cmd byte, rbuf []byte) error {
	for i := range rbuf {
		rbuf[i] = b.regs[cmd+byte(i)]
	}
	return nil
}

func TestNewChecksIdentity(t *testing.T) {
	b := newFakeBus()
	if _, err := New(b); err != nil {
		t.Fatalf("New: %s", err)
	}
	b.regs[MDLREG_WHO_AM_I] = 0x33
	if _, err := New(b); err == nil {
		t.Error("wrong chip id accepted")
	}
}

func TestConfiguration(t *testing.T) {
	b := newFakeBus()
	m, err := New(b)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SetTempCompensation(true); err != nil {
		t.Fatal(err)
	}
	if err := m.SetDataRate(Rate100Hz); err != nil {
		t.Fatal(err)
	}
	if err := m.SetMode(ModeContinuous); err != nil {
		t.Fatal(err)
	}
	want := byte(bitCompTempEn) | byte(Rate100Hz)<<2 | byte(ModeContinuous)
	if b.regs[MDLREG_CFG_REG_A] != want {
		t.Errorf("CFG_REG_A = %#02x, want %#02x", b.regs[MDLREG_CFG_REG_A], want)
	}

	if err := m.SetBlockDataUpdate(true); err != nil {
		t.Fatal(err)
	}
	if b.regs[MDLREG_CFG_REG_C]&bitBdu == 0 {
		t.Error("BDU not set")
	}
}

func TestMagnetic(t *testing.T) {
	b := newFakeBus()
	m, err := New(b)
	if err != nil {
		t.Fatal(err)
	}

	// 100, -2, 0 little-endian
	copy(b.regs[MDLREG_OUTX_L_REG:], []byte{0x64, 0x00, 0xFE, 0xFF, 0x00, 0x00})
	raw, err := m.MagneticRaw()
	if err != nil {
		t.Fatal(err)
	}
	if raw != [3]int16{100, -2, 0} {
		t.Errorf("raw = %v", raw)
	}

	scaled, err := m.Magnetic()
	if err != nil {
		t.Fatal(err)
	}
	if scaled[0] != 150.0 || scaled[1] != -3.0 {
		t.Errorf("scaled = %v", scaled)
	}

	b.regs[MDLREG_STATUS_REG] = bitZyxda
	ready, err := m.DataReady()
	if err != nil {
		t.Fatal(err)
	}
	if !ready {
		t.Error("DataReady = false with ZYXDA set")
	}
}
