package lsm6dso16is

import (
	"errors"
	"strings"
	"testing"
)

func TestPassthroughWriteOneCyclePerByte(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)
	p := NewMaster(d).Passthrough(0x1E)

	if err := p.WriteBytes([]byte{0x60, 0xAA, 0xBB}); err != nil {
		t.Fatalf("WriteBytes: %s", err)
	}

	// Two data bytes, two slot-0 programs at consecutive subaddresses.
	var subs, datas []byte
	for _, entry := range c.log {
		if strings.HasPrefix(entry, "sensor hub 16=") { // SLV0_SUBADD
			subs = append(subs, parseHexByte(t, entry))
		}
		if strings.HasPrefix(entry, "sensor hub 21=") { // DATAWRITE_SLV0
			datas = append(datas, parseHexByte(t, entry))
		}
	}
	if len(subs) != 2 || subs[0] != 0x60 || subs[1] != 0x61 {
		t.Errorf("subaddress sequence %x, want [60 61]", subs)
	}
	if len(datas) != 2 || datas[0] != 0xAA || datas[1] != 0xBB {
		t.Errorf("data sequence %x, want [aa bb]", datas)
	}

	// The hub master and the accelerometer must both be off afterwards.
	if c.sh[SHREG_MASTER_CONFIG]&bitMasterOn != 0 {
		t.Error("hub master left on")
	}
	if c.main[LSMREG_CTRL1_XL]>>4 != 0 {
		t.Error("accelerometer left running")
	}
	if got, _ := d.MemBankGet(); got != MemBankMain {
		t.Errorf("bank not restored, still %s", got)
	}
}

func TestPassthroughWriteTooShort(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)
	p := NewMaster(d).Passthrough(0x1E)

	if err := p.WriteBytes([]byte{0x60}); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("register-only write: want ErrUnexpectedValue, got %v", err)
	}
}

func TestPassthroughRead(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)
	p := NewMaster(d).Passthrough(0x1E)

	for i := 0; i < 6; i++ {
		c.sh[SHREG_SENSOR_HUB_1+i] = byte(0x50 + i)
	}
	buf := make([]byte, 6)
	if err := p.WriteByteReadBytes(0x68, buf); err != nil {
		t.Fatalf("WriteByteReadBytes: %s", err)
	}
	for i, v := range buf {
		if v != byte(0x50+i) {
			t.Errorf("byte %d = %#02x", i, v)
		}
	}

	if c.sh[SHREG_SLV0_ADD] != 0x1E<<1|0x01 {
		t.Errorf("SLV0_ADD = %#02x, want read bit set", c.sh[SHREG_SLV0_ADD])
	}
	if c.sh[SHREG_SLV0_SUBADD] != 0x68 {
		t.Errorf("SLV0_SUBADD = %#02x", c.sh[SHREG_SLV0_SUBADD])
	}
	if c.sh[SHREG_SLV0_CONFIG]&0x07 != 6 {
		t.Errorf("SLV0_CONFIG count = %d, want 6", c.sh[SHREG_SLV0_CONFIG]&0x07)
	}
	if c.sh[SHREG_MASTER_CONFIG]&bitMasterOn != 0 {
		t.Error("hub master left on")
	}
}

func TestPassthroughReadSizeLimits(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)
	p := NewMaster(d).Passthrough(0x1E)

	if err := p.WriteByteReadBytes(0x00, nil); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("empty read: want ErrUnexpectedValue, got %v", err)
	}
	if err := p.WriteByteReadBytes(0x00, make([]byte, 19)); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("oversized read: want ErrUnexpectedValue, got %v", err)
	}
	if err := p.ReadBytes(make([]byte, 1)); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("unaddressed read: want ErrUnexpectedValue, got %v", err)
	}
}

func TestPassthroughTimeout(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)
	d.SetPollTimeout(1, 3)
	p := NewMaster(d).Passthrough(0x1E)

	// Hub never reports end-of-op.
	c.main[LSMREG_STATUS_MASTER_MAIN] = 0
	err := p.WriteByteReadBytes(0x68, make([]byte, 1))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	// Cleanup still ran.
	if c.sh[SHREG_MASTER_CONFIG]&bitMasterOn != 0 {
		t.Error("hub master left on after timeout")
	}
	if c.main[LSMREG_CTRL1_XL]>>4 != 0 {
		t.Error("accelerometer left running after timeout")
	}
}

func parseHexByte(t *testing.T, entry string) byte {
	t.Helper()
	var v byte
	hex := entry[strings.LastIndex(entry, "=")+1:]
	for _, r := range hex {
		switch {
		case r >= '0' && r <= '9':
			v = v<<4 | byte(r-'0')
		case r >= 'a' && r <= 'f':
			v = v<<4 | byte(r-'a'+10)
		default:
			t.Fatalf("bad log entry %q", entry)
		}
	}
	return v
}
