package lsm6dso16is

import (
	"bytes"
	"errors"
	"testing"
)

func TestSplitProgramSegments(t *testing.T) {
	cases := []struct {
		name string
		addr uint16
		n    int
		want []memSegment
	}{
		{"empty", 0x1000, 0, nil},
		{"within first page", 0x0000, 0x100, []memSegment{{0x0000, 0, 0x100}}},
		{"straddles one boundary", 0x1FF0, 0x20, []memSegment{
			{0x1FF0, 0, 0x10}, {0x2000, 0x10, 0x10},
		}},
		{"straddles all boundaries", 0x1000, 0x6000, []memSegment{
			{0x1000, 0x0000, 0x1000},
			{0x2000, 0x1000, 0x2000},
			{0x4000, 0x3000, 0x2000},
			{0x6000, 0x5000, 0x1000},
		}},
		{"starts on boundary", 0x2000, 0x80, []memSegment{{0x2000, 0, 0x80}}},
		{"ends on boundary", 0x3F00, 0x100, []memSegment{{0x3F00, 0, 0x100}}},
		{"one byte", 0x4000, 1, []memSegment{{0x4000, 0, 1}}},
	}

	for _, tc := range cases {
		got := splitProgramSegments(tc.addr, tc.n)
		if len(got) != len(tc.want) {
			t.Errorf("%s: %d segments, want %d: %v", tc.name, len(got), len(tc.want), got)
			continue
		}
		covered := 0
		for i, s := range got {
			if s != tc.want[i] {
				t.Errorf("%s: segment %d = %+v, want %+v", tc.name, i, s, tc.want[i])
			}
			if s.off != covered {
				t.Errorf("%s: segment %d offset %d leaves a gap (covered %d)", tc.name, i, s.off, covered)
			}
			covered += s.n
		}
		if covered != tc.n {
			t.Errorf("%s: segments cover %d bytes, want %d", tc.name, covered, tc.n)
		}
	}
}

func TestIspuWriteMemorySegmentsProgramRam(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	buf := make([]byte, 0x30)
	for i := range buf {
		buf[i] = byte(i)
	}
	if err := d.IspuWriteMemory(IspuProgramRam, 0x1FE8, buf); err != nil {
		t.Fatalf("IspuWriteMemory: %s", err)
	}

	if len(c.progStreams) != 2 {
		t.Fatalf("%d address setups, want 2: %+v", len(c.progStreams), c.progStreams)
	}
	if c.progStreams[0].addr != 0x1FE8 || !bytes.Equal(c.progStreams[0].data, buf[:0x18]) {
		t.Errorf("first stream wrong: addr %#04x len %d", c.progStreams[0].addr, len(c.progStreams[0].data))
	}
	if c.progStreams[1].addr != 0x2000 || !bytes.Equal(c.progStreams[1].data, buf[0x18:]) {
		t.Errorf("second stream wrong: addr %#04x len %d", c.progStreams[1].addr, len(c.progStreams[1].data))
	}
	if got, _ := d.MemBankGet(); got != MemBankMain {
		t.Errorf("bank not restored, still %s", got)
	}
}

func TestIspuWriteMemoryDataRamSingleRun(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	buf := []byte{1, 2, 3, 4, 5}
	if err := d.IspuWriteMemory(IspuDataRam, 0x1FFE, buf); err != nil {
		t.Fatalf("IspuWriteMemory: %s", err)
	}
	if len(c.dataStreams) != 1 {
		t.Fatalf("%d address setups, want 1", len(c.dataStreams))
	}
	if c.dataStreams[0].addr != 0x1FFE || !bytes.Equal(c.dataStreams[0].data, buf) {
		t.Errorf("data stream wrong: %+v", c.dataStreams[0])
	}
}

func TestIspuWriteMemoryEmpty(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	if err := d.IspuWriteMemory(IspuProgramRam, 0x2000, nil); err != nil {
		t.Fatalf("IspuWriteMemory: %s", err)
	}
	if len(c.progStreams) != 0 {
		t.Errorf("empty write produced %d address setups", len(c.progStreams))
	}
}

func TestIspuWriteMemoryClockGated(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	if err := d.IspuWriteMemory(IspuProgramRam, 0, []byte{0xAA}); err != nil {
		t.Fatalf("IspuWriteMemory: %s", err)
	}
	// The clock-disable bit must be set before the first data write and the
	// register restored by the end.
	gated := false
	for _, entry := range c.log {
		if entry == "ispu 02=02" {
			gated = true
		}
		if entry == "ispu 0b=aa" && !gated {
			t.Fatal("memory written before the ISPU clock was gated")
		}
	}
	if !gated {
		t.Fatal("ISPU clock never gated")
	}
	if c.ispu[ISPUREG_CONFIG]&bitIspuClkDis != 0 {
		t.Error("ISPU clock left gated after the write")
	}
}

func TestIspuReadMemory(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	want := []byte{0x10, 0x20, 0x30, 0x40}
	for i, v := range want {
		c.readMem[uint16(0x0123+i)] = v
	}
	got := make([]byte, len(want))
	if err := d.IspuReadMemory(IspuDataRam, 0x0123, got); err != nil {
		t.Fatalf("IspuReadMemory: %s", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("read %x, want %x", got, want)
	}
	if c.ispu[ISPUREG_CONFIG]&bitIspuClkDis != 0 {
		t.Error("ISPU clock left gated after the read")
	}
	if got, _ := d.MemBankGet(); got != MemBankMain {
		t.Errorf("bank not restored, still %s", got)
	}
}

func TestIspuDummyCfgBounds(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	before := len(c.log)
	err := d.IspuWriteDummyCfg(5, make([]byte, 4)) // 5+4 > 8
	if !errors.Is(err, ErrUnexpectedValue) {
		t.Fatalf("want ErrUnexpectedValue, got %v", err)
	}
	if len(c.log) != before {
		t.Error("out-of-window write still touched the bus")
	}

	if err := d.IspuWriteDummyCfg(2, []byte{0xDE, 0xAD}); err != nil {
		t.Fatalf("in-window write: %s", err)
	}
	if c.main[LSMREG_ISPU_DUMMY_CFG_1_L+2] != 0xDE || c.main[LSMREG_ISPU_DUMMY_CFG_1_L+3] != 0xAD {
		t.Error("in-window write landed in the wrong place")
	}

	got := make([]byte, 2)
	if err := d.IspuReadDummyCfg(2, got); err != nil {
		t.Fatalf("IspuReadDummyCfg: %s", err)
	}
	if got[0] != 0xDE || got[1] != 0xAD {
		t.Errorf("read back %x", got)
	}
	if err := d.IspuReadDummyCfg(-1, got); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("negative offset: want ErrUnexpectedValue, got %v", err)
	}
}

func TestIspuFlags(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	if err := d.IspuWriteFlags(0xBEEF); err != nil {
		t.Fatalf("IspuWriteFlags: %s", err)
	}
	if c.ispu[ISPUREG_IF2S_FLAG_L] != 0xEF || c.ispu[ISPUREG_IF2S_FLAG_H] != 0xBE {
		t.Error("IF2S flags not little-endian")
	}

	c.ispu[ISPUREG_S2IF_FLAG_L] = 0x34
	c.ispu[ISPUREG_S2IF_FLAG_H] = 0x12
	flags, err := d.IspuReadFlags()
	if err != nil {
		t.Fatalf("IspuReadFlags: %s", err)
	}
	if flags != 0x1234 {
		t.Errorf("flags = %#04x, want 0x1234", flags)
	}

	if err := d.IspuClearFlags(); err != nil {
		t.Fatalf("IspuClearFlags: %s", err)
	}
	if c.ispu[ISPUREG_S2IF_FLAG_H] != 0x01 {
		t.Error("clear did not write 1 to S2IF_FLAG_H")
	}
}

func TestIspuIntAndAlgoWords(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	if err := d.SetIspuInt1(0xA1B2C3D4); err != nil {
		t.Fatalf("SetIspuInt1: %s", err)
	}
	got, err := d.IspuInt1()
	if err != nil {
		t.Fatalf("IspuInt1: %s", err)
	}
	if got != 0xA1B2C3D4 {
		t.Errorf("IspuInt1 = %#08x", got)
	}

	if err := d.SetIspuAlgo(0x0000_0005); err != nil {
		t.Fatalf("SetIspuAlgo: %s", err)
	}
	if algo, _ := d.IspuAlgo(); algo != 5 {
		t.Errorf("IspuAlgo = %d, want 5", algo)
	}
}

func TestIspuReadDataRawLimit(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	if err := d.IspuReadDataRaw(make([]byte, IspuDOutLen+1)); !errors.Is(err, ErrUnexpectedValue) {
		t.Errorf("oversized read: want ErrUnexpectedValue, got %v", err)
	}
	c.ispu[ISPUREG_DOUT00_L] = 0x42
	buf := make([]byte, 2)
	if err := d.IspuReadDataRaw(buf); err != nil {
		t.Fatalf("IspuReadDataRaw: %s", err)
	}
	if buf[0] != 0x42 {
		t.Errorf("DOUT read = %x", buf)
	}
}
