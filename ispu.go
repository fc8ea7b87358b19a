package lsm6dso16is

import "fmt"

// ISPU bank register map. Valid only while MemBankIspu is active.
const (
	ISPUREG_CONFIG      = 0x02
	ISPUREG_STATUS      = 0x04
	ISPUREG_MEM_SEL     = 0x08
	ISPUREG_MEM_ADDR0   = 0x09 // ..ADDR1, 16-bit little-endian
	ISPUREG_MEM_DATA    = 0x0B
	ISPUREG_IF2S_FLAG_L = 0x0C
	ISPUREG_IF2S_FLAG_H = 0x0D
	ISPUREG_S2IF_FLAG_L = 0x0E
	ISPUREG_S2IF_FLAG_H = 0x0F
	ISPUREG_DOUT00_L    = 0x10 // ..DOUT31_H at 0x4F
	ISPUREG_INT1_CTRL0  = 0x50 // ..0x53, 32-bit little-endian
	ISPUREG_INT2_CTRL0  = 0x54 // ..0x57, 32-bit little-endian
	ISPUREG_INT_STATUS0 = 0x58 // ..0x5B, 32-bit little-endian
	ISPUREG_ALGO0       = 0x70 // ..0x73, 32-bit little-endian
)

// Bit layout of ISPU_CONFIG.
const (
	bitIspuRstN   = 1 << 0
	bitIspuClkDis = 1 << 1
	bitIspuLatch  = 1 << 4
)

// Bit layout of ISPU_MEM_SEL.
const (
	bitMemSel    = 1 << 0
	bitReadMemEn = 1 << 6
)

// IspuDOutLen is the size of the ISPU output register file (DOUT00..DOUT31,
// two bytes each).
const IspuDOutLen = 64

// IspuMemoryType selects the data RAM or the program RAM behind the memory
// window.
type IspuMemoryType byte

const (
	IspuDataRam    IspuMemoryType = 0x0
	IspuProgramRam IspuMemoryType = 0x1
)

// IspuClockSel selects the ISPU core clock.
type IspuClockSel byte

const (
	IspuClock5MHz  IspuClockSel = 0x0
	IspuClock10MHz IspuClockSel = 0x1
)

// IspuDataRate is the ISPU execution rate (ISPU_RATE in CTRL9_C).
type IspuDataRate byte

const (
	IspuRateOff    IspuDataRate = 0x0
	IspuRate12Hz5  IspuDataRate = 0x1
	IspuRate26Hz   IspuDataRate = 0x2
	IspuRate52Hz   IspuDataRate = 0x3
	IspuRate104Hz  IspuDataRate = 0x4
	IspuRate208Hz  IspuDataRate = 0x5
	IspuRate416Hz  IspuDataRate = 0x6
	IspuRate833Hz  IspuDataRate = 0x7
	IspuRate1667Hz IspuDataRate = 0x8
	IspuRate3333Hz IspuDataRate = 0x9
	IspuRate6667Hz IspuDataRate = 0xA
)

// IspuBdu controls block data update on the ISPU output registers, with the
// grouping width of the protected reads.
type IspuBdu byte

const (
	IspuBduOff  IspuBdu = 0x0
	IspuBdu2B4B IspuBdu = 0x1
	IspuBdu2B2B IspuBdu = 0x2
	IspuBdu4B4B IspuBdu = 0x3
)

// IspuInterrupt selects pulsed or latched ISPU interrupt lines.
type IspuInterrupt byte

const (
	IspuIntPulsed  IspuInterrupt = 0x0
	IspuIntLatched IspuInterrupt = 0x1
)

// IspuBootStatus reports whether the ISPU boot sequence has finished.
type IspuBootStatus byte

const (
	IspuBootInProgress IspuBootStatus = 0x0
	IspuBootEnded      IspuBootStatus = 0x1
)

// memSegment is one contiguous run of ISPU memory that can be streamed
// through the data port without the address counter crossing a program-RAM
// page.
type memSegment struct {
	addr uint16
	off  int // offset into the caller's buffer
	n    int
}

// Program-RAM page starts. The auto-increment counter does not carry across
// these, so a write touching one must be split there.
var ispuPageStarts = [...]uint16{0x2000, 0x4000, 0x6000}

// splitProgramSegments cuts a program-RAM write of n bytes starting at addr
// into page-bounded segments. A zero-length write yields no segments, and a
// write starting exactly on a page boundary is not split at its own start.
func splitProgramSegments(addr uint16, n int) []memSegment {
	if n == 0 {
		return nil
	}
	segs := []memSegment{{addr: addr, off: 0, n: n}}
	for _, page := range ispuPageStarts {
		last := &segs[len(segs)-1]
		end := int(last.addr) + last.n
		if int(page) > int(last.addr) && int(page) < end {
			cut := int(page) - int(last.addr)
			next := memSegment{addr: page, off: last.off + cut, n: last.n - cut}
			last.n = cut
			segs = append(segs, next)
		}
	}
	return segs
}

// IspuWriteMemory streams buf into ISPU memory at addr. The ISPU clock is
// gated off for the whole operation and re-enabled before returning, even on
// error. Program-RAM writes are segmented at the page boundaries; data-RAM
// writes go out in one run.
func (d *LSM6DSO16IS) IspuWriteMemory(mem IspuMemoryType, addr uint16, buf []byte) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		clk, err := b.readReg(ISPUREG_CONFIG)
		if err != nil {
			return err
		}
		if err := b.writeReg(ISPUREG_CONFIG, clk|bitIspuClkDis); err != nil {
			return err
		}
		werr := d.ispuWriteMemoryGated(b, mem, addr, buf)
		if rerr := b.writeReg(ISPUREG_CONFIG, clk); rerr != nil && werr == nil {
			werr = rerr
		}
		return werr
	})
}

func (d *LSM6DSO16IS) ispuWriteMemoryGated(b *ispuBank, mem IspuMemoryType, addr uint16, buf []byte) error {
	if err := b.writeReg(ISPUREG_MEM_SEL, byte(mem)&bitMemSel); err != nil {
		return err
	}
	segs := []memSegment{{addr: addr, off: 0, n: len(buf)}}
	if mem == IspuProgramRam {
		segs = splitProgramSegments(addr, len(buf))
	} else if len(buf) == 0 {
		segs = nil
	}
	for _, s := range segs {
		if err := b.selMemoryAddr(s.addr); err != nil {
			return err
		}
		for _, v := range buf[s.off : s.off+s.n] {
			if err := b.writeReg(ISPUREG_MEM_DATA, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// IspuReadMemory fills buf from ISPU memory at addr. Reads go through the
// same window with the read-enable bit set; the first data-port read after
// setting the address is a throwaway.
func (d *LSM6DSO16IS) IspuReadMemory(mem IspuMemoryType, addr uint16, buf []byte) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		clk, err := b.readReg(ISPUREG_CONFIG)
		if err != nil {
			return err
		}
		if err := b.writeReg(ISPUREG_CONFIG, clk|bitIspuClkDis); err != nil {
			return err
		}
		rerr := d.ispuReadMemoryGated(b, mem, addr, buf)
		if cerr := b.writeReg(ISPUREG_CONFIG, clk); cerr != nil && rerr == nil {
			rerr = cerr
		}
		return rerr
	})
}

func (d *LSM6DSO16IS) ispuReadMemoryGated(b *ispuBank, mem IspuMemoryType, addr uint16, buf []byte) error {
	if err := b.writeReg(ISPUREG_MEM_SEL, byte(mem)&bitMemSel|bitReadMemEn); err != nil {
		return err
	}
	if err := b.selMemoryAddr(addr); err != nil {
		return err
	}
	var dummy [1]byte
	if err := b.readRegs(ISPUREG_MEM_DATA, dummy[:]); err != nil {
		return err
	}
	for i := range buf {
		if err := b.readRegs(ISPUREG_MEM_DATA, buf[i:i+1]); err != nil {
			return err
		}
	}
	return nil
}

// SetIspuReset drives the ISPU software-reset bit in FUNC_CFG_ACCESS, which
// is reachable without a bank switch.
func (d *LSM6DSO16IS) SetIspuReset(on bool) error {
	return d.modifyReg(LSMREG_FUNC_CFG_ACCESS, func(r byte) byte {
		if on {
			return r | bitSwResetIspu
		}
		return r &^ bitSwResetIspu
	})
}

func (d *LSM6DSO16IS) IspuReset() (bool, error) {
	v, err := d.readReg(LSMREG_FUNC_CFG_ACCESS)
	return v&bitSwResetIspu != 0, err
}

// SetIspuClock selects the ISPU core clock.
func (d *LSM6DSO16IS) SetIspuClock(sel IspuClockSel) error {
	return d.modifyReg(LSMREG_CTRL10_C, func(r byte) byte {
		return r&^(1<<2) | byte(sel&0x1)<<2
	})
}

func (d *LSM6DSO16IS) IspuClock() (IspuClockSel, error) {
	v, err := d.readReg(LSMREG_CTRL10_C)
	return IspuClockSel(v >> 2 & 0x1), err
}

// SetIspuDataRate sets the ISPU execution rate.
func (d *LSM6DSO16IS) SetIspuDataRate(rate IspuDataRate) error {
	return d.modifyReg(LSMREG_CTRL9_C, func(r byte) byte {
		return r&0x0F | byte(rate&0xF)<<4
	})
}

func (d *LSM6DSO16IS) IspuDataRate() (IspuDataRate, error) {
	v, err := d.readReg(LSMREG_CTRL9_C)
	return IspuDataRate(v >> 4 & 0xF), err
}

// SetIspuBdu configures block data update on the ISPU outputs.
func (d *LSM6DSO16IS) SetIspuBdu(v IspuBdu) error {
	return d.modifyReg(LSMREG_CTRL9_C, func(r byte) byte {
		return r&^0x03 | byte(v&0x3)
	})
}

func (d *LSM6DSO16IS) IspuBdu() (IspuBdu, error) {
	v, err := d.readReg(LSMREG_CTRL9_C)
	return IspuBdu(v & 0x3), err
}

// ispuDummyCfgLen is the span of the ISPU_DUMMY_CFG window on the main page.
const ispuDummyCfgLen = LSMREG_ISPU_DUMMY_CFG_4_H - LSMREG_ISPU_DUMMY_CFG_1_L + 1

// IspuWriteDummyCfg writes into the ISPU dummy configuration window starting
// at byte offset off. Out-of-window requests fail before any bus traffic.
func (d *LSM6DSO16IS) IspuWriteDummyCfg(off int, buf []byte) error {
	if off < 0 || off+len(buf) > ispuDummyCfgLen {
		return fmt.Errorf("%w: dummy cfg write of %d bytes at offset %d", ErrUnexpectedValue, len(buf), off)
	}
	return d.writeRegs(byte(LSMREG_ISPU_DUMMY_CFG_1_L+off), buf)
}

// IspuReadDummyCfg reads from the ISPU dummy configuration window.
func (d *LSM6DSO16IS) IspuReadDummyCfg(off int, buf []byte) error {
	if off < 0 || off+len(buf) > ispuDummyCfgLen {
		return fmt.Errorf("%w: dummy cfg read of %d bytes at offset %d", ErrUnexpectedValue, len(buf), off)
	}
	return d.readRegs(byte(LSMREG_ISPU_DUMMY_CFG_1_L+off), buf)
}

// SetIspuBoot drives the reset-release and clock-gate bits of ISPU_CONFIG
// together, the sequence the bootloader expects around a program load.
func (d *LSM6DSO16IS) SetIspuBoot(on bool) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.modifyReg(ISPUREG_CONFIG, func(r byte) byte {
			if on {
				return r | bitIspuRstN | bitIspuClkDis
			}
			return r &^ (bitIspuRstN | bitIspuClkDis)
		})
	})
}

func (d *LSM6DSO16IS) IspuBoot() (bool, error) {
	var v byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		var err error
		v, err = b.readReg(ISPUREG_CONFIG)
		return err
	})
	return v&bitIspuRstN != 0, err
}

// SetIspuIntLatched selects pulsed or latched ISPU interrupts.
func (d *LSM6DSO16IS) SetIspuIntLatched(m IspuInterrupt) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.modifyReg(ISPUREG_CONFIG, func(r byte) byte {
			return r&^bitIspuLatch | byte(m&0x1)<<4
		})
	})
}

func (d *LSM6DSO16IS) IspuIntLatched() (IspuInterrupt, error) {
	var v byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		var err error
		v, err = b.readReg(ISPUREG_CONFIG)
		return err
	})
	return IspuInterrupt(v >> 4 & 0x1), err
}

// IspuBootStatus reports whether the ISPU boot sequence has completed.
func (d *LSM6DSO16IS) IspuBootStatus() (IspuBootStatus, error) {
	var v byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		var err error
		v, err = b.readReg(ISPUREG_STATUS)
		return err
	})
	return IspuBootStatus(v >> 2 & 0x1), err
}

// IspuWriteFlags raises host-to-ISPU flags (IF2S).
func (d *LSM6DSO16IS) IspuWriteFlags(flags uint16) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.writeRegs(ISPUREG_IF2S_FLAG_L, []byte{byte(flags), byte(flags >> 8)})
	})
}

// IspuReadFlags returns the ISPU-to-host flags (S2IF).
func (d *LSM6DSO16IS) IspuReadFlags() (uint16, error) {
	var buf [2]byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_S2IF_FLAG_L, buf[:])
	})
	return uint16(buf[0]) | uint16(buf[1])<<8, err
}

// IspuClearFlags clears the ISPU-to-host flags.
func (d *LSM6DSO16IS) IspuClearFlags() error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.writeReg(ISPUREG_S2IF_FLAG_H, 0x01)
	})
}

// IspuReadDataRaw drains the ISPU output registers (DOUT00..) into buf, up to
// IspuDOutLen bytes.
func (d *LSM6DSO16IS) IspuReadDataRaw(buf []byte) error {
	if len(buf) > IspuDOutLen {
		return fmt.Errorf("%w: ispu output read of %d bytes, limit %d", ErrUnexpectedValue, len(buf), IspuDOutLen)
	}
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_DOUT00_L, buf)
	})
}

// SetIspuInt1 selects which of the 30 ISPU algorithm interrupts drive INT1.
func (d *LSM6DSO16IS) SetIspuInt1(mask uint32) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.writeRegs(ISPUREG_INT1_CTRL0, leU32(mask))
	})
}

func (d *LSM6DSO16IS) IspuInt1() (uint32, error) {
	var buf [4]byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_INT1_CTRL0, buf[:])
	})
	return deU32(buf), err
}

// SetIspuInt2 selects which ISPU algorithm interrupts drive INT2.
func (d *LSM6DSO16IS) SetIspuInt2(mask uint32) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.writeRegs(ISPUREG_INT2_CTRL0, leU32(mask))
	})
}

func (d *LSM6DSO16IS) IspuInt2() (uint32, error) {
	var buf [4]byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_INT2_CTRL0, buf[:])
	})
	return deU32(buf), err
}

// IspuIntStatus returns the ISPU algorithm interrupt status word.
func (d *LSM6DSO16IS) IspuIntStatus() (uint32, error) {
	var buf [4]byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_INT_STATUS0, buf[:])
	})
	return deU32(buf), err
}

// SetIspuAlgo enables the selected ISPU algorithms.
func (d *LSM6DSO16IS) SetIspuAlgo(mask uint32) error {
	return d.operateOverIspu(func(b *ispuBank) error {
		return b.writeRegs(ISPUREG_ALGO0, leU32(mask))
	})
}

func (d *LSM6DSO16IS) IspuAlgo() (uint32, error) {
	var buf [4]byte
	err := d.operateOverIspu(func(b *ispuBank) error {
		return b.readRegs(ISPUREG_ALGO0, buf[:])
	})
	return deU32(buf), err
}

// IspuIntStatusMainPage reads the ISPU interrupt status mirror on the main
// page, avoiding a bank switch on the hot path.
func (d *LSM6DSO16IS) IspuIntStatusMainPage() (uint32, error) {
	return d.readU32(LSMREG_ISPU_INT_STATUS0)
}

func leU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

func deU32(b [4]byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
