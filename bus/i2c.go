package bus

import (
	"fmt"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/all" // Empty import needed to initialize embd library.
	_ "github.com/kidoman/embd/host/rpi" // Empty import needed to initialize embd library.
)

// I2C drives one device at a fixed 7-bit address on an embd I2C bus.
type I2C struct {
	bus  embd.I2CBus
	addr byte
}

// NewI2C wraps an already-open embd bus.
func NewI2C(bus embd.I2CBus, addr byte) *I2C {
	return &I2C{bus: bus, addr: addr}
}

// OpenI2C opens /dev/i2c-<n> (or the host equivalent) and returns a bus bound
// to the device at addr.
func OpenI2C(n, addr byte) *I2C {
	return &I2C{bus: embd.NewI2CBus(n), addr: addr}
}

func (b *I2C) WriteBytes(wbuf []byte) error {
	if err := b.bus.WriteBytes(b.addr, wbuf); err != nil {
		return fmt.Errorf("i2c write to %#02x: %w", b.addr, err)
	}
	return nil
}

func (b *I2C) ReadBytes(rbuf []byte) error {
	v, err := b.bus.ReadBytes(b.addr, len(rbuf))
	if err != nil {
		return fmt.Errorf("i2c read from %#02x: %w", b.addr, err)
	}
	copy(rbuf, v)
	return nil
}

func (b *I2C) WriteByteReadBytes(cmd byte, rbuf []byte) error {
	if err := b.bus.ReadFromReg(b.addr, cmd, rbuf); err != nil {
		return fmt.Errorf("i2c read reg %#02x from %#02x: %w", cmd, b.addr, err)
	}
	return nil
}

// Close releases the underlying embd bus.
func (b *I2C) Close() error {
	return b.bus.Close()
}
