package bus

import (
	"fmt"

	"github.com/kidoman/embd"
)

// On the LSM6DSO16IS (as on most ST sensors) bit 7 of the register address
// selects read on the SPI interface.
const spiReadFlag = 0x80

// SPI drives the device over an embd SPI bus, 4-wire mode.
type SPI struct {
	bus embd.SPIBus
}

func NewSPI(bus embd.SPIBus) *SPI {
	return &SPI{bus: bus}
}

func (b *SPI) WriteBytes(wbuf []byte) error {
	buf := make([]byte, len(wbuf))
	copy(buf, wbuf)
	buf[0] &^= spiReadFlag
	if err := b.bus.TransferAndReceiveData(buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// ReadBytes has no register to address; the device streams from wherever the
// previous transaction left its pointer. Rarely useful on SPI, kept for
// interface completeness.
func (b *SPI) ReadBytes(rbuf []byte) error {
	buf := make([]byte, len(rbuf))
	if err := b.bus.TransferAndReceiveData(buf); err != nil {
		return fmt.Errorf("spi read: %w", err)
	}
	copy(rbuf, buf)
	return nil
}

func (b *SPI) WriteByteReadBytes(cmd byte, rbuf []byte) error {
	buf := make([]byte, len(rbuf)+1)
	buf[0] = cmd | spiReadFlag
	if err := b.bus.TransferAndReceiveData(buf); err != nil {
		return fmt.Errorf("spi read reg %#02x: %w", cmd, err)
	}
	copy(rbuf, buf[1:])
	return nil
}

// Close releases the underlying embd bus.
func (b *SPI) Close() error {
	return b.bus.Close()
}
