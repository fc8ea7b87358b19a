// Package bus abstracts the byte transport to the LSM6DSO16IS so the driver
// works identically over I2C and SPI, and so the sensor-hub passthrough can
// present the same interface to secondary-sensor drivers.
package bus

// Bus moves raw bytes to and from one device. For register-style devices the
// first byte of a write is the register address; WriteByteReadBytes performs
// the usual write-register-then-read transaction.
type Bus interface {
	WriteBytes(wbuf []byte) error
	ReadBytes(rbuf []byte) error
	WriteByteReadBytes(cmd byte, rbuf []byte) error
}
