package lsm6dso16is

// Main-bank register map, from the LSM6DSO16IS datasheet. These addresses are
// only valid while the main bank is selected (see membank.go), with the
// exception of FUNC_CFG_ACCESS which the device exposes in every bank.
const (
	LSMREG_FUNC_CFG_ACCESS    = 0x01
	LSMREG_PIN_CTRL           = 0x02
	LSMREG_DRDY_PULSED_REG    = 0x0B
	LSMREG_INT1_CTRL          = 0x0D
	LSMREG_INT2_CTRL          = 0x0E
	LSMREG_WHO_AM_I           = 0x0F
	LSMREG_CTRL1_XL           = 0x10
	LSMREG_CTRL2_G            = 0x11
	LSMREG_CTRL3_C            = 0x12
	LSMREG_CTRL4_C            = 0x13
	LSMREG_CTRL5_C            = 0x14
	LSMREG_CTRL6_C            = 0x15
	LSMREG_CTRL7_G            = 0x16
	LSMREG_CTRL9_C            = 0x18
	LSMREG_CTRL10_C           = 0x19
	LSMREG_ISPU_INT_STATUS0   = 0x1A // ..0x1D, 32-bit little-endian
	LSMREG_STATUS_REG         = 0x1E
	LSMREG_OUT_TEMP_L         = 0x20
	LSMREG_OUTX_L_G           = 0x22
	LSMREG_OUTX_L_A           = 0x28
	LSMREG_STATUS_MASTER_MAIN = 0x39
	LSMREG_TIMESTAMP0         = 0x40 // ..0x43, 32-bit little-endian
	LSMREG_MD1_CFG            = 0x5E
	LSMREG_MD2_CFG            = 0x5F
	LSMREG_INTERNAL_FREQ_FINE = 0x63
	LSMREG_ISPU_DUMMY_CFG_1_L = 0x73
	LSMREG_ISPU_DUMMY_CFG_4_H = 0x7A
)

// WhoAmI is the fixed content of WHO_AM_I.
const WhoAmI = 0x22

// I2C addresses selected by the SA0 pin.
const (
	I2CAddrLow  = 0x6A
	I2CAddrHigh = 0x6B
)

// Bit layout of FUNC_CFG_ACCESS.
const (
	bitSwResetIspu   = 1 << 1
	bitShubRegAccess = 1 << 6
	bitIspuRegAccess = 1 << 7
)

// Bit layout of CTRL3_C.
const (
	bitSwReset  = 1 << 0
	bitIfInc    = 1 << 2
	bitSim      = 1 << 3
	bitPpOd     = 1 << 4
	bitHLactive = 1 << 5
	bitBdu      = 1 << 6
	bitBoot     = 1 << 7
)

// Bit layout of STATUS_REG.
const (
	bitXlda              = 1 << 0
	bitGda               = 1 << 1
	bitTda               = 1 << 2
	bitTimestampEndcount = 1 << 7
)

// Bit layout of STATUS_MASTER (and its main-page mirror at 0x39).
const (
	bitSensHubEndop = 1 << 0
	bitSlave0Nack   = 1 << 3
	bitSlave1Nack   = 1 << 4
	bitSlave2Nack   = 1 << 5
	bitSlave3Nack   = 1 << 6
	bitWrOnceDone   = 1 << 7
)

// DataRate encodes an output data rate for the accelerometer or gyroscope
// (ODR_XL/ODR_G plus the high-performance-disable flag in bit 4).
type DataRate byte

const (
	RateOff      DataRate = 0x00
	Rate12Hz5HP  DataRate = 0x01
	Rate26HzHP   DataRate = 0x02
	Rate52HzHP   DataRate = 0x03
	Rate104HzHP  DataRate = 0x04
	Rate208HzHP  DataRate = 0x05
	Rate416HzHP  DataRate = 0x06
	Rate833HzHP  DataRate = 0x07
	Rate1667HzHP DataRate = 0x08
	Rate3333HzHP DataRate = 0x09
	Rate6667HzHP DataRate = 0x0A
	Rate12Hz5LP  DataRate = 0x11
	Rate26HzLP   DataRate = 0x12
	Rate52HzLP   DataRate = 0x13
	Rate104HzLP  DataRate = 0x14
	Rate208HzLP  DataRate = 0x15
	Rate416HzLP  DataRate = 0x16
	Rate833HzLP  DataRate = 0x17
	Rate1667HzLP DataRate = 0x18
	Rate3333HzLP DataRate = 0x19
	Rate6667HzLP DataRate = 0x1A
)

// AccelFS is the accelerometer full-scale selection (FS_XL).
type AccelFS byte

const (
	AccelFS2G  AccelFS = 0x0
	AccelFS16G AccelFS = 0x1
	AccelFS4G  AccelFS = 0x2
	AccelFS8G  AccelFS = 0x3
)

// GyroFS is the gyroscope full-scale selection (FS_125 << 4 | FS_G).
type GyroFS byte

const (
	GyroFS250DPS  GyroFS = 0x00
	GyroFS500DPS  GyroFS = 0x01
	GyroFS1000DPS GyroFS = 0x02
	GyroFS2000DPS GyroFS = 0x03
	GyroFS125DPS  GyroFS = 0x10
)

// SelfTest encodes ST_XL/ST_G. Negative differs between accel (0x2) and
// gyro (0x3); both are accepted and masked to two bits on write.
type SelfTest byte

const (
	SelfTestDisable      SelfTest = 0x0
	SelfTestPositive     SelfTest = 0x1
	SelfTestNegativeXl   SelfTest = 0x2
	SelfTestNegativeGyro SelfTest = 0x3
)

// DataReadyMode selects latched or pulsed (~75 us) data-ready.
type DataReadyMode byte

const (
	DrdyLatched DataReadyMode = 0x0
	DrdyPulsed  DataReadyMode = 0x1
)

// SpiMode selects 4-wire or 3-wire SPI on the user interface.
type SpiMode byte

const (
	Spi4Wire SpiMode = 0x0
	Spi3Wire SpiMode = 0x1
)

// IntPinMode selects push-pull or open-drain on INT1/INT2.
type IntPinMode byte

const (
	IntPushPull  IntPinMode = 0x0
	IntOpenDrain IntPinMode = 0x1
)

// PinPolarity selects the interrupt active level.
type PinPolarity byte

const (
	ActiveHigh PinPolarity = 0x0
	ActiveLow  PinPolarity = 0x1
)

// StatusReg is the decoded STATUS_REG.
type StatusReg struct {
	AccelReady        bool
	GyroReady         bool
	TempReady         bool
	TimestampEndcount bool
}

func decodeStatusReg(b byte) StatusReg {
	return StatusReg{
		AccelReady:        b&bitXlda != 0,
		GyroReady:         b&bitGda != 0,
		TempReady:         b&bitTda != 0,
		TimestampEndcount: b&bitTimestampEndcount != 0,
	}
}

// StatusMaster is the decoded sensor-hub status, readable from the main page
// (STATUS_MASTER_MAINPAGE) or the hub bank (STATUS_MASTER).
type StatusMaster struct {
	EndOp      bool
	Slave0Nack bool
	Slave1Nack bool
	Slave2Nack bool
	Slave3Nack bool
	WrOnceDone bool
}

func decodeStatusMaster(b byte) StatusMaster {
	return StatusMaster{
		EndOp:      b&bitSensHubEndop != 0,
		Slave0Nack: b&bitSlave0Nack != 0,
		Slave1Nack: b&bitSlave1Nack != 0,
		Slave2Nack: b&bitSlave2Nack != 0,
		Slave3Nack: b&bitSlave3Nack != 0,
		WrOnceDone: b&bitWrOnceDone != 0,
	}
}

// AllSources aggregates every interrupt source in one snapshot. It is built
// fresh on each AllSources call; nothing is cached.
type AllSources struct {
	AccelReady bool
	GyroReady  bool
	TempReady  bool
	StatusMaster
	Ispu uint32
}

// PinInt1Route lists the signals routed to the INT1 pin.
type PinInt1Route struct {
	AccelReady bool
	GyroReady  bool
	Boot       bool
	ShEndOp    bool
	Ispu       bool
}

// PinInt2Route lists the signals routed to the INT2 pin.
type PinInt2Route struct {
	AccelReady bool
	GyroReady  bool
	TempReady  bool
	Timestamp  bool
	IspuSleep  bool
	Ispu       bool
}

func bit(b bool, n uint) byte {
	if b {
		return 1 << n
	}
	return 0
}
