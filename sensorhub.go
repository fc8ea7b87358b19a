package lsm6dso16is

import "fmt"

// Sensor-hub bank register map. Valid only while MemBankSensorHub is active.
const (
	SHREG_SENSOR_HUB_1   = 0x02 // ..SENSOR_HUB_18 at 0x13
	SHREG_MASTER_CONFIG  = 0x14
	SHREG_SLV0_ADD       = 0x15
	SHREG_SLV0_SUBADD    = 0x16
	SHREG_SLV0_CONFIG    = 0x17
	SHREG_SLV1_ADD       = 0x18
	SHREG_SLV1_SUBADD    = 0x19
	SHREG_SLV1_CONFIG    = 0x1A
	SHREG_SLV2_ADD       = 0x1B
	SHREG_SLV2_SUBADD    = 0x1C
	SHREG_SLV2_CONFIG    = 0x1D
	SHREG_SLV3_ADD       = 0x1E
	SHREG_SLV3_SUBADD    = 0x1F
	SHREG_SLV3_CONFIG    = 0x20
	SHREG_DATAWRITE_SLV0 = 0x21
	SHREG_STATUS_MASTER  = 0x22
)

// Bit layout of MASTER_CONFIG.
const (
	maskAuxSensOn      = 0x03
	bitMasterOn        = 1 << 2
	bitShubPuEn        = 1 << 3
	bitPassThroughMode = 1 << 4
	bitStartConfig     = 1 << 5
	bitWriteOnce       = 1 << 6
	bitRstMasterRegs   = 1 << 7
)

// The hub can stream at most this many bytes into SENSOR_HUB_1..18 per cycle.
const shMaxReadLen = 18

// ShSlaveConnected is the number of external slaves the hub polls each cycle.
// Slot 0 is always included; the value names the highest connected slot.
type ShSlaveConnected byte

const (
	ShSlave0    ShSlaveConnected = 0x0
	ShSlave01   ShSlaveConnected = 0x1
	ShSlave012  ShSlaveConnected = 0x2
	ShSlave0123 ShSlaveConnected = 0x3
)

// ShSyncroMode selects the hub trigger: the accel/gyro data-ready event or
// the INT2 pin.
type ShSyncroMode byte

const (
	ShTrigDataReady ShSyncroMode = 0x0
	ShTrigInt2      ShSyncroMode = 0x1
)

// ShWriteMode controls whether the slot-0 write repeats every hub cycle or
// fires only on the first one.
type ShWriteMode byte

const (
	ShWriteEachCycle ShWriteMode = 0x0
	ShWriteOnce      ShWriteMode = 0x1
)

// ShDataRate is the rate at which the hub master communicates.
type ShDataRate byte

const (
	ShRate104Hz ShDataRate = 0x0
	ShRate52Hz  ShDataRate = 0x1
	ShRate26Hz  ShDataRate = 0x2
	ShRate12Hz5 ShDataRate = 0x3
)

// ShCfgWrite programs slot 0 for a one-byte write to a secondary device.
type ShCfgWrite struct {
	SlvAddr   byte // 7-bit I2C device address
	SlvSubAdd byte // target register on the device
	SlvData   byte // byte to write
}

// ShCfgRead programs a slot for an N-byte read from a secondary device.
type ShCfgRead struct {
	SlvAddr   byte // 7-bit I2C device address
	SlvSubAdd byte // first register to read
	SlvLen    byte // number of bytes, up to 7 per slot
}

// ShReadDataRaw drains n hub output bytes (SENSOR_HUB_1..) into buf. After a
// hub cycle the bytes of each connected slot appear back to back in slot
// order.
func (d *LSM6DSO16IS) ShReadDataRaw(buf []byte) error {
	if len(buf) > shMaxReadLen {
		return fmt.Errorf("%w: hub read of %d bytes, limit %d", ErrUnexpectedValue, len(buf), shMaxReadLen)
	}
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.readRegs(SHREG_SENSOR_HUB_1, buf)
	})
}

// SetShSlaveConnected sets how many slave slots take part in each hub cycle.
func (d *LSM6DSO16IS) SetShSlaveConnected(v ShSlaveConnected) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			return r&^maskAuxSensOn | byte(v&0x3)
		})
	})
}

func (d *LSM6DSO16IS) ShSlaveConnected() (ShSlaveConnected, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return ShSlaveConnected(v & maskAuxSensOn), err
}

// SetShMaster enables or disables the hub I2C master.
func (d *LSM6DSO16IS) SetShMaster(on bool) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			if on {
				return r | bitMasterOn
			}
			return r &^ bitMasterOn
		})
	})
}

func (d *LSM6DSO16IS) ShMaster() (bool, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return v&bitMasterOn != 0, err
}

// SetShPullUp enables the internal pull-ups on the hub master lines.
func (d *LSM6DSO16IS) SetShPullUp(on bool) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			if on {
				return r | bitShubPuEn
			}
			return r &^ bitShubPuEn
		})
	})
}

func (d *LSM6DSO16IS) ShPullUp() (bool, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return v&bitShubPuEn != 0, err
}

// SetShPassThrough connects the hub lines straight to the primary interface,
// letting the host talk to the secondary devices directly.
func (d *LSM6DSO16IS) SetShPassThrough(on bool) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			if on {
				return r | bitPassThroughMode
			}
			return r &^ bitPassThroughMode
		})
	})
}

func (d *LSM6DSO16IS) ShPassThrough() (bool, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return v&bitPassThroughMode != 0, err
}

// SetShSyncroMode selects the hub trigger signal.
func (d *LSM6DSO16IS) SetShSyncroMode(m ShSyncroMode) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			return r&^bitStartConfig | byte(m&0x1)<<5
		})
	})
}

func (d *LSM6DSO16IS) ShSyncroMode() (ShSyncroMode, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return ShSyncroMode(v >> 5 & 0x1), err
}

// SetShWriteMode selects the slot-0 write repetition mode.
func (d *LSM6DSO16IS) SetShWriteMode(m ShWriteMode) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			return r&^bitWriteOnce | byte(m&0x1)<<6
		})
	})
}

func (d *LSM6DSO16IS) ShWriteMode() (ShWriteMode, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return ShWriteMode(v >> 6 & 0x1), err
}

// SetShReset drives the master-logic reset bit; set it and then clear it.
func (d *LSM6DSO16IS) SetShReset(on bool) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_MASTER_CONFIG, func(r byte) byte {
			if on {
				return r | bitRstMasterRegs
			}
			return r &^ bitRstMasterRegs
		})
	})
}

func (d *LSM6DSO16IS) ShReset() (bool, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_MASTER_CONFIG)
		return err
	})
	return v&bitRstMasterRegs != 0, err
}

// SetShDataRate sets the hub master communication rate (SHUB_ODR).
func (d *LSM6DSO16IS) SetShDataRate(rate ShDataRate) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		return b.modifyReg(SHREG_SLV0_CONFIG, func(r byte) byte {
			return r&^(0x3<<6) | byte(rate&0x3)<<6
		})
	})
}

func (d *LSM6DSO16IS) ShDataRate() (ShDataRate, error) {
	var v byte
	err := d.operateOverSensorHub(func(b *shBank) error {
		var err error
		v, err = b.readReg(SHREG_SLV0_CONFIG)
		return err
	})
	return ShDataRate(v >> 6 & 0x3), err
}

// ShCfgWrite programs slot 0 for a one-byte write: device address with the
// R/W bit clear, target register, and the data byte. The slot is overwritten
// unconditionally.
func (d *LSM6DSO16IS) ShCfgWrite(cfg ShCfgWrite) error {
	return d.operateOverSensorHub(func(b *shBank) error {
		if err := b.writeReg(SHREG_SLV0_ADD, cfg.SlvAddr<<1); err != nil {
			return err
		}
		if err := b.writeReg(SHREG_SLV0_SUBADD, cfg.SlvSubAdd); err != nil {
			return err
		}
		return b.writeReg(SHREG_DATAWRITE_SLV0, cfg.SlvData)
	})
}

// ShSlvCfgRead programs slot idx (0..3) for a read: device address with the
// R/W bit set, target register, and the byte count in the slot config. Only
// the count bits of the config are touched.
func (d *LSM6DSO16IS) ShSlvCfgRead(idx int, cfg ShCfgRead) error {
	if idx < 0 || idx > 3 {
		return fmt.Errorf("%w: sensor hub slot %d", ErrUnexpectedValue, idx)
	}
	addReg := byte(SHREG_SLV0_ADD + 3*idx)
	subReg := byte(SHREG_SLV0_SUBADD + 3*idx)
	cfgReg := byte(SHREG_SLV0_CONFIG + 3*idx)
	return d.operateOverSensorHub(func(b *shBank) error {
		if err := b.writeReg(addReg, cfg.SlvAddr<<1|0x01); err != nil {
			return err
		}
		if err := b.writeReg(subReg, cfg.SlvSubAdd); err != nil {
			return err
		}
		return b.modifyReg(cfgReg, func(r byte) byte {
			return r&^0x07 | cfg.SlvLen&0x07
		})
	})
}

// ShStatus reads the hub status from the main-page mirror, so it does not
// disturb the bank selection mid-cycle.
func (d *LSM6DSO16IS) ShStatus() (StatusMaster, error) {
	v, err := d.readReg(LSMREG_STATUS_MASTER_MAIN)
	return decodeStatusMaster(v), err
}
