package lsm6dso16is

import (
	"errors"
	"testing"
)

func TestMemBankRestoredAfterSuccess(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	for _, bank := range []MemBank{MemBankSensorHub, MemBankIspu} {
		var err error
		if bank == MemBankSensorHub {
			err = d.operateOverSensorHub(func(b *shBank) error { return nil })
		} else {
			err = d.operateOverIspu(func(b *ispuBank) error { return nil })
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %s", bank, err)
		}
		got, err := d.MemBankGet()
		if err != nil {
			t.Fatalf("%s: MemBankGet: %s", bank, err)
		}
		if got != MemBankMain {
			t.Errorf("%s: bank not restored, still %s", bank, got)
		}
	}
}

func TestMemBankRestoredAfterCallbackFailure(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	inner := errors.New("callback exploded")
	err := d.operateOverIspu(func(b *ispuBank) error { return inner })
	if !errors.Is(err, inner) {
		t.Fatalf("want callback error back, got %v", err)
	}
	if got, _ := d.MemBankGet(); got != MemBankMain {
		t.Errorf("bank not restored after callback failure, still %s", got)
	}
}

func TestMemBankCallbackErrorWinsOverRestoreError(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	inner := errors.New("callback exploded")
	armed := false
	c.failWrite = func(bank MemBank, reg byte) error {
		if armed && reg == LSMREG_FUNC_CFG_ACCESS {
			return errFakeBus
		}
		return nil
	}
	err := d.operateOverSensorHub(func(b *shBank) error {
		armed = true // fail the restore write only
		return inner
	})
	if !errors.Is(err, inner) {
		t.Fatalf("restore failure masked the callback error: got %v", err)
	}
}

func TestMemBankRestoreErrorReturnedWhenCallbackSucceeds(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	armed := false
	c.failWrite = func(bank MemBank, reg byte) error {
		if armed && reg == LSMREG_FUNC_CFG_ACCESS {
			return errFakeBus
		}
		return nil
	}
	err := d.operateOverSensorHub(func(b *shBank) error {
		armed = true
		return nil
	})
	var want FailedToSetMemBankError
	if !errors.As(err, &want) {
		t.Fatalf("want FailedToSetMemBankError from restore, got %v", err)
	}
	if want.Bank != MemBankMain {
		t.Errorf("failed bank = %s, want main", want.Bank)
	}
}

func TestMemBankSetFailure(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	c.failWrite = func(bank MemBank, reg byte) error {
		if reg == LSMREG_FUNC_CFG_ACCESS {
			return errFakeBus
		}
		return nil
	}
	called := false
	err := d.operateOverIspu(func(b *ispuBank) error { called = true; return nil })
	var want FailedToSetMemBankError
	if !errors.As(err, &want) {
		t.Fatalf("want FailedToSetMemBankError, got %v", err)
	}
	if want.Bank != MemBankIspu {
		t.Errorf("failed bank = %s, want ispu", want.Bank)
	}
	if called {
		t.Error("callback ran despite failed bank switch")
	}
}

func TestMemBankGetReadsHardware(t *testing.T) {
	c := newFakeChip()
	d := newTestDriver(c)

	// Simulate an external agent flipping the selector behind our back.
	c.main[LSMREG_FUNC_CFG_ACCESS] = bitIspuRegAccess
	got, err := d.MemBankGet()
	if err != nil {
		t.Fatalf("MemBankGet: %s", err)
	}
	if got != MemBankIspu {
		t.Errorf("MemBankGet = %s, want ispu", got)
	}

	c.failRead = func(bank MemBank, reg byte) error {
		if reg == LSMREG_FUNC_CFG_ACCESS {
			return errFakeBus
		}
		return nil
	}
	if _, err := d.MemBankGet(); !errors.Is(err, ErrFailedToReadMemBank) {
		t.Errorf("want ErrFailedToReadMemBank, got %v", err)
	}
}
