package domain

import "math"

// Tariff holds the fixed unit prices used to bill a month, in VND.
type Tariff struct {
	ElectricUnitPrice int64
	WaterUnitPrice    int64
	DefaultServiceFee int64
}

// DefaultTariff is the price list used when none is configured.
var DefaultTariff = Tariff{
	ElectricUnitPrice: 3500,
	WaterUnitPrice:    15000,
	DefaultServiceFee: 150000,
}

// MaxMeterReading is the largest meter value accepted.
const MaxMeterReading int64 = 1_000_000_000

// MeterReadings are the opening and closing meter values of a billing month.
type MeterReadings struct {
	OldElectricity int64
	NewElectricity int64
	OldWater       int64
	NewWater       int64
}

// Validate rejects negative or out-of-range values and regressions.
func (m MeterReadings) Validate() error {
	switch {
	case m.OldElectricity < 0 || m.NewElectricity < 0:
		return &InvalidInputError{Field: "electricity", Reason: "meter readings must not be negative"}
	case m.OldWater < 0 || m.NewWater < 0:
		return &InvalidInputError{Field: "water", Reason: "meter readings must not be negative"}
	case m.NewElectricity > MaxMeterReading || m.OldElectricity > MaxMeterReading:
		return &InvalidInputError{Field: "electricity", Reason: "meter reading is out of range"}
	case m.NewWater > MaxMeterReading || m.OldWater > MaxMeterReading:
		return &InvalidInputError{Field: "water", Reason: "meter reading is out of range"}
	case m.NewElectricity < m.OldElectricity:
		return &InvalidInputError{Field: "electricity", Reason: "new reading is lower than old reading"}
	case m.NewWater < m.OldWater:
		return &InvalidInputError{Field: "water", Reason: "new reading is lower than old reading"}
	}
	return nil
}

// UsedElectricity returns the consumed electricity units.
func (m MeterReadings) UsedElectricity() int64 { return m.NewElectricity - m.OldElectricity }

// UsedWater returns the consumed water units.
func (m MeterReadings) UsedWater() int64 { return m.NewWater - m.OldWater }

// Bill is the breakdown of one invoice total.
type Bill struct {
	RoomPrice    int64
	ElectricCost int64
	WaterCost    int64
	ServiceFee   int64
	Total        int64
}

// Compute prices a month of usage. A nil serviceFee falls back to the tariff
// default. Readings must already be valid. A total that does not fit in an
// int64 is rejected rather than wrapped.
func (t Tariff) Compute(roomPrice int64, m MeterReadings, serviceFee *int64) (Bill, error) {
	fee := t.DefaultServiceFee
	if serviceFee != nil {
		fee = *serviceFee
	}
	if roomPrice < 0 || fee < 0 {
		return Bill{}, &InvalidInputError{Field: "totalAmount", Reason: "amounts must not be negative"}
	}

	b := Bill{RoomPrice: roomPrice, ServiceFee: fee}
	var ok1, ok2 bool
	b.ElectricCost, ok1 = mulAmount(m.UsedElectricity(), t.ElectricUnitPrice)
	b.WaterCost, ok2 = mulAmount(m.UsedWater(), t.WaterUnitPrice)
	if !ok1 || !ok2 {
		return Bill{}, errAmountOverflow
	}

	total := int64(0)
	for _, part := range []int64{b.RoomPrice, b.ElectricCost, b.WaterCost, b.ServiceFee} {
		if part > math.MaxInt64-total {
			return Bill{}, errAmountOverflow
		}
		total += part
	}
	b.Total = total
	return b, nil
}

var errAmountOverflow = &InvalidInputError{Field: "totalAmount", Reason: "amount exceeds the supported range"}

// mulAmount multiplies two non-negative values, reporting false on overflow.
func mulAmount(units, price int64) (int64, bool) {
	if units < 0 || price < 0 {
		return 0, false
	}
	if units != 0 && price > math.MaxInt64/units {
		return 0, false
	}
	return units * price, true
}
