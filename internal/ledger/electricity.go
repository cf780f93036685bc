package ledger

import "ricemill/backend/internal/domain"

// PowerFactor is kWh/kVAh; ok is false when kVAh is zero.
func PowerFactor(kwh float64, kvah float64) (pf float64, ok bool) {
	if kvah == 0 {
		return 0, false
	}
	return kwh / kvah, true
}

func ReadingView(reading domain.ElectricityReading, tariff domain.Tariff) domain.ElectricityReadingView {
	view := domain.ElectricityReadingView{ElectricityReading: reading}
	if pf, ok := PowerFactor(reading.KWh, reading.KVAh); ok {
		view.PowerFactor = &pf
		view.LowPowerFactor = pf < tariff.MinPowerFactor
	}
	if reading.KWh > 0 {
		cost := reading.BillAmount / reading.KWh
		view.CostPerUnit = &cost
	}
	return view
}

// EstimateBill projects the current period's bill from the unbilled live
// reading. A reading without kWh or kVAh yields an unavailable estimate.
func EstimateBill(live domain.LiveReading, tariff domain.Tariff) domain.BillEstimate {
	if live.KWh == nil || live.KVAh == nil {
		return domain.BillEstimate{}
	}
	kwh := *live.KWh
	rmd := 0.0
	if live.RMD != nil {
		rmd = *live.RMD
	}

	estimate := domain.BillEstimate{
		Available:         true,
		DemandCharge:      rmd * tariff.DemandRate,
		EnergyCharge:      kwh * tariff.EnergyRate,
		FixedCharge:       tariff.FixedCharge,
		FuelSurcharge:     kwh * tariff.FuelSurchargeRate,
		AdditionalCharges: tariff.AdditionalCharge,
	}
	estimate.ElectricityDuty = (estimate.EnergyCharge + estimate.DemandCharge) * tariff.DutyRate
	estimate.Total = estimate.DemandCharge + estimate.EnergyCharge + estimate.FixedCharge +
		estimate.FuelSurcharge + estimate.ElectricityDuty + estimate.AdditionalCharges
	if pf, ok := PowerFactor(kwh, *live.KVAh); ok {
		estimate.PowerFactor = &pf
	}
	return estimate
}
