// Package impact converts generated clean energy into global-scale CO2 and
// temperature effects.
package impact

// Projector holds the linear coefficients of the global response model.
type Projector struct {
	// EmissionFactor is the displaced grid carbon intensity in kgCO2/kWh.
	EmissionFactor float64
	// TCRE is the transient climate response to cumulative emissions, in
	// °C per 1000 GtCO2.
	TCRE float64
}

// Project returns the global temperature change (°C, negative for cooling)
// and the CO2 reduction (Gt) for the given total generation in GWh.
func (p Projector) Project(totalEnergyGWh float64) (globalTempChangeC, co2ReductionGt float64) {
	totalEnergyKWh := totalEnergyGWh * 1e6
	co2Tonnes := totalEnergyKWh * p.EmissionFactor / 1000
	co2ReductionGt = co2Tonnes / 1e9

	// More clean generation means emissions avoided, hence the negative sign.
	globalTempChangeC = -(co2ReductionGt / 1000) * p.TCRE
	return globalTempChangeC, co2ReductionGt
}

// RequiredEnergyGWh inverts Project: the clean generation needed to reach
// the given cooling target (positive °C of cooling).
func (p Projector) RequiredEnergyGWh(targetCoolingC float64) (energyGWh, co2Gt float64) {
	co2Gt = targetCoolingC * 1000 / p.TCRE
	energyGWh = co2Gt / (1e-6 * p.EmissionFactor)
	return energyGWh, co2Gt
}
