// Package radiation computes the surface radiation balance change caused by
// replacing bare ground with a photovoltaic installation.
package radiation

// NetForcing returns the change in net radiation at the surface, in W/m²,
// when a panel with the given albedo and conversion efficiency displaces
// ground with the given albedo under the given insolation.
//
// The ground would have absorbed insolation×(1−groundAlbedo). The panel
// absorbs insolation×(1−panelAlbedo), converts a fraction to electricity
// that leaves the local system, and releases the remainder as waste heat.
// A positive result means the installation adds energy to the local
// environment relative to bare ground (local warming).
func NetForcing(insolation, groundAlbedo, panelAlbedo, efficiency float64) float64 {
	groundAbsorbed := insolation * (1 - groundAlbedo)
	panelAbsorbed := insolation * (1 - panelAlbedo)
	wasteHeat := panelAbsorbed * (1 - efficiency)
	return wasteHeat - groundAbsorbed
}
