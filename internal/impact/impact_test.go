package impact

import (
	"math"
	"testing"
)

func TestProject(t *testing.T) {
	p := Projector{EmissionFactor: 0.5366, TCRE: 0.5}

	tests := []struct {
		name      string
		energyGWh float64
		wantGt    float64
		wantTempC float64
		tolerance float64
	}{
		{
			// 1e6 GWh × 1e6 kWh/GWh × 0.5366 kg/kWh = 5.366e11 kg =
			// 0.5366 Gt; ΔT = −(0.5366/1000)×0.5
			name:      "million GWh reference case",
			energyGWh: 1_000_000,
			wantGt:    0.5366,
			wantTempC: -0.0002683,
			tolerance: 1e-9,
		},
		{
			name:      "zero energy",
			energyGWh: 0,
			wantGt:    0,
			wantTempC: 0,
			tolerance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTemp, gotGt := p.Project(tt.energyGWh)
			if math.Abs(gotGt-tt.wantGt) > tt.tolerance {
				t.Errorf("co2ReductionGt = %v, expected %v", gotGt, tt.wantGt)
			}
			if math.Abs(gotTemp-tt.wantTempC) > tt.tolerance {
				t.Errorf("globalTempChangeC = %v, expected %v", gotTemp, tt.wantTempC)
			}
		})
	}
}

func TestRequiredEnergyInvertsProject(t *testing.T) {
	p := Projector{EmissionFactor: 0.5366, TCRE: 0.5}

	energyGWh, co2Gt := p.RequiredEnergyGWh(1.5)
	gotTemp, gotGt := p.Project(energyGWh)

	if math.Abs(gotTemp-(-1.5)) > 1e-9 {
		t.Errorf("round trip cooling = %v, expected -1.5", gotTemp)
	}
	if math.Abs(gotGt-co2Gt) > 1e-6 {
		t.Errorf("round trip CO2 = %v, expected %v", gotGt, co2Gt)
	}
}
