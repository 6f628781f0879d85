package model

// Summary holds run totals for the report header and exports.
type Summary struct {
	Ticks int
	Range TimeRange

	// Energy flows
	SRLOutKWh float64 // delivered (discharge)
	SRLInKWh  float64 // absorbed (charge)
	PSOutKWh  float64 // peak-shaving discharge
	PSInKWh   float64 // peak-shaving charge

	// SoC extremes, NaN when no finite SoC was seen
	MinSoCKWh float64
	MaxSoCKWh float64

	TransformerViolations int

	SRLRevenuePosCHF float64
	SRLRevenueNegCHF float64
}

// SRLRevenueCHF is the total SRL revenue over both directions.
func (s Summary) SRLRevenueCHF() float64 {
	return s.SRLRevenuePosCHF + s.SRLRevenueNegCHF
}
