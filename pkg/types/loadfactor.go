package types

// LoadFactorPoint is one swept point of the load-factor rate curve.
type LoadFactorPoint struct {
	// LoadFactor is the swept value in [0.01, 1.0].
	LoadFactor float64 `json:"loadFactor"`

	PeakDemandKW   float64 `json:"peakDemandKW"`
	AvgLoadKW      float64 `json:"avgLoadKW"`
	TotalEnergyKWH float64 `json:"totalEnergyKWH"`

	DemandCharges float64 `json:"demandCharges"`
	EnergyCharges float64 `json:"energyCharges"`
	FixedCharges  float64 `json:"fixedCharges"`
	TotalCost     float64 `json:"totalCost"`

	// EffectiveRate is TotalCost / TotalEnergyKWH in $/kWh, 0 when no
	// energy.
	EffectiveRate float64 `json:"effectiveRate"`
}

// EnergyPeriodCost is the energy slice of one TOU period within a
// breakdown row.
type EnergyPeriodCost struct {
	Period int     `json:"period"`
	Label  string  `json:"label"`
	KWH    float64 `json:"kwh"`
	Rate   float64 `json:"rate"`
	Cost   float64 `json:"cost"`
}

// DemandPeriodCost is the demand slice of one TOU demand period within a
// breakdown row. MonthsActive is populated only for annual analyses.
type DemandPeriodCost struct {
	Period       int     `json:"period"`
	Label        string  `json:"label"`
	DemandKW     float64 `json:"demandKW"`
	Rate         float64 `json:"rate"`
	Cost         float64 `json:"cost"`
	MonthsActive int     `json:"monthsActive,omitempty"`
}

// FlatDemandCost is one flat-demand seasonal tier within a breakdown row.
// Single-month analyses emit exactly one entry; annual analyses emit one
// per distinct tier with the number of months it covers.
type FlatDemandCost struct {
	Tier          int     `json:"tier"`
	DemandKW      float64 `json:"demandKW"`
	Rate          float64 `json:"rate"`
	Cost          float64 `json:"cost"`
	MonthsCovered int     `json:"monthsCovered,omitempty"`
}

// BreakdownRow expands one load-factor point into per-period components
// plus summary totals. It is the denormalized table users export.
type BreakdownRow struct {
	LoadFactor     float64 `json:"loadFactor"`
	AvgLoadKW      float64 `json:"avgLoadKW"`
	TotalEnergyKWH float64 `json:"totalEnergyKWH"`

	EnergyPeriods []EnergyPeriodCost `json:"energyPeriods"`
	DemandPeriods []DemandPeriodCost `json:"demandPeriods,omitempty"`
	FlatDemand    []FlatDemandCost   `json:"flatDemand,omitempty"`

	TotalDemandCharges float64 `json:"totalDemandCharges"`
	TotalEnergyCharges float64 `json:"totalEnergyCharges"`
	FixedCharges       float64 `json:"fixedCharges"`
	TotalCost          float64 `json:"totalCost"`
	EffectiveRate      float64 `json:"effectiveRate"`
}
