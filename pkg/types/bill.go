package types

import "time"

// MonthlyBill is one billing period of the monthly bill breakdown produced
// by the billing engine.
type MonthlyBill struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	TotalKWH   float64 `json:"totalKWH"`
	PeakKW     float64 `json:"peakKW"`
	AvgLoadKW  float64 `json:"avgLoadKW"`
	LoadFactor float64 `json:"loadFactor"`

	EnergyCharge         float64 `json:"energyCharge"`
	EnergyAdjustment     float64 `json:"energyAdjustment"`
	DemandCharge         float64 `json:"demandCharge"`
	DemandAdjustment     float64 `json:"demandAdjustment"`
	FlatDemandCharge     float64 `json:"flatDemandCharge"`
	FlatDemandAdjustment float64 `json:"flatDemandAdjustment"`
	FixedCharge          float64 `json:"fixedCharge"`
	TotalCharge          float64 `json:"totalCharge"`

	// Per-period breakdowns, keyed by TOU period index. Ratcheted peaks
	// are the billed demand after ratchet adjustment.
	KWHByEnergyPeriod    map[int]float64 `json:"kwhByEnergyPeriod,omitempty"`
	PeakKWByTOUPeriod    map[int]float64 `json:"peakKWByTOUPeriod,omitempty"`
	RatchetedByTOUPeriod map[int]float64 `json:"ratchetedByTOUPeriod,omitempty"`
}

// BillSummary is the simplified per-month view used for display: combined
// cost columns and a month name, with values rounded to cents.
type BillSummary struct {
	Year       int        `json:"year"`
	Month      time.Month `json:"month"`
	MonthName  string     `json:"monthName"`
	TotalKWH   float64    `json:"totalKWH"`
	PeakKW     float64    `json:"peakKW"`
	AvgLoadKW  float64    `json:"avgLoadKW"`
	LoadFactor float64    `json:"loadFactor"`

	TotalEnergyCost float64 `json:"totalEnergyCost"`
	TotalDemandCost float64 `json:"totalDemandCost"`
	FixedCharge     float64 `json:"fixedCharge"`
	TotalCharge     float64 `json:"totalCharge"`
}
