package profile

import (
	"math"
	"math/rand"
	"time"

	"github.com/tariffkit/tariffkit/pkg/types"
)

// Default shape parameters for synthetic profiles.
const (
	DefaultSeasonalVariation = 0.1
	DefaultWeekendFactor     = 0.7
	DefaultDailyVariation    = 0.15
	DefaultNoiseLevel        = 0.05
)

// GeneratorOptions shapes a synthetic profile. TOUPercentages assigns a
// share (0-100) of annual energy to each energy TOU period; periods left
// out keep whatever the shape multipliers produce.
type GeneratorOptions struct {
	AvgLoadKW  float64
	LoadFactor float64
	Year       int

	TOUPercentages    map[int]float64
	SeasonalVariation float64
	WeekendFactor     float64
	DailyVariation    float64
	NoiseLevel        float64

	// Seed for the noise source. The same seed yields the same profile.
	Seed int64
}

// Generate builds a year-long 15-minute synthetic profile aligned with the
// tariff's energy TOU schedules. The series is shaped by seasonal, weekend,
// and time-of-day multipliers plus gaussian noise, then scaled per period to
// hit the requested TOU energy split, then rescaled so the average load and
// peak (avg/loadFactor) match the requested targets.
func Generate(t *types.Tariff, opts GeneratorOptions) *Profile {
	if opts.WeekendFactor == 0 {
		opts.WeekendFactor = DefaultWeekendFactor
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	start := time.Date(opts.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	n := int(end.Sub(start) / (15 * time.Minute))

	p := &Profile{
		Timestamps: make([]time.Time, n),
		LoadKW:     make([]float64, n),
		KWH:        make([]float64, n),
	}
	periods := make([]int, n)
	ts := start
	for i := 0; i < n; i++ {
		p.Timestamps[i] = ts
		ts = ts.Add(15 * time.Minute)
	}
	p.derive()

	for i := 0; i < n; i++ {
		sched := t.EnergyWeekdaySchedule
		if p.IsWeekend[i] {
			sched = t.EnergyWeekendSchedule
		}
		periods[i] = sched.At(p.Months[i], p.Hours[i])

		seasonal := 1 + opts.SeasonalVariation*math.Sin(2*math.Pi*float64(p.Months[i]-1)/12)
		daily := 1 + opts.DailyVariation*math.Sin(2*math.Pi*float64(p.Hours[i])/24)
		weekend := 1.0
		if p.IsWeekend[i] {
			weekend = opts.WeekendFactor
		}
		noise := 1 + opts.NoiseLevel*rng.NormFloat64()
		if noise < 0 {
			noise = 0
		}
		p.LoadKW[i] = opts.AvgLoadKW * seasonal * daily * weekend * noise
	}

	// Rescale each period to its requested share of annual energy.
	if len(opts.TOUPercentages) > 0 {
		totalKWH := opts.AvgLoadKW * 8760
		current := make(map[int]float64)
		for i, period := range periods {
			current[period] += p.LoadKW[i] * intervalHours
		}
		for period, pct := range opts.TOUPercentages {
			if current[period] <= 0 {
				continue
			}
			factor := totalKWH * pct / 100 / current[period]
			for i, pd := range periods {
				if pd == period {
					p.LoadKW[i] *= factor
				}
			}
		}
	}

	// Hold the average at the target, then cap the peak for the requested
	// load factor and recover the energy lost to clipping.
	scaleToAverage(p.LoadKW, opts.AvgLoadKW)
	if opts.LoadFactor > 0 && opts.LoadFactor <= 1 {
		targetPeak := opts.AvgLoadKW / opts.LoadFactor
		for i, v := range p.LoadKW {
			if v > targetPeak {
				p.LoadKW[i] = targetPeak
			}
		}
		scaleToAverage(p.LoadKW, opts.AvgLoadKW)
		for i, v := range p.LoadKW {
			if v > targetPeak {
				p.LoadKW[i] = targetPeak
			}
		}
	}

	for i, v := range p.LoadKW {
		p.KWH[i] = v * intervalHours
	}
	return p
}

func scaleToAverage(load []float64, target float64) {
	var sum float64
	for _, v := range load {
		sum += v
	}
	avg := sum / float64(len(load))
	if avg <= 0 {
		return
	}
	factor := target / avg
	for i := range load {
		load[i] *= factor
	}
}
