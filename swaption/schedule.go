package swaption

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/hwlib/calendar"
	"github.com/meenmo/hwlib/utils"
)

// rateYearFractionTol is the threshold below which a floating period's
// rate year fraction is treated as degenerate and the accrual/rate
// ratio defaults to 1.
const rateYearFractionTol = 1e-10

// ScheduleDate is one date of a SwapSchedule with its co-indexed
// coupon weights.
type ScheduleDate struct {
	Date time.Time
	// Time is the model time of the date (year fraction from the deal
	// base date).
	Time float64
	// FixedWeight is the fixed-leg accrual fraction times notional
	// paying on this date.
	FixedWeight float64
	// FixedRate is the fixed coupon rate (decimal) applied to
	// FixedWeight, unless overridden at pricing time.
	FixedRate float64
	// FloatWeight is notional times the accrual/rate year-fraction
	// ratio for the floating payment on this date.
	FloatWeight float64
}

// FloatPeriod is one floating-rate period of the underlying swap. Its
// reset start date and payment date are both schedule dates.
type FloatPeriod struct {
	// StartIndex and PayIndex locate the reset-start and payment dates
	// in SwapSchedule.Dates.
	StartIndex int
	PayIndex   int

	StartTime float64
	EndTime   float64
	PayTime   float64

	// AccrualYF and RateYF are the accrual and rate year fractions;
	// WeightRatio is AccrualYF/RateYF, defaulting to 1 when RateYF is
	// below tolerance.
	AccrualYF   float64
	RateYF      float64
	WeightRatio float64

	Notional float64
}

// SwapSchedule is the ordered, de-duplicated date sequence covering
// every fixed-leg payment date and every floating-leg payment and
// reset-start date of the underlying swap. Built once per valuation
// run; immutable afterward.
type SwapSchedule struct {
	Dates        []ScheduleDate
	FloatPeriods []FloatPeriod
}

// Validate performs the structural checks that block valuation when
// they fail. It does not inspect market data.
func (s *SwapSchedule) Validate() error {
	if s == nil || len(s.Dates) == 0 {
		return ErrNilSchedule
	}
	for i := 1; i < len(s.Dates); i++ {
		if s.Dates[i].Time <= s.Dates[i-1].Time {
			return fmt.Errorf("Validate: schedule times not strictly increasing at index %d: %w", i, ErrNonVanilla)
		}
	}
	prevEnd := math.Inf(-1)
	for k, p := range s.FloatPeriods {
		if p.StartIndex < 0 || p.StartIndex >= len(s.Dates) || p.PayIndex < 0 || p.PayIndex >= len(s.Dates) {
			return fmt.Errorf("Validate: float period %d indexes out of range: %w", k, ErrNonVanilla)
		}
		if s.Dates[p.StartIndex].Time != p.StartTime || s.Dates[p.PayIndex].Time != p.PayTime {
			return fmt.Errorf("Validate: float period %d times disagree with schedule dates: %w", k, ErrNonVanilla)
		}
		if p.EndTime <= p.StartTime || p.PayTime < p.EndTime {
			return fmt.Errorf("Validate: float period %d has non-increasing rate dates: %w", k, ErrNonVanilla)
		}
		if p.StartTime < prevEnd {
			return fmt.Errorf("Validate: float period %d overlaps previous period (multiple resets): %w", k, ErrNonVanilla)
		}
		prevEnd = p.EndTime
	}
	return nil
}

// LegTerms describes one leg of the underlying swap for schedule
// construction.
type LegTerms struct {
	FrequencyMonths int
	DayCount        string
	Calendar        calendar.CalendarID
	Currency        string
	PayDelayDays    int
	// ResetFrequencyMonths applies to floating legs; zero means one
	// reset per payment period.
	ResetFrequencyMonths int
	// Compounding must be empty or "NONE"; anything else is rejected.
	Compounding string
}

// SwapTerms describes the underlying swap of a European swaption in
// market terms, from which BuildSchedule derives the pricing schedule.
type SwapTerms struct {
	Notional  float64
	FixedRate float64 // decimal, e.g. 0.03 == 3%

	EffectiveDate time.Time
	MaturityDate  time.Time

	Fixed LegTerms
	Float LegTerms

	// RateDayCount is the floating rate's year-fraction basis;
	// defaults to Float.DayCount.
	RateDayCount string

	// BaseDate is the model time origin. Zero value defaults to
	// EffectiveDate.
	BaseDate time.Time
}

type rollPeriod struct {
	start, end, pay time.Time
}

// rollForward generates business-day adjusted periods from effective
// to maturity at the given monthly frequency.
func rollForward(effective, maturity time.Time, months int, cal calendar.CalendarID, payDelayDays int) []rollPeriod {
	var periods []rollPeriod
	start := effective
	for {
		next := start.AddDate(0, months, 0)
		if next.After(maturity.AddDate(0, 0, 1)) {
			break
		}
		accrualStart := calendar.Adjust(cal, start)
		accrualEnd := calendar.Adjust(cal, next)
		pay := calendar.AddBusinessDays(cal, accrualEnd, payDelayDays)
		periods = append(periods, rollPeriod{start: accrualStart, end: accrualEnd, pay: pay})
		start = next
	}
	return periods
}

func validateTerms(terms SwapTerms) error {
	if terms.Notional == 0 {
		return fmt.Errorf("BuildSchedule: Notional is required")
	}
	if !terms.MaturityDate.After(terms.EffectiveDate) {
		return fmt.Errorf("BuildSchedule: maturity %s not after effective %s",
			terms.MaturityDate.Format("2006-01-02"), terms.EffectiveDate.Format("2006-01-02"))
	}
	if terms.Fixed.FrequencyMonths <= 0 || terms.Float.FrequencyMonths <= 0 {
		return fmt.Errorf("BuildSchedule: unsupported pay frequency (fixed=%d, float=%d)",
			terms.Fixed.FrequencyMonths, terms.Float.FrequencyMonths)
	}
	if terms.Fixed.Currency != terms.Float.Currency {
		return fmt.Errorf("BuildSchedule: leg currency mismatch (%s vs %s): %w",
			terms.Fixed.Currency, terms.Float.Currency, ErrNonVanilla)
	}
	for _, leg := range []LegTerms{terms.Fixed, terms.Float} {
		if leg.Compounding != "" && leg.Compounding != "NONE" {
			return fmt.Errorf("BuildSchedule: unsupported compounding %q: %w", leg.Compounding, ErrNonVanilla)
		}
	}
	if terms.Float.ResetFrequencyMonths != 0 && terms.Float.ResetFrequencyMonths != terms.Float.FrequencyMonths {
		return fmt.Errorf("BuildSchedule: multiple resets per floating period (reset=%dM, pay=%dM): %w",
			terms.Float.ResetFrequencyMonths, terms.Float.FrequencyMonths, ErrNonVanilla)
	}
	return nil
}

// BuildSchedule constructs the swaption pricing schedule from swap
// terms: one entry per distinct fixed payment, floating payment or
// floating reset-start date, with co-indexed coupon weights.
func BuildSchedule(terms SwapTerms) (*SwapSchedule, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	base := terms.BaseDate
	if base.IsZero() {
		base = terms.EffectiveDate
	}
	rateDC := terms.RateDayCount
	if rateDC == "" {
		rateDC = terms.Float.DayCount
	}

	fixedPeriods := rollForward(terms.EffectiveDate, terms.MaturityDate, terms.Fixed.FrequencyMonths, terms.Fixed.Calendar, terms.Fixed.PayDelayDays)
	floatPeriods := rollForward(terms.EffectiveDate, terms.MaturityDate, terms.Float.FrequencyMonths, terms.Float.Calendar, terms.Float.PayDelayDays)
	if len(fixedPeriods) == 0 || len(floatPeriods) == 0 {
		return nil, fmt.Errorf("BuildSchedule: underlying swap has no whole periods between %s and %s",
			terms.EffectiveDate.Format("2006-01-02"), terms.MaturityDate.Format("2006-01-02"))
	}
	if fixedPeriods[0].pay.Before(floatPeriods[0].start) {
		return nil, fmt.Errorf("BuildSchedule: fixed leg pays %s before floating start %s: %w",
			fixedPeriods[0].pay.Format("2006-01-02"), floatPeriods[0].start.Format("2006-01-02"), ErrNonVanilla)
	}

	// Collect the distinct schedule dates.
	dateSet := make(map[time.Time]struct{})
	for _, p := range fixedPeriods {
		dateSet[p.pay] = struct{}{}
	}
	for _, p := range floatPeriods {
		dateSet[p.start] = struct{}{}
		dateSet[p.pay] = struct{}{}
	}
	dates := make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	utils.SortDates(dates)

	sched := &SwapSchedule{Dates: make([]ScheduleDate, len(dates))}
	index := make(map[time.Time]int, len(dates))
	for i, d := range dates {
		index[d] = i
		sched.Dates[i] = ScheduleDate{Date: d, Time: ModelTime(base, d)}
	}

	for _, p := range fixedPeriods {
		accrual := utils.YearFraction(p.start, p.end, terms.Fixed.DayCount)
		i := index[p.pay]
		sched.Dates[i].FixedWeight += accrual * terms.Notional
		sched.Dates[i].FixedRate = terms.FixedRate
	}

	for _, p := range floatPeriods {
		accrual := utils.YearFraction(p.start, p.end, terms.Float.DayCount)
		rateYF := utils.YearFraction(p.start, p.end, rateDC)
		ratio := 1.0
		if rateYF >= rateYearFractionTol {
			ratio = accrual / rateYF
		}
		i := index[p.pay]
		sched.Dates[i].FloatWeight += terms.Notional * ratio
		sched.FloatPeriods = append(sched.FloatPeriods, FloatPeriod{
			StartIndex:  index[p.start],
			PayIndex:    i,
			StartTime:   ModelTime(base, p.start),
			EndTime:     ModelTime(base, p.end),
			PayTime:     ModelTime(base, p.pay),
			AccrualYF:   accrual,
			RateYF:      rateYF,
			WeightRatio: ratio,
			Notional:    terms.Notional,
		})
	}
	sort.Slice(sched.FloatPeriods, func(a, b int) bool {
		return sched.FloatPeriods[a].StartTime < sched.FloatPeriods[b].StartTime
	})

	if err := sched.Validate(); err != nil {
		return nil, err
	}
	return sched, nil
}
