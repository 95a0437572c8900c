// Command swaptionprice prices a European swaption on a vanilla
// fixed-vs-float swap and prints its PV profile over a monthly
// valuation grid. The discount/forecast curve is either flat (default)
// or loaded from a Postgres curve_quotes table; with -scenarios > 1 a
// batch of random parallel zero shifts is applied.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"golang.org/x/exp/rand"

	"github.com/meenmo/hwlib/calendar"
	"github.com/meenmo/hwlib/curve"
	"github.com/meenmo/hwlib/hullwhite"
	"github.com/meenmo/hwlib/marketdata"
	"github.com/meenmo/hwlib/scenario"
	"github.com/meenmo/hwlib/swaption"
)

func main() {
	var (
		notional  = flag.Float64("notional", 10_000_000, "swap notional")
		fixedRate = flag.Float64("rate", 0.03, "fixed rate (decimal)")
		expiryY   = flag.Int("expiry", 1, "option expiry in years from today")
		tenorY    = flag.Int("tenor", 5, "underlying swap tenor in years")
		flatRate  = flag.Float64("curve", 0.03, "flat zero rate (decimal), ignored with -dsn")
		meanRev   = flag.Float64("a", 0.03, "Hull-White mean reversion")
		sigma     = flag.Float64("sigma", 0.01, "Hull-White volatility")
		scenarios = flag.Int("scenarios", 1, "scenario batch size")
		shiftVol  = flag.Float64("shiftvol", 0.0025, "parallel zero-shift vol for scenarios > 1")
		seed      = flag.Uint64("seed", 42, "scenario random seed")
		payerFlag = flag.Bool("payer", true, "payer swaption (false for receiver)")
		cashFlag  = flag.Bool("cash", false, "cash settlement (default physical)")
		dsn       = flag.String("dsn", "", "Postgres DSN for curve quotes (optional)")
		curveID   = flag.String("curveid", "EUR-ESTR", "curve identifier for -dsn")
		curveDate = flag.String("curvedate", time.Now().Format("2006-01-02"), "curve date for -dsn")
	)
	flag.Parse()

	today := time.Now().UTC().Truncate(24 * time.Hour)
	effective := calendar.AddBusinessDays(calendar.TARGET, today.AddDate(*expiryY, 0, 0), 2)
	maturity := calendar.AdjustFollowing(calendar.TARGET, effective.AddDate(*tenorY, 0, 0))

	sched, err := swaption.BuildSchedule(swaption.SwapTerms{
		Notional:      *notional,
		FixedRate:     *fixedRate,
		EffectiveDate: effective,
		MaturityDate:  maturity,
		Fixed: swaption.LegTerms{
			FrequencyMonths: 12,
			DayCount:        "30E/360",
			Calendar:        calendar.TARGET,
			Currency:        "EUR",
		},
		Float: swaption.LegTerms{
			FrequencyMonths: 6,
			DayCount:        "ACT/360",
			Calendar:        calendar.TARGET,
			Currency:        "EUR",
		},
		BaseDate: today,
	})
	if err != nil {
		log.Fatal(err)
	}

	discount, err := buildCurve(*scenarios, *flatRate, *dsn, *curveID, *curveDate, *shiftVol, *seed)
	if err != nil {
		log.Fatal(err)
	}

	model, err := hullwhite.NewConstantModel(*scenarios, *meanRev, *sigma)
	if err != nil {
		log.Fatal(err)
	}

	expiry := calendar.AddBusinessDays(calendar.TARGET, effective, -2)
	position := swaption.Payer
	if !*payerFlag {
		position = swaption.Receiver
	}
	settlement := swaption.SettlePhysical
	settleDate := expiry
	if *cashFlag {
		settlement = swaption.SettleCash
		settleDate = calendar.AddBusinessDays(calendar.TARGET, expiry, 2)
	}

	deal := &swaption.Swaption{
		Schedule:       sched,
		ExpiryDate:     expiry,
		ExpiryTime:     swaption.ModelTime(today, expiry),
		SettlementDate: settleDate,
		SettlementTime: swaption.ModelTime(today, settleDate),
		Settlement:     settlement,
		Position:       position,
		Side:           swaption.Buy,
	}

	profile := &swaption.Profile{}
	valuer, err := swaption.NewValuer(swaption.ValuerParams{
		Swaption: deal,
		Discount: discount,
		Forecast: discount,
		Model:    model,
		Results:  profile,
	})
	if err != nil {
		log.Fatal(err)
	}

	var grid []swaption.GridPoint
	for d := today; !d.After(settleDate); d = d.AddDate(0, 1, 0) {
		grid = append(grid, swaption.GridPoint{Date: d, Time: swaption.ModelTime(today, d)})
	}
	if last := grid[len(grid)-1].Date; last.Before(settleDate) {
		grid = append(grid, swaption.GridPoint{Date: settleDate, Time: deal.SettlementTime})
	}

	if err := valuer.Run(grid); err != nil {
		log.Fatal(err)
	}

	fmt.Println("================================================================================")
	fmt.Printf("EUROPEAN %s SWAPTION (%s settled)\n", position, settlement)
	fmt.Printf("Expiry: %s | Underlying: %dY swap, fixed %.2f%% vs 6M float\n",
		expiry.Format("2006-01-02"), *tenorY, *fixedRate*100)
	fmt.Printf("Notional: %.0f | a=%.4f sigma=%.4f | scenarios=%d\n",
		*notional, *meanRev, *sigma, *scenarios)
	fmt.Println("================================================================================")
	fmt.Printf("%-12s  %16s  %16s  %16s\n", "Date", "Mean PV", "Min PV", "Max PV")
	for i, d := range profile.Dates {
		pv := profile.PVs[i]
		mean, lo, hi := summarize(pv)
		fmt.Printf("%-12s  %16.2f  %16.2f  %16.2f\n", d.Format("2006-01-02"), mean, lo, hi)
	}
}

// summarize returns the mean, minimum and maximum of a PV batch.
func summarize(pv []float64) (mean, lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range pv {
		mean += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return mean / float64(len(pv)), lo, hi
}

// buildCurve assembles the discount handle: flat or Postgres pillars,
// wrapped with parallel zero shifts when the batch has more than one
// scenario.
func buildCurve(scenarios int, flatRate float64, dsn, curveID, curveDate string, shiftVol float64, seed uint64) (curve.Handle, error) {
	var base curve.Handle
	if dsn == "" {
		flat, err := curve.NewFlat(scenarios, flatRate)
		if err != nil {
			return nil, err
		}
		base = flat
	} else {
		store, err := marketdata.Open(dsn)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		quotes, err := store.ZeroQuotes(curveID, curveDate)
		if err != nil {
			return nil, err
		}
		times := make([]float64, len(quotes))
		dfs := make([]float64, len(quotes))
		for i, q := range quotes {
			times[i] = q.TenorYears
			dfs[i] = discountFromZero(q.Rate, q.TenorYears)
		}
		pillar, err := curve.NewPillar(scenarios, times, dfs)
		if err != nil {
			return nil, err
		}
		base = pillar
	}

	if scenarios <= 1 {
		return base, nil
	}
	shifts, err := scenario.ParallelZeroShifts(scenarios, shiftVol, rand.NewSource(seed))
	if err != nil {
		return nil, err
	}
	return curve.NewShifted(base, []float64{1}, shifts)
}

// discountFromZero converts a continuously-compounded zero rate to a
// base-date discount factor.
func discountFromZero(rate, t float64) float64 {
	if t <= 0 {
		return 1
	}
	return math.Exp(-rate * t)
}
