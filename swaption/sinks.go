package swaption

import (
	"fmt"
	"time"

	"github.com/meenmo/hwlib/batch"
)

// Profile is an in-memory ResultsSink collecting one batched PV per
// valuation date in increasing date order.
type Profile struct {
	Dates    []time.Time
	PVs      []batch.Vector
	complete bool
}

// Append records one valuation result. Dates must arrive in strictly
// increasing order.
func (p *Profile) Append(date time.Time, pv batch.Vector) error {
	if p.complete {
		return fmt.Errorf("Profile.Append: profile already complete")
	}
	if n := len(p.Dates); n > 0 && !date.After(p.Dates[n-1]) {
		return fmt.Errorf("Profile.Append: date %s not after previous %s",
			date.Format("2006-01-02"), p.Dates[n-1].Format("2006-01-02"))
	}
	p.Dates = append(p.Dates, date)
	p.PVs = append(p.PVs, pv)
	return nil
}

// Complete marks the profile finished; further appends fail.
func (p *Profile) Complete() error {
	if p.complete {
		return fmt.Errorf("Profile.Complete: already complete")
	}
	p.complete = true
	return nil
}

// Completed reports whether Complete has been called.
func (p *Profile) Completed() bool {
	return p.complete
}

// CashLedger is an in-memory CashSink accumulating realized cash
// batches by date.
type CashLedger struct {
	Dates   []time.Time
	Amounts []batch.Vector
}

// Collect records one realized-cash batch.
func (l *CashLedger) Collect(date time.Time, cash batch.Vector) error {
	l.Dates = append(l.Dates, date)
	l.Amounts = append(l.Amounts, cash)
	return nil
}
