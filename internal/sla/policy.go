// Package sla maps issue priority to resolution windows and reports how an
// issue stands against its deadline. Everything here is a pure function of
// (deadline, now); callers supply the clock.
package sla

import (
	"fmt"
	"time"

	"github.com/civicdesk/issue-service/internal/domain"
)

// Policy holds the priority → resolution window table. Windows must be
// monotonic: a higher priority never gets a longer window.
type Policy struct {
	windows map[domain.IssuePriority]time.Duration
}

// Durations configures the policy table. Zero values fall back to the
// reference defaults.
type Durations struct {
	Critical time.Duration
	High     time.Duration
	Medium   time.Duration
	Low      time.Duration
}

// Reference defaults: critical issues get a day, low priority gets five.
const (
	DefaultCriticalWindow = 24 * time.Hour
	DefaultHighWindow     = 48 * time.Hour
	DefaultMediumWindow   = 72 * time.Hour
	DefaultLowWindow      = 120 * time.Hour
)

// NewPolicy builds a policy from the configured durations. It returns an
// error when the table violates priority monotonicity.
func NewPolicy(d Durations) (*Policy, error) {
	if d.Critical <= 0 {
		d.Critical = DefaultCriticalWindow
	}
	if d.High <= 0 {
		d.High = DefaultHighWindow
	}
	if d.Medium <= 0 {
		d.Medium = DefaultMediumWindow
	}
	if d.Low <= 0 {
		d.Low = DefaultLowWindow
	}
	if d.Critical > d.High || d.High > d.Medium || d.Medium > d.Low {
		return nil, fmt.Errorf("sla windows not monotonic: critical=%s high=%s medium=%s low=%s",
			d.Critical, d.High, d.Medium, d.Low)
	}
	return &Policy{windows: map[domain.IssuePriority]time.Duration{
		domain.IssuePriorityCritical: d.Critical,
		domain.IssuePriorityHigh:     d.High,
		domain.IssuePriorityMedium:   d.Medium,
		domain.IssuePriorityLow:      d.Low,
	}}, nil
}

// DefaultPolicy returns the reference duration table.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(Durations{})
	if err != nil {
		panic(err)
	}
	return p
}

// Window returns the resolution window for a priority. Unknown priorities
// get the medium window.
func (p *Policy) Window(priority domain.IssuePriority) time.Duration {
	if w, ok := p.windows[priority]; ok {
		return w
	}
	return p.windows[domain.IssuePriorityMedium]
}

// Deadline computes the SLA deadline for an issue created at createdAt.
func (p *Policy) Deadline(priority domain.IssuePriority, createdAt time.Time) time.Time {
	return createdAt.Add(p.Window(priority))
}

// Remaining describes an issue's standing against its deadline.
type Remaining struct {
	Text    string
	Hours   int
	Overdue bool
}

// TimeRemaining reports the signed distance between now and the deadline.
// Overdue time is reported in whole hours; remaining time in hours when
// under a day, otherwise whole days. A deadline exactly at now counts as
// not overdue.
func TimeRemaining(deadline, now time.Time) Remaining {
	diff := deadline.Sub(now)
	if diff < 0 {
		hours := int((-diff) / time.Hour)
		return Remaining{Text: fmt.Sprintf("%dh overdue", hours), Hours: hours, Overdue: true}
	}
	hours := int(diff / time.Hour)
	if hours < 24 {
		return Remaining{Text: fmt.Sprintf("%dh remaining", hours), Hours: hours}
	}
	days := hours / 24
	return Remaining{Text: fmt.Sprintf("%dd remaining", days), Hours: hours}
}

// HoursOverdue returns whole hours past the deadline, zero when not overdue.
func HoursOverdue(deadline, now time.Time) int {
	if !now.After(deadline) {
		return 0
	}
	return int(now.Sub(deadline) / time.Hour)
}

// HoursRemaining returns whole hours until the deadline, zero when overdue.
func HoursRemaining(deadline, now time.Time) int {
	if !deadline.After(now) {
		return 0
	}
	return int(deadline.Sub(now) / time.Hour)
}
