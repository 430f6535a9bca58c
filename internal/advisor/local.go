package advisor

import (
	"context"
	"math"
	"time"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const earlyWarningShare = 0.8

const (
	msgOverdueKm   = "This service is overdue by %s km. It is critical to perform this maintenance before your trip."
	msgOverdueDays = "This service is overdue by %s days. It is critical to perform this maintenance before your trip."
	msgDueNow      = "This service is due now. It is critical to perform this maintenance before your trip."
	msgDueDuring   = "This service will become due during your trip. Complete it before departure."
	msgEarlyWarn   = "This service will be over 80%% of its service life by the end of the trip. Have it done before departure to avoid issues."
	msgDueAfterKm  = "This service is not due on the trip but falls due within %d days of your return, in about %s km."
	msgDueAfterDay = "This service is not due on the trip but falls due within %d days of your return, in %s days."
	msgNotDueKm    = "This service is not due for this trip. Next service is in %s km."
	msgNotDueDays  = "This service is not due for this trip. Next service is in %s days."
)

var printer = message.NewPrinter(language.English)

// Local classifies tasks with fixed rules and no network access.
type Local struct {
	clock clockz.Clock
}

// NewLocal creates a Local advisor reading the current date from clock. A
// nil clock means the real clock.
func NewLocal(clock clockz.Clock) *Local {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Local{clock: clock}
}

// Advise classifies every task in request order.
func (l *Local) Advise(_ context.Context, req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	start, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		return nil, err
	}

	trip := tripProjection{
		today:       l.clock.Now(),
		odometer:    req.CurrentOdometer,
		endOdometer: req.CurrentOdometer + req.Distance + req.DailyAvgKm*float64(req.DurationDays),
		endDate:     start.AddDate(0, 0, req.DurationDays),
		dailyAvgKm:  req.DailyAvgKm,
	}

	result := &Result{Advisory: make([]Advisory, 0, len(req.MaintenanceTasks))}
	for _, task := range req.MaintenanceTasks {
		var a Advisory
		switch task.IntervalType {
		case models.ReminderKm:
			a = trip.classifyKm(task)
		case models.ReminderDays:
			a = trip.classifyDays(task)
		default:
			continue
		}
		result.Advisory = append(result.Advisory, a)
	}

	log.WithFields(log.Fields{
		"destination": req.Destination,
		"tasks":       len(req.MaintenanceTasks),
		"advisories":  len(result.Advisory),
	}).Debug("Trip advisory computed")

	return result, nil
}

// tripProjection is where the bike will be, by odometer and by date, when
// the trip ends.
type tripProjection struct {
	today       time.Time
	odometer    float64
	endOdometer float64
	endDate     time.Time
	dailyAvgKm  float64
}

func (p tripProjection) classifyKm(task Task) Advisory {
	last := 0.0
	if task.LastPerformedOdometer != nil {
		last = *task.LastPerformedOdometer
	}
	due := last + task.IntervalValue
	a := Advisory{TaskName: task.Name}

	switch {
	case p.odometer >= due:
		over := p.odometer - due
		a.Status = StatusDueBefore
		a.KilometersOverdue = &over
		a.Message = overdueMessage(msgOverdueKm, over)
	case p.endOdometer >= due:
		a.Status = StatusDueDuring
		a.Message = msgDueDuring
	case p.endOdometer > last+task.IntervalValue*earlyWarningShare:
		a.Status = StatusDueDuring
		a.Message = printer.Sprintf(msgEarlyWarn)
	case p.dailyAvgKm > 0 && p.endOdometer+p.dailyAvgKm*postTripWindowDays >= due:
		a.Status = StatusDueAfter
		a.Message = printer.Sprintf(msgDueAfterKm, postTripWindowDays, formatNumber(due-p.odometer))
	default:
		a.Status = StatusNotDue
		a.Message = printer.Sprintf(msgNotDueKm, formatNumber(due-p.odometer))
	}
	return a
}

func (p tripProjection) classifyDays(task Task) Advisory {
	last := time.Unix(0, 0).UTC()
	if task.LastPerformedDate != "" {
		if t, err := time.Parse(DateLayout, task.LastPerformedDate); err == nil {
			last = t
		}
	}
	due := calc.AddDays(last, task.IntervalValue)
	a := Advisory{TaskName: task.Name}

	switch {
	case !p.today.Before(due):
		over := calc.DaysBetween(p.today, due)
		a.Status = StatusDueBefore
		a.DaysOverdue = &over
		a.Message = overdueMessage(msgOverdueDays, float64(over))
	case !p.endDate.Before(due):
		a.Status = StatusDueDuring
		a.Message = msgDueDuring
	case p.endDate.After(calc.AddDays(last, task.IntervalValue*earlyWarningShare)):
		a.Status = StatusDueDuring
		a.Message = printer.Sprintf(msgEarlyWarn)
	case !p.endDate.AddDate(0, 0, postTripWindowDays).Before(due):
		a.Status = StatusDueAfter
		a.Message = printer.Sprintf(msgDueAfterDay, postTripWindowDays, formatNumber(float64(calc.DaysBetween(due, p.today))))
	default:
		a.Status = StatusNotDue
		a.Message = printer.Sprintf(msgNotDueDays, formatNumber(float64(calc.DaysBetween(due, p.today))))
	}
	return a
}

// overdueMessage reports a task that fell due less than a unit ago as due
// now rather than overdue by zero.
func overdueMessage(format string, over float64) string {
	if over == 0 {
		return msgDueNow
	}
	return printer.Sprintf(format, formatNumber(over))
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) {
		return printer.Sprintf("%d", int64(n))
	}
	return printer.Sprintf("%.1f", n)
}
