// Package advisor classifies maintenance tasks against a planned trip.
//
// The TripAdvisor interface has a deterministic Local implementation, a
// Remote implementation delegating to an advisory endpoint, and a Cached
// wrapper backed by redis. All of them accept and return the same wire
// shapes.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/models"
)

// DateLayout is the date format used on the wire.
const DateLayout = "2006-01-02"

// fallbackDailyKm is the riding pace assumed when the daily average is
// unknown.
const fallbackDailyKm = 50

// postTripWindowDays is how far past the trip end a task still counts as
// due_after.
const postTripWindowDays = 30

var (
	// ErrAdvisoryFailed marks a failed advisory call. It is never returned
	// for a successful call that simply has nothing to report.
	ErrAdvisoryFailed = errors.New("trip advisory failed")
	// ErrInvalidRequest is returned when a request does not pass validation.
	ErrInvalidRequest = errors.New("invalid advisory request")
)

// Status is the classification of one task relative to a trip.
type Status string

const (
	StatusDueBefore Status = "due_before"
	StatusDueDuring Status = "due_during"
	StatusDueAfter  Status = "due_after"
	StatusNotDue    Status = "not_due"
)

// IsValidStatus checks if an advisory status is valid
func IsValidStatus(s Status) bool {
	switch s {
	case StatusDueBefore, StatusDueDuring, StatusDueAfter, StatusNotDue:
		return true
	default:
		return false
	}
}

// TripAdvisor produces one advisory per maintenance task of a request.
type TripAdvisor interface {
	Advise(ctx context.Context, req Request) (*Result, error)
}

// Task is a maintenance task with a single interval type.
type Task struct {
	Name                  string              `json:"name" validate:"required"`
	IntervalType          models.ReminderType `json:"intervalType" validate:"oneof=km days"`
	IntervalValue         float64             `json:"intervalValue" validate:"gt=0"`
	LastPerformedOdometer *float64            `json:"lastPerformedOdometer,omitempty" validate:"omitempty,gte=0"`
	LastPerformedDate     string              `json:"lastPerformedDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Request describes a planned trip and the tasks to check.
type Request struct {
	Destination      string  `json:"destination" validate:"required"`
	StartDate        string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	Distance         float64 `json:"distance" validate:"gt=0"`
	DurationDays     int     `json:"durationDays" validate:"gte=1"`
	DailyAvgKm       float64 `json:"dailyAvgKm" validate:"gte=0"`
	CurrentOdometer  float64 `json:"currentOdometer" validate:"gte=0"`
	MaintenanceTasks []Task  `json:"maintenanceTasks" validate:"dive"`
}

// Advisory is the verdict for one task.
type Advisory struct {
	TaskName          string   `json:"taskName" validate:"required"`
	Status            Status   `json:"status" validate:"oneof=due_before due_during due_after not_due"`
	KilometersOverdue *float64 `json:"kilometersOverdue,omitempty" validate:"omitempty,gte=0"`
	DaysOverdue       *int     `json:"daysOverdue,omitempty" validate:"omitempty,gte=0"`
	Message           string   `json:"message" validate:"required"`
}

// Result is the full advisory for a trip. An empty Advisory slice means no
// task needs attention.
type Result struct {
	Advisory []Advisory `json:"advisory" validate:"required,dive"`
}

// TripDurationDays is the trip length implied by its distance and the
// rider's daily average, with a 50 km/day pace when the average is unknown.
// It is always at least one day.
func TripDurationDays(distance, dailyAvgKm float64) int {
	pace := dailyAvgKm
	if pace <= 0 {
		pace = fallbackDailyKm
	}
	days := int(math.Ceil(distance / pace))
	if days < 1 {
		return 1
	}
	return days
}

// NewRequest builds a request with the derived trip duration.
func NewRequest(destination string, start time.Time, distance, dailyAvgKm, currentOdometer float64, tasks []Task) Request {
	if tasks == nil {
		tasks = []Task{}
	}
	return Request{
		Destination:      destination,
		StartDate:        start.Format(DateLayout),
		Distance:         distance,
		DurationDays:     TripDurationDays(distance, dailyAvgKm),
		DailyAvgKm:       dailyAvgKm,
		CurrentOdometer:  currentOdometer,
		MaintenanceTasks: tasks,
	}
}

// TasksFromServices turns the latest interval of every part into a task.
func TasksFromServices(services []models.ServiceRecord) []Task {
	intervals := calc.LatestPartIntervals(services)
	tasks := make([]Task, 0, len(intervals))
	for _, pi := range intervals {
		odo := pi.LastOdometer
		t := Task{
			Name:                  pi.Name,
			IntervalType:          pi.Type,
			IntervalValue:         pi.Value,
			LastPerformedOdometer: &odo,
		}
		if !pi.LastDate.IsZero() {
			t.LastPerformedDate = pi.LastDate.Format(DateLayout)
		}
		tasks = append(tasks, t)
	}
	return tasks
}

// validateRequest checks the struct rules and the duration contract.
func validateRequest(req Request) error {
	if err := models.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if want := TripDurationDays(req.Distance, req.DailyAvgKm); req.DurationDays != want {
		return fmt.Errorf("%w: durationDays is %d, expected %d", ErrInvalidRequest, req.DurationDays, want)
	}
	return nil
}
