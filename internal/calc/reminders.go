package calc

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ridelog/ridelog/internal/models"
)

// ReminderSource tells where a reminder came from.
type ReminderSource string

const (
	SourcePart   ReminderSource = "part"
	SourceManual ReminderSource = "manual"
)

// DefaultReminderName is used for manual reminders without notes.
const DefaultReminderName = "General Service"

// Interval is the raw usage data behind a reminder. Used and Total are the
// two numbers shown in the label, in km or days depending on Type.
type Interval struct {
	Type             models.ReminderType `json:"type"`
	BaselineOdometer float64             `json:"baseline_odometer"`
	BaselineDate     time.Time           `json:"baseline_date"`
	Used             float64             `json:"used"`
	Total            float64             `json:"total"`
}

// Reminder is a derived, never persisted, maintenance status.
//
// RemainingDays is nil when it cannot be determined, which happens for
// distance based reminders while the daily average distance is unknown.
// EstimatedDueDate is nil in the same case.
type Reminder struct {
	Name             string         `json:"name"`
	Source           ReminderSource `json:"source"`
	Progress         float64        `json:"progress"`
	Label            string         `json:"label"`
	IsDue            bool           `json:"is_due"`
	RemainingDays    *int           `json:"remaining_days"`
	EstimatedDueDate *time.Time     `json:"estimated_due_date"`
	Interval         Interval       `json:"interval"`
}

// PartInterval is the active service interval of one part, taken from the
// latest service record that contains it.
type PartInterval struct {
	Name         string
	Type         models.ReminderType
	Value        float64
	LastOdometer float64
	LastDate     time.Time
}

// LatestPartIntervals folds the service history in date order so the most
// recent record carrying a part name sets that part's interval. Records on
// the same date keep their input order, so the later one wins. Parts
// without a usable interval are skipped. The result is ordered by first
// appearance.
func LatestPartIntervals(services []models.ServiceRecord) []PartInterval {
	sorted := make([]models.ServiceRecord, len(services))
	copy(sorted, services)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var order []string
	latest := make(map[string]PartInterval)
	for _, s := range sorted {
		for _, p := range s.Parts {
			if !p.HasReminder() {
				continue
			}
			if _, seen := latest[p.Name]; !seen {
				order = append(order, p.Name)
			}
			latest[p.Name] = PartInterval{
				Name:         p.Name,
				Type:         p.ReminderType,
				Value:        p.ReminderValue,
				LastOdometer: s.Odometer,
				LastDate:     s.Date,
			}
		}
	}

	out := make([]PartInterval, 0, len(order))
	for _, name := range order {
		out = append(out, latest[name])
	}
	return out
}

// ActiveReminders projects part intervals and open manual reminders against
// the current odometer and date.
func ActiveReminders(services []models.ServiceRecord, manual []models.ManualReminder, currentOdometer, dailyAvgKm float64, today time.Time) []Reminder {
	var reminders []Reminder

	for _, pi := range LatestPartIntervals(services) {
		switch pi.Type {
		case models.ReminderKm:
			reminders = append(reminders, kmPartReminder(pi, currentOdometer, dailyAvgKm, today))
		case models.ReminderDays:
			reminders = append(reminders, daysPartReminder(pi, today))
		}
	}

	baseOdo, baseDate := currentOdometer, today
	if last, ok := latestService(services); ok {
		baseOdo, baseDate = last.Odometer, last.Date
	}
	for _, m := range manual {
		if m.IsCompleted {
			continue
		}
		if r, ok := manualReminder(m, baseOdo, baseDate, currentOdometer, dailyAvgKm, today); ok {
			reminders = append(reminders, r)
		}
	}

	return reminders
}

func kmPartReminder(pi PartInterval, currentOdometer, dailyAvgKm float64, today time.Time) Reminder {
	used := currentOdometer - pi.LastOdometer
	isDue := used >= pi.Value

	r := Reminder{
		Name:     pi.Name,
		Source:   SourcePart,
		Progress: clamp(used/pi.Value*100, 0, 100),
		Label:    kmLabel(used, pi.Value),
		IsDue:    isDue,
		Interval: Interval{
			Type:             models.ReminderKm,
			BaselineOdometer: pi.LastOdometer,
			BaselineDate:     pi.LastDate,
			Used:             used,
			Total:            pi.Value,
		},
	}
	r.RemainingDays, r.EstimatedDueDate = daysForDistance(isDue, pi.Value-used, dailyAvgKm, today)
	return r
}

func daysPartReminder(pi PartInterval, today time.Time) Reminder {
	used := float64(DaysBetween(today, pi.LastDate))
	isDue := used >= pi.Value

	remaining := 0
	if !isDue {
		remaining = int(math.Ceil(pi.Value - used))
	}

	return Reminder{
		Name:             pi.Name,
		Source:           SourcePart,
		Progress:         clamp(used/pi.Value*100, 0, 100),
		Label:            daysLabel(used, pi.Value),
		IsDue:            isDue,
		RemainingDays:    intPtr(remaining),
		EstimatedDueDate: timePtr(AddDays(pi.LastDate, pi.Value)),
		Interval: Interval{
			Type:             models.ReminderDays,
			BaselineOdometer: pi.LastOdometer,
			BaselineDate:     pi.LastDate,
			Used:             used,
			Total:            pi.Value,
		},
	}
}

// manualReminder builds the date and odometer projections of a manual
// reminder and keeps whichever triggers first. Ties go to the date.
func manualReminder(m models.ManualReminder, baseOdo float64, baseDate time.Time, currentOdometer, dailyAvgKm float64, today time.Time) (Reminder, bool) {
	name := m.Notes
	if name == "" {
		name = DefaultReminderName
	}

	var byDate, byOdo *Reminder

	if m.HasDueDate() {
		due := *m.DueDate
		total := float64(DaysBetween(due, baseDate))
		used := float64(DaysBetween(today, baseDate))
		progress := 0.0
		if total > 0 {
			progress = used / total * 100
		}
		remaining := DaysBetween(due, today)
		if remaining < 0 {
			remaining = 0
		}
		byDate = &Reminder{
			Name:             name,
			Source:           SourceManual,
			Progress:         clamp(progress, 0, 100),
			Label:            daysLabel(used, total),
			IsDue:            !today.Before(due),
			RemainingDays:    intPtr(remaining),
			EstimatedDueDate: timePtr(due),
			Interval: Interval{
				Type:             models.ReminderDays,
				BaselineOdometer: baseOdo,
				BaselineDate:     baseDate,
				Used:             used,
				Total:            total,
			},
		}
	}

	if m.HasDueOdometer() {
		due := *m.DueOdometer
		total := due - baseOdo
		used := currentOdometer - baseOdo
		progress := 0.0
		if total > 0 {
			progress = used / total * 100
		}
		isDue := currentOdometer >= due
		r := Reminder{
			Name:     name,
			Source:   SourceManual,
			Progress: clamp(progress, 0, 100),
			Label:    kmLabel(used, total),
			IsDue:    isDue,
			Interval: Interval{
				Type:             models.ReminderKm,
				BaselineOdometer: baseOdo,
				BaselineDate:     baseDate,
				Used:             used,
				Total:            total,
			},
		}
		r.RemainingDays, r.EstimatedDueDate = daysForDistance(isDue, due-currentOdometer, dailyAvgKm, today)
		byOdo = &r
	}

	switch {
	case byDate != nil && byOdo != nil:
		if compareRemaining(byDate.RemainingDays, byOdo.RemainingDays) <= 0 {
			return *byDate, true
		}
		return *byOdo, true
	case byDate != nil:
		return *byDate, true
	case byOdo != nil:
		return *byOdo, true
	default:
		return Reminder{}, false
	}
}

// daysForDistance converts a remaining distance into days at the daily
// average. The result is nil when the average is unknown and the reminder
// is not yet due.
func daysForDistance(isDue bool, remainingKm, dailyAvgKm float64, today time.Time) (*int, *time.Time) {
	if isDue {
		return intPtr(0), timePtr(today)
	}
	if dailyAvgKm <= 0 {
		return nil, nil
	}
	days := int(math.Ceil(remainingKm / dailyAvgKm))
	if days < 0 {
		days = 0
	}
	return intPtr(days), timePtr(AddDays(today, float64(days)))
}

// compareRemaining orders remaining-day values with unknown after every
// known value and equal to another unknown.
func compareRemaining(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	default:
		return 0
	}
}

func latestService(services []models.ServiceRecord) (models.ServiceRecord, bool) {
	if len(services) == 0 {
		return models.ServiceRecord{}, false
	}
	latest := services[0]
	for _, s := range services[1:] {
		if !s.Date.Before(latest.Date) {
			latest = s
		}
	}
	return latest, true
}

func kmLabel(used, total float64) string {
	return fmt.Sprintf("%s / %s KM", groupNumber(used), groupNumber(total))
}

func daysLabel(used, total float64) string {
	return fmt.Sprintf("%s / %s Days", groupNumber(used), groupNumber(total))
}
