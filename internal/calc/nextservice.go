package calc

import (
	"sort"
	"time"
)

// NextServiceInfo summarises the next workshop visit.
type NextServiceInfo struct {
	LastServiceDate   *time.Time `json:"last_service_date"`
	NextServiceDate   *time.Time `json:"next_service_date"`
	DaysToNextService *int       `json:"days_to_next_service"`
	Tasks             []string   `json:"tasks"`
	Progress          float64    `json:"progress"`
}

// HasUpcoming reports whether any service is pending.
func (n NextServiceInfo) HasUpcoming() bool {
	return len(n.Tasks) > 0
}

// NextService picks the most urgent reminder and bundles every reminder due
// no later than it into one visit. With no reminders it returns the
// "nothing due" state: no next date and no tasks.
func NextService(reminders []Reminder, lastServiceDate *time.Time) NextServiceInfo {
	if len(reminders) == 0 {
		return NextServiceInfo{
			LastServiceDate: lastServiceDate,
			Tasks:           []string{},
		}
	}

	sorted := ByUrgency(reminders)
	next := sorted[0]
	tasks := make([]string, 0, len(sorted))
	for _, r := range sorted {
		if compareRemaining(r.RemainingDays, next.RemainingDays) <= 0 {
			tasks = append(tasks, r.Name)
		}
	}

	return NextServiceInfo{
		LastServiceDate:   lastServiceDate,
		NextServiceDate:   next.EstimatedDueDate,
		DaysToNextService: next.RemainingDays,
		Tasks:             tasks,
		Progress:          clamp(next.Progress, 0, 100),
	}
}

// ByUrgency returns a copy of reminders ordered by remaining days, with
// reminders of unknown remaining days last. Equal entries keep their order.
func ByUrgency(reminders []Reminder) []Reminder {
	sorted := make([]Reminder, len(reminders))
	copy(sorted, reminders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareRemaining(sorted[i].RemainingDays, sorted[j].RemainingDays) < 0
	})
	return sorted
}
