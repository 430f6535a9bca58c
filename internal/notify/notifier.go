// Package notify periodically checks every rider's maintenance reminders
// and publishes the due ones over MQTT.
package notify

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/metrics"
	"github.com/ridelog/ridelog/internal/models"
	log "github.com/sirupsen/logrus"
	"github.com/zoobzio/clockz"
)

// TopicFormat is the per-rider topic, filled with the rider id.
const TopicFormat = "ridelog/%s/reminders"

// RiderLister lists the riders to check.
type RiderLister interface {
	FindActiveRiders(ctx context.Context) ([]models.Rider, error)
}

// ReminderSource computes a rider's reminders.
type ReminderSource interface {
	Reminders(ctx context.Context, riderID string) ([]calc.Reminder, error)
}

// Message is the payload published for a rider.
type Message struct {
	RiderID     string          `json:"rider_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Due         []calc.Reminder `json:"due"`
}

// Notifier publishes due reminders. A rider's due set is only published
// again once it changes.
type Notifier struct {
	riders    RiderLister
	reminders ReminderSource
	publisher Publisher
	clock     clockz.Clock
	metrics   *metrics.Metrics

	mu   sync.Mutex
	sent map[string]string // rider id -> fingerprint of the last published set
}

// New creates a notifier. m may be nil.
func New(riders RiderLister, reminders ReminderSource, publisher Publisher, clock clockz.Clock, m *metrics.Metrics) *Notifier {
	if clock == nil {
		clock = clockz.RealClock
	}
	return &Notifier{
		riders:    riders,
		reminders: reminders,
		publisher: publisher,
		clock:     clock,
		metrics:   m,
		sent:      make(map[string]string),
	}
}

// Topic returns the reminder topic of a rider.
func Topic(riderID string) string {
	return fmt.Sprintf(TopicFormat, riderID)
}

// Run sweeps immediately and then every interval until ctx is done.
func (n *Notifier) Run(ctx context.Context, interval time.Duration) error {
	log.WithField("interval", interval).Info("Starting reminder notifier")
	for {
		if _, err := n.Sweep(ctx); err != nil {
			log.WithError(err).Error("Reminder sweep failed")
		}
		select {
		case <-ctx.Done():
			log.Info("Reminder notifier stopped")
			return ctx.Err()
		case <-n.clock.After(interval):
		}
	}
}

// Sweep checks every active rider once and returns how many messages were
// published. A failure for one rider is logged and does not stop the
// sweep; only failing to list riders is returned.
func (n *Notifier) Sweep(ctx context.Context) (int, error) {
	riders, err := n.riders.FindActiveRiders(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list riders: %w", err)
	}

	listed := make(map[string]struct{}, len(riders))
	published := 0
	dueBySource := map[calc.ReminderSource]int{calc.SourcePart: 0, calc.SourceManual: 0}
	for _, rider := range riders {
		if ctx.Err() != nil {
			return published, ctx.Err()
		}
		riderID := rider.ID.Hex()
		listed[riderID] = struct{}{}
		due, err := n.dueReminders(ctx, riderID)
		if err != nil {
			log.WithError(err).WithField("rider_id", riderID).Warn("Failed to compute reminders")
			continue
		}
		for _, r := range due {
			dueBySource[r.Source]++
		}

		ok, err := n.publish(ctx, riderID, due)
		if err != nil {
			log.WithError(err).WithField("rider_id", riderID).Warn("Failed to publish reminders")
			continue
		}
		if ok {
			published++
		}
	}

	n.forgetUnlisted(listed)

	for source, count := range dueBySource {
		n.metrics.RemindersDue(string(source), count)
	}
	log.WithFields(log.Fields{
		"riders":    len(riders),
		"published": published,
	}).Info("Reminder sweep complete")
	return published, nil
}

// forgetUnlisted drops the last published set of riders that are no longer
// active. A rider who comes back is treated as never seen.
func (n *Notifier) forgetUnlisted(listed map[string]struct{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for riderID := range n.sent {
		if _, ok := listed[riderID]; !ok {
			delete(n.sent, riderID)
		}
	}
}

func (n *Notifier) dueReminders(ctx context.Context, riderID string) ([]calc.Reminder, error) {
	reminders, err := n.reminders.Reminders(ctx, riderID)
	if err != nil {
		return nil, err
	}
	due := []calc.Reminder{}
	for _, r := range reminders {
		if r.IsDue {
			due = append(due, r)
		}
	}
	return due, nil
}

// publish sends the rider's due set unless it matches the last one sent.
// A rider whose reminders were all cleared gets one empty message so the
// retained state is reset.
func (n *Notifier) publish(ctx context.Context, riderID string, due []calc.Reminder) (bool, error) {
	fp := fingerprint(due)

	n.mu.Lock()
	last, seen := n.sent[riderID]
	n.mu.Unlock()
	if (seen && last == fp) || (!seen && len(due) == 0) {
		return false, nil
	}

	payload, err := json.Marshal(Message{
		RiderID:     riderID,
		GeneratedAt: n.clock.Now(),
		Due:         due,
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode reminders: %w", err)
	}

	err = n.publisher.Publish(ctx, Topic(riderID), payload)
	n.metrics.ReminderPublished(err)
	if err != nil {
		return false, err
	}

	n.mu.Lock()
	n.sent[riderID] = fp
	n.mu.Unlock()

	log.WithFields(log.Fields{
		"rider_id": riderID,
		"due":      len(due),
	}).Debug("Published reminders")
	return true, nil
}

// fingerprint identifies a due set by the source and name of its
// reminders, in any order. Progress changes within a set do not alter it.
func fingerprint(due []calc.Reminder) string {
	keys := make([]string, len(due))
	for i, r := range due {
		keys[i] = string(r.Source) + "|" + r.Name
	}
	sort.Strings(keys)
	sum := sha256.Sum256([]byte(strings.Join(keys, "\n")))
	return hex.EncodeToString(sum[:])
}
