package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ridelog/ridelog/internal/calc"
	"github.com/ridelog/ridelog/internal/metrics"
	"github.com/ridelog/ridelog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeRiders struct {
	riders []models.Rider
	err    error
	calls  chan struct{}
}

func (f *fakeRiders) FindActiveRiders(context.Context) ([]models.Rider, error) {
	if f.calls != nil {
		f.calls <- struct{}{}
	}
	return f.riders, f.err
}

type fakeReminders struct {
	mu        sync.Mutex
	reminders map[string][]calc.Reminder
	errs      map[string]error
}

func (f *fakeReminders) set(riderID string, reminders ...calc.Reminder) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminders[riderID] = reminders
}

func (f *fakeReminders) Reminders(_ context.Context, riderID string) ([]calc.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[riderID]; err != nil {
		return nil, err
	}
	return f.reminders[riderID], nil
}

type published struct {
	topic   string
	payload []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic: topic, payload: payload})
	return nil
}

func (f *fakePublisher) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

func due(name string) calc.Reminder {
	zero := 0
	return calc.Reminder{Name: name, Source: calc.SourcePart, IsDue: true, Progress: 100, RemainingDays: &zero}
}

func notDue(name string) calc.Reminder {
	days := 40
	return calc.Reminder{Name: name, Source: calc.SourcePart, Progress: 30, RemainingDays: &days}
}

func setup(riders ...models.Rider) (*fakeRiders, *fakeReminders, *fakePublisher) {
	return &fakeRiders{riders: riders},
		&fakeReminders{reminders: map[string][]calc.Reminder{}, errs: map[string]error{}},
		&fakePublisher{}
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "ridelog/abc123/reminders", Topic("abc123"))
}

func TestNotifier_Sweep_PublishesDueOnly(t *testing.T) {
	a := models.Rider{ID: primitive.NewObjectID()}
	b := models.Rider{ID: primitive.NewObjectID()}
	riders, reminders, publisher := setup(a, b)
	reminders.set(a.ID.Hex(), due("Engine Oil"), notDue("Chain"))
	reminders.set(b.ID.Hex(), notDue("Air Filter"))
	clock := clockz.NewFakeClock()

	n := New(riders, reminders, publisher, clock, metrics.New())
	count, err := n.Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	msgs := publisher.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Topic(a.ID.Hex()), msgs[0].topic)

	var msg Message
	require.NoError(t, json.Unmarshal(msgs[0].payload, &msg))
	assert.Equal(t, a.ID.Hex(), msg.RiderID)
	assert.True(t, msg.GeneratedAt.Equal(clock.Now()))
	require.Len(t, msg.Due, 1)
	assert.Equal(t, "Engine Oil", msg.Due[0].Name)
}

func TestNotifier_Sweep_OnlyRepublishesChanges(t *testing.T) {
	a := models.Rider{ID: primitive.NewObjectID()}
	riders, reminders, publisher := setup(a)
	n := New(riders, reminders, publisher, clockz.NewFakeClock(), nil)
	ctx := context.Background()
	id := a.ID.Hex()

	steps := []struct {
		name      string
		reminders []calc.Reminder
		want      int
	}{
		{"first due set", []calc.Reminder{due("Engine Oil")}, 1},
		{"same set", []calc.Reminder{due("Engine Oil")}, 0},
		{"set grows", []calc.Reminder{due("Engine Oil"), due("Brake Pads")}, 1},
		{"same set reordered", []calc.Reminder{due("Brake Pads"), due("Engine Oil")}, 0},
		{"all serviced clears once", []calc.Reminder{notDue("Engine Oil")}, 1},
		{"still clear", nil, 0},
	}

	for _, step := range steps {
		reminders.set(id, step.reminders...)
		count, err := n.Sweep(ctx)
		require.NoError(t, err, step.name)
		assert.Equal(t, step.want, count, step.name)
	}

	msgs := publisher.messages()
	require.Len(t, msgs, 3)
	var last Message
	require.NoError(t, json.Unmarshal(msgs[2].payload, &last))
	assert.NotNil(t, last.Due)
	assert.Empty(t, last.Due)
}

func TestNotifier_Sweep_ContinuesPastRiderFailures(t *testing.T) {
	a := models.Rider{ID: primitive.NewObjectID()}
	b := models.Rider{ID: primitive.NewObjectID()}
	riders, reminders, publisher := setup(a, b)
	reminders.errs[a.ID.Hex()] = errors.New("store unavailable")
	reminders.set(b.ID.Hex(), due("Engine Oil"))

	count, err := New(riders, reminders, publisher, clockz.NewFakeClock(), nil).Sweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifier_Sweep_RetriesAfterPublishFailure(t *testing.T) {
	a := models.Rider{ID: primitive.NewObjectID()}
	riders, reminders, publisher := setup(a)
	reminders.set(a.ID.Hex(), due("Engine Oil"))
	publisher.err = errors.New("not connected")
	n := New(riders, reminders, publisher, clockz.NewFakeClock(), metrics.New())

	count, err := n.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	publisher.err = nil
	count, err = n.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifier_Sweep_ForgetsRidersNoLongerListed(t *testing.T) {
	a := models.Rider{ID: primitive.NewObjectID()}
	b := models.Rider{ID: primitive.NewObjectID()}
	riders, reminders, publisher := setup(a, b)
	reminders.set(a.ID.Hex(), due("Engine Oil"))
	reminders.set(b.ID.Hex(), due("Chain"))
	n := New(riders, reminders, publisher, clockz.NewFakeClock(), nil)
	ctx := context.Background()

	count, err := n.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// b is still listed while its reminders fail, so it is remembered
	riders.riders = []models.Rider{b}
	reminders.errs[b.ID.Hex()] = errors.New("store unavailable")
	_, err = n.Sweep(ctx)
	require.NoError(t, err)
	assert.NotContains(t, n.sent, a.ID.Hex())
	assert.Contains(t, n.sent, b.ID.Hex())

	delete(reminders.errs, b.ID.Hex())
	riders.riders = []models.Rider{a, b}
	count, err = n.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	msgs := publisher.messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Topic(a.ID.Hex()), msgs[2].topic)
}

func TestNotifier_Sweep_ListFailure(t *testing.T) {
	riders, reminders, publisher := setup()
	riders.err = errors.New("connection refused")

	_, err := New(riders, reminders, publisher, clockz.NewFakeClock(), nil).Sweep(context.Background())

	assert.ErrorIs(t, err, riders.err)
}

func TestNotifier_Run_SweepsEachInterval(t *testing.T) {
	riders, reminders, publisher := setup()
	riders.calls = make(chan struct{}, 10)
	clock := clockz.NewFakeClock()
	n := New(riders, reminders, publisher, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx, time.Hour) }()

	waitForSweep := func() {
		t.Helper()
		select {
		case <-riders.calls:
		case <-time.After(time.Second):
			t.Fatal("sweep did not run")
		}
	}

	waitForSweep()
	time.Sleep(10 * time.Millisecond) // let Run reach the timer
	clock.Advance(time.Hour)
	clock.BlockUntilReady()
	waitForSweep()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop")
	}
}

func TestFingerprint(t *testing.T) {
	manual := calc.Reminder{Name: "Engine Oil", Source: calc.SourceManual, IsDue: true}

	assert.Equal(t, fingerprint([]calc.Reminder{due("A"), due("B")}), fingerprint([]calc.Reminder{due("B"), due("A")}))
	assert.NotEqual(t, fingerprint([]calc.Reminder{due("Engine Oil")}), fingerprint([]calc.Reminder{manual}))
	assert.NotEqual(t, fingerprint(nil), fingerprint([]calc.Reminder{due("A")}))
}
