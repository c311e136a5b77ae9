package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/taskpad/pkg/types"
)

var day0 = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// memPersistence keeps collections in memory and counts saves.
type memPersistence struct {
	mu      sync.Mutex
	data    map[string][]json.RawMessage
	saves   map[string]int
	saveErr error
	loadErr error
}

func newMemPersistence() *memPersistence {
	return &memPersistence{
		data:  make(map[string][]json.RawMessage),
		saves: make(map[string]int),
	}
}

func (m *memPersistence) Load(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]json.RawMessage{}, m.data[collection]...), nil
}

func (m *memPersistence) Save(_ context.Context, collection string, records []json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[collection]++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[collection] = append([]json.RawMessage{}, records...)
	return nil
}

func (m *memPersistence) records(collection string) []json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[collection]
}

func (m *memPersistence) saveCount(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves[collection]
}

// scheduledReminder is one live reminder held by fakeNotifier.
type scheduledReminder struct {
	ownerKey string
	title    string
	body     string
	at       time.Time
}

// fakeNotifier records schedule and cancel calls.
type fakeNotifier struct {
	mu          sync.Mutex
	denied      bool
	scheduleErr error
	cancelErr   error
	seq         int
	live        map[string]scheduledReminder
	cancelled   []string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{live: make(map[string]scheduledReminder)}
}

func (n *fakeNotifier) RequestPermission(context.Context) bool {
	return !n.denied
}

func (n *fakeNotifier) Schedule(_ context.Context, ownerKey, title, body string, at time.Time) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.scheduleErr != nil {
		return "", n.scheduleErr
	}
	n.seq++
	h := fmt.Sprintf("handle-%d", n.seq)
	n.live[h] = scheduledReminder{ownerKey: ownerKey, title: title, body: body, at: at}
	return h, nil
}

func (n *fakeNotifier) Cancel(_ context.Context, handle string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, handle)
	delete(n.live, handle)
	return n.cancelErr
}

func (n *fakeNotifier) liveFor(ownerKey string) []scheduledReminder {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []scheduledReminder
	for _, r := range n.live {
		if r.ownerKey == ownerKey {
			out = append(out, r)
		}
	}
	return out
}

// fakeGenerator returns canned subtasks.
type fakeGenerator struct {
	steps     []string
	err       error
	gotTitle  string
	gotCount  int
	callCount int
}

func (g *fakeGenerator) GenerateSubtasks(_ context.Context, title string, count int) ([]string, error) {
	g.callCount++
	g.gotTitle = title
	g.gotCount = count
	return g.steps, g.err
}

// testEnv bundles a store with its fakes.
type testEnv struct {
	store    *Store
	persist  *memPersistence
	notifier *fakeNotifier
	clock    *fakeClock
	hook     *test.Hook
}

type envOption func(*Options)

func withEnforceEnd(on bool) envOption {
	return func(o *Options) { o.EnforceRecurrenceEnd = on }
}

func withLocation(loc *time.Location) envOption {
	return func(o *Options) { o.Location = loc }
}

func withSyncStrategy(s string) envOption {
	return func(o *Options) { o.SyncStrategy = s }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	return newTestEnvWith(t, newMemPersistence(), opts...)
}

func newTestEnvWith(t *testing.T, persist *memPersistence, opts ...envOption) *testEnv {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	env := &testEnv{
		persist:  persist,
		notifier: newFakeNotifier(),
		clock:    &fakeClock{now: day0},
		hook:     hook,
	}
	o := Options{
		Persistence:          persist,
		Notifier:             env.notifier,
		Logger:               logger,
		Clock:                env.clock.Now,
		Location:             time.UTC,
		EnforceRecurrenceEnd: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	env.store = New(o)
	require.NoError(t, env.store.Open(context.Background()))
	t.Cleanup(func() { _ = env.store.Close(context.Background()) })
	return env
}

// mustAdd creates a task or fails the test.
func (e *testEnv) mustAdd(t *testing.T, in types.TaskInput) types.Task {
	t.Helper()
	task, err := e.store.AddTask(context.Background(), in)
	require.NoError(t, err)
	return task
}

// mustTask returns the stored task or fails the test.
func (e *testEnv) mustTask(t *testing.T, id string) types.Task {
	t.Helper()
	task, ok := e.store.Task(id)
	require.True(t, ok, "task %s not found", id)
	return task
}

// priorityNamed returns the stored priority with the given name.
func (e *testEnv) priorityNamed(t *testing.T, name string) types.Priority {
	t.Helper()
	for _, p := range e.store.Priorities() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("priority %q not found", name)
	return types.Priority{}
}

// hasEntry reports whether the hook captured a message at the given level.
func hasEntry(hook *test.Hook, level log.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

func ptr[T any](v T) *T { return &v }

func newNullLogger() (*log.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	return logger, hook
}
