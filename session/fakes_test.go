package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yhkl-dev/zencli/audio"
	"github.com/yhkl-dev/zencli/domain"
)

type fakeHandle struct {
	id      int
	locator string
}

func (h *fakeHandle) Locator() string { return h.locator }

// fakeAudio records calls and tracks which handles are alive
type fakeAudio struct {
	mu           sync.Mutex
	seq          int
	live         map[*fakeHandle]bool
	maxLive      int
	loads        map[string]int
	calls        []string
	gates        map[string]chan struct{}
	failures     map[string]error
	ignoreCancel bool
	unloadErr    error
}

func newFakeAudio() *fakeAudio {
	return &fakeAudio{
		live:     make(map[*fakeHandle]bool),
		loads:    make(map[string]int),
		gates:    make(map[string]chan struct{}),
		failures: make(map[string]error),
	}
}

// block makes Load(locator) wait until the returned func is called
func (f *fakeAudio) block(locator string) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[locator] = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

func (f *fakeAudio) fail(locator string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[locator] = err
}

func (f *fakeAudio) record(call string, h audio.Handle) {
	f.calls = append(f.calls, fmt.Sprintf("%s:%s", call, h.Locator()))
}

func (f *fakeAudio) Load(ctx context.Context, locator string) (audio.Handle, error) {
	f.mu.Lock()
	f.loads[locator]++
	gate := f.gates[locator]
	failure := f.failures[locator]
	ignore := f.ignoreCancel
	f.mu.Unlock()

	if gate != nil {
		if ignore {
			<-gate
		} else {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if failure != nil {
		return nil, failure
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	h := &fakeHandle{id: f.seq, locator: locator}
	f.live[h] = true
	if len(f.live) > f.maxLive {
		f.maxLive = len(f.live)
	}
	f.record("load", h)
	return h, nil
}

func (f *fakeAudio) op(name string, h audio.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, ok := h.(*fakeHandle)
	if !ok || !f.live[fh] {
		return audio.ErrStaleHandle
	}
	f.record(name, h)
	return nil
}

func (f *fakeAudio) Play(_ context.Context, h audio.Handle) error  { return f.op("play", h) }
func (f *fakeAudio) Pause(_ context.Context, h audio.Handle) error { return f.op("pause", h) }
func (f *fakeAudio) Stop(_ context.Context, h audio.Handle) error  { return f.op("stop", h) }
func (f *fakeAudio) SeekToStart(_ context.Context, h audio.Handle) error {
	return f.op("seek", h)
}

func (f *fakeAudio) Unload(_ context.Context, h audio.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fh, ok := h.(*fakeHandle)
	if !ok || !f.live[fh] {
		return audio.ErrStaleHandle
	}
	delete(f.live, fh)
	f.record("unload", h)
	return f.unloadErr
}

func (f *fakeAudio) Close() error { return nil }

func (f *fakeAudio) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeAudio) liveLocators() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for h := range f.live {
		out = append(out, h.locator)
	}
	return out
}

func (f *fakeAudio) callCount(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) > len(call) && c[:len(call)+1] == call+":" {
			n++
		}
	}
	return n
}

func (f *fakeAudio) loadCount(locator string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[locator]
}

func (f *fakeAudio) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLive
}

// fakeClock hands out tickers whose channels the test drives by hand
type fakeClock struct {
	mu        sync.Mutex
	tickers   []*fakeTicker
	intervals []time.Duration
}

type fakeTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intervals = append(c.intervals, d)
	t := &fakeTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) requested() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.intervals...)
}

func (c *fakeClock) active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.tickers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

// tick delivers one tick to the newest ticker. It reports false when the
// controller did not take it, i.e. the countdown is not running.
func (c *fakeClock) tick() bool {
	c.mu.Lock()
	if len(c.tickers) == 0 {
		c.mu.Unlock()
		return false
	}
	t := c.tickers[len(c.tickers)-1]
	c.mu.Unlock()

	select {
	case t.ch <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

// recorder collects notifications
type recorder struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) count(kind NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notes[len(r.notes)-1]
}

type staticCatalog []domain.Track

func (s staticCatalog) Tracks() []domain.Track { return s }
func (s staticCatalog) Default() (domain.Track, bool) {
	if len(s) == 0 {
		return domain.Track{}, false
	}
	return s[0], true
}
func (s staticCatalog) Find(id string) (domain.Track, bool) {
	for _, t := range s {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Track{}, false
}
func (s staticCatalog) Search(string) []domain.Track { return s }

var (
	trackA = domain.Track{ID: "a", Name: "Waves", Locator: "a.mp3", DurationSeconds: 5}
	trackB = domain.Track{ID: "b", Name: "Bell", Locator: "b.mp3", DurationSeconds: 10}
)

type harness struct {
	t     *testing.T
	ctrl  *Controller
	audio *fakeAudio
	clock *fakeClock
	notes *recorder
}

func newHarness(t *testing.T, cat staticCatalog, setup ...func(*fakeAudio)) *harness {
	t.Helper()
	h := &harness{t: t, audio: newFakeAudio(), clock: &fakeClock{}, notes: &recorder{}}
	for _, fn := range setup {
		fn(h.audio)
	}

	opts := Options{
		Audio:           h.audio,
		Notifier:        h.notes,
		Clock:           h.clock,
		TeardownTimeout: time.Second,
		LoadTimeout:     5 * time.Second,
	}
	if cat != nil {
		opts.Catalog = cat
	}

	ctrl, err := NewController(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewController() error = %v", err)
	}
	h.ctrl = ctrl
	t.Cleanup(func() { ctrl.Close() })
	return h
}

func (h *harness) snap() Snapshot {
	h.t.Helper()
	s, err := h.ctrl.Snapshot(context.Background())
	if err != nil {
		h.t.Fatalf("Snapshot() error = %v", err)
	}
	return s
}

// waitState polls until the controller reaches want
func (h *harness) waitState(want State) Snapshot {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := h.snap()
		if s.State == want {
			return s
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("state = %v, want %v", s.State, want)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) waitFor(what string, cond func() bool) {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			h.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (h *harness) must(err error) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("unexpected error: %v", err)
	}
}

var errBroken = errors.New("broken file")
