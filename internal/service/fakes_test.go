package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"debate_arena/internal/models"
)

type recordedEvent struct {
	code   string
	except string
	ev     Event
}

// recorder 記錄所有推送的事件
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) BroadcastToRoom(code string, ev Event) {
	r.BroadcastToRoomExcept(code, ev, "")
}

func (r *recorder) BroadcastToRoomExcept(code string, ev Event, except string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{code: code, except: except, ev: ev})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.ev.Type)
	}
	return out
}

func (r *recorder) ofType(typ string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.ev.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// fakeClock 手動推進的時間
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeTask struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTask) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler 只記錄延遲工作，由測試決定何時觸發
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

func (s *fakeScheduler) after(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTask{d: d, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *fakeScheduler) last() *fakeTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tasks) == 0 {
		return nil
	}
	return s.tasks[len(s.tasks)-1]
}

// fire 模擬計時器到期；即使已被 Stop 也照樣呼叫，用來驗證過期的工作不會生效
func (s *fakeScheduler) fire(t *fakeTask) {
	s.mu.Lock()
	t.fired = true
	s.mu.Unlock()
	t.f()
}

func (s *fakeScheduler) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type enqueued struct {
	roomID uint
	manual bool
}

// fakeJudgeQueue 只記錄排入的判決
type fakeJudgeQueue struct {
	mu   sync.Mutex
	jobs []enqueued
	err  error
}

func (q *fakeJudgeQueue) Enqueue(room *models.Room, manual bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, enqueued{roomID: room.ID, manual: manual})
	return nil
}

func (q *fakeJudgeQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// scriptedReasoner 依序回傳預先寫好的回應
type scriptedReasoner struct {
	mu        sync.Mutex
	responses []string
	failAt    int // 第幾次呼叫失敗，0 表示不失敗
	prompts   []string
}

var errUpstream = errors.New("upstream unavailable")

func (r *scriptedReasoner) Generate(_ context.Context, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	n := len(r.prompts)
	if r.failAt == n {
		return "", errUpstream
	}
	if n > len(r.responses) {
		return "", errors.New("unexpected call")
	}
	return r.responses[n-1], nil
}

func (r *scriptedReasoner) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prompts)
}
