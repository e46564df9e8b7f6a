package service

import (
	"strings"
	"sync"
	"time"
)

const (
	minReadingPause = 5 * time.Second
	maxReadingPause = 60 * time.Second
	wordsPerSecond  = 3
)

// ReadingPause 依上一段發言的字數決定閱讀時間，每 3 個字 1 秒，限制在 5 到 60 秒
func ReadingPause(lastArgument string) time.Duration {
	words := len(strings.Fields(lastArgument))
	secs := (words + wordsPerSecond - 1) / wordsPerSecond
	d := time.Duration(secs) * time.Second
	if d < minReadingPause {
		return minReadingPause
	}
	if d > maxReadingPause {
		return maxReadingPause
	}
	return d
}

// Task 已排程的延遲工作
type Task interface {
	Stop() bool
}

// AfterFunc 延遲執行 f，預設為 time.AfterFunc，測試時換成假的排程器
type AfterFunc func(d time.Duration, f func()) Task

func realAfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// session 單一房間的執行環境
// 所有會改變房間狀態的操作都要先拿到 mu；
// pending 是目前唯一有效的延遲工作，gen 用來讓已被取代的工作失效
type session struct {
	mu      sync.Mutex
	pending Task
	gen     uint64
}

// cancel 取消尚未執行的延遲工作，呼叫者必須持有 mu
func (s *session) cancel() {
	s.gen++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

// schedule 取代目前的延遲工作，呼叫者必須持有 mu
// fire 執行時會持有 mu，且只有在沒有被取代的情況下才會被呼叫
func (s *session) schedule(after AfterFunc, d time.Duration, fire func()) {
	s.cancel()
	gen := s.gen
	s.pending = after(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return
		}
		s.pending = nil
		fire()
	})
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[uint]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[uint]*session)}
}

func (r *sessionRegistry) get(roomID uint) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[roomID]
	if !ok {
		s = &session{}
		r.sessions[roomID] = s
	}
	return s
}

// stopAll 關機時取消所有延遲工作
func (r *sessionRegistry) stopAll() {
	r.mu.Lock()
	all := make([]*session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.mu.Lock()
		s.cancel()
		s.mu.Unlock()
	}
}
