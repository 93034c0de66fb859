package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/ghg_reports/config"
	"github.com/mmdatafocus/ghg_reports/models"
	"github.com/mmdatafocus/ghg_reports/storage"
	"github.com/mmdatafocus/ghg_reports/utils"
)

const saveTimeout = 10 * time.Second

// FormSession holds one user's state. Every edit goes through Dispatch, which
// reduces the action and restarts the save timer.
type FormSession struct {
	userId string
	store  storage.Store
	delay  time.Duration
	now    func() time.Time
	logger *logrus.Logger

	hydrateOnce sync.Once

	mu     sync.Mutex
	state  models.AppState
	timer  *time.Timer
	closed bool
}

func NewFormSession(userId string, store storage.Store, delay time.Duration, now func() time.Time) *FormSession {
	if now == nil {
		now = time.Now
	}
	return &FormSession{
		userId: userId,
		store:  store,
		delay:  delay,
		now:    now,
		logger: config.GetLogger(),
		state:  models.DefaultAppState(now()),
	}
}

func (s *FormSession) UserId() string { return s.userId }

// State returns the current snapshot.
func (s *FormSession) State() models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Hydrate loads the stored record once. Concurrent callers wait for that
// load, and only the caller that ran it sees its error. Cancelling ctx does
// not abort the load. A missing record is not an error. On any failure the
// current state is kept as it is.
func (s *FormSession) Hydrate(ctx context.Context) error {
	var err error
	s.hydrateOnce.Do(func() {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		err = s.load(loadCtx)
	})
	return err
}

func (s *FormSession) load(ctx context.Context) error {
	raw, err := s.store.Load(ctx, s.userId)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil
		}
		config.LogError(s.logger, "FormSession", "Hydrate", "load", s.userId, err)
		return err
	}
	loaded, err := models.DecodeState(raw, s.now())
	if err != nil {
		config.LogError(s.logger, "FormSession", "Hydrate", "decode", s.userId, err)
		return err
	}

	s.mu.Lock()
	s.state = loaded
	s.mu.Unlock()
	return nil
}

// Dispatch applies action and schedules a save. A rejected action changes
// nothing and schedules nothing.
func (s *FormSession) Dispatch(action models.Action) (models.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := models.Reduce(s.state, action)
	if err != nil {
		return s.state.Clone(), err
	}
	s.state = next
	s.scheduleLocked()
	return next.Clone(), nil
}

// Replace swaps in a whole state, as a client-side hydrate or import would.
func (s *FormSession) Replace(state models.AppState) error {
	if err := models.ValidateState(state); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.scheduleLocked()
	return nil
}

func (s *FormSession) scheduleLocked() {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flush)
}

func (s *FormSession) flush() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	snapshot := s.state
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.save(ctx, snapshot); err != nil {
		config.LogError(s.logger, "FormSession", "flush", "debounced save", s.userId, err)
	}
}

// SaveNow writes the current state immediately in place of any pending
// debounced save. If the write fails the debounced save is scheduled again.
func (s *FormSession) SaveNow(ctx context.Context) error {
	s.mu.Lock()
	pending := s.timer != nil && s.timer.Stop()
	s.timer = nil
	snapshot := s.state.Clone()
	s.mu.Unlock()

	err := s.save(ctx, snapshot)
	if err != nil && pending {
		s.mu.Lock()
		if s.timer == nil {
			s.scheduleLocked()
		}
		s.mu.Unlock()
	}
	return err
}

func (s *FormSession) save(ctx context.Context, state models.AppState) error {
	body, err := models.EncodeState(state)
	if err != nil {
		return err
	}
	record, err := storage.Stamp(body, s.now())
	if err != nil {
		return err
	}
	return s.store.Save(ctx, s.userId, record)
}

// Close drops any pending save without running it.
func (s *FormSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// SessionManager keeps one FormSession per user id.
type SessionManager struct {
	store storage.Store
	delay time.Duration
	now   func() time.Time

	mu       sync.Mutex
	sessions map[string]*FormSession
}

func NewSessionManager(store storage.Store, delay time.Duration) *SessionManager {
	return &SessionManager{
		store:    store,
		delay:    delay,
		now:      time.Now,
		sessions: make(map[string]*FormSession),
	}
}

// Session returns the user's session, creating and hydrating it on first use.
// A failed hydrate still returns the session with default state.
func (m *SessionManager) Session(ctx context.Context, userId string) (*FormSession, error) {
	if !utils.IsValidUserId(userId) {
		return nil, utils.ErrorInvalidUserId
	}
	m.mu.Lock()
	sess, ok := m.sessions[userId]
	if !ok {
		sess = NewFormSession(userId, m.store, m.delay, m.now)
		m.sessions[userId] = sess
	}
	m.mu.Unlock()

	_ = sess.Hydrate(ctx)
	return sess, nil
}

// Close ends every session; pending saves are dropped.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sess := range m.sessions {
		sess.Close()
		delete(m.sessions, id)
	}
}
