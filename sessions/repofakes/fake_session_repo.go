package repofakes

import (
	"errors"
	"sync"

	"github.com/jrsteele09/smartrent-bridge/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo keeps the session in memory and counts calls. Setting LoadErr
// or SaveErr makes the matching operation fail.
type FakeSessionRepo struct {
	lock    sync.Mutex
	session *sessions.Session

	LoadErr error
	SaveErr error

	LoadCalls  int
	SaveCalls  int
	ClearCalls int
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

// NewFakeSessionRepoWith returns a repo pre-populated with session. Unlike the
// file store it accepts partial sessions, which lets tests model legacy records.
func NewFakeSessionRepoWith(session sessions.Session) *FakeSessionRepo {
	return &FakeSessionRepo{session: &session}
}

func (r *FakeSessionRepo) Load() (*sessions.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.LoadCalls++
	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	if r.session == nil {
		return nil, nil
	}
	s := *r.session
	return &s, nil
}

func (r *FakeSessionRepo) Save(session sessions.Session) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.SaveCalls++
	if r.SaveErr != nil {
		return r.SaveErr
	}
	if err := session.Validate(); err != nil {
		return err
	}
	r.session = &session
	return nil
}

func (r *FakeSessionRepo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ClearCalls++
	r.session = nil
	return nil
}

func (r *FakeSessionRepo) Exists() (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.session != nil, nil
}

// Stored returns the currently stored session.
func (r *FakeSessionRepo) Stored() (sessions.Session, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.session == nil {
		return sessions.Session{}, errors.New("not found")
	}
	return *r.session, nil
}
