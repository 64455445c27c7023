// Package test provides in-memory doubles for the persistence and mail
// contracts so service and handler tests run without MySQL or SMTP.
package test

import (
	"sync"
	"time"

	"userhub/model"
)

// MemoryUserRepo is an in-memory UserRepository. Lookups return the stored
// pointers so tests can mutate role/permission state between calls.
type MemoryUserRepo struct {
	mu     sync.Mutex
	nextID uint64
	users  []*model.User

	// CreateErr, when set, is returned by CreateUser to simulate a
	// persistence failure.
	CreateErr error
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{}
}

func (r *MemoryUserRepo) id() uint64 {
	r.nextID++
	return r.nextID
}

func (r *MemoryUserRepo) CreateUser(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.CreateErr != nil {
		return r.CreateErr
	}
	user.ID = r.id()
	user.CreateTime = time.Now()
	r.users = append(r.users, user)
	return nil
}

func (r *MemoryUserRepo) FindByUsername(username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByUsernameAndAdmin(username string, isAdmin bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.IsAdmin == isAdmin {
			return u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) FindByIDAndAdmin(id uint64, isAdmin bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id && u.IsAdmin == isAdmin {
			return u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepo) SavePermissions(permissions []*model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range permissions {
		p.ID = r.id()
	}
	return nil
}

func (r *MemoryUserRepo) SaveRoles(roles []*model.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range roles {
		role.ID = r.id()
	}
	return nil
}

func (r *MemoryUserRepo) SaveUsers(users []*model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		u.ID = r.id()
		u.CreateTime = time.Now()
		r.users = append(r.users, u)
	}
	return nil
}

// SentMail captures one delivery made through the RecordingMailer.
type SentMail struct {
	To      string
	Subject string
	HTML    string
}

// RecordingMailer implements mail.Sender and records every delivery.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail

	// Err, when set, is returned by Send.
	Err error
}

func (m *RecordingMailer) Send(to, subject, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, HTML: html})
	return nil
}

// LastMail returns the most recent delivery, or nil when none was made.
func (m *RecordingMailer) LastMail() *SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return &m.Sent[len(m.Sent)-1]
}
