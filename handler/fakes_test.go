package handler

import (
	"context"
	"sync"
	"time"

	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories backing the HTTP tests. They mirror the storage
// contracts closely enough to drive full request flows without a database.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*structs.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*structs.User)}
}

func (m *memUserRepo) Create(_ context.Context, user *structs.User) (*structs.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return nil, repository.ErrDuplicateEmail
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	m.users[user.Email] = user
	return user, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*structs.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*structs.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*structs.Session)}
}

func (m *memSessionRepo) Create(_ context.Context, session *structs.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = primitive.NewObjectID()
	m.sessions[session.SessionID] = session
	return nil
}

func (m *memSessionRepo) FindBySessionID(_ context.Context, sessionID string) (*structs.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (m *memSessionRepo) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sessionID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// memInfoRepo signals the created channel on every audit write so tests can
// wait for the asynchronous records.
type memInfoRepo struct {
	mu      sync.Mutex
	infos   map[string]*structs.SessionInfo
	created chan string
}

func newMemInfoRepo() *memInfoRepo {
	return &memInfoRepo{
		infos:   make(map[string]*structs.SessionInfo),
		created: make(chan string, 16),
	}
}

func (m *memInfoRepo) Create(_ context.Context, info *structs.SessionInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info.ID = primitive.NewObjectID()
	m.infos[info.SessionID] = info
	m.created <- info.SessionID
	return nil
}

func (m *memInfoRepo) Touch(_ context.Context, sessionID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.infos[sessionID]
	if !ok || !info.IsActive {
		return repository.ErrSessionNotFound
	}
	info.UpdatedAt = now
	return nil
}

func (m *memInfoRepo) Deactivate(_ context.Context, sessionID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.infos[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	info.IsActive = false
	info.UpdatedAt = now
	return nil
}

func (m *memInfoRepo) ListActive(_ context.Context) ([]*structs.SessionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := make([]*structs.SessionInfo, 0)
	for _, info := range m.infos {
		if info.IsActive {
			active = append(active, info)
		}
	}
	return active, nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*structs.AuthToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{tokens: make(map[string]*structs.AuthToken)}
}

func (m *memTokenRepo) Create(_ context.Context, token *structs.AuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token.ID = primitive.NewObjectID()
	m.tokens[token.Token] = token
	return nil
}

func (m *memTokenRepo) FindActive(_ context.Context, token string) (*structs.AuthToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.tokens[token]
	if !ok || !doc.IsActive {
		return nil, repository.ErrTokenNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *memTokenRepo) byID(id primitive.ObjectID) *structs.AuthToken {
	for _, doc := range m.tokens {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func (m *memTokenRepo) MarkUsed(_ context.Context, id primitive.ObjectID, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc := m.byID(id); doc != nil {
		doc.LastUsedAt = &now
	}
	return nil
}

func (m *memTokenRepo) Deactivate(_ context.Context, id primitive.ObjectID, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc := m.byID(id); doc != nil {
		doc.IsActive = false
	}
	return nil
}

func (m *memTokenRepo) Revoke(_ context.Context, token string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.tokens[token]
	if !ok {
		return false, nil
	}
	doc.IsActive = false
	doc.RevokedAt = &now
	return true, nil
}

func (m *memTokenRepo) RevokeAllForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, doc := range m.tokens {
		if doc.UserID == userID && doc.IsActive {
			doc.IsActive = false
			doc.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*structs.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*structs.Task)}
}

func (m *memTaskRepo) ListByUser(_ context.Context, userID string) ([]*structs.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]*structs.Task, 0)
	for _, task := range m.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (m *memTaskRepo) Create(_ context.Context, task *structs.Task) (*structs.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.ID = primitive.NewObjectID()
	m.tasks[task.ID.Hex()] = task
	return task, nil
}

func (m *memTaskRepo) FindByIDAndUser(_ context.Context, id, userID string) (*structs.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *memTaskRepo) Update(_ context.Context, task *structs.Task) (*structs.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.tasks[task.ID.Hex()]
	if !ok || stored.UserID != task.UserID {
		return nil, repository.ErrTaskNotFound
	}
	stored.Text = task.Text
	stored.Done = task.Done
	copied := *stored
	return &copied, nil
}

func (m *memTaskRepo) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}
