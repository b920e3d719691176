package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ncobase/ncore/logging/logger"
	"github.com/ncobase/todo-api/data/repository"
	"github.com/ncobase/todo-api/structs"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *logger.Logger {
	return logger.StdLogger()
}

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*structs.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*structs.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *structs.User) (*structs.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Email]; exists {
		return nil, repository.ErrDuplicateEmail
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*structs.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// fakeSessionRepo is an in-memory SessionRepository keyed by session id.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*structs.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*structs.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *structs.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.ID = primitive.NewObjectID()
	f.sessions[session.SessionID] = session
	return nil
}

func (f *fakeSessionRepo) FindBySessionID(_ context.Context, sessionID string) (*structs.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	return session, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[sessionID]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.sessions, sessionID)
	return nil
}

// fakeInfoRepo is an in-memory SessionInfoRepository. Writes signal the
// created channel so tests can wait for asynchronous audit records.
type fakeInfoRepo struct {
	mu      sync.Mutex
	infos   map[string]*structs.SessionInfo
	created chan string
	failAll bool
}

func newFakeInfoRepo() *fakeInfoRepo {
	return &fakeInfoRepo{
		infos:   make(map[string]*structs.SessionInfo),
		created: make(chan string, 16),
	}
}

var errFakeStore = errors.New("store unavailable")

func (f *fakeInfoRepo) Create(_ context.Context, info *structs.SessionInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStore
	}
	info.ID = primitive.NewObjectID()
	f.infos[info.SessionID] = info
	f.created <- info.SessionID
	return nil
}

func (f *fakeInfoRepo) Touch(_ context.Context, sessionID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errFakeStore
	}
	info, ok := f.infos[sessionID]
	if !ok || !info.IsActive {
		return repository.ErrSessionNotFound
	}
	info.UpdatedAt = now
	return nil
}

func (f *fakeInfoRepo) Deactivate(_ context.Context, sessionID string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[sessionID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	info.IsActive = false
	info.UpdatedAt = now
	return nil
}

func (f *fakeInfoRepo) ListActive(_ context.Context) ([]*structs.SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*structs.SessionInfo
	for _, info := range f.infos {
		if info.IsActive {
			active = append(active, info)
		}
	}
	return active, nil
}

func (f *fakeInfoRepo) get(sessionID string) *structs.SessionInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infos[sessionID]
}

// fakeTokenRepo is an in-memory TokenRepository keyed by token string.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*structs.AuthToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*structs.AuthToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *structs.AuthToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = primitive.NewObjectID()
	f.tokens[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) FindActive(_ context.Context, token string) (*structs.AuthToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.tokens[token]
	if !ok || !doc.IsActive {
		return nil, repository.ErrTokenNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeTokenRepo) byID(id primitive.ObjectID) *structs.AuthToken {
	for _, doc := range f.tokens {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func (f *fakeTokenRepo) MarkUsed(_ context.Context, id primitive.ObjectID, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc := f.byID(id); doc != nil {
		doc.LastUsedAt = &now
	}
	return nil
}

func (f *fakeTokenRepo) Deactivate(_ context.Context, id primitive.ObjectID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc := f.byID(id); doc != nil {
		doc.IsActive = false
	}
	return nil
}

func (f *fakeTokenRepo) Revoke(_ context.Context, token string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.tokens[token]
	if !ok {
		return false, nil
	}
	doc.IsActive = false
	doc.RevokedAt = &now
	return true, nil
}

func (f *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID string, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, doc := range f.tokens {
		if doc.UserID == userID && doc.IsActive {
			doc.IsActive = false
			doc.RevokedAt = &now
			count++
		}
	}
	return count, nil
}

// fakeTaskRepo is an in-memory TaskRepository keyed by hex object id.
type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*structs.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*structs.Task)}
}

func (f *fakeTaskRepo) ListByUser(_ context.Context, userID string) ([]*structs.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := make([]*structs.Task, 0)
	for _, task := range f.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (f *fakeTaskRepo) Create(_ context.Context, task *structs.Task) (*structs.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = primitive.NewObjectID()
	f.tasks[task.ID.Hex()] = task
	return task, nil
}

func (f *fakeTaskRepo) FindByIDAndUser(_ context.Context, id, userID string) (*structs.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (f *fakeTaskRepo) Update(_ context.Context, task *structs.Task) (*structs.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.tasks[task.ID.Hex()]
	if !ok || stored.UserID != task.UserID {
		return nil, repository.ErrTaskNotFound
	}
	stored.Text = task.Text
	stored.Done = task.Done
	copied := *stored
	return &copied, nil
}

func (f *fakeTaskRepo) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}
