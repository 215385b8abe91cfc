package testutil

import (
	"context"
	"sync"

	"github.com/PaulBabatuyi/sup-api/internal/data"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemUsers is an in-memory stand-in for data.UsersStore. Setting Err makes
// every call fail with it.
type MemUsers struct {
	mu    sync.Mutex
	users []*data.User
	Err   error
}

// NewMemUsers returns an empty MemUsers.
func NewMemUsers() *MemUsers { return &MemUsers{} }

// Add stores u as-is, assigning an id when it has none.
func (m *MemUsers) Add(u data.User) *data.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	m.users = append(m.users, &u)
	cp := u
	return &cp
}

// Len returns the number of stored users.
func (m *MemUsers) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

func (m *MemUsers) List(ctx context.Context) ([]*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*data.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemUsers) Create(ctx context.Context, username, hashedPassword string) (*data.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Add(data.User{Username: username, Password: hashedPassword}), nil
}

func (m *MemUsers) GetByUsername(ctx context.Context, username string) (*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *MemUsers) GetByID(ctx context.Context, id string) (*data.User, error) {
	oid, err := data.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if u := m.find(oid); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, data.ErrNotFound
}

func (m *MemUsers) GetByIDs(ctx context.Context, ids []bson.ObjectID) ([]*data.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*data.User{}
	for _, id := range ids {
		if u := m.find(id); u != nil {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err == data.ErrNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *MemUsers) Upsert(ctx context.Context, id, username string) (bool, error) {
	oid, err := data.ParseID("id", id)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	if u := m.find(oid); u != nil {
		u.Username = username
		return false, nil
	}
	m.users = append(m.users, &data.User{ID: oid, Username: username})
	return true, nil
}

func (m *MemUsers) Delete(ctx context.Context, id string) error {
	oid, err := data.ParseID("id", id)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, u := range m.users {
		if u.ID == oid {
			m.users = append(m.users[:i], m.users[i+1:]...)
			return nil
		}
	}
	return data.ErrNotFound
}

func (m *MemUsers) find(id bson.ObjectID) *data.User {
	for _, u := range m.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// MemMessages is an in-memory stand-in for data.MessagesStore.
type MemMessages struct {
	mu   sync.Mutex
	msgs []*data.Message
	Err  error
}

// NewMemMessages returns an empty MemMessages.
func NewMemMessages() *MemMessages { return &MemMessages{} }

// Len returns the number of stored messages.
func (m *MemMessages) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
}

func (m *MemMessages) Insert(ctx context.Context, text, from, to string) (*data.Message, error) {
	fromID, err := data.ParseID("from", from)
	if err != nil {
		return nil, err
	}
	toID, err := data.ParseID("to", to)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	msg := &data.Message{ID: bson.NewObjectID(), Text: text, From: fromID, To: toID}
	m.msgs = append(m.msgs, msg)
	cp := *msg
	return &cp, nil
}

func (m *MemMessages) GetByID(ctx context.Context, id string) (*data.Message, error) {
	oid, err := data.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, msg := range m.msgs {
		if msg.ID == oid {
			cp := *msg
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *MemMessages) Find(ctx context.Context, filter data.MessageFilter) ([]*data.Message, error) {
	match, err := matcher(filter)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []*data.Message{}
	for _, msg := range m.msgs {
		if match(msg) {
			cp := *msg
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matcher(f data.MessageFilter) (func(*data.Message) bool, error) {
	var preds []func(*data.Message) bool

	ids := []struct {
		field, value string
		get          func(*data.Message) bson.ObjectID
	}{
		{"id", f.ID, func(m *data.Message) bson.ObjectID { return m.ID }},
		{"from", f.From, func(m *data.Message) bson.ObjectID { return m.From }},
		{"to", f.To, func(m *data.Message) bson.ObjectID { return m.To }},
	}
	for _, c := range ids {
		if c.value == "" {
			continue
		}
		oid, err := data.ParseID(c.field, c.value)
		if err != nil {
			return nil, err
		}
		get := c.get
		preds = append(preds, func(m *data.Message) bool { return get(m) == oid })
	}
	if f.Text != "" {
		text := f.Text
		preds = append(preds, func(m *data.Message) bool { return m.Text == text })
	}

	return func(m *data.Message) bool {
		for _, p := range preds {
			if !p(m) {
				return false
			}
		}
		return true
	}, nil
}
