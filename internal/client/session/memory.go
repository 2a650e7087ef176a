package session

import "sync"

// MemoryStore is a Store that lives only as long as the process.
type MemoryStore struct {
	mu sync.Mutex
	st state
}

// NewMemory returns a MemoryStore seeded with the given pair.
func NewMemory(p TokenPair) *MemoryStore {
	return &MemoryStore{st: state{Token: p.AccessToken, RefreshToken: p.RefreshToken}}
}

func (m *MemoryStore) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Token
}

func (m *MemoryStore) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.RefreshToken
}

func (m *MemoryStore) Company() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st.Company
}

func (m *MemoryStore) SetTokens(p TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Token = p.AccessToken
	m.st.RefreshToken = p.RefreshToken
	return nil
}

func (m *MemoryStore) SetCompany(company string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st.Company = company
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = state{}
	return nil
}
