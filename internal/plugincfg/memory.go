package plugincfg

import "sync"

// MemoryStore is an in-process Store. Load applies the same hostname
// resolution as FileStore.
type MemoryStore struct {
	mu       sync.Mutex
	cfg      Config
	saved    int
	Hostname HostnameFunc
	// LoadErr and SaveErr, when set, are returned by Load and Save.
	LoadErr error
	SaveErr error
}

// NewMemoryStore returns a store holding cfg.
func NewMemoryStore(cfg Config) *MemoryStore {
	return &MemoryStore{cfg: cfg}
}

func (m *MemoryStore) Load() (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Config{}, m.LoadErr
	}
	return resolveHostname(m.cfg, m.Hostname), nil
}

func (m *MemoryStore) Save(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.cfg = cfg
	m.saved++
	return nil
}

// Saved returns how many times Save succeeded.
func (m *MemoryStore) Saved() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
