package output

import (
	"bytes"
	"sync"
)

// Call is one recorded Persist invocation.
type Call struct {
	Key    string
	Data   []byte
	Append bool
}

// MemoryPersister keeps every key in memory and records each call.
// Err, when set, is returned by Persist without storing anything.
type MemoryPersister struct {
	mu    sync.Mutex
	calls []Call
	files map[string]*bytes.Buffer

	Err error
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{files: make(map[string]*bytes.Buffer)}
}

var _ Persister = (*MemoryPersister)(nil)

func (m *MemoryPersister) Persist(key string, data []byte, appendMode bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}

	m.calls = append(m.calls, Call{
		Key:    key,
		Data:   append([]byte(nil), data...),
		Append: appendMode,
	})

	f, ok := m.files[key]
	if !ok {
		f = &bytes.Buffer{}
		m.files[key] = f
	}
	if !appendMode {
		f.Reset()
	}
	f.Write(data)
	return nil
}

// Calls returns a copy of all recorded calls in order.
func (m *MemoryPersister) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CallsFor returns the recorded calls for key.
func (m *MemoryPersister) CallsFor(key string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Call
	for _, c := range m.calls {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out
}

// Content returns everything currently stored under key.
func (m *MemoryPersister) Content(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.files[key]; ok {
		return f.String()
	}
	return ""
}

// Len returns the number of distinct keys stored.
func (m *MemoryPersister) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
