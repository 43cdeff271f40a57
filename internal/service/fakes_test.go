package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophchat-server/internal/model"
)

// memMessages keeps messages in insertion order.
type memMessages struct {
	mu   sync.Mutex
	rows []model.Message
}

func (m *memMessages) Create(_ context.Context, msg model.Message) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg.Seq = int64(len(m.rows) + 1)
	m.rows = append(m.rows, msg)
	return msg, nil
}

func (m *memMessages) GetConversation(_ context.Context, a, b string) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Message
	for _, msg := range m.rows {
		if (msg.SenderID == a && msg.RecipientID == b) || (msg.SenderID == b && msg.RecipientID == a) {
			out = append(out, msg)
		}
	}
	return out, nil
}

type memAttachments struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.Attachment
}

func newMemAttachments() *memAttachments {
	return &memAttachments{rows: make(map[uuid.UUID]model.Attachment)}
}

func (m *memAttachments) Create(_ context.Context, a model.Attachment) (model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[a.ID] = a
	return a, nil
}

func (m *memAttachments) GetByID(_ context.Context, id uuid.UUID) (model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.rows[id]
	if !ok {
		return model.Attachment{}, model.ErrNotFound
	}
	return a, nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *memStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// recordingConn captures pushed events.
type recordingConn struct {
	id     string
	mu     sync.Mutex
	events []model.Event
	closed bool
}

func newRecordingConn(id string) *recordingConn {
	return &recordingConn{id: id}
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Push(_ context.Context, event model.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return model.ErrConnectionClosed
	}
	c.events = append(c.events, event)
	return nil
}

func (c *recordingConn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *recordingConn) received() []model.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.Event(nil), c.events...)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// counterValue returns the value of the counter family name whose single label equals labelValue.
func counterValue(t *testing.T, g prometheus.Gatherer, name, labelValue string) float64 {
	t.Helper()
	families, err := g.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == labelValue {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
