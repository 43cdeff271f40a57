package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophchat-server/internal/metrics"
	"github.com/dtroode/gophchat-server/internal/model"
	"github.com/dtroode/gophchat-server/internal/presence"
	"github.com/dtroode/gophchat-server/internal/testutil"
)

func seedConversation(t *testing.T, relay *Relay) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []model.SubmitParams{
		{SenderID: "alice", RecipientID: "bob", Text: "m1"},
		{SenderID: "bob", RecipientID: "alice", Text: "m2"},
		{SenderID: "alice", RecipientID: "carol", Text: "other"},
		{SenderID: "alice", RecipientID: "bob", Text: "m3"},
	} {
		require.NoError(t, relay.Submit(ctx, p))
	}
}

func texts(messages []model.ResolvedMessage) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.Text)
	}
	return out
}

func TestHistory_FetchHistory_SymmetricAndOrdered(t *testing.T) {
	ctx := context.Background()
	store := &memMessages{}
	registry := presence.New()
	alice := newRecordingConn("alice-conn")
	bob := newRecordingConn("bob-conn")
	registry.Register("alice", alice)
	registry.Register("bob", bob)

	relay := NewRelay(store, newMemAttachments(), newMemStorage(), registry, nil, testutil.MakeNoopLogger())
	history := NewHistory(store, newMemAttachments(), newMemStorage(), registry, nil, testutil.MakeNoopLogger())
	seedConversation(t, relay)

	fromAlice, err := history.FetchHistory(ctx, model.HistoryRequest{RequesterID: "alice", CounterpartID: "bob"})
	require.NoError(t, err)
	fromBob, err := history.FetchHistory(ctx, model.HistoryRequest{RequesterID: "bob", CounterpartID: "alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "m2", "m3"}, texts(fromAlice))
	assert.Equal(t, fromAlice, fromBob)

	last := alice.received()[len(alice.received())-1]
	assert.Equal(t, model.EventHistory, last.Type)
	assert.Equal(t, model.HistoryPayload{Messages: fromAlice}, last.Data)
}

func TestHistory_FetchHistory_EmptyConversation(t *testing.T) {
	registry := presence.New()
	alice := newRecordingConn("alice-conn")
	registry.Register("alice", alice)

	history := NewHistory(&memMessages{}, newMemAttachments(), newMemStorage(), registry, nil, testutil.MakeNoopLogger())

	got, err := history.FetchHistory(context.Background(), model.HistoryRequest{RequesterID: "alice", CounterpartID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, got)

	events := alice.received()
	require.Len(t, events, 1)
	assert.JSONEq(t, `{"event":"history","data":{"messages":[]}}`, mustJSON(t, events[0]))
}

func TestHistory_FetchHistory_RequesterOffline(t *testing.T) {
	reg := prometheus.NewRegistry()
	store := &memMessages{}
	_, err := store.Create(context.Background(), model.Message{ID: uuid.New(), SenderID: "alice", RecipientID: "bob", Text: "x"})
	require.NoError(t, err)

	history := NewHistory(store, newMemAttachments(), newMemStorage(), presence.New(), metrics.New(reg), testutil.MakeNoopLogger())

	got, err := history.FetchHistory(context.Background(), model.HistoryRequest{RequesterID: "alice", CounterpartID: "bob"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1.0, counterValue(t, reg, "gophchat_history_pushes_total", metrics.OutcomeOffline))
}

func TestHistory_FetchHistory_DanglingAttachment(t *testing.T) {
	ctx := context.Background()
	store := &memMessages{}
	missing := uuid.New()
	_, err := store.Create(ctx, model.Message{ID: uuid.New(), SenderID: "alice", RecipientID: "bob", Text: "before"})
	require.NoError(t, err)
	_, err = store.Create(ctx, model.Message{ID: uuid.New(), SenderID: "alice", RecipientID: "bob", Text: "pic", AttachmentID: &missing})
	require.NoError(t, err)

	history := NewHistory(store, newMemAttachments(), newMemStorage(), presence.New(), nil, testutil.MakeNoopLogger())

	got, err := history.FetchHistory(ctx, model.HistoryRequest{RequesterID: "bob", CounterpartID: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "pic", got[1].Text)
	assert.Nil(t, got[1].Attachment)
}

func TestHistory_FetchHistory_StorageFailureAborts(t *testing.T) {
	ctx := context.Background()
	store := &memMessages{}
	attachments := newMemAttachments()
	attachmentID := uuid.New()
	_, err := attachments.Create(ctx, model.Attachment{ID: attachmentID, S3Key: "attachments/x"})
	require.NoError(t, err)
	_, err = store.Create(ctx, model.Message{ID: uuid.New(), SenderID: "alice", RecipientID: "bob", AttachmentID: &attachmentID})
	require.NoError(t, err)

	storage := &MockStorage{}
	storage.On("Download", mock.Anything, "attachments/x").Return(nil, errors.New("connection reset"))

	registry := presence.New()
	bob := newRecordingConn("bob-conn")
	registry.Register("bob", bob)

	history := NewHistory(store, attachments, storage, registry, nil, testutil.MakeNoopLogger())

	_, err = history.FetchHistory(ctx, model.HistoryRequest{RequesterID: "bob", CounterpartID: "alice"})
	require.Error(t, err)
	assert.Empty(t, bob.received())
}

func TestHistory_FetchHistory_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     model.HistoryRequest
		setup   func(*MockMessageStore)
		wantErr error
	}{
		{
			name:    "missing requester",
			req:     model.HistoryRequest{CounterpartID: "bob"},
			setup:   func(*MockMessageStore) {},
			wantErr: model.ErrMissingIdentity,
		},
		{
			name:    "missing counterpart",
			req:     model.HistoryRequest{RequesterID: "alice"},
			setup:   func(*MockMessageStore) {},
			wantErr: model.ErrMissingIdentity,
		},
		{
			name: "store failure",
			req:  model.HistoryRequest{RequesterID: "alice", CounterpartID: "bob"},
			setup: func(m *MockMessageStore) {
				m.On("GetConversation", mock.Anything, "alice", "bob").Return([]model.Message(nil), errors.New("timeout"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockMessageStore{}
			tt.setup(store)

			registry := presence.New()
			alice := newRecordingConn("alice-conn")
			registry.Register("alice", alice)

			history := NewHistory(store, &MockAttachmentStore{}, &MockStorage{}, registry, nil, testutil.MakeNoopLogger())

			_, err := history.FetchHistory(context.Background(), tt.req)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, alice.received())
			store.AssertExpectations(t)
		})
	}
}
