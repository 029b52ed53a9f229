package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbilal/scholarbridge/internal/app/models"
	"github.com/nbilal/scholarbridge/internal/app/models/dto"
	"github.com/nbilal/scholarbridge/internal/pkg/apperrors"
)

func newConversationFixture(t *testing.T, sponsoredPairs ...[2]int64) (ConversationService, *fakeConversationStore, *fakeGate) {
	t.Helper()
	student := &models.Student{ID: 3, UserID: 30}
	gate := &fakeGate{pairs: make(map[[2]int64]bool)}
	for _, p := range sponsoredPairs {
		gate.pairs[p] = true
	}
	store := &fakeConversationStore{}
	svc := NewConversationService(store, newFakeStudentStore(student), gate, zerolog.Nop())
	return svc, store, gate
}

func TestConversationStart(t *testing.T) {
	ctx := context.Background()
	donor := Caller{UserID: 7, Role: models.RoleDonor}

	t.Run("sponsoring donor opens a thread with first message", func(t *testing.T) {
		svc, store, _ := newConversationFixture(t, [2]int64{7, 3})

		resp, err := svc.Start(ctx, donor, &dto.StartConversationRequest{
			StudentID: 3, Message: "Hi, happy to support your studies",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.DonorID)
		assert.Equal(t, int64(3), resp.StudentID)

		messages, err := store.ListMessages(ctx, resp.ID, nil, nil, 10)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "Hi, happy to support your studies", messages[0].Content)
	})

	t.Run("non-sponsoring donor is rejected", func(t *testing.T) {
		svc, _, _ := newConversationFixture(t)

		_, err := svc.Start(ctx, donor, &dto.StartConversationRequest{
			StudentID: 3, Message: "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrSponsorshipRequired)
	})

	t.Run("only donors start conversations", func(t *testing.T) {
		svc, _, _ := newConversationFixture(t, [2]int64{7, 3})

		_, err := svc.Start(ctx, Caller{UserID: 30, Role: models.RoleStudent}, &dto.StartConversationRequest{
			StudentID: 3, Message: "hello",
		})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("starting twice reuses the thread", func(t *testing.T) {
		svc, store, _ := newConversationFixture(t, [2]int64{7, 3})

		first, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "one"})
		require.NoError(t, err)
		second, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "two"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		messages, err := store.ListMessages(ctx, first.ID, nil, nil, 10)
		require.NoError(t, err)
		assert.Len(t, messages, 2)
	})

	t.Run("losing the insert race falls back to the winner's thread", func(t *testing.T) {
		svc, store, _ := newConversationFixture(t, [2]int64{7, 3})

		// Another request created the pair between our lookup and insert.
		existing := &models.Conversation{Type: models.ConversationTypeDonorStudent, DonorID: 7, StudentID: 3}
		require.NoError(t, store.Create(ctx, existing))
		store.missPairOnce = true

		resp, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "hello"})
		require.NoError(t, err)
		assert.Equal(t, existing.ID, resp.ID)
	})

	t.Run("sponsorship removal does not close an existing thread", func(t *testing.T) {
		svc, _, gate := newConversationFixture(t, [2]int64{7, 3})

		first, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "one"})
		require.NoError(t, err)

		gate.mu.Lock()
		delete(gate.pairs, [2]int64{7, 3})
		gate.mu.Unlock()

		second, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "two"})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})
}

func TestConversationMessaging(t *testing.T) {
	ctx := context.Background()
	donor := Caller{UserID: 7, Role: models.RoleDonor}
	studentCaller := Caller{UserID: 30, Role: models.RoleStudent}

	svc, _, _ := newConversationFixture(t, [2]int64{7, 3})
	started, err := svc.Start(ctx, donor, &dto.StartConversationRequest{StudentID: 3, Message: "hello"})
	require.NoError(t, err)

	t.Run("the student replies in their thread", func(t *testing.T) {
		resp, err := svc.SendMessage(ctx, studentCaller, started.ID, &dto.SendMessageRequest{Content: "thank you"})
		require.NoError(t, err)
		assert.Equal(t, string(models.RoleStudent), resp.SenderRole)
	})

	t.Run("outsiders cannot post", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, Caller{UserID: 99, Role: models.RoleDonor}, started.ID, &dto.SendMessageRequest{Content: "hi"})
		assert.ErrorIs(t, err, apperrors.ErrNotAParticipant)
	})

	t.Run("messages come back oldest first", func(t *testing.T) {
		resp, err := svc.GetMessages(ctx, donor, started.ID, &dto.GetMessagesRequest{})
		require.NoError(t, err)
		require.Len(t, resp.Messages, 2)
		assert.Equal(t, "hello", resp.Messages[0].Content)
		assert.Equal(t, "thank you", resp.Messages[1].Content)
	})

	t.Run("outsiders cannot read", func(t *testing.T) {
		_, err := svc.GetMessages(ctx, Caller{UserID: 99, Role: models.RoleStudent}, started.ID, &dto.GetMessagesRequest{})
		assert.ErrorIs(t, err, apperrors.ErrNotAParticipant)
	})
}
