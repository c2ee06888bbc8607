package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendAsApplicant(t *testing.T, env *testEnv, caseID int64, body string) {
	t.Helper()
	_, err := env.chatService.SendMessage(context.Background(), applicantActor, caseID, dto.SendMessageRequest{Body: body})
	require.NoError(t, err)
}

func TestOpenThreadClaimsUnassignedCase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	thread, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)
	assert.True(t, thread.CanWrite)
	assert.False(t, thread.AssignedToOther)

	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cs.OwnedBy(adminActor.ID))
}

func TestOpenThreadClaimIsFirstTouchOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	// Reopening changes nothing; the owner stays.
	_, err = env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cs.OwnedBy(adminActor.ID))
}

func TestOpenThreadByNonOwnerIsReadOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	thread, err := env.chatService.OpenThread(ctx, admin2Actor, 100)
	require.NoError(t, err)
	assert.True(t, thread.AssignedToOther)
	assert.False(t, thread.CanWrite)
	assert.Equal(t, "Jane Smith", thread.AssignedToName)

	// Viewing does not steal the case.
	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cs.OwnedBy(adminActor.ID))
}

func TestSuperAdminNeverClaims(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	thread, err := env.chatService.OpenThread(ctx, superActor, 100)
	require.NoError(t, err)
	assert.True(t, thread.CanWrite)
	assert.False(t, thread.AssignedToOther)

	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cs.Unassigned())

	// Superadmins can write into cases owned by others, too.
	_, err = env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)
	_, err = env.chatService.SendMessage(ctx, superActor, 100, dto.SendMessageRequest{Body: "hello"})
	require.NoError(t, err)
}

func TestConcurrentClaimHasSingleWinner(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const staffCount = 8
	actors := make([]models.Actor, 0, staffCount)
	for i := 0; i < staffCount; i++ {
		id := int64(1000 + i)
		env.users.users[id] = &models.User{
			ID: id, Email: fmt.Sprintf("staff%d@staff.example.com", i),
			FirstName: "Staff", LastName: fmt.Sprintf("Member%d", i),
			RoleType: models.RoleAdmin, IsActive: true,
		}
		actors = append(actors, models.Actor{ID: id, Role: models.RoleAdmin})
	}

	var wg sync.WaitGroup
	errs := make([]error, staffCount)
	for i, actor := range actors {
		wg.Add(1)
		go func(i int, actor models.Actor) {
			defer wg.Done()
			_, errs[i] = env.chatService.OpenThread(ctx, actor, 100)
		}(i, actor)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, cs.AssignedAdminID)

	// Exactly one of the racing staff members owns the case.
	owners := 0
	for _, actor := range actors {
		if cs.OwnedBy(actor.ID) {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestOpenThreadMarksOthersMessagesRead(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	sendAsApplicant(t, env, 100, "hello")
	sendAsApplicant(t, env, 100, "anyone there?")

	thread, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)
	for _, m := range thread.Messages {
		assert.True(t, m.IsRead)
	}

	// The staff reply stays unread for the staff member; only the applicant
	// reading the thread flips it.
	_, err = env.chatService.SendMessage(ctx, adminActor, 100, dto.SendMessageRequest{Body: "yes, reviewing now"})
	require.NoError(t, err)

	thread, err = env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)
	require.Len(t, thread.Messages, 3)
	assert.False(t, thread.Messages[2].IsRead)

	thread, err = env.chatService.OpenThread(ctx, applicantActor, 100)
	require.NoError(t, err)
	assert.True(t, thread.Messages[2].IsRead)
}

func TestOpenThreadClearsChatNotification(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)
	sendAsApplicant(t, env, 100, "one")
	sendAsApplicant(t, env, 100, "two")

	n, err := env.notifications.GetUnreadChatNotification(ctx, adminActor.ID, 100)
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, 2, n.Count)

	_, err = env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	n, err = env.notifications.GetUnreadChatNotification(ctx, adminActor.ID, 100)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestApplicantCannotOpenForeignThread(t *testing.T) {
	env := newTestEnv()

	_, err := env.chatService.OpenThread(context.Background(), applicantActor, 200)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestSendMessageRequiresBodyOrAttachment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.SendMessage(ctx, applicantActor, 100, dto.SendMessageRequest{Body: "   "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyMessage)

	fileID := int64(500)
	resp, err := env.chatService.SendMessage(ctx, applicantActor, 100, dto.SendMessageRequest{FileID: &fileID})
	require.NoError(t, err)
	assert.Nil(t, resp.Body)
	require.NotNil(t, resp.File)
	assert.Equal(t, "transcript.pdf", resp.File.FileName)
}

func TestSendMessageRejectsUnknownAttachment(t *testing.T) {
	env := newTestEnv()

	fileID := int64(999)
	_, err := env.chatService.SendMessage(context.Background(), applicantActor, 100, dto.SendMessageRequest{FileID: &fileID})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestSendMessageClaimsUnassignedCase(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.SendMessage(ctx, adminActor, 100, dto.SendMessageRequest{Body: "please upload your transcript"})
	require.NoError(t, err)

	cs, err := env.cases.GetByID(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cs.OwnedBy(adminActor.ID))
}

func TestSendMessageToOwnedCaseRejectedWithOwnerName(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	_, err = env.chatService.SendMessage(ctx, admin2Actor, 100, dto.SendMessageRequest{Body: "mine now"})
	require.ErrorIs(t, err, apperrors.ErrCaseAlreadyOwned)

	var customErr *apperrors.CustomError
	require.True(t, errors.As(err, &customErr))
	assert.Contains(t, customErr.Message, "Jane Smith")
}

func TestApplicantMessageNotifiesAllStaffWhileUnassigned(t *testing.T) {
	env := newTestEnv()

	sendAsApplicant(t, env, 100, "hello")

	for _, staffID := range []int64{adminActor.ID, admin2Actor.ID, superActor.ID} {
		rows := env.notifications.byType(staffID, models.NotificationTypeChatMessage)
		require.Len(t, rows, 1, "staff %d", staffID)
		assert.Equal(t, "New message from Alice Aydin", rows[0].Message)
	}
}

func TestApplicantMessageNotifiesOwnerOnly(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	sendAsApplicant(t, env, 100, "hello")

	assert.Len(t, env.notifications.byType(adminActor.ID, models.NotificationTypeChatMessage), 1)
	assert.Empty(t, env.notifications.byType(admin2Actor.ID, models.NotificationTypeChatMessage))
	assert.Empty(t, env.notifications.byType(superActor.ID, models.NotificationTypeChatMessage))
}

func TestStaffMessageNotifiesApplicantUnderSenderName(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.SendMessage(ctx, adminActor, 100, dto.SendMessageRequest{Body: "documents received"})
	require.NoError(t, err)

	rows := env.notifications.byType(applicantActor.ID, models.NotificationTypeChatMessage)
	require.Len(t, rows, 1)
	assert.Equal(t, "New message from Jane Smith", rows[0].Message)
}

func TestMessageBurstCollapsesIntoOneNotification(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.chatService.OpenThread(ctx, adminActor, 100)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		sendAsApplicant(t, env, 100, "ping")
	}

	rows := env.notifications.byType(adminActor.ID, models.NotificationTypeChatMessage)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].Count)
}

func TestStaffSendInvalidatesNothingButApplicantSendDoes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	cache := newFakeUnreadCache()
	chatService := NewChatService(env.cases, env.messages, env.users, env.files, env.notificationService, cache, testLogger())

	summary := &dto.UnreadSummaryResponse{All: map[int64]int{}, ForMe: map[int64]int{}}
	require.NoError(t, cache.Set(ctx, adminActor.ID, summary))
	require.NoError(t, cache.Set(ctx, applicantActor.ID, summary))

	// Staff messages do not change applicant-origin unread counts, so staff
	// summaries stay cached.
	_, err := chatService.SendMessage(ctx, superActor, 100, dto.SendMessageRequest{Body: "hello"})
	require.NoError(t, err)
	cached, err := cache.Get(ctx, adminActor.ID)
	require.NoError(t, err)
	assert.NotNil(t, cached)

	// An applicant message does.
	_, err = chatService.SendMessage(ctx, applicantActor, 100, dto.SendMessageRequest{Body: "hi"})
	require.NoError(t, err)
	cached, err = cache.Get(ctx, adminActor.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
