package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// ChatService manages per-case conversations. The two entry points carry the
// ownership semantics of the whole system: a regular staff member becomes the
// owner of an unassigned case by being the first to open or write to its
// conversation.
type ChatService struct {
	caseRepo            CaseRepository
	messageRepo         MessageRepository
	userRepo            UserRepository
	fileRepo            FileRepository
	notificationService *NotificationService
	unreadCache         UnreadCacheStore
	logger              zerolog.Logger
}

// NewChatService creates a new ChatService. unreadCache may be nil.
func NewChatService(
	caseRepo CaseRepository,
	messageRepo MessageRepository,
	userRepo UserRepository,
	fileRepo FileRepository,
	notificationService *NotificationService,
	unreadCache UnreadCacheStore,
	logger zerolog.Logger,
) *ChatService {
	return &ChatService{
		caseRepo:            caseRepo,
		messageRepo:         messageRepo,
		userRepo:            userRepo,
		fileRepo:            fileRepo,
		notificationService: notificationService,
		unreadCache:         unreadCache,
		logger:              logger,
	}
}

// OpenThread opens a case's conversation for the actor. This is a compound
// operation, not a plain read:
//
//  1. an unassigned case opened by a regular staff member is claimed
//     atomically, so the first viewer becomes the owner
//  2. every message not sent by the actor is marked read
//  3. the actor's unread chat notification for the case is cleared
//
// The returned thread tells a non-owning staff viewer who owns the case and
// that they cannot write to it. Superadmins read and write everywhere without
// claiming. Reopening an already-owned case changes nothing; the claim is
// first-touch only.
func (s *ChatService) OpenThread(ctx context.Context, actor models.Actor, caseID int64) (*dto.ThreadResponse, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCaseAccess(actor, cs); err != nil {
		return nil, err
	}

	if actor.IsStaff() && !actor.IsSuperAdmin() && cs.Unassigned() {
		won, err := s.caseRepo.TryAssign(ctx, caseID, actor.ID)
		if err != nil {
			return nil, err
		}
		cs, err = s.caseRepo.GetByID(ctx, caseID)
		if err != nil {
			return nil, err
		}
		if won {
			s.logger.Info().Int64("caseId", caseID).Int64("staffId", actor.ID).
				Msg("Case claimed on thread open")
		}
	}

	if err := s.messageRepo.MarkReadExceptSender(ctx, caseID, actor.ID); err != nil {
		return nil, err
	}
	s.notificationService.markChatNotificationRead(ctx, actor.ID, caseID)
	s.invalidateStaffSummaries(ctx)

	messages, err := s.messageRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, dto.ToMessageResponse(m))
	}

	resp := &dto.ThreadResponse{
		CaseID:   caseID,
		Messages: responses,
		CanWrite: true,
	}
	if actor.IsStaff() && !actor.IsSuperAdmin() && !cs.Unassigned() && !cs.OwnedBy(actor.ID) {
		resp.AssignedToOther = true
		resp.CanWrite = false
		if cs.AssignedAdmin != nil {
			resp.AssignedToName = cs.AssignedAdmin.DisplayName()
		}
	}
	return resp, nil
}

// SendMessage appends a message to a case's conversation and notifies the
// other side. A message needs a body, an attachment, or both. Regular staff
// writing to an unassigned case claim it first; writing to a case owned by
// another staff member is rejected with the owner's name.
func (s *ChatService) SendMessage(ctx context.Context, actor models.Actor, caseID int64, req dto.SendMessageRequest) (*dto.MessageResponse, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" && req.FileID == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrEmptyMessage, "A message needs a body or an attachment")
	}

	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCaseAccess(actor, cs); err != nil {
		return nil, err
	}

	if actor.IsStaff() && !actor.IsSuperAdmin() {
		cs, err = s.claimCaseForSend(ctx, actor, cs)
		if err != nil {
			return nil, err
		}
	}

	var file *models.File
	if req.FileID != nil {
		file, err = s.fileRepo.GetByID(ctx, *req.FileID)
		if err != nil {
			return nil, err
		}
	}

	sender, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		CaseID:     caseID,
		SenderID:   actor.ID,
		SenderRole: actor.Role,
		FileID:     req.FileID,
	}
	if body != "" {
		message.Body = &body
	}
	if _, err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}
	message.Sender = sender
	message.File = file

	s.notifyRecipients(ctx, actor, sender, cs)
	if !actor.IsStaff() {
		// Only unread applicant messages feed the staff dashboards.
		s.invalidateStaffSummaries(ctx)
	}

	resp := dto.ToMessageResponse(message)
	return &resp, nil
}

// claimCaseForSend mirrors the open-thread claim for the write path.
func (s *ChatService) claimCaseForSend(ctx context.Context, actor models.Actor, cs *models.Case) (*models.Case, error) {
	if cs.OwnedBy(actor.ID) {
		return cs, nil
	}

	if cs.Unassigned() {
		won, err := s.caseRepo.TryAssign(ctx, cs.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		cs, err = s.caseRepo.GetByID(ctx, cs.ID)
		if err != nil {
			return nil, err
		}
		if won || cs.OwnedBy(actor.ID) {
			return cs, nil
		}
	}

	ownerName := "another staff member"
	if cs.AssignedAdmin != nil {
		ownerName = cs.AssignedAdmin.DisplayName()
	}
	return nil, apperrors.NewCustomError(
		apperrors.ErrCaseAlreadyOwned,
		fmt.Sprintf("This case is being handled by %s", ownerName),
	)
}

// notifyRecipients resolves who hears about the new message and records a
// collapsible chat notification for each of them. Applicant messages go to
// the case owner, or to every staff member while the case is unassigned;
// staff messages go to the applicant under the sender's display name.
func (s *ChatService) notifyRecipients(ctx context.Context, actor models.Actor, sender *models.User, cs *models.Case) {
	var recipientIDs []int64
	var text string

	if actor.IsStaff() {
		recipientIDs = []int64{cs.ApplicantID}
		text = fmt.Sprintf("New message from %s", sender.DisplayName())
	} else {
		text = fmt.Sprintf("New message from %s", cs.FullName)
		if cs.AssignedAdminID != nil {
			recipientIDs = []int64{*cs.AssignedAdminID}
		} else {
			staff, err := s.userRepo.FindStaff(ctx)
			if err != nil {
				s.logger.Error().Err(err).Int64("caseId", cs.ID).
					Msg("Failed to load staff for chat notification broadcast")
				return
			}
			for _, member := range staff {
				recipientIDs = append(recipientIDs, member.ID)
			}
		}
	}

	for _, recipientID := range recipientIDs {
		if recipientID == actor.ID {
			continue
		}
		if err := s.notificationService.NotifyChatMessage(ctx, recipientID, cs.ID, text); err != nil {
			s.logger.Error().Err(err).Int64("recipientId", recipientID).Int64("caseId", cs.ID).
				Msg("Failed to record chat notification")
		}
	}
}

// invalidateStaffSummaries drops every staff member's cached unread summary
// after a change that moves unread counts. Best effort; an expired cache
// heals itself within its TTL anyway.
func (s *ChatService) invalidateStaffSummaries(ctx context.Context) {
	if s.unreadCache == nil {
		return
	}

	staff, err := s.userRepo.FindStaff(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load staff for unread cache invalidation")
		return
	}

	ids := make([]int64, 0, len(staff))
	for _, member := range staff {
		ids = append(ids, member.ID)
	}
	if err := s.unreadCache.Invalidate(ctx, ids...); err != nil {
		s.logger.Error().Err(err).Msg("Failed to invalidate unread summaries")
	}
}
