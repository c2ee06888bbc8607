package services

import (
	"context"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// UnreadService projects unread applicant messages into the two dashboard
// maps staff clients poll every few seconds. Counts are always derived from
// message rows; the optional Redis cache only absorbs the polling fan-out.
type UnreadService struct {
	messageRepo MessageRepository
	unreadCache UnreadCacheStore
	logger      zerolog.Logger
}

// NewUnreadService creates a new UnreadService. unreadCache may be nil.
func NewUnreadService(messageRepo MessageRepository, unreadCache UnreadCacheStore, logger zerolog.Logger) *UnreadService {
	return &UnreadService{
		messageRepo: messageRepo,
		unreadCache: unreadCache,
		logger:      logger,
	}
}

// GetUnreadSummary computes the actor's unread dashboard.
//
// For a regular staff member "all" covers the unassigned pool and "forMe"
// their own cases, so a case appears in exactly one of the two maps. For a
// superadmin there is no personal queue distinct from the global one; both
// maps cover every case with unread applicant messages. Total counts the
// distinct cases inside the actor's own responsibility.
func (s *UnreadService) GetUnreadSummary(ctx context.Context, actor models.Actor) (*dto.UnreadSummaryResponse, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbiddenError("Unread summaries are staff only")
	}

	if s.unreadCache != nil {
		cached, err := s.unreadCache.Get(ctx, actor.ID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("userId", actor.ID).Msg("Unread cache read failed, falling back to database")
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := s.computeSummary(ctx, actor)
	if err != nil {
		return nil, err
	}

	if s.unreadCache != nil {
		if err := s.unreadCache.Set(ctx, actor.ID, summary); err != nil {
			s.logger.Warn().Err(err).Int64("userId", actor.ID).Msg("Unread cache write failed")
		}
	}
	return summary, nil
}

func (s *UnreadService) computeSummary(ctx context.Context, actor models.Actor) (*dto.UnreadSummaryResponse, error) {
	if actor.IsSuperAdmin() {
		all, err := s.messageRepo.UnreadApplicantCounts(ctx)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = make(map[int64]int)
		}
		return &dto.UnreadSummaryResponse{
			All:   all,
			ForMe: all,
			Total: len(all),
		}, nil
	}

	all, err := s.messageRepo.UnreadApplicantCountsUnassigned(ctx)
	if err != nil {
		return nil, err
	}
	forMe, err := s.messageRepo.UnreadApplicantCountsForOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = make(map[int64]int)
	}
	if forMe == nil {
		forMe = make(map[int64]int)
	}

	return &dto.UnreadSummaryResponse{
		All:   all,
		ForMe: forMe,
		Total: len(forMe),
	}, nil
}
