package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ozgurs/applyhub/internal/app/models"
	"github.com/ozgurs/applyhub/internal/app/models/dto"
	"github.com/ozgurs/applyhub/internal/app/repositories"
	"github.com/ozgurs/applyhub/internal/pkg/apperrors"
	"github.com/ozgurs/applyhub/internal/pkg/email"
	"github.com/ozgurs/applyhub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// Editable field allow-lists per role, keyed by column name. Applicants may
// only touch their own contact details; staff additionally control the
// lifecycle status and the internal note, which applicants never see.
var (
	applicantEditableFields = map[string]bool{
		"full_name": true,
		"phone":     true,
		"address":   true,
	}
	staffEditableFields = map[string]bool{
		"full_name":     true,
		"phone":         true,
		"address":       true,
		"status":        true,
		"internal_note": true,
	}
)

// CaseService manages application cases: retrieval, filtered listing, and
// partial updates with their notification, email and audit side effects.
type CaseService struct {
	caseRepo            CaseRepository
	userRepo            UserRepository
	auditRepo           AuditLogRepository
	notificationService *NotificationService
	mailer              email.Mailer
	logger              zerolog.Logger
}

// NewCaseService creates a new CaseService
func NewCaseService(
	caseRepo CaseRepository,
	userRepo UserRepository,
	auditRepo AuditLogRepository,
	notificationService *NotificationService,
	mailer email.Mailer,
	logger zerolog.Logger,
) *CaseService {
	return &CaseService{
		caseRepo:            caseRepo,
		userRepo:            userRepo,
		auditRepo:           auditRepo,
		notificationService: notificationService,
		mailer:              mailer,
		logger:              logger,
	}
}

// authorizeCaseAccess checks that the actor may see the case at all.
// Applicants only ever reach their own case; any staff member may view any
// case (ownership gates writing, not reading).
func authorizeCaseAccess(actor models.Actor, cs *models.Case) error {
	if actor.IsStaff() {
		return nil
	}
	if cs.ApplicantID != actor.ID {
		return apperrors.NewForbiddenError("You do not have access to this case")
	}
	return nil
}

// GetCase returns one case. The internal note is stripped for applicants.
func (s *CaseService) GetCase(ctx context.Context, actor models.Actor, caseID int64) (*dto.CaseResponse, error) {
	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCaseAccess(actor, cs); err != nil {
		return nil, err
	}

	if !actor.IsStaff() {
		cs.InternalNote = ""
	}

	resp := dto.ToCaseResponse(cs)
	return &resp, nil
}

// ListCases returns a filtered, paginated page of cases. Applicants are
// always restricted to their own case regardless of the requested filters.
func (s *CaseService) ListCases(ctx context.Context, actor models.Actor, req dto.ListCasesRequest) (*dto.CaseListResponse, error) {
	if req.Status != "" && !models.ValidCaseStatus(req.Status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Unknown status %q", req.Status))
	}

	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)
	filter := repositories.CaseListFilter{
		Status: req.Status,
		Search: req.Search,
		From:   req.From,
		To:     req.To,
		Offset: offset,
		Limit:  limit,
	}
	if !actor.IsStaff() {
		applicantID := actor.ID
		filter.ApplicantID = &applicantID
	} else if req.ForMe {
		staffID := actor.ID
		filter.AssignedAdminID = &staffID
	}

	cases, err := s.caseRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.caseRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CaseResponse, 0, len(cases))
	for _, cs := range cases {
		if !actor.IsStaff() {
			cs.InternalNote = ""
		}
		responses = append(responses, dto.ToCaseResponse(cs))
	}

	return &dto.CaseListResponse{
		Cases:      responses,
		Pagination: helpers.NewPaginationInfo(total, req.Page, limit),
	}, nil
}

// UpdateCase applies a partial update after allow-list validation, then runs
// the side effects the change implies:
//
//   - staff status change: status_change notification to the applicant, a
//     best-effort email, and an audit entry
//   - staff non-status change: field_change notification carrying the old and
//     new values, and an audit entry
//   - applicant change: applicant_update notification broadcast to all staff
//
// A regular staff member editing an unassigned case claims it first, exactly
// like opening the conversation does; editing a case owned by someone else is
// rejected with the owner's name. Superadmins edit without claiming.
func (s *CaseService) UpdateCase(ctx context.Context, actor models.Actor, caseID int64, fields map[string]interface{}) (*dto.CaseResponse, error) {
	if len(fields) == 0 {
		return nil, apperrors.NewValidationError("No fields to update")
	}

	cs, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCaseAccess(actor, cs); err != nil {
		return nil, err
	}

	values, err := validateEditableFields(actor, fields)
	if err != nil {
		return nil, err
	}

	if actor.IsStaff() && !actor.IsSuperAdmin() {
		cs, err = s.claimForWrite(ctx, actor, cs)
		if err != nil {
			return nil, err
		}
	}

	diff := caseDiff(cs, values)
	update := make(map[string]interface{}, len(diff))
	for field, change := range diff {
		update[field] = change.New
	}
	if len(update) == 0 {
		resp := s.caseResponseFor(actor, cs)
		return &resp, nil
	}

	if err := s.caseRepo.UpdateFields(ctx, caseID, update); err != nil {
		return nil, err
	}

	if actor.IsStaff() {
		s.notifyStaffEdit(ctx, actor, cs, diff)
	} else {
		s.notifyApplicantEdit(ctx, cs, diff)
	}

	updated, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	resp := s.caseResponseFor(actor, updated)
	return &resp, nil
}

// validateEditableFields checks every submitted field against the actor's
// allow-list and coerces the values to strings.
func validateEditableFields(actor models.Actor, fields map[string]interface{}) (map[string]string, error) {
	allowed := applicantEditableFields
	if actor.IsStaff() {
		allowed = staffEditableFields
	}

	values := make(map[string]string, len(fields))
	for field, raw := range fields {
		if !allowed[field] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Field %q is not editable", field))
		}
		value, ok := raw.(string)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("Field %q must be a string", field))
		}
		if field == "status" && !models.ValidCaseStatus(value) {
			return nil, apperrors.NewCustomError(apperrors.ErrInvalidStatus, fmt.Sprintf("Unknown status %q", value))
		}
		values[field] = value
	}
	return values, nil
}

// caseDiff returns the subset of submitted values that actually differ from
// the stored case, with their old values. No-op assignments produce no side
// effects.
func caseDiff(cs *models.Case, values map[string]string) map[string]models.FieldChange {
	current := map[string]string{
		"full_name":     cs.FullName,
		"phone":         cs.Phone,
		"address":       cs.Address,
		"status":        string(cs.Status),
		"internal_note": cs.InternalNote,
	}

	diff := make(map[string]models.FieldChange)
	for field, value := range values {
		if current[field] == value {
			continue
		}
		diff[field] = models.FieldChange{Old: current[field], New: value}
	}
	return diff
}

// claimForWrite ensures a regular staff member owns the case before writing.
// Unassigned cases are claimed atomically; losing the claim race surfaces the
// winner's name in the rejection.
func (s *CaseService) claimForWrite(ctx context.Context, actor models.Actor, cs *models.Case) (*models.Case, error) {
	if cs.OwnedBy(actor.ID) {
		return cs, nil
	}

	if cs.Unassigned() {
		won, err := s.caseRepo.TryAssign(ctx, cs.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		// Either way the assignment changed under us; reload to see the owner.
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

func (s *CaseService) caseResponseFor(actor models.Actor, cs *models.Case) dto.CaseResponse {
	if !actor.IsStaff() {
		cs.InternalNote = ""
	}
	return dto.ToCaseResponse(cs)
}

// notifyStaffEdit runs the applicant-facing side effects of a staff edit.
// All of them are best effort; the case row is already updated and a failed
// notification, email or audit write must not roll that back.
func (s *CaseService) notifyStaffEdit(ctx context.Context, actor models.Actor, cs *models.Case, diff map[string]models.FieldChange) {
	caseID := cs.ID

	if statusChange, ok := diff["status"]; ok {
		n := &models.Notification{
			RecipientID:   cs.ApplicantID,
			CaseID:        &caseID,
			Type:          models.NotificationTypeStatusChange,
			Message:       fmt.Sprintf("Your application status changed from %v to %v", statusChange.Old, statusChange.New),
			ChangedFields: map[string]models.FieldChange{"status": statusChange},
		}
		if err := s.notificationService.Notify(ctx, n); err != nil {
			s.logger.Error().Err(err).Int64("caseId", caseID).Msg("Failed to create status change notification")
		}

		s.sendStatusChangeEmail(cs, statusChange)
	}

	fieldChanges := make(map[string]models.FieldChange, len(diff))
	for field, change := range diff {
		if field == "status" {
			continue
		}
		fieldChanges[field] = change
	}
	if len(fieldChanges) > 0 {
		n := &models.Notification{
			RecipientID:   cs.ApplicantID,
			CaseID:        &caseID,
			Type:          models.NotificationTypeFieldChange,
			Message:       "Your application was updated by the admissions office",
			ChangedFields: fieldChanges,
		}
		if err := s.notificationService.Notify(ctx, n); err != nil {
			s.logger.Error().Err(err).Int64("caseId", caseID).Msg("Failed to create field change notification")
		}
	}

	s.recordAudit(ctx, actor, cs, diff)
}

// sendStatusChangeEmail delivers the status email in the background. The
// request that triggered it never waits on SMTP.
func (s *CaseService) sendStatusChangeEmail(cs *models.Case, change models.FieldChange) {
	if cs.Applicant == nil || cs.Applicant.Email == "" {
		s.logger.Warn().Int64("caseId", cs.ID).Msg("No applicant email on case, skipping status change email")
		return
	}

	toEmail := cs.Applicant.Email
	toName := cs.Applicant.DisplayName()
	oldStatus := fmt.Sprintf("%v", change.Old)
	newStatus := fmt.Sprintf("%v", change.New)

	go func() {
		if err := s.mailer.SendStatusChangeEmail(toEmail, toName, oldStatus, newStatus); err != nil {
			s.logger.Error().Err(err).Str("toEmail", toEmail).Int64("caseId", cs.ID).
				Msg("Failed to send status change email")
		}
	}()
}

// notifyApplicantEdit broadcasts an applicant's own edit to every staff
// member so unassigned cases stay visible to the whole pool.
func (s *CaseService) notifyApplicantEdit(ctx context.Context, cs *models.Case, diff map[string]models.FieldChange) {
	staff, err := s.userRepo.FindStaff(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int64("caseId", cs.ID).Msg("Failed to load staff for applicant update broadcast")
		return
	}

	caseID := cs.ID
	message := fmt.Sprintf("%s updated their application", cs.FullName)
	for _, member := range staff {
		n := &models.Notification{
			RecipientID:   member.ID,
			CaseID:        &caseID,
			Type:          models.NotificationTypeApplicantUpdate,
			Message:       message,
			ChangedFields: diff,
		}
		if err := s.notificationService.Notify(ctx, n); err != nil {
			s.logger.Error().Err(err).Int64("recipientId", member.ID).Int64("caseId", caseID).
				Msg("Failed to create applicant update notification")
		}
	}
}

// recordAudit writes the audit entry for a staff edit. Failures are logged
// loudly and swallowed.
func (s *CaseService) recordAudit(ctx context.Context, actor models.Actor, cs *models.Case, diff map[string]models.FieldChange) {
	details, err := json.Marshal(diff)
	if err != nil {
		s.logger.Error().Err(err).Int64("caseId", cs.ID).Msg("Failed to encode audit details")
		return
	}

	entry := &models.AuditLog{
		ActorID: actor.ID,
		CaseID:  cs.ID,
		Action:  "case_update",
		Details: details,
	}
	if _, err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error().Err(err).Int64("caseId", cs.ID).Int64("actorId", actor.ID).
			Msg("Failed to write audit entry")
	}
}
