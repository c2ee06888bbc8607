package dto

import (
	"time"

	"github.com/ozgurs/applyhub/internal/app/models"
)

// ListCasesRequest carries the case-list filters parsed from query params.
type ListCasesRequest struct {
	Status   string     // filter by lifecycle status, empty for all
	Search   string     // free-text search over applicant name/email
	From     *time.Time // created_at lower bound
	To       *time.Time // created_at upper bound
	ForMe    bool       // restrict to cases owned by the acting staff member
	Page     int
	PageSize int
}

// UpdateCaseRequest is a partial update: only the fields present in the map
// are applied, after allow-list validation against the actor's role.
type UpdateCaseRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}

// CaseResponse is the API shape of one application case.
type CaseResponse struct {
	ID                int64             `json:"id" example:"1"`
	ApplicantID       int64             `json:"applicantId" example:"42"`
	ApplicantName     string            `json:"applicantName,omitempty" example:"John Doe"`
	ApplicantEmail    string            `json:"applicantEmail,omitempty" example:"applicant@example.com"`
	Status            models.CaseStatus `json:"status" example:"pending_review"`
	AssignedAdminID   *int64            `json:"assignedAdminId,omitempty"`
	AssignedAdminName string            `json:"assignedAdminName,omitempty" example:"Jane Smith"`
	FullName          string            `json:"fullName"`
	Phone             string            `json:"phone"`
	Address           string            `json:"address"`
	InternalNote      string            `json:"internalNote,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// ToCaseResponse converts a models.Case to its API shape. The internal note
// is stripped for applicants by the service before conversion.
func ToCaseResponse(c *models.Case) CaseResponse {
	resp := CaseResponse{
		ID:              c.ID,
		ApplicantID:     c.ApplicantID,
		Status:          c.Status,
		AssignedAdminID: c.AssignedAdminID,
		FullName:        c.FullName,
		Phone:           c.Phone,
		Address:         c.Address,
		InternalNote:    c.InternalNote,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
	if c.Applicant != nil {
		resp.ApplicantName = c.Applicant.DisplayName()
		resp.ApplicantEmail = c.Applicant.Email
	}
	if c.AssignedAdmin != nil {
		resp.AssignedAdminName = c.AssignedAdmin.DisplayName()
	}
	return resp
}

// CaseListResponse is a paginated list of cases.
type CaseListResponse struct {
	Cases      []CaseResponse `json:"cases"`
	Pagination PaginationInfo `json:"pagination"`
}
