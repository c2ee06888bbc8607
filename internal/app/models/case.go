package models

import "time"

// CaseStatus represents the lifecycle stage of an application case.
// Staff may set any status from any other status; the graph is deliberately
// permissive so that manual corrections are possible.
type CaseStatus string

const (
	CaseStatusSubmitted            CaseStatus = "submitted"
	CaseStatusPendingReview        CaseStatus = "pending_review"
	CaseStatusIncompleteDocument   CaseStatus = "incomplete_document"
	CaseStatusApprovedToAttendExam CaseStatus = "approved_to_attend_exam"
	CaseStatusPassedWithExemption  CaseStatus = "passed_with_exemption"
	CaseStatusApplicationApproved  CaseStatus = "application_approved"
)

// ValidCaseStatus reports whether s is one of the known lifecycle stages.
func ValidCaseStatus(s string) bool {
	switch CaseStatus(s) {
	case CaseStatusSubmitted, CaseStatusPendingReview, CaseStatusIncompleteDocument,
		CaseStatusApprovedToAttendExam, CaseStatusPassedWithExemption, CaseStatusApplicationApproved:
		return true
	}
	return false
}

// Case represents one applicant's application record. It is the unit of
// ownership: AssignedAdminID is nil until a staff member claims the case by
// being first to open or message its conversation, and is only ever written
// through a conditional update so concurrent claims have a single winner.
type Case struct {
	ID              int64      `json:"id" db:"id" example:"1"`
	ApplicantID     int64      `json:"applicantId" db:"applicant_id" example:"42"`
	Status          CaseStatus `json:"status" db:"status" example:"pending_review"`
	AssignedAdminID *int64     `json:"assignedAdminId,omitempty" db:"assigned_admin_id"`
	FullName        string     `json:"fullName" db:"full_name" example:"John Doe"`
	Phone           string     `json:"phone" db:"phone" example:"+90 555 000 0000"`
	Address         string     `json:"address" db:"address"`
	InternalNote    string     `json:"internalNote,omitempty" db:"internal_note"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`

	// Related entities
	Applicant     *User `json:"applicant,omitempty"`
	AssignedAdmin *User `json:"assignedAdmin,omitempty"`
}

// OwnedBy reports whether the case is currently assigned to the given staff id.
func (c *Case) OwnedBy(staffID int64) bool {
	return c.AssignedAdminID != nil && *c.AssignedAdminID == staffID
}

// Unassigned reports whether the case has no owner yet.
func (c *Case) Unassigned() bool {
	return c.AssignedAdminID == nil
}
