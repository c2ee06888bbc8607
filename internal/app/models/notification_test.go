package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayMessageAppendsBurstCounter(t *testing.T) {
	n := &Notification{Message: "New message from Alice Aydin", Count: 1}
	assert.Equal(t, "New message from Alice Aydin", n.DisplayMessage())

	n.Count = 3
	assert.Equal(t, "New message from Alice Aydin (3)", n.DisplayMessage())
}

func TestUserDisplayNameFallsBackToOfficeLabel(t *testing.T) {
	u := &User{FirstName: "Jane", LastName: "Smith"}
	assert.Equal(t, "Jane Smith", u.DisplayName())

	u = &User{}
	assert.Equal(t, "Admissions Office", u.DisplayName())
}

func TestCaseOwnership(t *testing.T) {
	cs := &Case{}
	assert.True(t, cs.Unassigned())
	assert.False(t, cs.OwnedBy(7))

	staffID := int64(7)
	cs.AssignedAdminID = &staffID
	assert.False(t, cs.Unassigned())
	assert.True(t, cs.OwnedBy(7))
	assert.False(t, cs.OwnedBy(8))
}

func TestValidCaseStatus(t *testing.T) {
	assert.True(t, ValidCaseStatus("submitted"))
	assert.True(t, ValidCaseStatus("application_approved"))
	assert.False(t, ValidCaseStatus("archived"))
	assert.False(t, ValidCaseStatus(""))
}
