package dto

// UnreadSummaryResponse drives the staff dashboard badges. Both maps go from
// case id to the number of unread applicant messages in that case.
//
// For regular staff "all" covers only unassigned cases (the claimable pool)
// and "forMe" only cases owned by the actor, so the two maps are disjoint.
// For a superadmin the maps are identical: there is no personal queue
// distinct from the global one.
type UnreadSummaryResponse struct {
	All   map[int64]int `json:"all"`
	ForMe map[int64]int `json:"forMe"`
	// Total counts distinct cases with unread applicant messages within the
	// actor's personal responsibility (owned cases for staff, every case for
	// a superadmin).
	Total int `json:"total" example:"3"`
}
