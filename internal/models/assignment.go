package models

// Assignment mirrors the backend's assignment projection. Both flags are owned by the
// backend and only reflect the last fetch or toggle response.
type Assignment struct {
	ID                int64  `json:"id" form:"id"`
	Title             string `json:"title" form:"title"`
	Description       string `json:"description" form:"description"`
	CreatedAt         string `json:"createdAt" form:"createdAt"`
	LeaderboardHidden bool   `json:"leaderboardHidden" form:"leaderboardHidden"`
	SubmissionsClosed bool   `json:"submissionsClosed" form:"submissionsClosed"`
}

// AssignmentPatch is the toggle response body; absent fields leave the held value as is.
type AssignmentPatch struct {
	ID                *int64  `json:"id"`
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	CreatedAt         *string `json:"createdAt"`
	LeaderboardHidden *bool   `json:"leaderboardHidden"`
	SubmissionsClosed *bool   `json:"submissionsClosed"`
}

// Apply merges the patch over a held assignment and returns the result.
func (p AssignmentPatch) Apply(a Assignment) Assignment {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.CreatedAt != nil {
		a.CreatedAt = *p.CreatedAt
	}
	if p.LeaderboardHidden != nil {
		a.LeaderboardHidden = *p.LeaderboardHidden
	}
	if p.SubmissionsClosed != nil {
		a.SubmissionsClosed = *p.SubmissionsClosed
	}
	return a
}

// MergeAssignment returns a copy of list where only the entry with the given id has the
// patch applied.
func MergeAssignment(list []Assignment, id int64, patch AssignmentPatch) []Assignment {
	out := make([]Assignment, len(list))
	for i, a := range list {
		if a.ID == id {
			out[i] = patch.Apply(a)
			continue
		}
		out[i] = a
	}
	return out
}

// CreateAssignmentRequest is the admin form for a new assignment.
type CreateAssignmentRequest struct {
	Title       string `json:"title" form:"title" validate:"required,max=200"`
	Description string `json:"description" form:"description" validate:"required,max=5000"`
}
