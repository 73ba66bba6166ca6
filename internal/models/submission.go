package models

// SubmissionStatus is the grading state of a submission.
type SubmissionStatus string

const (
	StatusPending   SubmissionStatus = "PENDING"
	StatusRunning   SubmissionStatus = "RUNNING"
	StatusCompleted SubmissionStatus = "COMPLETED"
	StatusError     SubmissionStatus = "ERROR"
)

// IsTerminal reports whether the backend will never move the submission again.
func (s SubmissionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// Submission is a student's graded (or pending) upload.
// SubmissionTime is kept as the backend's local date-time string.
type Submission struct {
	ID             int64            `json:"id"`
	StudentID      int64            `json:"studentId"`
	AssignmentID   int64            `json:"assignmentId"`
	SubmissionTime string           `json:"submissionTime"`
	Status         SubmissionStatus `json:"status"`
	Score          *float64         `json:"score"`
	Log            *string          `json:"log"`
}

// AdminSubmission is the admin projection that carries the student's identity.
type AdminSubmission struct {
	Submission
	StudentName  string `json:"studentName"`
	StudentEmail string `json:"studentEmail"`
}

// HasPending reports whether any submission is still PENDING or RUNNING.
func HasPending(list []Submission) bool {
	for _, s := range list {
		if !s.Status.IsTerminal() {
			return true
		}
	}
	return false
}

// NewSubmission describes an upload to forward to `POST /api/submissions`.
type NewSubmission struct {
	StudentID    int64
	AssignmentID int64
	FileName     string
}
