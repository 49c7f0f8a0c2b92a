// Package feedback collects user feedback and contact messages.
package feedback

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	Category string  `json:"category" validate:"required,oneof=toilet_report correction bug suggestion"`
	Message  string  `json:"message" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Location *string `json:"location"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// SubmitResult acknowledges a stored submission.
type SubmitResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
