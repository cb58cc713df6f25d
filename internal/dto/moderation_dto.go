package dto

type ApproveReviewRequest struct {
	Message string `json:"message"`
}

type RejectReviewRequest struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type FlagReviewRequest struct {
	Severity string `json:"severity"`
	Reason   string `json:"reason"`
}

type ClarificationRequest struct {
	Message string `json:"message"`
}

type EscalateReviewRequest struct {
	Reason string `json:"reason"`
}
