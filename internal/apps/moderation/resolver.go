package moderation

import (
	"github.com/ahmetcoskunkizilkaya/venue-moderation/internal/models"
)

type FlagMetadata struct {
	Severity     Severity `json:"severity"`
	Reason       string   `json:"reason"`
	FlaggedTerms []string `json:"flagged_terms,omitempty"`
}

// Resolution is the moderation state derived from a stored review.
type Resolution struct {
	Status Status        `json:"status"`
	Reason string        `json:"reason,omitempty"`
	Flag   *FlagMetadata `json:"flag,omitempty"`
}

// Resolve derives the moderation state of a review. The explicit status
// columns win; rows that predate them are decoded from the markers in
// the comment. It never fails: anything unrecognized is pending.
func Resolve(r *models.Review) Resolution {
	if r == nil {
		return Resolution{Status: StatusPending}
	}

	if s := Status(r.ModerationStatus); s != "" && s.Valid() {
		res := Resolution{Status: s, Reason: r.StatusReason}
		if s == StatusFlagged {
			res.Flag = &FlagMetadata{
				Severity:     Severity(r.FlagSeverity),
				Reason:       r.StatusReason,
				FlaggedTerms: flaggedTerms(r),
			}
		}
		return res
	}

	m, ok := ParseMarker(r.Comment)
	if !ok {
		return Resolution{Status: StatusPending}
	}
	res := Resolution{Status: m.Status, Reason: m.Reason}
	if m.Status == StatusFlagged {
		res.Flag = &FlagMetadata{
			Severity:     m.Severity,
			Reason:       m.Reason,
			FlaggedTerms: flaggedTerms(r),
		}
	}
	return res
}

// ResolveWithHistory is Resolve plus the clarification state, which is
// never written to the review itself and only shows in the audit trail.
func ResolveWithHistory(r *models.Review, lastAction Action) Resolution {
	res := Resolve(r)
	if res.Status == StatusPending && lastAction == ActionRequestClarification {
		res.Status = StatusClarificationRequested
	}
	return res
}

func flaggedTerms(r *models.Review) []string {
	text := r.SubmittedText()
	if r.OriginalComment == nil {
		text = StripMarkers(text)
	}
	return TermTexts(defaultScanner.Scan(text))
}
