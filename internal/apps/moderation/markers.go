package moderation

import (
	"regexp"
	"strings"
)

// Markers are the bracketed tags prepended to a review comment so that
// the rendered text carries its moderation decision:
//
//	[APPROVED] <previous>            [APPROVED: <message>] <previous>
//	[REJECTED: <reason>] <message>
//	[FLAGGED: <severity> - <reason>] <previous>
//	[ESCALATED: <reason>] <previous>
//
// Flag and escalate keep the previous text, so repeated decisions nest.
var (
	markerPattern   = regexp.MustCompile(`\[(APPROVED|REJECTED|FLAGGED|ESCALATED)(?:[:\s]([^\]]*))?\]`)
	flagBodyPattern = regexp.MustCompile(`^(low|medium|high|critical)\s*-\s*(.*)$`)
)

// Marker is the decision decoded from the first recognized tag of a comment.
type Marker struct {
	Status   Status
	Severity Severity
	Reason   string
	// Text is whatever follows the tag, nested markers included.
	Text string
}

func ApprovedComment(previous, message string) string {
	tag := "[APPROVED]"
	if message != "" {
		tag = "[APPROVED: " + message + "]"
	}
	return prefix(tag, previous)
}

func RejectedComment(reason, message string) string {
	return prefix("[REJECTED: "+reason+"]", message)
}

func FlaggedComment(previous string, severity Severity, reason string) string {
	return prefix("[FLAGGED: "+string(severity)+" - "+reason+"]", previous)
}

func EscalatedComment(previous, reason string) string {
	return prefix("[ESCALATED: "+reason+"]", previous)
}

func prefix(tag, text string) string {
	if text == "" {
		return tag
	}
	return tag + " " + text
}

// ParseMarker returns the first recognized marker in comment. A FLAGGED
// tag whose severity is not one of the known levels is not recognized
// and scanning continues past it.
func ParseMarker(comment string) (Marker, bool) {
	for _, m := range markerPattern.FindAllStringSubmatchIndex(comment, -1) {
		kind := comment[m[2]:m[3]]
		body := ""
		if m[4] >= 0 {
			body = strings.TrimSpace(comment[m[4]:m[5]])
		}
		text := strings.TrimPrefix(comment[m[1]:], " ")

		switch kind {
		case "APPROVED":
			return Marker{Status: StatusApproved, Reason: body, Text: text}, true
		case "REJECTED":
			return Marker{Status: StatusRejected, Reason: body, Text: text}, true
		case "ESCALATED":
			return Marker{Status: StatusEscalated, Reason: body, Text: text}, true
		case "FLAGGED":
			parts := flagBodyPattern.FindStringSubmatch(body)
			if parts == nil {
				continue
			}
			return Marker{
				Status:   StatusFlagged,
				Severity: Severity(parts[1]),
				Reason:   strings.TrimSpace(parts[2]),
				Text:     text,
			}, true
		}
	}
	return Marker{}, false
}

// StripMarkers removes every tag and collapses whitespace. Used to scan
// legacy rows that have no original comment column.
func StripMarkers(comment string) string {
	return strings.Join(strings.Fields(markerPattern.ReplaceAllString(comment, " ")), " ")
}
