package submission

// Verdict is the outcome of the abuse check.
type Verdict int

const (
	// VerdictClean marks a payload with no abuse indicators.
	VerdictClean Verdict = iota
	// VerdictHoneypot marks a payload whose honeypot field was filled in.
	VerdictHoneypot
)

const honeypotReason = "Honeypot triggered"

// Detect inspects the payload for automation markers. The verdict is
// VerdictHoneypot iff the hidden website field carries any value.
func Detect(payload Payload) Verdict {
	if payload.Website != "" {
		return VerdictHoneypot
	}
	return VerdictClean
}
