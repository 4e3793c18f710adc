package engine

import "encoding/json"

// FinishReason is the normalized completion stop reason.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
	FinishOther  FinishReason = "other"
)

// NormalizeFinishReason maps a provider stop reason onto the enum.
// Anything unrecognized, including the empty string, becomes other.
func NormalizeFinishReason(s string) FinishReason {
	switch s {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	default:
		return FinishOther
	}
}

// Result is the normalized outcome of a query. Constructed once and
// never mutated.
type Result struct {
	Answer       string
	Model        string
	Usage        map[string]int
	FinishReason FinishReason

	// Raw is the unparsed provider response body.
	Raw json.RawMessage
}

// IsTruncated reports whether the answer was cut off by the token limit.
func (r *Result) IsTruncated() bool {
	return r.FinishReason == FinishLength
}
