package gate

// Decision is the gating engine's pure-data output. AutoReject is
// terminal: nothing downstream scores a rejected source, and the only
// further transition is the do-not-use label. AutoRestrict is orthogonal:
// the source is still scored, but its final recommendation is capped to
// narrative use.
type Decision struct {
	AutoReject     bool     `json:"auto_reject"`
	Reasons        []string `json:"reasons,omitempty"`
	AutoRestrict   bool     `json:"auto_restrict"`
	RestrictReason string   `json:"restrict_reason,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}
