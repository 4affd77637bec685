package enrollment

import "time"

// Suspension records why and when a code was blocked from logging in.
// Presence of an entry blocks login only; already logged-in sessions keep
// working until they log out.
type Suspension struct {
	Reason      string    `json:"reason"`
	SuspendedBy int64     `json:"suspended_by"`
	SuspendedAt time.Time `json:"suspended_at"`
}

// SuspensionSet maps normalized code to its suspension record.
type SuspensionSet map[string]Suspension

// NewSuspensionSet returns an empty set.
func NewSuspensionSet() SuspensionSet {
	return SuspensionSet{}
}

// IsSuspended reports whether a code is blocked. The code is normalized
// before lookup.
func (s SuspensionSet) IsSuspended(code string) bool {
	_, ok := s[NormalizeCode(code)]
	return ok
}

// Suspend records a suspension for a code, overwriting any previous one.
func (s SuspensionSet) Suspend(code, reason string, by int64, at time.Time) {
	s[NormalizeCode(code)] = Suspension{
		Reason:      reason,
		SuspendedBy: by,
		SuspendedAt: at,
	}
}

// Lift removes a suspension. Lifting an absent code is a no-op.
func (s SuspensionSet) Lift(code string) {
	delete(s, NormalizeCode(code))
}

// Get returns the suspension record for a code.
func (s SuspensionSet) Get(code string) (Suspension, bool) {
	sus, ok := s[NormalizeCode(code)]
	return sus, ok
}
