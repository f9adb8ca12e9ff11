package ir

// Reason classifies why an assertion exists, so that a checked Fact can be
// turned into a user-visible diagnostic by an external renderer without the
// core needing to know anything about source rendering (spec §6
// "Diagnostic records"). This is a closed sum, not a hierarchy — implement
// new cases as new tags, never by subclassing.
type Reason uint8

const (
	ReasonMisc Reason = iota
	ReasonParamConstraint
	ReasonEventConstraint
	ReasonExistsConstraint
	ReasonBundleLenMatch
	ReasonBundleWidthMatch
	ReasonInBoundsAccess
	ReasonLiveness
	ReasonBundleDelay
	ReasonWellFormedInterval
	ReasonEventTrig
)

func (r Reason) String() string {
	switch r {
	case ReasonParamConstraint:
		return "param-constraint"
	case ReasonEventConstraint:
		return "event-constraint"
	case ReasonExistsConstraint:
		return "exists-constraint"
	case ReasonBundleLenMatch:
		return "bundle-len-match"
	case ReasonBundleWidthMatch:
		return "bundle-width-match"
	case ReasonInBoundsAccess:
		return "in-bounds-access"
	case ReasonLiveness:
		return "liveness"
	case ReasonBundleDelay:
		return "bundle-delay"
	case ReasonWellFormedInterval:
		return "well-formed-interval"
	case ReasonEventTrig:
		return "event-trig"
	default:
		return "misc"
	}
}
