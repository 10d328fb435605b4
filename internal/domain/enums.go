package domain

// CheckoutState represents the state of a journaled checkout
type CheckoutState string

const (
	CheckoutStatePending   CheckoutState = "PENDING"
	CheckoutStateSubmitted CheckoutState = "SUBMITTED"
	CheckoutStateFailed    CheckoutState = "FAILED"
)

// IsValid checks if the checkout state is valid
func (s CheckoutState) IsValid() bool {
	switch s {
	case CheckoutStatePending, CheckoutStateSubmitted, CheckoutStateFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s CheckoutState) CanTransitionTo(newState CheckoutState) bool {
	switch s {
	case CheckoutStatePending:
		return newState == CheckoutStateSubmitted || newState == CheckoutStateFailed
	case CheckoutStateSubmitted, CheckoutStateFailed:
		return false // Terminal states
	default:
		return false
	}
}

// ReportPeriod is the aggregation period for sales reports
type ReportPeriod string

const (
	ReportPeriodDaily   ReportPeriod = "daily"
	ReportPeriodWeekly  ReportPeriod = "weekly"
	ReportPeriodMonthly ReportPeriod = "monthly"
)

// IsValid checks if the report period is valid
func (p ReportPeriod) IsValid() bool {
	switch p {
	case ReportPeriodDaily, ReportPeriodWeekly, ReportPeriodMonthly:
		return true
	default:
		return false
	}
}
