package workflow

// Status represents a lifecycle status of a workflow entity
type Status string

const (
	StatusOpen           Status = "OPEN"
	StatusMonitoring     Status = "MONITORING"
	StatusAwaitingReturn Status = "AWAITING_RETURN"
	StatusCollected      Status = "COLLECTED"
	StatusPending        Status = "PENDING"
	StatusInAnalysis     Status = "IN_ANALYSIS"
	StatusInRoute        Status = "IN_ROUTE"
	StatusApproved       Status = "APPROVED"
	StatusActive         Status = "ACTIVE"
	StatusPaused         Status = "PAUSED"
	StatusFinalized      Status = "FINALIZED"
	StatusCancelled      Status = "CANCELLED"
	StatusPaid           Status = "PAID"
)

var validStatuses = map[Status]bool{
	StatusOpen:           true,
	StatusMonitoring:     true,
	StatusAwaitingReturn: true,
	StatusCollected:      true,
	StatusPending:        true,
	StatusInAnalysis:     true,
	StatusInRoute:        true,
	StatusApproved:       true,
	StatusActive:         true,
	StatusPaused:         true,
	StatusFinalized:      true,
	StatusCancelled:      true,
	StatusPaid:           true,
}

// Terminal statuses are absorbing: nothing ever transitions out of them.
var terminalStatuses = map[Status]bool{
	StatusFinalized: true,
	StatusCancelled: true,
	StatusPaid:      true,
}

// IsTerminal returns true if the status is absorbing (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status is a declared workflow status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}
