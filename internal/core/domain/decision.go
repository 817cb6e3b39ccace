package domain

import "time"

// Disposition is the terminal state the engine assigns to a message.
type Disposition string

const (
	// DispositionNotRelevant means no placement keyword matched.
	DispositionNotRelevant Disposition = "not_relevant"

	// DispositionDisqualified means a hard eligibility constraint failed.
	DispositionDisqualified Disposition = "disqualified"

	// DispositionNotSelected means the reader was neither named nor covered
	// by an open-to-all notice.
	DispositionNotSelected Disposition = "not_selected"

	// DispositionActionable means the message warrants calendar action.
	DispositionActionable Disposition = "actionable"
)

// Eligibility is the outcome of constraint evaluation over one message.
// When StrictlyIneligible is set, evaluation stopped at the first failing
// constraint and Criteria reflects only the checks that ran before it.
type Eligibility struct {
	StrictlyIneligible bool
	Reason             string
	IsOpenToAll        bool
	Criteria           []string
}

// DateTimes holds whatever schedule information extraction recovered.
// Deadline and event are independently optional. DurationMinutes may be
// negative when a time range was written end-before-start; callers decide
// whether to substitute a default.
type DateTimes struct {
	EventDateTime        *time.Time
	RegistrationDeadline *time.Time
	DurationMinutes      *int
}

// EventPlan is one calendar emission the orchestrator decided on. Key is the
// idempotency token the dedup store is consulted with before Create.
type EventPlan struct {
	Key             string
	Title           string
	Start           time.Time
	End             time.Time
	ReminderMinutes []int
}

// Decision is the engine's full verdict for one message.
type Decision struct {
	Disposition Disposition
	Reason      string

	FoundInList bool
	OpenToAll   bool
	Venue       string
	RegLink     string

	Eligibility Eligibility
	DateTimes   DateTimes

	Events []EventPlan
}

// Skipped reports whether the decision is a terminal skip.
func (d Decision) Skipped() bool {
	return d.Disposition != DispositionActionable
}
