package domain

// Profile holds the fixed personal and academic attributes the eligibility
// rules evaluate against. It is loaded once from configuration and never
// mutated during a run.
type Profile struct {
	Name           string
	RegNumber      string
	Branch         string
	CGPA           float64
	Percentage     float64
	TenthPercent   float64
	TwelfthPercent float64
	Backlogs       int
	Email          string

	// CGPATolerance widens CGPA cutoffs: a requirement of 7.5 with
	// tolerance 0.3 accepts a 7.2 profile.
	CGPATolerance float64

	// BranchAliases maps lower-cased free-text aliases ("cse", "b.tech cse")
	// to canonical branch names. The canonical value "All" marks a blanket
	// allowance.
	BranchAliases map[string]string
}
