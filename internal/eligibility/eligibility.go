// Package eligibility extracts constraint clauses (branch, CGPA, percentage,
// backlog) from notification text and evaluates them against the reader's
// profile. Evaluation runs in a fixed order and short-circuits on the first
// hard disqualification, so the reported reason always names the first
// failing constraint.
package eligibility

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/placementcal/placement-calendar-bot/internal/core/domain"
)

// Clause pattern families, tried in order. Captures run on the original-case
// text; the captured clause is lowered before alias resolution.
var branchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)eligible\s+(?:for\s+)?branch(?:es)?[:\s]*([^\n\r.;]+)`),
	regexp.MustCompile(`(?i)branch(?:es)?\s*(?:allowed|eligible|accepted)[:\s]*([^\n\r.;]+)`),
	regexp.MustCompile(`(?i)(?:open|available)\s+(?:to|for)[:\s]*([^\n\r.;]+?)(?:branch|student|only)`),
	regexp.MustCompile(`(?i)only\s+for[:\s]*([^\n\r.;]+?)(?:branch|student)`),
	regexp.MustCompile(`(?i)(?:course|stream|department)[:\s]*([^\n\r.;]+)`),
}

var cgpaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:minimum|min|required|atleast|at least)\s+(?:cgpa|gpa)[:\s]*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)cgpa[:\s]*(?:>=|above|minimum|min|should be|must be)?[:\s]*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s+(?:cgpa|gpa)\s+(?:and above|or above|or more|or higher)`),
	regexp.MustCompile(`(?i)(?:cgpa|gpa)\s+(?:of|:)\s*(\d+\.?\d*)`),
}

var percentagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:minimum|min|required|atleast|at least)\s+(?:percentage|%)[:\s]*(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)(\d+\.?\d*)\s*%\s+(?:and above|or above|or more)`),
	regexp.MustCompile(`(?i)(?:10th|tenth|sslc)[:\s]*(\d+\.?\d*)\s*%`),
	regexp.MustCompile(`(?i)(?:12th|twelfth|hsc|intermediate)[:\s]*(\d+\.?\d*)\s*%`),
}

var backlogPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)no\s+(?:active\s+)?(?:standing\s+)?backlogs?`),
	regexp.MustCompile(`(?i)(?:0|zero|nil)\s+backlogs?`),
	regexp.MustCompile(`(?i)without\s+backlogs?`),
	regexp.MustCompile(`(?i)backlog\s*(?:should be|:)\s*(?:0|zero|nil)`),
}

var firstNumber = regexp.MustCompile(`(\d+\.?\d*)`)

// percentageGrace is the fixed grace band for percentage cutoffs, distinct
// from the configurable CGPA tolerance.
const percentageGrace = 2.0

const maxCGPAScale = 10.0

// Evaluator applies the constraint rules for one fixed profile.
type Evaluator struct {
	profile domain.Profile
	openDet *OpenToAllDetector
}

// New creates an evaluator bound to the reader's profile.
func New(profile domain.Profile, openDet *OpenToAllDetector) *Evaluator {
	return &Evaluator{profile: profile, openDet: openDet}
}

// Evaluate runs the constraint families in fixed order over the full text.
// Each family can early-return a disqualification; criteria accumulate only
// for checks that passed before any failure.
func (e *Evaluator) Evaluate(text string) domain.Eligibility {
	result := domain.Eligibility{}

	if !e.checkBranch(text, &result) {
		return result
	}

	if !e.checkCGPA(text, &result) {
		return result
	}

	if !e.checkPercentages(text, &result) {
		return result
	}

	if !e.checkBacklogs(text, &result) {
		return result
	}

	result.IsOpenToAll = e.openDet.IsOpenToAll(text)

	return result
}

// checkBranch resolves every alias found inside each captured branch clause.
// The reader passes when their canonical branch is listed, "All" is listed,
// or a listed branch is CSE/IT-adjacent by substring.
func (e *Evaluator) checkBranch(text string, result *domain.Eligibility) bool {
	var (
		restricted bool
		found      []string
	)

	for _, pattern := range branchPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			restricted = true
			clause := strings.ToLower(match[1])

			for alias, canonical := range e.profile.BranchAliases {
				if strings.Contains(clause, alias) {
					found = append(found, canonical)
				}
			}
		}
	}

	if !restricted || len(found) == 0 {
		return true
	}

	for _, branch := range found {
		if branch == e.profile.Branch || branch == "All" ||
			strings.Contains(branch, "Computer") || strings.Contains(branch, "Information") {
			result.Criteria = append(result.Criteria, "Branch: "+strings.Join(dedupeStrings(found), ", "))
			return true
		}
	}

	result.StrictlyIneligible = true
	result.Reason = "Branch restricted to: " + strings.Join(dedupeStrings(found), ", ")

	return false
}

// checkCGPA extracts the first decimal in the first matching CGPA clause.
// Values above 10 are read as a 100-point figure and divided down: "75"
// means 7.5, not an impossible CGPA.
func (e *Evaluator) checkCGPA(text string, result *domain.Eligibility) bool {
	var (
		required float64
		found    bool
	)

	for _, pattern := range cgpaPatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}

		num := firstNumber.FindString(match)
		if num == "" {
			continue
		}

		value, err := strconv.ParseFloat(num, 64)
		if err != nil {
			continue
		}

		if value > maxCGPAScale {
			value /= maxCGPAScale
		}

		required = value
		found = true

		break
	}

	if !found {
		return true
	}

	if e.profile.CGPA < required-e.profile.CGPATolerance {
		result.StrictlyIneligible = true
		result.Reason = fmt.Sprintf("CGPA too low: requires %v, profile has %v", required, e.profile.CGPA)

		return false
	}

	result.Criteria = append(result.Criteria, fmt.Sprintf("CGPA: %v+", required))

	return true
}

type percentageCategory int

const (
	categoryGeneral percentageCategory = iota
	categoryTenth
	categoryTwelfth
)

// checkPercentages tries the four percentage patterns in order. The matched
// span is scanned for 10th/12th markers to pick the category; once a
// category has been evaluated, later patterns matching the same category are
// skipped.
func (e *Evaluator) checkPercentages(text string, result *domain.Eligibility) bool {
	handled := map[percentageCategory]bool{}

	for _, pattern := range percentagePatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		required, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}

		category := classifyPercentage(match[0])
		if handled[category] {
			continue
		}

		handled[category] = true

		var have float64

		switch category {
		case categoryTenth:
			have = e.profile.TenthPercent
		case categoryTwelfth:
			have = e.profile.TwelfthPercent
		default:
			have = e.profile.Percentage
		}

		if have < required-percentageGrace {
			result.StrictlyIneligible = true
			result.Reason = fmt.Sprintf("%s too low: requires %v%%, profile has %v%%", categoryLabel(category), required, have)

			return false
		}

		result.Criteria = append(result.Criteria, fmt.Sprintf("Percentage: %v%%+", required))
	}

	return true
}

func classifyPercentage(match string) percentageCategory {
	lower := strings.ToLower(match)

	switch {
	case strings.Contains(lower, "10") || strings.Contains(lower, "tenth") || strings.Contains(lower, "sslc"):
		return categoryTenth
	case strings.Contains(lower, "12") || strings.Contains(lower, "twelfth") || strings.Contains(lower, "hsc"):
		return categoryTwelfth
	default:
		return categoryGeneral
	}
}

func categoryLabel(c percentageCategory) string {
	switch c {
	case categoryTenth:
		return "10th percentage"
	case categoryTwelfth:
		return "12th percentage"
	default:
		return "Percentage"
	}
}

// checkBacklogs disqualifies on any zero-backlog phrasing when the profile
// carries backlogs.
func (e *Evaluator) checkBacklogs(text string, result *domain.Eligibility) bool {
	for _, pattern := range backlogPatterns {
		if !pattern.MatchString(text) {
			continue
		}

		if e.profile.Backlogs > 0 {
			result.StrictlyIneligible = true
			result.Reason = "No backlogs required, profile has backlogs"

			return false
		}

		result.Criteria = append(result.Criteria, "No backlogs")

		return true
	}

	return true
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))

	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	return out
}
