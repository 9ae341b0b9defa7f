// Package readiness computes the inspection-readiness checklist: an
// evidence-coverage score over a fixed set of facts about a case. Like the
// scorers, it is pure domain logic with no failure modes; the caller gathers
// the facts (including the training-recency window) before calling Evaluate.
package readiness

import "math"

// Band mirrors the stored risk band of the case under review. UNKNOWN means
// no assessment is on file yet.
type Band string

const (
	BandUnknown  Band = "UNKNOWN"
	BandLow      Band = "LOW"
	BandMedium   Band = "MEDIUM"
	BandHigh     Band = "HIGH"
	BandVeryHigh Band = "VERY_HIGH"
)

// Input is the set of facts the evaluator covers. Each field is the caller's
// already-resolved answer; in particular TrainingCompleted must already
// account for the recency window.
type Input struct {
	KYCComplete         bool
	TransactionRecorded bool
	ScreeningDone       bool
	RiskSaved           bool
	RiskBand            Band
	EDDEvidenceUploaded bool
	TrainingCompleted   bool
	PolicyExists        bool
}

// Item is one checklist row. Applicable is false for items excluded from the
// scoring denominator (their Note explains why).
type Item struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Status     bool   `json:"status"`
	Applicable bool   `json:"applicable"`
	Note       string `json:"note"`
}

// Result is the evaluated checklist with its coverage score.
type Result struct {
	Score     int    `json:"score"`
	Summary   string `json:"summary"`
	Checklist []Item `json:"checklist"`
}

// Checklist item keys, in checklist order.
const (
	KeyKYCComplete         = "kycComplete"
	KeyTransactionRecorded = "transactionRecorded"
	KeyScreeningDone       = "screeningDone"
	KeyRiskSaved           = "riskSaved"
	KeyEDDEvidence         = "eddEvidenceUploaded"
	KeyTrainingCompleted   = "trainingCompleted"
	KeyPolicyExists        = "policyExists"
)

// Evaluate computes the readiness checklist. The EDD item only applies when
// the saved risk band is HIGH or VERY_HIGH; otherwise it is marked not
// required and excluded from the denominator.
func Evaluate(in Input) Result {
	eddRequired := in.RiskBand == BandHigh || in.RiskBand == BandVeryHigh

	checklist := []Item{
		item(KeyKYCComplete, "KYC / customer identification", in.KYCComplete, "customer identification evidence missing"),
		item(KeyTransactionRecorded, "Transaction on file", in.TransactionRecorded, "no transaction recorded for this case"),
		item(KeyScreeningDone, "Screening evidence", in.ScreeningDone, "screening evidence missing"),
		item(KeyRiskSaved, "Saved risk assessment", in.RiskSaved, "no risk assessment saved"),
		eddItem(in.EDDEvidenceUploaded, eddRequired),
		item(KeyTrainingCompleted, "Staff training evidence", in.TrainingCompleted, "no training completion within the last year"),
		item(KeyPolicyExists, "AML/CFT policy on file", in.PolicyExists, "no AML/CFT policy document on file"),
	}

	trueCount := 0
	applicableCount := 0
	for _, it := range checklist {
		if !it.Applicable {
			continue
		}
		applicableCount++
		if it.Status {
			trueCount++
		}
	}

	score := 0
	if applicableCount > 0 {
		score = int(math.Round(100 * float64(trueCount) / float64(applicableCount)))
	}

	return Result{
		Score:     score,
		Summary:   summaryFor(score),
		Checklist: checklist,
	}
}

func item(key, label string, status bool, missingNote string) Item {
	note := "on file"
	if !status {
		note = missingNote
	}
	return Item{Key: key, Label: label, Status: status, Applicable: true, Note: note}
}

func eddItem(uploaded, required bool) Item {
	it := Item{Key: KeyEDDEvidence, Label: "EDD evidence", Status: uploaded, Applicable: required}
	switch {
	case !required:
		it.Note = "not required for this risk band"
	case uploaded:
		it.Note = "on file"
	default:
		it.Note = "required for HIGH and VERY_HIGH risk cases"
	}
	return it
}

// summaryFor picks the display summary by score band. Wording is cosmetic
// and not contract-bearing.
func summaryFor(score int) string {
	switch {
	case score >= 80:
		return "Evidence coverage is strong"
	case score >= 50:
		return "Evidence coverage is adequate but has gaps"
	default:
		return "Several items need attention before an inspection"
	}
}
