// Package scoring implements the customer and legal-entity risk scorers.
//
// Both scorers are pure domain logic: no I/O, no clocks, no side effects.
// Every input field is optional and every missing or unrecognized value maps
// to a documented default sub-score, never an error. Incomplete data is a risk
// signal, not a failure; a scorer that refused incomplete records would block
// the compliance workflows it exists to serve.
package scoring

// Category is the customer risk classification. Boundaries are strict
// greater-than: a score of exactly 80 is HIGH, not VERY_HIGH.
type Category string

const (
	CategoryLow      Category = "LOW"
	CategoryMedium   Category = "MEDIUM"
	CategoryHigh     Category = "HIGH"
	CategoryVeryHigh Category = "VERY_HIGH"
)

// rank supports monotonicity checks: LOW < MEDIUM < HIGH < VERY_HIGH.
func (c Category) rank() int {
	switch c {
	case CategoryMedium:
		return 1
	case CategoryHigh:
		return 2
	case CategoryVeryHigh:
		return 3
	default:
		return 0
	}
}

// Less reports whether c ranks strictly below other.
func (c Category) Less(other Category) bool {
	return c.rank() < other.rank()
}

// Recognized filer statuses. Anything else scores as unknown.
const (
	FilerStatusFiler    = "filer"
	FilerStatusNonFiler = "non-filer"
	FilerStatusUnknown  = "unknown"
)

// Recognized payment modes. Matching is case-insensitive exact match;
// unrecognized values contribute nothing to the score.
const (
	PaymentModeCash              = "cash"
	PaymentModeForeignRemittance = "foreign_remittance"
	PaymentModeCheque            = "cheque"
	PaymentModeDigitalWallet     = "digital_wallet"
	PaymentModeBankTransfer      = "bank_transfer"
)

// Recognized source-of-funds values.
const (
	SourceSalary            = "salary"
	SourceBusinessIncome    = "business_income"
	SourceSaleOfAsset       = "sale_of_asset"
	SourceForeignRemittance = "foreign_remittance"
	SourceInheritanceGift   = "inheritance_gift"
)

// PEP statuses.
const (
	PEPYes    = "yes"
	PEPFamily = "family"
	PEPNo     = "no"
)

// RiskInput carries the transaction and profile attributes of a natural
// person. It is assembled fresh per call by the caller from its stores; the
// scorer never sees storage types.
type RiskInput struct {
	// Amount is the transaction value in currency units. Non-positive means
	// the value is unusable and affordability cannot be assessed.
	Amount float64

	// AnnualIncome is the declared income; nil when not on file.
	AnnualIncome *float64

	// FilerStatus is one of filer / non-filer / unknown; "" means missing.
	FilerStatus string

	// PaymentMode is free-form; see the PaymentMode constants for values that
	// carry weight.
	PaymentMode string

	// SourceOfFunds is free-form; "" is the highest-uncertainty case.
	SourceOfFunds string

	// PEPStatus is yes / family / no; "" scores as no.
	PEPStatus string

	// City is the customer's declared city; "" means missing.
	City string
}

// Factor is one additive component of the overall score. Breakdown order is
// evaluation order.
type Factor struct {
	Name  string `json:"factor"`
	Score int    `json:"score"`
}

// RedFlag is a checklist hit independent of the numeric score.
type RedFlag struct {
	Flag     string `json:"flag"`
	Severity string `json:"severity"`
}

// Red flag identifiers.
const (
	FlagCashLarge     = "CASH_LARGE"
	FlagNonFilerLarge = "NON_FILER_LARGE"

	SeverityHigh = "HIGH"
)

// Recommendations carries the report and diligence suggestions derived from a
// scored transaction. This system only recommends, it never files.
type Recommendations struct {
	STR     bool     `json:"str"`
	CTR     bool     `json:"ctr"`
	EDD     bool     `json:"edd"`
	Reasons []string `json:"reasons"`
}

// RiskResult is the complete output of the customer scorer. The caller
// persists it as a risk-assessment record.
type RiskResult struct {
	OverallScore    int             `json:"overall_score"`
	Category        Category        `json:"category"`
	Breakdown       []Factor        `json:"breakdown"`
	RedFlags        []RedFlag       `json:"red_flags"`
	Recommendations Recommendations `json:"recommendations"`
}

// EntityBand is the legal-entity risk band. Boundary semantics differ from
// Category on purpose: >=80 High, >=50 Medium. The two step functions come
// from different parts of the original policy and are kept distinct until
// product confirms a unification.
type EntityBand string

const (
	EntityBandLow    EntityBand = "Low"
	EntityBandMedium EntityBand = "Medium"
	EntityBandHigh   EntityBand = "High"
)

// Associate is an owner or controller linked to a legal entity. CustomerID is
// "" when the associate has no customer record in the system.
type Associate struct {
	CustomerID string `json:"customer_id,omitempty"`
	Role       string `json:"role"`
}

// EntityRiskInput carries the entity-level complexity indicators plus the
// linked associates.
type EntityRiskInput struct {
	Sector              string      `json:"sector,omitempty"`
	HasCrossBorder      bool        `json:"has_cross_border"`
	HasComplexOwnership bool        `json:"has_complex_ownership"`
	HasBearerShares     bool        `json:"has_bearer_shares"`
	Associates          []Associate `json:"associates"`
}

// AssociateRisk is a stored customer risk score as seen by the entity scorer.
type AssociateRisk struct {
	Score int
	Band  Category
}

// AssociateRiskLookup maps customer IDs to their most recent stored risk.
// The caller supplies it fully resolved; the scorer does no I/O.
type AssociateRiskLookup map[string]AssociateRisk

// EntityScoreInputs records the intermediate values that produced the final
// entity score, for explainability.
type EntityScoreInputs struct {
	BaseScore         int `json:"base_score"`
	MaxAssociateScore int `json:"max_associate_score"`
	Booster           int `json:"booster"`
	AssociateCount    int `json:"associate_count"`
}

// EntityRiskResult is the complete output of the legal-entity scorer.
// Explainability preserves evaluation order so a reviewer reading top to
// bottom follows the causal chain.
type EntityRiskResult struct {
	Score          int               `json:"score"`
	Band           EntityBand        `json:"band"`
	Explainability []string          `json:"explainability"`
	Inputs         EntityScoreInputs `json:"inputs"`
}
