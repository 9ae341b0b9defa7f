package scoring

// Sub-score weights and thresholds. These encode policy decisions that were
// previously buried in arithmetic; naming them keeps each one independently
// testable and tunable without touching control flow. The threshold values
// themselves (ratio bands, associate booster cutoff) are carried over from
// the original policy verbatim.

// Filer-status sub-scores.
const (
	filerScoreNonFiler = 20
	filerScoreUnknown  = 10
	filerScoreFiler    = 0
)

// Payment-mode sub-scores. Unrecognized modes score 0.
const (
	paymentScoreCash              = 15
	paymentScoreForeignRemittance = 8
	paymentScoreCheque            = 5
	paymentScoreDigitalWallet     = 3
)

// Source-of-funds sub-scores. An empty source is the highest-uncertainty
// case: an unexplained source of funds is itself a risk signal.
const (
	sofScoreSalary            = 0
	sofScoreBusinessIncome    = 5
	sofScoreSaleOfAsset       = 10
	sofScoreForeignRemittance = 15
	sofScoreInheritanceGift   = 12
	sofScoreOther             = 10
	sofScoreMissing           = 20
)

// PEP sub-scores.
const (
	pepScoreYes    = 10
	pepScoreFamily = 5
)

// Income-ratio sub-scores and thresholds. The ratio is amount/annualIncome
// expressed as a percentage. DefaultRatioScore applies when either value is
// missing or non-positive: affordability cannot be assessed, moderate
// uncertainty penalty.
const (
	ratioScoreLow      = 0
	ratioScoreMedium   = 15
	ratioScoreHigh     = 25
	DefaultRatioScore  = 10
	ratioMediumPercent = 50
	ratioHighPercent   = 150
)

// Red-flag amount thresholds (currency units).
const (
	cashLargeAmount     = 500000
	nonFilerLargeAmount = 1000000
)

// Recommendation thresholds.
const (
	strScoreThreshold  = 80
	strRedFlagCount    = 3
	ctrCashAmount      = 2000000
	eddScoreThreshold  = 60
	eddRedFlagCount    = 2
)

// Entity scorer constants.
const (
	entityBaseScore            = 20
	entityCrossBorderWeight    = 15
	entityComplexOwnerWeight   = 15
	entityBearerSharesWeight   = 25
	entityAssociateBooster     = 5
	entityBoosterAssociateMin  = 5
	entityBandMediumThreshold  = 50
	entityBandHighThreshold    = 80

	// DefaultAssociateScore stands in for linked persons that have no stored
	// risk assessment yet.
	DefaultAssociateScore = 20
)

// clamp bounds v to [lo, hi].
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
