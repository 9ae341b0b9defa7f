package scoring

import "strings"

// Factor names, in evaluation order.
const (
	FactorFiler       = "filer_status"
	FactorPaymentMode = "payment_mode"
	FactorSourceFunds = "source_of_funds"
	FactorPEP         = "pep_status"
	FactorIncomeRatio = "income_ratio"
	FactorGeography   = "geography"
)

// Score computes the risk profile of one customer transaction. It is a total
// function: missing or malformed fields degrade to their default sub-scores.
// The caller is responsible for ensuring a transaction exists at all; this
// function scores whatever facts it is given.
func Score(in RiskInput, policy Policy) RiskResult {
	breakdown := []Factor{
		{Name: FactorFiler, Score: filerScore(in.FilerStatus)},
		{Name: FactorPaymentMode, Score: paymentModeScore(in.PaymentMode)},
		{Name: FactorSourceFunds, Score: sourceOfFundsScore(in.SourceOfFunds)},
		{Name: FactorPEP, Score: pepScore(in.PEPStatus)},
		{Name: FactorIncomeRatio, Score: incomeRatioScore(in.Amount, in.AnnualIncome)},
		{Name: FactorGeography, Score: geographyScore(in.City, policy.GeoRules)},
	}

	sum := 0
	for _, factor := range breakdown {
		sum += factor.Score
	}
	overall := clamp(sum, 0, 100)

	redFlags := evaluateRedFlags(in)

	return RiskResult{
		OverallScore:    overall,
		Category:        categoryFor(overall),
		Breakdown:       breakdown,
		RedFlags:        redFlags,
		Recommendations: recommend(in, overall, len(redFlags)),
	}
}

func filerScore(status string) int {
	switch strings.ToLower(status) {
	case FilerStatusNonFiler:
		return filerScoreNonFiler
	case FilerStatusFiler:
		return filerScoreFiler
	default:
		// unknown or missing
		return filerScoreUnknown
	}
}

func paymentModeScore(mode string) int {
	switch strings.ToLower(mode) {
	case PaymentModeCash:
		return paymentScoreCash
	case PaymentModeForeignRemittance:
		return paymentScoreForeignRemittance
	case PaymentModeCheque:
		return paymentScoreCheque
	case PaymentModeDigitalWallet:
		return paymentScoreDigitalWallet
	default:
		return 0
	}
}

func sourceOfFundsScore(source string) int {
	switch strings.ToLower(source) {
	case "", "unknown":
		// A declared "unknown" is the same signal as nothing on file.
		return sofScoreMissing
	case SourceSalary:
		return sofScoreSalary
	case SourceBusinessIncome:
		return sofScoreBusinessIncome
	case SourceSaleOfAsset:
		return sofScoreSaleOfAsset
	case SourceForeignRemittance:
		return sofScoreForeignRemittance
	case SourceInheritanceGift:
		return sofScoreInheritanceGift
	default:
		// declared but unrecognized
		return sofScoreOther
	}
}

func pepScore(status string) int {
	switch strings.ToLower(status) {
	case PEPYes:
		return pepScoreYes
	case PEPFamily:
		return pepScoreFamily
	default:
		return 0
	}
}

// incomeRatioScore grades transaction size against declared annual income.
// Either value missing or non-positive means affordability cannot be
// assessed, which earns the default moderate penalty rather than a pass.
func incomeRatioScore(amount float64, annualIncome *float64) int {
	if annualIncome == nil || *annualIncome <= 0 || amount <= 0 {
		return DefaultRatioScore
	}
	ratio := amount / *annualIncome * 100
	switch {
	case ratio < ratioMediumPercent:
		return ratioScoreLow
	case ratio < ratioHighPercent:
		return ratioScoreMedium
	default:
		return ratioScoreHigh
	}
}

func geographyScore(city string, rules []MatchRule) int {
	score := 0
	for _, fired := range applyRules(city, rules) {
		score += fired.Weight
	}
	return score
}

// categoryFor is the step function over the overall score. Strict
// greater-than boundaries: exactly 80 is HIGH, exactly 30 is LOW.
func categoryFor(score int) Category {
	switch {
	case score > 80:
		return CategoryVeryHigh
	case score > 60:
		return CategoryHigh
	case score > 30:
		return CategoryMedium
	default:
		return CategoryLow
	}
}

// evaluateRedFlags runs the flag checklist. Flags depend only on payment
// mode, amount, and filer status; they are independent of the numeric score
// and of every other input field.
func evaluateRedFlags(in RiskInput) []RedFlag {
	var flags []RedFlag
	if strings.ToLower(in.PaymentMode) == PaymentModeCash && in.Amount > cashLargeAmount {
		flags = append(flags, RedFlag{Flag: FlagCashLarge, Severity: SeverityHigh})
	}
	if strings.ToLower(in.FilerStatus) == FilerStatusNonFiler && in.Amount > nonFilerLargeAmount {
		flags = append(flags, RedFlag{Flag: FlagNonFilerLarge, Severity: SeverityHigh})
	}
	return flags
}

// recommend derives the STR/CTR/EDD suggestions. Reasons are appended in
// fixed order (str, ctr, edd) so the reasons list length always equals the
// count of true flags.
func recommend(in RiskInput, overall, redFlagCount int) Recommendations {
	rec := Recommendations{Reasons: []string{}}

	if overall > strScoreThreshold || redFlagCount >= strRedFlagCount {
		rec.STR = true
		rec.Reasons = append(rec.Reasons, "overall risk warrants suspicious transaction report review")
	}
	if strings.ToLower(in.PaymentMode) == PaymentModeCash && in.Amount >= ctrCashAmount {
		rec.CTR = true
		rec.Reasons = append(rec.Reasons, "cash transaction meets currency transaction report threshold")
	}
	if overall > eddScoreThreshold || strings.ToLower(in.PEPStatus) == PEPYes || redFlagCount >= eddRedFlagCount {
		rec.EDD = true
		rec.Reasons = append(rec.Reasons, "enhanced due diligence recommended for this customer")
	}

	return rec
}
