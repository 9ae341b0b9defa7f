package scoring

import "fmt"

// ScoreEntity computes the risk profile of a legal entity. The entity
// inherits the highest risk among its linked owners and controllers rather
// than an average: risk follows the strongest link. The caller supplies the
// associate lookup fully resolved so this stays a pure function.
func ScoreEntity(in EntityRiskInput, lookup AssociateRiskLookup, policy Policy) EntityRiskResult {
	var reasons []string

	// Base score from entity-level complexity indicators, in check order.
	base := entityBaseScore
	for _, fired := range applyRules(in.Sector, policy.SectorRules) {
		base += fired.Weight
		reasons = append(reasons, fmt.Sprintf("sector matches %s keywords (+%d)", fired.Tag, fired.Weight))
	}
	if in.HasCrossBorder {
		base += entityCrossBorderWeight
		reasons = append(reasons, fmt.Sprintf("cross-border activity (+%d)", entityCrossBorderWeight))
	}
	if in.HasComplexOwnership {
		base += entityComplexOwnerWeight
		reasons = append(reasons, fmt.Sprintf("complex ownership structure (+%d)", entityComplexOwnerWeight))
	}
	if in.HasBearerShares {
		base += entityBearerSharesWeight
		reasons = append(reasons, fmt.Sprintf("bearer shares issued (+%d)", entityBearerSharesWeight))
	}
	base = clamp(base, 0, 100)

	// Highest risk among linked persons. Associates without a stored
	// assessment count at the default score, not zero.
	maxAssociate := 0
	maxRole := ""
	for _, associate := range in.Associates {
		if associate.CustomerID == "" {
			continue
		}
		score := DefaultAssociateScore
		if risk, ok := lookup[associate.CustomerID]; ok {
			score = risk.Score
		}
		if score > maxAssociate {
			maxAssociate = score
			maxRole = associate.Role
		}
	}
	if maxRole != "" {
		reasons = append(reasons, fmt.Sprintf("highest linked-person risk %d via role %q", maxAssociate, maxRole))
	}

	// Complexity-by-volume booster.
	booster := 0
	if len(in.Associates) >= entityBoosterAssociateMin {
		booster = entityAssociateBooster
		reasons = append(reasons, fmt.Sprintf("%d or more associates (+%d)", entityBoosterAssociateMin, entityAssociateBooster))
	}

	final := base
	if maxAssociate > final {
		final = maxAssociate
	}
	final = clamp(final+booster, 0, 100)

	if reasons == nil {
		reasons = []string{}
	}

	return EntityRiskResult{
		Score:          final,
		Band:           entityBandFor(final),
		Explainability: reasons,
		Inputs: EntityScoreInputs{
			BaseScore:         base,
			MaxAssociateScore: maxAssociate,
			Booster:           booster,
			AssociateCount:    len(in.Associates),
		},
	}
}

// entityBandFor uses inclusive boundaries (>=80 High, >=50 Medium), unlike
// the customer category function. The divergence is inherited policy and is
// kept until product confirms a unification.
func entityBandFor(score int) EntityBand {
	switch {
	case score >= entityBandHighThreshold:
		return EntityBandHigh
	case score >= entityBandMediumThreshold:
		return EntityBandMedium
	default:
		return EntityBandLow
	}
}
