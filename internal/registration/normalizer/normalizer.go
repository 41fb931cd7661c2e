// Package normalizer turns registration disclosures into the normalized facts
// the risk engine scores. Each entity type gets its own normalizer that emits
// only the factors its scoring profile reads, so a DeFi protocol's custody
// answers (if a registrant fills them in anyway) never leak into its score.
// What a normalizer does not emit comes back Absent from the fact map, and
// the engine decides whether that is a floor score or a hard failure.
package normalizer

import (
	"chaincomply/internal/assessment/evaluator"
	"chaincomply/internal/assessment/facts"
	"chaincomply/internal/registration/models"
	id "chaincomply/pkg/domain"
	dErrors "chaincomply/pkg/domain-errors"
)

// Normalizer maps one registration's disclosures to engine facts.
type Normalizer interface {
	Normalize(reg *models.Registration) (facts.Map, error)
}

// For returns the normalizer for an entity type.
func For(entityType id.EntityType) (Normalizer, error) {
	n, ok := registry[entityType]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeConfiguration, "no normalizer for entity type %s", entityType)
	}
	return n, nil
}

var registry = map[id.EntityType]Normalizer{
	id.EntityTypeExchange:         exchangeNormalizer{},
	id.EntityTypeStablecoinIssuer: stablecoinNormalizer{},
	id.EntityTypeDeFiProtocol:     defiNormalizer{},
	id.EntityTypeNFTMarketplace:   nftMarketplaceNormalizer{},
	id.EntityTypeFund:             fundNormalizer{},
	id.EntityTypeTokenIssuer:      tokenIssuerNormalizer{},
}

func putBool(m facts.Map, name string, v *bool) {
	if v != nil {
		m[name] = facts.Bool(*v)
	}
}

func putPercent(m facts.Map, name string, v *float64) error {
	if v == nil {
		return nil
	}
	val, err := facts.ParsePercent(*v)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "disclosure "+name)
	}
	m[name] = val
	return nil
}

func putChoice(m facts.Map, name string, v *string) {
	if v != nil {
		m[name] = facts.Choice(*v)
	}
}

// custodyFacts, surveillanceFacts, kycFacts, jurisdictionFacts and
// governanceFacts mirror the category groupings of the scoring profiles.
func custodyFacts(m facts.Map, d models.Disclosures) error {
	if err := putPercent(m, evaluator.FactorColdStoragePct, d.ColdStoragePct); err != nil {
		return err
	}
	putBool(m, evaluator.FactorCustodyInsurance, d.CustodyInsurance)
	putBool(m, evaluator.FactorFundSegregation, d.FundSegregation)
	return nil
}

func surveillanceFacts(m facts.Map, d models.Disclosures) {
	putBool(m, evaluator.FactorWashTradingDetection, d.WashTradingDetection)
	putBool(m, evaluator.FactorBotMonitoring, d.BotMonitoring)
	putChoice(m, evaluator.FactorAbuseReporting, d.AbuseReporting)
}

func kycFacts(m facts.Map, d models.Disclosures) {
	putChoice(m, evaluator.FactorKYCProgram, d.KYCProgram)
	putBool(m, evaluator.FactorAMLScreening, d.AMLScreening)
	putBool(m, evaluator.FactorSanctionsScreening, d.SanctionsScreening)
	putBool(m, evaluator.FactorTravelRule, d.TravelRule)
}

func jurisdictionFacts(m facts.Map, d models.Disclosures) error {
	putChoice(m, evaluator.FactorJurisdictionTier, d.JurisdictionTier)
	return putPercent(m, evaluator.FactorLicenseCoverage, d.LicenseCoveragePct)
}

func governanceFacts(m facts.Map, d models.Disclosures) {
	putBool(m, evaluator.FactorIndependentAudit, d.IndependentAudit)
	putBool(m, evaluator.FactorProofOfReserves, d.ProofOfReserves)
	putBool(m, evaluator.FactorIncidentResponse, d.IncidentResponsePlan)
}

func protocolFacts(m facts.Map, d models.Disclosures) {
	putBool(m, evaluator.FactorContractAudit, d.ContractAudit)
	putChoice(m, evaluator.FactorAdminKeyControls, d.AdminKeyControls)
}

type exchangeNormalizer struct{}

func (exchangeNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	if err := custodyFacts(m, d); err != nil {
		return nil, err
	}
	surveillanceFacts(m, d)
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	return m, nil
}

type stablecoinNormalizer struct{}

func (stablecoinNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	if err := custodyFacts(m, d); err != nil {
		return nil, err
	}
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	return m, nil
}

type defiNormalizer struct{}

func (defiNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	protocolFacts(m, d)
	// Proof of reserves is scored inside the protocol-security category for
	// DeFi protocols.
	putBool(m, evaluator.FactorProofOfReserves, d.ProofOfReserves)
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	return m, nil
}

type nftMarketplaceNormalizer struct{}

func (nftMarketplaceNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	surveillanceFacts(m, d)
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	return m, nil
}

type fundNormalizer struct{}

func (fundNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	if err := custodyFacts(m, d); err != nil {
		return nil, err
	}
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	return m, nil
}

type tokenIssuerNormalizer struct{}

func (tokenIssuerNormalizer) Normalize(reg *models.Registration) (facts.Map, error) {
	m := facts.Map{}
	d := reg.Disclosures
	kycFacts(m, d)
	if err := jurisdictionFacts(m, d); err != nil {
		return nil, err
	}
	governanceFacts(m, d)
	protocolFacts(m, d)
	return m, nil
}
