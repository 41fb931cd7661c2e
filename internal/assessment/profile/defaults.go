package profile

import (
	ev "chaincomply/internal/assessment/evaluator"
	id "chaincomply/pkg/domain"
)

// Defaults returns the portal's scoring profiles for every supported entity
// type. Category and factor order here is the order the UI renders.
func Defaults() Set {
	custody := Category{
		Name: CategoryCustody,
		Factors: []string{
			ev.FactorColdStoragePct,
			ev.FactorCustodyInsurance,
			ev.FactorFundSegregation,
		},
	}
	surveillance := Category{
		Name: CategoryMarketSurveillance,
		Factors: []string{
			ev.FactorWashTradingDetection,
			ev.FactorBotMonitoring,
			ev.FactorAbuseReporting,
		},
	}
	kycAML := Category{
		Name: CategoryKYCAML,
		Factors: []string{
			ev.FactorKYCProgram,
			ev.FactorAMLScreening,
			ev.FactorSanctionsScreening,
			ev.FactorTravelRule,
		},
	}
	jurisdiction := Category{
		Name: CategoryJurisdiction,
		Factors: []string{
			ev.FactorJurisdictionTier,
			ev.FactorLicenseCoverage,
		},
	}
	governance := Category{
		Name: CategoryGovernance,
		Factors: []string{
			ev.FactorIndependentAudit,
			ev.FactorProofOfReserves,
			ev.FactorIncidentResponse,
		},
	}
	protocol := Category{
		Name: CategoryProtocolSecurity,
		Factors: []string{
			ev.FactorContractAudit,
			ev.FactorAdminKeyControls,
		},
	}

	// DeFi protocols rarely custody funds directly; custody signals are folded
	// into protocol security via an explicit weight map that leans on the
	// contract audit.
	defiProtocol := Category{
		Name: CategoryProtocolSecurity,
		Factors: []string{
			ev.FactorContractAudit,
			ev.FactorAdminKeyControls,
			ev.FactorProofOfReserves,
		},
		Weights: map[string]float64{
			ev.FactorContractAudit:    15,
			ev.FactorAdminKeyControls: 10,
			ev.FactorProofOfReserves:  5,
		},
	}

	return Set{
		id.EntityTypeExchange: {
			EntityType: id.EntityTypeExchange,
			Categories: []Category{custody, surveillance, kycAML, jurisdiction, governance},
		},
		id.EntityTypeStablecoinIssuer: {
			EntityType: id.EntityTypeStablecoinIssuer,
			Categories: []Category{custody, kycAML, jurisdiction, governance},
		},
		id.EntityTypeDeFiProtocol: {
			EntityType: id.EntityTypeDeFiProtocol,
			Categories: []Category{defiProtocol, kycAML, jurisdiction, governance},
		},
		id.EntityTypeNFTMarketplace: {
			EntityType: id.EntityTypeNFTMarketplace,
			Categories: []Category{surveillance, kycAML, jurisdiction, governance},
		},
		id.EntityTypeFund: {
			EntityType: id.EntityTypeFund,
			Categories: []Category{custody, kycAML, jurisdiction, governance},
		},
		id.EntityTypeTokenIssuer: {
			EntityType: id.EntityTypeTokenIssuer,
			Categories: []Category{kycAML, jurisdiction, governance, protocol},
		},
	}
}
