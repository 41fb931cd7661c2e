package evaluator

// Factor names. Normalizers emit facts under these keys and profiles
// reference them; keep the three in sync through these constants.
const (
	FactorColdStoragePct   = "cold_storage_pct"
	FactorCustodyInsurance = "custody_insurance"
	FactorFundSegregation  = "fund_segregation"

	FactorWashTradingDetection = "wash_trading_detection"
	FactorBotMonitoring        = "bot_monitoring"
	FactorAbuseReporting       = "abuse_reporting"

	FactorKYCProgram         = "kyc_program"
	FactorAMLScreening       = "aml_screening"
	FactorSanctionsScreening = "sanctions_screening"
	FactorTravelRule         = "travel_rule"

	FactorJurisdictionTier = "jurisdiction_tier"
	FactorLicenseCoverage  = "license_coverage_pct"

	FactorIndependentAudit = "independent_audit"
	FactorProofOfReserves  = "proof_of_reserves"
	FactorIncidentResponse = "incident_response_plan"

	FactorContractAudit    = "contract_audit"
	FactorAdminKeyControls = "admin_key_controls"
)

// Choice vocabularies.
const (
	AbuseReportingNone      = "none"
	AbuseReportingManual    = "manual"
	AbuseReportingAutomated = "automated"

	KYCProgramNone     = "none"
	KYCProgramBasic    = "basic"
	KYCProgramEnhanced = "enhanced"

	JurisdictionTier1       = "tier1"
	JurisdictionTier2       = "tier2"
	JurisdictionTier3       = "tier3"
	JurisdictionUnregulated = "unregulated"
)

// Catalog returns the full evaluator set with the portal's scoring policy:
// max scores are the factor weights within their categories, thresholds drive
// remediation recommendations, and recommendation texts name the specific
// control a compliance officer must act on.
func Catalog() (*Registry, error) {
	return NewRegistry(
		// Custody practices.
		LinearPercent(FactorColdStoragePct,
			"Share of customer assets held in cold storage",
			"Increase the cold-storage share of customer assets; holdings below the expected range leave funds exposed to hot-wallet compromise.",
			20, 50, 95,
			Required(), WithThreshold(0.7),
		),
		BoolControl(FactorCustodyInsurance,
			"Insurance coverage for custodied customer assets",
			"Obtain custody insurance covering customer assets against theft and key loss.",
			10, WithThreshold(0.5),
		),
		BoolControl(FactorFundSegregation,
			"Customer funds segregated from operating capital",
			"Segregate customer funds from operating capital in separately controlled accounts.",
			10, Required(), WithThreshold(0.5),
		),

		// Market-abuse controls.
		BoolControl(FactorWashTradingDetection,
			"Automated wash-trading detection on order flow",
			"Deploy automated wash-trading detection across all trading pairs.",
			12, WithThreshold(0.5),
		),
		BoolControl(FactorBotMonitoring,
			"Monitoring for manipulative bot activity",
			"Add monitoring for manipulative bot activity, including spoofing and layering patterns.",
			8, WithThreshold(0.5),
		),
		ChoiceLookup(FactorAbuseReporting,
			"Market-abuse reporting process maturity",
			"Automate market-abuse reporting to the relevant surveillance authority; manual-only reporting misses intraday abuse.",
			10,
			map[string]float64{
				AbuseReportingNone:      0,
				AbuseReportingManual:    4,
				AbuseReportingAutomated: 10,
			},
			WithThreshold(0.5),
		),

		// KYC / AML program.
		ChoiceLookup(FactorKYCProgram,
			"Customer identification program tier",
			"Upgrade the KYC program to enhanced due diligence, including beneficial-ownership checks for corporate accounts.",
			10,
			map[string]float64{
				KYCProgramNone:     0,
				KYCProgramBasic:    5,
				KYCProgramEnhanced: 10,
			},
			Required(), WithThreshold(0.7),
		),
		BoolControl(FactorAMLScreening,
			"Ongoing AML transaction screening",
			"Implement ongoing AML transaction screening with documented escalation procedures.",
			10, Required(), WithThreshold(0.5),
		),
		BoolControl(FactorSanctionsScreening,
			"Sanctions-list screening of counterparties",
			"Screen counterparties against consolidated sanctions lists at onboarding and on every list update.",
			10, WithThreshold(0.5),
		),
		BoolControl(FactorTravelRule,
			"Travel-rule data exchange for qualifying transfers",
			"Adopt a travel-rule data-exchange solution for transfers above the reporting threshold.",
			5, WithThreshold(0.5),
		),

		// Jurisdictional risk.
		ChoiceLookup(FactorJurisdictionTier,
			"Regulatory tier of the primary operating jurisdiction",
			"Establish a regulated presence in a recognized jurisdiction; operating from an unregulated base blocks most institutional counterparties.",
			15,
			map[string]float64{
				JurisdictionTier1:       15,
				JurisdictionTier2:       10,
				JurisdictionTier3:       5,
				JurisdictionUnregulated: 0,
			},
			Required(), WithThreshold(0.4),
		),
		LinearPercent(FactorLicenseCoverage,
			"Share of operating jurisdictions with an active license",
			"Close the licensing gap: obtain or formally withdraw from jurisdictions where the entity operates without an active license.",
			10, 0, 100,
			WithThreshold(0.6),
		),

		// Governance and transparency.
		BoolControl(FactorIndependentAudit,
			"Annual independent financial audit",
			"Commission an annual independent audit from a recognized firm.",
			10, WithThreshold(0.5),
		),
		BoolControl(FactorProofOfReserves,
			"Published proof-of-reserves attestation",
			"Publish a recurring proof-of-reserves attestation covering all customer asset classes.",
			10, WithThreshold(0.5),
		),
		BoolControl(FactorIncidentResponse,
			"Documented security incident-response plan",
			"Document and rehearse a security incident-response plan with defined notification deadlines.",
			5, WithThreshold(0.5),
		),

		// DeFi-specific controls.
		BoolControl(FactorContractAudit,
			"Third-party audit of deployed smart contracts",
			"Obtain a third-party security audit of all deployed smart contracts and publish the findings.",
			12, WithThreshold(0.5),
		),
		ChoiceLookup(FactorAdminKeyControls,
			"Administrative key management for protocol upgrades",
			"Move protocol admin keys behind a timelocked multisig; unilateral upgrade keys are a custody risk for all depositors.",
			8,
			map[string]float64{
				"single_key":        0,
				"multisig":          5,
				"timelock_multisig": 8,
			},
			WithThreshold(0.5),
		),
	)
}
