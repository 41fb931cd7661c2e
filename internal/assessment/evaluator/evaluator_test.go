package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaincomply/internal/assessment/facts"
)

func TestLinearPercent(t *testing.T) {
	e := LinearPercent("cold_storage_pct", "cold storage share", "raise it", 20, 50, 95)

	t.Run("interpolates between floor and ideal", func(t *testing.T) {
		cases := []struct {
			pct  float64
			want float64
		}{
			{0, 0},
			{50, 0},     // at floor
			{72.5, 10},  // midpoint
			{95, 20},    // at ideal
			{100, 20},   // above ideal stays capped
			{49.999, 0}, // just below floor
		}
		for _, tc := range cases {
			got := e.Evaluate(facts.Percent(tc.pct))
			assert.InDelta(t, tc.want, got.Score, 1e-9, "pct=%v", tc.pct)
		}
	})

	t.Run("score never leaves [0,max]", func(t *testing.T) {
		for pct := 0.0; pct <= 100.0; pct += 2.5 {
			got := e.Evaluate(facts.Percent(pct))
			assert.GreaterOrEqual(t, got.Score, 0.0)
			assert.LessOrEqual(t, got.Score, got.MaxScore)
			assert.Equal(t, 20.0, got.MaxScore, "maxScore is evaluator-fixed")
		}
	})

	t.Run("wrong kind scores conservative zero", func(t *testing.T) {
		got := e.Evaluate(facts.Bool(true))
		assert.Zero(t, got.Score)
	})

	t.Run("panics on inverted thresholds", func(t *testing.T) {
		assert.Panics(t, func() {
			LinearPercent("bad", "", "", 10, 90, 50)
		})
	})
}

func TestBoolControl(t *testing.T) {
	e := BoolControl("fund_segregation", "segregated funds", "segregate", 10, Required())

	assert.Equal(t, 10.0, e.Evaluate(facts.Bool(true)).Score)
	assert.Zero(t, e.Evaluate(facts.Bool(false)).Score)
	assert.True(t, e.Required())
}

func TestChoiceLookup(t *testing.T) {
	e := ChoiceLookup("kyc_program", "kyc tier", "upgrade kyc", 10, map[string]float64{
		"none": 0, "basic": 5, "enhanced": 10,
	})

	t.Run("known choices follow the table", func(t *testing.T) {
		assert.Equal(t, 5.0, e.Evaluate(facts.Choice("basic")).Score)
		assert.Equal(t, 10.0, e.Evaluate(facts.Choice("enhanced")).Score)
	})

	t.Run("unknown choice scores zero, never errors", func(t *testing.T) {
		assert.Zero(t, e.Evaluate(facts.Choice("platinum")).Score)
	})
}

func TestAbsentFactFloor(t *testing.T) {
	t.Run("default floor is zero", func(t *testing.T) {
		e := BoolControl("custody_insurance", "insurance", "insure", 10)
		assert.Zero(t, e.Evaluate(facts.Absent()).Score)
	})

	t.Run("configured floor applies only to absent facts", func(t *testing.T) {
		e := BoolControl("custody_insurance", "insurance", "insure", 10, WithFloor(2))
		assert.Equal(t, 2.0, e.Evaluate(facts.Absent()).Score)
		assert.Zero(t, e.Evaluate(facts.Bool(false)).Score)
	})
}

func TestEvaluateDeterminism(t *testing.T) {
	e := LinearPercent("license_coverage_pct", "license share", "close gap", 10, 0, 100)
	first := e.Evaluate(facts.Percent(37.5))
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, e.Evaluate(facts.Percent(37.5)))
	}
}

func TestEvaluateNeverAttachesRecommendation(t *testing.T) {
	// Recommendations are the recommend pass's job; evaluation output is bare.
	e := BoolControl("proof_of_reserves", "por", "publish proof of reserves", 10)
	assert.Empty(t, e.Evaluate(facts.Bool(false)).Recommendation)
}

func TestNewRegistry(t *testing.T) {
	t.Run("rejects duplicate factor names", func(t *testing.T) {
		a := BoolControl("dup", "", "", 5)
		b := BoolControl("dup", "", "", 7)
		_, err := NewRegistry(a, b)
		require.Error(t, err)
	})
}

func TestCatalog(t *testing.T) {
	reg, err := Catalog()
	require.NoError(t, err)

	t.Run("every factor constant is registered", func(t *testing.T) {
		for _, name := range []string{
			FactorColdStoragePct, FactorCustodyInsurance, FactorFundSegregation,
			FactorWashTradingDetection, FactorBotMonitoring, FactorAbuseReporting,
			FactorKYCProgram, FactorAMLScreening, FactorSanctionsScreening, FactorTravelRule,
			FactorJurisdictionTier, FactorLicenseCoverage,
			FactorIndependentAudit, FactorProofOfReserves, FactorIncidentResponse,
			FactorContractAudit, FactorAdminKeyControls,
		} {
			_, ok := reg.Get(name)
			assert.True(t, ok, "factor %s missing from catalog", name)
		}
	})

	t.Run("recommendation text names its control", func(t *testing.T) {
		e, ok := reg.Get(FactorColdStoragePct)
		require.True(t, ok)
		assert.Contains(t, e.Recommendation(), "cold-storage")

		e, ok = reg.Get(FactorKYCProgram)
		require.True(t, ok)
		assert.Contains(t, e.Recommendation(), "KYC")
	})

	t.Run("validated output for every fact shape", func(t *testing.T) {
		probes := []facts.Value{
			facts.Absent(), facts.Bool(true), facts.Bool(false),
			facts.Percent(0), facts.Percent(100), facts.Choice("enhanced"),
		}
		for _, name := range []string{FactorColdStoragePct, FactorKYCProgram, FactorAMLScreening} {
			e, ok := reg.Get(name)
			require.True(t, ok)
			for _, v := range probes {
				fs := e.Evaluate(v)
				assert.NoError(t, fs.Validate(), "factor %s input %s", name, v)
			}
		}
	})
}
