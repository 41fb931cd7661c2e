package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"chaincomply/internal/assessment"
	"chaincomply/internal/assessment/evaluator"
	"chaincomply/internal/assessment/profile"
	assessmentstore "chaincomply/internal/assessment/store"
	"chaincomply/internal/registration"
	"chaincomply/internal/registration/handler"
	"chaincomply/internal/registration/models"
	regstore "chaincomply/internal/registration/store"
	id "chaincomply/pkg/domain"
	"chaincomply/pkg/requestcontext"
)

// RegistrationHandlerSuite drives the registration endpoints through the real
// service and scoring engine. Identity comes from a test middleware standing
// in for the token layer.
type RegistrationHandlerSuite struct {
	suite.Suite
	router chi.Router
	owner  id.UserID
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.owner = id.NewUserID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registry, err := evaluator.Catalog()
	s.Require().NoError(err)
	assessor, err := assessment.New(registry, profile.Defaults(), assessmentstore.NewMemory(),
		assessment.WithLogger(logger))
	s.Require().NoError(err)
	svc := registration.New(regstore.NewMemory(), assessor, registration.WithLogger(logger))

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithUserID(r.Context(), s.owner)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	handler.New(svc, logger).Register(router)
	s.router = router
}

func (s *RegistrationHandlerSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *RegistrationHandlerSuite) createDraft() models.Registration {
	rec := s.request(http.MethodPost, "/registrations", handler.CreateRequest{
		EntityType: "exchange",
		LegalName:  "Meridian Digital Markets Ltd",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var reg models.Registration
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&reg))
	return reg
}

func (s *RegistrationHandlerSuite) fullUpdate() handler.UpdateRequest {
	yes := true
	cold, license := 96.0, 100.0
	automated, enhanced, tier1 := evaluator.AbuseReportingAutomated, evaluator.KYCProgramEnhanced, evaluator.JurisdictionTier1
	return handler.UpdateRequest{
		Disclosures: models.Disclosures{
			ColdStoragePct:       &cold,
			CustodyInsurance:     &yes,
			FundSegregation:      &yes,
			WashTradingDetection: &yes,
			BotMonitoring:        &yes,
			AbuseReporting:       &automated,
			KYCProgram:           &enhanced,
			AMLScreening:         &yes,
			SanctionsScreening:   &yes,
			TravelRule:           &yes,
			JurisdictionTier:     &tier1,
			LicenseCoveragePct:   &license,
			IndependentAudit:     &yes,
			ProofOfReserves:      &yes,
			IncidentResponsePlan: &yes,
		},
	}
}

// === Create ===

func (s *RegistrationHandlerSuite) TestCreate_Success() {
	reg := s.createDraft()

	s.Equal(models.StatusDraft, reg.Status)
	s.Equal(s.owner, reg.OwnerID)
	s.Equal(id.EntityTypeExchange, reg.EntityType)
}

func (s *RegistrationHandlerSuite) TestCreate_UnknownEntityType() {
	rec := s.request(http.MethodPost, "/registrations", handler.CreateRequest{
		EntityType: "casino",
		LegalName:  "Lucky Ltd",
	})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RegistrationHandlerSuite) TestCreate_MissingLegalName() {
	rec := s.request(http.MethodPost, "/registrations", handler.CreateRequest{EntityType: "exchange"})

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "legal_name is required")
}

// === Get / List ===

func (s *RegistrationHandlerSuite) TestGet_Success() {
	reg := s.createDraft()

	rec := s.request(http.MethodGet, "/registrations/"+reg.ID.String(), nil)

	s.Require().Equal(http.StatusOK, rec.Code)
	var got models.Registration
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
	s.Equal(reg.ID, got.ID)
}

func (s *RegistrationHandlerSuite) TestGet_UnknownID() {
	rec := s.request(http.MethodGet, "/registrations/"+id.NewRegistrationID().String(), nil)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *RegistrationHandlerSuite) TestGet_MalformedID() {
	rec := s.request(http.MethodGet, "/registrations/not-a-uuid", nil)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *RegistrationHandlerSuite) TestList_EmptyIsJSONArray() {
	rec := s.request(http.MethodGet, "/registrations", nil)

	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq("[]", rec.Body.String())
}

// === Update ===

func (s *RegistrationHandlerSuite) TestUpdate_MergesDisclosures() {
	reg := s.createDraft()
	yes := true

	rec := s.request(http.MethodPatch, "/registrations/"+reg.ID.String(), handler.UpdateRequest{
		Disclosures: models.Disclosures{CustodyInsurance: &yes},
	})

	s.Require().Equal(http.StatusOK, rec.Code)
	var got models.Registration
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
	s.Require().NotNil(got.Disclosures.CustodyInsurance)
	s.True(*got.Disclosures.CustodyInsurance)
}

// === Submit ===

func (s *RegistrationHandlerSuite) TestSubmit_ReturnsAssessment() {
	reg := s.createDraft()
	rec := s.request(http.MethodPatch, "/registrations/"+reg.ID.String(), s.fullUpdate())
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/registrations/"+reg.ID.String()+"/submit", nil)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var result registration.SubmissionResult
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&result))
	s.Equal(models.StatusSubmitted, result.Registration.Status)
	s.Require().NotNil(result.Assessment)
	s.Equal(100.0, result.Assessment.OverallScore)
}

func (s *RegistrationHandlerSuite) TestSubmit_MissingRequiredDisclosure() {
	reg := s.createDraft()

	rec := s.request(http.MethodPost, "/registrations/"+reg.ID.String()+"/submit", nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "missing required facts")
}

func (s *RegistrationHandlerSuite) TestSubmit_TwiceConflicts() {
	reg := s.createDraft()
	rec := s.request(http.MethodPatch, "/registrations/"+reg.ID.String(), s.fullUpdate())
	s.Require().Equal(http.StatusOK, rec.Code)
	rec = s.request(http.MethodPost, "/registrations/"+reg.ID.String()+"/submit", nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.request(http.MethodPost, "/registrations/"+reg.ID.String()+"/submit", nil)

	s.Equal(http.StatusConflict, rec.Code)
}

// === Reopen ===

func (s *RegistrationHandlerSuite) TestReopen_DraftConflicts() {
	reg := s.createDraft()

	rec := s.request(http.MethodPost, "/registrations/"+reg.ID.String()+"/reopen", nil)

	s.Equal(http.StatusConflict, rec.Code)
}
