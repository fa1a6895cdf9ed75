// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marvetti-onboarding/internal/ai"
	"marvetti-onboarding/internal/common/config"
	"marvetti-onboarding/internal/common/logger"
	"marvetti-onboarding/internal/models"
	"marvetti-onboarding/internal/orchestrator"
	"marvetti-onboarding/internal/session"
)

// ==========================
// Fakes
// ==========================

type stubArtifacts struct{}

func (stubArtifacts) StageSummary(ctx context.Context, stageName string, payload interface{}) string {
	return "<p>" + stageName + "</p>"
}

func (stubArtifacts) WhatsAppDraft(ctx context.Context, stageName, clientName string) string {
	return "Hi " + clientName
}

type stubImages struct{}

func (stubImages) GenerateLogo(ctx context.Context, businessName, niche, instructions string) (*ai.GeneratedImage, error) {
	return &ai.GeneratedImage{MimeType: "image/png", Data: []byte("img")}, nil
}

// ==========================
// Test Helper Functions
// ==========================

type testServer struct {
	srv     *Server
	orch    *orchestrator.Orchestrator
	handler http.Handler
}

func newTestServer(t *testing.T, checks ...ReadinessCheck) *testServer {
	orch := orchestrator.New(session.NewMemoryStore(), stubArtifacts{}, stubImages{}, logger.NewTestLogger(t))
	srv := New(orch, config.ServerConfig{Address: ":0"}, logger.NewTestLogger(t), checks...)
	return &testServer{srv: srv, orch: orch, handler: srv.Routes()}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) models.ApplicationState {
	t.Helper()
	var state models.ApplicationState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func registrationBody() map[string]interface{} {
	return map[string]interface{}{
		"stage": 1,
		"payload": map[string]interface{}{
			"companyStatus": "Not Registered",
			"names":         []string{"KHUMALO TRADING", "", "", ""},
			"address":       "9 Long Street",
			"city":          "Cape Town",
			"postalCode":    "8001",
			"province":      "Western Cape",
			"niche":         "General Trading",
			"description":   "Wholesale trading",
			"uif":           "Yes",
			"bank":          "Yes",
			"directors": []map[string]interface{}{{
				"id":          "d-1",
				"fullName":    "Sipho Khumalo",
				"idNumber":    "9001015800085",
				"nationality": "South African",
				"email":       "sipho@example.co.za",
				"cell":        "+27 82 555 0001",
			}},
		},
	}
}

func createSession(t *testing.T, ts *testServer) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeState(t, rec).SessionID
}

// ==========================
// Session Endpoint Tests
// ==========================

func TestCreateAndGetSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	created := decodeState(t, rec)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, models.StageRegistration, created.CurrentStage)

	rec = ts.do(t, http.MethodGet, "/api/v1/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.SessionID, decodeState(t, rec).SessionID)
}

func TestGetSession_NotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SESSION_NOT_FOUND", body["code"])
}

func TestResetSession(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ==========================
// Completion Endpoint Tests
// ==========================

func TestCompleteStage(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", registrationBody())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	state := decodeState(t, rec)
	assert.Equal(t, models.StageLogo, state.CurrentStage)
	require.NotNil(t, state.Client)
	assert.Equal(t, "Sipho", state.Client.FirstName)

	ts.orch.Wait()
}

func TestCompleteStage_MismatchConflict(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	body := map[string]interface{}{
		"stage": 6,
		"payload": map[string]interface{}{
			"instructions": "build it",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		},
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCompleteStage_InvalidPayload(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	body := map[string]interface{}{
		"stage":   1,
		"payload": map[string]interface{}{"niche": "General Trading"},
	}
	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCompleteStage_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+id+"/complete", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ==========================
// Navigation and Toggle Tests
// ==========================

func TestNavigate(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/navigate", map[string]int{"stage": 6})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/navigate", map[string]int{"stage": 42})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/navigate", map[string]int{"stage": 1})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestToggleEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/admin", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeState(t, rec).IsAdminMode)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/theme", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ThemeLight, decodeState(t, rec).Theme)
}

// ==========================
// Logo Endpoint Tests
// ==========================

func TestLogoEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", registrationBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/logo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var remaining logoRemainingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &remaining))
	assert.Equal(t, 15, remaining.Remaining)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/logo/generate",
		map[string]string{"style": "bold", "instructions": "lion crest"})
	require.Equal(t, http.StatusOK, rec.Code)

	var preview logoPreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Contains(t, preview.Image, "data:image/png;base64,")
	assert.Equal(t, 14, preview.Remaining)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/logo/accept",
		map[string]string{"imageRef": "logos/final.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StageProfile, decodeState(t, rec).CurrentStage)

	ts.orch.Wait()
}

func TestLogoGenerate_LockedStage(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/logo/generate", map[string]string{})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoHuman(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", registrationBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/logo/human", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StageProfile, decodeState(t, rec).CurrentStage)

	ts.orch.Wait()
}

// ==========================
// WhatsApp Endpoint Tests
// ==========================

func TestWhatsAppLink(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/complete", registrationBody())
	require.Equal(t, http.StatusOK, rec.Code)
	ts.orch.Wait()

	rec = ts.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/whatsapp", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp whatsappResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Hi Sipho", resp.Draft)
	assert.Equal(t, "https://wa.me/27825550001?text=Hi%20Sipho", resp.Link)
}

func TestWhatsAppLink_EmptyDraft(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)

	rec := ts.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/whatsapp", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp whatsappResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Draft)
	assert.Empty(t, resp.Link)
}

// ==========================
// Catalog Endpoint Tests
// ==========================

func TestCatalog(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp catalogResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Stages, 12)
	assert.Len(t, resp.Niches, 10)
	assert.Len(t, resp.Provinces, 9)
	assert.Len(t, resp.LogoStyles, 5)
	assert.Equal(t, "1. Register Company", resp.Stages[models.StageRegistration].Name)
}

func TestCompliance(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/compliance?niche=Security+Guarding", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp complianceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{
		"PSIRA Registration",
		"COIDA (Letter of Good Standing)",
		"UIF & PAYE Compliance",
		"Public Liability Insurance",
	}, resp.Checklist)

	rec = ts.do(t, http.MethodGet, "/api/v1/compliance?niche=Unknown", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Checklist, "Tax Clearance Certificate")
}

// ==========================
// Health Endpoint Tests
// ==========================

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady_FailingCheck(t *testing.T) {
	ts := newTestServer(t, func(ctx context.Context) error {
		return fmt.Errorf("redis unreachable")
	})

	rec := ts.do(t, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
