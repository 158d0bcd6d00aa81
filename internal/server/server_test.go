package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/interaction"
	"github.com/Skufu/MedSage/internal/medapi"
	"github.com/Skufu/MedSage/internal/profile"
	"github.com/Skufu/MedSage/internal/session"
	"github.com/Skufu/MedSage/internal/wizard"
)

const testSecret = "test-secret"

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type fakePredictor struct {
	err error
}

func (f fakePredictor) Predict(_ context.Context, symptoms []string) (*medapi.DiseaseData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &medapi.DiseaseData{
		Disease:     "Common Cold",
		Overview:    "A viral infection",
		Precautions: []string{"Rest", "Fluids"},
	}, nil
}

type fakeSource struct{}

func (fakeSource) Interactions(_ context.Context, drugs []string) ([]medapi.InteractionEntry, error) {
	return nil, errors.New("connection refused")
}

func newTestRouter(t *testing.T, predictor wizard.Predictor, ready HealthChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zerolog.Nop()
	sessions := session.NewStore(time.Hour, func(results wizard.ResultStore) *wizard.Wizard {
		return wizard.New(predictor, results, logger)
	})
	return New(Options{
		Sessions:   sessions,
		SessionTTL: time.Hour,
		Resolvers: map[string]interaction.Resolver{
			interaction.ModeStatic: interaction.NewStaticResolver(),
			interaction.ModeRemote: interaction.NewRemoteResolver(fakeSource{}, logger),
		},
		Profiles:       profile.NewService(profile.NewMemoryStore(), logger),
		Authn:          auth.NewJWTAuthenticator(testSecret),
		Ready:          ready,
		CORSOrigins:    []string{"http://localhost:3000"},
		RateLimitRPS:   100,
		RateLimitBurst: 100,
		Logger:         logger,
	})
}

type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
	token  string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.cookie = ck
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

type transition struct {
	Outcome  wizard.Outcome  `json:"outcome"`
	Location string          `json:"location"`
	Snapshot wizard.Snapshot `json:"snapshot"`
	Error    string          `json:"error"`
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, fakePredictor{}, fakeDB{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	tests := []struct {
		name  string
		ready HealthChecker
		code  int
		body  string
	}{
		{"disabled", nil, http.StatusOK, `"store":"disabled"`},
		{"healthy", fakeDB{}, http.StatusOK, `"store":"ok"`},
		{"unhealthy", fakeDB{err: errors.New("down")}, http.StatusServiceUnavailable, `"status":"degraded"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, fakePredictor{}, tt.ready)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/readyz", nil)
			router.ServeHTTP(w, req)
			if w.Code != tt.code || !strings.Contains(w.Body.String(), tt.body) {
				t.Fatalf("got %d %s", w.Code, w.Body.String())
			}
		})
	}
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("12345"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/echo", strings.NewReader("01234567890"))
		router.ServeHTTP(w, req)
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestWizardRequiresSession(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	if w := c.do("GET", "/api/wizard", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := c.do("GET", "/api/recommendations", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestWizardFullFlow(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}

	w := c.do("POST", "/api/wizard", "")
	if w.Code != http.StatusCreated || c.cookie == nil {
		t.Fatalf("expected session created, got %d", w.Code)
	}

	if w := c.do("POST", "/api/wizard/items/symptoms", `{"value":"Fever"}`); w.Code != http.StatusOK {
		t.Fatalf("add item: %d %s", w.Code, w.Body.String())
	}
	if w := c.do("PATCH", "/api/wizard/form", `{"age":34,"gender":"female"}`); w.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", w.Code, w.Body.String())
	}

	w = c.do("GET", "/api/wizard/diseases", "")
	if !strings.Contains(w.Body.String(), "Common Cold") {
		t.Fatalf("expected disease hints, got %s", w.Body.String())
	}

	var tr transition
	for i := 0; i < 4; i++ {
		w = c.do("POST", "/api/wizard/advance", "")
		if w.Code != http.StatusOK {
			t.Fatalf("advance %d: %d %s", i, w.Code, w.Body.String())
		}
	}
	decode(t, w, &tr)
	if tr.Snapshot.Step != wizard.StepDiagnosis || tr.Snapshot.PredictedDisease != "Common Cold" {
		t.Fatalf("expected diagnosis with prediction, got %+v", tr.Snapshot)
	}
	if tr.Snapshot.Form.Age != 34 || len(tr.Snapshot.Form.Symptoms) != 1 {
		t.Fatalf("form not carried: %+v", tr.Snapshot.Form)
	}

	w = c.do("GET", "/api/recommendations", "")
	var data medapi.DiseaseData
	decode(t, w, &data)
	if w.Code != http.StatusOK || data.Disease != "Common Cold" || len(data.Precautions) != 2 {
		t.Fatalf("unexpected recommendations %d %+v", w.Code, data)
	}

	c.do("POST", "/api/wizard/advance", "")
	w = c.do("POST", "/api/wizard/advance", "")
	tr = transition{}
	decode(t, w, &tr)
	if tr.Outcome != wizard.OutcomeNavigateResults || tr.Location != wizard.ResultsPath {
		t.Fatalf("expected navigation to results, got %+v", tr)
	}
	if tr.Snapshot.Step != wizard.StepReview {
		t.Fatalf("must stay on review, got %s", tr.Snapshot.Step)
	}
}

func TestWizardPredictionFailureBlocksAdvance(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{err: medapi.ErrTransport}, nil)}
	c.do("POST", "/api/wizard", "")
	for i := 0; i < 4; i++ {
		c.do("POST", "/api/wizard/advance", "")
	}

	w := c.do("POST", "/api/wizard/advance", "")
	var tr transition
	decode(t, w, &tr)
	if w.Code != http.StatusConflict || tr.Snapshot.Step != wizard.StepDiagnosis {
		t.Fatalf("expected conflict on diagnosis, got %d %+v", w.Code, tr)
	}
	if tr.Snapshot.Error == "" {
		t.Fatal("expected error message in snapshot")
	}

	if w := c.do("POST", "/api/wizard/retry", ""); w.Code != http.StatusOK {
		t.Fatalf("retry should be accepted, got %d", w.Code)
	}
	if w := c.do("GET", "/api/recommendations", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected no results after failure, got %d", w.Code)
	}
}

func TestWizardRetryOffDiagnosis(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	c.do("POST", "/api/wizard", "")
	if w := c.do("POST", "/api/wizard/retry", ""); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestWizardFormValidation(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	c.do("POST", "/api/wizard", "")

	tests := []struct {
		method, path, body string
	}{
		{"PATCH", "/api/wizard/form", `{"gender":"robot"}`},
		{"PATCH", "/api/wizard/form", `{"age":-1}`},
		{"POST", "/api/wizard/items/allergies", `{"value":"Pollen"}`},
		{"POST", "/api/wizard/items/symptoms", `{"value":"  "}`},
		{"PATCH", "/api/wizard/form", `not json`},
	}
	for _, tt := range tests {
		if w := c.do(tt.method, tt.path, tt.body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s %s %s: expected 400, got %d", tt.method, tt.path, tt.body, w.Code)
		}
	}
}

func TestWizardSearchCommitAndRemove(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	c.do("POST", "/api/wizard", "")

	w := c.do("PUT", "/api/wizard/search/currentMedications", `{"q":"stat"}`)
	if !strings.Contains(w.Body.String(), "Atorvastatin") || !strings.Contains(w.Body.String(), `"open":true`) {
		t.Fatalf("unexpected search view %s", w.Body.String())
	}

	c.do("PUT", "/api/wizard/search/currentMedications", `{"q":"  Fish Oil "}`)
	w = c.do("POST", "/api/wizard/search/currentMedications/commit", "")
	if !strings.Contains(w.Body.String(), `"selected":true`) || !strings.Contains(w.Body.String(), "Fish Oil") {
		t.Fatalf("expected free text committed, got %s", w.Body.String())
	}

	w = c.do("POST", "/api/wizard/search/currentMedications/commit", "")
	if !strings.Contains(w.Body.String(), `"selected":false`) {
		t.Fatalf("blank commit must select nothing, got %s", w.Body.String())
	}

	c.do("POST", "/api/wizard/search/currentMedications/select", `{"value":"Aspirin"}`)
	w = c.do("DELETE", "/api/wizard/items/currentMedications?value=Fish+Oil", "")
	var snap wizard.Snapshot
	decode(t, w, &snap)
	if len(snap.Form.CurrentMedications) != 1 || snap.Form.CurrentMedications[0] != "Aspirin" {
		t.Fatalf("unexpected medications %v", snap.Form.CurrentMedications)
	}

	if w := c.do("POST", "/api/wizard/search/currentMedications/dismiss", ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = c.do("POST", "/api/wizard/search/currentMedications/focus", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"open":true`) {
		t.Fatalf("focus must reopen the panel, got %d %s", w.Code, w.Body.String())
	}
}

func TestWizardBlankSelectKeepsPanel(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	c.do("POST", "/api/wizard", "")
	c.do("PUT", "/api/wizard/search/symptoms", `{"q":"cough"}`)

	if w := c.do("POST", "/api/wizard/search/symptoms/select", `{"value":"  "}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank selection, got %d", w.Code)
	}
	w := c.do("POST", "/api/wizard/search/symptoms/focus", "")
	if !strings.Contains(w.Body.String(), `"search":"cough"`) {
		t.Fatalf("rejected selection must keep the search text, got %s", w.Body.String())
	}
}

func TestWizardRefreshesSessionCookie(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}
	c.do("POST", "/api/wizard", "")
	started := c.cookie
	if started == nil || started.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("expected session cookie with one hour max-age, got %+v", started)
	}

	for _, path := range []string{"/api/wizard/advance", "/api/wizard"} {
		method := http.MethodPost
		if path == "/api/wizard" {
			method = http.MethodGet
		}
		w := c.do(method, path, "")
		var refreshed *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == sessionCookie {
				refreshed = ck
			}
		}
		if refreshed == nil {
			t.Fatalf("%s %s: expected the session cookie to be re-issued", method, path)
		}
		if refreshed.Value != started.Value || refreshed.MaxAge != started.MaxAge {
			t.Fatalf("%s %s: unexpected cookie %+v", method, path, refreshed)
		}
	}
}

func TestTypeahead(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}

	w := c.do("GET", "/api/typeahead/symptoms?q=PAIN", "")
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decode(t, w, &resp)
	want := []string{"Chest Pain", "Abdominal Pain", "Back Pain", "Joint Pain", "Muscle Pain"}
	if len(resp.Suggestions) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Suggestions)
	}
	for i := range want {
		if resp.Suggestions[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, resp.Suggestions)
		}
	}

	if w := c.do("GET", "/api/typeahead/unknown", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCheckInteractions(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}

	w := c.do("POST", "/api/interactions/check", `{"drugs":["Warfarin","Aspirin"]}`)
	var report interaction.Report
	decode(t, w, &report)
	if !report.Checked || len(report.Results) != 1 || report.Results[0].Level != interaction.Severe {
		t.Fatalf("unexpected report %+v", report)
	}

	w = c.do("POST", "/api/interactions/check?mode=remote", `{"drugs":["Warfarin","Aspirin"]}`)
	report = interaction.Report{}
	decode(t, w, &report)
	if w.Code != http.StatusOK || !report.Checked || !report.Failed || len(report.Results) != 0 {
		t.Fatalf("expected failed empty remote report, got %d %+v", w.Code, report)
	}

	if w := c.do("POST", "/api/interactions/check", `{"drugs":["Aspirin"," aspirin "]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for fewer than two drugs, got %d", w.Code)
	}
	if w := c.do("POST", "/api/interactions/check?mode=psychic", `{"drugs":["A","B"]}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown mode, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(newIPRateLimiter(1, 1).middleware())
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/x", nil)
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %v", codes)
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 1)
	l.now = func() time.Time { return clock }

	l.limiter("10.0.0.1")
	clock = clock.Add(2 * time.Minute)
	l.limiter("10.0.0.2")
	if len(l.visitors) != 2 {
		t.Fatalf("expected two tracked clients, got %d", len(l.visitors))
	}

	clock = clock.Add(2 * time.Minute)
	l.limiter("10.0.0.2")
	if _, ok := l.visitors["10.0.0.1"]; ok {
		t.Fatal("idle client must be evicted")
	}
	if _, ok := l.visitors["10.0.0.2"]; !ok {
		t.Fatal("active client must be kept")
	}
}

func signToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		Email: subject + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestProfilePages(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}

	var v profile.View
	w := c.do("GET", "/api/profile", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous user, got %d", w.Code)
	}
	decode(t, w, &v)
	if v.State != profile.StateRedirect || v.Location != profile.LoginPath {
		t.Fatalf("anonymous user must be sent to login, got %+v", v)
	}

	c.token = "garbage"
	v = profile.View{}
	w = c.do("GET", "/api/profile", "")
	decode(t, w, &v)
	if w.Code != http.StatusUnauthorized || v.Location != profile.LoginPath {
		t.Fatalf("invalid token must be treated as anonymous, got %d %+v", w.Code, v)
	}

	c.token = signToken(t, "user-1")
	v = profile.View{}
	decode(t, c.do("GET", "/api/profile", ""), &v)
	if v.Location != profile.SetupPath {
		t.Fatalf("expected setup redirect, got %+v", v)
	}

	v = profile.View{}
	decode(t, c.do("POST", "/api/profile/setup", `{"name":"Ana","age":41,"medical_history":["Asthma"]}`), &v)
	if v.Location != profile.SymptomsPath {
		t.Fatalf("expected redirect to symptoms, got %+v", v)
	}

	v = profile.View{}
	decode(t, c.do("PUT", "/api/profile", `{"name":"Ana Maria","age":42}`), &v)
	if v.State != profile.StateReady || v.Notice == nil || v.Notice.Destructive {
		t.Fatalf("expected successful save, got %+v", v)
	}

	v = profile.View{}
	decode(t, c.do("GET", "/api/profile", ""), &v)
	if v.Profile == nil || v.Profile.Name != "Ana Maria" || v.Profile.UserID != "user-1" {
		t.Fatalf("unexpected profile %+v", v.Profile)
	}
}

func TestContentAndContact(t *testing.T) {
	c := &client{t: t, router: newTestRouter(t, fakePredictor{}, nil)}

	if w := c.do("GET", "/api/content/faqs", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "emergency") {
		t.Fatalf("unexpected faqs %d %s", w.Code, w.Body.String())
	}
	if w := c.do("GET", "/api/content/about", ""); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "PubMed") {
		t.Fatalf("unexpected about %d", w.Code)
	}

	w := c.do("POST", "/api/contact", `{"name":"Ana","email":"ana@example.com","subject":"Hi","message":"Hello"}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Message sent successfully") {
		t.Fatalf("unexpected contact response %d %s", w.Code, w.Body.String())
	}
	if w := c.do("POST", "/api/contact", `{"name":"Ana","email":"nope","subject":"Hi","message":"Hello"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
