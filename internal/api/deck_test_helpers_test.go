package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/travelgc/internal/content"
	"github.com/terraincognita07/travelgc/internal/db"
	"github.com/terraincognita07/travelgc/internal/services"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

type fakeSubmitter struct {
	mu       sync.Mutex
	err      error
	payloads []services.RegistrationPayload
}

func (submitter *fakeSubmitter) Submit(_ context.Context, payload services.RegistrationPayload) error {
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	submitter.payloads = append(submitter.payloads, payload)
	return submitter.err
}

func (submitter *fakeSubmitter) calls() []services.RegistrationPayload {
	submitter.mu.Lock()
	defer submitter.mu.Unlock()
	return append([]services.RegistrationPayload(nil), submitter.payloads...)
}

type fakeSlideViews struct {
	mu   sync.Mutex
	keys []string
}

func (views *fakeSlideViews) RecordSlideView(slideKey string) {
	views.mu.Lock()
	defer views.mu.Unlock()
	views.keys = append(views.keys, slideKey)
}

type deckTestApp struct {
	app       *fiber.App
	deck      *content.Deck
	submitter *fakeSubmitter
	views     *fakeSlideViews
}

func newDeckTestApp(t *testing.T, options HandlerOptions) *deckTestApp {
	t.Helper()

	_, testFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "resolve current test file path")
	templatesDir := filepath.Join(filepath.Dir(filepath.Dir(testFile)), "templates")

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "travelgc-api-test.db"))
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	deck, err := content.Default()
	require.NoError(t, err)

	repositories := db.NewRepositories(database)
	submitter := &fakeSubmitter{}
	presentation := services.NewPresentationService(repositories.Sessions, submitter, services.PresentationConfig{
		SlideCount:    deck.Len(),
		CityCount:     len(deck.Cities()),
		AgreementText: deck.AgreementText,
	}, time.Hour)

	views := &fakeSlideViews{}
	options.Views = views
	options.Sessions = repositories.Sessions
	handler, err := NewHandler(deck, presentation, testSecretKey, templatesDir, options)
	require.NoError(t, err)

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)

	return &deckTestApp{app: app, deck: deck, submitter: submitter, views: views}
}

// startSession loads the deck once and returns the session cookie header.
func (testApp *deckTestApp) startSession(t *testing.T) string {
	t.Helper()

	response := testApp.do(t, http.MethodGet, "/", "", nil, false)
	defer response.Body.Close()
	require.Equal(t, http.StatusOK, response.StatusCode)

	cookie := responseCookie(response.Cookies(), sessionCookieName)
	require.NotNil(t, cookie, "expected session cookie")
	return sessionCookieName + "=" + cookie.Value
}

func (testApp *deckTestApp) do(t *testing.T, method string, path string, cookie string, form url.Values, wantJSON bool) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	request := httptest.NewRequest(method, path, body)
	if form != nil {
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
	if wantJSON {
		request.Header.Set("Accept", "application/json")
	}

	response, err := testApp.app.Test(request, -1)
	require.NoError(t, err)
	return response
}

type stateResponse struct {
	OK     bool                       `json:"ok"`
	State  services.PresentationState `json:"state"`
	Notice services.Notice            `json:"notice"`
	Hints  map[string]string          `json:"hints"`
}

func (testApp *deckTestApp) postJSON(t *testing.T, path string, cookie string, form url.Values) (int, stateResponse) {
	t.Helper()

	if form == nil {
		form = url.Values{}
	}
	response := testApp.do(t, http.MethodPost, path, cookie, form, true)
	defer response.Body.Close()

	payload := stateResponse{}
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	if response.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return response.StatusCode, payload
}

func readBody(t *testing.T, response *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return string(raw)
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie != nil && cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	return payload["error"]
}

func validRegistrationForm() url.Values {
	return url.Values{
		"first_name":      {"Léa"},
		"last_name":       {"Muller"},
		"email":           {"lea.muller@epfl.ch"},
		"student_id":      {"123456"},
		"agreed_to_terms": {"on"},
	}
}

func (testApp *deckTestApp) doHTMX(t *testing.T, path string, cookie string, form url.Values) *http.Response {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	request.Header.Set("HX-Request", "true")
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := testApp.app.Test(request, -1)
	require.NoError(t, err)
	return response
}
