package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/triple-g/buildhub-backend/internal/models"
	"github.com/triple-g/buildhub-backend/internal/services"
	"github.com/triple-g/buildhub-backend/internal/storage"
)

type noopMailer struct{ fail bool }

func (m *noopMailer) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

type testApp struct {
	app   *fiber.App
	store *storage.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := storage.NewMemoryStore()
	mailer := &noopMailer{}
	approvals := services.NewApprovalService(store, mailer)
	auth := services.NewAuthService(store, approvals)
	otp := services.NewOTPService(store, mailer)
	reports := services.NewReportService(store)
	sessions := services.NewSessionManager()

	app := fiber.New()
	SetupRoutes(app, store, auth, otp, approvals, sessions, reports)
	return &testApp{app: app, store: store}
}

func (ta *testApp) request(t *testing.T, method, path string, body interface{}, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func cookieValue(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestClientRegistrationFlow(t *testing.T) {
	ta := newTestApp(t)

	resp, body := ta.request(t, http.MethodPost, "/accounts/client/register", map[string]string{
		"email":      "client@example.com",
		"password":   "hunter2hunter2",
		"first_name": "Grace",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotContains(t, body, "warning")

	pending := cookieValue(resp, "buildhub_pending")
	require.NotEmpty(t, pending)

	userID := uint(body["user_id"].(float64))
	otp, err := ta.store.GetOTPByUser(userID)
	require.NoError(t, err)

	// Wrong code first
	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/verify-otp",
		map[string]string{"code": "000000"},
		map[string]string{"Cookie": "buildhub_pending=" + pending})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Correct code activates the account
	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/verify-otp",
		map[string]string{"code": otp.Code},
		map[string]string{"Cookie": "buildhub_pending=" + pending})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user, err := ta.store.GetUser(userID)
	require.NoError(t, err)
	require.True(t, user.Active)

	// The pending session is gone; a replay finds nothing
	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/verify-otp",
		map[string]string{"code": otp.Code},
		map[string]string{"Cookie": "buildhub_pending=" + pending})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// And the verified account can log in
	resp, body = ta.request(t, http.MethodPost, "/accounts/client/login", map[string]string{
		"email":    "client@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["token"])
	require.Equal(t, "public", body["role"])
	require.Equal(t, "/usersettings/", body["dashboard"])
}

func TestVerifyOTP_WithoutPendingSession(t *testing.T) {
	ta := newTestApp(t)
	resp, body := ta.request(t, http.MethodPost, "/accounts/client/verify-otp",
		map[string]string{"code": "123456"}, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "/accounts/client/register", body["redirect"])
}

func TestResendOTP_RateLimited(t *testing.T) {
	ta := newTestApp(t)

	resp, _ := ta.request(t, http.MethodPost, "/accounts/client/register", map[string]string{
		"email":    "client@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pending := cookieValue(resp, "buildhub_pending")

	// Immediately asking again trips the one-per-minute limit
	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/resend-otp", nil,
		map[string]string{"Cookie": "buildhub_pending=" + pending})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestLogin_UnverifiedAccountRejected(t *testing.T) {
	ta := newTestApp(t)

	resp, _ := ta.request(t, http.MethodPost, "/accounts/client/register", map[string]string{
		"email":    "client@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/login", map[string]string{
		"email":    "client@example.com",
		"password": "hunter2hunter2",
	}, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDuplicateRegistrationConflicts(t *testing.T) {
	ta := newTestApp(t)

	reg := map[string]string{"email": "client@example.com", "password": "hunter2hunter2"}
	resp, _ := ta.request(t, http.MethodPost, "/accounts/client/register", reg, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = ta.request(t, http.MethodPost, "/accounts/client/register", reg, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

// loginAs provisions an active account directly in the store and returns a
// bearer token for it.
func (ta *testApp) loginAs(t *testing.T, email, role string, approved bool) string {
	t.Helper()
	approvals := services.NewApprovalService(ta.store, &noopMailer{})
	auth := services.NewAuthService(ta.store, approvals)

	user, err := auth.Register(&models.UserRegistration{
		Email: email, Password: "hunter2hunter2",
	}, role)
	require.NoError(t, err)
	user.Active = true
	require.NoError(t, ta.store.UpdateUser(user))

	if role != "" && approved {
		profile, err := ta.store.GetAdminProfileByUser(user.ID)
		require.NoError(t, err)
		root, err := ta.store.CreateUser(&models.User{
			Email: fmt.Sprintf("root-%s", email), PasswordHash: "x",
			Active: true, IsSuperuser: true,
		})
		require.NoError(t, err)
		require.NoError(t, approvals.Approve(profile, root))
	}

	token, err := auth.IssueToken(user)
	require.NoError(t, err)
	return token
}

func TestDiaryGate(t *testing.T) {
	ta := newTestApp(t)

	// Anonymous is turned away at the path gate
	resp, _ := ta.request(t, http.MethodGet, "/diary/entries", nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// An approved site manager gets through
	smToken := ta.loginAs(t, "sm@example.com", models.AdminRoleSiteManager, true)
	auth := map[string]string{"Authorization": "Bearer " + smToken}

	resp, created := ta.request(t, http.MethodPost, "/diary/projects", map[string]interface{}{
		"name":       "Riverside Tower",
		"status":     "active",
		"start_date": "2026-08-01T00:00:00Z",
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := int(created["ID"].(float64))

	resp, _ = ta.request(t, http.MethodGet,
		fmt.Sprintf("/diary/entries?project_id=%d", projectID), nil, auth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateEntry_SecondEntrySameDayConflicts(t *testing.T) {
	ta := newTestApp(t)
	smToken := ta.loginAs(t, "sm@example.com", models.AdminRoleSiteManager, true)
	auth := map[string]string{"Authorization": "Bearer " + smToken}

	resp, created := ta.request(t, http.MethodPost, "/diary/projects", map[string]interface{}{
		"name": "Riverside Tower",
	}, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	projectID := int(created["ID"].(float64))

	entry := map[string]interface{}{
		"site_project_id":   projectID,
		"entry_date":        "2026-08-03T00:00:00Z",
		"weather_condition": "sunny",
	}
	resp, _ = ta.request(t, http.MethodPost, "/diary/entries", entry, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := ta.request(t, http.MethodPost, "/diary/entries", entry, auth)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Contains(t, body["error"], "already exists")

	// The next day is accepted
	entry["entry_date"] = "2026-08-04T00:00:00Z"
	resp, _ = ta.request(t, http.MethodPost, "/diary/entries", entry, auth)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestAdminSideRequiresAdmin(t *testing.T) {
	ta := newTestApp(t)

	smToken := ta.loginAs(t, "sm@example.com", models.AdminRoleSiteManager, true)
	resp, _ := ta.request(t, http.MethodGet, "/adminside/approvals", nil,
		map[string]string{"Authorization": "Bearer " + smToken})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := ta.loginAs(t, "admin@example.com", models.AdminRoleAdmin, true)
	resp, _ = ta.request(t, http.MethodGet, "/adminside/approvals", nil,
		map[string]string{"Authorization": "Bearer " + adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPendingAdminResolvesToPublic(t *testing.T) {
	ta := newTestApp(t)

	token := ta.loginAs(t, "pending@example.com", models.AdminRoleSiteManager, false)
	resp, _ := ta.request(t, http.MethodGet, "/adminside/approvals", nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublicContentOpenToAnonymous(t *testing.T) {
	ta := newTestApp(t)

	for _, path := range []string{"/", "/health", "/portfolio/", "/blog/"} {
		resp, _ := ta.request(t, http.MethodGet, path, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, "path %s", path)
	}
}

func TestManagementRoutesGated(t *testing.T) {
	ta := newTestApp(t)

	resp, _ := ta.request(t, http.MethodGet, "/portfolio/projectmanagement/", nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminToken := ta.loginAs(t, "admin@example.com", models.AdminRoleAdmin, true)
	resp, _ = ta.request(t, http.MethodGet, "/portfolio/projectmanagement/", nil,
		map[string]string{"Authorization": "Bearer " + adminToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthReportsRuntimeWiring(t *testing.T) {
	ta := newTestApp(t)
	resp, body := ta.request(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "OK", body["status"])
	require.Equal(t, "BuildHub Backend", body["service"])
	require.Contains(t, []interface{}{"memory", "postgres"}, body["storage"])
	require.Contains(t, []interface{}{"configured", "not configured"}, body["mail"])
}

func TestLegacyDashboardRedirect(t *testing.T) {
	ta := newTestApp(t)
	resp, _ := ta.request(t, http.MethodGet, "/user/", nil, nil)
	require.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	require.Equal(t, "/usersettings/", resp.Header.Get("Location"))
}
