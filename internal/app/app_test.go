package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"charity-backend/internal/core/config"
	"charity-backend/internal/domain"
	"charity-backend/internal/notify"
	"charity-backend/internal/service"
	"charity-backend/internal/testutil"
	"charity-backend/pkg/utils"
)

func init() { gin.SetMode(gin.TestMode) }

type outbox struct {
	mu   sync.Mutex
	msgs []notify.Message
}

func (o *outbox) Send(_ context.Context, m notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, m)
	return nil
}

func (o *outbox) withSubject(prefix string) []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []notify.Message
	for _, m := range o.msgs {
		if strings.HasPrefix(m.Subject, prefix) {
			out = append(out, m)
		}
	}
	return out
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type harness struct {
	t     *testing.T
	app   *App
	api   *gin.Engine
	admin *gin.Engine
	mail  *outbox
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := &config.Config{
		JWT:        config.JWT{Secret: "test-secret", Issuer: "charity-test", AccessTokenTTLMin: 60, RefreshTokenTTLMin: 600},
		Reset:      config.Reset{Secret: "reset-secret", TTLMin: 60, FrontendURL: "http://front.test"},
		Mail:       config.Mail{Site: "CharityConnect", Currency: "KES"},
		Pagination: config.Pagination{PageSize: 6, MaxPageSize: 50},
		Throttle:   config.Throttle{Requests: 5, WindowSec: 60},
	}
	mail := &outbox{}
	a := New(cfg, testutil.OpenDB(t), zap.NewNop(), mail)
	return &harness{t: t, app: a, api: a.API(), admin: a.Admin(), mail: mail}
}

func (h *harness) do(r *gin.Engine, method, path, token string, body any) (int, envelope) {
	h.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil && w.Code != http.StatusOK {
		h.t.Fatalf("%s %s: bad body %q", method, path, w.Body.String())
	}
	return w.Code, env
}

func (h *harness) must(status int, env envelope, want int, out any) {
	h.t.Helper()
	if status != want {
		h.t.Fatalf("status = %d (%s), want %d", status, env.Msg, want)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			h.t.Fatalf("decode data: %v (%s)", err, env.Data)
		}
	}
}

// seedAdmin 直接写库，相当于 createadmin 命令
func (h *harness) seedAdmin(username, password string, role domain.Role) {
	h.t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		h.t.Fatalf("hash: %v", err)
	}
	u := &domain.User{ID: utils.NewID(), Username: username, Email: username + "@charity.test", PasswordHash: hash}
	a := &domain.Admin{ID: utils.NewID(), UserID: u.ID, Role: role, IsActive: true}
	if err := service.CreateAdminTx(context.Background(), h.app.DB, u, a); err != nil {
		h.t.Fatalf("seed admin: %v", err)
	}
}

func (h *harness) adminToken(username, password string) string {
	h.t.Helper()
	var out struct {
		Access string            `json:"access"`
		Admin  service.AdminView `json:"admin"`
	}
	status, env := h.do(h.admin, "POST", "/admin/v1/login", "", gin.H{"username": username, "password": password})
	h.must(status, env, 200, &out)
	if out.Admin.Username != username || out.Access == "" {
		h.t.Fatalf("admin login payload = %+v", out)
	}
	return out.Access
}

func (h *harness) signup(username string) {
	h.t.Helper()
	status, env := h.do(h.api, "POST", "/api/v1/signup", "", gin.H{
		"username": username, "password": "password123", "name": "Donor " + username, "email": username + "@example.com",
	})
	h.must(status, env, 201, nil)
}

func (h *harness) donorToken(username, password string) string {
	h.t.Helper()
	var out struct {
		Access string `json:"access"`
	}
	status, env := h.do(h.api, "POST", "/api/v1/auth/login", "", gin.H{"username": username, "password": password})
	h.must(status, env, 200, &out)
	return out.Access
}

func TestDonationScenario(t *testing.T) {
	h := newHarness(t)
	h.seedAdmin("root", "rootpass123", domain.RoleSuperAdmin)
	rootTok := h.adminToken("root", "rootpass123")

	var c service.CampaignView
	status, env := h.do(h.admin, "POST", "/admin/v1/campaigns", rootTok, gin.H{
		"title": "Clean Water", "description": "Wells for Turkana", "goal": "1000.00", "amountRaised": "5000",
	})
	h.must(status, env, 201, &c)
	if c.AmountRaised != "0.00" || c.Category != domain.CategoryHealth {
		t.Fatalf("campaign = %+v", c)
	}

	h.signup("amina")
	tok := h.donorToken("amina", "password123")

	var first, second service.DonationView
	status, env = h.do(h.api, "POST", "/api/v1/donations", tok, gin.H{"campaign": c.ID, "amount": "250.00"})
	h.must(status, env, 201, &first)
	status, env = h.do(h.api, "POST", "/api/v1/donations", tok, gin.H{"campaign": c.ID, "amount": 100})
	h.must(status, env, 201, &second)

	status, env = h.do(h.api, "DELETE", "/api/v1/donations/"+first.ID, tok, nil)
	h.must(status, env, 200, nil)

	var got service.CampaignView
	status, env = h.do(h.api, "GET", "/api/v1/campaigns/"+c.ID, "", nil)
	h.must(status, env, 200, &got)
	if got.AmountRaised != "100.00" {
		t.Fatalf("amountRaised = %s, want 100.00", got.AmountRaised)
	}

	var mine []service.DonationView
	status, env = h.do(h.api, "GET", "/api/v1/my-donations", tok, nil)
	h.must(status, env, 200, &mine)
	if len(mine) != 1 || mine[0].ID != second.ID || mine[0].Campaign.Title != "Clean Water" {
		t.Fatalf("my donations = %+v", mine)
	}

	status, env = h.do(h.api, "POST", "/api/v1/donations", tok, gin.H{"campaign": c.ID, "amount": "-5"})
	h.must(status, env, 400, nil)

	confirms := h.mail.withSubject("Thank you for your donation")
	if len(confirms) != 2 || !strings.Contains(confirms[0].Body, "KES 250.00") {
		t.Fatalf("confirmation emails = %+v", confirms)
	}
	if len(h.mail.withSubject("Welcome to CharityConnect")) != 1 {
		t.Fatalf("welcome email not sent")
	}

	var stats service.Dashboard
	status, env = h.do(h.admin, "GET", "/admin/v1/dashboard", rootTok, nil)
	h.must(status, env, 200, &stats)
	if stats.Statistics.TotalDonations != 1 || stats.Statistics.TotalAmountRaised != "100.00" || stats.Admin.RoleDisplay != "Super Admin" {
		t.Fatalf("dashboard = %+v", stats)
	}
}

func TestAdminLoginErrors(t *testing.T) {
	h := newHarness(t)
	h.seedAdmin("root", "rootpass123", domain.RoleSuperAdmin)
	h.signup("amina")

	status, wrong := h.do(h.admin, "POST", "/admin/v1/login", "", gin.H{"username": "root", "password": "nope-nope"})
	h.must(status, wrong, 401, nil)
	status, unknown := h.do(h.admin, "POST", "/admin/v1/login", "", gin.H{"username": "ghost", "password": "nope-nope"})
	h.must(status, unknown, 401, nil)
	if wrong.Msg != "invalid credentials" || unknown.Msg != wrong.Msg {
		t.Fatalf("messages differ: %q vs %q", wrong.Msg, unknown.Msg)
	}

	status, env := h.do(h.admin, "POST", "/admin/v1/login", "", gin.H{"username": "amina", "password": "password123"})
	h.must(status, env, 403, nil)
	if env.Msg != "access denied" {
		t.Fatalf("msg = %q", env.Msg)
	}
}

var resetLink = regexp.MustCompile(`/reset-password/([^/\s]+)/([^/\s]+)/`)

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	h.signup("amina")

	status, known := h.do(h.api, "POST", "/api/v1/password-reset", "", gin.H{"email": "amina@example.com"})
	h.must(status, known, 200, nil)
	status, unknown := h.do(h.api, "POST", "/api/v1/password-reset", "", gin.H{"email": "nobody@example.com"})
	h.must(status, unknown, 200, nil)
	if string(known.Data) != string(unknown.Data) || known.Msg != unknown.Msg {
		t.Fatalf("responses differ: %s vs %s", known.Data, unknown.Data)
	}

	h.app.accounts.Wait()
	resets := h.mail.withSubject("Password Reset Request")
	if len(resets) != 1 || resets[0].To != "amina@example.com" {
		t.Fatalf("reset emails = %+v", resets)
	}
	m := resetLink.FindStringSubmatch(resets[0].Body)
	if m == nil {
		t.Fatalf("no reset link in %q", resets[0].Body)
	}
	uid, token := m[1], m[2]

	status, env := h.do(h.api, "POST", "/api/v1/password-reset/confirm", "", gin.H{"uid": "garbage", "token": token, "newPassword": "newpassword1"})
	h.must(status, env, 400, nil)
	bad := env.Msg
	status, env = h.do(h.api, "POST", "/api/v1/password-reset/confirm", "", gin.H{"uid": uid, "token": token + "x", "newPassword": "newpassword1"})
	h.must(status, env, 400, nil)
	if env.Msg != bad {
		t.Fatalf("failure messages differ: %q vs %q", env.Msg, bad)
	}

	status, env = h.do(h.api, "POST", "/api/v1/password-reset/confirm", "", gin.H{"uid": uid, "token": token, "newPassword": "newpassword1"})
	h.must(status, env, 200, nil)

	// 改过密码后同一链接失效
	status, env = h.do(h.api, "POST", "/api/v1/password-reset/confirm", "", gin.H{"uid": uid, "token": token, "newPassword": "another-pass1"})
	h.must(status, env, 400, nil)

	h.donorToken("amina", "newpassword1")
	status, env = h.do(h.api, "POST", "/api/v1/auth/login", "", gin.H{"username": "amina", "password": "password123"})
	h.must(status, env, 401, nil)
}

func TestSignupDuplicates(t *testing.T) {
	h := newHarness(t)
	h.signup("amina")

	for _, body := range []gin.H{
		{"username": "amina", "password": "password123", "name": "Other", "email": "other@example.com"},
		{"username": "other", "password": "password123", "name": "Other", "email": "amina@example.com"},
		{"username": "other", "password": "password123", "name": "Other", "email": "not-an-email"},
		{"username": "other", "password": "password123", "email": "x@example.com"},
	} {
		status, env := h.do(h.api, "POST", "/api/v1/signup", "", body)
		h.must(status, env, 400, nil)
	}
	var users, donors int64
	h.app.DB.Model(&domain.User{}).Count(&users)
	h.app.DB.Model(&domain.Donor{}).Count(&donors)
	if users != 1 || donors != 1 {
		t.Fatalf("users=%d donors=%d, want 1/1", users, donors)
	}
}

func TestPermissions(t *testing.T) {
	h := newHarness(t)
	h.seedAdmin("mod", "modpass123", domain.RoleContentModerator)
	h.seedAdmin("fin", "finpass123", domain.RoleFinancialManager)
	h.signup("amina")
	donor := h.donorToken("amina", "password123")
	mod := h.adminToken("mod", "modpass123")
	fin := h.adminToken("fin", "finpass123")

	campaign := gin.H{"title": "t", "description": "d", "goal": "10"}
	tests := []struct {
		name         string
		engine       *gin.Engine
		method, path string
		token        string
		body         any
		status       int
	}{
		{"anonymous create campaign", h.api, "POST", "/api/v1/campaigns", "", campaign, 401},
		{"donor create campaign", h.api, "POST", "/api/v1/campaigns", donor, campaign, 403},
		{"moderator create campaign", h.admin, "POST", "/admin/v1/campaigns", mod, campaign, 403},
		{"moderator finance list", h.admin, "GET", "/admin/v1/donations", mod, nil, 403},
		{"finance list", h.admin, "GET", "/admin/v1/donations", fin, nil, 200},
		{"moderator comment list", h.admin, "GET", "/admin/v1/comments", mod, nil, 200},
		{"finance users", h.admin, "GET", "/admin/v1/users", fin, nil, 403},
		{"donor dashboard", h.admin, "GET", "/admin/v1/dashboard", donor, nil, 403},
		{"anonymous dashboard", h.admin, "GET", "/admin/v1/dashboard", "", nil, 401},
		{"anonymous donors", h.api, "GET", "/api/v1/donors", "", nil, 401},
		{"donor donors", h.api, "GET", "/api/v1/donors", donor, nil, 200},
		{"public campaigns", h.api, "GET", "/api/v1/campaigns", "", nil, 200},
		{"public comments", h.api, "GET", "/api/v1/comments", "", nil, 200},
		{"bad token", h.api, "GET", "/api/v1/campaigns", "not-a-jwt", nil, 401},
		{"missing campaign", h.api, "GET", "/api/v1/campaigns/nope", "", nil, 404},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := h.do(tt.engine, tt.method, tt.path, tt.token, tt.body)
			if status != tt.status {
				t.Fatalf("status = %d (%s), want %d", status, env.Msg, tt.status)
			}
		})
	}
}

func TestLoginThrottled(t *testing.T) {
	h := newHarness(t)
	codes := []int{}
	for i := 0; i < 6; i++ {
		status, _ := h.do(h.api, "POST", "/api/v1/auth/login", "", gin.H{"username": "ghost", "password": "whatever1"})
		codes = append(codes, status)
	}
	for i, c := range codes[:5] {
		if c != 401 {
			t.Fatalf("attempt %d status = %d, want 401", i+1, c)
		}
	}
	if codes[5] != 429 {
		t.Fatalf("6th attempt status = %d, want 429", codes[5])
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	for _, r := range []*gin.Engine{h.api, h.admin} {
		for _, path := range []string{"/health", "/metrics"} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			if w.Code != 200 {
				t.Fatalf("%s status = %d", path, w.Code)
			}
		}
	}
}
