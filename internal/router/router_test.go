package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contactdesk/contactdesk/config"
	"github.com/contactdesk/contactdesk/internal/handler"
	"github.com/contactdesk/contactdesk/internal/middleware"
	"github.com/contactdesk/contactdesk/internal/model"
	"github.com/contactdesk/contactdesk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID uint
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*model.User), nextID: 1}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = s.nextID
	s.nextID++
	c := *user
	s.users[user.Email] = &c
	return nil
}

func (s *memUserStore) UpdateRefreshToken(_ context.Context, userID uint, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			u.RefreshToken = token
		}
	}
	return nil
}

func (s *memUserStore) RotateRefreshToken(_ context.Context, userID uint, current, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			if u.RefreshToken == nil || *u.RefreshToken != current {
				return false, nil
			}
			u.RefreshToken = &next
			return true, nil
		}
	}
	return false, nil
}

func (s *memUserStore) ConfirmEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.Confirmed = true
	}
	return nil
}

func (s *memUserStore) UpdateAvatar(_ context.Context, email, url string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	u.Avatar = &url
	c := *u
	return &c, nil
}

func (s *memUserStore) setRole(email string, role model.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[email]; ok {
		u.Role = role
	}
}

type memContactStore struct {
	mu       sync.Mutex
	contacts map[uint]*model.Contact
	nextID   uint
}

func newMemContactStore() *memContactStore {
	return &memContactStore{contacts: make(map[uint]*model.Contact), nextID: 1}
}

func (s *memContactStore) all() []model.Contact {
	var out []model.Contact
	for id := uint(1); id < s.nextID; id++ {
		if c, ok := s.contacts[id]; ok {
			out = append(out, *c)
		}
	}
	return out
}

func (s *memContactStore) List(_ context.Context, userID uint, limit, offset int) ([]model.Contact, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owned []model.Contact
	for _, c := range s.all() {
		if c.UserID == userID {
			owned = append(owned, c)
		}
	}
	total := int64(len(owned))
	if offset >= len(owned) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[offset:end], total, nil
}

func (s *memContactStore) ListAll(_ context.Context, limit, offset int) ([]model.Contact, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.all()
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memContactStore) GetByID(_ context.Context, id, userID uint) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *memContactStore) Create(_ context.Context, contact *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact.ID = s.nextID
	s.nextID++
	copied := *contact
	s.contacts[contact.ID] = &copied
	return nil
}

func (s *memContactStore) Update(_ context.Context, contact *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *contact
	s.contacts[contact.ID] = &copied
	return nil
}

func (s *memContactStore) Delete(_ context.Context, id, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(s.contacts, id)
	return true, nil
}

func (s *memContactStore) Search(_ context.Context, userID uint, query string, limit, offset int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(query)
	var matched []model.Contact
	for _, c := range s.all() {
		if c.UserID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(c.FirstName), needle) ||
			strings.Contains(strings.ToLower(c.LastName), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

func (s *memContactStore) UpcomingBirthdays(_ context.Context, userID uint, days, limit, offset int) ([]model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var matched []model.Contact
	for _, c := range s.all() {
		if c.UserID != userID {
			continue
		}
		birthday := time.Time(c.Birthday)
		for d := 0; d <= days; d++ {
			day := now.AddDate(0, 0, d)
			if birthday.Month() == day.Month() && birthday.Day() == day.Day() {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched, nil
}

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (kv *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *memKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.data[key] = value
	return nil
}

func (kv *memKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	delete(kv.data, key)
	return nil
}

type memNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (n *memNotifier) QueueConfirmation(email, _, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens[email] = token
}

func (n *memNotifier) tokenFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}

// memUploader satisfies service.AvatarUploader without network calls
type memUploader struct{}

func (memUploader) UploadAvatar(_ context.Context, publicID string, _ io.Reader) (string, error) {
	return "https://img.example.com/" + publicID, nil
}

type apiFixture struct {
	engine   *gin.Engine
	users    *memUserStore
	contacts *memContactStore
	notifier *memNotifier
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Port = "0"
	cfg.RateLimit.Request = 1000
	cfg.RateLimit.Duration = 60
	cfg.RateLimit.ProfileRequest = 1000
	cfg.RateLimit.ProfileDuration = 20

	tokens, err := service.NewTokenService(config.JWTConfig{
		Secret:           "router-test-secret",
		SigningAlgorithm: "HS256",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  24 * time.Hour,
		EmailTokenTTL:    24 * time.Hour,
	})
	require.NoError(t, err)

	users := newMemUserStore()
	contacts := newMemContactStore()
	notifier := &memNotifier{tokens: make(map[string]string)}
	sessions := service.NewSessionCache(&memKV{data: make(map[string][]byte)}, time.Minute)

	authService := service.NewAuthService(users, service.NewPasswordHasher(), tokens, sessions, notifier)
	userService := service.NewUserService(users, memUploader{}, sessions)
	contactService := service.NewContactService(contacts)

	engine := NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewContactHandler(contactService),
		handler.NewHealthHandler(nil, nil),
		middleware.NewJWTMiddleware(authService),
		cfg,
	).SetupRoutes()

	return &apiFixture{engine: engine, users: users, contacts: contacts, notifier: notifier}
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "tester",
		"email":    email,
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	confirm := f.notifier.tokenFor(email)
	require.NotEmpty(t, confirm)
	w = f.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirm, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    email,
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestAPI_SignupConfirmLoginFlow(t *testing.T) {
	f := newAPIFixture(t)

	// Login before confirmation is rejected
	w := f.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "tester",
		"email":    "flow@example.com",
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	confirm := f.notifier.tokenFor("flow@example.com")
	w = f.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirm, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "flow@example.com",
		"password": "s3cret-password",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_SignupDuplicate(t *testing.T) {
	f := newAPIFixture(t)
	f.registerAndLogin(t, "dupe@example.com")

	w := f.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "other",
		"email":    "dupe@example.com",
		"password": "another-password",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_MeRequiresAuth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := f.registerAndLogin(t, "me@example.com")
	w = f.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		Email     string `json:"email"`
		Confirmed bool   `json:"confirmed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "me@example.com", me.Email)
	assert.True(t, me.Confirmed)
}

func TestAPI_ContactCRUD(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "crud@example.com")

	w := f.do(t, http.MethodPost, "/api/contacts", token, gin.H{
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@example.com",
		"phone":      "+1234567890",
		"birthday":   "1990-05-15",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		ID       uint   `json:"id"`
		Birthday string `json:"birthday"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "1990-05-15", created.Birthday)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPut, fmt.Sprintf("/api/contacts/%d", created.ID), token, gin.H{
		"first_name": "Alicia",
		"last_name":  "Smith",
		"email":      "alice@example.com",
		"phone":      "+1234567890",
		"birthday":   "1990-05-15",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Alicia")

	w = f.do(t, http.MethodDelete, fmt.Sprintf("/api/contacts/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ContactValidation(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "valid@example.com")

	// Bad birthday format
	w := f.do(t, http.MethodPost, "/api/contacts", token, gin.H{
		"first_name": "Alice",
		"last_name":  "Smith",
		"email":      "alice@example.com",
		"phone":      "+1234567890",
		"birthday":   "15/05/1990",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing required field
	w = f.do(t, http.MethodPost, "/api/contacts", token, gin.H{
		"first_name": "Alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ContactsAllRoleGuard(t *testing.T) {
	f := newAPIFixture(t)
	userToken := f.registerAndLogin(t, "plain@example.com")

	w := f.do(t, http.MethodGet, "/api/contacts/all", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// A moderator account passes the guard. The role is set before the
	// first authenticated request so the session snapshot carries it.
	w = f.do(t, http.MethodPost, "/api/auth/signup", "", gin.H{
		"username": "mod",
		"email":    "mod@example.com",
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	confirm := f.notifier.tokenFor("mod@example.com")
	w = f.do(t, http.MethodGet, "/api/auth/confirmed_email/"+confirm, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	f.users.setRole("mod@example.com", model.RoleModerator)

	w = f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "mod@example.com",
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))

	w = f.do(t, http.MethodGet, "/api/contacts/all", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAPI_SearchAndBirthdays(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "search@example.com")

	for _, name := range []string{"Alice", "Bob"} {
		w := f.do(t, http.MethodPost, "/api/contacts", token, gin.H{
			"first_name": name,
			"last_name":  "Tester",
			"email":      strings.ToLower(name) + "@example.com",
			"phone":      "+1234567890",
			"birthday":   time.Now().AddDate(-30, 0, 2).Format("2006-01-02"),
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := f.do(t, http.MethodGet, "/api/contacts/search/ali", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")
	assert.NotContains(t, w.Body.String(), "Bob")

	w = f.do(t, http.MethodGet, "/api/contacts/birthdays?days=7", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")

	// Out-of-range window is rejected
	w = f.do(t, http.MethodGet, "/api/contacts/birthdays?days=30", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_RefreshTokenFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.registerAndLogin(t, "refresh@example.com")

	w := f.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    "refresh@example.com",
		"password": "s3cret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var tokens struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))

	w = f.do(t, http.MethodGet, "/api/auth/refresh_token", tokens.RefreshToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The consumed token cannot be replayed
	w = f.do(t, http.MethodGet, "/api/auth/refresh_token", tokens.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_AvatarUpload(t *testing.T) {
	f := newAPIFixture(t)
	token := f.registerAndLogin(t, "avatar@example.com")

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	part.Write([]byte("png-bytes"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPatch, "/api/users/avatar", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "img.example.com/avatar@example.com")
}

func TestAPI_TrackEmailOpen(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/auth/opened/alice", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestAPI_Health(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAPI_IndexPage(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "contactdesk")
}
