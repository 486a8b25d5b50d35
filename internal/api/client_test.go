package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/suite"

	"github.com/quizhub/quizctl/internal/model"
)

type ClientSuite struct {
	suite.Suite
	router *mux.Router
	server *httptest.Server
	client *Client
	ctx    context.Context

	// lastAuth captures the Authorization header of the last request
	lastAuth      string
	lastRequestID string
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.router = mux.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.lastAuth = r.Header.Get("Authorization")
			s.lastRequestID = r.Header.Get("X-Request-ID")
			next.ServeHTTP(w, r)
		})
	})
	s.server = httptest.NewServer(s.router)
	s.client = NewClient(s.server.URL)
	s.ctx = context.Background()
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *ClientSuite) TestBearerTokenAttached() {
	s.router.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.client.SetToken("tok-123")
	ok, err := s.client.ValidateToken(s.ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("Bearer tok-123", s.lastAuth)
	s.NotEmpty(s.lastRequestID)
}

func (s *ClientSuite) TestNoTokenNoAuthorizationHeader() {
	s.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.Require().NoError(s.client.Health(s.ctx))
	s.Empty(s.lastAuth)
}

func (s *ClientSuite) TestLoginSuccess() {
	s.router.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.Equal("a@b.com", req["email"])

		s.respondJSON(w, http.StatusOK, map[string]any{
			"access_token":  "acc",
			"refresh_token": "ref",
			"user":          map[string]any{"id": 7, "email": "a@b.com", "role": "PLAYER"},
		})
	}).Methods(http.MethodPost)

	resp, err := s.client.Login(s.ctx, "a@b.com", "pw")
	s.Require().NoError(err)
	s.Equal("acc", resp.AccessToken)
	s.Equal("ref", resp.RefreshToken)
	s.Equal(model.UserID(7), resp.User.ID)
}

func (s *ClientSuite) TestLoginLockoutMetadata() {
	s.router.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusTooManyRequests, map[string]any{
			"message":           "Account blocked",
			"blocked":           true,
			"blocked_until":     "2025-01-01T00:01:00Z",
			"remaining_seconds": 45,
		})
	}).Methods(http.MethodPost)

	_, err := s.client.Login(s.ctx, "a@b.com", "x")
	s.Require().Error(err)

	apiErr, ok := AsAPIError(err)
	s.Require().True(ok)
	s.True(apiErr.Blocked)
	s.Equal("2025-01-01T00:01:00Z", apiErr.BlockedUntil)
	s.Equal(45, apiErr.RemainingSeconds)
	s.Equal(http.StatusTooManyRequests, apiErr.Status)
}

func (s *ClientSuite) TestLoginAttemptsLeft() {
	s.router.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusUnauthorized, map[string]any{
			"message":       "Invalid email or password",
			"attempts_left": 2,
		})
	}).Methods(http.MethodPost)

	_, err := s.client.Login(s.ctx, "a@b.com", "wrong")
	apiErr, ok := AsAPIError(err)
	s.Require().True(ok)
	s.Require().NotNil(apiErr.AttemptsLeft)
	s.Equal(2, *apiErr.AttemptsLeft)
	s.ErrorIs(err, model.ErrUnauthorized)
}

func (s *ClientSuite) TestValidateTokenUnauthorizedIsFalseNotError() {
	s.router.HandleFunc("/api/auth/validate", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"message": "expired"})
	})

	ok, err := s.client.ValidateToken(s.ctx)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ClientSuite) TestNonJSONErrorBody() {
	s.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	err := s.client.Health(s.ctx)
	apiErr, ok := AsAPIError(err)
	s.Require().True(ok)
	s.Equal(http.StatusBadGateway, apiErr.Status)
	s.Contains(apiErr.Message, "upstream down")
}

func (s *ClientSuite) TestListUsersQueryParams() {
	s.router.HandleFunc("/api/users", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		s.Equal("2", q.Get("page"))
		s.Equal("10", q.Get("per_page"))
		s.Equal("alice", q.Get("search"))
		s.Equal("MODERATOR", q.Get("role"))

		s.respondJSON(w, http.StatusOK, map[string]any{
			"users": []map[string]any{{"id": 1, "email": "alice@b.com", "role": "MODERATOR"}},
			"total": 1,
		})
	}).Methods(http.MethodGet)

	list, err := s.client.ListUsers(s.ctx, ListUsersParams{
		Page: 2, PerPage: 10, Search: "alice", Role: model.RoleModerator,
	})
	s.Require().NoError(err)
	s.Equal(1, list.Total)
	s.Len(list.Users, 1)
}

func (s *ClientSuite) TestUpdateProfileReturnsCanonicalRecord() {
	s.router.HandleFunc("/api/profile", func(w http.ResponseWriter, r *http.Request) {
		s.respondJSON(w, http.StatusOK, map[string]any{
			"user": map[string]any{"id": 3, "first_name": "Canonical", "role": "PLAYER"},
		})
	}).Methods(http.MethodPut)

	name := "Local"
	user, err := s.client.UpdateProfile(s.ctx, &model.UserPatch{FirstName: &name})
	s.Require().NoError(err)
	s.Equal("Canonical", user.FirstName)
}

func (s *ClientSuite) TestUploadProfileImage() {
	s.router.HandleFunc("/api/profile/upload-image", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		f, header, err := r.FormFile("image")
		s.Require().NoError(err)
		defer func() { _ = f.Close() }()
		s.Equal("avatar.png", header.Filename)

		s.respondJSON(w, http.StatusOK, map[string]string{"profile_image": "/uploads/avatar.png"})
	}).Methods(http.MethodPost)

	path, err := s.client.UploadProfileImage(s.ctx, "avatar.png", strings.NewReader("pngbytes"))
	s.Require().NoError(err)
	s.Equal("/uploads/avatar.png", path)
}

func (s *ClientSuite) TestQuizModeration() {
	s.router.HandleFunc("/api/quizzes/5/approve", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)
	s.router.HandleFunc("/api/quizzes/5/reject", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.Equal("too easy", req["reason"])
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)

	s.NoError(s.client.ApproveQuiz(s.ctx, 5))
	s.NoError(s.client.RejectQuiz(s.ctx, 5, "too easy"))
}

func (s *ClientSuite) TestSetTokenConcurrentWithRequests() {
	var mu sync.Mutex
	var seen []string
	s.router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	s.client.SetToken("tok-old")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.client.SetToken("tok-old")
			s.client.SetToken("tok-new")
		}
	}()
	errs := make(chan error, 50)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			errs <- s.client.Health(s.ctx)
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	// Every request carried a complete token, never a torn read
	mu.Lock()
	defer mu.Unlock()
	for _, auth := range seen {
		s.Contains([]string{"Bearer tok-old", "Bearer tok-new"}, auth)
	}
	s.Equal("tok-new", s.client.Token())
}

func (s *ClientSuite) TestListQuizzesStatusFilter() {
	s.router.HandleFunc("/api/quizzes", func(w http.ResponseWriter, r *http.Request) {
		s.Equal("PENDING", r.URL.Query().Get("status"))
		s.respondJSON(w, http.StatusOK, map[string]any{
			"quizzes": []map[string]any{{"id": 1, "title": "Capitals", "status": "PENDING"}},
		})
	}).Methods(http.MethodGet)

	quizzes, err := s.client.ListQuizzes(s.ctx, model.QuizPending)
	s.Require().NoError(err)
	s.Len(quizzes, 1)
	s.Equal(model.QuizPending, quizzes[0].Status)
}
