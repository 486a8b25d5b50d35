package e2e_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath     string
	serverURL      string
	credentialsDir string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "quizctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/quizctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:     binaryPath,
		serverURL:      serverURL,
		credentialsDir: t.TempDir(),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--credentials-dir", r.credentialsDir,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// fakeBackend is an in-process stand-in for the quiz platform API
type fakeBackend struct {
	server *httptest.Server
}

func mintToken(t *testing.T, userID int64, role string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", userID),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("e2e-secret"))
	require.NoError(t, err)
	return raw
}

func startFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	playerUser := map[string]any{
		"id":         1,
		"first_name": "Alice",
		"last_name":  "Walker",
		"email":      "alice@example.com",
		"role":       "PLAYER",
		"is_blocked": false,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		if body.Email != "alice@example.com" || body.Password != "hunter2" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": "Invalid credentials", "attempts_left": 3,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  mintToken(t, 1, "PLAYER"),
			"refresh_token": "refresh-abc",
			"user":          playerUser,
		})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}).Methods(http.MethodPost)

	router.HandleFunc("/api/quizzes", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"quizzes": []map[string]any{
				{
					"id": 7, "title": "Capitals of Europe", "status": "APPROVED",
					"author_id": 2, "author_name": "Bob",
					"created_at": time.Now().UTC().Format(time.RFC3339),
				},
			},
		})
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/users/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"total_users": 10})
	}).Methods(http.MethodGet)

	return &fakeBackend{server: httptest.NewServer(router)}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	backend := startFakeBackend(t)
	defer backend.server.Close()

	cli := newCLIRunner(t, backend.server.URL)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Contains(t, resp.Message, "healthy")
}

func TestCLI_LoginWhoamiLogout(t *testing.T) {
	backend := startFakeBackend(t)
	defer backend.server.Close()

	cli := newCLIRunner(t, backend.server.URL)

	// Login persists credentials for later invocations
	output, err := cli.run("login", "--email", "alice@example.com", "--password", "hunter2")
	require.NoError(t, err, "output: %s", output)

	var loginResp struct {
		Success bool `json:"success"`
		User    struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &loginResp))
	assert.True(t, loginResp.Success)
	assert.Equal(t, "alice@example.com", loginResp.User.Email)
	assert.Equal(t, "PLAYER", loginResp.User.Role)

	// A fresh process restores the session from the credential store
	output, err = cli.run("whoami")
	require.NoError(t, err, "output: %s", output)

	var user struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &user))
	assert.Equal(t, "alice@example.com", user.Email)

	// Logout discards the stored session
	_, err = cli.run("logout")
	require.NoError(t, err)

	output, err = cli.run("whoami")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not logged in")
}

func TestCLI_LoginRejectedCredentials(t *testing.T) {
	backend := startFakeBackend(t)
	defer backend.server.Close()

	cli := newCLIRunner(t, backend.server.URL)

	output, err := cli.run("login", "--email", "alice@example.com", "--password", "wrong")
	assert.Error(t, err)
	assert.Contains(t, output, "Invalid credentials")

	// A failed login leaves nothing behind
	output, err = cli.run("whoami")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not logged in")
}

func TestCLI_QuizListAuthenticated(t *testing.T) {
	backend := startFakeBackend(t)
	defer backend.server.Close()

	cli := newCLIRunner(t, backend.server.URL)

	_, err := cli.run("login", "--email", "alice@example.com", "--password", "hunter2")
	require.NoError(t, err)

	output, err := cli.run("quiz", "list")
	require.NoError(t, err, "output: %s", output)

	var quizzes []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &quizzes))
	require.Len(t, quizzes, 1)
	assert.Equal(t, "Capitals of Europe", quizzes[0].Title)
}

func TestCLI_AdminCommandsGatedLocally(t *testing.T) {
	backend := startFakeBackend(t)
	defer backend.server.Close()

	cli := newCLIRunner(t, backend.server.URL)

	_, err := cli.run("login", "--email", "alice@example.com", "--password", "hunter2")
	require.NoError(t, err)

	// A PLAYER session is stopped before the request leaves the process
	output, err := cli.run("users", "stats")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "requires role")
}
