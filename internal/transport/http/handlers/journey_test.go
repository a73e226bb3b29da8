package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"appraisal/internal/app/server"
	"appraisal/internal/platform/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   any             `json:"error"`
}

func testConfig() config.Config {
	return config.Config{
		Addr:              ":0",
		Environment:       "test",
		StoreDriver:       "memory",
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
		RunSeed:           true,
		SeedAdminUsername: "admin",
		SeedAdminEmail:    "admin@test.local",
		SeedAdminPassword: "ChangeMe123!",
		MaxBodyBytes:      1048576,
	}
}

func TestEvaluationJourney(t *testing.T) {
	app, err := server.New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken, _ := login(t, client, ts.URL, "admin", "ChangeMe123!")

	roleIDs := listRoleIDs(t, client, ts.URL, adminToken)
	managerRoleID, ok := roleIDs["Department Manager"]
	if !ok {
		t.Fatalf("seed did not create the Department Manager role, got %v", roleIDs)
	}

	departmentID := createResource(t, client, ts.URL+"/api/v1/departments", adminToken, map[string]any{
		"name": "Engineering",
		"code": "ENG",
	})

	managerUserID := createResource(t, client, ts.URL+"/api/v1/users", adminToken, map[string]any{
		"username": "manny",
		"password": "Manager123!",
		"email":    "manny@test.local",
		"fullName": "Manny Manager",
		"roleIds":  []int64{managerRoleID},
	})

	managerID := createResource(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"employeeNumber": "E001",
		"fullName":       "Manny Manager",
		"departmentId":   departmentID,
		"position":       "Engineering Manager",
		"userId":         managerUserID,
	})
	devID := createResource(t, client, ts.URL+"/api/v1/employees", adminToken, map[string]any{
		"employeeNumber": "E002",
		"fullName":       "Devin Developer",
		"departmentId":   departmentID,
		"position":       "Engineer",
		"managerId":      managerID,
	})

	criteria := listItems(t, client, ts.URL+"/api/v1/criteria", adminToken)
	if len(criteria) == 0 {
		t.Fatal("expected the seed to install a default criteria catalog")
	}

	createResource(t, client, ts.URL+"/api/v1/periods", adminToken, map[string]any{
		"name":      "Annual 2026",
		"startDate": "2026-01-01",
		"endDate":   "2026-12-31",
		"isActive":  true,
	})

	managerToken, managerEmployeeID := login(t, client, ts.URL, "manny", "Manager123!")
	if managerEmployeeID != managerID {
		t.Fatalf("expected login to resolve employee %d, got %d", managerID, managerEmployeeID)
	}

	evaluationID := createResource(t, client, ts.URL+"/api/v1/evaluations", managerToken, map[string]any{
		"employeeId": devID,
	})

	evaluation, details := getEvaluation(t, client, ts.URL, managerToken, evaluationID)
	if status := evaluation["status"].(float64); status != 1 {
		t.Fatalf("expected draft status, got %v", status)
	}
	if len(details) != len(criteria) {
		t.Fatalf("expected a detail row per active criterion (%d), got %d", len(criteria), len(details))
	}

	// Equal scores give a weighted mean equal to the score, whatever the
	// criterion weights are.
	scores := make([]map[string]any, 0, len(details))
	for _, detail := range details {
		scores = append(scores, map[string]any{
			"detailId": detail["id"],
			"score":    8,
			"comments": "reviewed",
		})
	}
	postJSON(t, client, ts.URL+"/api/v1/evaluations/"+itoa(evaluationID)+"/submit", managerToken, map[string]any{
		"comments": "solid year",
		"scores":   scores,
	})

	evaluation, _ = getEvaluation(t, client, ts.URL, managerToken, evaluationID)
	if status := evaluation["status"].(float64); status != 2 {
		t.Fatalf("expected submitted status, got %v", status)
	}
	if total := evaluation["totalScore"].(float64); total != 8 {
		t.Fatalf("expected weighted total 8, got %v", total)
	}
	if evaluation["submissionDate"] == nil {
		t.Fatal("expected submission date to be stamped")
	}

	postJSON(t, client, ts.URL+"/api/v1/evaluations/"+itoa(evaluationID)+"/status", managerToken, map[string]any{"status": 3})
	postJSON(t, client, ts.URL+"/api/v1/evaluations/"+itoa(evaluationID)+"/status", managerToken, map[string]any{"status": 4})

	evaluation, _ = getEvaluation(t, client, ts.URL, managerToken, evaluationID)
	if status := evaluation["status"].(float64); status != 4 {
		t.Fatalf("expected completed status, got %v", status)
	}
	if evaluation["completionDate"] == nil {
		t.Fatal("expected completion date to be stamped")
	}

	summary := getJSONMap(t, client, ts.URL+"/api/v1/reports/summary", adminToken)
	if total := summary["totalEvaluations"].(float64); total != 1 {
		t.Fatalf("expected 1 reportable evaluation, got %v", total)
	}
	if completed := summary["completedCount"].(float64); completed != 1 {
		t.Fatalf("expected 1 completed evaluation, got %v", completed)
	}
}

func TestRouteGuards(t *testing.T) {
	app, err := server.New(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()
	client := ts.Client()

	// Unauthenticated requests to guarded routes are rejected outright.
	getJSONStatus(t, client, ts.URL+"/api/v1/evaluations", "", http.StatusUnauthorized)

	adminToken, _ := login(t, client, ts.URL, "admin", "ChangeMe123!")
	roleIDs := listRoleIDs(t, client, ts.URL, adminToken)

	createResource(t, client, ts.URL+"/api/v1/users", adminToken, map[string]any{
		"username": "emp",
		"password": "Employee123!",
		"email":    "emp@test.local",
		"fullName": "Plain Employee",
		"roleIds":  []int64{roleIDs["Employee"]},
	})

	empToken, _ := login(t, client, ts.URL, "emp", "Employee123!")
	getJSONStatus(t, client, ts.URL+"/api/v1/users", empToken, http.StatusForbidden)
	getJSONStatus(t, client, ts.URL+"/api/v1/evaluations", empToken, http.StatusForbidden)
	// The dashboard is open to every authenticated role.
	getJSONStatus(t, client, ts.URL+"/api/v1/dashboard", empToken, http.StatusOK)
}

func login(t *testing.T, client *http.Client, baseURL, username, password string) (string, int64) {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	employeeID, _ := payload["employeeId"].(float64)
	return token, int64(employeeID)
}

func listRoleIDs(t *testing.T, client *http.Client, baseURL, token string) map[string]int64 {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/roles", token)
	var roles []map[string]any
	if err := json.Unmarshal(resp.Data, &roles); err != nil {
		t.Fatalf("failed to decode roles response: %v", err)
	}
	ids := map[string]int64{}
	for _, role := range roles {
		ids[role["name"].(string)] = int64(role["id"].(float64))
	}
	return ids
}

func listItems(t *testing.T, client *http.Client, url, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, url, token)
	var items []map[string]any
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("failed to decode list response for %s: %v", url, err)
	}
	return items
}

func createResource(t *testing.T, client *http.Client, url, token string, body map[string]any) int64 {
	t.Helper()
	resp := postJSON(t, client, url, token, body)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode create response for %s: %v", url, err)
	}
	id, _ := payload["id"].(float64)
	if id == 0 {
		t.Fatalf("expected id in create response for %s, got %v", url, payload)
	}
	return int64(id)
}

func getEvaluation(t *testing.T, client *http.Client, baseURL, token string, id int64) (map[string]any, []map[string]any) {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/evaluations/"+itoa(id), token)
	var payload struct {
		Evaluation map[string]any   `json:"evaluation"`
		Details    []map[string]any `json:"details"`
	}
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode evaluation response: %v", err)
	}
	return payload.Evaluation, payload.Details
}

func getJSONMap(t *testing.T, client *http.Client, url, token string) map[string]any {
	t.Helper()
	resp := getJSON(t, client, url, token)
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode response for %s: %v", url, err)
	}
	return payload
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func postJSON(t *testing.T, client *http.Client, url, token string, body map[string]any) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(raw))
	}
	return env
}

func getJSONStatus(t *testing.T, client *http.Client, url, token string, want int) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != want {
		t.Fatalf("expected status %d for %s, got %d: %s", want, url, resp.StatusCode, string(raw))
	}
}
