package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chichienterprises/safarbook/internal/config"
	"github.com/chichienterprises/safarbook/internal/server"
)

func TestGoldenPath(t *testing.T) {
	// 1. Setup Infrastructure
	db, cleanupDB := SetupTestDB(t)
	defer cleanupDB()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	mockAuth := NewMockAuthClient()
	mockFiles := NewMockFileRepository()

	cfg := &config.Config{}
	cfg.Server.MaxUploadSizeMB = 10
	cfg.JWT.Secret = "test-secret-key-123"
	cfg.JWT.TokenExpiry = time.Hour
	cfg.JWT.AdminEmails = []string{"admin@chichienterprises.com"}
	cfg.Catalog.FreshnessWindow = 5 * time.Minute
	cfg.Catalog.FetchTimeout = 10 * time.Second

	// 2. Initialize App
	app, _ := server.NewApp(server.AppDependencies{
		Config:      cfg,
		MongoDB:     db,
		RedisClient: redisClient,
		AuthClient:  mockAuth,
		Files:       mockFiles,
	})

	// JSON request helper
	request := func(method, path, token string, body interface{}) *http.Response {
		var bodyReader io.Reader
		if body != nil {
			jsonBytes, _ := json.Marshal(body)
			bodyReader = bytes.NewReader(jsonBytes)
		}
		req, _ := http.NewRequest(method, path, bodyReader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	// Multipart form helper for the editor endpoints.
	formRequest := func(method, path, token string, fields map[string]string, extraHeaders map[string]string) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for name, value := range fields {
			require.NoError(t, w.WriteField(name, value))
		}
		require.NoError(t, w.Close())

		req, _ := http.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		for k, v := range extraHeaders {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	decode := func(resp *http.Response) map[string]interface{} {
		out := map[string]interface{}{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return out
	}

	// ==========================================
	// STEP 1: Health
	// ==========================================
	resp := request("GET", "/health", "", nil)
	assert.Equal(t, 200, resp.StatusCode)

	// ==========================================
	// STEP 2: Admin Login
	// ==========================================
	mockAuth.AddMockUser("token_admin", "uid_admin", "admin@chichienterprises.com")
	mockAuth.AddMockUser("token_visitor", "uid_visitor", "visitor@example.com")

	resp = request("POST", "/v1/auth/login", "token_admin", nil)
	assert.Equal(t, 200, resp.StatusCode)
	loginData := decode(resp)
	adminToken := loginData["token"].(string)
	require.NotEmpty(t, adminToken)

	// Non-allowlisted accounts never get a session.
	resp = request("POST", "/v1/auth/login", "token_visitor", nil)
	assert.Equal(t, 403, resp.StatusCode)

	fmt.Println("✓ Admin Logged In")

	// ==========================================
	// STEP 3: Writes require a session
	// ==========================================
	resp = formRequest("POST", "/v1/admin/packages/umrah", "", map[string]string{"name": "x"}, nil)
	assert.Equal(t, 401, resp.StatusCode)

	// ==========================================
	// STEP 4: Create Umrah Package
	// ==========================================
	createFields := map[string]string{
		"name":             "Shawal 14 Days",
		"price":            "222830",
		"duration":         "14",
		"distanceMakkah":   "700 meters",
		"visaIncluded":     "true",
		"inclusions":       "Visa, Return Flights, Hotel Stay",
		"departureDates":   "10 Shawal, 24 Shawal",
		"daysInMakkah":     "7",
		"daysInMadinah":    "7",
		"makkahHotel.name": "Taiba Al Taiba",
	}
	resp = formRequest("POST", "/v1/admin/packages/umrah", adminToken, createFields, nil)
	assert.Equal(t, 201, resp.StatusCode)
	pkgData := decode(resp)
	pkgID := pkgData["id"].(string)
	require.NotEmpty(t, pkgID)
	createdAt := pkgData["createdAt"].(string)

	// CSV fields come back as arrays.
	inclusions := pkgData["inclusions"].([]interface{})
	assert.Len(t, inclusions, 3)
	assert.Equal(t, "Visa", inclusions[0])

	fmt.Println("✓ Package Created:", pkgID)

	// ==========================================
	// STEP 5: Validation is enforced in order
	// ==========================================
	resp = formRequest("POST", "/v1/admin/packages/umrah", adminToken, map[string]string{
		"name":  "Broken",
		"price": "abc",
	}, nil)
	assert.Equal(t, 422, resp.StatusCode)
	verrData := decode(resp)
	assert.Equal(t, "price", verrData["field"])

	// ==========================================
	// STEP 6: Public Listing & Filtering
	// ==========================================
	resp = request("GET", "/v1/packages/umrah", "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	listData := decode(resp)
	assert.EqualValues(t, 1, listData["total"])

	// Upper-bound filter excludes the package...
	resp = request("GET", "/v1/packages/umrah?priceMax=200000", "", nil)
	listData = decode(resp)
	assert.EqualValues(t, 0, listData["total"])

	// ...and formatted input is stripped to digits before comparing.
	resp = request("GET", "/v1/packages/umrah?priceMax=Rs+999,999", "", nil)
	listData = decode(resp)
	assert.EqualValues(t, 1, listData["total"])

	// Exact-match day filter.
	resp = request("GET", "/v1/packages/umrah?daysInMakkah=6", "", nil)
	listData = decode(resp)
	assert.EqualValues(t, 0, listData["total"])

	fmt.Println("✓ Listing & Filters Verified")

	// ==========================================
	// STEP 7: Package Detail
	// ==========================================
	resp = request("GET", "/v1/packages/umrah/"+pkgID, "", nil)
	assert.Equal(t, 200, resp.StatusCode)
	detail := decode(resp)
	assert.Equal(t, "Shawal 14 Days", detail["name"])

	resp = request("GET", "/v1/packages/umrah/000000000000000000000000", "", nil)
	assert.Equal(t, 404, resp.StatusCode)

	// ==========================================
	// STEP 8: Update preserves createdAt
	// ==========================================
	updateFields := map[string]string{"price": "250000"}
	resp = formRequest("PUT", "/v1/admin/packages/umrah/"+pkgID, adminToken, updateFields, nil)
	assert.Equal(t, 200, resp.StatusCode)
	updated := decode(resp)
	assert.EqualValues(t, 250000, updated["price"])
	assert.Equal(t, createdAt, updated["createdAt"], "edits must not move the creation timestamp")
	assert.Equal(t, "Shawal 14 Days", updated["name"], "untouched fields carry over")

	fmt.Println("✓ Update Verified")

	// ==========================================
	// STEP 9: Idempotent replay
	// ==========================================
	correlated := map[string]string{"X-Correlation-ID": "e2e-create-1"}
	resp = formRequest("POST", "/v1/admin/packages/umrah", adminToken, createFields, correlated)
	assert.Equal(t, 201, resp.StatusCode)
	first := decode(resp)

	resp = formRequest("POST", "/v1/admin/packages/umrah", adminToken, createFields, correlated)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotent-Replay"))
	replayed := decode(resp)
	assert.Equal(t, first["id"], replayed["id"], "replay must not create a second package")

	fmt.Println("✓ Idempotency Verified")

	// ==========================================
	// STEP 10: Contact Form Inquiry
	// ==========================================
	resp = request("POST", "/v1/inquiries", "", map[string]string{
		"name":    "Ahmed Khan",
		"email":   "ahmed@example.com",
		"subject": "Umrah in Shawal",
		"message": "Do you have availability for a family of four?",
	})
	assert.Equal(t, 201, resp.StatusCode)
	inqData := decode(resp)
	require.NotEmpty(t, inqData["reference_id"])

	resp = request("GET", "/v1/admin/inquiries", adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	inqList := decode(resp)
	assert.EqualValues(t, 1, inqList["total"])

	fmt.Println("✓ Inquiry Flow Verified")

	// ==========================================
	// STEP 11: Delete
	// ==========================================
	resp = request("DELETE", "/v1/admin/packages/umrah/"+first["id"].(string), adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)
	resp = request("DELETE", "/v1/admin/packages/umrah/"+pkgID, adminToken, nil)
	assert.Equal(t, 200, resp.StatusCode)

	resp = request("GET", "/v1/packages/umrah", "", nil)
	listData = decode(resp)
	assert.EqualValues(t, 0, listData["total"])

	fmt.Println("✓ Delete Verified")
}
