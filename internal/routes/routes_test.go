package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exit_poll/internal/controllers"
	"exit_poll/internal/metrics"
	"exit_poll/internal/middleware"
	"exit_poll/internal/routes"
	"exit_poll/internal/services"
	"exit_poll/internal/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type server struct {
	router http.Handler
	svc    *services.Services
	store  *testutil.FakeStore
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := middleware.NewJWT("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	store := testutil.NewFakeStore()
	svc := services.New(testutil.NewDB(t), store,
		services.WithTokenIssuer(auth),
		services.WithMetrics(metrics.New(reg)),
	)
	_, err := svc.SeedAdmin(context.Background(), "admin", "secret1")
	require.NoError(t, err)
	login, err := svc.Login(context.Background(), "admin", "secret1")
	require.NoError(t, err)

	r := routes.SetupRouter(routes.Deps{
		Controller:  controllers.New(svc, t.TempDir()),
		Auth:        auth,
		Gatherer:    reg,
		MaxUploadMB: 10,
	})
	return &server{router: r, svc: svc, store: store, token: login.Token}
}

func (s *server) do(method, path string, body any, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCityRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/cities", gin.H{"name": "Pune"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/cities", gin.H{"name": "Pune"}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/cities", gin.H{"name": "PUNE"}, true)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decode(t, w)["code"])

	w = s.do(http.MethodGet, "/cities", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Pune", data[0].(map[string]any)["name"])

	w = s.do(http.MethodDelete, "/cities/abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodDelete, "/cities/999", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestZoneBatchPartialFailure(t *testing.T) {
	s := newServer(t)
	city, err := s.svc.CreateCity(context.Background(), "Mumbai")
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/zones/batch", gin.H{"cityId": city.ID, "zones": []string{"A"}}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/zones/batch", gin.H{"cityId": city.ID, "zones": []string{"A", "B"}}, true)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, []any{"A"}, body["failed"])

	w = s.do(http.MethodGet, "/cities/"+strconv.Itoa(int(city.ID))+"/zones", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 2)
}

func multipartRequest(t *testing.T, path, token string, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestVoteFlow(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	city, err := s.svc.CreateCity(ctx, "Mumbai")
	require.NoError(t, err)
	zones, err := s.svc.AddZones(ctx, city.ID, []string{"Zone1"})
	require.NoError(t, err)
	zoneID := strconv.Itoa(int(zones[0].ID))

	req := multipartRequest(t, "/candidates", s.token,
		map[string]string{"name": "Alice", "partyName": "PartyX", "zoneId": zoneID},
		map[string][]byte{"photo": pngBytes, "partyLogo": pngBytes},
	)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cand := decode(t, w)["data"].(map[string]any)
	candID := cand["id"].(float64)
	assert.Len(t, s.store.Objects(), 2)

	vote := gin.H{"candidateId": candID, "deviceId": "dev-1"}
	w = s.do(http.MethodPost, "/votes", vote, false)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/votes", vote, false)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decode(t, w)
	assert.Equal(t, "already_voted", body["code"])
	assert.Equal(t, "you already voted for this candidate", body["error"])

	w = s.do(http.MethodGet, "/votes/zone/"+zoneID, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	tally := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, 1.0, tally["totalVotes"])
	first := tally["candidates"].([]any)[0].(map[string]any)
	assert.Equal(t, "Alice", first["name"])
	assert.Equal(t, 100.0, first["percentage"])

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/votes/stats", nil, false).Code)
	w = s.do(http.MethodGet, "/votes/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	w = s.do(http.MethodGet, "/dashboard/stats", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, 1.0, stats["totalCandidates"])
}

func TestRegisterCandidateRejectsNonImage(t *testing.T) {
	s := newServer(t)
	ctx := context.Background()
	city, err := s.svc.CreateCity(ctx, "Mumbai")
	require.NoError(t, err)
	zones, err := s.svc.AddZones(ctx, city.ID, []string{"Zone1"})
	require.NoError(t, err)

	req := multipartRequest(t, "/candidates", s.token,
		map[string]string{"name": "Alice", "partyName": "PartyX", "zoneId": strconv.Itoa(int(zones[0].ID))},
		map[string][]byte{"photo": []byte("plain text, not a picture"), "partyLogo": pngBytes},
	)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, s.store.Objects())
}

func TestVoteValidation(t *testing.T) {
	s := newServer(t)
	w := s.do(http.MethodPost, "/votes", gin.H{"candidateId": 1}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/votes", gin.H{"candidateId": 77, "deviceId": "d"}, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLocateZoneRejectsBadCoordinates(t *testing.T) {
	s := newServer(t)
	for _, q := range []string{"", "?lat=NaN&lng=1", "?lat=1&lng=nan", "?lat=91&lng=0", "?lat=x&lng=1"} {
		w := s.do(http.MethodGet, "/zones/locate"+q, nil, false)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "invalid_argument", decode(t, w)["code"], q)
	}
}

func TestAuthRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", gin.H{"username": "admin", "password": "secret1"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])

	w = s.do(http.MethodGet, "/auth/profile", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["data"].(map[string]any)["username"])
	assert.NotContains(t, w.Body.String(), "password")
}

func TestNewsAndMediaRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPost, "/news", gin.H{"title": "T", "headline": "H"}, true)
	require.Equal(t, http.StatusCreated, w.Code)
	w = s.do(http.MethodGet, "/news", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)

	req := multipartRequest(t, "/media", s.token, nil, map[string][]byte{"photo": pngBytes})
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/media", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	media := decode(t, w)["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(media["photo"].(string), "https://blob.test/site/"))
}

func TestOpsRoutes(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}
