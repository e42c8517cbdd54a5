package upload

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPart struct {
	name        string
	contentType string
	body        []byte
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _, _ := setupTestService(t)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User-ID") != "" {
			c.Set("user_id", int64(42))
		}
		c.Next()
	})
	RegisterRoutes(r.Group("/api/v1"), NewHandler(svc))
	return r
}

func multipartRequest(t *testing.T, parts []testPart, authorized bool) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/intake", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if authorized {
		req.Header.Set("X-Test-User-ID", "42")
	}
	return req
}

type intakeResponse struct {
	Success bool         `json:"success"`
	Data    IngestReport `json:"data"`
}

func TestIntakeEndpoint(t *testing.T) {
	r := setupTestRouter(t)

	req := multipartRequest(t, []testPart{
		{name: "a.png", contentType: "image/png", body: []byte("png")},
		{name: "b.gif", contentType: "image/gif", body: []byte("gif")},
		{name: "pics.zip", contentType: "application/zip", body: testZip(t, map[string]string{"x.jpeg": "jpeg", ".DS_Store": "x"})},
	}, true)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp intakeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.BatchID)
	assert.Len(t, resp.Data.Loaded, 2)
	require.Len(t, resp.Data.Invalid, 1)
	assert.Equal(t, "b.gif", resp.Data.Invalid[0].Name)
	assert.Empty(t, resp.Data.Failed)

	id := resp.Data.Loaded[0].ID

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authed(httptest.NewRequest(http.MethodGet, "/api/v1/images/"+id+"/data-url", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "data:image/")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authed(httptest.NewRequest(http.MethodGet, "/api/v1/images", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authed(httptest.NewRequest(http.MethodGet, "/api/v1/batches/"+resp.Data.BatchID+"/images", nil)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authed(httptest.NewRequest(http.MethodDelete, "/api/v1/images/"+id, nil)))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, authed(httptest.NewRequest(http.MethodGet, "/api/v1/images/"+id, nil)))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIntakeEndpointErrors(t *testing.T) {
	r := setupTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, []testPart{{name: "a.png", contentType: "image/png", body: []byte("x")}}, false))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, multipartRequest(t, nil, true))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/intake", bytes.NewBufferString("{}")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("X-Test-User-ID", "42")
	return req
}
