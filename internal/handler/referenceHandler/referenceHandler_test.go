package referenceHandler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"commercial-file-service/internal/handler/referenceHandler"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type roles map[string]user.Role

func (r roles) ParseToken(_ context.Context, token string) (uint32, user.Role, error) {
	role, ok := r[token]
	if !ok {
		return 0, "", errors.New("bad token")
	}
	return 1, role, nil
}

type fakeRefs struct {
	referenceHandler.ReferenceService
	regions []*reference.Region
}

func (f *fakeRefs) GetRegion(_ context.Context, id int64) (*reference.Region, error) {
	for _, r := range f.regions {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperr.NotFound("region not found with id: %d", id)
}

func (f *fakeRefs) CreateRegion(_ context.Context, r *reference.Region) error {
	r.ID = int64(len(f.regions) + 1)
	r.Active = true
	f.regions = append(f.regions, r)
	return nil
}

func serve(h referenceHandler.ReferenceService, method, url, token, body string) *httptest.ResponseRecorder {
	r := gin.New()
	api := r.Group("/api", middleware.Auth(roles{"admin": user.RoleAdmin, "kar": user.RoleUser}))
	referenceHandler.New(h).Register(api)

	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRegion(t *testing.T) {
	refs := &fakeRefs{}

	w := serve(refs, http.MethodPost, "/api/regions", "kar", `{"region_name":"Harare"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(refs, http.MethodPost, "/api/regions", "admin", `{"region_code":"HRE"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(refs, http.MethodPost, "/api/regions", "admin", `{"region_name":"Harare","region_code":"HRE"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Region created successfully",
		"data":{"id":1,"region_name":"Harare","region_code":"HRE","description":"","active":true}}`, w.Body.String())
}

func TestGetRegion(t *testing.T) {
	refs := &fakeRefs{regions: []*reference.Region{{ID: 4, RegionName: "Bulawayo", Active: true}}}

	w := serve(refs, http.MethodGet, "/api/regions/4", "kar", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(refs, http.MethodGet, "/api/regions/5", "kar", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(refs, http.MethodGet, "/api/regions/x", "kar", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
