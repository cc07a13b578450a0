package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopnotify_backend/platform/apperr"
	"shopnotify_backend/platform/httpkit"
	"shopnotify_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// fakeConfigStore backs both handler interfaces with per-store ownership so
// the tests can prove requests never reach another store's rows.
type fakeConfigStore struct {
	storeID   uuid.UUID
	dataID    uuid.UUID
	variables []Variable
	updated   map[uuid.UUID]*string
	deleted   []uuid.UUID
}

func (f *fakeConfigStore) owns(storeID uuid.UUID) bool {
	return storeID == f.storeID
}

func (f *fakeConfigStore) ListByStore(_ context.Context, storeID uuid.UUID) ([]Template, error) {
	if !f.owns(storeID) {
		return nil, nil
	}
	return []Template{{ID: uuid.New(), StoreID: storeID, Name: "order_placed", Language: "en"}}, nil
}

func (f *fakeConfigStore) ListVariables(_ context.Context, storeID, dataID uuid.UUID) ([]Variable, error) {
	if !f.owns(storeID) || dataID != f.dataID {
		return nil, apperr.NotFound("template snapshot not found")
	}
	return f.variables, nil
}

func (f *fakeConfigStore) Sync(_ context.Context, _ uuid.UUID, synced []SyncedTemplate) (int, error) {
	return len(synced), nil
}

func (f *fakeConfigStore) UpdateVariableMapping(_ context.Context, storeID, variableID uuid.UUID, mappingField, _ *string) error {
	if !f.owns(storeID) {
		return apperr.NotFound("template variable not found")
	}
	for _, v := range f.variables {
		if v.ID == variableID {
			if f.updated == nil {
				f.updated = map[uuid.UUID]*string{}
			}
			f.updated[variableID] = mappingField
			return nil
		}
	}
	return apperr.NotFound("template variable not found")
}

func (f *fakeConfigStore) DeleteData(_ context.Context, storeID, dataID uuid.UUID) error {
	if !f.owns(storeID) || dataID != f.dataID {
		return apperr.NotFound("template snapshot not found")
	}
	f.deleted = append(f.deleted, dataID)
	return nil
}

func (f *fakeConfigStore) DeleteTemplate(_ context.Context, storeID, templateID uuid.UUID) error {
	if !f.owns(storeID) {
		return apperr.NotFound("template not found")
	}
	f.deleted = append(f.deleted, templateID)
	return nil
}

// identityFor stands in for the JWT middleware and stamps the caller's tenant.
func identityFor(storeID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, uuid.New())
		c.Set(httpkit.ContextStoreIDKey, storeID)
		c.Next()
	}
}

func newTemplatesRouter(h *Handler, callerStore uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/api/v1", identityFor(callerStore))
	group.GET("/templates/data/:dataId/variables", h.HandleListVariables)
	group.PUT("/templates/variables/:variableId", h.HandleUpdateVariable)
	group.DELETE("/templates/data/:dataId", h.HandleDeleteData)
	return engine
}

func ownerFixture() *fakeConfigStore {
	mapping := "Name"
	return &fakeConfigStore{
		storeID: uuid.New(),
		dataID:  uuid.New(),
		variables: []Variable{
			{ID: uuid.New(), Name: "name", Component: ComponentBody, MappingField: &mapping},
		},
	}
}

func TestHandleListVariablesScopedToCaller(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, fake.storeID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/data/"+fake.dataID.String()+"/variables", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var got []VariableResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != 1 || got[0].Name != "name" {
		t.Fatalf("unexpected variables: %+v", got)
	}
}

func TestHandleListVariablesForeignSnapshotNotFound(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates/data/"+fake.dataID.String()+"/variables", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleUpdateVariableScopedToCaller(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, fake.storeID)

	variableID := fake.variables[0].ID
	body := bytes.NewBufferString(`{"mappingField":"Order id"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/templates/variables/"+variableID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := fake.updated[variableID]; got == nil || *got != "Order id" {
		t.Fatalf("mapping not updated: %v", fake.updated)
	}
}

func TestHandleUpdateVariableForeignSlotNotFound(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, uuid.New())

	variableID := fake.variables[0].ID
	body := bytes.NewBufferString(`{"mappingField":"Order id"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/templates/variables/"+variableID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if len(fake.updated) != 0 {
		t.Fatalf("foreign caller must not change mappings: %v", fake.updated)
	}
}

func TestHandleDeleteDataScopedToCaller(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, fake.storeID)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/data/"+fake.dataID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != fake.dataID {
		t.Fatalf("snapshot not deleted: %v", fake.deleted)
	}
}

func TestHandleDeleteDataForeignSnapshotNotFound(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())
	engine := newTemplatesRouter(h, uuid.New())

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/templates/data/"+fake.dataID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if len(fake.deleted) != 0 {
		t.Fatalf("foreign caller must not delete snapshots: %v", fake.deleted)
	}
}

func TestVariableRoutesRequireIdentity(t *testing.T) {
	fake := ownerFixture()
	h := NewHandler(fake, fake, validator.New())

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/api/v1/templates/data/:dataId/variables", h.HandleListVariables)
	engine.DELETE("/api/v1/templates/data/:dataId", h.HandleDeleteData)

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/templates/data/" + fake.dataID.String() + "/variables"},
		{http.MethodDelete, "/api/v1/templates/data/" + fake.dataID.String()},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", tt.method, tt.path, w.Code)
		}
	}
}
