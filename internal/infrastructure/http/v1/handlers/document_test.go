package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradebook/internal/core/id"
	"tradebook/internal/infrastructure/storage/postgres"
)

type fakeDoc struct {
	ID     id.ID
	Posted bool
	Note   string
}

func (d *fakeDoc) GetID() id.ID   { return d.ID }
func (d *fakeDoc) IsPosted() bool { return d.Posted }

type fakeDocService struct {
	doc             *fakeDoc
	updateCalls     int
	postAndSaveDocs []*fakeDoc
}

func (s *fakeDocService) Create(ctx context.Context, doc *fakeDoc) error { return nil }

func (s *fakeDocService) GetByID(ctx context.Context, docID id.ID) (*fakeDoc, error) {
	return s.doc, nil
}

func (s *fakeDocService) Update(ctx context.Context, doc *fakeDoc) error {
	s.updateCalls++
	return nil
}

func (s *fakeDocService) Delete(ctx context.Context, docID id.ID) error { return nil }
func (s *fakeDocService) Post(ctx context.Context, docID id.ID) error   { return nil }
func (s *fakeDocService) Unpost(ctx context.Context, docID id.ID) error { return nil }

type fakeCreateRequest struct {
	Post bool `json:"post"`
}

type fakeUpdateRequest struct {
	Note *string `json:"note"`
}

func newFakeHandler(svc *fakeDocService, withPostAndSave bool) *BaseDocumentHandler[*fakeDoc, fakeCreateRequest, fakeUpdateRequest] {
	cfg := DocumentHandlerConfig[*fakeDoc, fakeCreateRequest, fakeUpdateRequest]{
		Service:    svc,
		EntityName: "fake",
		MapCreate: func(req *fakeCreateRequest) (*fakeDoc, error) {
			return &fakeDoc{ID: id.New()}, nil
		},
		ShouldPost: func(req *fakeCreateRequest) bool { return req.Post },
		MapUpdate: func(req *fakeUpdateRequest, existing *fakeDoc) error {
			if req.Note != nil {
				existing.Note = *req.Note
			}
			return nil
		},
		MapToDTO: func(doc *fakeDoc) any { return doc },
	}
	if withPostAndSave {
		cfg.PostAndSave = func(ctx context.Context, doc *fakeDoc) error {
			svc.postAndSaveDocs = append(svc.postAndSaveDocs, doc)
			return nil
		}
	}
	return NewBaseDocumentHandler(cfg)
}

func newUpdateContext(t *testing.T, docID id.ID, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/docs/"+docID.String(), bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}
	return c, w
}

type fakeAuditLogger struct {
	entries []postgres.AuditEntry
	history []postgres.AuditEntry
}

func (l *fakeAuditLogger) Log(ctx context.Context, entry postgres.AuditEntry) error {
	l.entries = append(l.entries, entry)
	return nil
}

func (l *fakeAuditLogger) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error) {
	return l.history, nil
}

func TestBaseDocumentHandler_Update_PostedDocumentReposts(t *testing.T) {
	doc := &fakeDoc{ID: id.New(), Posted: true, Note: "original"}
	svc := &fakeDocService{doc: doc}
	h := newFakeHandler(svc, true)

	c, w := newUpdateContext(t, doc.ID, `{"note":"edited"}`)
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.postAndSaveDocs, 1, "posted edit goes through the atomic repost path")
	assert.Equal(t, "edited", svc.postAndSaveDocs[0].Note)
	assert.Zero(t, svc.updateCalls)
}

func TestBaseDocumentHandler_Update_UnpostedDocumentSavesDirectly(t *testing.T) {
	doc := &fakeDoc{ID: id.New(), Posted: false}
	svc := &fakeDocService{doc: doc}
	h := newFakeHandler(svc, true)

	c, w := newUpdateContext(t, doc.ID, `{"note":"edited"}`)
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.updateCalls)
	assert.Empty(t, svc.postAndSaveDocs)
}

func TestBaseDocumentHandler_Update_NoRepostPathFallsBackToUpdate(t *testing.T) {
	doc := &fakeDoc{ID: id.New(), Posted: true}
	svc := &fakeDocService{doc: doc}
	h := newFakeHandler(svc, false)

	c, w := newUpdateContext(t, doc.ID, `{"note":"edited"}`)
	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.updateCalls)
}

func TestBaseDocumentHandler_Update_RecordsAuditEntry(t *testing.T) {
	doc := &fakeDoc{ID: id.New()}
	svc := &fakeDocService{doc: doc}
	audit := &fakeAuditLogger{}
	h := newFakeHandler(svc, true)
	h.cfg.Audit = audit

	c, _ := newUpdateContext(t, doc.ID, `{"note":"edited"}`)
	h.Update(c)

	require.Len(t, audit.entries, 1)
	entry := audit.entries[0]
	assert.Equal(t, "fake", entry.EntityType)
	assert.Equal(t, doc.ID, entry.EntityID)
	assert.Equal(t, postgres.AuditActionUpdate, entry.Action)
	assert.Contains(t, string(entry.Changes), "edited")
}

func TestBaseDocumentHandler_Delete_RecordsAuditEntry(t *testing.T) {
	doc := &fakeDoc{ID: id.New()}
	svc := &fakeDocService{doc: doc}
	audit := &fakeAuditLogger{}
	h := newFakeHandler(svc, true)
	h.cfg.Audit = audit

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/docs/"+doc.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: doc.ID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, postgres.AuditActionDelete, audit.entries[0].Action)
	assert.Equal(t, doc.ID, audit.entries[0].EntityID)
	assert.Empty(t, audit.entries[0].Changes)
}

func TestBaseDocumentHandler_History_ReturnsTrail(t *testing.T) {
	doc := &fakeDoc{ID: id.New()}
	svc := &fakeDocService{doc: doc}
	audit := &fakeAuditLogger{
		history: []postgres.AuditEntry{
			{EntityType: "fake", EntityID: doc.ID, Action: postgres.AuditActionCreate},
		},
	}
	h := newFakeHandler(svc, true)
	h.cfg.Audit = audit

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/docs/"+doc.ID.String()+"/history", nil)
	c.Params = gin.Params{{Key: "id", Value: doc.ID.String()}}

	h.History(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "create")
}
