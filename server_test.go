package main

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

	"github.com/barrosyan/sistema-pronto/config"
	"github.com/barrosyan/sistema-pronto/middlewares"
	"github.com/barrosyan/sistema-pronto/models"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase(sqlite.Open("file::memory:"))
	if err != nil {
		t.Fatalf("OpenDatabase error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB error: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("MigrateTable error: %v", err)
	}
	previous := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(previous) })
	return db
}

func testRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	s := newServer(func() *gorm.DB { return db })
	lookup := func(_ context.Context, token string) (*middlewares.Session, error) {
		sessions := map[string]middlewares.Session{
			"tok-a": {UserId: "owner-a", Username: "ana"},
			"tok-b": {UserId: "owner-b", Username: "bia"},
		}
		if s, ok := sessions[token]; ok {
			return &s, nil
		}
		return nil, nil
	}
	return newRouter(s, lookup), db
}

type upload struct {
	name    string
	content string
}

func multipartBody(t *testing.T, field string, files []upload, values map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile error: %v", err)
		}
		_, _ = part.Write([]byte(f.content))
	}
	for k, v := range values {
		_ = w.WriteField(k, v)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close error: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func call(r http.Handler, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func callJSON(r http.Handler, method, path, token string, payload any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(payload)
	return call(r, method, path, token, bytes.NewBuffer(data), "application/json")
}

func TestHealthzAndAuth(t *testing.T) {
	r, _ := testRouter(t)
	if w := call(r, http.MethodGet, "/healthz", "", nil, ""); w.Code != http.StatusNoContent {
		t.Fatalf("healthz expected 204, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/campaigns", "", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous expected 401, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/campaigns", "nope", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown token expected 401, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/profiles", "tok-a", nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("non PM expected 403, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/nowhere", "", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown route expected 404, got %d", w.Code)
	}
}

func TestMergeWizardFlow(t *testing.T) {
	r, _ := testRouter(t)

	if w := call(r, http.MethodPost, "/api/merge/preview", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("preview without files expected 400, got %d", w.Code)
	}

	body, ct := multipartBody(t, "files", []upload{
		{"main.csv", "Name,Company\nAna,Acme\nBob,Zeta\n"},
		{"emails.csv", "Name,Email\n  ANA ,a@x.com\n"},
		{"notes.txt", "not a sheet"},
	}, nil)
	w := call(r, http.MethodPost, "/api/merge/files", "tok-a", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("upload expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var uploaded struct {
		State    mergeState      `json:"state"`
		Failures []uploadFailure `json:"failures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if len(uploaded.State.Files) != 2 || len(uploaded.Failures) != 1 || uploaded.Failures[0].File != "notes.txt" {
		t.Fatalf("unexpected upload result %+v", uploaded)
	}

	w = callJSON(r, http.MethodPut, "/api/merge/config", "tok-a", mergeConfigRequest{MainIndex: 0, Strategy: "normalized-name", KeyColumn: "Name"})
	if w.Code != http.StatusOK {
		t.Fatalf("config expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = callJSON(r, http.MethodPut, "/api/merge/config", "tok-a", mergeConfigRequest{Strategy: "soundex"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy expected 400, got %d", w.Code)
	}
	callJSON(r, http.MethodPut, "/api/merge/config", "tok-a", mergeConfigRequest{MainIndex: 0, Strategy: "normalized-name", KeyColumn: "Name"})

	if w := call(r, http.MethodGet, "/api/merge/export", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("export before preview expected 400, got %d", w.Code)
	}

	w = call(r, http.MethodPost, "/api/merge/preview", "tok-a", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("preview expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var preview struct {
		Columns []string `json:"columns"`
		Total   int      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &preview); err != nil {
		t.Fatalf("decode preview: %v", err)
	}
	if diff := cmp.Diff([]string{"Name", "Company", "file2_Email"}, preview.Columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	if preview.Total != 2 {
		t.Fatalf("expected 2 merged rows, got %d", preview.Total)
	}

	if w := call(r, http.MethodGet, "/api/merge/export", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("export before confirm expected 400, got %d", w.Code)
	}
	if w := call(r, http.MethodPost, "/api/merge/confirm", "tok-a", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("confirm expected 200, got %d", w.Code)
	}
	w = call(r, http.MethodGet, "/api/merge/export?format=csv", "tok-a", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("export expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "merged-data.csv") {
		t.Fatalf("unexpected disposition %q", got)
	}
	want := "Name,Company,file2_Email\nAna,Acme,a@x.com\nBob,Zeta,\n"
	if diff := cmp.Diff(want, w.Body.String()); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
	if w := call(r, http.MethodGet, "/api/merge/export?format=pdf", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown format expected 400, got %d", w.Code)
	}

	// sessions are per owner
	w = call(r, http.MethodGet, "/api/merge", "tok-b", nil, "")
	var other mergeState
	_ = json.Unmarshal(w.Body.Bytes(), &other)
	if len(other.Files) != 0 {
		t.Fatalf("other owner must not see the files, got %d", len(other.Files))
	}

	if w := call(r, http.MethodDelete, "/api/merge/files/7", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad index expected 400, got %d", w.Code)
	}
	w = call(r, http.MethodDelete, "/api/merge", "tok-a", nil, "")
	var reset mergeState
	_ = json.Unmarshal(w.Body.Bytes(), &reset)
	if len(reset.Files) != 0 || reset.Summary != nil {
		t.Fatalf("reset must clear the session, got %+v", reset)
	}
}

func TestImportCampaignFiles(t *testing.T) {
	r, _ := testRouter(t)

	body, ct := multipartBody(t, "files", []upload{
		{"metrics.csv", "Campaign Name,Event Type,Profile Name,Total Count,2024-01-01,2024-01-02\n" +
			"Raw Name,Connection Requests Sent,Ana,10,6,4\n" +
			"Raw Name,Connections Made,Ana,4,1,3\n"},
		{"positivos.csv", "Campanha,LinkedIn,Nome,Empresa,Data Resposta Positiva\n" +
			"Raw Name,https://linkedin.com/in/bob,Bob,Zeta,2024-01-02\n"},
		{"random.csv", "foo,bar\n1,2\n"},
	}, map[string]string{"campaign": "Q1 Outreach"})
	w := call(r, http.MethodPost, "/api/campaigns/import", "tok-a", body, ct)
	if w.Code != http.StatusOK {
		t.Fatalf("import expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Imported []models.ImportSummary `json:"imported"`
		Failures []importFailure        `json:"failures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if len(res.Imported) != 2 || len(res.Failures) != 1 || res.Failures[0].File != "random.csv" {
		t.Fatalf("unexpected import result %+v", res)
	}
	if diff := cmp.Diff([]string{"Q1 Outreach"}, res.Imported[0].CreatedCampaigns); diff != "" {
		t.Fatalf("created campaigns mismatch (-want +got):\n%s", diff)
	}

	w = call(r, http.MethodGet, "/api/campaigns", "tok-a", nil, "")
	var campaigns []models.Campaign
	_ = json.Unmarshal(w.Body.Bytes(), &campaigns)
	if len(campaigns) != 1 || campaigns[0].Name != "Q1 Outreach" {
		t.Fatalf("expected the target campaign only, got %+v", campaigns)
	}

	w = call(r, http.MethodGet, "/api/analytics/dashboard?campaign=Q1%20Outreach", "tok-a", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var dash struct {
		Stats struct {
			Invitations       float64 `json:"invitations"`
			Connections       float64 `json:"connections"`
			PositiveResponses float64 `json:"positive_responses"`
		} `json:"stats"`
		Details map[string]models.Campaign `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if dash.Stats.Invitations != 10 || dash.Stats.Connections != 4 || dash.Stats.PositiveResponses != 1 {
		t.Fatalf("unexpected stats %+v", dash.Stats)
	}
	if _, ok := dash.Details["Q1 Outreach"]; !ok {
		t.Fatalf("dashboard must attach the campaign row, got %+v", dash.Details)
	}

	w = call(r, http.MethodGet, "/api/leads?limit=10", "tok-b", nil, "")
	var leads struct {
		Edges []json.RawMessage `json:"edges"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &leads)
	if len(leads.Edges) != 0 {
		t.Fatalf("other owner must not see imported leads, got %d", len(leads.Edges))
	}
}

func TestCampaignAndEventCRUD(t *testing.T) {
	r, _ := testRouter(t)

	w := callJSON(r, http.MethodPost, "/api/campaigns", "tok-a", models.NewCampaign{Name: "Q2"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.Campaign
	_ = json.Unmarshal(w.Body.Bytes(), &created)

	if w := callJSON(r, http.MethodPost, "/api/campaigns", "tok-a", models.NewCampaign{Name: "Q2"}); w.Code == http.StatusCreated {
		t.Fatalf("duplicate name must be rejected")
	}
	if w := callJSON(r, http.MethodPost, "/api/campaigns", "tok-a", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing name expected 400, got %d", w.Code)
	}

	company := "Acme"
	w = callJSON(r, http.MethodPut, "/api/campaign-details/Q2", "tok-a", models.CampaignDetails{Company: &company})
	if w.Code != http.StatusOK {
		t.Fatalf("details expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w := call(r, http.MethodGet, "/api/campaigns/"+strconv.Itoa(created.ID), "tok-b", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("other owner expected 404, got %d", w.Code)
	}
	if w := call(r, http.MethodDelete, "/api/campaigns/"+strconv.Itoa(created.ID), "tok-a", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("delete expected 200, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/campaigns/abc", "tok-a", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id expected 400, got %d", w.Code)
	}

	start := "2024-03-01"
	w = callJSON(r, http.MethodPost, "/api/events", "tok-a", models.NewEvent{Name: "Feira", StartDate: &start})
	if w.Code != http.StatusCreated {
		t.Fatalf("event create expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var event models.Event
	_ = json.Unmarshal(w.Body.Bytes(), &event)
	if w := callJSON(r, http.MethodPut, "/api/events/"+strconv.Itoa(event.ID), "tok-a", models.NewEvent{Name: "Feira 2"}); w.Code != http.StatusOK {
		t.Fatalf("event update expected 200, got %d", w.Code)
	}
	w = call(r, http.MethodGet, "/api/events", "tok-a", nil, "")
	var events []models.Event
	_ = json.Unmarshal(w.Body.Bytes(), &events)
	if len(events) != 1 || events[0].Name != "Feira 2" {
		t.Fatalf("unexpected events %+v", events)
	}
	if w := call(r, http.MethodDelete, "/api/events/"+strconv.Itoa(event.ID), "tok-b", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("other owner delete expected 404, got %d", w.Code)
	}
}

func TestPMRoleToggle(t *testing.T) {
	r, _ := testRouter(t)

	if w := callJSON(r, http.MethodPut, "/api/profile", "tok-a", profileRequest{FullName: strPtr("Ana")}); w.Code != http.StatusOK {
		t.Fatalf("profile expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := callJSON(r, http.MethodPut, "/api/roles/pm", "tok-a", map[string]bool{"enabled": true}); w.Code != http.StatusOK {
		t.Fatalf("grant expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w := call(r, http.MethodGet, "/api/roles/me", "tok-a", nil, "")
	var me struct {
		IsPM bool `json:"is_pm"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &me)
	if !me.IsPM {
		t.Fatalf("expected PM role after grant")
	}
	if w := call(r, http.MethodGet, "/api/profiles", "tok-a", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("PM profiles expected 200, got %d", w.Code)
	}
	if w := callJSON(r, http.MethodPut, "/api/roles/pm", "tok-a", map[string]bool{"enabled": false}); w.Code != http.StatusOK {
		t.Fatalf("revoke expected 200, got %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/profiles", "tok-a", nil, ""); w.Code != http.StatusForbidden {
		t.Fatalf("revoked PM expected 403, got %d", w.Code)
	}
	if w := callJSON(r, http.MethodPut, "/api/roles/pm", "tok-a", map[string]any{}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing enabled expected 400, got %d", w.Code)
	}
}

func strPtr(s string) *string { return &s }
