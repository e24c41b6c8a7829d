package apikeysfeature

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/cryptotoken"
	"github.com/Sherifrax/speakup-sub001/internal/app/system/usagestats"
	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"github.com/Sherifrax/speakup-sub001/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sealer, err := cryptotoken.New("apikeys-handler-test-secret")
	if err != nil {
		t.Fatalf("cryptotoken.New() error = %v", err)
	}
	return NewHandler(db, sealer, zap.NewNop()), db
}

func postJSON(t *testing.T, h http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func saveKey(t *testing.T, h *Handler, name string, active bool) Record {
	t.Helper()
	rec := postJSON(t, h.HandleSave, "/save", SaveRequest{ClientName: name, IsActive: active})
	if rec.Code != http.StatusOK {
		t.Fatalf("save %q status = %d, body %s", name, rec.Code, rec.Body.String())
	}
	var saved Record
	if err := json.NewDecoder(rec.Body).Decode(&saved); err != nil {
		t.Fatalf("decode save response: %v", err)
	}
	return saved
}

func TestHandler_Save(t *testing.T) {
	h, _ := newTestHandler(t)

	t.Run("create", func(t *testing.T) {
		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{
			ClientName: "Acme Integration",
			IsActive:   true,
			IPCheck:    true,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		var saved Record
		if err := json.NewDecoder(rec.Body).Decode(&saved); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if saved.EncryptedData == "" {
			t.Error("response missing encryptedData token")
		}
		if saved.ClientName != "Acme Integration" || !saved.IsActive || !saved.IPCheck {
			t.Errorf("saved record = %+v", saved)
		}
		if saved.CreatedAt.IsZero() {
			t.Error("response missing createdAt")
		}
	})

	t.Run("update via sealed token", func(t *testing.T) {
		created := saveKey(t, h, "Globex", true)

		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{
			EncryptedData: created.EncryptedData,
			ClientName:    "Globex Renamed",
			IsActive:      false,
			RegionCheck:   true,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
		}
		var updated Record
		json.NewDecoder(rec.Body).Decode(&updated)
		if updated.ClientName != "Globex Renamed" || updated.IsActive || !updated.RegionCheck {
			t.Errorf("updated record = %+v", updated)
		}
	})

	t.Run("missing client name", func(t *testing.T) {
		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{IsActive: true})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp struct {
			Error  string            `json:"error"`
			Fields map[string]string `json:"fields"`
		}
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Error != "validation failed" {
			t.Errorf("error = %q", resp.Error)
		}
		if resp.Fields["clientName"] == "" {
			t.Errorf("fields = %+v, want clientName message", resp.Fields)
		}
	})

	t.Run("client name too long", func(t *testing.T) {
		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{
			ClientName: strings.Repeat("x", 51),
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("duplicate client name", func(t *testing.T) {
		saveKey(t, h, "Initech", true)
		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{ClientName: "initech"})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400 for case-insensitive duplicate", rec.Code)
		}
		var resp struct {
			Fields map[string]string `json:"fields"`
		}
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Fields["clientName"] == "" {
			t.Errorf("fields = %+v", resp.Fields)
		}
	})

	t.Run("tampered token", func(t *testing.T) {
		rec := postJSON(t, h.HandleSave, "/save", SaveRequest{
			EncryptedData: "not-a-sealed-token",
			ClientName:    "Whatever",
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandler_Search(t *testing.T) {
	h, _ := newTestHandler(t)
	saveKey(t, h, "Alpha", true)
	saveKey(t, h, "Beta", false)
	saveKey(t, h, "Gamma", true)

	search := func(t *testing.T, req listquery.Request[SearchFilters]) (records []Record, total int64) {
		t.Helper()
		rec := postJSON(t, h.HandleSearch, "/search", req)
		if rec.Code != http.StatusOK {
			t.Fatalf("search status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Data      []Record `json:"data"`
			TotalRows int64    `json:"total_rows"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode search response: %v", err)
		}
		return resp.Data, resp.TotalRows
	}

	t.Run("unfiltered returns all", func(t *testing.T) {
		records, total := search(t, listquery.Request[SearchFilters]{
			Search:     defaultFilters(),
			Pagination: listquery.Pagination{Page: 1, Size: 10, SortBy: "clientName", SortOrder: listquery.SortAsc},
		})
		if total != 3 || len(records) != 3 {
			t.Fatalf("total = %d, rows = %d, want 3/3", total, len(records))
		}
		if records[0].ClientName != "Alpha" || records[2].ClientName != "Gamma" {
			t.Errorf("sort order wrong: %q .. %q", records[0].ClientName, records[2].ClientName)
		}
		if records[0].EncryptedData == "" {
			t.Error("row missing sealed token")
		}
	})

	t.Run("tri-state active filter", func(t *testing.T) {
		filters := defaultFilters()
		filters.IsActive = listquery.TriNo
		records, total := search(t, listquery.Request[SearchFilters]{
			Search:     filters,
			Pagination: listquery.Pagination{Page: 1, Size: 10},
		})
		if total != 1 || len(records) != 1 || records[0].ClientName != "Beta" {
			t.Errorf("inactive filter: total = %d, records = %+v", total, records)
		}
	})

	t.Run("name substring", func(t *testing.T) {
		filters := defaultFilters()
		filters.ClientName = "amm"
		_, total := search(t, listquery.Request[SearchFilters]{
			Search:     filters,
			Pagination: listquery.Pagination{Page: 1, Size: 10},
		})
		if total != 1 {
			t.Errorf("substring match total = %d, want 1 (Gamma)", total)
		}
	})

	t.Run("pagination caps page size", func(t *testing.T) {
		records, total := search(t, listquery.Request[SearchFilters]{
			Search:     defaultFilters(),
			Pagination: listquery.Pagination{Page: 1, Size: 2, SortBy: "clientName"},
		})
		if total != 3 {
			t.Errorf("total = %d, want full count despite paging", total)
		}
		if len(records) != 2 {
			t.Errorf("rows = %d, want 2", len(records))
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{nope"))
		rec := httptest.NewRecorder()
		h.HandleSearch(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandler_GetByID(t *testing.T) {
	h, _ := newTestHandler(t)
	created := saveKey(t, h, "Roundtrip", true)

	t.Run("found", func(t *testing.T) {
		rec := postJSON(t, h.HandleGetByID, "/getbyId", GetByIDRequest{EncryptedData: created.EncryptedData})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var got Record
		json.NewDecoder(rec.Body).Decode(&got)
		if got.ClientName != "Roundtrip" || !got.IsActive {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := postJSON(t, h.HandleGetByID, "/getbyId", GetByIDRequest{EncryptedData: "garbage"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("valid token for missing record", func(t *testing.T) {
		token, err := h.Sealer.Seal("no-such-identifier")
		if err != nil {
			t.Fatalf("Seal() error = %v", err)
		}
		rec := postJSON(t, h.HandleGetByID, "/getbyId", GetByIDRequest{EncryptedData: token})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandler_GetFilters(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/getFilters", nil)
	rec := httptest.NewRecorder()
	h.HandleGetFilters(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp FiltersResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.FlagOptions) != 3 {
		t.Fatalf("flagOptions = %+v, want All/Yes/No", resp.FlagOptions)
	}
	if resp.FlagOptions[0].ID != -1 || resp.FlagOptions[0].Value != "All" {
		t.Errorf("first option = %+v, want {-1 All}", resp.FlagOptions[0])
	}
}

func TestRoutes_AdminOnly(t *testing.T) {
	h, db := newTestHandler(t)
	recorder := usagestats.NewRecorder(usage.New(db), zap.NewNop(), time.Hour)
	router := Routes(h, recorder, zap.NewNop())

	t.Run("reporter rejected", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getFilters", testutil.ReporterClaims())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin allowed", func(t *testing.T) {
		req := testutil.NewAuthenticatedRequest(http.MethodGet, "/getFilters", testutil.AdminClaims())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("no session rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/getFilters", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})
}
