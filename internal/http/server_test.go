package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fornecedores/internal/normalize"
	"fornecedores/internal/services"
	"fornecedores/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	st := memory.New()
	ingestion := services.NewIngestionService(st, nil)
	vendors := services.NewVendorService(st, normalize.NewDefault())
	srv := NewServer(":0", 10<<20, ingestion, vendors)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv
}

func workbookBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "ANEXO 1 - Detalhes Técnicos"
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("create sheet: %v", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("delete default sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serialize workbook: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doUpload(t *testing.T, srv *Server, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, uploadRequest(t, filename, content))
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func billingFile(t *testing.T) []byte {
	return workbookBytes(t, [][]any{
		{"Fornecedor", "Total", "Horas"},
		{"Hitss", "100", "8"},
		{"MJV", "300", "24"},
		{"HITTS", "50", "2"},
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestUploadAndList(t *testing.T) {
	srv := newTestServer(t)

	rr := doUpload(t, srv, "faturamento.xlsx", billingFile(t))
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Total        int `json:"total"`
		Skip         int `json:"skip"`
		Limit        int `json:"limit"`
		Fornecedores []struct {
			Fornecedor string  `json:"fornecedor"`
			Total      float64 `json:"total"`
			TotalHoras float64 `json:"total_horas"`
		} `json:"fornecedores"`
	}
	decodeBody(t, rr, &resp)

	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2 merged vendors", resp.Total)
	}
	if resp.Limit != defaultPageSize {
		t.Fatalf("limit = %d, want default %d", resp.Limit, defaultPageSize)
	}
	if resp.Fornecedores[0].Fornecedor != "Hitss" || resp.Fornecedores[0].Total != 150 {
		t.Fatalf("first vendor = %+v, want Hitss/150", resp.Fornecedores[0])
	}
}

func TestUploadRejectsNonXLSX(t *testing.T) {
	srv := newTestServer(t)

	rr := doUpload(t, srv, "planilha.csv", []byte("Fornecedor;Total\n"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader(nil))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestUploadDuplicateConflict(t *testing.T) {
	srv := newTestServer(t)
	data := billingFile(t)

	if rr := doUpload(t, srv, "a.xlsx", data); rr.Code != http.StatusCreated {
		t.Fatalf("first upload status = %d", rr.Code)
	}
	rr := doUpload(t, srv, "b.xlsx", data)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate upload status = %d, want 409", rr.Code)
	}
}

func TestUploadMissingSheet(t *testing.T) {
	srv := newTestServer(t)

	// A workbook with only the default sheet has no detail sheet to find.
	f := excelize.NewFile()
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("serialize workbook: %v", err)
	}

	rr := doUpload(t, srv, "errado.xlsx", buf.Bytes())
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rr.Code, rr.Body.String())
	}
}

func TestListFiltersAndSort(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", billingFile(t))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores?valorMin=200&sort=valor", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp struct {
		Total        int `json:"total"`
		Fornecedores []struct {
			Fornecedor string `json:"fornecedor"`
		} `json:"fornecedores"`
	}
	decodeBody(t, rr, &resp)
	if resp.Total != 1 || resp.Fornecedores[0].Fornecedor != "MJV" {
		t.Fatalf("resp = %+v, want only MJV", resp)
	}
}

func TestListInvalidParams(t *testing.T) {
	srv := newTestServer(t)

	for _, target := range []string{
		"/fornecedores?valorMin=abc",
		"/fornecedores?horasMax=x",
		"/fornecedores?sort=total",
		"/fornecedores?skip=-1",
		"/fornecedores?limit=0",
	} {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", target, rr.Code)
		}
	}
}

func TestListPagination(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", billingFile(t))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores?skip=1&limit=1", nil))

	var resp struct {
		Total        int `json:"total"`
		Skip         int `json:"skip"`
		Limit        int `json:"limit"`
		Fornecedores []struct {
			Fornecedor string `json:"fornecedor"`
		} `json:"fornecedores"`
	}
	decodeBody(t, rr, &resp)

	if resp.Total != 2 || resp.Skip != 1 || resp.Limit != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resp.Fornecedores) != 1 || resp.Fornecedores[0].Fornecedor != "MJV" {
		t.Fatalf("page = %+v, want [MJV]", resp.Fornecedores)
	}
}

func TestHorasEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", billingFile(t))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores/horas", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp struct {
		Fornecedores []struct {
			Fornecedor string  `json:"fornecedor"`
			TotalHoras float64 `json:"total_horas"`
		} `json:"fornecedores"`
	}
	decodeBody(t, rr, &resp)

	if len(resp.Fornecedores) != 2 {
		t.Fatalf("got %d entries, want 2", len(resp.Fornecedores))
	}
	if resp.Fornecedores[0].Fornecedor != "mjv" || resp.Fornecedores[0].TotalHoras != 24 {
		t.Fatalf("first entry = %+v, want mjv/24", resp.Fornecedores[0])
	}
}

func TestMelhorEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Empty collection answers 404.
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores/melhor", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("empty status = %d, want 404", rr.Code)
	}

	doUpload(t, srv, "a.xlsx", billingFile(t))

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores/melhor", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var best struct {
		Fornecedor string  `json:"fornecedor"`
		Total      float64 `json:"total"`
	}
	decodeBody(t, rr, &best)
	if best.Fornecedor != "MJV" || best.Total != 300 {
		t.Fatalf("best = %+v, want MJV/300", best)
	}
}

func TestResumoEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", workbookBytes(t, [][]any{
		{"Fornecedor", "Total", "Horas", "Perfil"},
		{"Hitss", "100", "8", "Desenvolvedor"},
		{"Hitss", "50", "2", "Analista"},
	}))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/resumo", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp struct {
		Resumo []struct {
			Fornecedor string  `json:"fornecedor"`
			Total      float64 `json:"fornecedor_total"`
			Perfis     []struct {
				Perfil string  `json:"perfil"`
				Total  float64 `json:"total_valor"`
			} `json:"perfis"`
		} `json:"resumo"`
	}
	decodeBody(t, rr, &resp)

	if len(resp.Resumo) != 1 || resp.Resumo[0].Total != 150 {
		t.Fatalf("resumo = %+v, want one vendor totaling 150", resp.Resumo)
	}
	if len(resp.Resumo[0].Perfis) != 2 {
		t.Fatalf("perfis = %+v, want 2", resp.Resumo[0].Perfis)
	}
}

func TestUploadsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", billingFile(t))

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp struct {
		Uploads []struct {
			Filename string `json:"filename"`
			Rows     int    `json:"rows"`
		} `json:"uploads"`
	}
	decodeBody(t, rr, &resp)
	if len(resp.Uploads) != 1 || resp.Uploads[0].Filename != "a.xlsx" || resp.Uploads[0].Rows != 3 {
		t.Fatalf("uploads = %+v", resp.Uploads)
	}
}

func TestListCacheInvalidatedByUpload(t *testing.T) {
	srv := newTestServer(t)
	doUpload(t, srv, "a.xlsx", billingFile(t))

	// Prime the cache.
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores", nil))

	doUpload(t, srv, "b.xlsx", workbookBytes(t, [][]any{
		{"Fornecedor", "Total"},
		{"Atos", "999"},
	}))

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fornecedores", nil))

	var resp struct {
		Total        int `json:"total"`
		Fornecedores []struct {
			Fornecedor string `json:"fornecedor"`
		} `json:"fornecedores"`
	}
	decodeBody(t, rr, &resp)
	if resp.Total != 1 || resp.Fornecedores[0].Fornecedor != "Atos" {
		t.Fatalf("stale cache served after upload: %+v", resp)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /upload status = %d, want 405", rr.Code)
	}

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/fornecedores", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /fornecedores status = %d, want 405", rr.Code)
	}
}
