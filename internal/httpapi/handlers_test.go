package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ricemill/backend/internal/attachments"
	"ricemill/backend/internal/domain"
	"ricemill/backend/internal/service"
	"ricemill/backend/internal/snapshot"
	"ricemill/backend/internal/store/memory"
)

const (
	testSecret   = "test-secret-that-is-long-enough-123"
	testUser     = "operator"
	testPassword = "paddy-2024"
)

// newTestAPI builds a full API with a seeded in-memory store, real AuthManager
// and real Service so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()
	return newTestAPIWithBackend(t, snapshot.NoopBackend{})
}

func newTestAPIWithBackend(t *testing.T, backend snapshot.Backend) *API {
	t.Helper()

	repo, err := memory.NewSeeded(context.Background(), backend, nil)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	files, err := attachments.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("attachment store: %v", err)
	}
	svc := service.New(repo, service.Options{
		MillName:    "Sri Venkateswara Rice Mill",
		AckTarget:   40,
		Attachments: files,
		Now:         func() time.Time { return time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC) },
	})
	auth, err := NewAuthManager(testSecret, time.Hour, testUser, testPassword)
	if err != nil {
		t.Fatalf("auth manager: %v", err)
	}

	return New(svc, auth, Options{AllowedOrigin: "*"})
}

func loginAsOperator(t *testing.T, api *API) string {
	t.Helper()
	body, _ := json.Marshal(domain.LoginRequest{Username: testUser, Password: testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()

	api.Handler().ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return resp.AccessToken
}

func doJSON(t *testing.T, api *API, token string, method string, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)
	return res
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder, dest any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		t.Fatalf("decode body: %v (body: %s)", err, res.Body.String())
	}
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)

	res := doJSON(t, api, "", http.MethodGet, "/healthz", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var body map[string]any
	decodeBody(t, res, &body)
	if body["ok"] != true {
		t.Fatalf("expected ok:true, got %v", body["ok"])
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	res := doJSON(t, api, "", http.MethodPost, "/api/v1/auth/login", domain.LoginRequest{Username: testUser, Password: "wrongpassword"})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d (body: %s)", res.Code, res.Body.String())
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/api/v1/paddy-intakes", "/api/v1/summary", "/api/v1/exports/paddy-intakes"} {
		res := doJSON(t, api, "", http.MethodGet, path, nil)
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("%s expected 401, got %d", path, res.Code)
		}
	}

	res := doJSON(t, api, "not-a-token", http.MethodGet, "/api/v1/summary", nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", res.Code)
	}
}

func TestListIntakesQuery(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodGet, "/api/v1/paddy-intakes?center=Tanuku&page_size=2", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var page domain.PaddyIntakePage
	decodeBody(t, res, &page)
	if page.Total != 3 || len(page.Items) != 2 {
		t.Fatalf("expected 3 Tanuku rows with 2 on the page, got total=%d items=%d", page.Total, len(page.Items))
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/paddy-intakes?from=not-a-date", nil)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date, got %d", res.Code)
	}
}

func TestRiceBatchLifecycle(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/rice-batches", domain.RiceBatchRequest{
		AckCount:       2,
		RiceType:       "boiled",
		ProductionDate: "2024-11-20",
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}
	var created struct {
		Batch domain.RiceBatch `json:"batch"`
	}
	decodeBody(t, res, &created)
	if created.Batch.AckLabel != "2 ACK Boiled" {
		t.Fatalf("unexpected ack label %q", created.Batch.AckLabel)
	}

	res = doJSON(t, api, token, http.MethodPatch, "/api/v1/rice-batches/"+created.Batch.ID, domain.RiceBatchRequest{
		AckCount:       3,
		RiceType:       "raw",
		ProductionDate: "2024-11-21",
	})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 on edit, got %d (body: %s)", res.Code, res.Body.String())
	}

	res = doJSON(t, api, token, http.MethodPatch, "/api/v1/rice-batches/missing", domain.RiceBatchRequest{AckCount: 1, RiceType: "raw"})
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown batch, got %d", res.Code)
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/rice-batches", nil)
	var listed struct {
		Batches []domain.RiceBatch `json:"batches"`
	}
	decodeBody(t, res, &listed)
	if len(listed.Batches) != 1 || listed.Batches[0].AckCount != 3 {
		t.Fatalf("expected edited batch in list, got %+v", listed.Batches)
	}
}

func TestRiceBatchShortfallReturns422WithNumbers(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/rice-batches", domain.RiceBatchRequest{AckCount: 1000, RiceType: "raw"})
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (body: %s)", res.Code, res.Body.String())
	}
	var body map[string]any
	decodeBody(t, res, &body)
	available, _ := body["available"].(float64)
	required, _ := body["required"].(float64)
	if available <= 0 || required <= available {
		t.Fatalf("expected available < required in body, got %v", body)
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/rice-batches", nil)
	var listed struct {
		Batches []domain.RiceBatch `json:"batches"`
	}
	decodeBody(t, res, &listed)
	if len(listed.Batches) != 0 {
		t.Fatalf("rejected batch must not be stored, got %d", len(listed.Batches))
	}
}

func TestSalePaymentOverBalanceReturns422(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/byproducts/sales", domain.ByProductSaleRequest{
		SaleDate:         "2024-11-25",
		PartyName:        "Lakshmi Traders",
		PaymentTermsDays: 15,
		Items:            []domain.SaleLineItemRequest{{Category: "husk", Quantity: 10, Rate: 100, GSTRate: 5}},
	})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}
	var created struct {
		Sale domain.ByProductSale `json:"sale"`
	}
	decodeBody(t, res, &created)
	if created.Sale.TotalAmount != 1050 {
		t.Fatalf("expected total 1050, got %v", created.Sale.TotalAmount)
	}

	path := "/api/v1/byproducts/sales/" + created.Sale.ID + "/payments"
	res = doJSON(t, api, token, http.MethodPost, path, domain.ByProductPaymentRequest{Amount: 2000, Method: "cash"})
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for overpayment, got %d (body: %s)", res.Code, res.Body.String())
	}

	res = doJSON(t, api, token, http.MethodPost, path, domain.ByProductPaymentRequest{Amount: 1050, Method: "upi"})
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 for full payment, got %d (body: %s)", res.Code, res.Body.String())
	}
	var paid domain.ByProductPaymentResponse
	decodeBody(t, res, &paid)
	if paid.Sale.PaymentStatus != domain.PaymentPaid || paid.Sale.BalanceAmount != 0 {
		t.Fatalf("expected settled sale, got %+v", paid.Sale)
	}
}

func TestDuplicateProductionReturns409(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/rice-batches", domain.RiceBatchRequest{AckCount: 1, RiceType: "boiled"})
	var created struct {
		Batch domain.RiceBatch `json:"batch"`
	}
	decodeBody(t, res, &created)

	req := domain.ByProductProductionRequest{
		RiceBatchID: created.Batch.ID,
		Quantities:  map[string]float64{"husk": 90, "bran_boiled": 25},
	}
	res = doJSON(t, api, token, http.MethodPost, "/api/v1/byproducts/productions", req)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (body: %s)", res.Code, res.Body.String())
	}
	res = doJSON(t, api, token, http.MethodPost, "/api/v1/byproducts/productions", req)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second production, got %d", res.Code)
	}
	res = doJSON(t, api, token, http.MethodPatch, "/api/v1/rice-batches/"+created.Batch.ID, domain.RiceBatchRequest{AckCount: 3, RiceType: "boiled"})
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409 editing a processed batch, got %d", res.Code)
	}
}

type failingSaveBackend struct {
	*snapshot.MapBackend
	key string
}

func (b failingSaveBackend) Save(ctx context.Context, key string, payload []byte) error {
	if key == b.key {
		return errors.New("disk full")
	}
	return b.MapBackend.Save(ctx, key, payload)
}

func TestPersistenceFailureReturns503(t *testing.T) {
	api := newTestAPIWithBackend(t, failingSaveBackend{MapBackend: snapshot.NewMapBackend(), key: "rice_productions"})
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodPost, "/api/v1/rice-batches", domain.RiceBatchRequest{AckCount: 1, RiceType: "raw"})
	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d (body: %s)", res.Code, res.Body.String())
	}
	if strings.Contains(res.Body.String(), "disk full") {
		t.Fatalf("storage error details must not leak: %s", res.Body.String())
	}
}

func TestReconcileEndpoint(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodGet, "/api/v1/reconciliations", nil)
	var listed struct {
		Reconciliations []domain.Reconciliation `json:"reconciliations"`
	}
	decodeBody(t, res, &listed)
	if len(listed.Reconciliations) == 0 {
		t.Fatalf("expected reconciliation rows from seeded intakes")
	}
	target := listed.Reconciliations[0]

	res = doJSON(t, api, token, http.MethodPost, "/api/v1/reconciliations/"+target.CenterKey+"/reconcile", domain.ReconcileRequest{Amount: 0})
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero amount, got %d", res.Code)
	}

	res = doJSON(t, api, token, http.MethodPost, "/api/v1/reconciliations/"+target.CenterKey+"/reconcile", domain.ReconcileRequest{Amount: target.TotalQuintals + 100})
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var resp domain.ReconcileResponse
	decodeBody(t, res, &resp)
	if resp.Reconciliation.Status != domain.ReconCompleted || resp.Applied != target.TotalQuintals {
		t.Fatalf("expected clamped completion, got %+v", resp)
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/reconciliations/unknown--center", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestBillImportMultipart(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	page := `<html><body>
		<span class="kwh">12,450</span>
		<span id="kvah">13,100</span>
		<td data-field="rmd" data-value="180.5"></td>
	</body></html>`

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("bill", "november.html")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte(page))
	_ = form.WriteField("apply", "true")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/electricity/import", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	res := httptest.NewRecorder()
	api.Handler().ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	var result domain.BillImportResult
	decodeBody(t, res, &result)
	if !result.Applied || result.Live.KWh == nil || *result.Live.KWh != 12450 {
		t.Fatalf("expected applied live draft with kWh 12450, got %+v", result)
	}
}

func TestCSVExport(t *testing.T) {
	api := newTestAPI(t)
	token := loginAsOperator(t, api)

	res := doJSON(t, api, token, http.MethodGet, "/api/v1/exports/paddy-intakes", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", res.Code, res.Body.String())
	}
	if got := res.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Fatalf("expected csv content type, got %q", got)
	}
	rows, err := csv.NewReader(res.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 13 || rows[0][0] != "serial_no" {
		t.Fatalf("expected header plus 12 rows, got %d rows", len(rows))
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/exports/unknown", nil)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown export, got %d", res.Code)
	}

	res = doJSON(t, api, token, http.MethodGet, "/api/v1/exports/workbook", nil)
	if res.Code != http.StatusOK || res.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("expected workbook download, got %d %q", res.Code, res.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(res.Body.Bytes(), []byte("PK")) {
		t.Fatalf("expected zip container for xlsx")
	}
}
