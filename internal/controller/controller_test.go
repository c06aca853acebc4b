package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rmsbilling/internal/api"
	"rmsbilling/internal/money"
	"rmsbilling/internal/validation"
	"rmsbilling/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The real backend serves JSON; without this header Go's content
		// sniffing reports text/plain and the client skips unmarshalling.
		w.Header().Set("Content-Type", "application/json")
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return api.New(srv.URL, 5*time.Second, &api.MemoryTokenStore{})
}

func TestSubmitGuard(t *testing.T) {
	var g submitGuard

	require.NoError(t, g.begin())
	require.ErrorIs(t, g.begin(), ErrSubmissionInFlight)

	g.end()
	require.NoError(t, g.begin())
}

func TestCheckTags(t *testing.T) {
	v := validator.New()

	err := checkTags(v, &models.InvoiceDraft{})
	require.Error(t, err)

	fields, ok := validation.Fields(err)
	require.True(t, ok)
	assert.NotEmpty(t, fields)

	require.NoError(t, checkTags(v, &models.InvoiceDraft{
		InvoiceNumber: "INV-001",
		CustomerID:    "cust-1",
	}))
}

// --- Invoice controller ---

func validInvoiceDraft() *models.InvoiceDraft {
	return &models.InvoiceDraft{
		InvoiceNumber: "INV-2024-001",
		InvoiceDate:   models.NewDate(2024, 4, 1),
		DueDate:       models.NewDate(2024, 5, 1),
		CustomerID:    "cust-1",
		LineItems: []models.LineItem{
			{ID: "row-1", ServiceTypeID: "svc-1", Quantity: 2, Rate: money.MustParse("1000"), TaxRate: money.RateFromInt(18)},
			{ID: "row-2", ServiceTypeID: "svc-2", Quantity: 1, Rate: money.MustParse("500"), TaxRate: money.RateFromInt(12)},
		},
	}
}

func TestInvoiceSubmitSendsComputedTotals(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/invoices", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"inv-1","total":2920}`))
	}))

	ctrl := NewInvoiceController(client)
	inv, err := ctrl.Submit(context.Background(), validInvoiceDraft())
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)

	assert.Equal(t, 2500.0, body["subtotal"])
	assert.Equal(t, 420.0, body["taxTotal"])
	assert.Equal(t, 2920.0, body["total"])

	// Client-side row IDs never reach the wire.
	items := body["lineItems"].([]interface{})
	for _, raw := range items {
		assert.NotContains(t, raw.(map[string]interface{}), "id")
	}
}

func TestInvoiceSubmitDocumentSplitTax(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"inv-1"}`))
	}))

	draft := validInvoiceDraft()
	draft.DocumentGST = &models.DocumentGST{Rate: money.RateFromInt(18)}

	ctrl := NewInvoiceController(client)
	_, err := ctrl.Submit(context.Background(), draft)
	require.NoError(t, err)

	// Subtotal 2500 taxed at the document rate, split into equal halves;
	// the lines' own rates are ignored.
	assert.Equal(t, 2500.0, body["subtotal"])
	assert.Equal(t, 450.0, body["taxTotal"])
	assert.Equal(t, 2950.0, body["total"])
	assert.Equal(t, 225.0, body["cgst"])
	assert.Equal(t, 225.0, body["sgst"])
	assert.NotContains(t, body, "igst")

	items := body["lineItems"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, 0.0, first["taxAmount"])
}

func TestInvoiceSubmitInterstateDocumentTax(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"id":"inv-1"}`))
	}))

	draft := validInvoiceDraft()
	draft.DocumentGST = &models.DocumentGST{Rate: money.RateFromInt(18), Interstate: true}

	ctrl := NewInvoiceController(client)
	_, err := ctrl.Submit(context.Background(), draft)
	require.NoError(t, err)

	assert.Equal(t, 450.0, body["igst"])
	assert.NotContains(t, body, "cgst")
	assert.NotContains(t, body, "sgst")
}

func TestInvoiceSubmitValidationStopsBeforeNetwork(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	draft := validInvoiceDraft()
	draft.LineItems[0].Quantity = 0

	ctrl := NewInvoiceController(client)
	_, err := ctrl.Submit(context.Background(), draft)
	require.Error(t, err)

	_, ok := validation.Fields(err)
	assert.True(t, ok)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestInvoiceSubmitPreservesDraftOnFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	draft := validInvoiceDraft()
	before := *draft
	beforeLines := append([]models.LineItem(nil), draft.LineItems...)

	ctrl := NewInvoiceController(client)
	_, err := ctrl.Submit(context.Background(), draft)
	require.Error(t, err)

	// The draft survives untouched for retry.
	assert.Equal(t, before.InvoiceNumber, draft.InvoiceNumber)
	assert.Equal(t, beforeLines, draft.LineItems)

	// A retry with the same draft goes through once the backend recovers.
	okClient := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"inv-1"}`))
	}))
	_, err = NewInvoiceController(okClient).Submit(context.Background(), draft)
	require.NoError(t, err)
}

// --- Receipt controller ---

type staticSequence struct {
	id  string
	err error
}

func (s *staticSequence) Next(companyID string) (string, error) { return s.id, s.err }

func validReceiptDraft() *models.ReceiptDraft {
	return &models.ReceiptDraft{
		ReceiptDate:    models.NewDate(2024, 6, 1),
		CompanyID:      "co-1",
		CustomerID:     "cust-1",
		PaymentMethod:  models.PaymentBankTransfer,
		AmountReceived: money.MustParse("30000"),
	}
}

func outstandingHandler(t *testing.T, onCreate func(body map[string]interface{})) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/invoices":
			_, _ = w.Write([]byte(`[
				{"id":"inv-b","invoiceNumber":"INV-002","customerId":"cust-1",
				 "invoiceDate":"2024-02-01","totalAmount":10000,
				 "outstandingAmount":10000,"status":"Pending"},
				{"id":"inv-a","invoiceNumber":"INV-001","customerId":"cust-1",
				 "invoiceDate":"2024-01-01","totalAmount":25000,
				 "outstandingAmount":25000,"status":"Overdue"}
			]`))
		case r.Method == http.MethodPost && r.URL.Path == "/receipts":
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if onCreate != nil {
				onCreate(body)
			}
			_, _ = w.Write([]byte(`{"id":"rct-1","receiptId":"ACM-RCT-001"}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestReceiptSubmitAutoAllocatesOldestFirst(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, outstandingHandler(t, func(b map[string]interface{}) { body = b }))

	ctrl := NewReceiptController(client, &staticSequence{id: "ACM-RCT-001"})
	result, err := ctrl.Submit(context.Background(), validReceiptDraft(), SubmitOptions{AutoAllocate: true})
	require.NoError(t, err)

	require.Len(t, result.Allocation.Allocations, 2)
	assert.Equal(t, "inv-a", result.Allocation.Allocations[0].InvoiceID)
	assert.Equal(t, money.MustParse("25000"), result.Allocation.Allocations[0].AmountAllocated)
	assert.Equal(t, "inv-b", result.Allocation.Allocations[1].InvoiceID)
	assert.Equal(t, money.MustParse("5000"), result.Allocation.Allocations[1].AmountAllocated)
	assert.True(t, result.Allocation.Unapplied.IsZero())

	assert.Equal(t, models.StatusPaid, result.ExpectedStatuses["inv-a"])
	assert.Equal(t, models.StatusPartiallyPaid, result.ExpectedStatuses["inv-b"])

	assert.Equal(t, "ACM-RCT-001", body["receiptId"])
	assert.Equal(t, 30000.0, body["netPayment"])
}

func TestReceiptSubmitAllocatesNetOfTDS(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, outstandingHandler(t, func(b map[string]interface{}) { body = b }))

	draft := validReceiptDraft()
	draft.TDSAmount = money.MustParse("10000")

	ctrl := NewReceiptController(client, &staticSequence{id: "ACM-RCT-001"})
	result, err := ctrl.Submit(context.Background(), draft, SubmitOptions{AutoAllocate: true})
	require.NoError(t, err)

	// 30000 received − 10000 TDS leaves 20000 to allocate.
	assert.Equal(t, money.MustParse("20000"), result.Allocation.TotalAllocated)
	assert.Equal(t, 20000.0, body["netPayment"])
	assert.Equal(t, 10000.0, body["tdsAmount"])
}

func TestReceiptSubmitKeepsPreAssignedReceiptID(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, outstandingHandler(t, func(b map[string]interface{}) { body = b }))

	draft := validReceiptDraft()
	draft.ReceiptID = "ACM-RCT-777"

	ctrl := NewReceiptController(client, &staticSequence{id: "should-not-be-used"})
	_, err := ctrl.Submit(context.Background(), draft, SubmitOptions{AutoAllocate: true})
	require.NoError(t, err)
	assert.Equal(t, "ACM-RCT-777", body["receiptId"])
}

func TestReceiptSubmitSelectedInvoicesOnly(t *testing.T) {
	client := newTestClient(t, outstandingHandler(t, nil))

	ctrl := NewReceiptController(client, &staticSequence{id: "ACM-RCT-001"})
	result, err := ctrl.Submit(context.Background(), validReceiptDraft(), SubmitOptions{
		AutoAllocate:       true,
		SelectedInvoiceIDs: []string{"inv-b"},
	})
	require.NoError(t, err)

	require.Len(t, result.Allocation.Allocations, 1)
	assert.Equal(t, "inv-b", result.Allocation.Allocations[0].InvoiceID)
	assert.Equal(t, money.MustParse("10000"), result.Allocation.Allocations[0].AmountAllocated)
	assert.Equal(t, money.MustParse("20000"), result.Allocation.Unapplied)
}

func TestReceiptSubmitRejectsSelectionWithoutAutoAllocate(t *testing.T) {
	var calls int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))

	ctrl := NewReceiptController(client, &staticSequence{id: "ACM-RCT-001"})
	_, err := ctrl.Submit(context.Background(), validReceiptDraft(), SubmitOptions{
		SelectedInvoiceIDs: []string{"inv-a"},
	})
	require.Error(t, err)

	fields, ok := validation.Fields(err)
	require.True(t, ok)
	assert.Equal(t, "invoices", fields[0].Field)
	assert.Zero(t, atomic.LoadInt32(&calls), "nothing may reach the backend")
}

func TestReceiptSubmitRejectsManualOverAllocation(t *testing.T) {
	var created int32
	client := newTestClient(t, outstandingHandler(t, func(map[string]interface{}) {
		atomic.AddInt32(&created, 1)
	}))

	draft := validReceiptDraft()
	draft.Allocations = []models.Allocation{
		{InvoiceID: "inv-b", AmountAllocated: money.MustParse("10000.01")},
	}

	ctrl := NewReceiptController(client, &staticSequence{id: "ACM-RCT-001"})
	_, err := ctrl.Submit(context.Background(), draft, SubmitOptions{})
	require.Error(t, err)

	_, ok := validation.Fields(err)
	assert.True(t, ok)
	assert.Zero(t, atomic.LoadInt32(&created), "receipt must not be created")
}

func TestReceiptFieldValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ReceiptDraft)
		field  string
	}{
		{
			name:   "zero amount received",
			mutate: func(d *models.ReceiptDraft) { d.AmountReceived = 0 },
			field:  "amountReceived",
		},
		{
			name:   "negative TDS",
			mutate: func(d *models.ReceiptDraft) { d.TDSAmount = money.MustParse("-1") },
			field:  "tdsAmount",
		},
		{
			name:   "TDS swallows the whole payment",
			mutate: func(d *models.ReceiptDraft) { d.TDSAmount = d.AmountReceived },
			field:  "tdsAmount",
		},
		{
			name:   "unknown payment method",
			mutate: func(d *models.ReceiptDraft) { d.PaymentMethod = "Barter" },
			field:  "paymentMethod",
		},
		{
			name:   "cheque without details",
			mutate: func(d *models.ReceiptDraft) { d.PaymentMethod = models.PaymentCheque },
			field:  "cheque",
		},
		{
			name: "cheque with incomplete details",
			mutate: func(d *models.ReceiptDraft) {
				d.PaymentMethod = models.PaymentCheque
				d.Cheque = &models.ChequeDetails{ChequeNumber: "123456"}
			},
			field: "cheque.bankName",
		},
		{
			name:   "missing receipt date",
			mutate: func(d *models.ReceiptDraft) { d.ReceiptDate = models.Date{} },
			field:  "receiptDate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validReceiptDraft()
			tt.mutate(draft)

			err := validateReceiptFields(draft)
			require.Error(t, err)

			fields, ok := validation.Fields(err)
			require.True(t, ok)

			names := make([]string, len(fields))
			for i, fe := range fields {
				names[i] = fe.Field
			}
			assert.Contains(t, names, tt.field)
		})
	}

	t.Run("complete cheque details pass", func(t *testing.T) {
		draft := validReceiptDraft()
		draft.PaymentMethod = models.PaymentCheque
		draft.Cheque = &models.ChequeDetails{
			ChequeNumber: "123456",
			BankName:     "State Bank",
			ChequeDate:   models.NewDate(2024, 6, 1),
		}
		require.NoError(t, validateReceiptFields(draft))
	})
}

// --- Credit note controller ---

func TestCreditNoteSubmitInheritsInvoiceRate(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/invoices/inv-1":
			_, _ = w.Write([]byte(`{
				"id":"inv-1","invoiceNumber":"INV-001","customerId":"cust-1",
				"lineItems":[{"serviceTypeId":"svc-1","quantity":1,"rate":2500,
				              "taxRate":18,"amount":2500,"taxAmount":450,"total":2950}],
				"subtotal":2500,"taxTotal":450,"total":2950,"status":"Paid"
			}`))
		case r.Method == http.MethodPost && r.URL.Path == "/credit-notes":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"cn-1","creditNoteId":"CN-2024-001","totalCredit":2950}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	draft := &models.CreditNoteDraft{
		CreditNoteID:   "CN-2024-001",
		CreditNoteDate: models.NewDate(2024, 6, 1),
		CustomerID:     "cust-1",
		InvoiceID:      "inv-1",
		Reason:         models.ReasonCorrection,
		Amount:         money.MustParse("2500"),
	}

	ctrl := NewCreditNoteController(client, nil)
	note, err := ctrl.Submit(context.Background(), draft, true)
	require.NoError(t, err)
	assert.Equal(t, "CN-2024-001", note.CreditNoteID)

	assert.Equal(t, 18.0, body["gstRate"])
	assert.Equal(t, 450.0, body["gstAmount"])
	assert.Equal(t, 2950.0, body["totalCredit"])

	// The draft's own rate stays untouched for the next edit.
	assert.True(t, draft.GSTRate.IsZero())
}

func TestCreditNoteSubmitRejectsAmountAboveInvoiceTotal(t *testing.T) {
	var created int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			atomic.AddInt32(&created, 1)
			return
		}
		_, _ = w.Write([]byte(`{"id":"inv-1","customerId":"cust-1","total":2950,"status":"Paid"}`))
	}))

	draft := &models.CreditNoteDraft{
		CreditNoteID:   "CN-2024-002",
		CreditNoteDate: models.NewDate(2024, 6, 1),
		CustomerID:     "cust-1",
		InvoiceID:      "inv-1",
		Reason:         models.ReasonDiscount,
		Amount:         money.MustParse("3000"),
		GSTRate:        money.RateFromInt(18),
	}

	ctrl := NewCreditNoteController(client, nil)
	_, err := ctrl.Submit(context.Background(), draft, false)
	require.Error(t, err)

	_, ok := validation.Fields(err)
	assert.True(t, ok)
	assert.Zero(t, atomic.LoadInt32(&created))
}

type staticCreditNoteSequence struct {
	id  string
	err error
}

func (s *staticCreditNoteSequence) Next(year int) (string, error) { return s.id, s.err }

func TestCreditNoteSubmitIssuesNumberFromSequence(t *testing.T) {
	var body map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			_, _ = w.Write([]byte(`{"id":"cn-1","creditNoteId":"CN-2024-001"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"inv-1","customerId":"cust-1","total":2950,"status":"Paid"}`))
	}))

	draft := &models.CreditNoteDraft{
		CreditNoteDate: models.NewDate(2024, 6, 1),
		CustomerID:     "cust-1",
		InvoiceID:      "inv-1",
		Reason:         models.ReasonDiscount,
		Amount:         money.MustParse("100"),
		GSTRate:        money.RateFromInt(18),
	}

	ctrl := NewCreditNoteController(client, &staticCreditNoteSequence{id: "CN-2024-001"})
	_, err := ctrl.Submit(context.Background(), draft, false)
	require.NoError(t, err)

	assert.Equal(t, "CN-2024-001", body["creditNoteId"])
	// The draft itself stays without an ID for the next session.
	assert.Empty(t, draft.CreditNoteID)
}

func TestCreditNoteSubmitRequiresIDWithoutSequence(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"inv-1","customerId":"cust-1","total":2950,"status":"Paid"}`))
	}))

	draft := &models.CreditNoteDraft{
		CreditNoteDate: models.NewDate(2024, 6, 1),
		CustomerID:     "cust-1",
		InvoiceID:      "inv-1",
		Reason:         models.ReasonDiscount,
		Amount:         money.MustParse("100"),
	}

	ctrl := NewCreditNoteController(client, nil)
	_, err := ctrl.Submit(context.Background(), draft, false)
	require.Error(t, err)

	fields, ok := validation.Fields(err)
	require.True(t, ok)
	assert.Equal(t, "creditNoteId", fields[0].Field)
}

func TestCreditNoteSubmitMissingInvoiceIsFieldError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"invoice not found"}`))
	}))

	draft := &models.CreditNoteDraft{
		CreditNoteID:   "CN-2024-003",
		CreditNoteDate: models.NewDate(2024, 6, 1),
		CustomerID:     "cust-1",
		InvoiceID:      "inv-gone",
		Reason:         models.ReasonReturn,
		Amount:         money.MustParse("100"),
	}

	ctrl := NewCreditNoteController(client, nil)
	_, err := ctrl.Submit(context.Background(), draft, false)
	require.Error(t, err)

	fields, ok := validation.Fields(err)
	require.True(t, ok)
	assert.Equal(t, "invoiceId", fields[0].Field)
}

// --- Reference loader ---

func TestReferenceLoaderLoadsAllSets(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/customers":
			_, _ = w.Write([]byte(`[{"id":"cust-1","name":"Acme"}]`))
		case "/service-types":
			_, _ = w.Write([]byte(`[{"id":"svc-1","name":"Audit","taxRate":18}]`))
		case "/client-types":
			_, _ = w.Write([]byte(`[{"id":"ct-1","name":"Corporate"}]`))
		}
	}))

	loader := NewReferenceLoader(client)
	data, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, data.Available())
	require.Len(t, data.Customers, 1)
	assert.Equal(t, "Acme", data.Customers[0].Name)
	require.Len(t, data.ServiceTypes, 1)
	assert.True(t, data.ServiceTypes[0].TaxRate.Equal(money.RateFromInt(18)))
	require.Len(t, data.ClientTypes, 1)
}

func TestReferenceLoaderPartialFailure(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/service-types" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	loader := NewReferenceLoader(client)
	data, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.False(t, data.Available())
	assert.NoError(t, data.CustomersErr)
	assert.Error(t, data.ServiceTypesErr)
	assert.NoError(t, data.ClientTypesErr)
}

func TestReferenceLoaderDiscardsStaleLoad(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The first load's three requests block until released; the second
		// load's requests answer immediately.
		if atomic.AddInt32(&calls, 1) <= 3 {
			<-release
		}
		_, _ = w.Write([]byte(`[]`))
	}))

	loader := NewReferenceLoader(client)

	firstDone := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background())
		firstDone <- err
	}()

	// Wait for the first load to be in flight.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	_, err := loader.Load(context.Background())
	require.NoError(t, err)

	close(release)
	require.ErrorIs(t, <-firstDone, ErrStaleLoad)
}
