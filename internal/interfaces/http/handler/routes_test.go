package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	libraryapp "github.com/webstack/backend/internal/application/library"
	salesapp "github.com/webstack/backend/internal/application/sales"
	"github.com/webstack/backend/internal/infrastructure/persistence"
	"github.com/webstack/backend/internal/interfaces/http/middleware"
	"github.com/webstack/backend/tests/testutil"
	"go.uber.org/zap"
)

type salesFixture struct {
	db        *persistence.Database
	events    *testutil.RecordingPublisher
	customers *CustomerHandler
	router    *gin.Engine
}

func newSalesFixture(t *testing.T) *salesFixture {
	t.Helper()
	f := &salesFixture{db: testutil.NewSQLiteDatabase(t), events: &testutil.RecordingPublisher{}}
	logger := zap.NewNop()

	customerService := salesapp.NewCustomerService(
		persistence.NewGormCustomerRepository(f.db.DB), logger,
		salesapp.WithCustomerEvents(f.events),
	)
	invoiceService := salesapp.NewInvoiceService(persistence.NewGormInvoiceRepository(f.db.DB), f.events, logger)
	productService := salesapp.NewProductService(persistence.NewGormProductRepository(f.db.DB), f.events, logger)

	customers := NewCustomerHandler(customerService, invoiceService)
	invoices := NewInvoiceHandler(invoiceService)
	products := NewProductHandler(productService)
	f.customers = customers

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/customers", customers.List)
	r.GET("/customers/:id", customers.GetByID)
	r.GET("/customers/:id/invoices", customers.ListInvoices)
	r.PUT("/customer", customers.Save)
	r.DELETE("/customers/:id", customers.Delete)
	r.GET("/invoices", invoices.List)
	r.GET("/invoices/:id", invoices.GetByID)
	r.PUT("/invoice", invoices.Save)
	r.DELETE("/invoices/:id", invoices.Delete)
	r.GET("/products", products.List)
	r.GET("/products/:id", products.GetByID)
	r.PUT("/product", products.Save)
	r.DELETE("/products/:id", products.Delete)
	f.router = r
	return f
}

type libraryFixture struct {
	store  *testutil.LibraryStore
	events *testutil.RecordingPublisher
	router *gin.Engine
	served int
}

func (f *libraryFixture) BookStreamed() { f.served++ }

func newLibraryFixture(t *testing.T, rows ...testutil.BookRow) *libraryFixture {
	t.Helper()
	f := &libraryFixture{store: testutil.NewLibraryStore(), events: &testutil.RecordingPublisher{}}
	require.NoError(t, f.store.Seed(t.Context(), testutil.BooksFromRows(rows...)...))

	bookService := libraryapp.NewBookService(f.store.Books(), f.store.Publishers(), f.events, zap.NewNop())
	books := NewBookHandler(bookService, f)
	publishers := NewPublisherHandler(libraryapp.NewPublisherService(f.store.Publishers()))

	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/books", books.List)
	r.GET("/books/:id", books.GetByID)
	r.PUT("/book", books.Save)
	r.PATCH("/books/:id/title", books.UpdateTitle)
	r.DELETE("/books/:id", books.Delete)
	r.GET("/publishers", publishers.List)
	r.GET("/publishers/:id", publishers.GetByID)
	f.router = r
	return f
}

// perform sends a request with an optional JSON body and header pairs
func perform(t *testing.T, router http.Handler, method, target string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		if raw, ok := body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			data, err := json.Marshal(body)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
