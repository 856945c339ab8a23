package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	salesapp "github.com/webstack/backend/internal/application/sales"
	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/interfaces/http/dto"
	"github.com/webstack/backend/tests/testutil"
)

func TestCustomerHandler_ListEmpty(t *testing.T) {
	f := newSalesFixture(t)

	w := perform(t, f.router, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCustomerHandler_SaveAndList(t *testing.T) {
	f := newSalesFixture(t)
	req := testutil.NewCustomerFaker(1).Customer(1)

	w := perform(t, f.router, http.MethodPut, "/customer", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decodeBody[salesapp.CustomerResponse](t, w)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, req.Name, saved.Name)
	assert.Equal(t, req.PhoneNumbers, saved.PhoneNumbers)

	w = perform(t, f.router, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]salesapp.CustomerResponse](t, w)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, req.Name, got.Name)
	assert.Equal(t, req.MealPreferences, got.MealPreferences)
	require.Len(t, got.Addresses, 2)
	require.NotNil(t, got.Addresses[1].HighRiseExtension)
	assert.Equal(t, req.Addresses[1].HighRiseExtension.BuzzerCode, got.Addresses[1].HighRiseExtension.BuzzerCode)
	require.NotNil(t, got.ShippingContact)
	assert.NotZero(t, got.ShippingContact.ID)
	assert.Equal(t, req.ShippingContact.Name, got.ShippingContact.Name)

	assert.Contains(t, f.events.Types(), sales.EventTypeCustomerSaved)
}

func TestCustomerHandler_SaveReplacesCollections(t *testing.T) {
	f := newSalesFixture(t)
	req := testutil.NewCustomerFaker(2).Customer(5)
	require.Equal(t, http.StatusOK, perform(t, f.router, http.MethodPut, "/customer", req).Code)

	req.PhoneNumbers = []string{"555-0000"}
	req.Addresses = nil
	req.MealPreferences = map[string]string{"snack": "apple"}
	w := perform(t, f.router, http.MethodPut, "/customer", req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(t, f.router, http.MethodGet, "/customers/5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[salesapp.CustomerResponse](t, w)
	assert.Equal(t, []string{"555-0000"}, got.PhoneNumbers)
	assert.Empty(t, got.Addresses)
	assert.Equal(t, map[string]string{"snack": "apple"}, got.MealPreferences)
}

func TestCustomerHandler_SaveValidation(t *testing.T) {
	f := newSalesFixture(t)

	tests := []struct {
		name     string
		body     any
		wantCode string
	}{
		{"missing id", map[string]any{"name": "Alice"}, dto.ErrCodeValidation},
		{"zero id", map[string]any{"id": 0, "name": "Alice"}, dto.ErrCodeValidation},
		{"blank phone", map[string]any{"id": 1, "phoneNumbers": []string{""}}, dto.ErrCodeValidation},
		{"id of wrong type", map[string]any{"id": "one"}, dto.ErrCodeValidation},
		{"malformed json", `{"id": 1`, dto.ErrCodeInvalidJSON},
		{"unknown invoice", map[string]any{"id": 1, "invoices": []map[string]int{{"id": 99}}}, dto.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, f.router, http.MethodPut, "/customer", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decodeBody[dto.ErrorResponse](t, w)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestCustomerHandler_Delete(t *testing.T) {
	f := newSalesFixture(t)
	require.Equal(t, http.StatusOK, perform(t, f.router, http.MethodPut, "/customer", testutil.NewCustomerFaker(3).Customer(9)).Code)

	w := perform(t, f.router, http.MethodDelete, "/customers/9", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = perform(t, f.router, http.MethodDelete, "/customers/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Contains(t, f.events.Types(), sales.EventTypeCustomerDeleted)
}

func TestCustomerHandler_ListInvoices(t *testing.T) {
	f := newSalesFixture(t)
	require.Equal(t, http.StatusOK, perform(t, f.router, http.MethodPut, "/customer", map[string]any{"id": 3, "name": "Carol"}).Code)

	w := perform(t, f.router, http.MethodPut, "/invoice", map[string]any{
		"date":       "2024-03-01T10:00:00Z",
		"place":      "Boston",
		"customerId": 3,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = perform(t, f.router, http.MethodGet, "/customers/3/invoices", nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decodeBody[[]salesapp.InvoiceResponse](t, w)
	require.Len(t, invoices, 1)
	assert.Equal(t, "Boston", invoices[0].Place)
}

func TestCustomerHandler_GetByID(t *testing.T) {
	f := newSalesFixture(t)
	req := testutil.NewCustomerFaker(3).Customer(9)
	require.Equal(t, http.StatusOK, perform(t, f.router, http.MethodPut, "/customer", req).Code)

	withID := func(id string) func(*testing.T, *testutil.TestContext) {
		return func(_ *testing.T, tc *testutil.TestContext) {
			tc.Context.Params = gin.Params{{Key: "id", Value: id}}
		}
	}

	testutil.RunHTTPTestCases(t, f.customers.GetByID, []testutil.HTTPTestCase{
		{
			Name:           "stored customer",
			Path:           "/customers/9",
			Setup:          withID("9"),
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   map[string]any{"id": float64(9), "name": req.Name},
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				got := testutil.JSONResponseAs[salesapp.CustomerResponse](t, tc)
				assert.Equal(t, req.PhoneNumbers, got.PhoneNumbers)
				assert.Len(t, got.Addresses, len(req.Addresses))
			},
		},
		{
			Name:           "unknown customer",
			Path:           "/customers/404",
			Setup:          withID("404"),
			ExpectedStatus: http.StatusNotFound,
			ExpectedBody:   map[string]any{"success": false},
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc, dto.ErrCodeNotFound)
			},
		},
		{
			Name:           "id is not a number",
			Path:           "/customers/abc",
			Setup:          withID("abc"),
			ExpectedStatus: http.StatusBadRequest,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc, dto.ErrCodeBadRequest)
			},
		},
	})
}

func TestCustomerHandler_ListInvoicesOfUnknownCustomer(t *testing.T) {
	f := newSalesFixture(t)

	testutil.RunHTTPTestCase(t, f.customers.ListInvoices, testutil.HTTPTestCase{
		Name: "no invoices",
		Path: "/customers/5/invoices",
		Setup: func(_ *testing.T, tc *testutil.TestContext) {
			tc.Context.Params = gin.Params{{Key: "id", Value: "5"}}
		},
		ExpectedStatus: http.StatusOK,
		Validate: func(t *testing.T, tc *testutil.TestContext) {
			assert.JSONEq(t, `[]`, string(tc.ResponseBody()))
		},
	})
}
