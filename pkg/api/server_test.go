package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openexchange/matchbook/config"
)

func newTestHandler() http.Handler {
	s := NewServer(&config.ServerConfig{MaxBodyBytes: 1 << 20})
	return s.Handler()
}

func post(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

const crossingBatch = `{
	"orders": [
		{"type_op": "CREATE", "account_id": "1", "amount": "1.0", "order_id": "B1",
		 "pair": "BTC/USD", "limit_price": "50000.00", "side": "BUY"},
		{"type_op": "CREATE", "account_id": "2", "amount": "1.0", "order_id": "S1",
		 "pair": "BTC/USD", "limit_price": "50000.00", "side": "SELL"}
	]
}`

func TestMissingOrdersField(t *testing.T) {
	rec := post(t, newTestHandler(), `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid or missing orders data", resp["message"])
}

func TestOrdersNotAList(t *testing.T) {
	rec := post(t, newTestHandler(), `{"orders": 42}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	rec := post(t, newTestHandler(), `{"orders": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessBatch(t *testing.T) {
	rec := post(t, newTestHandler(), crossingBatch)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Trades, 1)
	tr := resp.Trades[0]
	assert.Equal(t, "1.00000", tr.Amount)
	assert.Equal(t, "50000.00", tr.Price)
	assert.Equal(t, "B1", tr.BuyerOrderID)
	assert.Equal(t, "S1", tr.SellerOrderID)
	assert.Equal(t, "BTC/USD", tr.Pair)

	_, err := time.Parse(timestampLayout, tr.Timestamp)
	assert.NoError(t, err, "timestamp %q", tr.Timestamp)

	assert.Empty(t, resp.OrderBook.Bids)
	assert.Empty(t, resp.OrderBook.Asks)
	assert.Empty(t, resp.Rejected)

	// empty sides serialize as arrays, not null
	assert.Contains(t, rec.Body.String(), `"bids":[]`)
	assert.Contains(t, rec.Body.String(), `"asks":[]`)
}

func TestRestingBookFormatting(t *testing.T) {
	body := `{"orders": [
		{"type_op": "CREATE", "account_id": "1", "amount": "2.5", "order_id": "B1",
		 "pair": "BTC/USD", "limit_price": "49000", "side": "BUY"}
	]}`

	rec := post(t, newTestHandler(), body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.OrderBook.Bids, 1)
	entry := resp.OrderBook.Bids[0]
	assert.Equal(t, "2.50000", entry.Amount)
	assert.Equal(t, "49000.00", entry.LimitPrice)
	assert.Equal(t, "BUY", entry.Side)
	assert.Equal(t, "BTC/USD", entry.Pair)
}

func TestRejectedOperationsReported(t *testing.T) {
	body := `{"orders": [
		{"type_op": "CREATE", "account_id": "1", "amount": "oops", "order_id": "X1",
		 "pair": "BTC/USD", "limit_price": "50000.00", "side": "BUY"},
		{"type_op": "CREATE", "account_id": "1", "amount": "1.0", "order_id": "B1",
		 "pair": "BTC/USD", "limit_price": "50000.00", "side": "BUY"},
		{"type_op": "CREATE", "account_id": "2", "amount": "1.0", "order_id": "S1",
		 "pair": "BTC/USD", "limit_price": "50000.00", "side": "SELL"}
	]}`

	rec := post(t, newTestHandler(), body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Rejected, 1)
	assert.Equal(t, 0, resp.Rejected[0].Index)
	assert.Equal(t, "X1", resp.Rejected[0].OrderID)
	assert.Contains(t, resp.Rejected[0].Reason, "invalid amount")

	assert.Len(t, resp.Trades, 1)
}

func TestFreshEnginePerRequest(t *testing.T) {
	handler := newTestHandler()

	for i := 0; i < 2; i++ {
		rec := post(t, handler, crossingBatch)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ProcessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Trades, 1, "request %d must start from an empty book", i)
		assert.Empty(t, resp.OrderBook.Bids)
	}
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newTestHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
