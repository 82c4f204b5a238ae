package moneyunify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MoneyUnify/moneyunify-go/internal/core/domain"
)

func testClient(srv *httptest.Server) *Client {
	return &Client{
		authID: "auth-123",
		base:   srv.URL,
		http:   &http.Client{Timeout: 2 * time.Second},
	}
}

func TestRequestPayment_Success(t *testing.T) {
	var gotPath, gotMethod, gotType string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotPath = r.URL.Path
		gotForm = map[string]string{
			"auth_id":    r.PostFormValue("auth_id"),
			"from_payer": r.PostFormValue("from_payer"),
			"amount":     r.PostFormValue("amount"),
			"currency":   r.PostFormValue("currency"),
			"reference":  r.PostFormValue("reference"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"ok","data":{"transaction_id":"TXN123"}}`))
	}))
	defer srv.Close()

	client := testClient(srv)
	txn, err := client.RequestPayment(context.Background(), "0971234567", domain.NewMoney(10000, domain.ZMW), "MU-ref-1")
	require.NoError(t, err)
	require.Equal(t, "TXN123", txn)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "application/x-www-form-urlencoded", gotType)
	require.Equal(t, "/payments/request", gotPath)
	require.Equal(t, map[string]string{
		"auth_id":    "auth-123",
		"from_payer": "0971234567",
		"amount":     "100.00",
		"currency":   "ZMW",
		"reference":  "MU-ref-1",
	}, gotForm)
}

func TestRequestPayment_RejectedCarriesProviderMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Insufficient funds","data":{}}`))
	}))
	defer srv.Close()

	client := testClient(srv)
	_, err := client.RequestPayment(context.Background(), "0971234567", domain.NewMoney(10000, domain.ZMW), "ref")

	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	require.Equal(t, "Insufficient funds", rej.Message)
}

func TestRequestPayment_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(srv)
	_, err := client.RequestPayment(context.Background(), "0971234567", domain.NewMoney(10000, domain.ZMW), "ref")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestRequestPayment_ValidatesBeforeCalling(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := testClient(srv)
	var vErr *domain.ValidationError

	_, err := client.RequestPayment(context.Background(), "bad-phone", domain.NewMoney(10000, domain.ZMW), "ref")
	require.ErrorAs(t, err, &vErr)

	_, err = client.RequestPayment(context.Background(), "0971234567", domain.NewMoney(0, domain.ZMW), "ref")
	require.ErrorAs(t, err, &vErr)

	_, err = client.RequestPayment(context.Background(), "0971234567", domain.NewMoney(10000, domain.Currency("BTC")), "ref")
	require.ErrorAs(t, err, &vErr)

	require.Zero(t, calls)
}

func TestVerifyPayment_StatusMapping(t *testing.T) {
	tests := []struct {
		body string
		want domain.VerificationStatus
	}{
		{`{"data":{"status":"SUCCESS"}}`, domain.VerificationSuccess},
		{`{"data":{"status":"success"}}`, domain.VerificationSuccess},
		{`{"data":{"status":"FAILED"}}`, domain.VerificationFailed},
		{`{"data":{"status":"REJECTED"}}`, domain.VerificationRejected},
		{`{"data":{"status":"CANCELLED"}}`, domain.VerificationCancelled},
		{`{"data":{"status":"PENDING"}}`, domain.VerificationPending},
		{`{"data":{}}`, domain.VerificationPending},
		{`{}`, domain.VerificationPending},
	}

	for _, tt := range tests {
		var gotPath, gotTxn string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			_ = r.ParseForm()
			gotTxn = r.PostFormValue("transaction_id")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(tt.body))
		}))

		client := testClient(srv)
		status, err := client.VerifyPayment(context.Background(), "TXN123")
		require.NoError(t, err)
		require.Equal(t, tt.want, status, "body %s", tt.body)
		require.Equal(t, "/payments/verify", gotPath)
		require.Equal(t, "TXN123", gotTxn)
		srv.Close()
	}
}

func TestVerifyPayment_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Connection refused from here on.

	client := testClient(srv)
	status, err := client.VerifyPayment(context.Background(), "TXN123")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, domain.VerificationPending, status)
}

func TestNewClient_BaseSelection(t *testing.T) {
	require.Equal(t, sandboxBase, NewClient("a", true).base)
	require.Equal(t, liveBase, NewClient("a", false).base)
}
