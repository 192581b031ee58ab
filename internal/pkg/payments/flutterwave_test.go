package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testFlutterwaveClient(t *testing.T, handler http.HandlerFunc) *FlutterwaveClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewFlutterwaveClient("FLWSECK_TEST-abc")
	if err != nil {
		t.Fatal(err)
	}
	c.BaseURL = srv.URL
	return c
}

func TestInitiatePayment(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	client := testFlutterwaveClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "success",
			"message": "Hosted Link",
			"data":    map[string]any{"link": "https://ravemodal.test/v3/hosted/pay/xyz"},
		})
	})

	sess, err := client.InitiatePayment(context.Background(), FlutterwavePaymentParams{
		TxRef:              "abc12345-1714",
		Amount:             300,
		Currency:           "NGN",
		RedirectURL:        "https://quotapay.test/q/success?slug=abc12345",
		CustomerName:       "Ada",
		Title:              "Website Redesign",
		Meta:               map[string]string{"quoteId": "q-1"},
		SubaccountID:       "RS_123",
		SellerSharePercent: 95,
	})
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}
	if sess.URL != "https://ravemodal.test/v3/hosted/pay/xyz" {
		t.Fatalf("url = %q", sess.URL)
	}
	// No numeric id in the response: fall back to the tx_ref.
	if sess.ID != "abc12345-1714" {
		t.Fatalf("session id = %q, want tx_ref fallback", sess.ID)
	}
	if gotPath != "/payments" {
		t.Fatalf("path = %q, want /payments", gotPath)
	}
	if gotAuth != "Bearer FLWSECK_TEST-abc" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotBody["tx_ref"] != "abc12345-1714" || gotBody["currency"] != "NGN" {
		t.Fatalf("body = %v", gotBody)
	}
	subs, ok := gotBody["subaccounts"].([]any)
	if !ok || len(subs) != 1 {
		t.Fatalf("subaccounts = %v", gotBody["subaccounts"])
	}
	split := subs[0].(map[string]any)
	if split["id"] != "RS_123" || split["transaction_charge"] != float64(95) {
		t.Fatalf("split = %v", split)
	}
}

func TestInitiatePaymentRejection(t *testing.T) {
	client := testFlutterwaveClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":  "error",
			"message": "Invalid currency",
		})
	})

	_, err := client.InitiatePayment(context.Background(), FlutterwavePaymentParams{TxRef: "x", Amount: 100, Currency: "XXX"})
	if err == nil {
		t.Fatal("rejected payment must error")
	}
}

func TestInitiatePaymentHTTPError(t *testing.T) {
	client := testFlutterwaveClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":"error"}`, http.StatusUnauthorized)
	})

	if _, err := client.InitiatePayment(context.Background(), FlutterwavePaymentParams{TxRef: "x", Amount: 100}); err == nil {
		t.Fatal("401 must error")
	}
}

func TestCreateSubaccount(t *testing.T) {
	client := testFlutterwaveClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subaccounts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"data":   map[string]any{"id": 4321, "subaccount_id": "RS_998877"},
		})
	})

	id, err := client.CreateSubaccount(context.Background(), SubaccountParams{
		AccountNumber:    "0690000040",
		AccountBank:      "044",
		BusinessName:     "Ada Studio",
		PercentageCharge: 95,
	})
	if err != nil {
		t.Fatalf("CreateSubaccount: %v", err)
	}
	if id != "RS_998877" {
		t.Fatalf("id = %q, want RS_998877", id)
	}
}

func TestNewFlutterwaveClientRequiresKey(t *testing.T) {
	if _, err := NewFlutterwaveClient("  "); err == nil {
		t.Fatal("blank key must error")
	}
}

func TestVerifyFlutterwaveWebhook(t *testing.T) {
	if !VerifyFlutterwaveWebhook("secret-hash", "secret-hash") {
		t.Fatal("matching hash must verify")
	}
	if VerifyFlutterwaveWebhook("wrong", "secret-hash") {
		t.Fatal("mismatched hash must fail")
	}
	if VerifyFlutterwaveWebhook("", "secret-hash") {
		t.Fatal("empty header must fail")
	}
	if VerifyFlutterwaveWebhook("anything", "") {
		t.Fatal("unset secret must fail")
	}
}
