package domain_test

import (
	"net/url"
	"testing"

	"github.com/neomorfeo/rentiq/internal/domain"
)

func TestPaymentReference(t *testing.T) {
	inv := domain.Invoice{ID: "abc", TotalAmount: 3900000}

	got := domain.PaymentReference(domain.DefaultPayee, inv)

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse %q: %v", got, err)
	}
	if u.Host != "img.vietqr.io" || u.Path != "/image/VCB-1234567890-compact2.png" {
		t.Errorf("url = %q", got)
	}
	q := u.Query()
	if q.Get("amount") != "3900000" {
		t.Errorf("amount = %q, want 3900000", q.Get("amount"))
	}
	if q.Get("addInfo") != "PAY-INV-abc" {
		t.Errorf("addInfo = %q, want PAY-INV-abc", q.Get("addInfo"))
	}
	if q.Get("accountName") != "LE HOANG GIANG" {
		t.Errorf("accountName = %q", q.Get("accountName"))
	}

	if again := domain.PaymentReference(domain.DefaultPayee, inv); again != got {
		t.Errorf("not deterministic: %q != %q", again, got)
	}
}
