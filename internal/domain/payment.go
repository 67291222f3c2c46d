package domain

import (
	"fmt"
	"net/url"
	"strconv"
)

// PayeeAccount is the bank account invoices are paid into.
type PayeeAccount struct {
	BankID      string
	AccountNo   string
	AccountName string
}

// DefaultPayee is used when no account is configured.
var DefaultPayee = PayeeAccount{
	BankID:      "VCB",
	AccountNo:   "1234567890",
	AccountName: "LE HOANG GIANG",
}

// PaymentMemo is the transfer description identifying an invoice.
func PaymentMemo(invoiceID string) string {
	return "PAY-INV-" + invoiceID
}

// PaymentReference returns the VietQR image URL for paying inv into acct.
// It is a pure function of its inputs.
func PaymentReference(acct PayeeAccount, inv Invoice) string {
	q := url.Values{}
	q.Set("amount", strconv.FormatInt(inv.TotalAmount, 10))
	q.Set("addInfo", PaymentMemo(inv.ID))
	q.Set("accountName", acct.AccountName)
	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-compact2.png?%s",
		url.PathEscape(acct.BankID), url.PathEscape(acct.AccountNo), q.Encode())
}
