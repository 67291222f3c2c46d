package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/adapter/xlsx"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateInvoiceBody is the request body for issuing a monthly bill.
type CreateInvoiceBody struct {
	RoomID     string       `json:"room_id" doc:"Billed room"`
	Month      int          `json:"month" minimum:"1" maximum:"12" doc:"Billing month"`
	Year       int          `json:"year" minimum:"2000" doc:"Billing year"`
	Readings   ReadingsBody `json:"readings" doc:"Meter readings"`
	ServiceFee *int64       `json:"service_fee,omitempty" minimum:"0" maximum:"1000000000000" doc:"Flat service fee, the configured default when omitted"`
}

// UpdateInvoiceBody records a payment or reopens a bill.
type UpdateInvoiceBody struct {
	Status          *string `json:"status,omitempty" enum:"PAID,UNPAID" doc:"New payment status"`
	PaymentProofRef *string `json:"payment_proof_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

type createInvoiceInput struct {
	Body CreateInvoiceBody
}

type updateInvoiceInput struct {
	ID   string `path:"id" doc:"Invoice ID"`
	Body UpdateInvoiceBody
}

type exportOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

func registerInvoices(api huma.API, s Services) {
	view := func(inv domain.Invoice) InvoiceResponse {
		r := toInvoiceResponse(inv)
		if inv.Status == domain.InvoiceUnpaid {
			r.PaymentURL = s.Invoices.PaymentReference(inv)
		}
		return r
	}

	huma.Register(api, secured(huma.Operation{
		OperationID:   "create-invoice",
		Method:        http.MethodPost,
		Path:          "/invoices",
		Summary:       "Issue a monthly invoice for an occupied room",
		Tags:          []string{"Invoices"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *createInvoiceInput) (*itemOutput[InvoiceResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		inv, err := s.Invoices.Create(ctx, app.InvoiceInput{
			RoomID:     in.Body.RoomID,
			Month:      in.Body.Month,
			Year:       in.Body.Year,
			Readings:   in.Body.Readings.toDomain(),
			ServiceFee: in.Body.ServiceFee,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[InvoiceResponse]{Body: view(inv)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-invoices",
		Method:      http.MethodGet,
		Path:        "/invoices",
		Summary:     "List invoices visible to the caller",
		Tags:        []string{"Invoices"},
	}), func(ctx context.Context, _ *struct{}) (*listOutput[InvoiceResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		invoices, err := s.Invoices.List(ctx, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[InvoiceResponse]{Body: mapAll(invoices, view)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "export-invoices",
		Method:      http.MethodGet,
		Path:        "/invoices/export",
		Summary:     "Download the invoice ledger as a spreadsheet",
		Tags:        []string{"Invoices"},
	}), func(ctx context.Context, _ *struct{}) (*exportOutput, error) {
		p, err := adminCaller(ctx)
		if err != nil {
			return nil, err
		}
		lines, err := s.Invoices.Ledger(ctx, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		var buf bytes.Buffer
		if err := xlsx.WriteLedger(&buf, lines); err != nil {
			return nil, toHumaError(err)
		}
		return &exportOutput{
			ContentType:        xlsx.ContentType,
			ContentDisposition: fmt.Sprintf(`attachment; filename="invoices-%s.xlsx"`, time.Now().UTC().Format(dateFormat)),
			Body:               buf.Bytes(),
		}, nil
	})

	registerTrash(api, "/invoices", "invoice", "Invoices", s.Invoices, view)

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-invoice",
		Method:      http.MethodGet,
		Path:        "/invoices/{id}",
		Summary:     "Get an invoice with its payment link",
		Tags:        []string{"Invoices"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[InvoiceResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		inv, err := s.Invoices.Get(ctx, in.ID, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[InvoiceResponse]{Body: view(inv)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "update-invoice",
		Method:      http.MethodPatch,
		Path:        "/invoices/{id}",
		Summary:     "Mark an invoice paid or unpaid",
		Tags:        []string{"Invoices"},
	}), func(ctx context.Context, in *updateInvoiceInput) (*itemOutput[InvoiceResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		patch := domain.InvoicePatch{PaymentProofRef: in.Body.PaymentProofRef}
		if in.Body.Status != nil {
			st := domain.InvoiceStatus(*in.Body.Status)
			patch.Status = &st
		}
		inv, err := s.Invoices.Update(ctx, in.ID, patch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[InvoiceResponse]{Body: view(inv)}, nil
	})
}
