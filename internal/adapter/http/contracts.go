package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateContractBody is the request body for signing a lease.
type CreateContractBody struct {
	RoomID       string `json:"room_id" doc:"Room to lease"`
	UserID       string `json:"user_id" doc:"Tenant"`
	StartDate    string `json:"start_date" doc:"First day of the lease (YYYY-MM-DD)"`
	EndDate      string `json:"end_date" doc:"Last day of the lease (YYYY-MM-DD)"`
	Deposit      int64  `json:"deposit,omitempty" minimum:"0" doc:"Deposit in VND"`
	ScanImageRef string `json:"scan_image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

// UpdateContractBody holds optional lease changes. Status changes go through
// the terminate endpoint.
type UpdateContractBody struct {
	StartDate    *string `json:"start_date,omitempty" doc:"First day of the lease (YYYY-MM-DD)"`
	EndDate      *string `json:"end_date,omitempty" doc:"Last day of the lease (YYYY-MM-DD)"`
	Deposit      *int64  `json:"deposit,omitempty" minimum:"0" doc:"Deposit in VND"`
	ScanImageRef *string `json:"scan_image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

func (b UpdateContractBody) toDomain() (domain.ContractPatch, error) {
	patch := domain.ContractPatch{Deposit: b.Deposit, ScanImageRef: b.ScanImageRef}
	if b.StartDate != nil {
		t, err := parseDate("start_date", *b.StartDate)
		if err != nil {
			return patch, err
		}
		patch.StartDate = &t
	}
	if b.EndDate != nil {
		t, err := parseDate("end_date", *b.EndDate)
		if err != nil {
			return patch, err
		}
		patch.EndDate = &t
	}
	return patch, nil
}

type createContractInput struct {
	Body CreateContractBody
}

type updateContractInput struct {
	ID   string `path:"id" doc:"Contract ID"`
	Body UpdateContractBody
}

func registerContracts(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID:   "create-contract",
		Method:        http.MethodPost,
		Path:          "/contracts",
		Summary:       "Sign a lease and occupy the room",
		Tags:          []string{"Contracts"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *createContractInput) (*itemOutput[ContractResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		start, err := parseDate("start_date", in.Body.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDate("end_date", in.Body.EndDate)
		if err != nil {
			return nil, err
		}
		c, err := s.Contracts.Create(ctx, app.ContractInput{
			RoomID:       in.Body.RoomID,
			UserID:       in.Body.UserID,
			StartDate:    start,
			EndDate:      end,
			Deposit:      in.Body.Deposit,
			ScanImageRef: in.Body.ScanImageRef,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[ContractResponse]{Body: toContractResponse(c)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-contracts",
		Method:      http.MethodGet,
		Path:        "/contracts",
		Summary:     "List contracts visible to the caller",
		Tags:        []string{"Contracts"},
	}), func(ctx context.Context, _ *struct{}) (*listOutput[ContractResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		contracts, err := s.Contracts.List(ctx, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[ContractResponse]{Body: mapAll(contracts, toContractResponse)}, nil
	})

	registerTrash(api, "/contracts", "contract", "Contracts", s.Contracts, toContractResponse)

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-contract",
		Method:      http.MethodGet,
		Path:        "/contracts/{id}",
		Summary:     "Get a contract",
		Tags:        []string{"Contracts"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[ContractResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		c, err := s.Contracts.Get(ctx, in.ID, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[ContractResponse]{Body: toContractResponse(c)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "update-contract",
		Method:      http.MethodPatch,
		Path:        "/contracts/{id}",
		Summary:     "Update lease terms",
		Tags:        []string{"Contracts"},
	}), func(ctx context.Context, in *updateContractInput) (*itemOutput[ContractResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		patch, err := in.Body.toDomain()
		if err != nil {
			return nil, err
		}
		c, err := s.Contracts.Update(ctx, in.ID, patch)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[ContractResponse]{Body: toContractResponse(c)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "terminate-contract",
		Method:      http.MethodPost,
		Path:        "/contracts/{id}/terminate",
		Summary:     "End a lease and free its room",
		Tags:        []string{"Contracts"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[ContractResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		c, err := s.Contracts.Terminate(ctx, in.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[ContractResponse]{Body: toContractResponse(c)}, nil
	})
}
