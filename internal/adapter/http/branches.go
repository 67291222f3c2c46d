package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateBranchBody is the request body for creating a branch.
type CreateBranchBody struct {
	Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Branch name"`
	Address     string `json:"address,omitempty" doc:"Street address"`
	ManagerName string `json:"manager_name,omitempty" doc:"On-site manager"`
	ImageRef    string `json:"image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

// UpdateBranchBody holds optional branch changes.
type UpdateBranchBody struct {
	Name        *string `json:"name,omitempty" minLength:"1" maxLength:"255" doc:"Branch name"`
	Address     *string `json:"address,omitempty" doc:"Street address"`
	ManagerName *string `json:"manager_name,omitempty" doc:"On-site manager"`
	ImageRef    *string `json:"image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

type createBranchInput struct {
	Body CreateBranchBody
}

type updateBranchInput struct {
	ID   string `path:"id" doc:"Branch ID"`
	Body UpdateBranchBody
}

func registerBranches(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID:   "create-branch",
		Method:        http.MethodPost,
		Path:          "/branches",
		Summary:       "Create a branch",
		Tags:          []string{"Branches"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *createBranchInput) (*itemOutput[BranchResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		b, err := s.Branches.Create(ctx, app.BranchInput{
			Name:        in.Body.Name,
			Address:     in.Body.Address,
			ManagerName: in.Body.ManagerName,
			ImageRef:    in.Body.ImageRef,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[BranchResponse]{Body: toBranchResponse(b)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-branches",
		Method:      http.MethodGet,
		Path:        "/branches",
		Summary:     "List branches with their room counts",
		Tags:        []string{"Branches"},
	}), func(ctx context.Context, _ *struct{}) (*listOutput[BranchResponse], error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		branches, err := s.Branches.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[BranchResponse]{Body: mapAll(branches, toBranchResponse)}, nil
	})

	registerTrash(api, "/branches", "branch", "Branches", s.Branches, toBranchResponse)

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-branch",
		Method:      http.MethodGet,
		Path:        "/branches/{id}",
		Summary:     "Get a branch",
		Tags:        []string{"Branches"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[BranchResponse], error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		b, err := s.Branches.Get(ctx, in.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[BranchResponse]{Body: toBranchResponse(b)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "update-branch",
		Method:      http.MethodPatch,
		Path:        "/branches/{id}",
		Summary:     "Update a branch",
		Tags:        []string{"Branches"},
	}), func(ctx context.Context, in *updateBranchInput) (*itemOutput[BranchResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		b, err := s.Branches.Update(ctx, in.ID, domain.BranchPatch{
			Name:        in.Body.Name,
			Address:     in.Body.Address,
			ManagerName: in.Body.ManagerName,
			ImageRef:    in.Body.ImageRef,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[BranchResponse]{Body: toBranchResponse(b)}, nil
	})
}
