package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateUserBody is the administrator account creation payload.
type CreateUserBody struct {
	Email        string `json:"email" format:"email" doc:"Login email"`
	Password     string `json:"password" minLength:"6" doc:"Password"`
	FullName     string `json:"full_name" minLength:"1" doc:"Full name"`
	Phone        string `json:"phone,omitempty" doc:"Phone number"`
	IdentityCard string `json:"identity_card,omitempty" doc:"National identity card number"`
	Role         string `json:"role,omitempty" enum:"ADMIN,TENANT" doc:"Role, TENANT when omitted"`
}

// UpdateUserBody holds optional profile changes. Only administrators may
// change the role.
type UpdateUserBody struct {
	FullName     *string `json:"full_name,omitempty" doc:"Full name"`
	Phone        *string `json:"phone,omitempty" doc:"Phone number"`
	IdentityCard *string `json:"identity_card,omitempty" doc:"National identity card number"`
	Role         *string `json:"role,omitempty" enum:"ADMIN,TENANT" doc:"Role"`
	Password     *string `json:"password,omitempty" minLength:"6" doc:"New password"`
}

type createUserInput struct {
	Body CreateUserBody
}

type updateUserInput struct {
	ID   string `path:"id" doc:"User ID"`
	Body UpdateUserBody
}

func registerUsers(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID: "get-current-user",
		Method:      http.MethodGet,
		Path:        "/users/me",
		Summary:     "Get the authenticated user's profile",
		Tags:        []string{"Users"},
	}), func(ctx context.Context, _ *struct{}) (*itemOutput[UserResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		u, err := s.Users.Get(ctx, p.ID, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[UserResponse]{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List accounts",
		Tags:        []string{"Users"},
	}), func(ctx context.Context, _ *struct{}) (*listOutput[UserResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		users, err := s.Users.List(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[UserResponse]{Body: mapAll(users, toUserResponse)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Create an account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *createUserInput) (*itemOutput[UserResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		role := domain.Role(in.Body.Role)
		if role == "" {
			role = domain.RoleTenant
		}
		u, err := s.Users.Create(ctx, app.UserInput{
			Email:        in.Body.Email,
			Password:     in.Body.Password,
			FullName:     in.Body.FullName,
			Phone:        in.Body.Phone,
			IdentityCard: in.Body.IdentityCard,
			Role:         role,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[UserResponse]{Body: toUserResponse(u)}, nil
	})

	registerTrash(api, "/users", "user", "Users", s.Users, toUserResponse)

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get an account",
		Tags:        []string{"Users"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[UserResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		u, err := s.Users.Get(ctx, in.ID, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[UserResponse]{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPatch,
		Path:        "/users/{id}",
		Summary:     "Update an account",
		Tags:        []string{"Users"},
	}), func(ctx context.Context, in *updateUserInput) (*itemOutput[UserResponse], error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		patch := domain.UserPatch{
			FullName:     in.Body.FullName,
			Phone:        in.Body.Phone,
			IdentityCard: in.Body.IdentityCard,
			Password:     in.Body.Password,
		}
		if in.Body.Role != nil {
			role := domain.Role(*in.Body.Role)
			patch.Role = &role
		}
		u, err := s.Users.Update(ctx, in.ID, patch, p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[UserResponse]{Body: toUserResponse(u)}, nil
	})
}
