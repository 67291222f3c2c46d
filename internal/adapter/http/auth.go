package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
)

// RegisterBody is the self-service sign-up payload.
type RegisterBody struct {
	Email        string `json:"email" format:"email" doc:"Login email"`
	Password     string `json:"password" minLength:"6" doc:"Password"`
	FullName     string `json:"full_name" minLength:"1" doc:"Full name"`
	Phone        string `json:"phone,omitempty" doc:"Phone number"`
	IdentityCard string `json:"identity_card,omitempty" doc:"National identity card number"`
}

// LoginBody exchanges credentials for an access token.
type LoginBody struct {
	Email    string `json:"email" doc:"Login email"`
	Password string `json:"password" doc:"Password"`
}

// TokenResponse carries a signed bearer token.
type TokenResponse struct {
	AccessToken string `json:"access_token" doc:"Bearer token"`
	TokenType   string `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   string `json:"expires_at" doc:"Expiry timestamp"`
	UserID      string `json:"user_id" doc:"Authenticated user"`
	Role        string `json:"role" doc:"ADMIN or TENANT"`
}

type registerInput struct {
	Body RegisterBody
}

type loginInput struct {
	Body LoginBody
}

func registerAuth(api huma.API, s Services) {
	huma.Register(api, public(huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Create a tenant account",
		Tags:          []string{"Auth"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *registerInput) (*itemOutput[UserResponse], error) {
		u, err := s.Users.Register(ctx, app.UserInput{
			Email:        in.Body.Email,
			Password:     in.Body.Password,
			FullName:     in.Body.FullName,
			Phone:        in.Body.Phone,
			IdentityCard: in.Body.IdentityCard,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[UserResponse]{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, public(huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for an access token",
		Tags:        []string{"Auth"},
	}), func(ctx context.Context, in *loginInput) (*itemOutput[TokenResponse], error) {
		p, err := s.Users.Authenticate(ctx, in.Body.Email, in.Body.Password)
		if err != nil {
			return nil, toHumaError(err)
		}
		token, exp, err := s.Tokens.Issue(p)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[TokenResponse]{Body: TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   formatTime(exp),
			UserID:      p.ID,
			Role:        string(p.Role),
		}}, nil
	})
}
