package http

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const defaultLogLimit = 100

// VerifyResponse is the gate decision for a face image.
type VerifyResponse struct {
	Matched bool          `json:"matched" doc:"Whether the face belongs to a registered user"`
	User    *UserResponse `json:"user,omitempty" doc:"Matched user"`
}

type registerFaceInput struct {
	UserID  string `path:"userId" doc:"User to enroll"`
	RawBody multipart.Form
}

type accessLogsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum entries, newest first (default 100)"`
}

func registerAccess(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID:  "register-face",
		Method:       http.MethodPost,
		Path:         "/access/faces/{userId}",
		Summary:      "Enroll a user's face for gate access",
		Tags:         []string{"Access"},
		MaxBodyBytes: maxUploadBytes,
	}), func(ctx context.Context, in *registerFaceInput) (*struct{}, error) {
		p, err := caller(ctx)
		if err != nil {
			return nil, err
		}
		if !p.IsAdmin() && p.ID != in.UserID {
			return nil, huma.Error403Forbidden("cannot enroll another user's face")
		}
		name, image, err := readFormFile(&in.RawBody)
		if err != nil {
			return nil, err
		}
		if err := s.Access.RegisterFace(ctx, in.UserID, name, image); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, public(huma.Operation{
		OperationID:  "verify-face",
		Method:       http.MethodPost,
		Path:         "/access/verify",
		Summary:      "Match a gate camera image against enrolled faces",
		Tags:         []string{"Access"},
		MaxBodyBytes: maxUploadBytes,
	}), func(ctx context.Context, in *fileInput) (*itemOutput[VerifyResponse], error) {
		name, image, err := readFormFile(&in.RawBody)
		if err != nil {
			return nil, err
		}
		v, err := s.Access.Verify(ctx, name, image)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := VerifyResponse{Matched: v.Matched}
		if v.Matched {
			u := toUserResponse(v.User)
			out.User = &u
		}
		return &itemOutput[VerifyResponse]{Body: out}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-access-logs",
		Method:      http.MethodGet,
		Path:        "/access/logs",
		Summary:     "List recent gate access attempts",
		Tags:        []string{"Access"},
	}), func(ctx context.Context, in *accessLogsInput) (*listOutput[AccessLogResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		limit := in.Limit
		if limit == 0 {
			limit = defaultLogLimit
		}
		logs, err := s.Access.Logs(ctx, limit)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[AccessLogResponse]{Body: mapAll(logs, toAccessLogResponse)}, nil
	})
}
