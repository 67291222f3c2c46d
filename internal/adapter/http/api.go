package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

const (
	apiPrefix      = "/api/v1"
	securityScheme = "bearer"
	timeFormat     = "2006-01-02T15:04:05Z"
	dateFormat     = "2006-01-02"
	maxUploadBytes = 10 << 20
)

// TokenIssuer signs access tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p domain.Principal) (string, time.Time, error)
}

// Services are the use cases exposed over HTTP.
type Services struct {
	Branches  *app.BranchService
	Rooms     *app.RoomService
	Contracts *app.ContractService
	Invoices  *app.InvoiceService
	Users     *app.UserService
	Access    *app.AccessService
	Dashboard *app.DashboardService
	Tokens    TokenIssuer
	Files     domain.FileStore
}

// Config returns the huma configuration with bearer authentication declared
// in the OpenAPI document.
func Config(title, version string) huma.Config {
	cfg := huma.DefaultConfig(title, version)
	if cfg.Components.SecuritySchemes == nil {
		cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	cfg.Components.SecuritySchemes[securityScheme] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	return cfg
}

// Register adds every API route to the Huma API.
func Register(api huma.API, s Services) {
	registerAuth(api, s)
	registerUsers(api, s)
	registerBranches(api, s)
	registerRooms(api, s)
	registerContracts(api, s)
	registerInvoices(api, s)
	registerDashboard(api, s)
	registerUploads(api, s)
	registerAccess(api, s)
}

// secured marks op as requiring a bearer token.
func secured(op huma.Operation) huma.Operation {
	op.Security = []map[string][]string{{securityScheme: {}}}
	op.Path = apiPrefix + op.Path
	return op
}

func public(op huma.Operation) huma.Operation {
	op.Path = apiPrefix + op.Path
	return op
}

// caller returns the authenticated principal or a 401.
func caller(ctx context.Context) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(ctx)
	if !ok {
		return domain.Principal{}, huma.Error401Unauthorized("authentication required")
	}
	return p, nil
}

// adminCaller returns the authenticated principal if it is an administrator.
func adminCaller(ctx context.Context) (domain.Principal, error) {
	p, err := caller(ctx)
	if err != nil {
		return domain.Principal{}, err
	}
	if !p.IsAdmin() {
		return domain.Principal{}, huma.Error403Forbidden("administrator role required")
	}
	return p, nil
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, domain.ErrTransient):
		return huma.Error503ServiceUnavailable("service temporarily unavailable, retry the request")
	}
	return huma.Error500InternalServerError("internal server error")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatDeleted(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, huma.Error400BadRequest(field + " must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// --- Shared shapes ---

type idPath struct {
	ID string `path:"id" doc:"Resource ID"`
}

type listOutput[R any] struct {
	Body []R
}

type itemOutput[R any] struct {
	Body R
}

func mapAll[T, R any](items []T, f func(T) R) []R {
	out := make([]R, len(items))
	for i, v := range items {
		out[i] = f(v)
	}
	return out
}

// trashService is the reversible-delete surface every entity service exposes.
type trashService[T any] interface {
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	ListTrash(ctx context.Context) ([]T, error)
}

// registerTrash adds the administrator-only soft delete, restore, purge and
// trash listing routes under base.
func registerTrash[T, R any](api huma.API, base, entity, tag string, svc trashService[T], view func(T) R) {
	huma.Register(api, secured(huma.Operation{
		OperationID: "list-" + entity + "-trash",
		Method:      http.MethodGet,
		Path:        base + "/trash",
		Summary:     "List soft-deleted " + entity + "s",
		Tags:        []string{tag},
	}), func(ctx context.Context, _ *struct{}) (*listOutput[R], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		items, err := svc.ListTrash(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[R]{Body: mapAll(items, view)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "delete-" + entity,
		Method:      http.MethodDelete,
		Path:        base + "/{id}",
		Summary:     "Move a " + entity + " to the trash",
		Tags:        []string{tag},
	}), func(ctx context.Context, in *idPath) (*struct{}, error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		if err := svc.SoftDelete(ctx, in.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "restore-" + entity,
		Method:      http.MethodPost,
		Path:        base + "/{id}/restore",
		Summary:     "Restore a " + entity + " from the trash",
		Tags:        []string{tag},
	}), func(ctx context.Context, in *idPath) (*struct{}, error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		if err := svc.Restore(ctx, in.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "purge-" + entity,
		Method:      http.MethodDelete,
		Path:        base + "/{id}/purge",
		Summary:     "Permanently delete a " + entity + " from the trash",
		Tags:        []string{tag},
	}), func(ctx context.Context, in *idPath) (*struct{}, error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		if err := svc.HardDelete(ctx, in.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
