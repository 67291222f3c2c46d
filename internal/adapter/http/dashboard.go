package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func registerDashboard(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboard",
		Summary:     "Occupancy, revenue and debt overview",
		Tags:        []string{"Dashboard"},
	}), func(ctx context.Context, _ *struct{}) (*itemOutput[DashboardResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		d, err := s.Dashboard.Get(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[DashboardResponse]{Body: toDashboardResponse(d)}, nil
	})
}
