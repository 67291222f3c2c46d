package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// CreateRoomBody is the request body for creating a room.
type CreateRoomBody struct {
	BranchID   string  `json:"branch_id" doc:"Owning branch"`
	RoomNumber string  `json:"room_number" minLength:"1" doc:"Room number, unique within the branch"`
	Price      int64   `json:"price" minimum:"0" maximum:"1000000000000" doc:"Monthly rent in VND"`
	Area       float64 `json:"area,omitempty" minimum:"0" doc:"Floor area in square meters"`
	ImageRef   string  `json:"image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

// UpdateRoomBody holds optional room changes. Status is not writable; it
// follows contracts and the trash.
type UpdateRoomBody struct {
	BranchID   *string  `json:"branch_id,omitempty" doc:"Move the room to another branch"`
	RoomNumber *string  `json:"room_number,omitempty" minLength:"1" doc:"Room number"`
	Price      *int64   `json:"price,omitempty" minimum:"0" maximum:"1000000000000" doc:"Monthly rent in VND"`
	Area       *float64 `json:"area,omitempty" minimum:"0" doc:"Floor area in square meters"`
	ImageRef   *string  `json:"image_ref,omitempty" doc:"Reference returned by the upload endpoint"`
}

// LatestReadingsResponse seeds the next invoice's old meter values.
type LatestReadingsResponse struct {
	Electricity int64 `json:"electricity" doc:"Last recorded electricity meter (kWh)"`
	Water       int64 `json:"water" doc:"Last recorded water meter (m3)"`
}

type createRoomInput struct {
	Body CreateRoomBody
}

type updateRoomInput struct {
	ID   string `path:"id" doc:"Room ID"`
	Body UpdateRoomBody
}

type listRoomsInput struct {
	BranchID string `query:"branch_id" doc:"Only rooms of this branch"`
	Status   string `query:"status" doc:"Only rooms in this status (AVAILABLE, OCCUPIED, MAINTENANCE)"`
}

func (in listRoomsInput) filter() (domain.RoomFilter, error) {
	f := domain.RoomFilter{BranchID: in.BranchID}
	if in.Status == "" {
		return f, nil
	}
	st := domain.RoomStatus(in.Status)
	switch st {
	case domain.RoomAvailable, domain.RoomOccupied, domain.RoomMaintenance:
		f.Status = &st
		return f, nil
	}
	return f, huma.Error400BadRequest("status must be one of AVAILABLE, OCCUPIED, MAINTENANCE")
}

func registerRooms(api huma.API, s Services) {
	huma.Register(api, secured(huma.Operation{
		OperationID:   "create-room",
		Method:        http.MethodPost,
		Path:          "/rooms",
		Summary:       "Create a room",
		Tags:          []string{"Rooms"},
		DefaultStatus: http.StatusCreated,
	}), func(ctx context.Context, in *createRoomInput) (*itemOutput[RoomResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		r, err := s.Rooms.Create(ctx, app.RoomInput{
			BranchID:   in.Body.BranchID,
			RoomNumber: in.Body.RoomNumber,
			Price:      in.Body.Price,
			Area:       in.Body.Area,
			ImageRef:   in.Body.ImageRef,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[RoomResponse]{Body: toRoomResponse(r)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "list-rooms",
		Method:      http.MethodGet,
		Path:        "/rooms",
		Summary:     "List rooms",
		Tags:        []string{"Rooms"},
	}), func(ctx context.Context, in *listRoomsInput) (*listOutput[RoomResponse], error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		f, err := in.filter()
		if err != nil {
			return nil, err
		}
		rooms, err := s.Rooms.List(ctx, f)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &listOutput[RoomResponse]{Body: mapAll(rooms, toRoomResponse)}, nil
	})

	registerTrash(api, "/rooms", "room", "Rooms", s.Rooms, toRoomResponse)

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-room",
		Method:      http.MethodGet,
		Path:        "/rooms/{id}",
		Summary:     "Get a room",
		Tags:        []string{"Rooms"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[RoomResponse], error) {
		if _, err := caller(ctx); err != nil {
			return nil, err
		}
		r, err := s.Rooms.Get(ctx, in.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[RoomResponse]{Body: toRoomResponse(r)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "update-room",
		Method:      http.MethodPatch,
		Path:        "/rooms/{id}",
		Summary:     "Update a room",
		Tags:        []string{"Rooms"},
	}), func(ctx context.Context, in *updateRoomInput) (*itemOutput[RoomResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		r, err := s.Rooms.Update(ctx, in.ID, domain.RoomPatch{
			BranchID:   in.Body.BranchID,
			RoomNumber: in.Body.RoomNumber,
			Price:      in.Body.Price,
			Area:       in.Body.Area,
			ImageRef:   in.Body.ImageRef,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[RoomResponse]{Body: toRoomResponse(r)}, nil
	})

	huma.Register(api, secured(huma.Operation{
		OperationID: "get-room-meter-readings",
		Method:      http.MethodGet,
		Path:        "/rooms/{id}/meter-readings",
		Summary:     "Get the meter values recorded on the room's latest invoice",
		Tags:        []string{"Rooms"},
	}), func(ctx context.Context, in *idPath) (*itemOutput[LatestReadingsResponse], error) {
		if _, err := adminCaller(ctx); err != nil {
			return nil, err
		}
		lr, err := s.Invoices.LatestReadings(ctx, in.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &itemOutput[LatestReadingsResponse]{Body: LatestReadingsResponse{
			Electricity: lr.Electricity,
			Water:       lr.Water,
		}}, nil
	})
}
