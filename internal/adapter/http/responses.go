package http

import "github.com/neomorfeo/rentiq/internal/domain"

// BranchResponse is the API representation of a branch.
type BranchResponse struct {
	ID          string  `json:"id" doc:"Branch ID"`
	Name        string  `json:"name" doc:"Branch name"`
	Address     string  `json:"address" doc:"Street address"`
	ManagerName string  `json:"manager_name" doc:"On-site manager"`
	ImageRef    string  `json:"image_ref" doc:"Reference to the branch photo"`
	RoomCount   int     `json:"room_count" doc:"Number of live rooms"`
	CreatedAt   string  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt   string  `json:"updated_at" doc:"Last update timestamp"`
	DeletedAt   *string `json:"deleted_at,omitempty" doc:"Soft-deletion timestamp"`
}

func toBranchResponse(b domain.Branch) BranchResponse {
	return BranchResponse{
		ID:          b.ID,
		Name:        b.Name,
		Address:     b.Address,
		ManagerName: b.ManagerName,
		ImageRef:    b.ImageRef,
		RoomCount:   b.RoomCount,
		CreatedAt:   formatTime(b.CreatedAt),
		UpdatedAt:   formatTime(b.UpdatedAt),
		DeletedAt:   formatDeleted(b.DeletedAt),
	}
}

// RoomResponse is the API representation of a room.
type RoomResponse struct {
	ID         string  `json:"id" doc:"Room ID"`
	BranchID   string  `json:"branch_id" doc:"Owning branch"`
	RoomNumber string  `json:"room_number" doc:"Room number, unique within the branch"`
	Price      int64   `json:"price" doc:"Monthly rent in VND"`
	Area       float64 `json:"area" doc:"Floor area in square meters"`
	Status     string  `json:"status" doc:"AVAILABLE, OCCUPIED or MAINTENANCE"`
	ImageRef   string  `json:"image_ref" doc:"Reference to the room photo"`
	CreatedAt  string  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt  string  `json:"updated_at" doc:"Last update timestamp"`
	DeletedAt  *string `json:"deleted_at,omitempty" doc:"Soft-deletion timestamp"`
}

func toRoomResponse(r domain.Room) RoomResponse {
	return RoomResponse{
		ID:         r.ID,
		BranchID:   r.BranchID,
		RoomNumber: r.RoomNumber,
		Price:      r.Price,
		Area:       r.Area,
		Status:     string(r.Status),
		ImageRef:   r.ImageRef,
		CreatedAt:  formatTime(r.CreatedAt),
		UpdatedAt:  formatTime(r.UpdatedAt),
		DeletedAt:  formatDeleted(r.DeletedAt),
	}
}

// ContractResponse is the API representation of a lease.
type ContractResponse struct {
	ID           string  `json:"id" doc:"Contract ID"`
	RoomID       string  `json:"room_id" doc:"Leased room"`
	UserID       string  `json:"user_id" doc:"Tenant"`
	StartDate    string  `json:"start_date" doc:"First day of the lease"`
	EndDate      string  `json:"end_date" doc:"Last day of the lease"`
	Deposit      int64   `json:"deposit" doc:"Deposit in VND"`
	Status       string  `json:"status" doc:"ACTIVE or TERMINATED"`
	ScanImageRef string  `json:"scan_image_ref" doc:"Reference to the signed contract scan"`
	CreatedAt    string  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    string  `json:"updated_at" doc:"Last update timestamp"`
	DeletedAt    *string `json:"deleted_at,omitempty" doc:"Soft-deletion timestamp"`
}

func toContractResponse(c domain.Contract) ContractResponse {
	return ContractResponse{
		ID:           c.ID,
		RoomID:       c.RoomID,
		UserID:       c.UserID,
		StartDate:    c.StartDate.Format(dateFormat),
		EndDate:      c.EndDate.Format(dateFormat),
		Deposit:      c.Deposit,
		Status:       string(c.Status),
		ScanImageRef: c.ScanImageRef,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
		DeletedAt:    formatDeleted(c.DeletedAt),
	}
}

// ReadingsBody carries meter readings in both directions.
type ReadingsBody struct {
	OldElectricity int64 `json:"old_electricity" minimum:"0" maximum:"1000000000" doc:"Electricity meter at the previous invoice (kWh)"`
	NewElectricity int64 `json:"new_electricity" minimum:"0" maximum:"1000000000" doc:"Electricity meter now (kWh)"`
	OldWater       int64 `json:"old_water" minimum:"0" maximum:"1000000000" doc:"Water meter at the previous invoice (m3)"`
	NewWater       int64 `json:"new_water" minimum:"0" maximum:"1000000000" doc:"Water meter now (m3)"`
}

func (b ReadingsBody) toDomain() domain.MeterReadings {
	return domain.MeterReadings{
		OldElectricity: b.OldElectricity,
		NewElectricity: b.NewElectricity,
		OldWater:       b.OldWater,
		NewWater:       b.NewWater,
	}
}

// InvoiceResponse is the API representation of a monthly bill.
type InvoiceResponse struct {
	ID              string       `json:"id" doc:"Invoice ID"`
	RoomID          string       `json:"room_id" doc:"Billed room"`
	Month           int          `json:"month" doc:"Billing month"`
	Year            int          `json:"year" doc:"Billing year"`
	Readings        ReadingsBody `json:"readings" doc:"Meter readings"`
	ServiceFee      int64        `json:"service_fee" doc:"Flat service fee in VND"`
	TotalAmount     int64        `json:"total_amount" doc:"Amount due in VND"`
	Status          string       `json:"status" doc:"PAID or UNPAID"`
	PaymentProofRef string       `json:"payment_proof_ref" doc:"Reference to the uploaded payment proof"`
	PaymentURL      string       `json:"payment_url,omitempty" doc:"VietQR image URL for bank transfer"`
	CreatedAt       string       `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt       string       `json:"updated_at" doc:"Last update timestamp"`
	DeletedAt       *string      `json:"deleted_at,omitempty" doc:"Soft-deletion timestamp"`
}

func toInvoiceResponse(inv domain.Invoice) InvoiceResponse {
	m := inv.Readings
	return InvoiceResponse{
		ID:     inv.ID,
		RoomID: inv.RoomID,
		Month:  inv.Month,
		Year:   inv.Year,
		Readings: ReadingsBody{
			OldElectricity: m.OldElectricity,
			NewElectricity: m.NewElectricity,
			OldWater:       m.OldWater,
			NewWater:       m.NewWater,
		},
		ServiceFee:      inv.ServiceFee,
		TotalAmount:     inv.TotalAmount,
		Status:          string(inv.Status),
		PaymentProofRef: inv.PaymentProofRef,
		CreatedAt:       formatTime(inv.CreatedAt),
		UpdatedAt:       formatTime(inv.UpdatedAt),
		DeletedAt:       formatDeleted(inv.DeletedAt),
	}
}

// UserResponse is the API representation of an account. Credentials and
// face descriptors are never exposed.
type UserResponse struct {
	ID           string  `json:"id" doc:"User ID"`
	Email        string  `json:"email" doc:"Login email"`
	FullName     string  `json:"full_name" doc:"Full name"`
	Phone        string  `json:"phone" doc:"Phone number"`
	IdentityCard string  `json:"identity_card" doc:"National identity card number"`
	Role         string  `json:"role" doc:"ADMIN or TENANT"`
	FaceEnrolled bool    `json:"face_enrolled" doc:"Whether a face descriptor is registered"`
	CreatedAt    string  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt    string  `json:"updated_at" doc:"Last update timestamp"`
	DeletedAt    *string `json:"deleted_at,omitempty" doc:"Soft-deletion timestamp"`
}

func toUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Phone:        u.Phone,
		IdentityCard: u.IdentityCard,
		Role:         string(u.Role),
		FaceEnrolled: len(u.FaceDescriptor) > 0,
		CreatedAt:    formatTime(u.CreatedAt),
		UpdatedAt:    formatTime(u.UpdatedAt),
		DeletedAt:    formatDeleted(u.DeletedAt),
	}
}

// AccessLogResponse is one gate access attempt.
type AccessLogResponse struct {
	ID        string `json:"id" doc:"Log entry ID"`
	UserID    string `json:"user_id,omitempty" doc:"Matched user, empty when unrecognised"`
	Method    string `json:"method" doc:"Access method"`
	Status    string `json:"status" doc:"SUCCESS or FAILED"`
	Note      string `json:"note" doc:"Free-form note"`
	CreatedAt string `json:"created_at" doc:"Attempt timestamp"`
}

func toAccessLogResponse(l domain.AccessLog) AccessLogResponse {
	return AccessLogResponse{
		ID:        l.ID,
		UserID:    l.UserID,
		Method:    l.Method,
		Status:    l.Status,
		Note:      l.Note,
		CreatedAt: formatTime(l.CreatedAt),
	}
}

// MonthRevenueResponse is one point of the revenue chart.
type MonthRevenueResponse struct {
	Year    int   `json:"year" doc:"Calendar year"`
	Month   int   `json:"month" doc:"Calendar month"`
	Revenue int64 `json:"revenue" doc:"Paid invoice total in VND"`
}

// DashboardResponse is the administrator overview.
type DashboardResponse struct {
	Branches         int                    `json:"total_branches" doc:"Live branches"`
	Rooms            int                    `json:"total_rooms" doc:"Live rooms"`
	AvailableRooms   int                    `json:"available_rooms" doc:"Live rooms open for lease"`
	RentedRooms      int                    `json:"rented_rooms" doc:"Live occupied rooms"`
	Tenants          int                    `json:"total_tenants" doc:"Live tenant accounts"`
	RevenueThisMonth int64                  `json:"revenue_this_month" doc:"Paid total for the current month"`
	DebtThisMonth    int64                  `json:"debt_this_month" doc:"Unpaid total for the current month"`
	Chart            []MonthRevenueResponse `json:"chart" doc:"Revenue for the last six months, oldest first"`
}

func toDashboardResponse(d domain.Dashboard) DashboardResponse {
	return DashboardResponse{
		Branches:         d.Branches,
		Rooms:            d.Rooms,
		AvailableRooms:   d.AvailableRooms,
		RentedRooms:      d.RentedRooms,
		Tenants:          d.Tenants,
		RevenueThisMonth: d.RevenueThisMonth,
		DebtThisMonth:    d.DebtThisMonth,
		Chart: mapAll(d.Chart, func(m domain.MonthRevenue) MonthRevenueResponse {
			return MonthRevenueResponse{Year: m.Year, Month: m.Month, Revenue: m.Revenue}
		}),
	}
}
