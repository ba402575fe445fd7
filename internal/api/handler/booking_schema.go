package handler

// --- Request / Response types for bookings ---

// createBookingRequest deliberately has no price field: the rental cost is
// always computed server-side from the item's daily rate.
type createBookingRequest struct {
	ItemID          string `json:"item_id"           validate:"required"`
	StartDate       string `json:"start_date"        validate:"required"`
	EndDate         string `json:"end_date"          validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Notes           string `json:"notes"`
}

type updateBookingRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed active completed cancelled"`
}
