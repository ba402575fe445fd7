package handler

// --- Request / Response types for the catalog ---

type createItemRequest struct {
	Title         string   `json:"title"          validate:"required"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Images        []string `json:"images"`
	DailyRate     float64  `json:"daily_rate"     validate:"required,gt=0"`
	DepositAmount float64  `json:"deposit_amount" validate:"gte=0"`
	Condition     string   `json:"condition"      validate:"omitempty,oneof=excellent good fair"`
	Location      string   `json:"location"`
}

type updateItemRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Category      *string   `json:"category"`
	Images        *[]string `json:"images"`
	DailyRate     *float64  `json:"daily_rate"     validate:"omitempty,gt=0"`
	DepositAmount *float64  `json:"deposit_amount" validate:"omitempty,gte=0"`
	Condition     *string   `json:"condition"      validate:"omitempty,oneof=excellent good fair"`
	Location      *string   `json:"location"`
	Available     *bool     `json:"available"`
}
