package domain

import (
	"errors"
	"time"
)

// ItemCondition describes the advertised physical condition of a listed item.
type ItemCondition string

const (
	ConditionExcellent ItemCondition = "excellent"
	ConditionGood      ItemCondition = "good"
	ConditionFair      ItemCondition = "fair"
)

var ErrItemNotFound = errors.New("item not found")
var ErrInvalidCondition = errors.New("unknown item condition")

// ValidCondition reports whether c is a known item condition.
func ValidCondition(c ItemCondition) bool {
	return c == ConditionExcellent || c == ConditionGood || c == ConditionFair
}

// Item is a rentable listing owned by a vendor. OwnerID is immutable after
// creation; only the owner may mutate or delete the listing.
type Item struct {
	ID            string        `json:"id" bson:"_id,omitempty"`
	Title         string        `json:"title" bson:"title"`
	Description   string        `json:"description,omitempty" bson:"description,omitempty"`
	Category      string        `json:"category,omitempty" bson:"category,omitempty"`
	Images        []string      `json:"images,omitempty" bson:"images,omitempty"`
	DailyRate     float64       `json:"daily_rate" bson:"daily_rate"`
	DepositAmount float64       `json:"deposit_amount" bson:"deposit_amount"`
	OwnerID       string        `json:"owner_id" bson:"owner_id"`
	Available     bool          `json:"available" bson:"available"`
	Condition     ItemCondition `json:"condition" bson:"condition"`
	Location      string        `json:"location,omitempty" bson:"location,omitempty"`
	Rating        float64       `json:"rating" bson:"rating"`
	RatingCount   int           `json:"rating_count" bson:"rating_count"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
}
