package domain

import (
	"errors"
	"time"
)

var ErrReviewNotFound = errors.New("review not found")
var ErrReviewExists = errors.New("review already exists for this item")

// Review is a rating plus free text left by a user about an item. A user may
// review a given item at most once; only the author may edit or remove it.
type Review struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Rating    int       `json:"rating" bson:"rating"`
	Text      string    `json:"text,omitempty" bson:"text,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
