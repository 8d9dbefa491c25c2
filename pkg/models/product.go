package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product represents one catalog entry. Availability is a unit count
// and is mutated only through the stock ledger operations (reserve and
// release), never by a direct client write.
type Product struct {
	ID           bson.ObjectID       `json:"id" bson:"_id,omitempty"`
	Name         string              `json:"name" bson:"name" validate:"required,min=2,max=200"`
	Category     string              `json:"category" bson:"category" validate:"required,min=2,max=100"`
	Price        float64             `json:"price" bson:"price" validate:"required,gt=0"`
	Description  string              `json:"description" bson:"description" validate:"max=2000"`
	Availability int                 `json:"availability" bson:"availability" validate:"gte=0"`
	Options      map[string][]string `json:"options,omitempty" bson:"options,omitempty"` // option category -> ordered values
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

type CreateProductRequest struct {
	Name         string              `json:"name" binding:"required,min=2,max=200"`
	Category     string              `json:"category" binding:"required,min=2,max=100"`
	Price        float64             `json:"price" binding:"required,gt=0"`
	Description  string              `json:"description" binding:"max=2000"`
	Availability int                 `json:"availability" binding:"gte=0"`
	Options      map[string][]string `json:"options"`
}

func (req *CreateProductRequest) ToProduct() *Product {
	now := time.Now()
	return &Product{
		ID:           bson.NewObjectID(),
		Name:         req.Name,
		Category:     req.Category,
		Price:        req.Price,
		Description:  req.Description,
		Availability: req.Availability,
		Options:      req.Options,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (p *Product) IsInStock() bool {
	return p.Availability > 0
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
