package models

import "time"

type CartItem struct {
	ID          int64      `json:"id" db:"id" bson:"_id"`
	AccountID   int64      `json:"accountId" db:"account_id" bson:"accountId"`
	ProductID   int64      `json:"productId" db:"product_id" bson:"productId"`
	ProductName string     `json:"productName" db:"product_name" bson:"productName"`
	Variant     string     `json:"variant,omitempty" db:"variant" bson:"variant,omitempty"`
	BrandName   string     `json:"brandName,omitempty" db:"brand_name" bson:"brandName,omitempty"`
	Quantity    int        `json:"quantity" db:"quantity" bson:"quantity"`
	Price       float64    `json:"price" db:"price" bson:"price"`
	TotalAmount float64    `json:"totalAmount" db:"total_amount" bson:"totalAmount"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

// LineTotal is price × quantity, the only valid totalAmount for an active line.
func LineTotal(price float64, quantity int) float64 {
	return price * float64(quantity)
}
