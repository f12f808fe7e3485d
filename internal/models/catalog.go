package models

import "time"

type Product struct {
	ID          int64      `json:"id" db:"id" bson:"_id"`
	SellerID    int64      `json:"sellerId" db:"seller_id" bson:"sellerId"`
	Name        string     `json:"name" db:"name" bson:"name"`
	Description string     `json:"description,omitempty" db:"description" bson:"description,omitempty"`
	Price       float64    `json:"price" db:"price" bson:"price"`
	BrandName   string     `json:"brandName" db:"brand_name" bson:"brandName"`
	Category    string     `json:"category" db:"category" bson:"category"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt   *time.Time `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

// ProductDetails is a product together with the rating derived from its active reviews.
type ProductDetails struct {
	Product
	Rating          float64 `json:"rating"`
	NumberOfReviews int64   `json:"numberOfReviews"`
}

type Review struct {
	ID        int64      `json:"id" db:"id" bson:"_id"`
	AccountID int64      `json:"accountId" db:"account_id" bson:"accountId"`
	ProductID int64      `json:"productId" db:"product_id" bson:"productId"`
	Rating    int        `json:"rating" db:"rating" bson:"rating"`
	Comment   string     `json:"comment,omitempty" db:"comment" bson:"comment,omitempty"`
	Images    []string   `json:"images" db:"-" bson:"images"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

type RatingSummary struct {
	Average float64 `json:"averageRating" db:"average" bson:"average"`
	Count   int64   `json:"numberOfReviews" db:"count" bson:"count"`
}
