package models

import "time"

const (
	OrderPending   = "pending"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCanceled  = "canceled"
)

type Order struct {
	ID             int64       `json:"id" db:"id" bson:"_id"`
	OrderNumber    string      `json:"orderNumber" db:"order_number" bson:"orderNumber"`
	AccountID      int64       `json:"accountId" db:"account_id" bson:"accountId"`
	TotalAmount    float64     `json:"totalAmount" db:"total_amount" bson:"totalAmount"`
	Status         string      `json:"status" db:"status" bson:"status"`
	ProductDetails []OrderLine `json:"productDetails" db:"-" bson:"productDetails"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
	DeletedAt      *time.Time  `json:"deletedAt" db:"deleted_at" bson:"deletedAt,omitempty"`
}

type OrderLine struct {
	ID          int64  `json:"id" db:"id" bson:"id"`
	OrderID     int64  `json:"orderId" db:"order_id" bson:"orderId"`
	ProductName string `json:"productName" db:"product_name" bson:"productName"`
	Quantity    int    `json:"quantity" db:"quantity" bson:"quantity"`
}
