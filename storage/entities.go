package storage

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type PaymentStats struct {
	TotalRevenue float64          `json:"totalRevenue"`
	PaymentCount uint64           `json:"paymentCount"`
	Monthly      []MonthlyRevenue `json:"monthly"`
}

type MonthlyRevenue struct {
	Month   time.Time `json:"month"`
	Revenue float64   `json:"revenue"`
}

type CategoryStat struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Count    uint64  `json:"count"`
}

type AdminStats struct {
	UserCount    uint64  `json:"userCount"`
	DatasetCount uint64  `json:"datasetCount"`
	PaymentCount uint64  `json:"paymentCount"`
	TotalRevenue float64 `json:"totalRevenue"`
}
