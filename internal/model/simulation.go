package model

import "time"

// Installment is one projected payment of a funding request.
type Installment struct {
	DueDate  time.Time `json:"due_date"`
	Amount   int64     `json:"amount"`
	Interest int64     `json:"interest"`
}

// Simulation is the projected payment schedule and fee breakdown for a fixed
// simulation amount invested in a funding request.
type Simulation struct {
	CumploPoints    int64         `json:"cumplo_points"`
	PlatformFee     int64         `json:"platform_fee"`
	NetReturns      int64         `json:"net_returns"`
	PaymentSchedule []Installment `json:"payment_schedule"`
}
