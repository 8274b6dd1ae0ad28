package models

import "time"

type Booking struct {
	ID              int64     `json:"id"`
	CarID           int64     `json:"carId"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   string    `json:"customerEmail"`
	CustomerPhone   string    `json:"customerPhone"`
	PickupDate      time.Time `json:"pickupDate"`
	ReturnDate      time.Time `json:"returnDate"`
	SpecialRequests string    `json:"specialRequests,omitempty"`
	TotalAmount     int64     `json:"totalAmount"`
	CreatedAt       time.Time `json:"createdAt"`
}
