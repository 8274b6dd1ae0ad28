package sheets

import (
	"context"
	"testing"
	"time"

	"veloce/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingRowValues(t *testing.T) {
	booking := &models.Booking{
		ID:              12,
		CarID:           4,
		CustomerName:    "Priya Nair",
		CustomerEmail:   "priya@example.com",
		CustomerPhone:   "+91 90000 00000",
		PickupDate:      time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate:      time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		SpecialRequests: "Airport delivery",
		TotalAmount:     500000,
		CreatedAt:       time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	row := bookingRowValues(booking, "Porsche 911 GT3")
	require.Len(t, row, 11)
	assert.Equal(t, int64(12), row[0])
	assert.Equal(t, int64(4), row[1])
	assert.Equal(t, "Porsche 911 GT3", row[2])
	assert.Equal(t, "2024-03-10", row[6])
	assert.Equal(t, "2024-03-14", row[7])
	assert.Equal(t, int64(500000), row[8])
	assert.Equal(t, "2024-03-01 09:30:00", row[10])
}

func TestAppendBookingNil(t *testing.T) {
	s := &Service{}
	err := s.AppendBooking(context.Background(), nil, "")
	assert.Error(t, err)
}
