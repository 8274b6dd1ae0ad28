package store

import (
	"context"
	"testing"
	"time"

	"veloce/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCar(name, brand string) models.Car {
	return models.Car{
		Name:         name,
		Brand:        brand,
		TopSpeed:     300,
		Horsepower:   600,
		Acceleration: 3.2,
		EngineType:   "V8, 4.0L",
		Transmission: "7-speed Dual-Clutch",
		FuelType:     "Petrol",
		DailyRate:    120000,
		ImageURL:     "https://example.com/car.jpg",
		IsAvailable:  true,
	}
}

func TestSeedAssignsSequentialIDs(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi"), testCar("B", "BMW"), testCar("C", "Audi")})
	ctx := context.Background()

	cars, err := s.ListCars(ctx)
	require.NoError(t, err)
	require.Len(t, cars, 3)
	for i, car := range cars {
		assert.Equal(t, int64(i+1), car.ID)
	}
}

func TestCreateCarMonotonicIDs(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		created, err := s.CreateCar(ctx, testCar("Car", "Brand"))
		require.NoError(t, err)
		assert.Greater(t, created.ID, last)
		last = created.ID
	}
}

func TestCreateCarRoundTrip(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	in := testCar("Ferrari 488 GTB", "Ferrari")
	in.Description = "mid-engine sports car"
	created, err := s.CreateCar(ctx, in)
	require.NoError(t, err)

	got, err := s.GetCarByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	in.ID = created.ID
	assert.Equal(t, in, *got)
}

func TestGetCarByIDAbsent(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	for _, id := range []int64{0, 2, 9999, -1} {
		car, err := s.GetCarByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, car, "id %d should be absent", id)
	}
}

func TestListCarsByBrandCaseInsensitive(t *testing.T) {
	s := New([]models.Car{testCar("488", "Ferrari"), testCar("R8", "Audi"), testCar("LaFerrari", "Ferrari")})
	ctx := context.Background()

	lower, err := s.ListCarsByBrand(ctx, "ferrari")
	require.NoError(t, err)
	upper, err := s.ListCarsByBrand(ctx, "Ferrari")
	require.NoError(t, err)

	assert.Equal(t, lower, upper)
	assert.Len(t, lower, 2)

	none, err := s.ListCarsByBrand(ctx, "Bugatti")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateCar(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	t.Run("PartialMerge", func(t *testing.T) {
		rate := int64(99000)
		updated, err := s.UpdateCar(ctx, 1, models.CarPatch{DailyRate: &rate})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, rate, updated.DailyRate)
		assert.Equal(t, "A", updated.Name) // untouched field survives
	})

	t.Run("Absent", func(t *testing.T) {
		updated, err := s.UpdateCar(ctx, 42, models.CarPatch{})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestUpdateCarAvailability(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	updated, err := s.UpdateCarAvailability(ctx, 1, false)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.False(t, updated.IsAvailable)

	absent, err := s.UpdateCarAvailability(ctx, 7, false)
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestCreateBookingFlipsAvailability(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	booking, err := s.CreateBooking(ctx, models.Booking{
		CarID:         1,
		CustomerName:  "Asha Rao",
		CustomerEmail: "asha@example.com",
		CustomerPhone: "+91 98765 43210",
		PickupDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ReturnDate:    time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		TotalAmount:   480000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())

	car, err := s.GetCarByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, car)
	assert.False(t, car.IsAvailable)
}

func TestCreateBookingUnknownCarNoOps(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	// The availability side effect must tolerate a missing car.
	booking, err := s.CreateBooking(ctx, models.Booking{CarID: 9999, CustomerName: "n"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), booking.ID)

	car, err := s.GetCarByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, car)
	assert.True(t, car.IsAvailable)
}

func TestListBookingsByCarID(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi"), testCar("B", "BMW")})
	ctx := context.Background()

	_, err := s.CreateBooking(ctx, models.Booking{CarID: 1, CustomerName: "one"})
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, models.Booking{CarID: 2, CustomerName: "two"})
	require.NoError(t, err)
	_, err = s.CreateBooking(ctx, models.Booking{CarID: 1, CustomerName: "three"})
	require.NoError(t, err)

	forCar1, err := s.ListBookingsByCarID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, forCar1, 2)
	assert.Equal(t, "one", forCar1[0].CustomerName)
	assert.Equal(t, "three", forCar1[1].CustomerName)

	all, err := s.ListBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := s.ListBookingsByCarID(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetBookingByID(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	created, err := s.CreateBooking(ctx, models.Booking{CarID: 1, CustomerName: "one"})
	require.NoError(t, err)

	got, err := s.GetBookingByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created, *got)

	absent, err := s.GetBookingByID(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, absent)
}

func TestCreateContactMessage(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	msg, err := s.CreateContactMessage(ctx, models.ContactMessage{
		Name:    "Ravi",
		Email:   "ravi@example.com",
		Phone:   "+91 91234 56789",
		Subject: "Fleet inquiry",
		Message: "Do you rent for weddings?",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	second, err := s.CreateContactMessage(ctx, models.ContactMessage{Name: "n", Email: "e", Phone: "p", Subject: "s", Message: "m"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
}

func TestUsers(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	t.Run("ByID", func(t *testing.T) {
		got, err := s.GetUser(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created, *got)
	})

	t.Run("ByUsernameCaseSensitive", func(t *testing.T) {
		got, err := s.GetUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, got)

		miss, err := s.GetUserByUsername(ctx, "Admin")
		require.NoError(t, err)
		assert.Nil(t, miss)
	})
}

func TestReturnedValuesAreCopies(t *testing.T) {
	s := New([]models.Car{testCar("A", "Audi")})
	ctx := context.Background()

	car, err := s.GetCarByID(ctx, 1)
	require.NoError(t, err)
	car.Name = "mutated"

	again, err := s.GetCarByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)

	cars, err := s.ListCars(ctx)
	require.NoError(t, err)
	cars[0].Brand = "mutated"

	again, err = s.GetCarByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Audi", again.Brand)
}
