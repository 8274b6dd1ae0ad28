package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"veloce/internal/models"
)

// Store is the sole owner of all marketplace entities. Everything lives in
// memory and resets on restart; a real backing store can replace it behind the
// same contract, which is why every operation takes a context and may return an
// error even though the in-memory implementation never produces one.
//
// Lookups that miss return (nil, nil): absent is an explicit result, not an
// error. Callers always receive copies, never shared handles.
type Store struct {
	mu sync.RWMutex

	cars     map[int64]models.Car
	carOrder []int64
	carSeq   int64

	bookings     map[int64]models.Booking
	bookingOrder []int64
	bookingSeq   int64

	messages   map[int64]models.ContactMessage
	messageSeq int64

	users   map[int64]models.User
	userSeq int64

	now func() time.Time
}

// New builds a store seeded with the given cars. Seed cars are assigned
// identifiers in slice order, starting at 1.
func New(seed []models.Car) *Store {
	s := &Store{
		cars:     make(map[int64]models.Car),
		bookings: make(map[int64]models.Booking),
		messages: make(map[int64]models.ContactMessage),
		users:    make(map[int64]models.User),
		now:      time.Now,
	}
	for _, car := range seed {
		s.carSeq++
		car.ID = s.carSeq
		s.cars[car.ID] = car
		s.carOrder = append(s.carOrder, car.ID)
	}
	return s
}

// ListCars returns all cars in insertion order.
func (s *Store) ListCars(ctx context.Context) ([]models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Car, 0, len(s.carOrder))
	for _, id := range s.carOrder {
		out = append(out, s.cars[id])
	}
	return out, nil
}

// ListCarsByBrand filters by brand, case-insensitively.
func (s *Store) ListCarsByBrand(ctx context.Context, brand string) ([]models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Car, 0)
	for _, id := range s.carOrder {
		car := s.cars[id]
		if strings.EqualFold(car.Brand, brand) {
			out = append(out, car)
		}
	}
	return out, nil
}

func (s *Store) GetCarByID(ctx context.Context, id int64) (*models.Car, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	car, ok := s.cars[id]
	if !ok {
		return nil, nil
	}
	return &car, nil
}

// CreateCar assigns the next identifier and stores the car. The incoming ID
// field is ignored.
func (s *Store) CreateCar(ctx context.Context, car models.Car) (models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carSeq++
	car.ID = s.carSeq
	s.cars[car.ID] = car
	s.carOrder = append(s.carOrder, car.ID)
	return car, nil
}

// UpdateCar merges the patch onto an existing car. Returns absent when no car
// has the given id.
func (s *Store) UpdateCar(ctx context.Context, id int64, patch models.CarPatch) (*models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCarLocked(id, patch), nil
}

// UpdateCarAvailability flips the availability flag only.
func (s *Store) UpdateCarAvailability(ctx context.Context, id int64, isAvailable bool) (*models.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateCarLocked(id, models.CarPatch{IsAvailable: &isAvailable}), nil
}

func (s *Store) updateCarLocked(id int64, patch models.CarPatch) *models.Car {
	car, ok := s.cars[id]
	if !ok {
		return nil
	}
	patch.Apply(&car)
	s.cars[id] = car
	return &car
}

// ListBookings returns all bookings in insertion order.
func (s *Store) ListBookings(ctx context.Context) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Booking, 0, len(s.bookingOrder))
	for _, id := range s.bookingOrder {
		out = append(out, s.bookings[id])
	}
	return out, nil
}

func (s *Store) GetBookingByID(ctx context.Context, id int64) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (s *Store) ListBookingsByCarID(ctx context.Context, carID int64) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, id := range s.bookingOrder {
		booking := s.bookings[id]
		if booking.CarID == carID {
			out = append(out, booking)
		}
	}
	return out, nil
}

// CreateBooking assigns an identifier and creation timestamp, stores the
// booking, then marks the referenced car unavailable. The availability update
// silently no-ops when the car does not exist; existence and availability
// policy live one layer up. The store does not track a booking calendar, only
// the single availability flag.
func (s *Store) CreateBooking(ctx context.Context, booking models.Booking) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookingSeq++
	booking.ID = s.bookingSeq
	booking.CreatedAt = s.now()
	s.bookings[booking.ID] = booking
	s.bookingOrder = append(s.bookingOrder, booking.ID)

	unavailable := false
	s.updateCarLocked(booking.CarID, models.CarPatch{IsAvailable: &unavailable})

	return booking, nil
}

// CreateContactMessage assigns an identifier and creation timestamp and stores
// the message.
func (s *Store) CreateContactMessage(ctx context.Context, msg models.ContactMessage) (models.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageSeq++
	msg.ID = s.messageSeq
	msg.CreatedAt = s.now()
	s.messages[msg.ID] = msg
	return msg, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// GetUserByUsername is a case-sensitive exact match.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.userSeq++
	user.ID = s.userSeq
	s.users[user.ID] = user
	return user, nil
}
