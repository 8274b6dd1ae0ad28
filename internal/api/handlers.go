package api

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"veloce/internal/events"
	"veloce/internal/export"
	"veloce/internal/metrics"
	"veloce/internal/models"
)

func (s *HTTPServer) handleListCars(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if s.catalog != nil {
		cars, ok, err := s.catalog.Get(r.Context())
		if err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache read failed")
		} else if ok {
			writeJSON(w, http.StatusOK, cars)
			return
		}
	}

	cars, err := s.store.ListCars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch cars")
		return
	}

	if s.catalog != nil {
		if err := s.catalog.Set(r.Context(), cars); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache write failed")
		}
	}

	writeJSON(w, http.StatusOK, cars)
}

// handleCarsSubtree dispatches /api/cars/brand/{brand}, /api/cars/{id} and
// /api/cars/{id}/bookings.
func (s *HTTPServer) handleCarsSubtree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/cars/")
	rest = strings.TrimSuffix(rest, "/")

	if brand, ok := strings.CutPrefix(rest, "brand/"); ok {
		s.handleListCarsByBrand(w, r, brand)
		return
	}

	if rawID, ok := strings.CutSuffix(rest, "/bookings"); ok {
		s.handleListCarBookings(w, r, rawID)
		return
	}

	if rest == "" || strings.Contains(rest, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.handleGetCar(w, r, rest)
}

func (s *HTTPServer) handleListCarsByBrand(w http.ResponseWriter, r *http.Request, rawBrand string) {
	brand, err := url.PathUnescape(rawBrand)
	if err != nil {
		brand = rawBrand
	}

	cars, err := s.store.ListCarsByBrand(r.Context(), brand)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch cars by brand")
		return
	}
	writeJSON(w, http.StatusOK, cars)
}

func (s *HTTPServer) handleGetCar(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	car, err := s.store.GetCarByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch car")
		return
	}
	if car == nil {
		writeError(w, http.StatusNotFound, "Car not found")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (s *HTTPServer) handleListCarBookings(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid car ID")
		return
	}

	bookings, err := s.store.ListBookingsByCarID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

type bookingRequest struct {
	CarID           int64    `json:"carId" validate:"required"`
	CustomerName    string   `json:"customerName" validate:"required"`
	CustomerEmail   string   `json:"customerEmail" validate:"required"`
	CustomerPhone   string   `json:"customerPhone" validate:"required"`
	PickupDate      flexDate `json:"pickupDate" validate:"required"`
	ReturnDate      flexDate `json:"returnDate" validate:"required"`
	SpecialRequests string   `json:"specialRequests"`
	TotalAmount     *int64   `json:"totalAmount"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req bookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	car, err := s.store.GetCarByID(r.Context(), req.CarID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}
	if car == nil {
		writeError(w, http.StatusNotFound, "Car not found")
		return
	}
	if !car.IsAvailable {
		writeError(w, http.StatusBadRequest, "Car is not available for booking")
		return
	}

	pickup := req.PickupDate.Time
	ret := req.ReturnDate.Time
	if !pickup.Before(ret) {
		writeError(w, http.StatusBadRequest, "Return date must be after pickup date")
		return
	}

	totalAmount := rentalAmount(car.DailyRate, pickup, ret)
	if req.TotalAmount != nil {
		totalAmount = *req.TotalAmount
	}

	booking, err := s.store.CreateBooking(r.Context(), models.Booking{
		CarID:           req.CarID,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PickupDate:      pickup,
		ReturnDate:      ret,
		SpecialRequests: req.SpecialRequests,
		TotalAmount:     totalAmount,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create booking")
		return
	}

	if s.catalog != nil {
		// The booked car is no longer available; drop the cached listing.
		if err := s.catalog.Invalidate(r.Context()); err != nil {
			s.logger.Warn().Err(err).Msg("catalog cache invalidate failed")
		}
	}

	metrics.IncBookingCreated()

	if err := s.bus.PublishJSON(events.EventBookingCreated, events.BookingEventPayload{
		BookingID:     booking.ID,
		CarID:         car.ID,
		CarName:       car.Name,
		CustomerName:  booking.CustomerName,
		CustomerPhone: booking.CustomerPhone,
		PickupDate:    booking.PickupDate,
		ReturnDate:    booking.ReturnDate,
		TotalAmount:   booking.TotalAmount,
	}); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("publish booking event")
	}

	if s.syncer != nil {
		if err := s.syncer.Enqueue(r.Context(), booking, car.Name); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("enqueue booking sync")
		}
	}

	writeJSON(w, http.StatusCreated, booking)
}

// rentalAmount derives the default charge from the car's daily rate and the
// rental window, charging at least one day.
func rentalAmount(dailyRate int64, pickup, ret time.Time) int64 {
	days := int64(math.Ceil(ret.Sub(pickup).Hours() / 24))
	if days < 1 {
		days = 1
	}
	return dailyRate * days
}

type contactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

func (s *HTTPServer) handleCreateContactMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	message, err := s.store.CreateContactMessage(r.Context(), models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	metrics.IncContactMessage()

	if err := s.bus.PublishJSON(events.EventContactReceived, events.ContactEventPayload{
		MessageID: message.ID,
		Name:      message.Name,
		Email:     message.Email,
		Subject:   message.Subject,
	}); err != nil {
		s.logger.Error().Err(err).Int64("message_id", message.ID).Msg("publish contact event")
	}

	writeJSON(w, http.StatusCreated, message)
}

func (s *HTTPServer) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	bookings, err := s.store.ListBookings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch bookings")
		return
	}
	cars, err := s.store.ListCars(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch cars")
		return
	}

	carNames := make(map[int64]string, len(cars))
	for _, car := range cars {
		carNames[car.ID] = car.Name
	}

	workbook, err := export.BookingsWorkbook(bookings, carNames)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export bookings")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("2006-01-02"))

	// Keep an audit copy next to the service when an exports dir is configured.
	if s.cfg.Exports.Path != "" {
		if err := workbook.SaveAs(filepath.Join(s.cfg.Exports.Path, filename)); err != nil {
			s.logger.Warn().Err(err).Msg("save export audit copy")
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write bookings export")
	}
}
