package export

import (
	"fmt"
	"io"

	"veloce/internal/models"

	"github.com/xuri/excelize/v2"
)

const bookingsSheet = "Bookings"

var bookingHeaders = []string{
	"ID", "Car ID", "Car", "Customer", "Email", "Phone",
	"Pickup", "Return", "Total", "Special Requests", "Created At",
}

// BookingsWorkbook renders the bookings register as an xlsx workbook.
// carNames maps car IDs to display names; unknown IDs render empty.
func BookingsWorkbook(bookings []models.Booking, carNames map[int64]string) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(bookingsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range bookingHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(bookingsSheet, cell, header); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	if err := f.SetCellStyle(bookingsSheet, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, booking := range bookings {
		row := []interface{}{
			booking.ID,
			booking.CarID,
			carNames[booking.CarID],
			booking.CustomerName,
			booking.CustomerEmail,
			booking.CustomerPhone,
			booking.PickupDate.Format("2006-01-02"),
			booking.ReturnDate.Format("2006-01-02"),
			booking.TotalAmount,
			booking.SpecialRequests,
			booking.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(bookingsSheet, "A", "B", 8); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(bookingsSheet, "C", "F", 24); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(bookingsSheet, "G", "K", 16); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteBookings streams the bookings workbook to w.
func WriteBookings(w io.Writer, bookings []models.Booking, carNames map[int64]string) error {
	f, err := BookingsWorkbook(bookings, carNames)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
