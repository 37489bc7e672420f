package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type bookingRow struct {
	ID          int64     `db:"id"`
	Reference   string    `db:"booking_reference"`
	PassengerID int64     `db:"passenger_id"`
	FlightID    int64     `db:"flight_id"`
	SeatID      *int64    `db:"seat_id"`
	SeatClass   string    `db:"seat_class"`
	Price       float64   `db:"price"`
	Status      string    `db:"status"`
	BookingDate time.Time `db:"booking_date"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *bookingRow) toEntity() *booking.Booking {
	return &booking.Booking{
		ID: r.ID, Reference: r.Reference,
		PassengerID: r.PassengerID, FlightID: r.FlightID, SeatID: r.SeatID,
		SeatClass: seat.Class(r.SeatClass), Price: r.Price,
		Status:      booking.Status(r.Status),
		BookingDate: r.BookingDate, UpdatedAt: r.UpdatedAt,
	}
}

const bookingColumns = `id, booking_reference, passenger_id, flight_id, seat_id, seat_class, price, status, booking_date, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository { return &BookingRepository{db: db} }

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	query := `INSERT INTO bookings (booking_reference, passenger_id, flight_id, seat_id, seat_class, price, status, booking_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		b.Reference, b.PassengerID, b.FlightID, b.SeatID, string(b.SeatClass),
		b.Price, string(b.Status), b.BookingDate, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return booking.ErrReferenceConflict
		}
		return fmt.Errorf("予約作成に失敗: %w", mapSerializationError(err))
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if err := UnwrapTx(tx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", mapSerializationError(err))
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) GetByReference(ctx context.Context, reference string) (*booking.Booking, error) {
	var row bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`
	if err := r.db.GetContext(ctx, &row, query, reference); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *BookingRepository) ReferenceExistsTx(ctx context.Context, tx transaction.Tx, reference string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_reference = $1)`
	if err := UnwrapTx(tx).GetContext(ctx, &exists, query, reference); err != nil {
		return false, fmt.Errorf("予約番号確認に失敗: %w", mapSerializationError(err))
	}
	return exists, nil
}

func (r *BookingRepository) ListByPassenger(ctx context.Context, passengerID int64, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE passenger_id = $1 ORDER BY booking_date DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, passengerID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

func (r *BookingRepository) ListActiveByFlightTx(ctx context.Context, tx transaction.Tx, flightID int64) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE flight_id = $1 AND status IN ('pending', 'confirmed')`
	if err := UnwrapTx(tx).SelectContext(ctx, &rows, query, flightID); err != nil {
		return nil, fmt.Errorf("有効予約取得に失敗: %w", mapSerializationError(err))
	}
	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toEntity()
	}
	return bookings, nil
}

func (r *BookingRepository) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]int64, error) {
	var ids []int64
	query := `SELECT id FROM bookings WHERE status = 'pending' AND booking_date < $1 ORDER BY booking_date LIMIT $2`
	cutoff := time.Now().Add(-olderThan)
	if err := r.db.SelectContext(ctx, &ids, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("期限切れ予約取得に失敗: %w", err)
	}
	return ids, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status booking.Status) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("予約状態更新に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

var _ booking.Repository = (*BookingRepository)(nil)
