package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type paymentRow struct {
	ID            int64     `db:"id"`
	BookingID     int64     `db:"booking_id"`
	Amount        float64   `db:"amount"`
	Method        string    `db:"payment_method"`
	Status        string    `db:"status"`
	TransactionID string    `db:"transaction_id"`
	PaymentDate   time.Time `db:"payment_date"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		ID: r.ID, BookingID: r.BookingID,
		Amount: r.Amount, Method: r.Method,
		Status:        payment.Status(r.Status),
		TransactionID: r.TransactionID,
		PaymentDate:   r.PaymentDate, UpdatedAt: r.UpdatedAt,
	}
}

const paymentColumns = `id, booking_id, amount, payment_method, status, transaction_id, payment_date, updated_at`

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository { return &PaymentRepository{db: db} }

func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	query := `INSERT INTO payments (booking_id, amount, payment_method, status, transaction_id, payment_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		p.BookingID, p.Amount, p.Method, string(p.Status), p.TransactionID,
		p.PaymentDate, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return payment.ErrInvalidPaymentState
		}
		return fmt.Errorf("支払い作成に失敗: %w", mapSerializationError(err))
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if err := UnwrapTx(tx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", mapSerializationError(err))
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`
	if err := r.db.GetContext(ctx, &row, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) ExistsForBookingTx(ctx context.Context, tx transaction.Tx, bookingID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM payments WHERE booking_id = $1 AND status IN ('pending', 'success'))`
	if err := UnwrapTx(tx).GetContext(ctx, &exists, query, bookingID); err != nil {
		return false, fmt.Errorf("支払い確認に失敗: %w", mapSerializationError(err))
	}
	return exists, nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_id = $1`
	if err := r.db.GetContext(ctx, &row, query, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("支払い取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, id int64, status payment.Status) error {
	query := `UPDATE payments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("支払い状態更新に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
