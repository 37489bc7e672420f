package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type passengerRow struct {
	ID             int64     `db:"id"`
	FirstName      string    `db:"first_name"`
	LastName       string    `db:"last_name"`
	Email          string    `db:"email"`
	DateOfBirth    time.Time `db:"date_of_birth"`
	PassportNumber string    `db:"passport_number"`
	Nationality    string    `db:"nationality"`
	Phone          string    `db:"phone"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (r *passengerRow) toEntity() *passenger.Passenger {
	return &passenger.Passenger{
		ID: r.ID, FirstName: r.FirstName, LastName: r.LastName,
		Email: r.Email, DateOfBirth: r.DateOfBirth,
		PassportNumber: r.PassportNumber, Nationality: r.Nationality, Phone: r.Phone,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const passengerColumns = `id, first_name, last_name, email, date_of_birth, passport_number, nationality, phone, created_at, updated_at`

type PassengerRepository struct{ db *sqlx.DB }

func NewPassengerRepository(db *sqlx.DB) *PassengerRepository { return &PassengerRepository{db: db} }

func (r *PassengerRepository) Create(ctx context.Context, tx transaction.Tx, p *passenger.Passenger) error {
	query := `INSERT INTO passengers (first_name, last_name, email, date_of_birth, passport_number, nationality, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		p.FirstName, p.LastName, p.Email, p.DateOfBirth,
		p.PassportNumber, p.Nationality, p.Phone, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return passenger.ErrPassportConflict
		}
		return fmt.Errorf("搭乗者作成に失敗: %w", mapSerializationError(err))
	}
	return nil
}

func (r *PassengerRepository) GetByID(ctx context.Context, id int64) (*passenger.Passenger, error) {
	var row passengerRow
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("搭乗者取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PassengerRepository) ExistsTx(ctx context.Context, tx transaction.Tx, id int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM passengers WHERE id = $1)`
	if err := UnwrapTx(tx).GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("搭乗者確認に失敗: %w", mapSerializationError(err))
	}
	return exists, nil
}

func (r *PassengerRepository) GetByPassport(ctx context.Context, passportNumber string) (*passenger.Passenger, error) {
	var row passengerRow
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE passport_number = $1`
	if err := r.db.GetContext(ctx, &row, query, passportNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, passenger.ErrPassengerNotFound
		}
		return nil, fmt.Errorf("搭乗者取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PassengerRepository) List(ctx context.Context, limit, offset int) ([]*passenger.Passenger, error) {
	var rows []passengerRow
	query := `SELECT ` + passengerColumns + ` FROM passengers ORDER BY id LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("搭乗者一覧取得に失敗: %w", err)
	}
	passengers := make([]*passenger.Passenger, len(rows))
	for i, row := range rows {
		passengers[i] = row.toEntity()
	}
	return passengers, nil
}

var _ passenger.Repository = (*PassengerRepository)(nil)
