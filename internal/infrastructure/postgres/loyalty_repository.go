package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type loyaltyRow struct {
	ID               int64      `db:"id"`
	PassengerID      int64      `db:"passenger_id"`
	MembershipNumber string     `db:"membership_number"`
	Points           int        `db:"points"`
	Tier             string     `db:"tier"`
	JoinDate         time.Time  `db:"join_date"`
	LastFlightAt     *time.Time `db:"last_flight_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r *loyaltyRow) toEntity() *loyalty.Account {
	return &loyalty.Account{
		ID: r.ID, PassengerID: r.PassengerID,
		MembershipNumber: r.MembershipNumber,
		Points:           r.Points,
		Tier:             loyalty.Tier(r.Tier),
		JoinDate:         r.JoinDate,
		LastFlightAt:     r.LastFlightAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

const loyaltyColumns = `id, passenger_id, membership_number, points, tier, join_date, last_flight_at, updated_at`

type LoyaltyRepository struct{ db *sqlx.DB }

func NewLoyaltyRepository(db *sqlx.DB) *LoyaltyRepository { return &LoyaltyRepository{db: db} }

func (r *LoyaltyRepository) Create(ctx context.Context, tx transaction.Tx, a *loyalty.Account) error {
	query := `INSERT INTO frequent_flyers (passenger_id, membership_number, points, tier, join_date, last_flight_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		a.PassengerID, a.MembershipNumber, a.Points, string(a.Tier),
		a.JoinDate, a.LastFlightAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return loyalty.ErrMembershipConflict
		}
		return fmt.Errorf("マイレージ口座作成に失敗: %w", mapSerializationError(err))
	}
	return nil
}

func (r *LoyaltyRepository) GetByPassenger(ctx context.Context, passengerID int64) (*loyalty.Account, error) {
	var row loyaltyRow
	query := `SELECT ` + loyaltyColumns + ` FROM frequent_flyers WHERE passenger_id = $1`
	if err := r.db.GetContext(ctx, &row, query, passengerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, loyalty.ErrAccountNotFound
		}
		return nil, fmt.Errorf("マイレージ口座取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *LoyaltyRepository) GetByPassengerTx(ctx context.Context, tx transaction.Tx, passengerID int64) (*loyalty.Account, error) {
	var row loyaltyRow
	query := `SELECT ` + loyaltyColumns + ` FROM frequent_flyers WHERE passenger_id = $1`
	if err := UnwrapTx(tx).GetContext(ctx, &row, query, passengerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, loyalty.ErrAccountNotFound
		}
		return nil, fmt.Errorf("マイレージ口座取得に失敗: %w", mapSerializationError(err))
	}
	return row.toEntity(), nil
}

func (r *LoyaltyRepository) MembershipExistsTx(ctx context.Context, tx transaction.Tx, membershipNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM frequent_flyers WHERE membership_number = $1)`
	if err := UnwrapTx(tx).GetContext(ctx, &exists, query, membershipNumber); err != nil {
		return false, fmt.Errorf("会員番号確認に失敗: %w", mapSerializationError(err))
	}
	return exists, nil
}

func (r *LoyaltyRepository) UpdateTx(ctx context.Context, tx transaction.Tx, a *loyalty.Account) error {
	query := `UPDATE frequent_flyers SET points = $1, tier = $2, last_flight_at = $3, updated_at = $4 WHERE id = $5`
	result, err := UnwrapTx(tx).ExecContext(ctx, query,
		a.Points, string(a.Tier), a.LastFlightAt, a.UpdatedAt, a.ID)
	if err != nil {
		return fmt.Errorf("マイレージ口座更新に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return loyalty.ErrAccountNotFound
	}
	return nil
}

var _ loyalty.Repository = (*LoyaltyRepository)(nil)
