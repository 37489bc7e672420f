package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type seatRow struct {
	ID          int64  `db:"id"`
	FlightID    int64  `db:"flight_id"`
	SeatNumber  string `db:"seat_number"`
	SeatClass   string `db:"seat_class"`
	IsAvailable bool   `db:"is_available"`
	IsWindow    bool   `db:"is_window"`
	IsAisle     bool   `db:"is_aisle"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, FlightID: r.FlightID, SeatNumber: r.SeatNumber,
		Class: seat.Class(r.SeatClass), IsAvailable: r.IsAvailable,
		IsWindow: r.IsWindow, IsAisle: r.IsAisle,
	}
}

const seatColumns = `id, flight_id, seat_number, seat_class, is_available, is_window, is_aisle`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) CreateBulk(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, tx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// createBulkBatch はバッチ単位でマルチバリューINSERTを実行
func (r *SeatRepository) createBulkBatch(ctx context.Context, tx transaction.Tx, seats []*seat.Seat) error {
	query := `INSERT INTO seats (flight_id, seat_number, seat_class, is_available, is_window, is_aisle) VALUES `
	args := make([]interface{}, 0, len(seats)*6)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, s.FlightID, s.SeatNumber, string(s.Class), s.IsAvailable, s.IsWindow, s.IsAisle)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := UnwrapTx(tx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id int64) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE id = $1`
	var row seatRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByFlightID(ctx context.Context, flightID int64) ([]*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE flight_id = $1 ORDER BY seat_number`
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, query, flightID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

func (r *SeatRepository) GetByNumberTx(ctx context.Context, tx transaction.Tx, flightID int64, seatNumber string) (*seat.Seat, error) {
	query := `SELECT ` + seatColumns + ` FROM seats WHERE flight_id = $1 AND seat_number = $2`
	var row seatRow
	if err := UnwrapTx(tx).GetContext(ctx, &row, query, flightID, seatNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

// Reserve はテストアンドセット更新で座席を確保する
// ガード条件 is_available = true が成立しなければ並行トランザクションに取られている
func (r *SeatRepository) Reserve(ctx context.Context, tx transaction.Tx, seatID int64) error {
	query := `UPDATE seats SET is_available = false WHERE id = $1 AND is_available = true`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, seatID)
	if err != nil {
		return fmt.Errorf("座席確保に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return seat.ErrSeatUnavailable
	}
	return nil
}

// ReserveNextAvailable は指定クラスの最も若い番号の空席にテストアンドセットを適用する
// 候補が並行トランザクションに取られた場合は次の候補を試す
func (r *SeatRepository) ReserveNextAvailable(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) (*seat.Seat, error) {
	sqlxTx := UnwrapTx(tx)
	for {
		query := `SELECT ` + seatColumns + ` FROM seats
			WHERE flight_id = $1 AND seat_class = $2 AND is_available = true
			ORDER BY seat_number ASC LIMIT 1`
		var row seatRow
		if err := sqlxTx.GetContext(ctx, &row, query, flightID, string(class)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, seat.ErrSeatUnavailable
			}
			return nil, fmt.Errorf("空席検索に失敗: %w", mapSerializationError(err))
		}

		result, err := sqlxTx.ExecContext(ctx,
			`UPDATE seats SET is_available = false WHERE id = $1 AND is_available = true`, row.ID)
		if err != nil {
			return nil, fmt.Errorf("座席確保に失敗: %w", mapSerializationError(err))
		}
		if rows, _ := result.RowsAffected(); rows == 1 {
			s := row.toEntity()
			s.IsAvailable = false
			return s, nil
		}
	}
}

func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, seatID int64) error {
	query := `UPDATE seats SET is_available = true WHERE id = $1`
	if _, err := UnwrapTx(tx).ExecContext(ctx, query, seatID); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", mapSerializationError(err))
	}
	return nil
}

func (r *SeatRepository) CountAvailable(ctx context.Context, flightID int64, class seat.Class) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM seats WHERE flight_id = $1 AND seat_class = $2 AND is_available = true`,
		flightID, string(class))
	return count, err
}

var _ seat.Repository = (*SeatRepository)(nil)
