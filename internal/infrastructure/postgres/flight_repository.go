package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/flight"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

type aircraftRow struct {
	ID              int64  `db:"id"`
	Model           string `db:"model"`
	Manufacturer    string `db:"manufacturer"`
	TotalSeats      int    `db:"total_seats"`
	EconomySeats    int    `db:"economy_seats"`
	BusinessSeats   int    `db:"business_seats"`
	FirstClassSeats int    `db:"first_class_seats"`
}

func (r *aircraftRow) toEntity() *flight.Aircraft {
	return &flight.Aircraft{
		ID: r.ID, Model: r.Model, Manufacturer: r.Manufacturer,
		TotalSeats: r.TotalSeats, EconomySeats: r.EconomySeats,
		BusinessSeats: r.BusinessSeats, FirstClassSeats: r.FirstClassSeats,
	}
}

type flightRow struct {
	ID                int64     `db:"id"`
	FlightNumber      string    `db:"flight_number"`
	AircraftID        int64     `db:"aircraft_id"`
	Origin            string    `db:"origin"`
	Destination       string    `db:"destination"`
	DepartureTime     time.Time `db:"departure_time"`
	ArrivalTime       time.Time `db:"arrival_time"`
	BasePriceEconomy  float64   `db:"base_price_economy"`
	BasePriceBusiness float64   `db:"base_price_business"`
	BasePriceFirst    float64   `db:"base_price_first"`
	AvailableEconomy  int       `db:"available_economy"`
	AvailableBusiness int       `db:"available_business"`
	AvailableFirst    int       `db:"available_first"`
	Status            string    `db:"status"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (r *flightRow) toEntity() *flight.Flight {
	return &flight.Flight{
		ID: r.ID, FlightNumber: r.FlightNumber, AircraftID: r.AircraftID,
		Origin: r.Origin, Destination: r.Destination,
		DepartureTime: r.DepartureTime, ArrivalTime: r.ArrivalTime,
		BasePriceEconomy: r.BasePriceEconomy, BasePriceBusiness: r.BasePriceBusiness,
		BasePriceFirst: r.BasePriceFirst,
		AvailableEconomy: r.AvailableEconomy, AvailableBusiness: r.AvailableBusiness,
		AvailableFirst: r.AvailableFirst,
		Status:    flight.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
	}
}

const flightColumns = `id, flight_number, aircraft_id, origin, destination, departure_time, arrival_time,
	base_price_economy, base_price_business, base_price_first,
	available_economy, available_business, available_first, status, created_at, updated_at`

// availabilityColumn はクラス別空席カウンタのカラム名を返す
func availabilityColumn(class seat.Class) string {
	switch class {
	case seat.ClassBusiness:
		return "available_business"
	case seat.ClassFirst:
		return "available_first"
	default:
		return "available_economy"
	}
}

type FlightRepository struct{ db *sqlx.DB }

func NewFlightRepository(db *sqlx.DB) *FlightRepository { return &FlightRepository{db: db} }

func (r *FlightRepository) CreateAircraft(ctx context.Context, a *flight.Aircraft) error {
	query := `INSERT INTO aircraft (model, manufacturer, total_seats, economy_seats, business_seats, first_class_seats)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, a.Model, a.Manufacturer, a.TotalSeats,
		a.EconomySeats, a.BusinessSeats, a.FirstClassSeats).Scan(&a.ID); err != nil {
		return fmt.Errorf("機材作成に失敗: %w", err)
	}
	return nil
}

func (r *FlightRepository) GetAircraft(ctx context.Context, id int64) (*flight.Aircraft, error) {
	query := `SELECT id, model, manufacturer, total_seats, economy_seats, business_seats, first_class_seats
		FROM aircraft WHERE id = $1`
	var row aircraftRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrAircraftNotFound
		}
		return nil, fmt.Errorf("機材取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) ListAircraft(ctx context.Context) ([]*flight.Aircraft, error) {
	query := `SELECT id, model, manufacturer, total_seats, economy_seats, business_seats, first_class_seats
		FROM aircraft ORDER BY id`
	var rows []aircraftRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("機材一覧取得に失敗: %w", err)
	}
	aircraft := make([]*flight.Aircraft, len(rows))
	for i, row := range rows {
		aircraft[i] = row.toEntity()
	}
	return aircraft, nil
}

func (r *FlightRepository) Create(ctx context.Context, tx transaction.Tx, f *flight.Flight) error {
	query := `INSERT INTO flights (flight_number, aircraft_id, origin, destination, departure_time, arrival_time,
		base_price_economy, base_price_business, base_price_first,
		available_economy, available_business, available_first, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	err := UnwrapTx(tx).QueryRowContext(ctx, query,
		f.FlightNumber, f.AircraftID, f.Origin, f.Destination, f.DepartureTime, f.ArrivalTime,
		f.BasePriceEconomy, f.BasePriceBusiness, f.BasePriceFirst,
		f.AvailableEconomy, f.AvailableBusiness, f.AvailableFirst,
		string(f.Status), f.CreatedAt, f.UpdatedAt).Scan(&f.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return flight.ErrFlightNumberConflict
		}
		return fmt.Errorf("フライト作成に失敗: %w", err)
	}
	return nil
}

func (r *FlightRepository) GetByID(ctx context.Context, id int64) (*flight.Flight, error) {
	var row flightRow
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound
		}
		return nil, fmt.Errorf("フライト取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) GetByIDTx(ctx context.Context, tx transaction.Tx, id int64) (*flight.Flight, error) {
	var row flightRow
	query := `SELECT ` + flightColumns + ` FROM flights WHERE id = $1`
	if err := UnwrapTx(tx).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound
		}
		return nil, fmt.Errorf("フライト取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) GetByNumber(ctx context.Context, flightNumber string) (*flight.Flight, error) {
	var row flightRow
	query := `SELECT ` + flightColumns + ` FROM flights WHERE flight_number = $1`
	if err := r.db.GetContext(ctx, &row, query, flightNumber); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, flight.ErrFlightNotFound
		}
		return nil, fmt.Errorf("フライト取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *FlightRepository) Search(ctx context.Context, criteria flight.SearchCriteria) ([]*flight.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if criteria.Origin != "" {
		query += fmt.Sprintf(" AND origin = $%d", idx)
		args = append(args, criteria.Origin)
		idx++
	}
	if criteria.Destination != "" {
		query += fmt.Sprintf(" AND destination = $%d", idx)
		args = append(args, criteria.Destination)
		idx++
	}
	if criteria.DepartureDate != nil {
		query += fmt.Sprintf(" AND departure_time >= $%d AND departure_time < $%d", idx, idx+1)
		day := criteria.DepartureDate.Truncate(24 * time.Hour)
		args = append(args, day, day.Add(24*time.Hour))
		idx += 2
	}
	limit := criteria.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" ORDER BY departure_time LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, criteria.Offset)

	var rows []flightRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("フライト検索に失敗: %w", err)
	}
	flights := make([]*flight.Flight, len(rows))
	for i, row := range rows {
		flights[i] = row.toEntity()
	}
	return flights, nil
}

func (r *FlightRepository) List(ctx context.Context, limit, offset int) ([]*flight.Flight, error) {
	var rows []flightRow
	query := `SELECT ` + flightColumns + ` FROM flights ORDER BY departure_time LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("フライト一覧取得に失敗: %w", err)
	}
	flights := make([]*flight.Flight, len(rows))
	for i, row := range rows {
		flights[i] = row.toEntity()
	}
	return flights, nil
}

func (r *FlightRepository) DecrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error {
	col := availabilityColumn(class)
	query := fmt.Sprintf(`UPDATE flights SET %s = %s - 1, updated_at = NOW() WHERE id = $1 AND %s >= 1`, col, col, col)
	result, err := UnwrapTx(tx).ExecContext(ctx, query, flightID)
	if err != nil {
		return fmt.Errorf("空席カウンタ減算に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return flight.ErrNoAvailability
	}
	return nil
}

func (r *FlightRepository) IncrementAvailability(ctx context.Context, tx transaction.Tx, flightID int64, class seat.Class) error {
	col := availabilityColumn(class)
	query := fmt.Sprintf(`UPDATE flights SET %s = %s + 1, updated_at = NOW() WHERE id = $1`, col, col)
	result, err := UnwrapTx(tx).ExecContext(ctx, query, flightID)
	if err != nil {
		return fmt.Errorf("空席カウンタ加算に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return flight.ErrFlightNotFound
	}
	return nil
}

func (r *FlightRepository) UpdateStatus(ctx context.Context, tx transaction.Tx, flightID int64, status flight.Status) error {
	query := `UPDATE flights SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := UnwrapTx(tx).ExecContext(ctx, query, string(status), flightID)
	if err != nil {
		return fmt.Errorf("フライト状態更新に失敗: %w", mapSerializationError(err))
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return flight.ErrFlightNotFound
	}
	return nil
}

var _ flight.Repository = (*FlightRepository)(nil)
