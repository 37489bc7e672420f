package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-airline-reservation/internal/domain/loyalty"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/passenger"
	"github.com/sanosuguru/go-airline-reservation/internal/domain/transaction"
)

// PassengerService は搭乗者とマイレージ口座のユースケースを提供する
type PassengerService struct {
	txManager     transaction.Manager
	passengerRepo passenger.Repository
	loyaltyRepo   loyalty.Repository
}

func NewPassengerService(tm transaction.Manager, pr passenger.Repository, lr loyalty.Repository) *PassengerService {
	return &PassengerService{txManager: tm, passengerRepo: pr, loyaltyRepo: lr}
}

type CreatePassengerInput struct {
	FirstName      string
	LastName       string
	Email          string
	DateOfBirth    time.Time
	PassportNumber string
	Nationality    string
	Phone          string
}

// CreatePassenger は搭乗者とそのマイレージ口座を同一トランザクションで作成する
func (s *PassengerService) CreatePassenger(ctx context.Context, input CreatePassengerInput) (*passenger.Passenger, error) {
	p := passenger.NewPassenger(input.FirstName, input.LastName, input.Email,
		input.DateOfBirth, input.PassportNumber, input.Nationality, input.Phone)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := transaction.Run(ctx, s.txManager, transaction.LevelDefault, func(tx transaction.Tx) error {
		if err := s.passengerRepo.Create(ctx, tx, p); err != nil {
			return err
		}
		account := loyalty.NewAccount(p.ID)
		number, err := uniqueMembershipNumber(ctx, tx, s.loyaltyRepo)
		if err != nil {
			return err
		}
		account.MembershipNumber = number
		return s.loyaltyRepo.Create(ctx, tx, account)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PassengerService) GetPassenger(ctx context.Context, id int64) (*passenger.Passenger, error) {
	return s.passengerRepo.GetByID(ctx, id)
}

func (s *PassengerService) GetPassengerByPassport(ctx context.Context, passportNumber string) (*passenger.Passenger, error) {
	return s.passengerRepo.GetByPassport(ctx, passportNumber)
}

func (s *PassengerService) ListPassengers(ctx context.Context, limit, offset int) ([]*passenger.Passenger, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.passengerRepo.List(ctx, limit, offset)
}

// GetLoyaltyAccount は搭乗者のマイレージ口座を取得する
func (s *PassengerService) GetLoyaltyAccount(ctx context.Context, passengerID int64) (*loyalty.Account, error) {
	if _, err := s.passengerRepo.GetByID(ctx, passengerID); err != nil {
		return nil, err
	}
	return s.loyaltyRepo.GetByPassenger(ctx, passengerID)
}
