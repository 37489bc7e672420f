package passenger

import "time"

// Passenger は搭乗者エンティティを表す
type Passenger struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	DateOfBirth    time.Time
	PassportNumber string
	Nationality    string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPassenger は新しい搭乗者を作成する
func NewPassenger(firstName, lastName, email string, dateOfBirth time.Time, passportNumber, nationality, phone string) *Passenger {
	now := time.Now()
	return &Passenger{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		DateOfBirth:    dateOfBirth,
		PassportNumber: passportNumber,
		Nationality:    nationality,
		Phone:          phone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// FullName は氏名を返す
func (p *Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Validate は搭乗者の検証を行う
func (p *Passenger) Validate() error {
	if p.FirstName == "" || p.LastName == "" {
		return ErrNameRequired
	}
	if p.PassportNumber == "" {
		return ErrPassportRequired
	}
	return nil
}
