package domain

import (
	"time"

	"github.com/google/uuid"
)

type Occupancy string

const (
	OccupancyOwner  Occupancy = "OWNER"
	OccupancyTenant Occupancy = "TENANT"
)

func (o Occupancy) IsValid() bool {
	return o == OccupancyOwner || o == OccupancyTenant
}

// Label is the Spanish name printed on receipts and reports.
func (o Occupancy) Label() string {
	if o == OccupancyTenant {
		return "Inquilino"
	}
	return "Propietario"
}

type Apartment struct {
	ID               uuid.UUID
	Number           string
	Floor            *int
	CommonExpenses   int64
	ReserveFund      int64
	Occupancy        Occupancy
	ContactFirstName *string
	ContactLastName  *string
	ContactPhone     *string
	ContactEmail     *string
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// MonthlyCharge is what the apartment is billed every month.
func (a *Apartment) MonthlyCharge() int64 {
	return a.CommonExpenses + a.ReserveFund
}

type Tenant struct {
	ID          uuid.UUID
	FirstName   string
	LastName    string
	DocumentID  *string
	Email       *string
	Phone       *string
	Kind        Occupancy
	Active      bool
	MoveInDate  time.Time
	MoveOutDate *time.Time
	Notes       *string
	ApartmentID *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
