package domain

import (
	"time"

	"github.com/google/uuid"
)

type ProviderKind string

const (
	ProviderKindElectrician     ProviderKind = "ELECTRICIAN"
	ProviderKindPlumber         ProviderKind = "PLUMBER"
	ProviderKindSanitary        ProviderKind = "SANITARY"
	ProviderKindLocksmith       ProviderKind = "LOCKSMITH"
	ProviderKindPainter         ProviderKind = "PAINTER"
	ProviderKindCarpenter       ProviderKind = "CARPENTER"
	ProviderKindMason           ProviderKind = "MASON"
	ProviderKindGardener        ProviderKind = "GARDENER"
	ProviderKindCleaning        ProviderKind = "CLEANING"
	ProviderKindSecurity        ProviderKind = "SECURITY"
	ProviderKindFumigation      ProviderKind = "FUMIGATION"
	ProviderKindElevator        ProviderKind = "ELEVATOR"
	ProviderKindGlazier         ProviderKind = "GLAZIER"
	ProviderKindIronwork        ProviderKind = "IRONWORK"
	ProviderKindAirConditioning ProviderKind = "AIR_CONDITIONING"
	ProviderKindGas             ProviderKind = "GAS"
	ProviderKindUTE             ProviderKind = "UTE"
	ProviderKindOSE             ProviderKind = "OSE"
	ProviderKindSanitationFee   ProviderKind = "SANITATION_FEE"
	ProviderKindOther           ProviderKind = "OTHER"
)

var providerKindLabels = map[ProviderKind]string{
	ProviderKindElectrician:     "Electricista",
	ProviderKindPlumber:         "Plomero",
	ProviderKindSanitary:        "Sanitario",
	ProviderKindLocksmith:       "Cerrajero",
	ProviderKindPainter:         "Pintor",
	ProviderKindCarpenter:       "Carpintero",
	ProviderKindMason:           "Albañil",
	ProviderKindGardener:        "Jardinero",
	ProviderKindCleaning:        "Limpieza",
	ProviderKindSecurity:        "Seguridad",
	ProviderKindFumigation:      "Fumigación",
	ProviderKindElevator:        "Ascensor",
	ProviderKindGlazier:         "Vidriería",
	ProviderKindIronwork:        "Herrería",
	ProviderKindAirConditioning: "Aire Acondicionado",
	ProviderKindGas:             "Gas",
	ProviderKindUTE:             "UTE",
	ProviderKindOSE:             "OSE",
	ProviderKindSanitationFee:   "Tarifa de Saneamiento",
	ProviderKindOther:           "Otro",
}

func (k ProviderKind) IsValid() bool {
	_, ok := providerKindLabels[k]
	return ok
}

func (k ProviderKind) Label() string {
	if l, ok := providerKindLabels[k]; ok {
		return l
	}
	return string(k)
}

type ServiceProvider struct {
	ID            uuid.UUID
	Kind          ProviderKind
	Name          string
	Phone         *string
	Email         *string
	Bank          *string
	AccountNumber *string
	Notes         *string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
