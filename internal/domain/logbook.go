package domain

import (
	"time"

	"github.com/google/uuid"
)

type LogbookKind string

const (
	LogbookKindNews        LogbookKind = "NEWS"
	LogbookKindDueDate     LogbookKind = "DUE_DATE"
	LogbookKindMaintenance LogbookKind = "MAINTENANCE"
	LogbookKindMeeting     LogbookKind = "MEETING"
	LogbookKindIncident    LogbookKind = "INCIDENT"
	LogbookKindReminder    LogbookKind = "REMINDER"
	LogbookKindOther       LogbookKind = "OTHER"
)

var logbookKindLabels = map[LogbookKind]string{
	LogbookKindNews:        "Novedad",
	LogbookKindDueDate:     "Vencimiento",
	LogbookKindMaintenance: "Mantenimiento",
	LogbookKindMeeting:     "Reunión",
	LogbookKindIncident:    "Incidente",
	LogbookKindReminder:    "Recordatorio",
	LogbookKindOther:       "Otro",
}

func (k LogbookKind) Label() string {
	if l, ok := logbookKindLabels[k]; ok {
		return l
	}
	return string(k)
}

func (k LogbookKind) IsValid() bool {
	switch k {
	case LogbookKindNews, LogbookKindDueDate, LogbookKindMaintenance, LogbookKindMeeting,
		LogbookKindIncident, LogbookKindReminder, LogbookKindOther:
		return true
	}
	return false
}

type LogbookStatus string

const (
	LogbookStatusPending    LogbookStatus = "PENDING"
	LogbookStatusInProgress LogbookStatus = "IN_PROGRESS"
	LogbookStatusDone       LogbookStatus = "DONE"
	LogbookStatusCancelled  LogbookStatus = "CANCELLED"
	LogbookStatusExpired    LogbookStatus = "EXPIRED"
)

var logbookStatusLabels = map[LogbookStatus]string{
	LogbookStatusPending:    "Pendiente",
	LogbookStatusInProgress: "En proceso",
	LogbookStatusDone:       "Realizado",
	LogbookStatusCancelled:  "Cancelado",
	LogbookStatusExpired:    "Vencido",
}

func (s LogbookStatus) Label() string {
	if l, ok := logbookStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s LogbookStatus) IsValid() bool {
	switch s {
	case LogbookStatusPending, LogbookStatusInProgress, LogbookStatusDone,
		LogbookStatusCancelled, LogbookStatusExpired:
		return true
	}
	return false
}

type LogbookEntry struct {
	ID        uuid.UUID
	Date      time.Time
	Kind      LogbookKind
	Detail    string
	Notes     *string
	Status    LogbookStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
