package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SettingReportFooter = "report_footer"
	DefaultReportFooter = "Sistema de Administración de Edificios"
)

type ReportNotice struct {
	ID        uuid.UUID
	Text      string
	Position  int
	Month     int
	Year      int
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReportSetting struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}
