package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
)

// apiDate accepts "2024-03-15" or an RFC 3339 timestamp.
type apiDate struct {
	time.Time
}

func (d *apiDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := parseDate(s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func dateOrNow(d *apiDate) time.Time {
	if d == nil || d.IsZero() {
		return time.Now().UTC()
	}
	return d.Time
}

func dateOrZero(d *apiDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func datePtr(d *apiDate) *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

func money(c int64) decimal.Decimal {
	return format.ToDecimal(c)
}

func moneyPtr(c *int64) *decimal.Decimal {
	if c == nil {
		return nil
	}
	d := money(*c)
	return &d
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func whatsapp(phone *string) string {
	if phone == nil {
		return ""
	}
	return format.WhatsAppLink(*phone, "")
}

type apartmentDTO struct {
	ID               uuid.UUID       `json:"id"`
	Number           string          `json:"number"`
	Floor            *int            `json:"floor"`
	CommonExpenses   decimal.Decimal `json:"common_expenses"`
	ReserveFund      decimal.Decimal `json:"reserve_fund"`
	MonthlyCharge    decimal.Decimal `json:"monthly_charge"`
	Occupancy        string          `json:"occupancy"`
	OccupancyLabel   string          `json:"occupancy_label"`
	ContactFirstName *string         `json:"contact_first_name"`
	ContactLastName  *string         `json:"contact_last_name"`
	ContactPhone     *string         `json:"contact_phone"`
	ContactEmail     *string         `json:"contact_email"`
	WhatsAppLink     string          `json:"whatsapp_link,omitempty"`
	Notes            *string         `json:"notes"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toApartmentDTO(a *domain.Apartment) apartmentDTO {
	return apartmentDTO{
		ID:               a.ID,
		Number:           a.Number,
		Floor:            a.Floor,
		CommonExpenses:   money(a.CommonExpenses),
		ReserveFund:      money(a.ReserveFund),
		MonthlyCharge:    money(a.MonthlyCharge()),
		Occupancy:        string(a.Occupancy),
		OccupancyLabel:   a.Occupancy.Label(),
		ContactFirstName: a.ContactFirstName,
		ContactLastName:  a.ContactLastName,
		ContactPhone:     a.ContactPhone,
		ContactEmail:     a.ContactEmail,
		WhatsAppLink:     whatsapp(a.ContactPhone),
		Notes:            a.Notes,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

type tenantDTO struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	DocumentID  *string    `json:"document_id"`
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Kind        string     `json:"kind"`
	Active      bool       `json:"active"`
	MoveInDate  time.Time  `json:"move_in_date"`
	MoveOutDate *time.Time `json:"move_out_date"`
	Notes       *string    `json:"notes"`
	ApartmentID *uuid.UUID `json:"apartment_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTenantDTO(t *domain.Tenant) tenantDTO {
	return tenantDTO{
		ID:          t.ID,
		FirstName:   t.FirstName,
		LastName:    t.LastName,
		DocumentID:  t.DocumentID,
		Email:       t.Email,
		Phone:       t.Phone,
		Kind:        string(t.Kind),
		Active:      t.Active,
		MoveInDate:  t.MoveInDate,
		MoveOutDate: t.MoveOutDate,
		Notes:       t.Notes,
		ApartmentID: t.ApartmentID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type providerDTO struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	KindLabel     string    `json:"kind_label"`
	Name          string    `json:"name"`
	Phone         *string   `json:"phone"`
	Email         *string   `json:"email"`
	Bank          *string   `json:"bank"`
	AccountNumber *string   `json:"account_number"`
	Notes         *string   `json:"notes"`
	Active        bool      `json:"active"`
	WhatsAppLink  string    `json:"whatsapp_link,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProviderDTO(p *domain.ServiceProvider) providerDTO {
	return providerDTO{
		ID:            p.ID,
		Kind:          string(p.Kind),
		KindLabel:     p.Kind.Label(),
		Name:          p.Name,
		Phone:         p.Phone,
		Email:         p.Email,
		Bank:          p.Bank,
		AccountNumber: p.AccountNumber,
		Notes:         p.Notes,
		Active:        p.Active,
		WhatsAppLink:  whatsapp(p.Phone),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

type bankAccountDTO struct {
	ID             uuid.UUID       `json:"id"`
	Bank           string          `json:"bank"`
	AccountType    string          `json:"account_type"`
	AccountNumber  string          `json:"account_number"`
	Holder         *string         `json:"holder"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Active         bool            `json:"active"`
	IsDefault      bool            `json:"is_default"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func toBankAccountDTO(a *domain.BankAccount) bankAccountDTO {
	return bankAccountDTO{
		ID:             a.ID,
		Bank:           a.Bank,
		AccountType:    a.AccountType,
		AccountNumber:  a.AccountNumber,
		Holder:         a.Holder,
		OpeningBalance: money(a.OpeningBalance),
		Active:         a.Active,
		IsDefault:      a.IsDefault,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type movementDTO struct {
	ID                uuid.UUID       `json:"id"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	Date              time.Time       `json:"date"`
	Description       string          `json:"description"`
	Reference         *string         `json:"reference"`
	DocumentNumber    *string         `json:"document_number"`
	AttachmentURL     *string         `json:"attachment_url"`
	Classification    *string         `json:"classification"`
	Reconciled        bool            `json:"reconciled"`
	BankAccountID     uuid.UUID       `json:"bank_account_id"`
	TransactionID     *uuid.UUID      `json:"transaction_id"`
	ProviderID        *uuid.UUID      `json:"provider_id"`
	BankName          string          `json:"bank_name,omitempty"`
	BankAccountNumber string          `json:"bank_account_number,omitempty"`
	TransactionType   *string         `json:"transaction_type,omitempty"`
	ApartmentNumber   *string         `json:"apartment_number,omitempty"`
	ProviderName      *string         `json:"provider_name,omitempty"`
	ProviderKindLabel *string         `json:"provider_kind_label,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func toMovementDTO(m *domain.BankMovement) movementDTO {
	dto := movementDTO{
		ID:             m.ID,
		Type:           string(m.Type),
		Amount:         money(m.Amount),
		Date:           m.Date,
		Description:    m.Description,
		Reference:      m.Reference,
		DocumentNumber: m.DocumentNumber,
		AttachmentURL:  m.AttachmentURL,
		Reconciled:     m.Reconciled,
		BankAccountID:  m.BankAccountID,
		TransactionID:  m.TransactionID,
		ProviderID:     m.ProviderID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Classification != nil {
		c := string(*m.Classification)
		dto.Classification = &c
	}
	return dto
}

func toMovementDetailDTO(m *domain.BankMovementDetail) movementDTO {
	dto := toMovementDTO(&m.BankMovement)
	dto.BankName = m.BankName
	dto.BankAccountNumber = m.BankAccountNumber
	dto.ApartmentNumber = m.ApartmentNumber
	dto.ProviderName = m.ProviderName
	if m.TransactionType != nil {
		t := string(*m.TransactionType)
		dto.TransactionType = &t
	}
	if m.ProviderKind != nil {
		l := m.ProviderKind.Label()
		dto.ProviderKindLabel = &l
	}
	return dto
}

type transactionDTO struct {
	ID                 uuid.UUID        `json:"id"`
	Type               string           `json:"type"`
	TypeLabel          string           `json:"type_label"`
	Amount             decimal.Decimal  `json:"amount"`
	Date               time.Time        `json:"date"`
	Category           *string          `json:"category"`
	Description        *string          `json:"description"`
	Reference          *string          `json:"reference"`
	PaymentMethod      *string          `json:"payment_method"`
	Notes              *string          `json:"notes"`
	CreditStatus       *string          `json:"credit_status,omitempty"`
	PaidAmount         *decimal.Decimal `json:"paid_amount,omitempty"`
	PaymentClass       *string          `json:"payment_class,omitempty"`
	CommonAmount       *decimal.Decimal `json:"common_amount,omitempty"`
	ReserveAmount      *decimal.Decimal `json:"reserve_amount,omitempty"`
	ApartmentID        *uuid.UUID       `json:"apartment_id"`
	ApartmentNumber    *string          `json:"apartment_number,omitempty"`
	ApartmentOccupancy *string          `json:"apartment_occupancy,omitempty"`
	ReceiptID          *uuid.UUID       `json:"receipt_id,omitempty"`
	Version            int64            `json:"version"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func strPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		Type:          string(t.Type),
		TypeLabel:     t.Type.Label(),
		Amount:        money(t.Amount),
		Date:          t.Date,
		Category:      strPtr(t.Category),
		Description:   t.Description,
		Reference:     t.Reference,
		PaymentMethod: strPtr(t.PaymentMethod),
		Notes:         t.Notes,
		CreditStatus:  strPtr(t.CreditStatus),
		PaidAmount:    moneyPtr(t.PaidAmount),
		PaymentClass:  strPtr(t.PaymentClass),
		CommonAmount:  moneyPtr(t.CommonAmount),
		ReserveAmount: moneyPtr(t.ReserveAmount),
		ApartmentID:   t.ApartmentID,
		ReceiptID:     t.ReceiptID,
		Version:       t.Version,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTransactionListDTO(t *domain.TransactionWithApartment) transactionDTO {
	dto := toTransactionDTO(&t.Transaction)
	dto.ApartmentNumber = t.ApartmentNumber
	dto.ApartmentOccupancy = strPtr(t.ApartmentOccupancy)
	return dto
}

func toTransactionDTOs(txs []domain.TransactionWithApartment) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i := range txs {
		out[i] = toTransactionListDTO(&txs[i])
	}
	return out
}

type logbookDTO struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"`
	Kind        string    `json:"kind"`
	KindLabel   string    `json:"kind_label"`
	Detail      string    `json:"detail"`
	Notes       *string   `json:"notes"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toLogbookDTO(e *domain.LogbookEntry) logbookDTO {
	return logbookDTO{
		ID:          e.ID,
		Date:        e.Date,
		Kind:        string(e.Kind),
		KindLabel:   e.Kind.Label(),
		Detail:      e.Detail,
		Notes:       e.Notes,
		Status:      string(e.Status),
		StatusLabel: e.Status.Label(),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type noticeDTO struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Position  int       `json:"position"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toNoticeDTO(n *domain.ReportNotice) noticeDTO {
	return noticeDTO{
		ID:        n.ID,
		Text:      n.Text,
		Position:  n.Position,
		Month:     n.Month,
		Year:      n.Year,
		Active:    n.Active,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func toNoticeDTOs(ns []domain.ReportNotice) []noticeDTO {
	out := make([]noticeDTO, len(ns))
	for i := range ns {
		out[i] = toNoticeDTO(&ns[i])
	}
	return out
}
