package pdf

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/josh-kwaku/edificio/internal/domain"
	"github.com/josh-kwaku/edificio/internal/format"
	"github.com/josh-kwaku/edificio/internal/metrics"
	"github.com/josh-kwaku/edificio/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	DocMonthlyReport      = "monthly_report"
	DocReceipt            = "receipt"
	DocBankStatement      = "bank_statement"
	DocApartmentStatement = "apartment_statement"
	DocLogbook            = "logbook"
	DocProviderDirectory  = "provider_directory"
)

var documentNames = []string{
	DocMonthlyReport,
	DocReceipt,
	DocBankStatement,
	DocApartmentStatement,
	DocLogbook,
	DocProviderDirectory,
}

// Building is printed in the header of every document.
type Building struct {
	Name    string
	Address string
}

type docPage struct {
	Title     string
	Building  Building
	Footer    string
	Generated time.Time
	Doc       any
}

// Documents renders each printable document from its data.
type Documents struct {
	renderer  Renderer
	building  Building
	templates map[string]*template.Template
	now       func() time.Time
}

func NewDocuments(renderer Renderer, building Building) (*Documents, error) {
	base, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("NewDocuments: base: %w", err)
	}

	set := make(map[string]*template.Template, len(documentNames))
	for _, name := range documentNames {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("NewDocuments: %s: %w", name, err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("NewDocuments: %s: %w", name, err)
		}
		set[name] = t
	}

	return &Documents{renderer: renderer, building: building, templates: set, now: time.Now}, nil
}

var funcs = template.FuncMap{
	"money":    format.Money,
	"date":     format.Date,
	"longDate": format.LongDate,
	"dateTime": format.DateTime,
	"whatsapp": func(phone string) template.URL {
		return template.URL(format.WhatsAppLink(phone, ""))
	},
	"abs": func(v int64) int64 {
		if v < 0 {
			return -v
		}
		return v
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"classLabel": func(c *domain.Classification) string {
		if c == nil {
			return "Sin clasificar"
		}
		return c.Label()
	},
	"inc": func(i int) int { return i + 1 },
}

// HTML renders a document to its HTML source.
func (d *Documents) HTML(name, title, footer string, doc any) (string, error) {
	t, ok := d.templates[name]
	if !ok {
		return "", fmt.Errorf("HTML: unknown document %q", name)
	}
	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "base.html", docPage{
		Title:     title,
		Building:  d.building,
		Footer:    footer,
		Generated: d.now(),
		Doc:       doc,
	})
	if err != nil {
		return "", fmt.Errorf("HTML: %s: %w", name, err)
	}
	return buf.String(), nil
}

func (d *Documents) render(ctx context.Context, name, title, footer string, doc any) ([]byte, error) {
	html, err := d.HTML(name, title, footer, doc)
	if err != nil {
		metrics.PDFRenders.WithLabelValues(name, "template_error").Inc()
		return nil, err
	}
	out, err := d.renderer.Render(ctx, html)
	if err != nil {
		metrics.PDFRenders.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	metrics.PDFRenders.WithLabelValues(name, "ok").Inc()
	return out, nil
}

func (d *Documents) MonthlyReport(ctx context.Context, r *report.Monthly) ([]byte, error) {
	return d.render(ctx, DocMonthlyReport, "Informe Mensual - "+r.Period(), r.Footer, r)
}

func (d *Documents) BankStatement(ctx context.Context, st *report.Statement) ([]byte, error) {
	return d.render(ctx, DocBankStatement, "Estado de Cuenta Bancario - "+st.Account.Bank, st.Footer, st)
}

func (d *Documents) ApartmentStatement(ctx context.Context, st *report.ApartmentStatement) ([]byte, error) {
	return d.render(ctx, DocApartmentStatement, "Estado de Cuenta - Apto "+st.Apartment.Number, st.Footer, st)
}

// ConceptLine is one line of the "conceptos abonados" table of a receipt.
type ConceptLine struct {
	Label  string
	Amount int64
}

type ReceiptDoc struct {
	Receipt   domain.Transaction
	Apartment domain.Apartment
	Method    string
	Concepts  []ConceptLine
	Balance   int64
}

// BalanceLabel names the state of the account after the payment.
func (r ReceiptDoc) BalanceLabel() string {
	switch {
	case r.Balance > 0:
		return "SALDO DEUDOR"
	case r.Balance < 0:
		return "SALDO A FAVOR"
	default:
		return "CUENTA AL DÍA"
	}
}

// NewReceiptDoc prepares a payment receipt. balance is the apartment's balance once the
// payment is applied.
func NewReceiptDoc(receipt domain.Transaction, apartment domain.Apartment, balance int64) ReceiptDoc {
	doc := ReceiptDoc{Receipt: receipt, Apartment: apartment, Balance: balance, Method: "Otro"}
	if receipt.PaymentMethod != nil {
		doc.Method = receipt.PaymentMethod.Label()
	}

	if receipt.PaymentClass == nil && receipt.CommonAmount == nil && receipt.ReserveAmount == nil {
		doc.Concepts = []ConceptLine{{Label: "Pago a cuenta", Amount: receipt.Amount}}
		return doc
	}
	common, reserve := receipt.ReceiptSplit()
	if common > 0 {
		doc.Concepts = append(doc.Concepts, ConceptLine{Label: "Gastos Comunes", Amount: common})
	}
	if reserve > 0 {
		doc.Concepts = append(doc.Concepts, ConceptLine{Label: "Fondo de Reserva", Amount: reserve})
	}
	return doc
}

func (d *Documents) Receipt(ctx context.Context, doc ReceiptDoc, footer string) ([]byte, error) {
	return d.render(ctx, DocReceipt, "Comprobante de Pago - Apto "+doc.Apartment.Number, footer, doc)
}

func (d *Documents) Logbook(ctx context.Context, entries []domain.LogbookEntry, footer string) ([]byte, error) {
	return d.render(ctx, DocLogbook, "Bitácora", footer, entries)
}

func (d *Documents) ProviderDirectory(ctx context.Context, providers []domain.ServiceProvider, footer string) ([]byte, error) {
	return d.render(ctx, DocProviderDirectory, "Directorio de Servicios", footer, providers)
}
