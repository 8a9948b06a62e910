package models

import "time"

// Client is a billable customer. A copy of the client is embedded by value
// into each invoice at save time; later edits never touch historical invoices.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// ProjectStatus represents the status of a project.
type ProjectStatus string

const (
	ProjectStatusPlanned ProjectStatus = "planned"
	ProjectStatusActive  ProjectStatus = "active"
	ProjectStatusOnHold  ProjectStatus = "on_hold"
	ProjectStatusDone    ProjectStatus = "done"
)

// Project groups work under a client engagement. ClientName is a
// denormalized copy kept alongside the reference for display.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	ClientID    string        `json:"client_id"`
	ClientName  string        `json:"client_name"`
	Status      ProjectStatus `json:"status"`
	DueDate     time.Time     `json:"due_date"`
	Description string        `json:"description,omitempty"`
	Progress    int           `json:"progress"` // 0..100
}

// BankDetails is the payment destination printed on an invoice.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
}

// AppSettings is the singleton business profile: created with defaults on
// first run, replaced wholesale on save, never deleted.
type AppSettings struct {
	BusinessName      string      `json:"business_name"`
	Address           string      `json:"address"`
	Email             string      `json:"email"`
	Phone             string      `json:"phone"`
	Logo              string      `json:"logo,omitempty"` // encoded image data string
	Bank              BankDetails `json:"bank"`
	DefaultImagePrice float64     `json:"default_image_price"`
}

// DefaultSettings returns the settings record seeded on first run.
func DefaultSettings() AppSettings {
	return AppSettings{BusinessName: "My Business"}
}
