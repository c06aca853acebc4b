package models

import "rmsbilling/internal/money"

// Customer is a billable party.
type Customer struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Type          string `json:"type"`
	Address       string `json:"address,omitempty"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ContactPerson string `json:"contactPerson,omitempty"`
	GSTNumber     string `json:"gstNumber,omitempty"`
	PANNumber     string `json:"panNumber,omitempty"`
	PaymentTerms  int    `json:"paymentTerms"`
	IsActive      bool   `json:"isActive"`
}

// ServiceType is a billable service. Its TaxRate seeds the tax rate of new
// line items that reference it.
type ServiceType struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	TaxRate     money.Rate `json:"taxRate"`
	IsActive    bool       `json:"isActive"`
}

// ClientType groups customers by default payment terms.
type ClientType struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	PaymentTerms int    `json:"paymentTerms"`
	IsActive     bool   `json:"isActive"`
}

// Company is an issuing entity. Prefix seeds document numbering
// (e.g. "ACM" gives receipts numbered ACM-RCT-001).
type Company struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Prefix    string `json:"prefix,omitempty"`
	GSTNumber string `json:"gstNumber,omitempty"`
	IsActive  bool   `json:"isActive"`
}
