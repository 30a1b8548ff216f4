package model

import "strings"

// CustomerInfo is the checkout form filled in by the shopper.
type CustomerInfo struct {
	FirstName string `json:"firstName" validate:"required,min=2"`
	LastName  string `json:"lastName" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,len=11,number"`
	Address   string `json:"address" validate:"required,min=5"`
	City      string `json:"city" validate:"required,min=2"`
	Country   string `json:"country" validate:"required,min=2"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (c CustomerInfo) Normalized() CustomerInfo {
	return CustomerInfo{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
		Address:   strings.TrimSpace(c.Address),
		City:      strings.TrimSpace(c.City),
		Country:   strings.TrimSpace(c.Country),
	}
}

// FullName joins first and last name.
func (c CustomerInfo) FullName() string {
	return c.FirstName + " " + c.LastName
}

// FullAddress joins the address lines into the single string stored on orders.
func (c CustomerInfo) FullAddress() string {
	return c.Address + ", " + c.City + ", " + c.Country
}
