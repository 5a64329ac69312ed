// Package customer manages customer profiles.
package customer

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Gender values accepted for a customer.
type Gender string

const (
	GenderMale           Gender = "male"
	GenderFemale         Gender = "female"
	GenderOther          Gender = "other"
	GenderPreferNotToSay Gender = "prefer_not_to_say"
)

const maxUsernameBase = 20

// Customer is a customer profile.
type Customer struct {
	ID         uint   `gorm:"primaryKey"`
	CustomerID string `gorm:"column:customer_id;uniqueIndex;size:50;not null"`
	Username   string `gorm:"uniqueIndex;size:50;not null"`
	FirstName  string `gorm:"size:100;not null"`
	LastName   string `gorm:"size:100;not null"`
	Email      string `gorm:"uniqueIndex;size:255;not null"`
	Phone      *string

	AddressLine1 *string `gorm:"column:address_line1"`
	AddressLine2 *string `gorm:"column:address_line2"`
	City         *string `gorm:"index"`
	State        *string
	PostalCode   *string
	Country      *string `gorm:"index"`

	DateOfBirth *string `gorm:"size:10"`
	Gender      *Gender
	CompanyName *string
	TaxID       *string `gorm:"column:tax_id"`

	IsActive      bool `gorm:"not null;default:true;index"`
	IsVerified    bool `gorm:"not null;default:false"`
	EmailVerified bool `gorm:"not null;default:false"`
	PhoneVerified bool `gorm:"not null;default:false"`

	MarketingEmails bool `gorm:"not null;default:true"`
	MarketingSMS    bool `gorm:"column:marketing_sms;not null;default:false"`

	Notes *string
	Tags  pq.StringArray `gorm:"type:text[]"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastLoginAt *time.Time
}

// TableName returns the database table name.
func (Customer) TableName() string {
	return "customers"
}

// FullName returns "first last".
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// FullAddress joins the non-empty address parts, or returns nil.
func (c *Customer) FullAddress() *string {
	var parts []string
	for _, p := range []*string{c.AddressLine1, c.AddressLine2, c.City, c.State, c.PostalCode, c.Country} {
		if p != nil && *p != "" {
			parts = append(parts, *p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	addr := strings.Join(parts, ", ")
	return &addr
}

// ToResponse converts the customer to its API representation.
func (c *Customer) ToResponse() *Response {
	return &Response{
		ID:              c.ID,
		CustomerID:      c.CustomerID,
		Username:        c.Username,
		FirstName:       c.FirstName,
		LastName:        c.LastName,
		Email:           c.Email,
		Phone:           c.Phone,
		AddressLine1:    c.AddressLine1,
		AddressLine2:    c.AddressLine2,
		City:            c.City,
		State:           c.State,
		PostalCode:      c.PostalCode,
		Country:         c.Country,
		DateOfBirth:     c.DateOfBirth,
		Gender:          c.Gender,
		CompanyName:     c.CompanyName,
		TaxID:           c.TaxID,
		IsActive:        c.IsActive,
		IsVerified:      c.IsVerified,
		EmailVerified:   c.EmailVerified,
		PhoneVerified:   c.PhoneVerified,
		MarketingEmails: c.MarketingEmails,
		MarketingSMS:    c.MarketingSMS,
		Notes:           c.Notes,
		Tags:            []string(c.Tags),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		LastLoginAt:     c.LastLoginAt,
		FullName:        c.FullName(),
		FullAddress:     c.FullAddress(),
	}
}

// UsernameBase lower-cases first+last name, keeps letters and digits and
// truncates to 20 characters.
func UsernameBase(firstName, lastName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(firstName + lastName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	base := []rune(b.String())
	if len(base) > maxUsernameBase {
		base = base[:maxUsernameBase]
	}
	if len(base) == 0 {
		return "customer"
	}
	return string(base)
}

// GenerateUsername appends a random 4 character hex suffix to the base.
func GenerateUsername(firstName, lastName string) string {
	return UsernameBase(firstName, lastName) + strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}

// NormalizeTags trims, drops empties and de-duplicates tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// SplitTags parses a comma-separated tag list.
func SplitTags(s string) []string {
	return NormalizeTags(strings.Split(s, ","))
}
