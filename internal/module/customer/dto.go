package customer

import "time"

// CreateRequest represents a customer creation request.
type CreateRequest struct {
	FirstName string  `json:"first_name" binding:"required,min=1,max=100"`
	LastName  string  `json:"last_name" binding:"required,min=1,max=100"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`

	AddressLine1 *string `json:"address_line1" binding:"omitempty,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	State        *string `json:"state" binding:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code" binding:"omitempty,max=20"`
	Country      *string `json:"country" binding:"omitempty,max=100"`

	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      *Gender `json:"gender" binding:"omitempty,oneof=male female other prefer_not_to_say"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=255"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=50"`

	MarketingEmails *bool `json:"marketing_emails"`
	MarketingSMS    bool  `json:"marketing_sms"`

	Notes *string  `json:"notes"`
	Tags  []string `json:"tags" binding:"omitempty,max=50,dive,max=50"`
}

// UpdateRequest carries a partial update. Nil fields are left unchanged.
type UpdateRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email     *string `json:"email" binding:"omitempty,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`

	AddressLine1 *string `json:"address_line1" binding:"omitempty,max=255"`
	AddressLine2 *string `json:"address_line2" binding:"omitempty,max=255"`
	City         *string `json:"city" binding:"omitempty,max=100"`
	State        *string `json:"state" binding:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code" binding:"omitempty,max=20"`
	Country      *string `json:"country" binding:"omitempty,max=100"`

	DateOfBirth *string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
	Gender      *Gender `json:"gender" binding:"omitempty,oneof=male female other prefer_not_to_say"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=255"`
	TaxID       *string `json:"tax_id" binding:"omitempty,max=50"`

	IsActive      *bool `json:"is_active"`
	IsVerified    *bool `json:"is_verified"`
	EmailVerified *bool `json:"email_verified"`
	PhoneVerified *bool `json:"phone_verified"`

	MarketingEmails *bool `json:"marketing_emails"`
	MarketingSMS    *bool `json:"marketing_sms"`

	Notes *string  `json:"notes"`
	Tags  []string `json:"tags" binding:"omitempty,max=50,dive,max=50"`
}

// Apply copies the set fields onto c.
func (r *UpdateRequest) Apply(c *Customer) {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setOptional := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&c.FirstName, r.FirstName)
	setString(&c.LastName, r.LastName)
	setString(&c.Email, r.Email)
	setOptional(&c.Phone, r.Phone)
	setOptional(&c.AddressLine1, r.AddressLine1)
	setOptional(&c.AddressLine2, r.AddressLine2)
	setOptional(&c.City, r.City)
	setOptional(&c.State, r.State)
	setOptional(&c.PostalCode, r.PostalCode)
	setOptional(&c.Country, r.Country)
	setOptional(&c.DateOfBirth, r.DateOfBirth)
	setOptional(&c.CompanyName, r.CompanyName)
	setOptional(&c.TaxID, r.TaxID)
	setOptional(&c.Notes, r.Notes)
	if r.Gender != nil {
		g := *r.Gender
		c.Gender = &g
	}
	setBool(&c.IsActive, r.IsActive)
	setBool(&c.IsVerified, r.IsVerified)
	setBool(&c.EmailVerified, r.EmailVerified)
	setBool(&c.PhoneVerified, r.PhoneVerified)
	setBool(&c.MarketingEmails, r.MarketingEmails)
	setBool(&c.MarketingSMS, r.MarketingSMS)
	if r.Tags != nil {
		c.Tags = NormalizeTags(r.Tags)
	}
}

// SearchRequest carries the advanced search filters.
type SearchRequest struct {
	Query         string     `json:"query"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Country       string     `json:"country"`
	Gender        *Gender    `json:"gender" binding:"omitempty,oneof=male female other prefer_not_to_say"`
	IsActive      *bool      `json:"is_active"`
	IsVerified    *bool      `json:"is_verified"`
	CompanyName   string     `json:"company_name"`
	Tags          []string   `json:"tags"`
	CreatedAfter  *time.Time `json:"created_after"`
	CreatedBefore *time.Time `json:"created_before"`
	SortBy        string     `json:"sort_by"`
	SortOrder     string     `json:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Page          int        `json:"page" binding:"omitempty,min=1"`
	Limit         int        `json:"limit" binding:"omitempty,min=1,max=100"`
}

// BulkUpdateRequest applies the same update to several customers.
type BulkUpdateRequest struct {
	CustomerIDs []string      `json:"customer_ids" binding:"required,min=1,max=1000"`
	Updates     UpdateRequest `json:"updates"`
}

// BulkUpdateFailure describes a customer that could not be updated.
type BulkUpdateFailure struct {
	CustomerID string `json:"customer_id"`
	Reason     string `json:"reason"`
}

// BulkUpdateResponse summarises a bulk update.
type BulkUpdateResponse struct {
	UpdatedCount   int                 `json:"updated_count"`
	FailedUpdates  []BulkUpdateFailure `json:"failed_updates"`
	TotalProcessed int                 `json:"total_processed"`
}

// Response represents a customer in API responses.
type Response struct {
	ID         uint    `json:"id"`
	CustomerID string  `json:"customer_id"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email"`
	Phone      *string `json:"phone"`

	AddressLine1 *string `json:"address_line1"`
	AddressLine2 *string `json:"address_line2"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	PostalCode   *string `json:"postal_code"`
	Country      *string `json:"country"`

	DateOfBirth *string `json:"date_of_birth"`
	Gender      *Gender `json:"gender"`
	CompanyName *string `json:"company_name"`
	TaxID       *string `json:"tax_id"`

	IsActive        bool `json:"is_active"`
	IsVerified      bool `json:"is_verified"`
	EmailVerified   bool `json:"email_verified"`
	PhoneVerified   bool `json:"phone_verified"`
	MarketingEmails bool `json:"marketing_emails"`
	MarketingSMS    bool `json:"marketing_sms"`

	Notes *string  `json:"notes"`
	Tags  []string `json:"tags"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	LastLoginAt *time.Time `json:"last_login_at"`

	FullName    string  `json:"full_name"`
	FullAddress *string `json:"full_address"`
}

// ListResponse is a page of customers.
type ListResponse struct {
	Customers  []*Response `json:"customers"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// Statistics summarises the customer base.
type Statistics struct {
	TotalCustomers        int64            `json:"total_customers"`
	ActiveCustomers       int64            `json:"active_customers"`
	VerifiedCustomers     int64            `json:"verified_customers"`
	NewCustomersToday     int64            `json:"new_customers_today"`
	NewCustomersThisWeek  int64            `json:"new_customers_this_week"`
	NewCustomersThisMonth int64            `json:"new_customers_this_month"`
	CustomersByCountry    map[string]int64 `json:"customers_by_country"`
	CustomersByCity       map[string]int64 `json:"customers_by_city"`
	AverageCustomerAge    *float64         `json:"average_customer_age"`
	GenderDistribution    map[string]int64 `json:"gender_distribution"`
}

// ValueCount is a distinct column value and how many customers share it.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// LocationFilter narrows customers by place. Empty fields are ignored.
type LocationFilter struct {
	City    string `form:"city" json:"city,omitempty"`
	State   string `form:"state" json:"state,omitempty"`
	Country string `form:"country" json:"country,omitempty"`
}
