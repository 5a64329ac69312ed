package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/datalake/server/internal/shared/idgen"
	"github.com/datalake/server/internal/shared/pagination"
	"go.uber.org/zap"
)

const (
	usernameAttempts = 10
	searchMaxLimit   = 100
	searchDefaultLim = 10
)

// Service provides customer management operations.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new customer service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Create registers a customer with a generated customer id and username.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Customer, error) {
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	username, err := s.uniqueUsername(ctx, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}

	marketingEmails := true
	if req.MarketingEmails != nil {
		marketingEmails = *req.MarketingEmails
	}

	c := &Customer{
		CustomerID:      idgen.Short(idgen.PrefixCustomer),
		Username:        username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Phone:           req.Phone,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		City:            req.City,
		State:           req.State,
		PostalCode:      req.PostalCode,
		Country:         req.Country,
		DateOfBirth:     req.DateOfBirth,
		Gender:          req.Gender,
		CompanyName:     req.CompanyName,
		TaxID:           req.TaxID,
		IsActive:        true,
		MarketingEmails: marketingEmails,
		MarketingSMS:    req.MarketingSMS,
		Notes:           req.Notes,
		Tags:            NormalizeTags(req.Tags),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("customer created", zap.String("customer_id", c.CustomerID))
	return c, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email, exceptCustomerID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check email: %w", err)
	case existing.CustomerID == exceptCustomerID:
		return nil
	default:
		return ErrEmailAlreadyExists
	}
}

func (s *Service) uniqueUsername(ctx context.Context, firstName, lastName string) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		candidate := GenerateUsername(firstName, lastName)
		_, err := s.repo.GetByUsername(ctx, candidate)
		if errors.Is(err, ErrCustomerNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
	}
	return "", ErrUsernameExhausted
}

// Get returns a customer by its public id.
func (s *Service) Get(ctx context.Context, customerID string) (*Customer, error) {
	return s.repo.GetByCustomerID(ctx, customerID)
}

// GetByUsername returns a customer by username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Customer, error) {
	return s.repo.GetByUsername(ctx, username)
}

// GetByEmail returns a customer by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return s.repo.GetByEmail(ctx, email)
}

// List returns a page of customers.
func (s *Service) List(ctx context.Context, isActive *bool, p *pagination.Pagination) (*ListResponse, error) {
	customers, total, err := s.repo.List(ctx, isActive, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return toListResponse(customers, total, p), nil
}

// Search runs the advanced customer search.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (*ListResponse, error) {
	sortBy := req.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, ErrInvalidSortField
	}

	p := pagination.FromPage(req.Page, req.Limit, searchDefaultLim, searchMaxLimit)
	customers, total, err := s.repo.Search(ctx, &SearchQuery{
		SearchRequest: req,
		SortColumn:    column,
		Descending:    !strings.EqualFold(req.SortOrder, "asc"),
		Offset:        p.Offset(),
		Limit:         p.Limit,
	})
	if err != nil {
		return nil, err
	}
	return toListResponse(customers, total, p), nil
}

func toListResponse(customers []*Customer, total int64, p *pagination.Pagination) *ListResponse {
	out := make([]*Response, len(customers))
	for i, c := range customers {
		out[i] = c.ToResponse()
	}
	return &ListResponse{
		Customers:  out,
		Total:      total,
		Page:       p.Page(),
		Limit:      p.Limit,
		TotalPages: p.TotalPages(total),
	}
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, customerID string, req *UpdateRequest) (*Customer, error) {
	c, err := s.repo.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil && *req.Email != c.Email {
		if err := s.ensureEmailFree(ctx, *req.Email, customerID); err != nil {
			return nil, err
		}
	}

	req.Apply(c)
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Deactivate soft-deletes a customer.
func (s *Service) Deactivate(ctx context.Context, customerID string) error {
	return s.repo.SetFields(ctx, customerID, map[string]any{"is_active": false})
}

// Delete permanently removes a customer.
func (s *Service) Delete(ctx context.Context, customerID string) error {
	if err := s.repo.Delete(ctx, customerID); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", customerID))
	return nil
}

// BulkUpdate applies the same update to each customer independently.
// Email changes are rejected because the address must stay unique.
func (s *Service) BulkUpdate(ctx context.Context, req *BulkUpdateRequest) *BulkUpdateResponse {
	resp := &BulkUpdateResponse{
		FailedUpdates:  []BulkUpdateFailure{},
		TotalProcessed: len(req.CustomerIDs),
	}

	updates := req.Updates
	updates.Email = nil

	for _, id := range req.CustomerIDs {
		c, err := s.repo.GetByCustomerID(ctx, id)
		if err != nil {
			resp.FailedUpdates = append(resp.FailedUpdates, BulkUpdateFailure{CustomerID: id, Reason: failureReason(err)})
			continue
		}
		updates.Apply(c)
		if err := s.repo.Save(ctx, c); err != nil {
			s.logger.Warn("bulk update failed", zap.String("customer_id", id), zap.Error(err))
			resp.FailedUpdates = append(resp.FailedUpdates, BulkUpdateFailure{CustomerID: id, Reason: failureReason(err)})
			continue
		}
		resp.UpdatedCount++
	}
	return resp
}

func failureReason(err error) string {
	if errors.Is(err, ErrCustomerNotFound) {
		return "Customer not found"
	}
	return err.Error()
}

// VerifyEmail marks the customer's email as verified.
func (s *Service) VerifyEmail(ctx context.Context, customerID string) error {
	return s.repo.SetFields(ctx, customerID, map[string]any{"email_verified": true})
}

// VerifyPhone marks the customer's phone as verified.
func (s *Service) VerifyPhone(ctx context.Context, customerID string) error {
	return s.repo.SetFields(ctx, customerID, map[string]any{"phone_verified": true})
}

// TouchLastLogin records a login at the current time.
func (s *Service) TouchLastLogin(ctx context.Context, customerID string) error {
	return s.repo.SetFields(ctx, customerID, map[string]any{"last_login_at": s.now().UTC()})
}

// Statistics returns aggregate figures over all customers.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx, s.now().UTC())
}

// ListByTags returns customers carrying any of the tags.
func (s *Service) ListByTags(ctx context.Context, tags []string) ([]*Customer, error) {
	tags = NormalizeTags(tags)
	if len(tags) == 0 {
		return []*Customer{}, nil
	}
	return s.repo.ListByTags(ctx, tags)
}

// ListByLocation returns customers matching the location filter.
func (s *Service) ListByLocation(ctx context.Context, f LocationFilter) ([]*Customer, error) {
	return s.repo.ListByLocation(ctx, f)
}

// AvailableValues returns the distinct values of country, city or state.
func (s *Service) AvailableValues(ctx context.Context, column, country string) ([]ValueCount, error) {
	return s.repo.ValueCounts(ctx, column, country)
}
