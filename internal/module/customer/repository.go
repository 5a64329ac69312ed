package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Repository defines the interface for customer data access.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByCustomerID(ctx context.Context, customerID string) (*Customer, error)
	GetByUsername(ctx context.Context, username string) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, isActive *bool, offset, limit int) ([]*Customer, int64, error)
	Search(ctx context.Context, q *SearchQuery) ([]*Customer, int64, error)
	Save(ctx context.Context, c *Customer) error
	SetFields(ctx context.Context, customerID string, fields map[string]any) error
	Delete(ctx context.Context, customerID string) error
	ListByTags(ctx context.Context, tags []string) ([]*Customer, error)
	ListByLocation(ctx context.Context, f LocationFilter) ([]*Customer, error)
	Statistics(ctx context.Context, now time.Time) (*Statistics, error)
	ValueCounts(ctx context.Context, column, country string) ([]ValueCount, error)
}

// SearchQuery is a validated SearchRequest with resolved paging and sort.
type SearchQuery struct {
	*SearchRequest
	SortColumn string
	Descending bool
	Offset     int
	Limit      int
}

// sortColumns maps accepted sort_by values to columns.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"first_name":    "first_name",
	"last_name":     "last_name",
	"email":         "email",
	"username":      "username",
	"city":          "city",
	"country":       "country",
	"last_login_at": "last_login_at",
}

// groupColumns are the columns ValueCounts may aggregate on.
var groupColumns = map[string]bool{
	"country": true,
	"city":    true,
	"state":   true,
	"gender":  true,
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new customer repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Customer) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *repository) getBy(ctx context.Context, column, value string) (*Customer, error) {
	var c Customer
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer by %s: %w", column, err)
	}
	return &c, nil
}

func (r *repository) GetByCustomerID(ctx context.Context, customerID string) (*Customer, error) {
	return r.getBy(ctx, "customer_id", customerID)
}

func (r *repository) GetByUsername(ctx context.Context, username string) (*Customer, error) {
	return r.getBy(ctx, "username", username)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	return r.getBy(ctx, "email", email)
}

func (r *repository) List(ctx context.Context, isActive *bool, offset, limit int) ([]*Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&Customer{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	var customers []*Customer
	if err := query.Order("id ASC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	return customers, total, nil
}

func like(s string) string {
	return "%" + s + "%"
}

func (r *repository) Search(ctx context.Context, q *SearchQuery) ([]*Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&Customer{})

	if q.Query != "" {
		term := like(q.Query)
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR username ILIKE ? OR phone ILIKE ? OR company_name ILIKE ?",
			term, term, term, term, term, term,
		)
	}
	for _, f := range []struct{ column, value string }{
		{"first_name", q.FirstName},
		{"last_name", q.LastName},
		{"email", q.Email},
		{"phone", q.Phone},
		{"city", q.City},
		{"state", q.State},
		{"country", q.Country},
		{"company_name", q.CompanyName},
	} {
		if f.value != "" {
			query = query.Where(f.column+" ILIKE ?", like(f.value))
		}
	}
	if q.Gender != nil {
		query = query.Where("gender = ?", *q.Gender)
	}
	if q.IsActive != nil {
		query = query.Where("is_active = ?", *q.IsActive)
	}
	if q.IsVerified != nil {
		query = query.Where("is_verified = ?", *q.IsVerified)
	}
	if tags := NormalizeTags(q.Tags); len(tags) > 0 {
		query = query.Where("tags && ?", pq.Array(tags))
	}
	if q.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *q.CreatedAfter)
	}
	if q.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *q.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	order := q.SortColumn + " ASC"
	if q.Descending {
		order = q.SortColumn + " DESC"
	}

	var customers []*Customer
	if err := query.Order(order).Offset(q.Offset).Limit(q.Limit).Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("search customers: %w", err)
	}
	return customers, total, nil
}

func (r *repository) Save(ctx context.Context, c *Customer) error {
	if err := r.db.WithContext(ctx).Save(c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailAlreadyExists
		}
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

func (r *repository) SetFields(ctx context.Context, customerID string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&Customer{}).Where("customer_id = ?", customerID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, customerID string) error {
	result := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&Customer{})
	if result.Error != nil {
		return fmt.Errorf("delete customer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *repository) ListByTags(ctx context.Context, tags []string) ([]*Customer, error) {
	var customers []*Customer
	err := r.db.WithContext(ctx).
		Where("tags && ?", pq.Array(tags)).
		Order("id ASC").
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("list customers by tags: %w", err)
	}
	return customers, nil
}

func (r *repository) ListByLocation(ctx context.Context, f LocationFilter) ([]*Customer, error) {
	query := r.db.WithContext(ctx).Model(&Customer{})
	if f.City != "" {
		query = query.Where("city ILIKE ?", like(f.City))
	}
	if f.State != "" {
		query = query.Where("state ILIKE ?", like(f.State))
	}
	if f.Country != "" {
		query = query.Where("country ILIKE ?", like(f.Country))
	}

	var customers []*Customer
	if err := query.Order("id ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("list customers by location: %w", err)
	}
	return customers, nil
}

func (r *repository) count(ctx context.Context, where string, args ...any) (int64, error) {
	var n int64
	query := r.db.WithContext(ctx).Model(&Customer{})
	if where != "" {
		query = query.Where(where, args...)
	}
	if err := query.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}

func (r *repository) groupCounts(ctx context.Context, column string) (map[string]int64, error) {
	counts, err := r.ValueCounts(ctx, column, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(counts))
	for _, vc := range counts {
		out[vc.Value] = vc.Count
	}
	return out, nil
}

func (r *repository) Statistics(ctx context.Context, now time.Time) (*Statistics, error) {
	var (
		stats Statistics
		err   error
	)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	counters := []struct {
		dst   *int64
		where string
		args  []any
	}{
		{&stats.TotalCustomers, "", nil},
		{&stats.ActiveCustomers, "is_active = ?", []any{true}},
		{&stats.VerifiedCustomers, "is_verified = ?", []any{true}},
		{&stats.NewCustomersToday, "created_at >= ?", []any{today}},
		{&stats.NewCustomersThisWeek, "created_at >= ?", []any{today.AddDate(0, 0, -7)}},
		{&stats.NewCustomersThisMonth, "created_at >= ?", []any{today.AddDate(0, 0, -30)}},
	}
	for _, c := range counters {
		if *c.dst, err = r.count(ctx, c.where, c.args...); err != nil {
			return nil, err
		}
	}

	if stats.CustomersByCountry, err = r.groupCounts(ctx, "country"); err != nil {
		return nil, err
	}
	if stats.CustomersByCity, err = r.groupCounts(ctx, "city"); err != nil {
		return nil, err
	}
	if stats.GenderDistribution, err = r.groupCounts(ctx, "gender"); err != nil {
		return nil, err
	}

	var avg *float64
	err = r.db.WithContext(ctx).Model(&Customer{}).
		Select("AVG(EXTRACT(YEAR FROM age(?::timestamp, date_of_birth::date)))", now).
		Where("date_of_birth IS NOT NULL AND date_of_birth <> ''").
		Scan(&avg).Error
	if err != nil {
		return nil, fmt.Errorf("average customer age: %w", err)
	}
	stats.AverageCustomerAge = avg

	return &stats, nil
}

func (r *repository) ValueCounts(ctx context.Context, column, country string) ([]ValueCount, error) {
	if !groupColumns[column] {
		return nil, fmt.Errorf("group by %q: not allowed", column)
	}

	query := r.db.WithContext(ctx).Model(&Customer{}).
		Select(column + " AS value, COUNT(*) AS count").
		Where(column + " IS NOT NULL")
	if country != "" {
		query = query.Where("country = ?", country)
	}

	var counts []ValueCount
	if err := query.Group(column).Order("count DESC, value ASC").Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("count customers by %s: %w", column, err)
	}
	return counts, nil
}
