package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. The connection must be
// opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle
// and schema (see platform/migrations).
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to the orders table. Items are embedded
// as JSON and pet_ids is denormalised for reservation reconciliation.
type orderRecord struct {
	ID            string         `gorm:"primaryKey;column:id;size:64"`
	OrderNumber   string         `gorm:"column:order_number;size:32;uniqueIndex"`
	CustomerID    string         `gorm:"column:customer_id;size:64;index"`
	CustomerName  string         `gorm:"column:customer_name"`
	CustomerEmail string         `gorm:"column:customer_email"`
	CustomerPhone string         `gorm:"column:customer_phone"`
	Items         []itemRecord   `gorm:"column:items;type:jsonb;serializer:json"`
	PetIDs        pq.StringArray `gorm:"column:pet_ids;type:text[]"`
	Total         float64        `gorm:"column:total"`
	Status        string         `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus string         `gorm:"column:payment_status;type:varchar(32);index"`
	PaymentMethod string         `gorm:"column:payment_method;type:varchar(32)"`
	Version       int64          `gorm:"column:version;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

type itemRecord struct {
	PetID string  `json:"petId"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

func (orderRecord) TableName() string { return "orders" }

// Create inserts a new order. A clash on order_number maps to ErrDuplicateOrderNumber.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if record.Version == 0 {
		record.Version = 1
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateOrderNumber
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update writes mutable fields when the stored version matches, bumping it by one.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(map[string]any{
			"status":         string(order.Status),
			"payment_status": string(order.PaymentStatus),
			"payment_method": string(order.PaymentMethod),
			"version":        gorm.Expr("version + 1"),
			"updated_at":     order.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, order.ID); err != nil {
			return nil, err
		}
		return nil, ports.ErrConcurrentUpdate
	}
	return r.GetByID(ctx, order.ID)
}

// List returns a newest-first page of orders matching the filter.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) (pagination.Page[*domain.Order], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	req := filter.Request.Normalize()
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", string(*filter.PaymentStatus))
	}
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	var records []orderRecord
	if err := query.
		Order("created_at DESC").
		Order("order_number DESC").
		Offset(req.Offset()).
		Limit(req.PageSize).
		Find(&records).Error; err != nil {
		return pagination.Page[*domain.Order]{}, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return pagination.NewPage(orders, total, req), nil
}

// SumRevenue totals non-cancelled orders inside the window.
func (r *Repository) SumRevenue(ctx context.Context, window ports.RevenueWindow) (float64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	query := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Select("COALESCE(SUM(total), 0)").
		Where("status <> ?", string(domain.StatusCancelled))
	if !window.From.IsZero() {
		query = query.Where("created_at >= ?", window.From)
	}
	if !window.To.IsZero() {
		query = query.Where("created_at < ?", window.To)
	}
	var sum float64
	if err := query.Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

func (r *Repository) CountByStatus(ctx context.Context) (map[domain.Status]int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[domain.Status]int64, len(rows))
	for _, row := range rows {
		counts[domain.Status(row.Status)] = row.Count
	}
	return counts, nil
}

// ActivePetIDs reports which of petIDs appear on a non-cancelled order.
func (r *Repository) ActivePetIDs(ctx context.Context, petIDs []string) (map[string]bool, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	active := map[string]bool{}
	if len(petIDs) == 0 {
		return active, nil
	}
	var held []string
	if err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT unnest(pet_ids) FROM orders WHERE status <> ? AND pet_ids && ?`,
			string(domain.StatusCancelled), pq.StringArray(petIDs)).
		Scan(&held).Error; err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(petIDs))
	for _, id := range petIDs {
		wanted[id] = struct{}{}
	}
	for _, id := range held {
		if _, ok := wanted[id]; ok {
			active[id] = true
		}
	}
	return active, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemRecord{PetID: item.PetID, Name: item.Name, Price: item.Price, Image: item.Image})
	}
	return orderRecord{
		ID:            order.ID,
		OrderNumber:   order.Number.String(),
		CustomerID:    order.Customer.ID,
		CustomerName:  strings.TrimSpace(order.Customer.Name),
		CustomerEmail: strings.TrimSpace(order.Customer.Email),
		CustomerPhone: order.Customer.Phone,
		Items:         items,
		PetIDs:        pq.StringArray(order.PetIDs()),
		Total:         order.Total,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: string(order.PaymentMethod),
		Version:       order.Version,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.Item, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.Item{PetID: item.PetID, Name: item.Name, Price: item.Price, Image: item.Image})
	}
	return &domain.Order{
		ID:     r.ID,
		Number: domain.OrderNumber(r.OrderNumber),
		Customer: domain.Customer{
			ID:    r.CustomerID,
			Name:  r.CustomerName,
			Email: r.CustomerEmail,
			Phone: r.CustomerPhone,
		},
		Items:         items,
		Total:         r.Total,
		Status:        domain.Status(r.Status),
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
