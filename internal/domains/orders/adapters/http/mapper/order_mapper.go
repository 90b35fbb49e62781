package mapper

import (
	"time"

	"github.com/Apurer/petshop-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/petshop-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/petshop-orders-api/internal/shared/pagination"
)

// Customer is the buyer snapshot carried on an order payload.
type Customer struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Item struct {
	PetID string  `json:"petId"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Customer      Customer `json:"customer"`
	Items         []Item   `json:"items"`
	Total         float64  `json:"total"`
	PaymentMethod string   `json:"paymentMethod,omitempty"`
	PaymentStatus string   `json:"paymentStatus,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdatePaymentRequest patches whichever payment fields are present.
type UpdatePaymentRequest struct {
	PaymentStatus *string `json:"paymentStatus,omitempty"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// Order is the transport representation of an order.
type Order struct {
	ID            string    `json:"_id"`
	OrderNumber   string    `json:"orderNumber"`
	Customer      Customer  `json:"customer"`
	Items         []Item    `json:"items"`
	Total         float64   `json:"total"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	PaymentMethod string    `json:"paymentMethod"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OrderList is the paged list payload.
type OrderList struct {
	Orders      []Order `json:"orders"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Total       int64   `json:"total"`
}

type MonthlySales struct {
	Month int     `json:"month"`
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type RevenueChange struct {
	Current          float64 `json:"current"`
	Previous         float64 `json:"previous"`
	ChangePercentage float64 `json:"changePercentage"`
	PreviousWasZero  bool    `json:"previousWasZero"`
}

// Revenue is the payload of GET /api/orders/revenue.
type Revenue struct {
	Year           int            `json:"year"`
	Months         []MonthlySales `json:"months"`
	Total          float64        `json:"total"`
	MonthOverMonth RevenueChange  `json:"monthOverMonth"`
}

type Stats struct {
	TotalOrders    int64            `json:"totalOrders"`
	ByStatus       map[string]int64 `json:"byStatus"`
	TotalRevenue   float64          `json:"totalRevenue"`
	MonthOverMonth RevenueChange    `json:"monthOverMonth"`
}

// ToCreateOrderInput converts the request body into the service command.
// The idempotency key travels in a header and is set by the caller.
func ToCreateOrderInput(req CreateOrderRequest) ports.CreateOrderInput {
	items := make([]domain.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.Item{PetID: item.PetID, Name: item.Name, Price: item.Price, Image: item.Image})
	}
	return ports.CreateOrderInput{
		Customer: domain.Customer{
			ID:    req.Customer.ID,
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items:         items,
		Total:         req.Total,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		PaymentStatus: domain.PaymentStatus(req.PaymentStatus),
	}
}

func ToUpdatePaymentInput(req UpdatePaymentRequest) ports.UpdatePaymentInput {
	var input ports.UpdatePaymentInput
	if req.PaymentStatus != nil && *req.PaymentStatus != "" {
		status := domain.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &status
	}
	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		method := domain.PaymentMethod(*req.PaymentMethod)
		input.PaymentMethod = &method
	}
	return input
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, Item{PetID: item.PetID, Name: item.Name, Price: item.Price, Image: item.Image})
	}
	return Order{
		ID:          order.ID,
		OrderNumber: order.Number.String(),
		Customer: Customer{
			ID:    order.Customer.ID,
			Name:  order.Customer.Name,
			Email: order.Customer.Email,
			Phone: order.Customer.Phone,
		},
		Items:         items,
		Total:         order.Total,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		PaymentMethod: string(order.PaymentMethod),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func FromOrderPage(page pagination.Page[*domain.Order]) OrderList {
	mapped := pagination.Map(page, FromDomainOrder)
	return OrderList{
		Orders:      mapped.Items,
		TotalPages:  mapped.TotalPages,
		CurrentPage: mapped.Page,
		Total:       mapped.Total,
	}
}

func FromRevenueChange(change domain.RevenueChange) RevenueChange {
	return RevenueChange{
		Current:          change.Current,
		Previous:         change.Previous,
		ChangePercentage: change.ChangePercentage,
		PreviousWasZero:  change.PreviousWasZero,
	}
}

// FromRevenue builds the revenue payload; total is the sum of the twelve months.
func FromRevenue(year int, months []domain.MonthlyRevenue, change domain.RevenueChange) Revenue {
	out := Revenue{Year: year, Months: make([]MonthlySales, 0, len(months)), MonthOverMonth: FromRevenueChange(change)}
	for _, m := range months {
		out.Months = append(out.Months, MonthlySales{Month: int(m.Month), Name: m.Month.String(), Sales: m.Sales})
		out.Total += m.Sales
	}
	return out
}

func FromStats(stats domain.OrderStats) Stats {
	byStatus := make(map[string]int64, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		byStatus[string(status)] = stats.ByStatus[status]
	}
	return Stats{
		TotalOrders:    stats.Total,
		ByStatus:       byStatus,
		TotalRevenue:   stats.Revenue,
		MonthOverMonth: FromRevenueChange(stats.Change),
	}
}
