package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&petRecord{},
		&orderRecord{},
		&orderSequenceRecord{},
		&orderIdempotencyRecord{},
		&userRecord{},
	); err != nil {
		return err
	}
	// Reconciliation looks orders up by the pets they hold.
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_orders_pet_ids ON orders USING GIN (pet_ids)`).Error
}

// Pet schema mirrors the pets Postgres adapter.
type petRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:64"`
	Code      string    `gorm:"column:code;size:64"`
	Name      string    `gorm:"column:name"`
	Species   string    `gorm:"column:species;index"`
	Breed     string    `gorm:"column:breed"`
	Price     float64   `gorm:"column:price"`
	ImageURL  string    `gorm:"column:image_url"`
	Available bool      `gorm:"column:available;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

func (petRecord) TableName() string { return "pets" }

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID            string         `gorm:"primaryKey;column:id;size:64"`
	OrderNumber   string         `gorm:"column:order_number;size:32;uniqueIndex"`
	CustomerID    string         `gorm:"column:customer_id;size:64;index"`
	CustomerName  string         `gorm:"column:customer_name"`
	CustomerEmail string         `gorm:"column:customer_email"`
	CustomerPhone string         `gorm:"column:customer_phone"`
	Items         []byte         `gorm:"column:items;type:jsonb"`
	PetIDs        pq.StringArray `gorm:"column:pet_ids;type:text[]"`
	Total         float64        `gorm:"column:total"`
	Status        string         `gorm:"column:status;type:varchar(32);index"`
	PaymentStatus string         `gorm:"column:payment_status;type:varchar(32);index"`
	PaymentMethod string         `gorm:"column:payment_method;type:varchar(32)"`
	Version       int64          `gorm:"column:version;not null"`
	CreatedAt     time.Time      `gorm:"column:created_at;index"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Per-month order number counters.
type orderSequenceRecord struct {
	Period    string    `gorm:"primaryKey;column:period;size:6"`
	LastValue int64     `gorm:"column:last_value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (orderSequenceRecord) TableName() string { return "order_sequences" }

type orderIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	OrderID     string    `gorm:"column:order_id;size:64"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (orderIdempotencyRecord) TableName() string { return "order_idempotency_keys" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           string    `gorm:"primaryKey;column:id;size:64"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role;type:varchar(16)"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }
