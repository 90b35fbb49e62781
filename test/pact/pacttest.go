//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "petshop-orders-api"
	ConsumerName = "petshop-dashboard"

	StatePetsAvailable = "pets pet-101 and pet-102 are available"
	StatePetReserved   = "pet pet-101 is already reserved"
	StateAdminExists   = "admin account exists"
	StateOrdersBase    = "orders baseline"
)

const (
	AvailablePetID       = "pet-101"
	SecondAvailablePetID = "pet-102"

	AdminEmail    = "pact.admin@example.com"
	AdminPassword = "pact-pass"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dashboard consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderRequest is a checkout for both available pets.
func ExampleOrderRequest() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name":  "Pact Customer",
			"email": "pact.customer@example.com",
			"phone": "+84900000000",
		},
		"items": []map[string]any{
			{"petId": AvailablePetID, "name": "Fluffy", "price": 6000000},
			{"petId": SecondAvailablePetID, "name": "Coco", "price": 3000000},
		},
		"total":         9000000,
		"paymentMethod": "cash",
	}
}

// ExampleHeldPetRequest is a checkout for a single pet that another order holds.
func ExampleHeldPetRequest() map[string]any {
	return map[string]any{
		"customer": map[string]any{
			"name":  "Late Customer",
			"email": "late.customer@example.com",
		},
		"items": []map[string]any{
			{"petId": AvailablePetID, "name": "Fluffy", "price": 6000000},
		},
		"total":         6000000,
		"paymentMethod": "cash",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
