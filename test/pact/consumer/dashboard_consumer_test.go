//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/petshop-orders-api/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type orderPayload struct {
	ID            string  `json:"_id"`
	OrderNumber   string  `json:"orderNumber"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"paymentStatus"`
}

type loginPayload struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"_id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

type problemDetail struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail"`
	PetIDs []string `json:"petIds"`
}

type apiError struct {
	status  int
	problem problemDetail
}

func (e apiError) Error() string {
	msg := e.problem.Title
	if msg == "" {
		msg = "api error"
	}
	if e.problem.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.problem.Detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func TestDashboardContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	orderBody := matchers.Map{
		"_id":           matchers.Like("8f14e45f-ceea-4671-9a1b-6f4c2c0c3f21"),
		"orderNumber":   matchers.Term("ORD-202406-001", `^ORD-\d{6}-\d{3,}$`),
		"total":         matchers.Like(9000000),
		"status":        matchers.S("pending"),
		"paymentStatus": matchers.S("unpaid"),
		"paymentMethod": matchers.S("cash"),
		"items":         matchers.EachLike(matchers.Map{"petId": matchers.Like(pacttest.AvailablePetID)}, 1),
	}

	pact.AddInteraction().
		Given(pacttest.StatePetsAvailable).
		UponReceiving("a checkout for available pets").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleOrderRequest())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(orderBody)
		})

	pact.AddInteraction().
		Given(pacttest.StatePetReserved).
		UponReceiving("a checkout for a pet another order holds").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleHeldPetRequest())
		}).
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/conflict"),
				"title":  matchers.S("Conflict"),
				"status": matchers.Like(http.StatusConflict),
				"petIds": matchers.EachLike(pacttest.AvailablePetID, 1),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateAdminExists).
		UponReceiving("an admin login").
		WithRequest("POST", "/api/auth/login", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(map[string]any{"email": pacttest.AdminEmail, "password": pacttest.AdminPassword})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"token": matchers.Like("eyJhbGciOiJIUzI1NiJ9.e30.signature"),
				"user": matchers.Map{
					"_id":   matchers.Like("5a1d7c1e-0000-4000-8000-000000000001"),
					"email": matchers.S(pacttest.AdminEmail),
					"role":  matchers.S("admin"),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateOrdersBase).
		UponReceiving("an order list request without a token").
		WithRequest("GET", "/api/orders").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/unauthorized"),
				"title":  matchers.S("Unauthorized"),
				"status": matchers.Like(http.StatusUnauthorized),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newOrdersClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.CreateOrder(ctx, pacttest.ExampleOrderRequest())
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if created.ID == "" || created.OrderNumber == "" {
			return fmt.Errorf("expected created order to carry id and number, got %+v", created)
		}

		var conflict apiError
		if _, err := client.CreateOrder(ctx, pacttest.ExampleHeldPetRequest()); !errors.As(err, &conflict) || conflict.status != http.StatusConflict {
			return fmt.Errorf("expected 409 for a held pet, got %v", err)
		}
		if len(conflict.problem.PetIDs) == 0 {
			return fmt.Errorf("expected conflict to name the held pets")
		}

		session, err := client.Login(ctx, pacttest.AdminEmail, pacttest.AdminPassword)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		if session.Token == "" || session.User.Role != "admin" {
			return fmt.Errorf("expected admin session, got %+v", session)
		}

		var unauthorized apiError
		if err := client.ListOrders(ctx, ""); !errors.As(err, &unauthorized) || unauthorized.status != http.StatusUnauthorized {
			return fmt.Errorf("expected 401 without token, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type ordersClient struct {
	baseURL    string
	httpClient *http.Client
}

func newOrdersClient(config pactconsumer.MockServerConfig) *ordersClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &ordersClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *ordersClient) CreateOrder(ctx context.Context, body map[string]any) (*orderPayload, error) {
	var payload orderPayload
	if err := c.do(ctx, http.MethodPost, "/api/orders", "", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *ordersClient) Login(ctx context.Context, email, password string) (*loginPayload, error) {
	var payload loginPayload
	body := map[string]any{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *ordersClient) ListOrders(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodGet, "/api/orders", token, nil, nil)
}

func (c *ordersClient) do(ctx context.Context, method, path, token string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, problem: problem}
}
