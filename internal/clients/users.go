package clients

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"fundflow/pkg/platform/sentinel"
)

// Users calls the users service on behalf of the gateway: credential lookup
// for basic login and provisioning for externally authenticated identities.
type Users struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewUsers(baseURL string) *Users {
	return &Users{
		baseURL: baseURL,
		http:    newHTTPClient(),
		tracer:  otel.Tracer("clients/users"),
	}
}

// Credentials is the users service's find-by-email response.
type Credentials struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role"`
	AuthType     string `json:"authType"`
	UserID       string `json:"userId"`
}

func (c *Users) FindByEmail(ctx context.Context, email string) (*Credentials, error) {
	ctx, span := c.tracer.Start(ctx, "users.FindByEmail")
	defer span.End()

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+"/find-by-email", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call users service: %w", sentinel.ErrUnavailable)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil, sentinel.ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("users service returned %d: %w", res.StatusCode, sentinel.ErrUnavailable)
	}

	var creds Credentials
	if err := decodeBody(res, &creds); err != nil {
		return nil, fmt.Errorf("users response: %w", sentinel.ErrUnavailable)
	}
	return &creds, nil
}

// ProvisionedUser is the users service's create-google response.
type ProvisionedUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateGoogle provisions a user for an external identity. The second return
// reports whether this call created the record.
func (c *Users) CreateGoogle(ctx context.Context, email, name string) (*ProvisionedUser, bool, error) {
	ctx, span := c.tracer.Start(ctx, "users.CreateGoogle")
	defer span.End()

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+"/create-google", map[string]string{
		"email": email,
		"name":  name,
	})
	if err != nil {
		return nil, false, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("call users service: %w", sentinel.ErrUnavailable)
	}
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		res.Body.Close()
		return nil, false, fmt.Errorf("users service returned %d: %w", res.StatusCode, sentinel.ErrUnavailable)
	}

	var u ProvisionedUser
	if err := decodeBody(res, &u); err != nil {
		return nil, false, fmt.Errorf("users response: %w", sentinel.ErrUnavailable)
	}
	return &u, res.StatusCode == http.StatusCreated, nil
}
