package clients

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"fundflow/pkg/platform/sentinel"
)

// Categories resolves category ids to names via the categories service.
type Categories struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewCategories(baseURL string) *Categories {
	return &Categories{
		baseURL: baseURL,
		http:    newHTTPClient(),
		tracer:  otel.Tracer("clients/categories"),
	}
}

type categoryResponse struct {
	Name string `json:"name"`
}

func (c *Categories) CategoryName(ctx context.Context, categoryID string) (string, error) {
	ctx, span := c.tracer.Start(ctx, "categories.CategoryName")
	defer span.End()

	req, err := newRequest(ctx, http.MethodGet, c.baseURL+"/"+categoryID, nil)
	if err != nil {
		return "", err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call categories service: %w", sentinel.ErrUnavailable)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return "", sentinel.ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return "", fmt.Errorf("categories service returned %d: %w", res.StatusCode, sentinel.ErrUnavailable)
	}

	var body categoryResponse
	if err := decodeBody(res, &body); err != nil {
		return "", fmt.Errorf("categories response: %w", sentinel.ErrUnavailable)
	}
	return body.Name, nil
}
