package clients

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	dmodels "fundflow/internal/donations/models"
	"fundflow/pkg/platform/sentinel"
)

// Donations calls the donations service. Its bulk sum endpoint is the
// critical dependency of project view composition; failures surface as
// sentinel.ErrUnavailable so callers can map them to an upstream error.
type Donations struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewDonations(baseURL string) *Donations {
	return &Donations{
		baseURL: baseURL,
		http:    newHTTPClient(),
		tracer:  otel.Tracer("clients/donations"),
	}
}

type summedRequest struct {
	ProjectIDs []string `json:"projectIds,omitempty"`
}

func (c *Donations) SummedByProject(ctx context.Context, projectIDs []string) ([]dmodels.ProjectSum, error) {
	ctx, span := c.tracer.Start(ctx, "donations.SummedByProject")
	defer span.End()

	req, err := newRequest(ctx, http.MethodPost, c.baseURL+"/summed/projects", summedRequest{ProjectIDs: projectIDs})
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call donations service: %w", sentinel.ErrUnavailable)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("donations service returned %d: %w", res.StatusCode, sentinel.ErrUnavailable)
	}

	var sums []dmodels.ProjectSum
	if err := decodeBody(res, &sums); err != nil {
		return nil, fmt.Errorf("donations response: %w", sentinel.ErrUnavailable)
	}
	return sums, nil
}
