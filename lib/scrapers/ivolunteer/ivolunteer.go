// Package ivolunteer is a client for the volunteer signup
// portal's JSON API. Rows come back raw, key renaming and type
// normalization are the caller's job.
package ivolunteer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

type Client struct {
	Http *resty.Client
}

type ClientOptions struct {
	// organization base url, e.g. https://the-haunt.ivolunteer.com
	BaseUrl string
	ApiKey  string
}

func NewClient(opts ClientOptions) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	client.SetHeader("accept", "application/json")
	client.SetHeader("api-key", opts.ApiKey)
	client.SetTimeout(time.Second * 30)

	instrumentClient(client)

	return &Client{Http: client}
}

func (c *Client) getRows(ctx context.Context, path string) ([]map[string]any, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() != 200 {
		return nil, fmt.Errorf("%s returned status %d: %s", path, res.StatusCode(), excerpt(res.Body()))
	}

	var rows []map[string]any
	err = json.Unmarshal(res.Body(), &rows)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rows, nil
}

// Participants fetches every participant the portal knows about,
// including their custom field values and group memberships.
func (c *Client) Participants(ctx context.Context) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:Participants")
	defer span.End()

	rows, err := c.getRows(ctx, "/api/v1/db/participants")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch participants")
		return nil, err
	}
	return rows, nil
}

// Events fetches the portal's event listing.
func (c *Client) Events(ctx context.Context) ([]map[string]any, error) {
	ctx, span := tracer.Start(ctx, "client:Events")
	defer span.End()

	rows, err := c.getRows(ctx, "/api/v1/db/events")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch events")
		return nil, err
	}
	return rows, nil
}

func excerpt(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
