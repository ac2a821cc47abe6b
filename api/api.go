// Package api holds one typed facade per backend resource group. Each method
// maps to exactly one endpoint and never retries.
package api

import (
	"context"
	"net/http"

	"attendly_console/client"
)

// Caller is the part of *client.Client the facades need.
type Caller interface {
	Do(ctx context.Context, req client.Request, out any) error
	Raw(ctx context.Context, req client.Request) (*http.Response, error)
}
