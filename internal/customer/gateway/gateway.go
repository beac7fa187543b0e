// Package gateway talks to the external customer API. The Gateway interface is
// the contract the registry flows depend on; HTTPClient implements it against
// a json-server style REST collection.
package gateway

import (
	"context"
	"net/http"

	"github.com/pk-mender/desafiojr/internal/customer/models"
	id "github.com/pk-mender/desafiojr/pkg/domain"
)

//go:generate mockgen -source=gateway.go -destination=mocks/mocks.go -package=mocks Gateway,HTTPDoer

// Gateway is the record store contract. Every method fails with a
// *GatewayError; nothing is retried.
type Gateway interface {
	// List returns one page of records matching q and the total match count.
	List(ctx context.Context, q models.Query) (models.Page, error)
	// FindByCPF returns every record whose CPF has the same 11 digits as cpf,
	// formatting ignored.
	FindByCPF(ctx context.Context, cpf string) ([]models.Customer, error)
	// Get fails with ErrorNotFound when the id does not resolve.
	Get(ctx context.Context, customerID id.CustomerID) (models.Customer, error)
	// Create returns the record with its assigned id.
	Create(ctx context.Context, c models.Customer) (models.Customer, error)
	// Update applies c to the record with c.ID.
	Update(ctx context.Context, c models.Customer) (models.Customer, error)
	Remove(ctx context.Context, customerID id.CustomerID) error
	// Ping checks the API is reachable.
	Ping(ctx context.Context) error
}

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
