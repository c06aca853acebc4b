package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rmsbilling/internal/api"
	"rmsbilling/internal/logger"
	"rmsbilling/pkg/models"
)

// ReferenceData is the lookup data the billing forms depend on. Each set
// carries its own error so a single failed fetch renders that set as
// unavailable without hiding the others.
type ReferenceData struct {
	Customers    []models.Customer
	ServiceTypes []models.ServiceType
	ClientTypes  []models.ClientType

	CustomersErr    error
	ServiceTypesErr error
	ClientTypesErr  error
}

// Available reports whether every set loaded successfully.
func (d *ReferenceData) Available() bool {
	return d.CustomersErr == nil && d.ServiceTypesErr == nil && d.ClientTypesErr == nil
}

// ReferenceLoader fetches reference data with last-request-wins semantics.
// Each Load is stamped with a token; when a newer Load starts before an
// older one finishes, the older one returns ErrStaleLoad and its results
// are discarded rather than overwriting fresher data.
type ReferenceLoader struct {
	api *api.Client
	log zerolog.Logger

	mu      sync.Mutex
	current string
}

// NewReferenceLoader creates a ReferenceLoader.
func NewReferenceLoader(client *api.Client) *ReferenceLoader {
	return &ReferenceLoader{
		api: client,
		log: logger.WithComponent("reference-loader"),
	}
}

// Load fetches customers, service types, and client types concurrently.
func (l *ReferenceLoader) Load(ctx context.Context) (*ReferenceData, error) {
	token := uuid.New().String()
	l.mu.Lock()
	l.current = token
	l.mu.Unlock()

	reqLog := logger.WithRequestID(token)
	reqLog.Debug().Msg("Loading reference data")

	data := &ReferenceData{}
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		data.Customers, data.CustomersErr = l.api.Customers(ctx)
	}()
	go func() {
		defer wg.Done()
		data.ServiceTypes, data.ServiceTypesErr = l.api.ServiceTypes(ctx)
	}()
	go func() {
		defer wg.Done()
		data.ClientTypes, data.ClientTypesErr = l.api.ClientTypes(ctx)
	}()
	wg.Wait()

	l.mu.Lock()
	stale := l.current != token
	l.mu.Unlock()
	if stale {
		reqLog.Debug().Msg("Discarding superseded reference data load")
		return nil, ErrStaleLoad
	}

	if data.CustomersErr != nil {
		reqLog.Warn().Err(data.CustomersErr).Msg("Customers unavailable")
	}
	if data.ServiceTypesErr != nil {
		reqLog.Warn().Err(data.ServiceTypesErr).Msg("Service types unavailable")
	}
	if data.ClientTypesErr != nil {
		reqLog.Warn().Err(data.ClientTypesErr).Msg("Client types unavailable")
	}
	return data, nil
}
