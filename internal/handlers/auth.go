package handlers

import (
	"net/http"

	"github.com/abrezinsky/outletplay/internal/auth"
	"github.com/abrezinsky/outletplay/internal/models"
	"github.com/abrezinsky/outletplay/internal/services"
)

// identity returns the caller set by auth.RequireUser
func identity(r *http.Request) (*models.Identity, error) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		return nil, services.ErrUnauthenticated
	}
	return id, nil
}
