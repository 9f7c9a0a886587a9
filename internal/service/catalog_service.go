package service

import (
	"context"

	"github.com/spec-kit/helpdesk-service/internal/authz"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// CatalogService serves the lookup tables.
type CatalogService struct {
	catalogs repository.CatalogRepository
	policy   *authz.Policy
}

// NewCatalogService constructs the service.
func NewCatalogService(catalogs repository.CatalogRepository, policy *authz.Policy) *CatalogService {
	return &CatalogService{catalogs: catalogs, policy: policy}
}

// List returns every entry of a catalog in id order.
func (s *CatalogService) List(ctx context.Context, identity domain.Identity, kind domain.CatalogKind) ([]domain.CatalogEntry, error) {
	if err := s.policy.Authorize(identity, authz.ResourceCatalog, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.catalogs.List(ctx, kind)
}

// Roles returns the role catalog.
func (s *CatalogService) Roles(ctx context.Context, identity domain.Identity) ([]domain.Role, error) {
	if err := s.policy.Authorize(identity, authz.ResourceCatalog, authz.ActionRead); err != nil {
		return nil, err
	}
	return s.catalogs.ListRoles(ctx)
}
