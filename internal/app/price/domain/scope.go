package domain

import (
	"fmt"
	"strings"
)

// ScopeKind discriminates the two disjoint price partitions of a product.
type ScopeKind int

const (
	// ScopeGeneric is the catalog-wide price of a product.
	ScopeGeneric ScopeKind = iota
	// ScopeOrganization is an organization-specific override.
	ScopeOrganization
)

const (
	genericScopeKey   = "generic"
	orgScopeKeyPrefix = "org:"
)

// Scope identifies one independent price timeline.
// The zero value is invalid; use GenericScope or OrganizationScope.
type Scope struct {
	kind           ScopeKind
	productID      string
	organizationID string
}

// GenericScope returns the catalog-wide scope of a product.
func GenericScope(productID string) Scope {
	return Scope{kind: ScopeGeneric, productID: productID}
}

// OrganizationScope returns the organization-specific scope of a product.
func OrganizationScope(productID, organizationID string) Scope {
	return Scope{kind: ScopeOrganization, productID: productID, organizationID: organizationID}
}

// NewScope builds a scope from an optional organization id, the shape callers
// and the database use. An empty organization id is treated as absent.
func NewScope(productID string, organizationID *string) (Scope, error) {
	var s Scope
	if organizationID == nil || strings.TrimSpace(*organizationID) == "" {
		s = GenericScope(strings.TrimSpace(productID))
	} else {
		s = OrganizationScope(strings.TrimSpace(productID), strings.TrimSpace(*organizationID))
	}
	if err := s.Validate(); err != nil {
		return Scope{}, err
	}
	return s, nil
}

// Validate reports whether the scope identifies a product.
func (s Scope) Validate() error {
	if s.productID == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidScope)
	}
	if s.kind == ScopeOrganization && s.organizationID == "" {
		return fmt.Errorf("%w: organization id is required for an organization scope", ErrInvalidScope)
	}
	return nil
}

func (s Scope) Kind() ScopeKind   { return s.kind }
func (s Scope) ProductID() string { return s.productID }

// OrganizationID returns the organization id and true for organization scopes.
func (s Scope) OrganizationID() (string, bool) {
	if s.kind != ScopeOrganization {
		return "", false
	}
	return s.organizationID, true
}

// OrganizationIDPtr returns nil for the generic scope.
func (s Scope) OrganizationIDPtr() *string {
	if s.kind != ScopeOrganization {
		return nil
	}
	id := s.organizationID
	return &id
}

// Key is the stable partition key persisted next to product_id.
func (s Scope) Key() string {
	if s.kind == ScopeOrganization {
		return orgScopeKeyPrefix + s.organizationID
	}
	return genericScopeKey
}

// ScopeFromKey rebuilds a scope from its persisted form.
func ScopeFromKey(productID, key string) (Scope, error) {
	switch {
	case key == genericScopeKey:
		return GenericScope(productID), nil
	case strings.HasPrefix(key, orgScopeKeyPrefix):
		return OrganizationScope(productID, strings.TrimPrefix(key, orgScopeKeyPrefix)), nil
	default:
		return Scope{}, fmt.Errorf("%w: unknown scope key %q", ErrInvalidScope, key)
	}
}

// Equal reports whether two scopes name the same timeline.
func (s Scope) Equal(other Scope) bool {
	return s.kind == other.kind && s.productID == other.productID && s.organizationID == other.organizationID
}

func (s Scope) String() string {
	return s.productID + "/" + s.Key()
}
