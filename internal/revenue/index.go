package revenue

import "rentdesk/internal/core"

// Index resolves tenants and properties by ID. When IDs repeat, the first
// occurrence wins, matching a linear find over the slice.
type Index struct {
	tenants    map[string]core.Tenant
	properties map[string]core.Property
}

// NewIndex builds an Index over the given reference data. Either slice may be
// nil.
func NewIndex(tenants []core.Tenant, properties []core.Property) Index {
	idx := Index{
		tenants:    make(map[string]core.Tenant, len(tenants)),
		properties: make(map[string]core.Property, len(properties)),
	}
	for _, t := range tenants {
		if _, ok := idx.tenants[t.ID]; !ok {
			idx.tenants[t.ID] = t
		}
	}
	for _, p := range properties {
		if _, ok := idx.properties[p.ID]; !ok {
			idx.properties[p.ID] = p
		}
	}
	return idx
}

func (i Index) Tenant(id string) (core.Tenant, bool) {
	t, ok := i.tenants[id]
	return t, ok
}

func (i Index) Property(id string) (core.Property, bool) {
	p, ok := i.properties[id]
	return p, ok
}

// PropertyOf resolves the property ID a payment belongs to through its tenant.
func (i Index) PropertyOf(p core.Payment) (string, bool) {
	t, ok := i.tenants[p.TenantID]
	if !ok {
		return "", false
	}
	return t.PropertyID, true
}
