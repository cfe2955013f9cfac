package factory

import (
	"github.com/broodlabs/libbrood-go/chain"
	"github.com/broodlabs/libbrood-go/registry"
	"github.com/broodlabs/libbrood-go/viewkey"
)

func pageFrom(start, size *uint64) registry.Page {
	p := registry.DefaultPage()
	if start != nil {
		p.Start = *start
	}
	if size != nil {
		p.Size = *size
	}
	return p
}

func entries(recs []registry.Record) []OffspringEntry {
	out := make([]OffspringEntry, 0, len(recs))
	for _, r := range recs {
		out = append(out, OffspringEntry{Address: r.Address, Label: r.Label})
	}
	return out
}

// listActive pages the active registry in insertion order and reports
// the total active count alongside.
func (f *Factory) listActive(deps *chain.Deps, q *ListActiveQuery) ([]byte, error) {
	recs, err := registry.PageActive(deps.Store, pageFrom(q.StartPage, q.PageSize))
	if err != nil {
		return nil, err
	}
	count, err := registry.ActiveCount(deps.Store)
	if err != nil {
		return nil, err
	}
	return queryData(QueryAnswer{ListActive: &ActiveListing{
		Count:     count,
		Offspring: entries(recs),
	}})
}

// listInactive pages the inactive registry, most recently deactivated
// first.
func (f *Factory) listInactive(deps *chain.Deps, q *ListInactiveQuery) ([]byte, error) {
	recs, err := registry.PageInactive(deps.Store, pageFrom(q.StartPage, q.PageSize))
	if err != nil {
		return nil, err
	}
	return queryData(QueryAnswer{ListInactive: &InactiveListing{
		Offspring: entries(recs),
	}})
}

// listMine pages one owner's records. The viewing key is validated
// before touching the registry: a caller with a wrong key gets an
// authorization error, never a misleading empty list.
func (f *Factory) listMine(deps *chain.Deps, q *ListMineQuery) ([]byte, error) {
	filter := registry.FilterAll
	if q.Filter != nil {
		var err error
		if filter, err = registry.ParseFilter(*q.Filter); err != nil {
			return nil, err
		}
	}

	ok, err := viewkey.Validate(deps.Store, q.Address, viewkey.Key(q.ViewingKey))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCredentialMismatch
	}

	listing, err := registry.PageOwned(deps.Store, q.Address, filter, pageFrom(q.StartPage, q.PageSize))
	if err != nil {
		return nil, err
	}

	mine := MineListing{}
	if listing.Active != nil {
		branch := entries(listing.Active)
		mine.Active = &branch
	}
	if listing.Inactive != nil {
		branch := entries(listing.Inactive)
		mine.Inactive = &branch
	}
	return queryData(QueryAnswer{ListMine: &mine})
}

// isKeyValid answers a credential check. A mismatch is a false answer,
// not an error, so offspring can delegate authorization here without
// special-casing failures.
func (f *Factory) isKeyValid(deps *chain.Deps, q *IsKeyValidQuery) ([]byte, error) {
	ok, err := viewkey.Validate(deps.Store, q.Address, viewkey.Key(q.ViewingKey))
	if err != nil {
		return nil, err
	}
	return queryData(QueryAnswer{IsKeyValid: &KeyValidAnswer{IsValid: ok}})
}
