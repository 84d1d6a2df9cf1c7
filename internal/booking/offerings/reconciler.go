// Package offerings keeps a booking's add-on selections consistent with
// the catalog's mandatory offerings and the active package's bundle.
//
// Every operation is total: unknown ids are ignored and rejected changes
// are silent no-ops. Each mutator reports whether the selection map changed.
package offerings

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Offering is the catalog reference for a selectable add-on.
type Offering struct {
	ID          uuid.UUID
	Name        string
	UnitPrice   decimal.Decimal
	Mandatory   bool
	MaxQuantity *int
}

// Selection is the user's choice for one offering.
type Selection struct {
	OfferingID uuid.UUID
	Quantity   int
	Included   bool
}

// Line joins a selection with its catalog entry.
type Line struct {
	Offering Offering
	Quantity int
	Included bool
}

type idSet map[uuid.UUID]struct{}

func newIDSet(ids []uuid.UUID) idSet {
	s := make(idSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s idSet) has(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// Reconciler owns the selection map of one form session.
type Reconciler struct {
	catalog    map[uuid.UUID]Offering
	selections map[uuid.UUID]Selection
	mandatory  idSet
	included   idSet
}

// NewReconciler starts with an empty selection map over catalog. The
// mandatory set is not applied until ReconcileMandatory is called.
func NewReconciler(catalog []Offering) *Reconciler {
	byID := make(map[uuid.UUID]Offering, len(catalog))
	for _, o := range catalog {
		byID[o.ID] = o
	}
	return &Reconciler{
		catalog:    byID,
		selections: make(map[uuid.UUID]Selection),
		mandatory:  idSet{},
		included:   idSet{},
	}
}

// Toggle selects or deselects an offering. Deselecting a mandatory or
// package-included offering is rejected. Selecting an already selected
// offering keeps its quantity.
func (r *Reconciler) Toggle(id uuid.UUID, selected bool) bool {
	_, exists := r.selections[id]

	if !selected {
		if !exists || r.mandatory.has(id) || r.included.has(id) {
			return false
		}
		delete(r.selections, id)
		return true
	}

	if exists {
		return false
	}
	if _, known := r.catalog[id]; !known {
		return false
	}
	r.selections[id] = Selection{OfferingID: id, Quantity: 1, Included: r.included.has(id)}
	return true
}

// SetQuantity replaces the quantity of an existing selection. Negative
// quantities are ignored and mandatory offerings never drop below one.
func (r *Reconciler) SetQuantity(id uuid.UUID, quantity int) bool {
	sel, ok := r.selections[id]
	if !ok || quantity < 0 {
		return false
	}
	if r.mandatory.has(id) && quantity < 1 {
		quantity = 1
	}
	if sel.Quantity == quantity {
		return false
	}
	sel.Quantity = quantity
	r.selections[id] = sel
	return true
}

// ReconcileMandatory replaces the mandatory set and inserts a single unit
// of every mandatory offering that is not yet selected. Existing
// selections are never removed, even when they leave the mandatory set.
func (r *Reconciler) ReconcileMandatory(ids []uuid.UUID) bool {
	r.mandatory = newIDSet(ids)

	changed := false
	for _, id := range ids {
		if _, known := r.catalog[id]; !known {
			continue
		}
		sel, ok := r.selections[id]
		if !ok {
			r.selections[id] = Selection{OfferingID: id, Quantity: 1, Included: r.included.has(id)}
			changed = true
			continue
		}
		if sel.Quantity < 1 {
			sel.Quantity = 1
			r.selections[id] = sel
			changed = true
		}
	}
	return changed
}

// ReconcilePackageInclusion recomputes inclusion from the live package.
// Bundled offerings are selected with at least one unit and marked
// included; previously included offerings outside ids become billable.
// Pass nil when no package is selected.
func (r *Reconciler) ReconcilePackageInclusion(ids []uuid.UUID) bool {
	r.included = newIDSet(ids)

	changed := false
	for _, id := range ids {
		if _, known := r.catalog[id]; !known {
			continue
		}
		sel, ok := r.selections[id]
		next := Selection{OfferingID: id, Quantity: 1, Included: true}
		if ok && sel.Quantity > 1 {
			next.Quantity = sel.Quantity
		}
		if !ok || sel != next {
			r.selections[id] = next
			changed = true
		}
	}

	for id, sel := range r.selections {
		if sel.Included && !r.included.has(id) {
			sel.Included = false
			r.selections[id] = sel
			changed = true
		}
	}
	return changed
}

// Get returns the selection for id.
func (r *Reconciler) Get(id uuid.UUID) (Selection, bool) {
	sel, ok := r.selections[id]
	return sel, ok
}

// IsMandatory reports whether id is in the current mandatory set.
func (r *Reconciler) IsMandatory(id uuid.UUID) bool {
	return r.mandatory.has(id)
}

// Selections returns a copy of the selection map.
func (r *Reconciler) Selections() map[uuid.UUID]Selection {
	out := make(map[uuid.UUID]Selection, len(r.selections))
	for id, sel := range r.selections {
		out[id] = sel
	}
	return out
}

// Sorted returns the display view: included offerings first, then by name.
func (r *Reconciler) Sorted() []Line {
	lines := make([]Line, 0, len(r.selections))
	for id, sel := range r.selections {
		lines = append(lines, Line{Offering: r.catalog[id], Quantity: sel.Quantity, Included: sel.Included})
	}
	sort.Slice(lines, func(i, j int) bool {
		a, b := lines[i], lines[j]
		if a.Included != b.Included {
			return a.Included
		}
		an, bn := strings.ToLower(a.Offering.Name), strings.ToLower(b.Offering.Name)
		if an != bn {
			return an < bn
		}
		return a.Offering.ID.String() < b.Offering.ID.String()
	})
	return lines
}
