package ical

import "strings"

// ─────────────────────────────────────────────────────────────────────────────
// Structural export (§6) — a JSON-neutral three-tuple tree
// ─────────────────────────────────────────────────────────────────────────────
//
// ToTuple renders a Component as the nested
//   [lowercase_name, [[prop, params_obj, type, raw_value], ...], [sub, ...]]
// shape: plain []interface{}/map[string]interface{} values that
// encoding/json marshals directly, with no Go-specific types leaking into
// the wire representation.

// ToTuple exports c and its full subtree as the three-element structural
// tuple described in §6.
func (c *Component) ToTuple() []interface{} {
	props := make([]interface{}, 0, len(c.Properties))
	for _, p := range c.Properties {
		props = append(props, propertyTuple(p))
	}
	subs := make([]interface{}, 0, len(c.Components))
	for _, s := range c.Components {
		subs = append(subs, s.ToTuple())
	}
	return []interface{}{strings.ToLower(c.Name), props, subs}
}

// propertyTuple renders a single property as [name, params, type, raw].
// params is a plain map of param name -> value list so it marshals as a
// JSON object without a dedicated wrapper type.
func propertyTuple(p *Property) []interface{} {
	params := make(map[string]interface{}, p.Params.Len())
	for _, name := range p.Params.Names() {
		par, _ := p.Params.Get(name)
		vals := make([]interface{}, len(par.Values))
		for i, v := range par.Values {
			vals[i] = v
		}
		params[name] = vals
	}
	return []interface{}{
		strings.ToLower(p.Name),
		params,
		p.Value.Type.String(),
		p.Value.Raw,
	}
}
