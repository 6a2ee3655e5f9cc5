package conf

import (
	"encoding/json"

	"github.com/goliatone/go-conf/layering"
)

// Trace captures where the effective value of an option came from, listing
// every layer from strongest to weakest.
type Trace struct {
	Group  string          `json:"group"`
	Option string          `json:"option"`
	Source layering.Source `json:"source"`
	Value  any             `json:"value,omitempty"`
	Layers []Provenance    `json:"layers"`
}

// Provenance details how a single layer contributed to a traced option.
type Provenance struct {
	Source layering.Source `json:"source"`
	Value  any             `json:"value,omitempty"`
	Found  bool            `json:"found"`
}

// Trace reports the provenance of name in group. Secret values are masked.
func (r *Registry) Trace(name, group string) (Trace, error) {
	group = normalizeGroup(group)
	r.mu.RLock()
	entry, err := r.lookupLocked(name, group)
	if err != nil {
		r.mu.RUnlock()
		return Trace{}, err
	}
	chain, rule, err := r.chainLocked(entry, group)
	r.mu.RUnlock()
	if err != nil {
		return Trace{}, err
	}
	if err := r.checkFileRule(rule); err != nil {
		return Trace{}, err
	}

	value, source, _ := chain.Lookup(name)
	trace := Trace{
		Group:  groupLabel(group),
		Option: name,
		Source: source,
		Value:  maskValue(entry.opt, layering.Clone(value)),
	}
	for _, hit := range chain.Probe(name) {
		trace.Layers = append(trace.Layers, Provenance{
			Source: hit.Source,
			Value:  maskValue(entry.opt, layering.Clone(hit.Value)),
			Found:  hit.Found,
		})
	}
	return trace, nil
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
