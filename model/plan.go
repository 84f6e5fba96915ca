// api/model/plan.go
package model

import (
	"encoding/json"
	"fmt"
)

type LimitKind int

const (
	LimitDisabled LimitKind = iota
	LimitLimited
	LimitUnlimited
)

// ResourceLimit is the closed sum Unlimited | Limited{Max} | Disabled. The
// zero value is Disabled, so a resource absent from a plan's feature map is
// denied without any special casing.
type ResourceLimit struct {
	Kind LimitKind
	Max  uint // meaningful only when Kind == LimitLimited
}

func UnlimitedLimit() ResourceLimit { return ResourceLimit{Kind: LimitUnlimited} }

func LimitedTo(max uint) ResourceLimit { return ResourceLimit{Kind: LimitLimited, Max: max} }

func DisabledLimit() ResourceLimit { return ResourceLimit{Kind: LimitDisabled} }

func (l ResourceLimit) String() string {
	switch l.Kind {
	case LimitUnlimited:
		return "unlimited"
	case LimitLimited:
		return fmt.Sprintf("limited(%d)", l.Max)
	default:
		return "disabled"
	}
}

// ReportFeatures gates the report endpoints by plan tier.
type ReportFeatures struct {
	Basic    bool `json:"basic"`
	Advanced bool `json:"advanced"`
}

type Plan struct {
	ID       string
	Tier     string
	Features map[Resource]ResourceLimit
	Reports  ReportFeatures
}

// Limit returns the plan's limit for a resource. A nil plan or a missing
// entry both resolve to Disabled.
func (p *Plan) Limit(r Resource) ResourceLimit {
	if p == nil {
		return DisabledLimit()
	}
	return p.Features[r]
}

// featureWire is the raw JSON shape stored per plan:
// { "<resource>": {"unlimited":bool,"limited":bool,"max":number}, "reports": {"basic":bool,"advanced":bool} }
type featureWire struct {
	Unlimited bool `json:"unlimited"`
	Limited   bool `json:"limited"`
	Max       uint `json:"max"`
}

// ParsePlanFeatures validates the features blob exactly once, when the plan
// is loaded. Any entry that does not match the expected shape collapses to
// Disabled rather than failing at check time.
func ParsePlanFeatures(raw []byte) (map[Resource]ResourceLimit, ReportFeatures, error) {
	features := make(map[Resource]ResourceLimit, len(GatedResources))
	var reports ReportFeatures
	if len(raw) == 0 {
		return features, reports, nil
	}

	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, reports, fmt.Errorf("failed to parse plan features: %w", err)
	}

	for _, resource := range GatedResources {
		entry, ok := blob[string(resource)]
		if !ok {
			features[resource] = DisabledLimit()
			continue
		}
		var wire featureWire
		if err := json.Unmarshal(entry, &wire); err != nil {
			features[resource] = DisabledLimit()
			continue
		}
		switch {
		case wire.Unlimited:
			features[resource] = UnlimitedLimit()
		case wire.Limited:
			features[resource] = LimitedTo(wire.Max)
		default:
			features[resource] = DisabledLimit()
		}
	}

	if entry, ok := blob["reports"]; ok {
		// Ignore a malformed reports entry; both tiers default to false.
		_ = json.Unmarshal(entry, &reports)
	}

	return features, reports, nil
}
