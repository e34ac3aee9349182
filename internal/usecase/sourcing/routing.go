package sourcing

import (
	"path"
	"strings"

	"partsource/internal/domain/part"
	"partsource/internal/domain/quote"
)

// RoutingRule maps requirements to the vendors worth asking. Rules are
// evaluated in order, first match wins; a requirement matching no rule goes
// to every configured vendor.
type RoutingRule struct {
	// CategoryPattern is a glob matched against the requirement category,
	// e.g. "body", "glass", "*".
	CategoryPattern string
	// BrandPreference narrows the rule to requirements mandating that
	// provenance, e.g. an OEM-only rule for insurer-directed repairs.
	// Empty matches any requirement.
	BrandPreference quote.BrandType
	VendorIDs       []string
}

// EligibleVendorIDs resolves the routing table for one requirement. The
// second return is false when no rule matched.
func EligibleVendorIDs(rules []RoutingRule, req part.Requirement) ([]string, bool) {
	category := strings.ToLower(string(req.Category))
	for _, rule := range rules {
		pattern := strings.ToLower(rule.CategoryPattern)
		if pattern == "" {
			pattern = "*"
		}
		matched, err := path.Match(pattern, category)
		if err != nil || !matched {
			continue
		}
		if rule.BrandPreference != "" && rule.BrandPreference != req.BrandPreference {
			continue
		}
		return rule.VendorIDs, true
	}
	return nil, false
}
