// api/model/resource.go
package model

// Resource names the caller-owned collections the governance layer knows
// about. Categories, accounts and credit cards are gated by the plan;
// entries and the user's own profile are always permitted, owner-scoped.
type Resource string

const (
	ResourceCategories  Resource = "categories"
	ResourceAccounts    Resource = "accounts"
	ResourceCreditCards Resource = "creditCards"
	ResourceEntries     Resource = "entries"
)

// GatedResources are the resources whose creation is bounded by the plan.
var GatedResources = []Resource{ResourceCategories, ResourceAccounts, ResourceCreditCards}

func (r Resource) Gated() bool {
	for _, g := range GatedResources {
		if r == g {
			return true
		}
	}
	return false
}
