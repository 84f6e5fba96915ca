// api/ability/rule.go
package ability

import "github.com/fintrack-app/api/model"

type Effect string

const (
	Allow Effect = "allow"
	Deny  Effect = "deny"
)

type Action string

const (
	ActionManage Action = "manage" // matches any action
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Subject string

const (
	SubjectAll        Subject = "all" // matches any subject
	SubjectUser       Subject = "User"
	SubjectPlan       Subject = "Plan"
	SubjectCoupon     Subject = "Coupon"
	SubjectCategory   Subject = "Category"
	SubjectAccount    Subject = "Account"
	SubjectCreditCard Subject = "CreditCard"
	SubjectEntry      Subject = "Entry"
	SubjectReport     Subject = "Report"
)

type Scope string

const (
	ScopeAll  Scope = "all"
	ScopeSelf Scope = "self" // instance.OwnerID must equal the identity's user ID
)

// Rule is one allow/deny entry of an ability. Rules are matched structurally;
// registration order never changes the outcome.
type Rule struct {
	Effect  Effect
	Action  Action
	Subject Subject
	Scope   Scope
}

// SubjectFor maps a governed resource name to its ability subject.
func SubjectFor(r model.Resource) Subject {
	switch r {
	case model.ResourceCategories:
		return SubjectCategory
	case model.ResourceAccounts:
		return SubjectAccount
	case model.ResourceCreditCards:
		return SubjectCreditCard
	case model.ResourceEntries:
		return SubjectEntry
	}
	return Subject(r)
}
