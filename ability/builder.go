// api/ability/builder.go
package ability

import "github.com/fintrack-app/api/model"

// Build computes the capability set for one identity. Pure: no I/O, no
// clock, no globals; everything it needs arrives as arguments. A nil plan
// treats every gated resource as disabled while keeping the base profile
// and entry rules intact.
func Build(identity model.Identity, plan *model.Plan) *Ability {
	rules := make([]Rule, 0, 12)

	// Every identity may read and update its own profile.
	rules = append(rules,
		Rule{Effect: Allow, Action: ActionRead, Subject: SubjectUser, Scope: ScopeSelf},
		Rule{Effect: Allow, Action: ActionUpdate, Subject: SubjectUser, Scope: ScopeSelf},
	)

	if identity.IsAdmin() {
		// manage/all dominates; no per-resource rules needed.
		rules = append(rules, Rule{Effect: Allow, Action: ActionManage, Subject: SubjectAll, Scope: ScopeAll})
		return &Ability{userID: identity.UserID, rules: rules}
	}

	// Gated resources: a Limited plan still grants the action itself; the
	// numeric ceiling is the quota enforcer's job, not the ability's.
	for _, resource := range model.GatedResources {
		limit := plan.Limit(resource)
		if limit.Kind == model.LimitDisabled {
			continue
		}
		rules = append(rules, Rule{Effect: Allow, Action: ActionManage, Subject: SubjectFor(resource), Scope: ScopeSelf})
	}

	// Entries are always permitted, owner-scoped, independent of plan.
	rules = append(rules, Rule{Effect: Allow, Action: ActionManage, Subject: SubjectEntry, Scope: ScopeSelf})

	// Reports follow the plan's report features rather than a resource limit.
	if plan != nil {
		if plan.Reports.Advanced {
			rules = append(rules, Rule{Effect: Allow, Action: ActionManage, Subject: SubjectReport, Scope: ScopeSelf})
		} else if plan.Reports.Basic {
			rules = append(rules, Rule{Effect: Allow, Action: ActionRead, Subject: SubjectReport, Scope: ScopeSelf})
		}
	}

	// Defensive denies; also the default outcome absent any rule.
	rules = append(rules,
		Rule{Effect: Deny, Action: ActionManage, Subject: SubjectUser},
		Rule{Effect: Deny, Action: ActionManage, Subject: SubjectPlan},
		Rule{Effect: Deny, Action: ActionManage, Subject: SubjectCoupon},
	)

	return &Ability{userID: identity.UserID, rules: rules}
}
