// api/ability/ability.go
package ability

// Ability is the resolved capability set of one identity. It is immutable
// after Build and safe for concurrent reads.
type Ability struct {
	userID string
	rules  []Rule
}

func (a *Ability) UserID() string {
	return a.userID
}

func (a *Ability) Rules() []Rule {
	out := make([]Rule, len(a.rules))
	copy(out, a.rules)
	return out
}

// Can resolves a class-level check (no instance at hand). A deny rule for the
// same (action, subject) pair always wins regardless of registration order;
// otherwise any matching allow wins; absent both, the default is deny.
func (a *Ability) Can(action Action, subject Subject) bool {
	for _, r := range a.rules {
		if r.Effect == Deny && denyMatches(r, action, subject) {
			return false
		}
	}
	for _, r := range a.rules {
		if r.Effect == Allow && allowMatches(r, action, subject) {
			return true
		}
	}
	return false
}

// CanInstance resolves a check against a concrete instance. Self-scoped
// allows only match when ownerID equals the identity's user ID; an "all"
// scope matches regardless of owner. A matching deny still dominates.
func (a *Ability) CanInstance(action Action, subject Subject, ownerID string) bool {
	for _, r := range a.rules {
		if r.Effect == Deny && denyMatches(r, action, subject) {
			return false
		}
	}
	owned := ownerID == a.userID
	for _, r := range a.rules {
		if r.Effect != Allow || !allowMatches(r, action, subject) {
			continue
		}
		if r.Scope == ScopeSelf && !owned {
			continue
		}
		return true
	}
	return false
}

// allowMatches applies the wildcard semantics of allow rules: a "manage"
// action covers every action and an "all" subject covers every subject.
func allowMatches(r Rule, action Action, subject Subject) bool {
	actionOK := r.Action == ActionManage || r.Action == action
	subjectOK := r.Subject == SubjectAll || r.Subject == subject
	return actionOK && subjectOK
}

// denyMatches is deliberately exact: a deny rule overrides allows for the
// same (action, subject) pair only. Deny(manage, User) blocks managing a
// User; it does not defeat the narrower Allow(read, User, self) base rule.
func denyMatches(r Rule, action Action, subject Subject) bool {
	return r.Action == action && r.Subject == subject
}
