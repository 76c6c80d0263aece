package auth

import "context"

// Ownership answers whether the acting identity owns the target record.
// A nil Ownership means no ownership override applies to the action.
// Implementations must fail closed: a lookup fault reads as "not owner".
type Ownership func(ctx context.Context) (bool, error)

// SelfMatch is the ownership predicate for account records: the target
// is the actor itself.
func SelfMatch(subjectID, targetID string) Ownership {
	return func(context.Context) (bool, error) {
		return targetID != "" && subjectID == targetID, nil
	}
}

// Authorize is the per-request access decision. It is a pure function of
// the verified identity, the action's static allow-set and the optional
// ownership predicate; the step order is the decision protocol:
//
//  1. an empty allow-set declares no restriction — allow;
//  2. no verified identity — deny Unauthenticated;
//  3. a user-role actor with a failing ownership check is denied even
//     when "user" is in the allow-set: users only ever act on their own
//     records;
//  4. role listed in the allow-set — allow;
//  5. otherwise deny Forbidden.
func Authorize(ctx context.Context, identity *Identity, required AllowSet, owns Ownership) error {
	if len(required) == 0 {
		return nil
	}
	if identity == nil || identity.SubjectID == "" || !identity.Role.Valid() {
		return ErrUnauthenticated
	}
	if identity.Role == RoleUser && owns != nil {
		ok, err := owns(ctx)
		if err != nil || !ok {
			return ErrForbidden
		}
	}
	if required.Contains(identity.Role) {
		return nil
	}
	return ErrForbidden
}
