package guard

import (
	"testing"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/user"
)

func TestAllowTable(t *testing.T) {
	tests := []struct {
		op    Operation
		admin bool
		user  bool
		guest bool
	}{
		{SubmitFeedback, true, true, false},
		{ListOwnFeedback, true, true, false},
		{ListUnreviewed, true, false, false},
		{MarkReviewed, true, false, false},
		{ListEmojis, true, true, true},
		{LookupEmoji, true, true, true},
		{ListAllFeedback, true, false, false},
		{DeleteFeedback, true, false, false},
		{ViewOwnProfile, true, true, true},
		{ViewAnyProfile, true, false, false},
		{ChangeOwnPassword, true, true, true},
		{ChangeRole, true, false, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.op), func(t *testing.T) {
			for role, want := range map[user.Role]bool{user.RoleAdmin: tc.admin, user.RoleUser: tc.user, user.RoleGuest: tc.guest} {
				if got := Allow(role, tc.op); got != want {
					t.Fatalf("Allow(%v, %s) = %v, want %v", role, tc.op, got, want)
				}
			}
		})
	}
	if len(tests) != len(Operations()) {
		t.Fatalf("table covers %d operations, policy has %d", len(tests), len(Operations()))
	}
}

func TestAllowDefaultDeny(t *testing.T) {
	if Allow(user.RoleAdmin, Operation("DropDatabase")) {
		t.Fatal("unknown operation must be denied")
	}
	for _, op := range Operations() {
		if Allow(user.RoleUnspecified, op) {
			t.Fatalf("unspecified role allowed %s", op)
		}
		if Allow(user.Role(99), op) {
			t.Fatalf("unknown role allowed %s", op)
		}
	}
}

func TestOperationsHavePolicy(t *testing.T) {
	for _, op := range Operations() {
		if _, ok := policy[op]; !ok {
			t.Fatalf("operation %s has no policy row", op)
		}
	}
	if len(policy) != len(Operations()) {
		t.Fatalf("policy has %d rows, Operations lists %d", len(policy), len(Operations()))
	}
}
