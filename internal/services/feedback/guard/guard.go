// Package guard decides which roles may perform which desk operations.
package guard

import "github.com/louisbranch/emojifeedback/internal/services/feedback/user"

// Operation names a role-gated action.
type Operation string

const (
	SubmitFeedback    Operation = "SubmitFeedback"
	ListOwnFeedback   Operation = "ListOwnFeedback"
	ListUnreviewed    Operation = "ListUnreviewed"
	MarkReviewed      Operation = "MarkReviewed"
	ListEmojis        Operation = "ListEmojis"
	LookupEmoji       Operation = "LookupEmoji"
	ListAllFeedback   Operation = "ListAllFeedback"
	DeleteFeedback    Operation = "DeleteFeedback"
	ViewOwnProfile    Operation = "ViewOwnProfile"
	ViewAnyProfile    Operation = "ViewAnyProfile"
	ChangeOwnPassword Operation = "ChangeOwnPassword"
	ChangeRole        Operation = "ChangeRole"
)

// grant lists which roles may run an operation. Fields are unnamed in the
// table below so a new role cannot be added without revisiting every row.
type grant struct {
	admin bool
	user  bool
	guest bool
}

var policy = map[Operation]grant{
	SubmitFeedback:    {true, true, false},
	ListOwnFeedback:   {true, true, false},
	ListUnreviewed:    {true, false, false},
	MarkReviewed:      {true, false, false},
	ListEmojis:        {true, true, true},
	LookupEmoji:       {true, true, true},
	ListAllFeedback:   {true, false, false},
	DeleteFeedback:    {true, false, false},
	ViewOwnProfile:    {true, true, true},
	ViewAnyProfile:    {true, false, false},
	ChangeOwnPassword: {true, true, true},
	ChangeRole:        {true, false, false},
}

// Allow reports whether role may perform op. Unknown roles and operations
// are denied.
func Allow(role user.Role, op Operation) bool {
	g, ok := policy[op]
	if !ok {
		return false
	}
	switch role {
	case user.RoleAdmin:
		return g.admin
	case user.RoleUser:
		return g.user
	case user.RoleGuest:
		return g.guest
	default:
		return false
	}
}

// Operations returns every operation with a policy row.
func Operations() []Operation {
	return []Operation{
		SubmitFeedback, ListOwnFeedback, ListUnreviewed, MarkReviewed,
		ListEmojis, LookupEmoji, ListAllFeedback, DeleteFeedback,
		ViewOwnProfile, ViewAnyProfile, ChangeOwnPassword, ChangeRole,
	}
}
