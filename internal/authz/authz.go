// Package authz holds the permission rules for boards, feedback and comments.
//
// The visibility rule is written once, as a predicate over an explicit Actor,
// and the queryset scopes are derived from the same rule so that list
// filtering and single-object checks cannot drift apart.
package authz

import (
	"pulseboard/internal/models"

	"gorm.io/gorm"
)

// Actor is the requesting identity. A zero Actor is anonymous.
type Actor struct {
	ID            uint
	Role          models.Role
	Authenticated bool
}

// Anonymous is the actor for unauthenticated requests.
var Anonymous = Actor{}

// FromUser builds an authenticated actor from a user record.
func FromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Authenticated: true}
}

// CanSeeBoard is the single visibility predicate: a board is visible when it
// is public, when the actor is a member, or when the actor holds a
// privileged role. All scopes below must admit exactly the rows this
// predicate admits.
func CanSeeBoard(a Actor, visibility models.Visibility, isMember bool) bool {
	if a.Authenticated && a.Role.Privileged() {
		return true
	}
	if visibility == models.VisibilityPublic {
		return true
	}
	return a.Authenticated && isMember
}

// CanCreateBoard reports whether the actor may create boards.
func CanCreateBoard(a Actor) bool {
	return a.Authenticated && a.Role.Privileged()
}

// CanUpdateBoard reports whether the actor may update board attributes.
func CanUpdateBoard(a Actor) bool {
	return a.Authenticated && a.Role.Privileged()
}

// CanDeleteBoard reports whether the actor may delete boards. Deletion is
// restricted to admins.
func CanDeleteBoard(a Actor) bool {
	return a.Authenticated && a.Role == models.RoleAdmin
}

// CanManageMembers reports whether the actor may add members to a board.
func CanManageMembers(a Actor) bool {
	return a.Authenticated && a.Role.Privileged()
}

// CanContribute governs feedback and comment creation: the actor must be
// authenticated and the board public or joined. There is no privileged
// carve-out here; an admin who wants to post on a private board joins it
// like anyone else.
func CanContribute(a Actor, visibility models.Visibility, isMember bool) bool {
	if !a.Authenticated {
		return false
	}
	if visibility == models.VisibilityPublic {
		return true
	}
	return isMember
}

// CanVote governs vote toggles: any authenticated actor who can see the
// board may vote, privileged roles included. Authorship is irrelevant.
func CanVote(a Actor, visibility models.Visibility, isMember bool) bool {
	if !a.Authenticated {
		return false
	}
	return CanSeeBoard(a, visibility, isMember)
}

// CanModifyContent governs update and delete of feedback and comments:
// the author may, and privileged roles may regardless of authorship.
func CanModifyContent(a Actor, authorID uint) bool {
	if !a.Authenticated {
		return false
	}
	if a.Role.Privileged() {
		return true
	}
	return a.ID == authorID
}

// BoardScope narrows a boards query to the rows CanSeeBoard admits.
// Membership is tested with EXISTS instead of a JOIN so results stay
// naturally de-duplicated.
func BoardScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.Authenticated && a.Role.Privileged() {
			return db
		}
		if !a.Authenticated {
			return db.Where("boards.visibility = ?", models.VisibilityPublic)
		}
		return db.Where(
			"boards.visibility = ? OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?)",
			models.VisibilityPublic, a.ID,
		)
	}
}

// FeedbackScope narrows a feedbacks query to items whose board the actor
// can see.
func FeedbackScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.Authenticated && a.Role.Privileged() {
			return db
		}
		if !a.Authenticated {
			return db.Where(
				"feedbacks.board_id IN (SELECT id FROM boards WHERE boards.visibility = ?)",
				models.VisibilityPublic,
			)
		}
		return db.Where(
			"feedbacks.board_id IN (SELECT id FROM boards WHERE boards.visibility = ? "+
				"OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?))",
			models.VisibilityPublic, a.ID,
		)
	}
}

// CommentScope narrows a comments query to comments whose feedback's board
// the actor can see. Visibility is inherited transitively.
func CommentScope(a Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if a.Authenticated && a.Role.Privileged() {
			return db
		}
		if !a.Authenticated {
			return db.Where(
				"comments.feedback_id IN (SELECT feedbacks.id FROM feedbacks JOIN boards ON boards.id = feedbacks.board_id WHERE boards.visibility = ?)",
				models.VisibilityPublic,
			)
		}
		return db.Where(
			"comments.feedback_id IN (SELECT feedbacks.id FROM feedbacks JOIN boards ON boards.id = feedbacks.board_id "+
				"WHERE boards.visibility = ? OR EXISTS (SELECT 1 FROM board_members WHERE board_members.board_id = boards.id AND board_members.user_id = ?))",
			models.VisibilityPublic, a.ID,
		)
	}
}
