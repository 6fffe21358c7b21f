package content

import (
	"github.com/psicoasis/oasis-backend/internal/identity"
)

// CanMutate is the single authorization rule for content writes. A nil
// author means "create a new post"; a non-nil author is the target post's
// author reference. Rules in order, first match wins:
//
//  1. An admin Patient may do anything.
//  2. A Therapist with blog access may create, and may mutate posts they
//     authored.
//  3. Everyone else is denied, including unresolved actors (the zero Actor).
//
// The function is pure: it never touches the database, and it never
// resolves or creates accounts on the caller's behalf.
func CanMutate(actor identity.Actor, author *AuthorRef) bool {
	if actor.IsAdmin() {
		return true
	}

	if actor.Kind == identity.KindTherapist && actor.CanPostBlog {
		if author == nil {
			return true
		}
		return author.Kind == identity.KindTherapist && author.ID == actor.ID
	}

	return false
}
