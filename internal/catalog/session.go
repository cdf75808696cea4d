package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/Clark-Hu/cineadmin/internal/domain"
)

// Actor is who an operation runs as. The zero value is a guest.
type Actor struct {
	UserID uuid.UUID
	Role   domain.Role
	Caps   domain.Capabilities
}

// Guest returns an actor with no identity and no capabilities.
func Guest() Actor { return Actor{} }

// Authenticated reports whether the actor has a signed-in identity.
func (a Actor) Authenticated() bool { return a.UserID != uuid.Nil }

// ResolveSession asks the backend who is signed in and what they may do.
// Any failure degrades to less privilege: a session error yields a guest, and
// a failed or unrecognised role lookup keeps the identity with no capabilities.
func (s *Service) ResolveSession(ctx context.Context) Actor {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	sess, err := s.backend.CurrentSession(callCtx)
	if err != nil {
		s.log.Error("resolve session", "err", err)
		return Guest()
	}
	if sess == nil || sess.UserID == uuid.Nil {
		return Guest()
	}

	actor := Actor{UserID: sess.UserID}
	actor.Role = s.resolveRole(ctx, sess.UserID)
	actor.Caps = domain.CapabilitiesFor(actor.Role)
	return actor
}

func (s *Service) resolveRole(ctx context.Context, userID uuid.UUID) domain.Role {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	user, err := s.backend.GetUser(callCtx, userID)
	if err != nil {
		s.log.Error("resolve role", "user_id", userID, "err", err)
		return domain.RoleGuest
	}
	if user.Role == domain.RoleGuest {
		s.log.Warn("user has no recognised role", "user_id", userID)
	}
	return user.Role
}
