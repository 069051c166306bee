package auth

import "context"

// Identity is the authenticated caller.
type Identity struct {
	UserID        string
	Admin         bool
	TrustedMember bool
}

// CanEditCatalog reports whether the caller may create or update movies.
func (i *Identity) CanEditCatalog() bool {
	return i != nil && (i.Admin || i.TrustedMember)
}

// IsAdmin reports whether the caller may delete movies.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Admin
}

type identityKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the caller attached to ctx, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*Identity)
	return id, ok && id != nil
}

// UserID returns the caller's id, or nil for anonymous requests.
func UserID(ctx context.Context) *string {
	id, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	userID := id.UserID
	return &userID
}
