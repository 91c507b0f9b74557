package models

// OwnershipKind discriminates how a record is owned.
type OwnershipKind string

const (
	OwnershipNone          OwnershipKind = ""
	OwnershipAuthenticated OwnershipKind = "authenticated"
	OwnershipAnonymous     OwnershipKind = "anonymous"
)

// Ownership is the tagged form of the user_id / session_id column pair:
// a record is owned either by an authenticated user or by an anonymous
// session token, never both. The zero value means "no owner recorded".
type Ownership struct {
	kind         OwnershipKind
	userID       string
	sessionToken string
}

// OwnedByUser builds an authenticated ownership value.
func OwnedByUser(userID string) Ownership {
	return Ownership{kind: OwnershipAuthenticated, userID: userID}
}

// OwnedBySession builds an anonymous ownership value.
func OwnedBySession(token string) Ownership {
	return Ownership{kind: OwnershipAnonymous, sessionToken: token}
}

// Kind returns the ownership discriminant.
func (o Ownership) Kind() OwnershipKind {
	return o.kind
}

// UserID returns the owning user id when the ownership is authenticated.
func (o Ownership) UserID() (string, bool) {
	return o.userID, o.kind == OwnershipAuthenticated
}

// SessionToken returns the anonymous session token when the ownership is
// anonymous.
func (o Ownership) SessionToken() (string, bool) {
	return o.sessionToken, o.kind == OwnershipAnonymous
}

// Columns flattens the ownership to the two nullable storage columns.
func (o Ownership) Columns() (userID *string, sessionID *string) {
	switch o.kind {
	case OwnershipAuthenticated:
		id := o.userID
		return &id, nil
	case OwnershipAnonymous:
		tok := o.sessionToken
		return nil, &tok
	default:
		return nil, nil
	}
}
