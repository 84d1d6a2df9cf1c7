package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity is the authenticated console operator behind a request.
type Identity interface {
	UserID() uuid.UUID
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	userID        uuid.UUID
	roles         []string
	authenticated bool
}

func (i *identity) UserID() uuid.UUID        { return i.userID }
func (i *identity) Roles() []string          { return i.roles }
func (i *identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }
func (i *identity) IsAuthenticated() bool    { return i.authenticated }

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	var roles []string
	if v, ok := c.Get(ContextRolesKey); ok {
		roles, _ = v.([]string)
	}

	return &identity{userID: uid, roles: roles, authenticated: true}
}

// MustGetIdentity aborts with 401 and returns nil when nobody is signed in.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", RequestID: RequestID(c)})
		return nil
	}
	return id
}
