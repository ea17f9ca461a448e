package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/uwtools/go-bridge/pkg/utils/errs"
)

const rolesPath = "/api/author/roles"

var (
	ErrGetUserRoles    = errors.New("error getting Bridge roles")
	ErrUnknownRoleName = errors.New("unknown role name")
)

// UserRoles is the tenant's role schema, minus deprecated entries.
// Fetched once at construction, read-only afterwards.
type UserRoles struct {
	roles    []UserRole
	idToName map[string]string
	nameToID map[string]string
}

// LoadUserRoles fetches the role schema. It fails fast on a fetch
// error; it does not retry.
func LoadUserRoles(ctx context.Context, client *Client) (*UserRoles, error) {
	body, err := client.GetResource(ctx, rolesPath)
	if err != nil {
		return nil, errs.Wrap(ErrGetUserRoles, err)
	}

	var schema rolesSchema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, errs.Wrap(ErrGetUserRoles, err)
	}

	catalog := &UserRoles{
		idToName: make(map[string]string, len(schema.Roles)),
		nameToID: make(map[string]string, len(schema.Roles)),
	}

	for _, role := range schema.Roles {
		if role.IsDeprecated {
			continue
		}

		catalog.roles = append(catalog.roles, UserRole{ID: role.ID, Name: role.Name})
		catalog.idToName[role.ID] = role.Name
		catalog.nameToID[role.Name] = role.ID
	}

	return catalog, nil
}

// Roles returns the catalog's non-deprecated roles.
func (r *UserRoles) Roles() []UserRole {
	return r.roles
}

func (r *UserRoles) RoleID(name string) (string, bool) {
	if id, ok := r.nameToID[name]; ok {
		return id, true
	}

	for catalogName, id := range r.nameToID {
		if strings.EqualFold(catalogName, name) {
			return id, true
		}
	}

	return "", false
}

func (r *UserRoles) RoleName(id string) (string, bool) {
	name, ok := r.idToName[id]
	return name, ok
}

// NewRoleByID builds a role for the given id, denormalizing the name
// from the catalog when the id is known.
func (r *UserRoles) NewRoleByID(id string) UserRole {
	name, _ := r.RoleName(id)
	return UserRole{ID: id, Name: name}
}

func (r *UserRoles) NewRoleByName(name string) (UserRole, error) {
	id, ok := r.RoleID(name)
	if !ok {
		return UserRole{}, errs.Wrapf(ErrUnknownRoleName, "%s", name)
	}

	return UserRole{ID: id, Name: name}, nil
}

func (r *UserRoles) AuthorRole() (UserRole, error) {
	return r.NewRoleByName(RoleAuthor)
}

func (r *UserRoles) CampusAdminRole() (UserRole, error) {
	return r.NewRoleByName(RoleCampusAdmin)
}
