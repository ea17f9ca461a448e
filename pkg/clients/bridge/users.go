package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/oops"

	"github.com/uwtools/go-bridge/pkg/utils/errs"
)

const (
	adminURLPrefix  = "/api/admin/users"
	authorURLPrefix = "/api/author/users"

	restoreSuffix    = "restore"
	rolesBatchSuffix = "roles/batch"

	includeCustomFields  = "custom_fields"
	includeCourseSummary = "course_summary"
	includeManager       = "manager"
)

var (
	apiErr = oops.In("Bridge Users API")

	ErrGetUser     = errors.New("error getting Bridge user")
	ErrListUsers   = errors.New("error listing Bridge users")
	ErrAddUser     = errors.New("error adding Bridge user")
	ErrUpdateUser  = errors.New("error updating Bridge user")
	ErrUpdateRoles = errors.New("error updating Bridge user roles")
	ErrDeleteUser  = errors.New("error deleting Bridge user")
	ErrRestoreUser = errors.New("error restoring Bridge user")
	ErrUpdateUID   = errors.New("error changing Bridge user uid")
	ErrNoUser      = errors.New("no user record returned")
)

// GetOptions controls single-user fetches.
type GetOptions struct {
	IncludeCourseSummary bool
	IncludeManager       bool
	// ExcludeDeleted drops soft-deleted records from the result.
	ExcludeDeleted bool
	// WithDeleted asks the server to return terminated records too.
	// Honored by id-addressed fetches only.
	WithDeleted bool
}

// ListOptions controls listings and response hydration.
type ListOptions struct {
	IncludeCourseSummary bool
	IncludeCustomFields  bool
	ExcludeDeleted       bool
	// RoleID limits the listing to users holding the given role.
	RoleID string
}

// Users implements the user operations of the Bridge API. One Users
// object per client is enough: both catalogs are loaded once at
// construction and read-only afterwards.
type Users struct {
	client       *Client
	customFields *CustomFields
	userRoles    *UserRoles
}

// NewUsers loads the custom field and role catalogs eagerly and fails
// fast when either fetch fails.
func NewUsers(ctx context.Context, client *Client) (*Users, error) {
	customFields, err := LoadCustomFields(ctx, client)
	if err != nil {
		return nil, err
	}

	userRoles, err := LoadUserRoles(ctx, client)
	if err != nil {
		return nil, err
	}

	return NewUsersWithCatalogs(client, customFields, userRoles), nil
}

// NewUsersWithCatalogs wires pre-loaded catalogs; callers owning the
// catalog lifecycle (and tests) construct through here.
func NewUsersWithCatalogs(client *Client, customFields *CustomFields, userRoles *UserRoles) *Users {
	return &Users{
		client:       client,
		customFields: customFields,
		userRoles:    userRoles,
	}
}

func (u *Users) CustomFields() *CustomFields {
	return u.customFields
}

func (u *Users) UserRoles() *UserRoles {
	return u.userRoles
}

// encodeUID builds the percent-encoded uid path segment, e.g. netid
// "staff" under domain "uw.edu" becomes "uid%3Astaff%40uw%2Eedu".
func (u *Users) encodeUID(netid string) string {
	domain := strings.ReplaceAll(u.client.emailDomain, ".", "%2E")
	return "uid%3A" + netid + "%40" + domain
}

func (u *Users) adminIDURL(bridgeID int) string {
	if bridgeID <= 0 {
		return adminURLPrefix
	}

	return adminURLPrefix + "/" + strconv.Itoa(bridgeID)
}

func (u *Users) adminUIDURL(netid string) string {
	if netid == "" {
		return adminURLPrefix
	}

	return adminURLPrefix + "/" + u.encodeUID(netid)
}

func (u *Users) authorIDURL(bridgeID int) string {
	if bridgeID <= 0 {
		return authorURLPrefix
	}

	return authorURLPrefix + "/" + strconv.Itoa(bridgeID)
}

func (u *Users) authorUIDURL(netid string) string {
	if netid == "" {
		return authorURLPrefix
	}

	return authorURLPrefix + "/" + u.encodeUID(netid)
}

func includesQuery(customFields, courseSummary, manager bool) url.Values {
	var includes []string

	if customFields {
		includes = append(includes, includeCustomFields)
	}

	if courseSummary {
		includes = append(includes, includeCourseSummary)
	}

	if manager {
		includes = append(includes, includeManager)
	}

	if len(includes) == 0 {
		includes = append(includes, "")
	}

	return url.Values{"includes[]": includes}
}

// GetUser fetches the user record addressed by netid, custom fields
// included.
func (u *Users) GetUser(ctx context.Context, netid string, opts GetOptions) (*User, error) {
	query := includesQuery(true, opts.IncludeCourseSummary, opts.IncludeManager)

	body, err := u.client.GetResource(ctx, u.authorUIDURL(netid)+"?"+query.Encode())
	if err != nil {
		return nil, errs.Wrap(ErrGetUser, err)
	}

	users, err := u.processPages(ctx, body, ListOptions{
		IncludeCustomFields: true,
		ExcludeDeleted:      opts.ExcludeDeleted,
	})
	if err != nil {
		return nil, errs.Wrap(ErrGetUser, err)
	}

	return u.firstUser(fmt.Sprintf("get_user(%s)", netid), users)
}

// GetUserByID fetches the user record addressed by Bridge id.
func (u *Users) GetUserByID(ctx context.Context, bridgeID int, opts GetOptions) (*User, error) {
	query := includesQuery(true, opts.IncludeCourseSummary, opts.IncludeManager)
	if opts.WithDeleted {
		query.Set("with_deleted", "true")
	}

	body, err := u.client.GetResource(ctx, u.authorIDURL(bridgeID)+"?"+query.Encode())
	if err != nil {
		return nil, errs.Wrap(ErrGetUser, err)
	}

	users, err := u.processPages(ctx, body, ListOptions{
		IncludeCustomFields: true,
		ExcludeDeleted:      opts.ExcludeDeleted,
	})
	if err != nil {
		return nil, errs.Wrap(ErrGetUser, err)
	}

	return u.firstUser(fmt.Sprintf("get_user_by_id(%d)", bridgeID), users)
}

// GetAllUsers walks the full paginated listing and returns the merged
// user records in server order.
func (u *Users) GetAllUsers(ctx context.Context, opts ListOptions) ([]*User, error) {
	query := includesQuery(opts.IncludeCustomFields, opts.IncludeCourseSummary, false)
	query.Set("limit", strconv.Itoa(u.client.pageSize))

	if opts.RoleID != "" {
		query.Set("role", opts.RoleID)
	}

	body, err := u.client.GetResource(ctx, authorURLPrefix+"?"+query.Encode())
	if err != nil {
		return nil, errs.Wrap(ErrListUsers, err)
	}

	users, err := u.processPages(ctx, body, opts)
	if err != nil {
		return nil, errs.Wrap(ErrListUsers, err)
	}

	return users, nil
}

// AddUser creates the given user and returns the created record.
func (u *Users) AddUser(ctx context.Context, user *User) (*User, error) {
	body, err := json.Marshal(user.ToJSONPost(u.client.emailDomain))
	if err != nil {
		return nil, errs.Wrap(ErrAddUser, err)
	}

	resp, err := u.client.PostResource(ctx, u.adminUIDURL(""), body)
	if err != nil {
		return nil, errs.Wrap(ErrAddUser, err)
	}

	users, err := u.processPages(ctx, resp, ListOptions{})
	if err != nil {
		return nil, errs.Wrap(ErrAddUser, err)
	}

	return u.firstUser(fmt.Sprintf("add_user(%s)", user.NetID), users)
}

// UpdateUser patches the user's scalar attributes. The Bridge id is
// preferred over the netid to address the record when present.
func (u *Users) UpdateUser(ctx context.Context, user *User) (*User, error) {
	requestURL := u.authorUIDURL(user.NetID)
	if user.HasBridgeID() {
		requestURL = u.authorIDURL(user.BridgeID)
	}

	body, err := json.Marshal(user.ToJSONPatch(u.client.emailDomain))
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUser, err)
	}

	resp, err := u.client.PatchResource(ctx, requestURL, body)
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUser, err)
	}

	users, err := u.processPages(ctx, resp, ListOptions{})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUser, err)
	}

	return u.firstUser(fmt.Sprintf("update_user(%s)", user.NetID), users)
}

// UpdateUserRoles replaces the user's role assignments with the user's
// current role sequence via the batch endpoint. The submitted array is
// authoritative.
func (u *Users) UpdateUserRoles(ctx context.Context, user *User) error {
	requestURL := u.authorUIDURL(user.NetID)
	if user.HasBridgeID() {
		requestURL = u.authorIDURL(user.BridgeID)
	}

	body, err := json.Marshal(map[string]any{"roles": user.RoleIDs()})
	if err != nil {
		return errs.Wrap(ErrUpdateRoles, err)
	}

	if _, err := u.client.PutResource(ctx, requestURL+"/"+rolesBatchSuffix, body); err != nil {
		return errs.Wrap(ErrUpdateRoles, err)
	}

	return nil
}

// DeleteUser soft-deletes the user addressed by netid. True means the
// server answered 204.
func (u *Users) DeleteUser(ctx context.Context, netid string) (bool, error) {
	deleted, err := u.client.DeleteResource(ctx, u.adminUIDURL(netid))
	if err != nil {
		return false, errs.Wrap(ErrDeleteUser, err)
	}

	return deleted, nil
}

// DeleteUserByID soft-deletes the user addressed by Bridge id.
func (u *Users) DeleteUserByID(ctx context.Context, bridgeID int) (bool, error) {
	deleted, err := u.client.DeleteResource(ctx, u.adminIDURL(bridgeID))
	if err != nil {
		return false, errs.Wrap(ErrDeleteUser, err)
	}

	return deleted, nil
}

func (u *Users) restoreURL(baseURL string, includeManager bool) string {
	query := includesQuery(true, false, includeManager)
	return baseURL + "/" + restoreSuffix + "?" + query.Encode()
}

// RestoreUser un-deletes the user addressed by netid and returns the
// restored record.
func (u *Users) RestoreUser(ctx context.Context, netid string, opts GetOptions) (*User, error) {
	return u.restore(ctx,
		u.restoreURL(u.authorUIDURL(netid), opts.IncludeManager),
		fmt.Sprintf("restore_user(%s)", netid))
}

// RestoreUserByID un-deletes the user addressed by Bridge id.
func (u *Users) RestoreUserByID(ctx context.Context, bridgeID int, opts GetOptions) (*User, error) {
	return u.restore(ctx,
		u.restoreURL(u.authorIDURL(bridgeID), opts.IncludeManager),
		fmt.Sprintf("restore_user_by_id(%d)", bridgeID))
}

func (u *Users) restore(ctx context.Context, requestURL, action string) (*User, error) {
	resp, err := u.client.PostResource(ctx, requestURL, []byte("{}"))
	if err != nil {
		return nil, errs.Wrap(ErrRestoreUser, err)
	}

	users, err := u.processPages(ctx, resp, ListOptions{IncludeCustomFields: true})
	if err != nil {
		return nil, errs.Wrap(ErrRestoreUser, err)
	}

	return u.firstUser(action, users)
}

func (u *Users) uidPatchBody(newNetid string) []byte {
	return []byte(`{"user":{"uid":"` + newNetid + `@` + u.client.emailDomain + `"}}`)
}

// ChangeUID renames the user addressed by Bridge id to a new netid.
func (u *Users) ChangeUID(ctx context.Context, bridgeID int, newNetid string) (*User, error) {
	resp, err := u.client.PatchResource(ctx, u.authorIDURL(bridgeID), u.uidPatchBody(newNetid))
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUID, err)
	}

	users, err := u.processPages(ctx, resp, ListOptions{})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUID, err)
	}

	return u.firstUser(fmt.Sprintf("change_uid(%d, %s)", bridgeID, newNetid), users)
}

// ReplaceUID renames the user addressed by the old netid.
func (u *Users) ReplaceUID(ctx context.Context, oldNetid, newNetid string) (*User, error) {
	resp, err := u.client.PatchResource(ctx, u.authorUIDURL(oldNetid), u.uidPatchBody(newNetid))
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUID, err)
	}

	users, err := u.processPages(ctx, resp, ListOptions{})
	if err != nil {
		return nil, errs.Wrap(ErrUpdateUID, err)
	}

	return u.firstUser(fmt.Sprintf("replace_uid(%s, %s)", oldNetid, newNetid), users)
}

// firstUser guards the should-be-unique lookups. More than one record
// is a server-side data anomaly: it is logged and the first record is
// returned.
func (u *Users) firstUser(action string, users []*User) (*User, error) {
	if len(users) == 0 {
		return nil, errs.Wrapf(ErrNoUser, "%s", action)
	}

	if len(users) > 1 {
		u.client.logger.Error("multiple Bridge user accounts returned",
			"action", action, "count", len(users))
	}

	return users[0], nil
}
