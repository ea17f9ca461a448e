package bridge

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Well-known custom field names. Bridge identifies custom fields by a
// tenant-specific numeric id; clients address them by these lowercased
// names. Extend this list to recognize a new field.
const (
	CustomFieldRegid      = "regid"
	CustomFieldEmployeeID = "employee_id"
	CustomFieldStudentID  = "student_id"

	CustomFieldPos1BudgetCode = "pos1_budget_code"
	CustomFieldPos1JobCode    = "pos1_job_code"
	CustomFieldPos1JobClass   = "pos1_job_class"
	CustomFieldPos1Location   = "pos1_location"
	CustomFieldPos1OrgCode    = "pos1_org_code"
	CustomFieldPos1OrgName    = "pos1_org_name"
	CustomFieldPos1UnitCode   = "pos1_unit_code"

	CustomFieldPos2BudgetCode = "pos2_budget_code"
	CustomFieldPos2JobCode    = "pos2_job_code"
	CustomFieldPos2JobClass   = "pos2_job_class"
	CustomFieldPos2Location   = "pos2_location"
	CustomFieldPos2OrgCode    = "pos2_org_code"
	CustomFieldPos2OrgName    = "pos2_org_name"
	CustomFieldPos2UnitCode   = "pos2_unit_code"
)

// Well-known role names. Name comparison is case-folded.
const (
	RoleAccountAdmin = "Account Admin"
	RoleAdmin        = "Admin"
	RoleAuthor       = "Author"
	RoleCampusAdmin  = "Campus Admin"
	RoleITAdmin      = "IT Admin"
)

// NoCourseSummary is the CompletedCoursesCount sentinel for "course
// summary was not requested". A real count of zero completions is 0.
const NoCourseSummary = -1

// CustomField is one custom field value on a user. ValueID is empty
// until the server has assigned one.
type CustomField struct {
	FieldID string
	Name    string
	ValueID string
	Value   *string
}

func (cf *CustomField) Is(name string) bool {
	return strings.EqualFold(cf.Name, name)
}

// ToJSON returns the wire shape used in write payloads. The value row
// id is included only once the server has assigned one.
func (cf *CustomField) ToJSON() map[string]any {
	data := map[string]any{
		"custom_field_id": cf.FieldID,
		"value":           cf.Value,
	}
	if cf.ValueID != "" {
		data["id"] = cf.ValueID
	}

	return data
}

// ToJSONShort returns the display shape.
func (cf *CustomField) ToJSONShort() map[string]any {
	return map[string]any{"name": cf.Name, "value": cf.Value}
}

// UserRole is a role assignment on a user. Identity is the ID alone;
// Name is denormalized display data and may be empty.
type UserRole struct {
	ID   string
	Name string
}

func (r UserRole) Is(name string) bool {
	return r.Name != "" && strings.EqualFold(r.Name, name)
}

func (r UserRole) ToJSON() map[string]any {
	return map[string]any{"id": r.ID, "name": r.Name}
}

// User is a Bridge user account. A locally constructed user has no
// BridgeID until it is known to exist server-side; it is addressed by
// NetID instead.
type User struct {
	BridgeID     int
	NetID        string
	Email        string
	FullName     string
	FirstName    *string
	LastName     *string
	Department   *string
	JobTitle     *string
	IsManager    *bool
	Locale       string
	ManagerID    int
	ManagerNetID *string
	DeletedAt    *time.Time
	LoggedInAt   *time.Time
	UpdatedAt    *time.Time
	Unsubscribed *string
	NextDueDate  *time.Time

	CompletedCoursesCount int

	// CustomFields maps field name to value for quick lookup.
	CustomFields map[string]*CustomField
	// Roles keeps server-given assignment order.
	Roles []UserRole
}

func NewUser(netid string) *User {
	return &User{
		NetID:                 netid,
		Locale:                "en",
		CompletedCoursesCount: NoCourseSummary,
		CustomFields:          make(map[string]*CustomField),
	}
}

// UID combines the netid with the institution's email domain to form
// the identifier Bridge uses in uid-addressed endpoints.
func (u *User) UID(domain string) string {
	return u.NetID + "@" + domain
}

func (u *User) HasBridgeID() bool {
	return u.BridgeID > 0
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) HasFirstName() bool {
	return u.FirstName != nil && *u.FirstName != ""
}

func (u *User) HasLastName() bool {
	return u.LastName != nil && *u.LastName != ""
}

func (u *User) SortableName() string {
	var first, last string
	if u.FirstName != nil {
		first = *u.FirstName
	}

	if u.LastName != nil {
		last = *u.LastName
	}

	return fmt.Sprintf("%s, %s", last, first)
}

func (u *User) HasManager() bool {
	return u.ManagerID > 0 || u.ManagerNetID != nil
}

// HasCourseSummary reports whether course completion data was present
// in the response this user was built from.
func (u *User) HasCourseSummary() bool {
	return u.CompletedCoursesCount >= 0
}

func (u *User) NoLearningHistory() bool {
	return u.HasCourseSummary() && u.CompletedCoursesCount == 0
}

func (u *User) HasCustomFields() bool {
	return len(u.CustomFields) > 0
}

func (u *User) GetCustomField(name string) *CustomField {
	return u.CustomFields[name]
}

// UpdateCustomField sets a new value on an existing custom field.
// It is a no-op when the user has no field of that name.
func (u *User) UpdateCustomField(name, value string) {
	if cf := u.GetCustomField(name); cf != nil {
		cf.Value = &value
	}
}

// AddRole appends the role, suppressing duplicates by id.
func (u *User) AddRole(role UserRole) {
	for _, existing := range u.Roles {
		if existing.ID == role.ID {
			return
		}
	}

	u.Roles = append(u.Roles, role)
}

func (u *User) DeleteRole(role UserRole) {
	for i, existing := range u.Roles {
		if existing.ID == role.ID {
			u.Roles = append(u.Roles[:i], u.Roles[i+1:]...)
			return
		}
	}
}

func (u *User) RoleIDs() []string {
	ids := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		ids[i] = role.ID
	}

	return ids
}

// toJSON builds the scalar attributes shared by create and update
// payloads. Optional fields are included only when set. An absent
// manager omits the manager_id key entirely.
func (u *User) toJSON(domain string) map[string]any {
	data := map[string]any{
		"uid":       u.UID(domain),
		"full_name": u.FullName,
		"email":     u.Email,
	}

	if u.HasBridgeID() {
		data["id"] = u.BridgeID
	}

	if u.HasFirstName() {
		data["first_name"] = *u.FirstName
	}

	if u.HasLastName() {
		data["last_name"] = *u.LastName
	}

	if u.HasFirstName() && u.HasLastName() {
		data["sortable_name"] = u.SortableName()
	}

	if u.Department != nil {
		data["department"] = *u.Department
	}

	if u.JobTitle != nil {
		data["job_title"] = *u.JobTitle
	}

	if u.ManagerID > 0 {
		data["manager_id"] = u.ManagerID
	} else if u.ManagerNetID != nil {
		data["manager_id"] = fmt.Sprintf("uid:%s@%s", *u.ManagerNetID, domain)
	}

	return data
}

// CustomFieldsJSON returns the wire shape of all custom field values,
// sorted by field name for stable payloads.
func (u *User) CustomFieldsJSON() []map[string]any {
	names := make([]string, 0, len(u.CustomFields))
	for name := range u.CustomFields {
		names = append(names, name)
	}

	sort.Strings(names)

	values := make([]map[string]any, len(names))
	for i, name := range names {
		values[i] = u.CustomFields[name].ToJSON()
	}

	return values
}

// ToJSONPost is the payload shape for creating (or restoring) a user.
func (u *User) ToJSONPost(domain string) map[string]any {
	data := u.toJSON(domain)
	data["custom_field_values"] = u.CustomFieldsJSON()

	return map[string]any{"users": []map[string]any{data}}
}

// ToJSONPatch is the payload shape for updating a user. Updates change
// scalar attributes only; custom fields and roles go through their own
// endpoints.
func (u *User) ToJSONPatch(domain string) map[string]any {
	return map[string]any{"user": u.toJSON(domain)}
}
