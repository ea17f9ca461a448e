package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformedPage         = errors.New("malformed user page")
	ErrUnresolvedCustomField = errors.New("custom field id not in schema")
)

// processPages walks a paginated, relationally-linked user listing and
// merges every page into flat User objects. Pages are fetched strictly
// sequentially: the next page's request is not issued until the current
// page has been parsed.
func (u *Users) processPages(ctx context.Context, body []byte, opts ListOptions) ([]*User, error) {
	var users []*User

	for {
		var page userPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, apiErr.Wrapf(err, "failed to decode user page")
		}

		next := ""
		if page.Meta != nil {
			next = page.Meta.Next
		}

		var err error

		users, err = u.processPage(&page, users, opts)
		if err != nil {
			return nil, err
		}

		if next == "" {
			return users, nil
		}

		body, err = u.client.GetResource(ctx, next)
		if err != nil {
			return nil, err
		}
	}
}

// processPage hydrates one page's user records. A page without the
// linked and users sections cannot be trusted and aborts the fetch; a
// single bad user record is logged and skipped.
func (u *Users) processPage(page *userPage, users []*User, opts ListOptions) ([]*User, error) {
	if page.Linked == nil || page.Users == nil {
		return nil, apiErr.Wrapf(ErrMalformedPage, "missing linked or users section")
	}

	valuesByID, err := u.resolveLinkedValues(page.Linked, opts.IncludeCustomFields)
	if err != nil {
		return nil, err
	}

	for _, raw := range *page.Users {
		var record rawUser
		if err := json.Unmarshal(raw, &record); err != nil {
			u.client.logger.Error("skipping malformed user record", "error", err)
			continue
		}

		// Skip soft-deleted records before resolving fields and roles.
		if opts.ExcludeDeleted && record.DeletedAt != nil {
			continue
		}

		user, err := u.hydrateUser(&record, valuesByID, opts)
		if err != nil {
			u.client.logger.Error("skipping malformed user record", "uid", record.UID, "error", err)
			continue
		}

		users = append(users, user)
	}

	return users, nil
}

// resolveLinkedValues turns the page's linked custom_field_values rows
// into named CustomField objects keyed by value row id. Field names
// come from the page's embedded custom_fields table, falling back to
// the loaded catalog; an id that resolves in neither marks the page
// malformed.
func (u *Users) resolveLinkedValues(
	linked *linkedData,
	includeCustomFields bool,
) (map[string]*CustomField, error) {
	values := make(map[string]*CustomField)
	if !includeCustomFields {
		return values, nil
	}

	names := make(map[string]string, len(linked.CustomFields))

	for _, field := range linked.CustomFields {
		if field.ID != "" && field.Name != "" {
			names[field.ID] = strings.ToLower(field.Name)
		}
	}

	for _, row := range linked.CustomFieldValues {
		fieldID := row.Links.CustomField.ID

		name, ok := names[fieldID]
		if !ok {
			name, ok = u.customFields.FieldName(fieldID)
		}

		if !ok {
			return nil, apiErr.
				With("custom_field_id", fieldID).
				With("value_id", row.ID).
				Wrapf(ErrUnresolvedCustomField, "resolving linked value rows")
		}

		values[row.ID] = &CustomField{
			FieldID: fieldID,
			Name:    name,
			ValueID: row.ID,
			Value:   row.Value,
		}
	}

	return values, nil
}

func (u *Users) hydrateUser(
	record *rawUser,
	valuesByID map[string]*CustomField,
	opts ListOptions,
) (*User, error) {
	bridgeID, err := record.ID.Int64()
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", record.ID.String(), err)
	}

	user := NewUser(strings.TrimSuffix(record.UID, "@"+u.client.emailDomain))
	user.BridgeID = int(bridgeID)
	user.Email = record.Email
	user.FullName = record.FullName
	user.FirstName = record.FirstName
	user.LastName = record.LastName
	user.Department = record.Department
	user.JobTitle = record.JobTitle
	user.IsManager = record.IsManager
	user.Unsubscribed = record.Unsubscribed

	if record.Locale != nil {
		user.Locale = *record.Locale
	}

	if record.CompletedCoursesCount != nil {
		user.CompletedCoursesCount = *record.CompletedCoursesCount
	}

	if record.ManagerID != "" {
		managerID, err := record.ManagerID.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid manager id %q: %w", record.ManagerID.String(), err)
		}

		user.ManagerID = int(managerID)
	}

	if user.DeletedAt, err = parseDate(record.DeletedAt); err != nil {
		return nil, err
	}

	if user.LoggedInAt, err = parseDate(record.LoggedInAt); err != nil {
		return nil, err
	}

	if user.UpdatedAt, err = parseDate(record.UpdatedAt); err != nil {
		return nil, err
	}

	if user.NextDueDate, err = parseDate(record.NextDueDate); err != nil {
		return nil, err
	}

	if opts.IncludeCustomFields && record.Links != nil {
		// Orphaned value row ids are skipped per value, not page-fatal.
		for _, valueID := range record.Links.CustomFieldValues {
			if field, ok := valuesByID[valueID]; ok {
				user.CustomFields[field.Name] = field
			}
		}
	}

	for _, roleID := range record.Roles {
		name, ok := u.userRoles.RoleName(roleID)
		if !ok {
			u.client.logger.Debug("skipping unresolved role", "role_id", roleID, "uid", record.UID)
			continue
		}

		user.AddRole(UserRole{ID: roleID, Name: name})
	}

	return user, nil
}

// parseDate parses Bridge's ISO-8601-with-offset timestamps. Absent or
// null input yields nil, not an error.
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}

	return &parsed, nil
}
