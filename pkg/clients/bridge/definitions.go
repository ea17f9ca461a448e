package bridge

import "encoding/json"

// Bridge listings use a relational-join convention: the top-level
// "linked" section carries referenced entities by id, separate from the
// primary "users" array. Individual user records are kept raw so a bad
// record can be skipped without losing the rest of the page.
type userPage struct {
	Meta   *pageMeta          `json:"meta"`
	Linked *linkedData        `json:"linked"`
	Users  *[]json.RawMessage `json:"users"`
}

type pageMeta struct {
	Next string `json:"next"`
}

type linkedData struct {
	CustomFields      []fieldDefinition `json:"custom_fields"`
	CustomFieldValues []fieldValueRow   `json:"custom_field_values"`
}

type fieldDefinition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// fieldValueRow references its field definition by id, not by name.
type fieldValueRow struct {
	ID    string  `json:"id"`
	Value *string `json:"value"`
	Links struct {
		CustomField struct {
			ID string `json:"id"`
		} `json:"custom_field"`
	} `json:"links"`
}

type rawUser struct {
	ID                    json.Number `json:"id"`
	UID                   string      `json:"uid"`
	Email                 string      `json:"email"`
	FullName              string      `json:"full_name"`
	FirstName             *string     `json:"first_name"`
	LastName              *string     `json:"last_name"`
	Department            *string     `json:"department"`
	JobTitle              *string     `json:"job_title"`
	Locale                *string     `json:"locale"`
	IsManager             *bool       `json:"is_manager"`
	ManagerID             json.Number `json:"manager_id"`
	DeletedAt             *string     `json:"deleted_at"`
	LoggedInAt            *string     `json:"loggedInAt"`
	UpdatedAt             *string     `json:"updated_at"`
	Unsubscribed          *string     `json:"unsubscribed"`
	NextDueDate           *string     `json:"next_due_date"`
	CompletedCoursesCount *int        `json:"completed_courses_count"`
	Roles                 []string    `json:"roles"`
	Links                 *struct {
		CustomFieldValues []string `json:"custom_field_values"`
	} `json:"links"`
}

type customFieldsSchema struct {
	CustomFields []fieldDefinition `json:"custom_fields"`
}

type rolesSchema struct {
	Roles []roleDefinition `json:"roles"`
}

type roleDefinition struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	IsDeprecated bool   `json:"is_deprecated"`
}
