package bridge_test

import (
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/pointers"
	"github.com/stretchr/testify/assert"

	"github.com/uwtools/go-bridge/pkg/clients/bridge"
)

func TestCustomFieldToJSON(t *testing.T) {
	tests := []struct {
		name     string
		field    bridge.CustomField
		expected map[string]any
	}{
		{
			name: "Without value id",
			field: bridge.CustomField{
				FieldID: "9",
				Name:    bridge.CustomFieldRegid,
				Value:   pointers.To("6B79E4406A7D1"),
			},
			expected: map[string]any{
				"custom_field_id": "9",
				"value":           pointers.To("6B79E4406A7D1"),
			},
		},
		{
			name: "With value id",
			field: bridge.CustomField{
				FieldID: "9",
				Name:    bridge.CustomFieldRegid,
				ValueID: "754517",
				Value:   pointers.To("6B79E4406A7D1"),
			},
			expected: map[string]any{
				"custom_field_id": "9",
				"value":           pointers.To("6B79E4406A7D1"),
				"id":              "754517",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.field.ToJSON())
		})
	}
}

func TestCustomFieldIs(t *testing.T) {
	field := bridge.CustomField{FieldID: "5", Name: "regid"}

	assert.True(t, field.Is("regid"))
	assert.True(t, field.Is("REGID"))
	assert.False(t, field.Is("employee_id"))
}

func TestUserRoleIs(t *testing.T) {
	assert.True(t, bridge.UserRole{ID: "author", Name: "Author"}.Is("author"))
	assert.True(t, bridge.UserRole{ID: "author", Name: "Author"}.Is(bridge.RoleAuthor))
	assert.False(t, bridge.UserRole{ID: "author", Name: "Author"}.Is("admin"))
	assert.False(t, bridge.UserRole{ID: "author"}.Is(""))
}

func TestUserAddRole(t *testing.T) {
	user := bridge.NewUser("javerage")

	user.AddRole(bridge.UserRole{ID: "author", Name: "Author"})
	user.AddRole(bridge.UserRole{ID: "author", Name: "AUTHOR"})
	user.AddRole(bridge.UserRole{ID: "campus_admin", Name: "Campus Admin"})

	assert.Equal(t, []string{"author", "campus_admin"}, user.RoleIDs())

	user.DeleteRole(bridge.UserRole{ID: "author"})
	assert.Equal(t, []string{"campus_admin"}, user.RoleIDs())

	user.DeleteRole(bridge.UserRole{ID: "absent"})
	assert.Equal(t, []string{"campus_admin"}, user.RoleIDs())
}

func TestUserPredicates(t *testing.T) {
	user := bridge.NewUser("javerage")

	assert.Equal(t, "javerage@uw.edu", user.UID("uw.edu"))
	assert.Equal(t, "en", user.Locale)
	assert.False(t, user.HasBridgeID())
	assert.False(t, user.IsDeleted())
	assert.False(t, user.HasManager())
	assert.False(t, user.HasCustomFields())

	// Course summary was not requested, so the count is a sentinel,
	// not a real zero.
	assert.Equal(t, bridge.NoCourseSummary, user.CompletedCoursesCount)
	assert.False(t, user.HasCourseSummary())
	assert.False(t, user.NoLearningHistory())

	user.CompletedCoursesCount = 0
	assert.True(t, user.HasCourseSummary())
	assert.True(t, user.NoLearningHistory())

	user.CompletedCoursesCount = 3
	assert.True(t, user.HasCourseSummary())
	assert.False(t, user.NoLearningHistory())

	user.BridgeID = 195
	assert.True(t, user.HasBridgeID())

	now := time.Now()
	user.DeletedAt = &now
	assert.True(t, user.IsDeleted())

	user.ManagerNetID = pointers.To("boss")
	assert.True(t, user.HasManager())
}

func TestUserSortableName(t *testing.T) {
	tests := []struct {
		name      string
		firstName *string
		lastName  *string
		expected  string
	}{
		{
			name:      "Both names",
			firstName: pointers.To("James"),
			lastName:  pointers.To("Student"),
			expected:  "Student, James",
		},
		{
			name:     "No names",
			expected: ", ",
		},
		{
			name:     "Last name only",
			lastName: pointers.To("Student"),
			expected: "Student, ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := bridge.NewUser("javerage")
			user.FirstName = tt.firstName
			user.LastName = tt.lastName

			assert.Equal(t, tt.expected, user.SortableName())
		})
	}
}

func TestUserUpdateCustomField(t *testing.T) {
	user := bridge.NewUser("javerage")
	user.CustomFields[bridge.CustomFieldRegid] = &bridge.CustomField{
		FieldID: "5",
		Name:    bridge.CustomFieldRegid,
		Value:   pointers.To("old"),
	}

	user.UpdateCustomField(bridge.CustomFieldRegid, "new")
	assert.Equal(t, "new", *user.GetCustomField(bridge.CustomFieldRegid).Value)

	// Unknown field names are a no-op, not an implicit add.
	user.UpdateCustomField("absent", "value")
	assert.Nil(t, user.GetCustomField("absent"))
	assert.Len(t, user.CustomFields, 1)
}

func TestUserToJSONPost(t *testing.T) {
	user := bridge.NewUser("iamstudent")
	user.Email = "iamstudent@uw.edu"
	user.FullName = "Iam Student"
	user.FirstName = pointers.To("Iam")
	user.LastName = pointers.To("Student")
	user.Department = pointers.To("Testing")
	user.ManagerNetID = pointers.To("boss")
	user.CustomFields[bridge.CustomFieldRegid] = &bridge.CustomField{
		FieldID: "5",
		Name:    bridge.CustomFieldRegid,
		Value:   pointers.To("ABCDEF"),
	}
	user.CustomFields[bridge.CustomFieldEmployeeID] = &bridge.CustomField{
		FieldID: "6",
		Name:    bridge.CustomFieldEmployeeID,
		ValueID: "100",
		Value:   pointers.To("123456789"),
	}

	expected := map[string]any{
		"users": []map[string]any{{
			"uid":           "iamstudent@uw.edu",
			"email":         "iamstudent@uw.edu",
			"full_name":     "Iam Student",
			"first_name":    "Iam",
			"last_name":     "Student",
			"sortable_name": "Student, Iam",
			"department":    "Testing",
			"manager_id":    "uid:boss@uw.edu",
			"custom_field_values": []map[string]any{
				{
					"custom_field_id": "6",
					"id":              "100",
					"value":           pointers.To("123456789"),
				},
				{
					"custom_field_id": "5",
					"value":           pointers.To("ABCDEF"),
				},
			},
		}},
	}

	assert.Equal(t, expected, user.ToJSONPost("uw.edu"))
}

func TestUserToJSONPatch(t *testing.T) {
	user := bridge.NewUser("javerage")
	user.BridgeID = 195
	user.Email = "javerage@uw.edu"
	user.FullName = "James Student"
	user.ManagerID = 42
	user.ManagerNetID = pointers.To("boss")
	user.CustomFields[bridge.CustomFieldRegid] = &bridge.CustomField{
		FieldID: "5",
		Name:    bridge.CustomFieldRegid,
		Value:   pointers.To("ABCDEF"),
	}

	// Patches carry scalar attributes only; custom field values never
	// ride along. A numeric manager id wins over the manager netid.
	expected := map[string]any{
		"user": map[string]any{
			"uid":        "javerage@uw.edu",
			"email":      "javerage@uw.edu",
			"full_name":  "James Student",
			"id":         195,
			"manager_id": 42,
		},
	}

	assert.Equal(t, expected, user.ToJSONPatch("uw.edu"))
}

func TestUserToJSONPatchNoManager(t *testing.T) {
	user := bridge.NewUser("javerage")
	user.Email = "javerage@uw.edu"
	user.FullName = "James Student"

	data, ok := user.ToJSONPatch("uw.edu")["user"].(map[string]any)
	assert.True(t, ok)
	assert.NotContains(t, data, "manager_id")
	assert.NotContains(t, data, "id")
	assert.NotContains(t, data, "sortable_name")
}
