package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/uwtools/go-bridge/pkg/utils/errs"
)

const customFieldsPath = "/api/author/custom_fields"

var (
	ErrGetCustomFields  = errors.New("error getting Bridge custom fields")
	ErrUnknownFieldName = errors.New("unknown custom field name")
)

// CustomFields is the tenant's custom field schema: the id-to-name
// mapping fetched once at construction and read-only afterwards, so a
// single catalog may be shared across concurrent readers. Staleness
// across server-side schema changes is an accepted limitation.
type CustomFields struct {
	fields   []*CustomField
	nameToID map[string]string
	idToName map[string]string
}

// LoadCustomFields fetches the full custom field schema. It fails fast
// on a fetch error; it does not retry.
func LoadCustomFields(ctx context.Context, client *Client) (*CustomFields, error) {
	body, err := client.GetResource(ctx, customFieldsPath)
	if err != nil {
		return nil, errs.Wrap(ErrGetCustomFields, err)
	}

	var schema customFieldsSchema
	if err := json.Unmarshal(body, &schema); err != nil {
		return nil, errs.Wrap(ErrGetCustomFields, err)
	}

	catalog := &CustomFields{
		nameToID: make(map[string]string, len(schema.CustomFields)),
		idToName: make(map[string]string, len(schema.CustomFields)),
	}

	for _, field := range schema.CustomFields {
		if field.ID == "" || field.Name == "" {
			continue
		}

		name := strings.ToLower(field.Name)
		catalog.fields = append(catalog.fields, &CustomField{FieldID: field.ID, Name: name})
		catalog.nameToID[name] = field.ID
		catalog.idToName[field.ID] = name
	}

	return catalog, nil
}

// Fields returns the catalog's field definitions.
func (c *CustomFields) Fields() []*CustomField {
	return c.fields
}

func (c *CustomFields) FieldID(name string) (string, bool) {
	id, ok := c.nameToID[strings.ToLower(name)]
	return id, ok
}

func (c *CustomFields) FieldName(id string) (string, bool) {
	name, ok := c.idToName[id]
	return name, ok
}

// NewCustomField builds a value for a write payload, resolving the
// field id from the given field name.
func (c *CustomFields) NewCustomField(name, value string) (*CustomField, error) {
	id, ok := c.FieldID(name)
	if !ok {
		return nil, errs.Wrapf(ErrUnknownFieldName, "%s", name)
	}

	return &CustomField{
		FieldID: id,
		Name:    strings.ToLower(name),
		Value:   &value,
	}, nil
}
