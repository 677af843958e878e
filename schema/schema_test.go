package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
resourceTypes:
  - name: Person
    key: id
    properties:
      - name: Id
      - name: FirstName
      - name: Email
        column: email_address
    navigations:
      - name: Manager_Person
        target: Person
        foreignKey: manager_id
      - name: Reports
        target: Person
        foreignKey: manager_id
        many: true
        relation: DirectReports
resourceSets:
  - name: People
    type: Person
`

func TestParse_Defaults(t *testing.T) {
	s, err := Parse([]byte(testSchema))
	require.NoError(t, err)

	person := s.FindResourceType("Person")
	require.NotNil(t, person)
	assert.Equal(t, "person", person.Table)
	assert.Equal(t, "first_name", person.Column("FirstName"))
	assert.Equal(t, "email_address", person.Column("Email"))
	assert.Equal(t, "raw_column", person.Column("raw_column"))

	manager := person.FindNavigation("Manager_Person")
	require.NotNil(t, manager)
	assert.Equal(t, "Manager", manager.Relation)
	assert.Same(t, person, manager.Target)
	assert.Same(t, manager, person.FindRelation("Manager"))

	reports := person.FindNavigation("Reports")
	require.NotNil(t, reports)
	assert.Equal(t, "DirectReports", reports.Relation)
	assert.True(t, reports.Many)

	set := s.FindResourceSet("People")
	require.NotNil(t, set)
	assert.Same(t, person, set.Type)

	assert.Nil(t, s.FindResourceSet("Nobody"))
	assert.Nil(t, person.FindProperty("Missing"))
}

func TestParse_UnknownTypes(t *testing.T) {
	_, err := Parse([]byte(`
resourceSets:
  - name: People
    type: Person
`))
	assert.ErrorContains(t, err, "resource set 'People' has unknown type 'Person'")

	_, err = Parse([]byte(`
resourceTypes:
  - name: Person
    key: id
    navigations:
      - name: Pet
        target: Animal
        foreignKey: pet_id
`))
	assert.ErrorContains(t, err, "navigation 'Pet' on 'Person' targets unknown type 'Animal'")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.ResourceTypes, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRelationName(t *testing.T) {
	cases := map[string]string{
		"Customer_Person":   "Customer",
		"Address_Address":   "Address",
		"Orders":            "Orders",
		"_Leading":          "_Leading",
		"Billing_Address_A": "Billing_Address",
	}

	for name, expected := range cases {
		assert.Equal(t, expected, RelationName(name), name)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`
resourceTypes:
  - name: Person
    properties:
      - name: Id
`))
	assert.ErrorContains(t, err, "invalid schema")
	assert.ErrorContains(t, err, "key is required")

	_, err = Parse([]byte(`
resourceSets:
  - name: People
    type: Person
    colour: blue
`))
	assert.ErrorContains(t, err, "invalid schema")

	_, err = Parse([]byte(`resourceTypes: [`))
	assert.ErrorContains(t, err, "parse schema")
}
