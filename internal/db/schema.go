package db

import "slices"

// Collection names.
const (
	AreaTypes      = "areaTypes"
	Areas          = "areas"
	AreaGroups     = "areaGroups"
	AreaGroupAreas = "areaGroupAreas"
	Items          = "items"
	ItemParts      = "itemParts"
)

// Index is a secondary lookup on a single top-level record field. Unique
// indexes are enforced by the table definition in migrations/.
type Index struct {
	Name   string
	Field  string
	Unique bool
}

// Collection describes one object store: the record fields forming its
// primary key, whether that key is generated, and its secondary indexes. The
// table backing it has one column per key field and per index field plus the
// JSON document in "data".
type Collection struct {
	Name          string
	KeyPath       []string
	AutoIncrement bool
	Indexes       []Index
}

// Schema lists every collection in the database, in export order.
var Schema = []Collection{
	{
		Name:          AreaTypes,
		KeyPath:       []string{"id"},
		AutoIncrement: true,
		Indexes:       []Index{{Name: "name", Field: "name", Unique: true}},
	},
	{
		Name:          Areas,
		KeyPath:       []string{"id"},
		AutoIncrement: true,
		Indexes: []Index{
			{Name: "name", Field: "name"},
			{Name: "areaTypeId", Field: "areaTypeId"},
		},
	},
	{
		Name:          AreaGroups,
		KeyPath:       []string{"id"},
		AutoIncrement: true,
		Indexes:       []Index{{Name: "name", Field: "name", Unique: true}},
	},
	{
		Name:    AreaGroupAreas,
		KeyPath: []string{"groupId", "areaId"},
		Indexes: []Index{
			{Name: "groupId", Field: "groupId"},
			{Name: "areaId", Field: "areaId"},
		},
	},
	{
		Name:          Items,
		KeyPath:       []string{"id"},
		AutoIncrement: true,
		Indexes: []Index{
			{Name: "name", Field: "name"},
			{Name: "areaId", Field: "areaId"},
		},
	},
	{
		Name:          ItemParts,
		KeyPath:       []string{"id"},
		AutoIncrement: true,
		Indexes: []Index{
			{Name: "name", Field: "name"},
			{Name: "itemId", Field: "itemId"},
			{Name: "lastDoneAt", Field: "lastDoneAt"},
		},
	},
}

var schemaByName = func() map[string]*Collection {
	m := make(map[string]*Collection, len(Schema))
	for i := range Schema {
		m[Schema[i].Name] = &Schema[i]
	}
	return m
}()

func lookup(name string) (*Collection, bool) {
	c, ok := schemaByName[name]
	return c, ok
}

func (c *Collection) index(name string) (Index, bool) {
	for _, idx := range c.Indexes {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// valueFields returns the non-key fields stored in their own column.
func (c *Collection) valueFields() []string {
	fields := make([]string, 0, len(c.Indexes))
	for _, idx := range c.Indexes {
		if c.isKeyField(idx.Field) || slices.Contains(fields, idx.Field) {
			continue
		}
		fields = append(fields, idx.Field)
	}
	return fields
}

func (c *Collection) isKeyField(field string) bool {
	return slices.Contains(c.KeyPath, field)
}

