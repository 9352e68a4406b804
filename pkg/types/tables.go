package types

// Standard table names for Store.GetTable.
const (
	TableEntities   = "entities"
	TableAttributes = "attributes"
	TableSecurity   = "security"
	TableDeployment = "deployment"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	TableEntities,
	TableAttributes,
	TableSecurity,
	TableDeployment,
}

// ParentTable returns the table a record kind references through its
// entity_id field, and whether that reference is required. Tables without
// a parent return "".
func ParentTable(name string) (parent string, required bool) {
	switch name {
	case TableAttributes:
		return TableEntities, true
	case TableSecurity:
		return TableEntities, false
	default:
		return "", false
	}
}
