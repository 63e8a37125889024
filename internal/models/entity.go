package models

// EntityType identifies one synchronized collection. Each type maps to
// exactly one table in the kaiten schema.
type EntityType string

const (
	EntitySpaces              EntityType = "spaces"
	EntityBoards              EntityType = "boards"
	EntityColumns             EntityType = "columns"
	EntityLanes               EntityType = "lanes"
	EntityUsers               EntityType = "users"
	EntityCardTypes           EntityType = "card_types"
	EntityPropertyDefinitions EntityType = "property_definitions"
	EntityTags                EntityType = "tags"
	EntityCards               EntityType = "cards"
	EntityTimeLogs            EntityType = "time_logs"
	EntityRoles               EntityType = "roles"
)

// AllEntities returns every known entity type in a stable, dependency-safe
// listing order.
func AllEntities() []EntityType {
	return []EntityType{
		EntitySpaces,
		EntityUsers,
		EntityCardTypes,
		EntityPropertyDefinitions,
		EntityTags,
		EntityRoles,
		EntityBoards,
		EntityColumns,
		EntityLanes,
		EntityCards,
		EntityTimeLogs,
	}
}

// Valid reports whether e is one of the known entity types.
func (e EntityType) Valid() bool {
	switch e {
	case EntitySpaces, EntityBoards, EntityColumns, EntityLanes, EntityUsers,
		EntityCardTypes, EntityPropertyDefinitions, EntityTags, EntityCards,
		EntityTimeLogs, EntityRoles:
		return true
	}
	return false
}

// ModelFor returns a pointer to the zero row struct for the given entity
// type, suitable for gorm table resolution (counts, single-row updates).
func ModelFor(e EntityType) interface{} {
	switch e {
	case EntitySpaces:
		return &Space{}
	case EntityBoards:
		return &Board{}
	case EntityColumns:
		return &Column{}
	case EntityLanes:
		return &Lane{}
	case EntityUsers:
		return &User{}
	case EntityCardTypes:
		return &CardType{}
	case EntityPropertyDefinitions:
		return &PropertyDefinition{}
	case EntityTags:
		return &Tag{}
	case EntityCards:
		return &Card{}
	case EntityTimeLogs:
		return &TimeLog{}
	case EntityRoles:
		return &Role{}
	}
	return nil
}
