package sync

import "github.com/avetrov/kaiten-mirror/internal/models"

// dependencyGraph maps each entity type to the types that must be
// synchronized before it. The graph is static and acyclic.
var dependencyGraph = map[models.EntityType][]models.EntityType{
	models.EntitySpaces:              nil,
	models.EntityUsers:               nil,
	models.EntityCardTypes:           nil,
	models.EntityPropertyDefinitions: nil,
	models.EntityTags:                nil,
	models.EntityRoles:               nil,
	models.EntityBoards:              {models.EntitySpaces, models.EntityUsers},
	models.EntityColumns:             {models.EntityBoards},
	models.EntityLanes:               {models.EntityBoards},
	models.EntityCards: {
		models.EntityBoards, models.EntityColumns, models.EntityLanes,
		models.EntityUsers, models.EntityCardTypes,
	},
	models.EntityTimeLogs: {models.EntityCards, models.EntityUsers},
}

// foundational entity types are structural containers; when one fails, the
// rest of the run is aborted so referrers are not synced against missing
// rows.
var foundational = map[models.EntityType]bool{
	models.EntitySpaces:  true,
	models.EntityBoards:  true,
	models.EntityColumns: true,
	models.EntityLanes:   true,
}

// IsFoundational reports whether a failure of this entity type should stop
// the remaining run.
func IsFoundational(e models.EntityType) bool {
	return foundational[e]
}

// Expand unions the requested types with the transitive closure of their
// dependencies. Order is deterministic: requested types first, discovered
// dependencies appended in discovery order.
func Expand(requested []models.EntityType) []models.EntityType {
	seen := make(map[models.EntityType]bool, len(requested))
	out := make([]models.EntityType, 0, len(requested))

	var add func(e models.EntityType)
	add = func(e models.EntityType) {
		if seen[e] {
			return
		}
		seen[e] = true
		out = append(out, e)
		for _, dep := range dependencyGraph[e] {
			add(dep)
		}
	}
	for _, e := range requested {
		add(e)
	}
	return out
}

// TopoSort orders the given types so that every type appears after all of
// its dependencies that are also present in the set. Ties keep the input
// slice order, so repeated calls with the same input produce the same
// result.
func TopoSort(kinds []models.EntityType) []models.EntityType {
	inSet := make(map[models.EntityType]bool, len(kinds))
	for _, e := range kinds {
		inSet[e] = true
	}

	visited := make(map[models.EntityType]bool, len(kinds))
	sorted := make([]models.EntityType, 0, len(kinds))

	var visit func(e models.EntityType)
	visit = func(e models.EntityType) {
		if visited[e] {
			return
		}
		visited[e] = true
		for _, dep := range dependencyGraph[e] {
			if inSet[dep] {
				visit(dep)
			}
		}
		sorted = append(sorted, e)
	}
	for _, e := range kinds {
		visit(e)
	}
	return sorted
}
