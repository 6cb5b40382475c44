package relations

import "sort"

// SortRelationships returns a new slice ordered lexicographically by
// (sourceEntity, targetEntity). The input is never mutated and sorting a
// sorted slice returns an equal slice.
func SortRelationships(rels []Relationship) []Relationship {
    out := append([]Relationship(nil), rels...)
    sort.SliceStable(out, func(i, j int) bool {
        if out[i].SourceEntity != out[j].SourceEntity {
            return out[i].SourceEntity < out[j].SourceEntity
        }
        return out[i].TargetEntity < out[j].TargetEntity
    })
    return out
}

// SortEntities returns the entity descriptors ordered by name. The input map
// is never mutated.
func SortEntities(entities map[string]Entity) []Entity {
    out := make([]Entity, 0, len(entities))
    for _, e := range entities {
        out = append(out, e)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out
}
