package relations

import (
    "sort"
    "time"

    "github.com/mark3labs/spec2model/internal/resolve"
    "github.com/mark3labs/spec2model/internal/spec"
)

// ExportVersion is the semantic version of the export document format.
const ExportVersion = "1.0.0"

// Infer runs the three detectors over the catalog and named-schema table,
// merges their candidates, and returns the relationship records plus the
// entity descriptors keyed by entity name. Detectors abstain on anything
// that does not match their pattern; Infer itself never fails.
func Infer(catalog resolve.Catalog, schemas map[string]*spec.SchemaNode) ([]Relationship, map[string]Entity) {
    idx := buildEntityIndex(catalog, schemas)

    var cands []candidate
    cands = append(cands, detectSchemaRefs(idx, schemas)...)
    cands = append(cands, detectNamingPatterns(idx, schemas)...)
    cands = append(cands, detectPathPatterns(idx, catalog)...)
    rels := merge(cands)

    entities := buildEntities(catalog, schemas, rels)
    return rels, entities
}

func buildEntities(catalog resolve.Catalog, schemas map[string]*spec.SchemaNode, rels []Relationship) map[string]Entity {
    entities := map[string]Entity{}

    tags := make([]string, 0, len(catalog))
    for tag := range catalog {
        tags = append(tags, tag)
    }
    sort.Strings(tags)

    for _, tag := range tags {
        name := resolve.EntityName(tag, schemas)
        e, ok := entities[name]
        if !ok {
            e = Entity{Name: name}
        }
        for _, op := range catalog[tag] {
            e.Endpoints = append(e.Endpoints, Endpoint{
                Method: op.Method,
                Path:   op.Path,
                Name:   op.Name,
            })
        }
        entities[name] = e
    }

    for _, r := range SortRelationships(rels) {
        e, ok := entities[r.SourceEntity]
        if !ok {
            continue
        }
        e.Relationships = append(e.Relationships, r)
        entities[r.SourceEntity] = e
    }
    return entities
}

// BuildExport runs the full inference pass and assembles the validated
// export document. The relationships are sorted before construction so the
// serialized artifact is reproducible across runs on identical input.
func BuildExport(doc *spec.Document, catalog resolve.Catalog, now time.Time) (*Export, error) {
    var title, version string
    if doc != nil {
        title, version = doc.Title, doc.Version
    }
    var schemas map[string]*spec.SchemaNode
    if doc != nil {
        schemas = doc.Schemas
    }

    rels, entities := Infer(catalog, schemas)
    meta := Metadata{
        SpecTitle:          title,
        SpecVersion:        version,
        GeneratedAt:        now.UTC().Format(time.RFC3339),
        TotalEntities:      len(entities),
        TotalRelationships: len(rels),
        ExportVersion:      ExportVersion,
    }
    return NewExport(meta, entities, SortRelationships(rels))
}
