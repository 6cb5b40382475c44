package relations

import (
    "fmt"
    "regexp"
    "sort"
    "strings"

    "github.com/mark3labs/spec2model/internal/resolve"
    "github.com/mark3labs/spec2model/internal/spec"
)

// candidate is one detector's raw observation before merging.
type candidate struct {
    source string
    target string
    typ    Type
    ev     Evidence
}

// entityIndex maps normalized nouns (singular, lowercased) to entity names,
// built from the catalog's tags and the matching named schemas.
type entityIndex struct {
    byNoun map[string]string
    names  []string // sorted entity names
}

func buildEntityIndex(catalog resolve.Catalog, schemas map[string]*spec.SchemaNode) *entityIndex {
    idx := &entityIndex{byNoun: map[string]string{}}
    tags := make([]string, 0, len(catalog))
    for tag := range catalog {
        tags = append(tags, tag)
    }
    sort.Strings(tags)
    for _, tag := range tags {
        name := resolve.EntityName(tag, schemas)
        idx.add(name, name)
        idx.add(tag, name)
    }
    seen := map[string]struct{}{}
    for _, name := range idx.byNoun {
        if _, ok := seen[name]; ok {
            continue
        }
        seen[name] = struct{}{}
        idx.names = append(idx.names, name)
    }
    sort.Strings(idx.names)
    return idx
}

func (idx *entityIndex) add(noun, entity string) {
    key := normalizeNoun(noun)
    if key == "" {
        return
    }
    if _, exists := idx.byNoun[key]; !exists {
        idx.byNoun[key] = entity
    }
}

// lookup resolves a free-form noun (path segment, foreign-key stem, schema
// name) to an entity name, or "".
func (idx *entityIndex) lookup(noun string) string {
    return idx.byNoun[normalizeNoun(noun)]
}

func normalizeNoun(s string) string {
    return strings.ToLower(resolve.Singular(strings.TrimSpace(s)))
}

// detectSchemaRefs finds explicit references between entity schemas: a
// property referencing another named schema is hasOne, an array of
// references is hasMany.
func detectSchemaRefs(idx *entityIndex, schemas map[string]*spec.SchemaNode) []candidate {
    var out []candidate
    for _, entity := range idx.names {
        schema := schemas[entity]
        if schema == nil {
            continue
        }
        for _, prop := range schema.PropertyNames() {
            node := schema.Properties[prop]
            loc := fmt.Sprintf("#/components/schemas/%s/properties/%s", entity, prop)

            switch {
            case node.Kind == spec.KindNamedRef:
                if target := idx.lookup(node.Ref); target != "" && target != entity {
                    out = append(out, candidate{
                        source: entity, target: target, typ: HasOne,
                        ev: Evidence{
                            Source:   SourceSchemaRef,
                            Location: loc,
                            Details:  fmt.Sprintf("property %q references %s", prop, node.Ref),
                        },
                    })
                }
            case node.Kind == spec.KindArray && node.Items != nil && node.Items.Kind == spec.KindNamedRef:
                if target := idx.lookup(node.Items.Ref); target != "" && target != entity {
                    out = append(out, candidate{
                        source: entity, target: target, typ: HasMany,
                        ev: Evidence{
                            Source:   SourceSchemaRef,
                            Location: loc,
                            Details:  fmt.Sprintf("property %q is an array of %s", prop, node.Items.Ref),
                        },
                    })
                }
            }
        }
    }
    return out
}

var (
    fkScalarRe = regexp.MustCompile(`^(.+?)(Id|_id)$`)
    fkArrayRe  = regexp.MustCompile(`^(.+?)(Ids|_ids)$`)
)

// detectNamingPatterns finds implicit foreign keys: a scalar property named
// <entity>Id / <entity>_id without an explicit reference implies belongsTo;
// an array of such keys implies hasMany.
func detectNamingPatterns(idx *entityIndex, schemas map[string]*spec.SchemaNode) []candidate {
    var out []candidate
    for _, entity := range idx.names {
        schema := schemas[entity]
        if schema == nil {
            continue
        }
        for _, prop := range schema.PropertyNames() {
            node := schema.Properties[prop]
            if node.Kind == spec.KindNamedRef {
                continue // explicit references belong to the schema_ref detector
            }
            loc := fmt.Sprintf("#/components/schemas/%s/properties/%s", entity, prop)

            if node.Kind == spec.KindArray {
                m := fkArrayRe.FindStringSubmatch(prop)
                if m == nil {
                    continue
                }
                if target := idx.lookup(m[1]); target != "" && target != entity {
                    out = append(out, candidate{
                        source: entity, target: target, typ: HasMany,
                        ev: Evidence{
                            Source:   SourceNamingPattern,
                            Location: loc,
                            Details:  fmt.Sprintf("property %q is an array of foreign keys to %s", prop, target),
                        },
                    })
                }
                continue
            }

            m := fkScalarRe.FindStringSubmatch(prop)
            if m == nil {
                continue
            }
            if target := idx.lookup(m[1]); target != "" && target != entity {
                out = append(out, candidate{
                    source: entity, target: target, typ: BelongsTo,
                    ev: Evidence{
                        Source:   SourceNamingPattern,
                        Location: loc,
                        Details:  fmt.Sprintf("property %q implies a foreign key to %s", prop, target),
                    },
                })
            }
        }
    }
    return out
}

// detectPathPatterns finds nesting in URL templates: a path shaped
// /<parent>/{parentId}/<child> implies the parent hasMany child.
func detectPathPatterns(idx *entityIndex, catalog resolve.Catalog) []candidate {
    var out []candidate
    tags := make([]string, 0, len(catalog))
    for tag := range catalog {
        tags = append(tags, tag)
    }
    sort.Strings(tags)

    seen := map[string]struct{}{}
    for _, tag := range tags {
        for _, op := range catalog[tag] {
            if _, done := seen[op.Path]; done {
                continue
            }
            seen[op.Path] = struct{}{}
            out = append(out, pathCandidates(idx, op.Path)...)
        }
    }
    return out
}

func pathCandidates(idx *entityIndex, path string) []candidate {
    segs := strings.Split(strings.Trim(path, "/"), "/")
    var out []candidate
    for i := 0; i+2 < len(segs); i++ {
        if isTemplateSegment(segs[i]) || !isTemplateSegment(segs[i+1]) || isTemplateSegment(segs[i+2]) {
            continue
        }
        parent := idx.lookup(segs[i])
        child := idx.lookup(segs[i+2])
        if parent == "" || child == "" || parent == child {
            continue
        }
        out = append(out, candidate{
            source: parent, target: child, typ: HasMany,
            ev: Evidence{
                Source:   SourcePathPattern,
                Location: path,
                Details:  fmt.Sprintf("path nests %s under %s", child, parent),
            },
        })
    }
    return out
}

func isTemplateSegment(s string) bool {
    return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}
