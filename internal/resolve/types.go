package resolve

import (
    "sort"

    "github.com/mark3labs/spec2model/internal/spec"
)

// Generic type markers. Emitters map these to their target language; the
// engine only guarantees the ladder below never fails.
const (
    TypeVoid   = "void"
    TypeAny    = "any"
    TypeObject = "object"
)

// remapReserved renames schemas that collide with built-in identifiers in
// common target languages.
func remapReserved(name string) string {
    if name == "Object" {
        return "ObjectDto"
    }
    return name
}

// ResolveType resolves a stable type name for a schema node against the
// named-schema table. Resolution order, first match wins:
//
//  1. direct named reference -> resolved name
//  2. array of a named reference -> "Name[]"
//  3. array of an inline node -> structural match, then title hint, then "any[]"
//  4. inline object -> title hint, then whole-node structural match, then "object"
//  5. primitive or nil -> "" (unresolved; callers distinguish "no schema"
//     from "opaque schema", see ResolveBodyType)
//
// No input causes an error; the worst case is the most generic fallback.
func ResolveType(node *spec.SchemaNode, schemas map[string]*spec.SchemaNode) string {
    if node == nil {
        return ""
    }
    switch node.Kind {
    case spec.KindNamedRef:
        if node.Ref == "" {
            return TypeAny
        }
        if _, ok := schemas[node.Ref]; ok {
            return remapReserved(node.Ref)
        }
        // Dangling reference: soft fallback, never an error.
        return TypeAny

    case spec.KindArray:
        return resolveArrayType(node, schemas)

    case spec.KindObject:
        if node.Title != "" {
            return remapReserved(Pascal(node.Title))
        }
        if name := structuralMatch(node, schemas); name != "" {
            return remapReserved(name)
        }
        return TypeObject

    default:
        return ""
    }
}

func resolveArrayType(node *spec.SchemaNode, schemas map[string]*spec.SchemaNode) string {
    item := node.Items
    if item == nil {
        return TypeAny + "[]"
    }
    if item.Kind == spec.KindNamedRef {
        if _, ok := schemas[item.Ref]; ok {
            return remapReserved(item.Ref) + "[]"
        }
        return TypeAny + "[]"
    }
    if name := structuralMatch(item, schemas); name != "" {
        return remapReserved(name) + "[]"
    }
    if item.Title != "" {
        return remapReserved(Pascal(item.Title)) + "[]"
    }
    return TypeAny + "[]"
}

// ResolveBodyType resolves a request-body or response schema. A missing
// schema means "void"; a schema that resolves to nothing nameable means
// "any" (an opaque body is still a body).
func ResolveBodyType(node *spec.SchemaNode, schemas map[string]*spec.SchemaNode) string {
    if node == nil {
        return TypeVoid
    }
    if t := ResolveType(node, schemas); t != "" {
        return t
    }
    return TypeAny
}

// ParamContext carries the entity context used to resolve enum parameters to
// a declared enumeration type on the entity's own schema.
type ParamContext struct {
    Entity  string
    Param   string
    Schemas map[string]*spec.SchemaNode
}

// ResolveParamType resolves a parameter schema to a type name. When the
// parameter carries an enumeration and a context is supplied, the entity
// schema's property with the same name is consulted: a named reference there
// wins. Everything else falls back to the primitive mapping.
func ResolveParamType(node *spec.SchemaNode, ctx *ParamContext) string {
    if node == nil {
        return "string"
    }
    if len(node.Enum) > 0 && ctx != nil && ctx.Schemas != nil {
        if entity, ok := ctx.Schemas[ctx.Entity]; ok && entity != nil {
            if prop, ok := entity.Properties[ctx.Param]; ok && prop != nil && prop.Kind == spec.KindNamedRef {
                if _, ok := ctx.Schemas[prop.Ref]; ok {
                    return remapReserved(prop.Ref)
                }
            }
        }
    }
    if node.Kind != spec.KindPrimitive {
        var schemas map[string]*spec.SchemaNode
        if ctx != nil {
            schemas = ctx.Schemas
        }
        if t := ResolveType(node, schemas); t != "" {
            return t
        }
    }
    return primitiveTypeName(node.Type)
}

func primitiveTypeName(typ string) string {
    switch typ {
    case "integer", "number":
        return "number"
    case "boolean":
        return "boolean"
    default:
        return "string"
    }
}

// structuralMatch compares the node's fingerprint against every named schema
// and returns the first matching name in lexicographic order, or "".
func structuralMatch(node *spec.SchemaNode, schemas map[string]*spec.SchemaNode) string {
    if node == nil || len(schemas) == 0 {
        return ""
    }
    fp := Fingerprint(node)
    names := make([]string, 0, len(schemas))
    for name := range schemas {
        names = append(names, name)
    }
    sort.Strings(names)
    for _, name := range names {
        if Fingerprint(schemas[name]) == fp {
            return name
        }
    }
    return ""
}
