package spec

import (
    "sort"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"
)

// Ingestion model consumed by the resolution and relationship packages.
//
// A SchemaNode is a tagged union decided once at ingestion: a node is either
// a reference to a named schema, an inline object, an inline array, or a
// primitive. Downstream code switches on Kind instead of probing for key
// presence at every use site.

type NodeKind int

const (
    KindNamedRef NodeKind = iota
    KindObject
    KindArray
    KindPrimitive
)

type SchemaNode struct {
    Kind NodeKind

    // Ref holds the target schema name when Kind == KindNamedRef.
    Ref string

    Type       string
    Format     string
    Title      string
    Nullable   bool
    Enum       []any
    Required   []string
    Properties map[string]*SchemaNode
    Items      *SchemaNode
}

// Document is the ingested specification: the raw openapi3 document plus the
// named-schema table converted into SchemaNode form.
type Document struct {
    Title   string
    Version string

    Doc     *openapi3.T
    Schemas map[string]*SchemaNode
}

// Ingest converts a loaded OpenAPI v3 document into the engine's model.
// It never fails on malformed schema entries; unusable entries are skipped.
func Ingest(doc *openapi3.T) *Document {
    d := &Document{Doc: doc, Schemas: map[string]*SchemaNode{}}
    if doc == nil {
        return d
    }
    if doc.Info != nil {
        d.Title = strings.TrimSpace(doc.Info.Title)
        d.Version = strings.TrimSpace(doc.Info.Version)
    }
    if doc.Components != nil && doc.Components.Schemas != nil {
        names := make([]string, 0, len(doc.Components.Schemas))
        for name := range doc.Components.Schemas {
            names = append(names, name)
        }
        sort.Strings(names)
        for _, name := range names {
            n := ToNode(doc.Components.Schemas[name])
            if n == nil {
                continue
            }
            d.Schemas[name] = n
        }
    }
    return d
}

// ToNode converts a kin-openapi schema ref into a SchemaNode, deciding the
// union variant once. Returns nil for a nil ref.
func ToNode(ref *openapi3.SchemaRef) *SchemaNode {
    if ref == nil {
        return nil
    }
    if ref.Ref != "" {
        return &SchemaNode{Kind: KindNamedRef, Ref: RefName(ref.Ref)}
    }
    v := ref.Value
    if v == nil {
        // Seen with partially dereferenced documents: an entry exists but
        // carries no content. Treat as an opaque object.
        return &SchemaNode{Kind: KindObject, Type: "object"}
    }

    n := &SchemaNode{
        Type:     strings.TrimSpace(v.Type),
        Format:   strings.TrimSpace(v.Format),
        Title:    strings.TrimSpace(v.Title),
        Nullable: v.Nullable,
        Required: append([]string(nil), v.Required...),
    }
    if len(v.Enum) > 0 {
        n.Enum = append([]any(nil), v.Enum...)
    }
    if v.Items != nil {
        n.Items = ToNode(v.Items)
    }
    if len(v.Properties) > 0 {
        n.Properties = make(map[string]*SchemaNode, len(v.Properties))
        keys := make([]string, 0, len(v.Properties))
        for name := range v.Properties {
            keys = append(keys, name)
        }
        sort.Strings(keys)
        for _, name := range keys {
            if pn := ToNode(v.Properties[name]); pn != nil {
                n.Properties[name] = pn
            }
        }
    }

    switch {
    case n.Type == "array" || n.Items != nil:
        n.Kind = KindArray
        n.Type = "array"
    case n.Type == "object" || len(n.Properties) > 0:
        n.Kind = KindObject
        n.Type = "object"
    case n.Type == "":
        // No discriminating keys at all; treat as an opaque object.
        n.Kind = KindObject
        n.Type = "object"
    default:
        n.Kind = KindPrimitive
    }
    return n
}

// RefName extracts the schema name from a $ref like
// "#/components/schemas/Pet" or "#/definitions/Pet".
func RefName(ref string) string {
    if ref == "" {
        return ""
    }
    parts := strings.Split(ref, "/")
    return parts[len(parts)-1]
}

// IsObject reports whether the node has an object shape.
func (n *SchemaNode) IsObject() bool {
    return n != nil && n.Kind == KindObject
}

// PropertyNames returns the node's property names in sorted order.
func (n *SchemaNode) PropertyNames() []string {
    if n == nil || len(n.Properties) == 0 {
        return nil
    }
    keys := make([]string, 0, len(n.Properties))
    for k := range n.Properties {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    return keys
}
