package spec

import (
    "strings"

    "gopkg.in/yaml.v3"
)

// preprocessV2ForCompatibility rewrites non-compliant Swagger v2 operations so
// kin-openapi can convert them to v3:
//   - multiple body parameters are merged into one body parameter whose schema
//     is an object with one property per original parameter;
//   - operations mixing body and formData parameters have their body
//     parameters converted to formData equivalents, and multipart/form-data is
//     added to consumes.
//
// Returns possibly-modified YAML bytes and whether anything changed. On parse
// or serialization errors the original bytes are returned unmodified.
func preprocessV2ForCompatibility(data []byte) ([]byte, bool, error) {
    var doc map[string]any
    if err := yaml.Unmarshal(data, &doc); err != nil {
        return data, false, err
    }
    paths, ok := doc["paths"].(map[string]any)
    if !ok || len(paths) == 0 {
        return data, false, nil
    }

    modified := false
    for _, raw := range paths {
        item, ok := raw.(map[string]any)
        if !ok {
            continue
        }
        for method, opRaw := range item {
            if !isVerb(method) {
                continue
            }
            op, ok := opRaw.(map[string]any)
            if !ok {
                continue
            }
            if rewriteV2Operation(op) {
                modified = true
            }
        }
    }

    if !modified {
        return data, false, nil
    }
    out, err := yaml.Marshal(doc)
    if err != nil {
        return data, false, err
    }
    return out, true, nil
}

func isVerb(s string) bool {
    switch strings.ToLower(s) {
    case "get", "post", "put", "delete", "patch", "options", "head":
        return true
    }
    return false
}

// rewriteV2Operation fixes a single operation in place and reports whether it
// changed anything.
func rewriteV2Operation(op map[string]any) bool {
    params, ok := op["parameters"].([]any)
    if !ok || len(params) == 0 {
        return false
    }

    var bodies []map[string]any
    var rest []any
    hasFormData := false
    for _, p := range params {
        pm, _ := p.(map[string]any)
        if pm == nil {
            continue
        }
        switch strings.ToLower(stringOf(pm["in"])) {
        case "body":
            bodies = append(bodies, pm)
        case "formdata":
            hasFormData = true
            rest = append(rest, pm)
        default:
            rest = append(rest, pm)
        }
    }
    if len(bodies) == 0 {
        return false
    }

    if hasFormData {
        // A body parameter cannot coexist with formData in v2; degrade the
        // body parameters to formData fields.
        converted := make([]any, 0, len(params))
        for _, pm := range bodies {
            converted = append(converted, formDataFromBody(pm))
        }
        op["parameters"] = append(converted, rest...)
        consumes, _ := op["consumes"].([]any)
        if !containsValue(consumes, "multipart/form-data") {
            op["consumes"] = append(consumes, "multipart/form-data")
        }
        return true
    }

    if len(bodies) > 1 {
        props := map[string]any{}
        var required []any
        for _, pm := range bodies {
            name := stringOf(pm["name"])
            if name == "" {
                name = "field"
            }
            schema := schemaFromV2Param(pm)
            if schema == nil {
                schema = map[string]any{"type": "string"}
            }
            props[name] = schema
            if r, _ := pm["required"].(bool); r {
                required = append(required, name)
            }
        }
        merged := map[string]any{"type": "object", "properties": props}
        if len(required) > 0 {
            merged["required"] = required
        }
        op["parameters"] = append([]any{map[string]any{
            "in":     "body",
            "name":   "body",
            "schema": merged,
        }}, rest...)
        return true
    }

    return false
}

func stringOf(v any) string {
    s, _ := v.(string)
    return s
}

func containsValue(list []any, want string) bool {
    for _, v := range list {
        if s, ok := v.(string); ok && s == want {
            return true
        }
    }
    return false
}

// schemaFromV2Param returns the parameter's schema, synthesizing one from the
// flat v2 type/items/format keys when the schema key is absent.
func schemaFromV2Param(pm map[string]any) map[string]any {
    if sch, ok := pm["schema"].(map[string]any); ok {
        return sch
    }
    t := stringOf(pm["type"])
    if t == "" {
        return nil
    }
    out := map[string]any{"type": t}
    if items, ok := pm["items"].(map[string]any); ok {
        out["items"] = items
    }
    if f := stringOf(pm["format"]); f != "" {
        out["format"] = f
    }
    return out
}

func formDataFromBody(pm map[string]any) map[string]any {
    name := stringOf(pm["name"])
    if name == "" {
        name = "field"
    }
    out := map[string]any{"in": "formData", "name": name}
    if desc := stringOf(pm["description"]); desc != "" {
        out["description"] = desc
    }
    if req, ok := pm["required"].(bool); ok {
        out["required"] = req
    }

    var typ, format string
    var items any
    if sch, ok := pm["schema"].(map[string]any); ok {
        typ = stringOf(sch["type"])
        format = stringOf(sch["format"])
        if it, ok := sch["items"].(map[string]any); ok {
            items = it
        }
        if typ == "" && sch["$ref"] != nil {
            // A referenced object cannot be represented in formData.
            typ = "string"
        }
    }
    if typ == "" {
        typ = stringOf(pm["type"])
        if format == "" {
            format = stringOf(pm["format"])
        }
        if items == nil {
            if it, ok := pm["items"].(map[string]any); ok {
                items = it
            }
        }
    }
    if typ == "" {
        typ = "string"
    }
    out["type"] = typ
    if items != nil {
        out["items"] = items
    }
    if format != "" {
        out["format"] = format
    }
    return out
}
