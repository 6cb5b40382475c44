package resolve

import (
    "fmt"
    "sort"
    "strings"

    "github.com/mark3labs/spec2model/internal/spec"
)

// Fingerprint produces a deterministic, metadata-stripped serialization of a
// schema node. Two nodes are structurally identical iff their fingerprints
// are byte-equal. Display annotations (title) are excluded; object keys are
// serialized in sorted order; array item order is preserved. The fingerprint
// is used for inline-schema matching only, never for semantic equivalence.
func Fingerprint(n *spec.SchemaNode) string {
    var b strings.Builder
    writeFingerprint(&b, n)
    return b.String()
}

func writeFingerprint(b *strings.Builder, n *spec.SchemaNode) {
    if n == nil {
        b.WriteString("null")
        return
    }
    switch n.Kind {
    case spec.KindNamedRef:
        b.WriteString("$ref:")
        b.WriteString(n.Ref)
    case spec.KindArray:
        b.WriteString("array[")
        writeFingerprint(b, n.Items)
        b.WriteString("]")
    case spec.KindObject:
        b.WriteString("object{")
        keys := n.PropertyNames()
        for i, k := range keys {
            if i > 0 {
                b.WriteString(";")
            }
            b.WriteString(k)
            b.WriteString(":")
            writeFingerprint(b, n.Properties[k])
        }
        b.WriteString("}")
        if len(n.Required) > 0 {
            req := append([]string(nil), n.Required...)
            sort.Strings(req)
            b.WriteString("!" + strings.Join(req, ","))
        }
    default:
        b.WriteString(n.Type)
        if n.Format != "" {
            b.WriteString("<" + n.Format + ">")
        }
        if n.Nullable {
            b.WriteString("?")
        }
        if len(n.Enum) > 0 {
            b.WriteString("(")
            for i, v := range n.Enum {
                if i > 0 {
                    b.WriteString(",")
                }
                fmt.Fprintf(b, "%v", v)
            }
            b.WriteString(")")
        }
    }
}
