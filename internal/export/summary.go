package export

import (
    "fmt"
    "sort"
    "strings"

    "github.com/mark3labs/spec2model/internal/relations"
)

// renderSummary produces a short human-readable companion to the JSON
// artifact: headline counts, one table row per relationship, and the
// mutual-pair report.
func renderSummary(doc *relations.Export) string {
    var b strings.Builder

    title := strings.TrimSpace(doc.Metadata.SpecTitle)
    if title == "" {
        title = "API"
    }
    fmt.Fprintf(&b, "# %s — entity relationships\n\n", title)
    if v := strings.TrimSpace(doc.Metadata.SpecVersion); v != "" {
        fmt.Fprintf(&b, "Spec version: %s\n\n", v)
    }
    fmt.Fprintf(&b, "Generated at %s. %d entities, %d relationships.\n\n",
        doc.Metadata.GeneratedAt, doc.Metadata.TotalEntities, doc.Metadata.TotalRelationships)

    fmt.Fprintf(&b, "## Entities\n\n")
    names := make([]string, 0, len(doc.Entities))
    for name := range doc.Entities {
        names = append(names, name)
    }
    sort.Strings(names)
    for _, name := range names {
        ent := doc.Entities[name]
        fmt.Fprintf(&b, "- %s (%d endpoints, %d relationships)\n", name, len(ent.Endpoints), len(ent.Relationships))
    }
    b.WriteString("\n")

    fmt.Fprintf(&b, "## Relationships\n\n")
    if len(doc.Relationships) == 0 {
        b.WriteString("None detected.\n")
        return b.String()
    }
    b.WriteString("| Source | Target | Type | Confidence | Detected by |\n")
    b.WriteString("|---|---|---|---|---|\n")
    for _, rel := range doc.Relationships {
        fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
            rel.SourceEntity, rel.TargetEntity, rel.Type, rel.Confidence,
            strings.Join(sourceStrings(rel.DetectedBy), ", "))
    }
    b.WriteString("\n")

    if pairs := relations.Mutual(doc.Relationships); len(pairs) > 0 {
        fmt.Fprintf(&b, "## Mutual pairs\n\n")
        for _, pair := range pairs {
            fmt.Fprintf(&b, "- %s <-> %s\n", pair[0], pair[1])
        }
    }
    return b.String()
}

func sourceStrings(sources []relations.Source) []string {
    out := make([]string, 0, len(sources))
    for _, s := range sources {
        out = append(out, string(s))
    }
    return out
}
