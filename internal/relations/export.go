package relations

import (
    "fmt"
    "regexp"
    "strings"
    "time"
)

var exportVersionRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidationError reports every field path that violates the export shape.
// It means the in-memory model broke its own invariants, which is a
// programming error in the engine, not a property of the input document.
type ValidationError struct {
    Problems []string
}

func (e *ValidationError) Error() string {
    return fmt.Sprintf("relationships export is invalid: %s", strings.Join(e.Problems, "; "))
}

// NewExport validates metadata, entities, and relationships against the
// export shape and assembles the document. This is the one hard-validation
// boundary in the engine: a downstream persistence step is about to trust
// the data as-is, so any violation is rejected with per-field diagnostics
// instead of returning a partially valid structure.
func NewExport(meta Metadata, entities map[string]Entity, rels []Relationship) (*Export, error) {
    var problems []string

    problems = append(problems, validateMetadata(meta)...)
    problems = append(problems, validateEntities(entities)...)
    problems = append(problems, validateRelationships(rels)...)

    if len(problems) > 0 {
        return nil, &ValidationError{Problems: problems}
    }
    if entities == nil {
        entities = map[string]Entity{}
    }
    if rels == nil {
        rels = []Relationship{}
    }
    return &Export{Metadata: meta, Entities: entities, Relationships: rels}, nil
}

func validateMetadata(meta Metadata) []string {
    var problems []string
    if meta.GeneratedAt == "" {
        problems = append(problems, "metadata.generatedAt: required")
    } else if _, err := time.Parse(time.RFC3339, meta.GeneratedAt); err != nil || !strings.Contains(meta.GeneratedAt, "T") {
        problems = append(problems, fmt.Sprintf("metadata.generatedAt: %q is not an ISO-8601 timestamp", meta.GeneratedAt))
    }
    if !exportVersionRe.MatchString(meta.ExportVersion) {
        problems = append(problems, fmt.Sprintf("metadata.exportVersion: %q does not match MAJOR.MINOR.PATCH", meta.ExportVersion))
    }
    if meta.TotalEntities < 0 {
        problems = append(problems, fmt.Sprintf("metadata.totalEntities: %d is negative", meta.TotalEntities))
    }
    if meta.TotalRelationships < 0 {
        problems = append(problems, fmt.Sprintf("metadata.totalRelationships: %d is negative", meta.TotalRelationships))
    }
    return problems
}

func validateEntities(entities map[string]Entity) []string {
    var problems []string
    for key, e := range entities {
        if key == "" {
            problems = append(problems, "entities: empty key")
            continue
        }
        if e.Name != key {
            problems = append(problems, fmt.Sprintf("entities[%s].name: %q does not match its key", key, e.Name))
        }
    }
    return problems
}

func validateRelationships(rels []Relationship) []string {
    var problems []string
    for i, r := range rels {
        at := func(field string) string { return fmt.Sprintf("relationships[%d].%s", i, field) }

        if r.SourceEntity == "" {
            problems = append(problems, at("sourceEntity")+": required")
        }
        if r.TargetEntity == "" {
            problems = append(problems, at("targetEntity")+": required")
        }
        switch r.Type {
        case HasMany, HasOne, BelongsTo:
        default:
            problems = append(problems, fmt.Sprintf("%s: unknown type %q", at("type"), r.Type))
        }
        switch r.Confidence {
        case High, Medium, Low:
        default:
            problems = append(problems, fmt.Sprintf("%s: unknown confidence %q", at("confidence"), r.Confidence))
        }
        if len(r.DetectedBy) == 0 {
            problems = append(problems, at("detectedBy")+": must not be empty")
        }
        if len(r.Evidence) == 0 {
            problems = append(problems, at("evidence")+": must not be empty")
            continue
        }

        fromEvidence := map[Source]struct{}{}
        for j, ev := range r.Evidence {
            evAt := fmt.Sprintf("%s[%d]", at("evidence"), j)
            switch ev.Source {
            case SourceSchemaRef, SourceNamingPattern, SourcePathPattern:
            default:
                problems = append(problems, fmt.Sprintf("%s.source: unknown source %q", evAt, ev.Source))
            }
            if ev.Location == "" {
                problems = append(problems, evAt+".location: required")
            }
            if ev.Details == "" {
                problems = append(problems, evAt+".details: required")
            }
            fromEvidence[ev.Source] = struct{}{}
        }
        declared := map[Source]struct{}{}
        for _, s := range r.DetectedBy {
            declared[s] = struct{}{}
        }
        if len(declared) != len(fromEvidence) {
            problems = append(problems, at("detectedBy")+": must equal the union of evidence sources")
        } else {
            for s := range fromEvidence {
                if _, ok := declared[s]; !ok {
                    problems = append(problems, fmt.Sprintf("%s: missing evidence source %q", at("detectedBy"), s))
                }
            }
        }
    }
    return problems
}
