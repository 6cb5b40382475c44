package relations

import (
    "errors"
    "strings"
    "testing"
    "time"
)

func validMetadata() Metadata {
    return Metadata{
        SpecTitle:          "Store API",
        SpecVersion:        "1.0.0",
        GeneratedAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
        TotalEntities:      1,
        TotalRelationships: 1,
        ExportVersion:      ExportVersion,
    }
}

func validRelationship() Relationship {
    return Relationship{
        SourceEntity: "User",
        TargetEntity: "Order",
        Type:         HasMany,
        Confidence:   High,
        DetectedBy:   []Source{SourceNamingPattern, SourcePathPattern},
        Evidence: []Evidence{
            {Source: SourceNamingPattern, Location: "#/components/schemas/Order/properties/userId", Details: "foreign key to User"},
            {Source: SourcePathPattern, Location: "/users/{userId}/orders", Details: "path nests Order under User"},
        },
    }
}

func TestNewExport_Valid(t *testing.T) {
    t.Parallel()
    entities := map[string]Entity{"User": {Name: "User"}}
    exp, err := NewExport(validMetadata(), entities, []Relationship{validRelationship()})
    if err != nil {
        t.Fatalf("NewExport: %v", err)
    }
    if exp.Metadata.ExportVersion != ExportVersion {
        t.Errorf("exportVersion: got %q", exp.Metadata.ExportVersion)
    }
}

func TestNewExport_EmptyEvidenceRejected(t *testing.T) {
    t.Parallel()
    rel := validRelationship()
    rel.Evidence = nil
    _, err := NewExport(validMetadata(), nil, []Relationship{rel})
    if err == nil {
        t.Fatalf("expected validation error")
    }
    var verr *ValidationError
    if !errors.As(err, &verr) {
        t.Fatalf("expected ValidationError, got %T", err)
    }
    if !strings.Contains(err.Error(), "relationships[0].evidence") {
        t.Errorf("error must identify the invalid structure: %v", err)
    }
}

func TestNewExport_CollectsAllProblems(t *testing.T) {
    t.Parallel()
    meta := validMetadata()
    meta.ExportVersion = "not-semver"
    meta.TotalEntities = -1

    rel := validRelationship()
    rel.Type = "owns"
    rel.DetectedBy = nil

    _, err := NewExport(meta, map[string]Entity{"User": {Name: "Mismatch"}}, []Relationship{rel})
    if err == nil {
        t.Fatalf("expected validation error")
    }
    msg := err.Error()
    for _, want := range []string{
        "metadata.exportVersion",
        "metadata.totalEntities",
        "entities[User].name",
        "relationships[0].type",
        "relationships[0].detectedBy",
    } {
        if !strings.Contains(msg, want) {
            t.Errorf("error missing %q: %s", want, msg)
        }
    }
}

func TestNewExport_GeneratedAtShape(t *testing.T) {
    t.Parallel()
    meta := validMetadata()
    meta.GeneratedAt = "2024-05-01"
    if _, err := NewExport(meta, nil, nil); err == nil {
        t.Fatalf("date without time separator must be rejected")
    }

    meta.GeneratedAt = "2024-05-01T12:00:00+02:00"
    if _, err := NewExport(meta, nil, nil); err != nil {
        t.Fatalf("numeric UTC offset must be accepted: %v", err)
    }
}

func TestNewExport_DetectedByMustMatchEvidence(t *testing.T) {
    t.Parallel()
    rel := validRelationship()
    rel.DetectedBy = []Source{SourceSchemaRef}
    _, err := NewExport(validMetadata(), nil, []Relationship{rel})
    if err == nil {
        t.Fatalf("detectedBy diverging from evidence sources must be rejected")
    }
}
