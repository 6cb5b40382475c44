package relations

// Relationship model. All values are built once per resolution pass and
// treated as immutable; transformations return new values.

// Type is the directed relationship kind between two entities.
type Type string

const (
    HasMany   Type = "hasMany"
    HasOne    Type = "hasOne"
    BelongsTo Type = "belongsTo"
)

// Confidence is an ordinal strength label, not a calibrated probability.
type Confidence string

const (
    High   Confidence = "high"
    Medium Confidence = "medium"
    Low    Confidence = "low"
)

// Source identifies the heuristic that produced a piece of evidence.
type Source string

const (
    SourceSchemaRef     Source = "schema_ref"
    SourceNamingPattern Source = "naming_pattern"
    SourcePathPattern   Source = "path_pattern"
)

// Evidence is one heuristic's supporting observation for a relationship.
type Evidence struct {
    Source   Source `json:"source"`
    Location string `json:"location"`
    Details  string `json:"details"`
}

// Relationship is a merged, confidence-scored edge between two entities.
// DetectedBy is always the union of the evidence sources and never empty.
type Relationship struct {
    SourceEntity string     `json:"sourceEntity"`
    TargetEntity string     `json:"targetEntity"`
    Type         Type       `json:"type"`
    Confidence   Confidence `json:"confidence"`
    DetectedBy   []Source   `json:"detectedBy"`
    Evidence     []Evidence `json:"evidence"`
}

// Endpoint references one catalog operation from an entity descriptor.
type Endpoint struct {
    Method string `json:"method"`
    Path   string `json:"path"`
    Name   string `json:"name"`
}

// Entity is the per-tag node of the relationship graph.
type Entity struct {
    Name          string         `json:"name"`
    Endpoints     []Endpoint     `json:"endpoints"`
    Relationships []Relationship `json:"relationships"`
}

// Metadata describes one export document.
type Metadata struct {
    SpecTitle          string `json:"specTitle,omitempty"`
    SpecVersion        string `json:"specVersion,omitempty"`
    GeneratedAt        string `json:"generatedAt"`
    TotalEntities      int    `json:"totalEntities"`
    TotalRelationships int    `json:"totalRelationships"`
    ExportVersion      string `json:"exportVersion"`
}

// Export is the persisted, schema-validated artifact handed to emitters.
type Export struct {
    Metadata      Metadata          `json:"metadata"`
    Entities      map[string]Entity `json:"entities"`
    Relationships []Relationship    `json:"relationships"`
}
