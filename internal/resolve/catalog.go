package resolve

import (
    "sort"
    "strings"

    "github.com/getkin/kin-openapi/openapi3"

    "github.com/mark3labs/spec2model/internal/spec"
)

// DefaultTag classifies operations that carry no tags at all.
const DefaultTag = "Default"

// ParameterDescriptor describes one operation parameter after resolution.
type ParameterDescriptor struct {
    SourceName string
    Name       string // sanitized identifier
    In         string // path|query|header|cookie
    Type       string
    Optional   bool
}

// OperationDescriptor is the per-(path, method) record built once during
// catalog construction and immutable thereafter.
type OperationDescriptor struct {
    Method         string
    Path           string
    Name           string
    Tag            string
    Summary        string
    Parameters     []ParameterDescriptor
    BodyType       string
    ResponseType   string
    Multipart      bool
    BinaryResponse bool
}

// Catalog groups operation descriptors by their primary classification tag.
type Catalog map[string][]OperationDescriptor

// Option configures catalog construction.
type Option func(*catalogConfig)

type catalogConfig struct {
    includeTags map[string]struct{}
    excludeTags map[string]struct{}
}

// WithIncludeTags keeps only operations whose primary tag is in the set.
func WithIncludeTags(tags []string) Option {
    return func(c *catalogConfig) {
        for _, t := range tags {
            if t = strings.TrimSpace(t); t == "" {
                continue
            }
            if c.includeTags == nil {
                c.includeTags = make(map[string]struct{})
            }
            c.includeTags[t] = struct{}{}
        }
    }
}

// WithExcludeTags drops operations whose primary tag is in the set.
func WithExcludeTags(tags []string) Option {
    return func(c *catalogConfig) {
        for _, t := range tags {
            if t = strings.TrimSpace(t); t == "" {
                continue
            }
            if c.excludeTags == nil {
                c.excludeTags = make(map[string]struct{})
            }
            c.excludeTags[t] = struct{}{}
        }
    }
}

var methodOrder = []struct {
    verb string
    pick func(*openapi3.PathItem) *openapi3.Operation
}{
    {"get", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Get }},
    {"post", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Post }},
    {"put", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Put }},
    {"delete", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Delete }},
    {"patch", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Patch }},
    {"head", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Head }},
    {"options", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Options }},
    {"trace", func(pi *openapi3.PathItem) *openapi3.Operation { return pi.Trace }},
}

// BuildCatalog builds the operation catalog from an ingested document.
// Paths are visited in sorted order with a fixed method order, so output is
// stable across runs on identical input.
func BuildCatalog(d *spec.Document, opts ...Option) Catalog {
    cfg := &catalogConfig{}
    for _, opt := range opts {
        opt(cfg)
    }

    out := Catalog{}
    if d == nil || d.Doc == nil || d.Doc.Paths == nil {
        return out
    }

    pathKeys := make([]string, 0, len(d.Doc.Paths))
    for p := range d.Doc.Paths {
        pathKeys = append(pathKeys, p)
    }
    sort.Strings(pathKeys)

    for _, path := range pathKeys {
        item := d.Doc.Paths[path]
        if item == nil {
            continue
        }
        for _, m := range methodOrder {
            op := m.pick(item)
            if op == nil {
                continue
            }
            tag := primaryTag(op)
            if !cfg.allow(tag) {
                continue
            }
            out[tag] = append(out[tag], buildOperation(d, item, op, m.verb, path, tag))
        }
    }
    return out
}

func (c *catalogConfig) allow(tag string) bool {
    if len(c.includeTags) > 0 {
        if _, ok := c.includeTags[tag]; !ok {
            return false
        }
    }
    if _, blocked := c.excludeTags[tag]; blocked {
        return false
    }
    return true
}

func primaryTag(op *openapi3.Operation) string {
    for _, t := range op.Tags {
        if t = strings.TrimSpace(t); t != "" {
            return t
        }
    }
    return DefaultTag
}

func buildOperation(d *spec.Document, item *openapi3.PathItem, op *openapi3.Operation, method, path, tag string) OperationDescriptor {
    entity := EntityName(tag, d.Schemas)

    desc := OperationDescriptor{
        Method:  method,
        Path:    path,
        Tag:     tag,
        Summary: strings.TrimSpace(op.Summary),
        Name:    operationName(op.OperationID, tag, method, path),
    }
    desc.Parameters = buildParameters(d, item, op, entity)

    var bodyNode *spec.SchemaNode
    bodyDeclared := false
    if op.RequestBody != nil && op.RequestBody.Value != nil {
        bodyDeclared = true
        bodyNode = pickContentSchema(op.RequestBody.Value.Content)
        desc.Multipart = hasMultipartContent(op.RequestBody.Value.Content)
    }
    if !bodyDeclared {
        // Textual heuristic only applies when nothing explicit is declared.
        desc.Multipart = mentionsAny(op.Summary+" "+op.Description, uploadKeywords)
    }
    desc.BodyType = ResolveBodyType(bodyNode, d.Schemas)

    respNode, hadContent := pickResponseSchema(op.Responses)
    desc.ResponseType = ResolveBodyType(respNode, d.Schemas)
    desc.BinaryResponse = detectBinaryResponse(op, hadContent)

    return desc
}

// buildParameters merges path-level and operation-level parameters
// (operation level wins), resolves each, and orders required parameters
// before optional ones while keeping declared order within each partition.
func buildParameters(d *spec.Document, item *openapi3.PathItem, op *openapi3.Operation, entity string) []ParameterDescriptor {
    type slot struct {
        key string
        p   *openapi3.Parameter
    }
    var ordered []slot
    index := map[string]int{}

    add := func(pref *openapi3.ParameterRef) {
        if pref == nil || pref.Value == nil {
            return
        }
        p := pref.Value
        key := p.In + ":" + p.Name
        if i, ok := index[key]; ok {
            ordered[i].p = p
            return
        }
        index[key] = len(ordered)
        ordered = append(ordered, slot{key: key, p: p})
    }
    for _, pref := range item.Parameters {
        add(pref)
    }
    for _, pref := range op.Parameters {
        add(pref)
    }
    if len(ordered) == 0 {
        return nil
    }

    var required, optional []ParameterDescriptor
    for _, s := range ordered {
        pd := toParameterDescriptor(d, s.p, entity)
        if pd.Optional {
            optional = append(optional, pd)
        } else {
            required = append(required, pd)
        }
    }
    return append(required, optional...)
}

func toParameterDescriptor(d *spec.Document, p *openapi3.Parameter, entity string) ParameterDescriptor {
    name := strings.TrimSpace(p.Name)
    sanitized := Normalize(name)
    if sanitized == "" {
        sanitized = "param"
    }
    node := spec.ToNode(p.Schema)
    pd := ParameterDescriptor{
        SourceName: name,
        Name:       sanitized,
        In:         strings.TrimSpace(p.In),
        Type: ResolveParamType(node, &ParamContext{
            Entity:  entity,
            Param:   name,
            Schemas: d.Schemas,
        }),
    }
    // Path parameters are never optional; everything else is optional unless
    // explicitly required.
    pd.Optional = pd.In != "path" && !p.Required
    return pd
}

// operationName normalizes an operationId, stripping a Tag_Method prefix
// when the leading segment names the operation's own tag. Without an
// operationId the name falls back to <method><Resource>.
func operationName(opID, tag, method, path string) string {
    opID = strings.TrimSpace(opID)
    if opID != "" {
        if i := strings.Index(opID, "_"); i > 0 && strings.Count(opID, "_") == 1 {
            prefix, suffix := opID[:i], opID[i+1:]
            if Normalize(prefix) == Normalize(tag) {
                if name := Normalize(suffix); name != "" {
                    return name
                }
            }
        }
        if name := Normalize(opID); name != "" {
            return name
        }
    }
    resource := tag
    if resource == DefaultTag || resource == "" {
        resource = lastStaticSegment(path)
    }
    name := Normalize(method) + Pascal(resource)
    if name == "" {
        name = "operation"
    }
    return name
}

func lastStaticSegment(path string) string {
    segs := strings.Split(strings.Trim(path, "/"), "/")
    for i := len(segs) - 1; i >= 0; i-- {
        s := segs[i]
        if s != "" && !strings.HasPrefix(s, "{") {
            return s
        }
    }
    return "root"
}

// pickContentSchema chooses the schema node for a content map, preferring
// application/json, then the first media type (sorted) that carries a schema.
func pickContentSchema(content openapi3.Content) *spec.SchemaNode {
    if len(content) == 0 {
        return nil
    }
    if mt := content["application/json"]; mt != nil && mt.Schema != nil {
        return spec.ToNode(mt.Schema)
    }
    mimes := make([]string, 0, len(content))
    for m := range content {
        mimes = append(mimes, m)
    }
    sort.Strings(mimes)
    for _, m := range mimes {
        if mt := content[m]; mt != nil && mt.Schema != nil {
            return spec.ToNode(mt.Schema)
        }
    }
    return nil
}

// pickResponseSchema selects the success response schema: 200, then 201,
// then the lowest 2xx, then "default". The second return reports whether any
// response declared content metadata at all.
func pickResponseSchema(responses openapi3.Responses) (*spec.SchemaNode, bool) {
    if len(responses) == 0 {
        return nil, false
    }
    hadContent := false
    for _, rref := range responses {
        if rref != nil && rref.Value != nil && len(rref.Value.Content) > 0 {
            hadContent = true
            break
        }
    }

    codes := make([]string, 0, len(responses))
    for code := range responses {
        codes = append(codes, code)
    }
    sort.Strings(codes)

    pick := func(code string) *spec.SchemaNode {
        rref := responses[code]
        if rref == nil || rref.Value == nil {
            return nil
        }
        return pickContentSchema(rref.Value.Content)
    }

    for _, code := range []string{"200", "201"} {
        if _, ok := responses[code]; ok {
            return pick(code), hadContent
        }
    }
    for _, code := range codes {
        if strings.HasPrefix(code, "2") {
            return pick(code), hadContent
        }
    }
    if _, ok := responses["default"]; ok {
        return pick("default"), hadContent
    }
    return nil, hadContent
}

func hasMultipartContent(content openapi3.Content) bool {
    for mime := range content {
        if strings.HasPrefix(strings.ToLower(mime), "multipart/") {
            return true
        }
    }
    return false
}

var binaryMimePrefixes = []string{
    "application/octet-stream",
    "application/pdf",
    "application/zip",
    "image/",
    "audio/",
    "video/",
}

var uploadKeywords = []string{"upload", "attachment"}

var downloadKeywords = []string{"download", "file", "binary"}

// detectBinaryResponse scans declared response media types against the
// binary MIME prefixes; when no response declares content metadata it falls
// back to keywords in the summary/description.
func detectBinaryResponse(op *openapi3.Operation, hadContent bool) bool {
    if hadContent {
        for _, rref := range op.Responses {
            if rref == nil || rref.Value == nil {
                continue
            }
            for mime := range rref.Value.Content {
                lower := strings.ToLower(mime)
                for _, prefix := range binaryMimePrefixes {
                    if strings.HasPrefix(lower, prefix) {
                        return true
                    }
                }
            }
        }
        return false
    }
    return mentionsAny(op.Summary+" "+op.Description, downloadKeywords)
}

func mentionsAny(text string, keywords []string) bool {
    lower := strings.ToLower(text)
    for _, kw := range keywords {
        if strings.Contains(lower, kw) {
            return true
        }
    }
    return false
}

// EntityName maps a classification tag to its entity name: the exact named
// schema whose name matches the singularized tag when one exists, otherwise
// the singularized PascalCase tag.
func EntityName(tag string, schemas map[string]*spec.SchemaNode) string {
    want := Pascal(Singular(tag))
    if want == "" {
        want = DefaultTag
    }
    names := make([]string, 0, len(schemas))
    for name := range schemas {
        names = append(names, name)
    }
    sort.Strings(names)
    for _, name := range names {
        if strings.EqualFold(name, want) {
            return name
        }
    }
    return want
}
