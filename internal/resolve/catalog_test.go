package resolve

import (
    "context"
    "strings"
    "testing"

    "github.com/getkin/kin-openapi/openapi3"

    "github.com/mark3labs/spec2model/internal/spec"
)

const catalogSpec = `openapi: 3.0.0
info:
  title: Pet Store
  version: "1.0.0"
paths:
  /pets:
    get:
      operationId: Pets_List
      tags: [pets]
      parameters:
        - in: query
          name: limit
          schema:
            type: integer
        - in: query
          name: status
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
    post:
      tags: [pets]
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
  /pets/{petId}:
    get:
      operationId: Pets_GetById
      tags: [pets]
      parameters:
        - in: path
          name: petId
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /pets/{petId}/photo:
    put:
      tags: [pets]
      summary: Upload a photo for the pet
      parameters:
        - in: path
          name: petId
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
    get:
      tags: [pets]
      summary: Download the pet photo file
      parameters:
        - in: path
          name: petId
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
  /reports/export:
    get:
      tags: [reports]
      responses:
        "200":
          description: ok
          content:
            application/octet-stream:
              schema:
                type: string
                format: binary
  /untagged:
    get:
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id:
          type: integer
          format: int64
        name:
          type: string
`

func ingestSpec(t *testing.T, raw string) *spec.Document {
    t.Helper()
    loader := openapi3.NewLoader()
    doc, err := loader.LoadFromData([]byte(strings.TrimSpace(raw)))
    if err != nil {
        t.Fatalf("load: %v", err)
    }
    if err := doc.Validate(context.Background()); err != nil {
        t.Fatalf("validate: %v", err)
    }
    return spec.Ingest(doc)
}

func findOp(t *testing.T, cat Catalog, tag, method, path string) OperationDescriptor {
    t.Helper()
    for _, op := range cat[tag] {
        if op.Method == method && op.Path == path {
            return op
        }
    }
    t.Fatalf("operation %s %s not found under tag %q", method, path, tag)
    return OperationDescriptor{}
}

func TestBuildCatalog_GroupingAndNames(t *testing.T) {
    t.Parallel()
    cat := BuildCatalog(ingestSpec(t, catalogSpec))

    if len(cat["pets"]) != 5 {
        t.Fatalf("pets operations: got %d", len(cat["pets"]))
    }

    list := findOp(t, cat, "pets", "get", "/pets")
    if list.Name != "list" {
        t.Errorf("Pets_List: got name %q", list.Name)
    }

    byID := findOp(t, cat, "pets", "get", "/pets/{petId}")
    if byID.Name != "getById" {
        t.Errorf("Pets_GetById: got name %q", byID.Name)
    }

    // No operationId: fallback is <method><Resource>.
    create := findOp(t, cat, "pets", "post", "/pets")
    if create.Name != "postPets" {
        t.Errorf("fallback name: got %q", create.Name)
    }

    untagged := findOp(t, cat, DefaultTag, "get", "/untagged")
    if untagged.Tag != DefaultTag {
        t.Errorf("untagged: got tag %q", untagged.Tag)
    }
}

func TestBuildCatalog_ParameterOrderingAndOptionality(t *testing.T) {
    t.Parallel()
    cat := BuildCatalog(ingestSpec(t, catalogSpec))

    list := findOp(t, cat, "pets", "get", "/pets")
    if len(list.Parameters) != 2 {
        t.Fatalf("parameters: got %d", len(list.Parameters))
    }
    // Required query parameter (status) sorts before the optional one (limit)
    // even though limit is declared first.
    if list.Parameters[0].SourceName != "status" || list.Parameters[0].Optional {
        t.Errorf("first param: got %+v", list.Parameters[0])
    }
    if list.Parameters[1].SourceName != "limit" || !list.Parameters[1].Optional {
        t.Errorf("second param: got %+v", list.Parameters[1])
    }
    if list.Parameters[1].Type != "number" {
        t.Errorf("limit type: got %q", list.Parameters[1].Type)
    }

    byID := findOp(t, cat, "pets", "get", "/pets/{petId}")
    if len(byID.Parameters) != 1 || byID.Parameters[0].Optional {
        t.Fatalf("path param must never be optional: %+v", byID.Parameters)
    }
}

func TestBuildCatalog_BodyAndResponseTypes(t *testing.T) {
    t.Parallel()
    cat := BuildCatalog(ingestSpec(t, catalogSpec))

    list := findOp(t, cat, "pets", "get", "/pets")
    if list.ResponseType != "Pet[]" {
        t.Errorf("list response: got %q", list.ResponseType)
    }
    if list.BodyType != TypeVoid {
        t.Errorf("list body: got %q", list.BodyType)
    }

    create := findOp(t, cat, "pets", "post", "/pets")
    if create.BodyType != "Pet" {
        t.Errorf("create body: got %q", create.BodyType)
    }
    if create.ResponseType != TypeVoid {
        t.Errorf("create response (no content): got %q", create.ResponseType)
    }
}

func TestBuildCatalog_UploadAndBinaryHeuristics(t *testing.T) {
    t.Parallel()
    cat := BuildCatalog(ingestSpec(t, catalogSpec))

    // No declared request body, summary mentions upload.
    photoPut := findOp(t, cat, "pets", "put", "/pets/{petId}/photo")
    if !photoPut.Multipart {
        t.Errorf("expected textual upload heuristic to fire")
    }

    // No content metadata, description mentions download/file.
    photoGet := findOp(t, cat, "pets", "get", "/pets/{petId}/photo")
    if !photoGet.BinaryResponse {
        t.Errorf("expected textual download heuristic to fire")
    }

    // Declared binary media type wins without any keywords.
    export := findOp(t, cat, "reports", "get", "/reports/export")
    if !export.BinaryResponse {
        t.Errorf("expected octet-stream response to be flagged binary")
    }
    if export.Multipart {
        t.Errorf("export must not be multipart")
    }
}

func TestBuildCatalog_ExplicitMultipartWins(t *testing.T) {
    t.Parallel()
    const raw = `openapi: 3.0.0
info: { title: t, version: "1.0.0" }
paths:
  /docs:
    post:
      tags: [docs]
      summary: Create a document
      requestBody:
        content:
          multipart/form-data:
            schema:
              type: object
              properties:
                file:
                  type: string
                  format: binary
      responses:
        "201": { description: created }
`
    cat := BuildCatalog(ingestSpec(t, raw))
    op := findOp(t, cat, "docs", "post", "/docs")
    if !op.Multipart {
        t.Fatalf("explicit multipart content must set the flag")
    }
}

func TestBuildCatalog_TagFilters(t *testing.T) {
    t.Parallel()
    d := ingestSpec(t, catalogSpec)

    only := BuildCatalog(d, WithIncludeTags([]string{"reports"}))
    if len(only) != 1 || len(only["reports"]) != 1 {
        t.Fatalf("include filter: got %v", only)
    }

    without := BuildCatalog(d, WithExcludeTags([]string{"pets"}))
    if _, ok := without["pets"]; ok {
        t.Fatalf("exclude filter: pets still present")
    }
}

func TestEntityName(t *testing.T) {
    t.Parallel()
    schemas := map[string]*spec.SchemaNode{
        "Pet":  {Kind: spec.KindObject, Type: "object"},
        "User": {Kind: spec.KindObject, Type: "object"},
    }
    if got := EntityName("pets", schemas); got != "Pet" {
        t.Errorf("pets: got %q", got)
    }
    if got := EntityName("users", schemas); got != "User" {
        t.Errorf("users: got %q", got)
    }
    if got := EntityName("invoices", schemas); got != "Invoice" {
        t.Errorf("invoices: got %q", got)
    }
}
