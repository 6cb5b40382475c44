package e2e

import (
    "bytes"
    "encoding/json"
    "io"
    "os"
    "path/filepath"
    "testing"

    cli "github.com/mark3labs/spec2model/internal/cli"
    "github.com/mark3labs/spec2model/internal/relations"
)

// OpenAPI v3 spec with two tagged entities and a nested collection path
const storeSpec = "" +
    "openapi: 3.0.0\n" +
    "info:\n" +
    "  title: E2E Store\n" +
    "  version: '1.0.0'\n" +
    "paths:\n" +
    "  /users:\n" +
    "    get:\n" +
    "      tags: [users]\n" +
    "      operationId: Users_List\n" +
    "      responses:\n" +
    "        '200':\n" +
    "          description: ok\n" +
    "          content:\n" +
    "            application/json:\n" +
    "              schema:\n" +
    "                type: array\n" +
    "                items:\n" +
    "                  $ref: '#/components/schemas/User'\n" +
    "  /users/{userId}/orders:\n" +
    "    get:\n" +
    "      tags: [orders]\n" +
    "      operationId: Orders_ListForUser\n" +
    "      parameters:\n" +
    "        - name: userId\n" +
    "          in: path\n" +
    "          required: true\n" +
    "          schema:\n" +
    "            type: string\n" +
    "      responses:\n" +
    "        '200':\n" +
    "          description: ok\n" +
    "          content:\n" +
    "            application/json:\n" +
    "              schema:\n" +
    "                type: array\n" +
    "                items:\n" +
    "                  $ref: '#/components/schemas/Order'\n" +
    "components:\n" +
    "  schemas:\n" +
    "    User:\n" +
    "      type: object\n" +
    "      properties:\n" +
    "        id:\n" +
    "          type: string\n" +
    "        orders:\n" +
    "          type: array\n" +
    "          items:\n" +
    "            $ref: '#/components/schemas/Order'\n" +
    "    Order:\n" +
    "      type: object\n" +
    "      properties:\n" +
    "        id:\n" +
    "          type: string\n" +
    "        userId:\n" +
    "          type: string\n"

func writeTempSpec(t *testing.T) string {
    t.Helper()
    dir := t.TempDir()
    p := filepath.Join(dir, "spec.yaml")
    if err := os.WriteFile(p, []byte(storeSpec), 0o600); err != nil {
        t.Fatalf("write spec: %v", err)
    }
    return p
}

func runCLI(t *testing.T, args ...string) {
    t.Helper()
    root := cli.NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs(args)
    if err := root.Execute(); err != nil {
        t.Fatalf("cli execute %v: %v", args, err)
    }
}

// readNormalized loads an artifact and blanks the generation timestamp so two
// runs can be compared byte for byte.
func readNormalized(t *testing.T, path string) []byte {
    t.Helper()
    data, err := os.ReadFile(path)
    if err != nil {
        t.Fatalf("read artifact: %v", err)
    }
    if err := relations.ValidateExportJSON(data); err != nil {
        t.Fatalf("artifact failed schema validation: %v", err)
    }
    var doc relations.Export
    if err := json.Unmarshal(data, &doc); err != nil {
        t.Fatalf("unmarshal artifact: %v", err)
    }
    doc.Metadata.GeneratedAt = "1970-01-01T00:00:00Z"
    out, err := relations.MarshalExport(&doc)
    if err != nil {
        t.Fatalf("re-marshal artifact: %v", err)
    }
    return out
}

func TestE2E_Export_Deterministic(t *testing.T) {
    t.Parallel()
    spec := writeTempSpec(t)
    dir1 := t.TempDir()
    dir2 := t.TempDir()

    runCLI(t, "export", "--input", spec, "--out", dir1, "--force")
    runCLI(t, "export", "--input", spec, "--out", dir2, "--force")

    a := readNormalized(t, filepath.Join(dir1, "relationships.json"))
    b := readNormalized(t, filepath.Join(dir2, "relationships.json"))
    if !bytes.Equal(a, b) {
        t.Fatalf("artifacts differ between runs\nfirst:\n%s\nsecond:\n%s", a, b)
    }
}

func TestE2E_Export_RelationshipContent(t *testing.T) {
    t.Parallel()
    spec := writeTempSpec(t)
    dir := t.TempDir()

    runCLI(t, "export", "--input", spec, "--out", dir, "--summary")

    data, err := os.ReadFile(filepath.Join(dir, "relationships.json"))
    if err != nil {
        t.Fatalf("read artifact: %v", err)
    }
    var doc relations.Export
    if err := json.Unmarshal(data, &doc); err != nil {
        t.Fatalf("unmarshal artifact: %v", err)
    }

    if doc.Metadata.SpecTitle != "E2E Store" {
        t.Fatalf("spec title: %q", doc.Metadata.SpecTitle)
    }
    if doc.Metadata.ExportVersion != relations.ExportVersion {
        t.Fatalf("export version: %q", doc.Metadata.ExportVersion)
    }
    if len(doc.Relationships) != 1 {
        t.Fatalf("expected one merged relationship, got %d: %+v", len(doc.Relationships), doc.Relationships)
    }
    rel := doc.Relationships[0]
    if rel.SourceEntity != "User" || rel.TargetEntity != "Order" || rel.Type != relations.HasMany {
        t.Fatalf("unexpected relationship: %+v", rel)
    }
    if rel.Confidence != relations.High {
        t.Fatalf("expected high confidence with three agreeing heuristics: %+v", rel)
    }
    for _, name := range []string{"Order", "User"} {
        if _, ok := doc.Entities[name]; !ok {
            t.Fatalf("missing entity %s", name)
        }
    }
    if len(doc.Entities["User"].Relationships) != 1 {
        t.Fatalf("expected relationship attached to User: %+v", doc.Entities["User"])
    }

    if _, err := os.Stat(filepath.Join(dir, "summary.md")); err != nil {
        t.Fatalf("expected summary.md: %v", err)
    }
}

func TestE2E_Export_RefusesSecondRunWithoutForce(t *testing.T) {
    t.Parallel()
    spec := writeTempSpec(t)
    dir := t.TempDir()

    runCLI(t, "export", "--input", spec, "--out", dir)

    root := cli.NewRootCmd()
    root.SetOut(io.Discard)
    root.SetErr(io.Discard)
    root.SetArgs([]string{"export", "--input", spec, "--out", dir})
    if err := root.Execute(); err == nil {
        t.Fatalf("expected overwrite refusal without --force")
    }
}
