package export

import (
    "context"
    "fmt"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "time"

    "github.com/mark3labs/spec2model/internal/relations"
)

// Options controls where and how the export artifacts are written.
type Options struct {
    OutDir   string // required; target directory for the artifacts
    Artifact string // artifact file name; defaults to relationships.json
    Summary  bool   // also write summary.md with the mutual-pair report
    Force    bool   // overwrite existing files
    DryRun   bool   // don't write, only plan
}

// PlannedFile describes a file the writer intends to write.
type PlannedFile struct {
    RelPath string
    Size    int
    Mode    os.FileMode
}

// Result returns the planned files and the resolved artifact name.
type Result struct {
    Artifact string
    Planned  []PlannedFile
}

// Write validates the export document, renders the artifacts, and writes
// them under opts.OutDir. With DryRun set it only plans.
func Write(ctx context.Context, doc *relations.Export, opts Options) (*Result, error) {
    _ = ctx
    if doc == nil {
        return nil, fmt.Errorf("export: nil document")
    }
    if strings.TrimSpace(opts.OutDir) == "" {
        return nil, fmt.Errorf("export: OutDir is required")
    }
    artifact := sanitizeArtifactName(opts.Artifact)
    if artifact == "" {
        artifact = "relationships.json"
    }

    data, err := relations.MarshalExport(doc)
    if err != nil {
        return nil, fmt.Errorf("export: marshal artifact: %w", err)
    }
    // The serialized artifact must satisfy the published schema before it
    // ever reaches disk.
    if err := relations.ValidateExportJSON(data); err != nil {
        return nil, fmt.Errorf("export: artifact failed schema validation: %w", err)
    }

    files := map[string][]byte{}
    files[artifact] = data
    if opts.Summary {
        files["summary.md"] = []byte(renderSummary(doc))
    }

    rels := make([]string, 0, len(files))
    for p := range files {
        rels = append(rels, filepath.ToSlash(p))
    }
    sort.Strings(rels)

    planned := make([]PlannedFile, 0, len(rels))
    for _, rel := range rels {
        planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: 0o644})
    }

    if !opts.DryRun {
        if err := writeFiles(opts.OutDir, files, opts.Force); err != nil {
            return nil, err
        }
    }

    return &Result{Artifact: artifact, Planned: planned}, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
    abs, err := filepath.Abs(outDir)
    if err != nil {
        return fmt.Errorf("resolve out dir: %w", err)
    }
    if err := os.MkdirAll(abs, 0o755); err != nil {
        return fmt.Errorf("mkdir: %w", err)
    }
    // Pre-flight: refuse to clobber existing artifacts unless forced.
    if !force {
        for rel := range files {
            p := filepath.Join(abs, rel)
            if _, err := os.Stat(p); err == nil {
                return fmt.Errorf("export: %q already exists (use --force to overwrite)", p)
            }
        }
    }
    for rel, content := range files {
        p := filepath.Join(abs, rel)
        if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
            return fmt.Errorf("mkdir: %w", err)
        }
        // atomic write via temp file + rename
        tmp := p + ".tmp-" + time.Now().Format("20060102150405")
        if err := os.WriteFile(tmp, content, 0o644); err != nil {
            return fmt.Errorf("write temp %s: %w", rel, err)
        }
        if err := os.Rename(tmp, p); err != nil {
            _ = os.Remove(tmp)
            return fmt.Errorf("rename %s: %w", rel, err)
        }
    }
    return nil
}

func sanitizeArtifactName(name string) string {
    name = strings.TrimSpace(name)
    if name == "" {
        return ""
    }
    name = filepath.Base(filepath.ToSlash(name))
    if name == "." || name == ".." || name == "/" {
        return ""
    }
    if !strings.HasSuffix(name, ".json") {
        name += ".json"
    }
    return name
}
