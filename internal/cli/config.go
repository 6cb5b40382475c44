package cli

import (
    "errors"
    "fmt"
    "strings"

    "go.uber.org/zap"

    genspec "github.com/mark3labs/spec2model/internal/spec"
)

// newLogger returns a development logger when verbose is set and a no-op
// logger otherwise, so command runners can log unconditionally.
func newLogger(verbose bool) *zap.Logger {
    if !verbose {
        return zap.NewNop()
    }
    logger, err := zap.NewDevelopment()
    if err != nil {
        return zap.NewNop()
    }
    return logger
}

// mapSpecError turns structured loader errors into friendly usage messages.
func mapSpecError(err error) error {
    var se *genspec.SpecError
    if errors.As(err, &se) {
        msg := fmt.Sprintf("spec: %s", se.Message)
        if se.Location != "" {
            msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
        }
        if se.JSONPointer != "" {
            msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
        }
        return newUsageError(msg)
    }
    return err
}

func wrapOutputError(err error, outDir string) error {
    // Provide clearer guidance for common FS failures.
    msg := err.Error()
    lower := strings.ToLower(msg)
    if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "already exists") {
        return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
    }
    return err
}

func sanitizeTags(tags []string) []string {
    if len(tags) == 0 {
        return nil
    }
    seen := make(map[string]struct{}, len(tags))
    result := make([]string, 0, len(tags))
    for _, tag := range tags {
        trimmed := strings.TrimSpace(tag)
        if trimmed == "" {
            continue
        }
        if _, exists := seen[trimmed]; exists {
            continue
        }
        seen[trimmed] = struct{}{}
        result = append(result, trimmed)
    }
    if len(result) == 0 {
        return nil
    }
    return result
}

func intersect(a, b []string) []string {
    if len(a) == 0 || len(b) == 0 {
        return nil
    }
    set := make(map[string]struct{}, len(a))
    for _, item := range a {
        set[item] = struct{}{}
    }
    var result []string
    for _, item := range b {
        if _, ok := set[item]; ok {
            result = append(result, item)
        }
    }
    return result
}

func normalizeKey(raw string) string {
    lowered := strings.ToLower(strings.TrimSpace(raw))
    lowered = strings.ReplaceAll(lowered, "-", "")
    lowered = strings.ReplaceAll(lowered, "_", "")
    return lowered
}

func valueAsString(v any) (string, error) {
    switch val := v.(type) {
    case string:
        return strings.TrimSpace(val), nil
    case nil:
        return "", nil
    default:
        return "", fmt.Errorf("expected string, got %T", v)
    }
}

func valueAsStringSlice(v any) ([]string, error) {
    switch val := v.(type) {
    case nil:
        return nil, nil
    case string:
        if strings.TrimSpace(val) == "" {
            return nil, nil
        }
        return splitAndTrim(val), nil
    case []any:
        items := make([]string, 0, len(val))
        for idx, elem := range val {
            str, err := valueAsString(elem)
            if err != nil {
                return nil, fmt.Errorf("element %d: %w", idx, err)
            }
            if str != "" {
                items = append(items, str)
            }
        }
        return items, nil
    default:
        return nil, fmt.Errorf("expected string or list, got %T", v)
    }
}

func valueAsBool(v any) (bool, error) {
    switch val := v.(type) {
    case bool:
        return val, nil
    case string:
        trimmed := strings.ToLower(strings.TrimSpace(val))
        switch trimmed {
        case "true", "t", "1", "yes", "y":
            return true, nil
        case "false", "f", "0", "no", "n":
            return false, nil
        case "":
            return false, nil
        default:
            return false, fmt.Errorf("invalid boolean value %q", val)
        }
    case nil:
        return false, nil
    default:
        return false, fmt.Errorf("expected boolean, got %T", v)
    }
}

func splitAndTrim(csv string) []string {
    parts := strings.Split(csv, ",")
    cleaned := make([]string, 0, len(parts))
    for _, part := range parts {
        trimmed := strings.TrimSpace(part)
        if trimmed != "" {
            cleaned = append(cleaned, trimmed)
        }
    }
    return cleaned
}
