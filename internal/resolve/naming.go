package resolve

import (
    "strings"
    "unicode"
)

// Normalize converts an arbitrary identifier (camelCase, snake_case,
// kebab-case, PascalCase, or a mix) to camelCase. It is a pure function and
// idempotent on its own output. Pathological input (empty, pure punctuation)
// yields the empty string, which callers must treat as "unnamed".
//
// Output always matches ^[a-z_][a-zA-Z0-9_]*$ or is empty.
func Normalize(identifier string) string {
    frags := fragments(identifier)
    if len(frags) == 0 {
        return ""
    }
    var b strings.Builder
    for i, f := range frags {
        if i == 0 {
            b.WriteString(lowerFragment(f))
        } else {
            b.WriteString(titleFragment(f))
        }
    }
    out := b.String()
    if out == "" {
        return ""
    }
    if out[0] >= '0' && out[0] <= '9' {
        out = "_" + out
    }
    return out
}

// Pascal converts an identifier to PascalCase using the same fragmenting
// rules as Normalize.
func Pascal(identifier string) string {
    frags := fragments(identifier)
    if len(frags) == 0 {
        return ""
    }
    var b strings.Builder
    for _, f := range frags {
        b.WriteString(titleFragment(f))
    }
    return b.String()
}

// Singular reduces a plural English word to its singular form using the
// handful of rules the pipeline needs for tag and property matching
// (users -> user, statuses -> status, categories -> category). Words it
// cannot reduce are returned unchanged.
func Singular(word string) string {
    lower := strings.ToLower(word)
    switch {
    case len(word) > 4 && strings.HasSuffix(lower, "ies"):
        return word[:len(word)-3] + "y"
    case hasAnySuffix(lower, "ses", "xes", "zes", "ches", "shes"):
        return word[:len(word)-2]
    case len(word) > 1 && strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss"):
        return word[:len(word)-1]
    }
    return word
}

func hasAnySuffix(s string, suffixes ...string) bool {
    for _, suf := range suffixes {
        if strings.HasSuffix(s, suf) {
            return true
        }
    }
    return false
}

// fragments splits an identifier at separator characters and case
// boundaries. Non-identifier characters are discarded.
func fragments(s string) []string {
    var out []string
    var cur []rune
    runes := []rune(s)
    flush := func() {
        if len(cur) > 0 {
            out = append(out, string(cur))
            cur = nil
        }
    }
    for i, r := range runes {
        switch {
        case unicode.IsLetter(r) || unicode.IsDigit(r):
            if len(cur) > 0 && boundary(runes, i) {
                flush()
            }
            cur = append(cur, r)
        default:
            flush()
        }
    }
    flush()
    return out
}

// boundary reports whether a new fragment starts at index i: a lower/digit
// to upper transition, or the last upper of an acronym run followed by a
// lower letter (HTTPServer -> HTTP | Server).
func boundary(runes []rune, i int) bool {
    r := runes[i]
    prev := runes[i-1]
    if !unicode.IsUpper(r) {
        return false
    }
    if unicode.IsLower(prev) || unicode.IsDigit(prev) {
        return true
    }
    if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
        return true
    }
    return false
}

func lowerFragment(f string) string {
    if f == strings.ToUpper(f) {
        return strings.ToLower(f)
    }
    r := []rune(f)
    r[0] = unicode.ToLower(r[0])
    return string(r)
}

func titleFragment(f string) string {
    r := []rune(f)
    if f == strings.ToUpper(f) && len(r) > 1 {
        // Acronym fragment: Title-case it so joins stay unambiguous.
        return string(r[0]) + strings.ToLower(string(r[1:]))
    }
    r[0] = unicode.ToUpper(r[0])
    return string(r)
}
