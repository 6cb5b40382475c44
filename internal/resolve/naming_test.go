package resolve

import (
    "regexp"
    "testing"
)

var identRe = regexp.MustCompile(`^[a-z_][a-zA-Z0-9_]*$`)

func TestNormalize_Conventions(t *testing.T) {
    t.Parallel()
    cases := []struct {
        in   string
        want string
    }{
        {"Users_GetById", "usersGetById"},
        {"get_users_by_status", "getUsersByStatus"},
        {"kebab-case-name", "kebabCaseName"},
        {"PascalName", "pascalName"},
        {"alreadyCamel", "alreadyCamel"},
        {"HTTPServer", "httpServer"},
        {"mixed_Case-input", "mixedCaseInput"},
        {"with  spaces", "withSpaces"},
        {"2fast", "_2fast"},
        {"", ""},
        {"!!!", ""},
        {"___", ""},
    }
    for _, tc := range cases {
        if got := Normalize(tc.in); got != tc.want {
            t.Errorf("Normalize(%q): got %q, want %q", tc.in, got, tc.want)
        }
    }
}

func TestNormalize_Idempotent(t *testing.T) {
    t.Parallel()
    inputs := []string{"Users_GetById", "get_users_by_status", "HTTPServer", "2fast", "x", ""}
    for _, in := range inputs {
        once := Normalize(in)
        twice := Normalize(once)
        if once != twice {
            t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
        }
        if once != "" && !identRe.MatchString(once) {
            t.Errorf("Normalize(%q) = %q does not match identifier pattern", in, once)
        }
    }
}

func TestPascal(t *testing.T) {
    t.Parallel()
    cases := []struct {
        in   string
        want string
    }{
        {"users", "Users"},
        {"order_lines", "OrderLines"},
        {"pet-store", "PetStore"},
        {"", ""},
    }
    for _, tc := range cases {
        if got := Pascal(tc.in); got != tc.want {
            t.Errorf("Pascal(%q): got %q, want %q", tc.in, got, tc.want)
        }
    }
}

func TestSingular(t *testing.T) {
    t.Parallel()
    cases := []struct {
        in   string
        want string
    }{
        {"users", "user"},
        {"orders", "order"},
        {"statuses", "status"},
        {"categories", "category"},
        {"boxes", "box"},
        {"address", "address"},
        {"person", "person"},
    }
    for _, tc := range cases {
        if got := Singular(tc.in); got != tc.want {
            t.Errorf("Singular(%q): got %q, want %q", tc.in, got, tc.want)
        }
    }
}
