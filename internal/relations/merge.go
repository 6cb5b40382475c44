package relations

import "sort"

// merge collapses raw detector candidates into relationship records.
//
// Candidates with an identical (source, target) pair become one record whose
// detectedBy is the union of contributing heuristics and whose evidence list
// accumulates all contributing items (duplicates by location+details
// suppressed). A belongsTo-only group is the child-side view of the same
// edge; when the parent-side record exists, the group folds into it and the
// parent orientation survives.
//
// Confidence: high when two or more heuristics agree, medium when schema_ref
// fires alone, low when a single weaker heuristic fires alone. Adding
// evidence never lowers the tier.
func merge(cands []candidate) []Relationship {
    type group struct {
        source, target string
        types          map[Type]struct{}
        sources        map[Source]struct{}
        evidence       []Evidence
        evKeys         map[string]struct{}
    }
    var order []string
    groups := map[string]*group{}

    key := func(s, t string) string { return s + "\x00" + t }

    for _, c := range cands {
        k := key(c.source, c.target)
        g, ok := groups[k]
        if !ok {
            g = &group{
                source: c.source, target: c.target,
                types:   map[Type]struct{}{},
                sources: map[Source]struct{}{},
                evKeys:  map[string]struct{}{},
            }
            groups[k] = g
            order = append(order, k)
        }
        g.types[c.typ] = struct{}{}
        g.sources[c.ev.Source] = struct{}{}
        ek := string(c.ev.Source) + "\x00" + c.ev.Location + "\x00" + c.ev.Details
        if _, dup := g.evKeys[ek]; !dup {
            g.evKeys[ek] = struct{}{}
            g.evidence = append(g.evidence, c.ev)
        }
    }

    // Fold child-side belongsTo groups into their parent-side counterpart.
    folded := map[string]struct{}{}
    for _, k := range order {
        g := groups[k]
        if !belongsToOnly(g.types) {
            continue
        }
        inverse, ok := groups[key(g.target, g.source)]
        if !ok || belongsToOnly(inverse.types) {
            continue
        }
        for _, ev := range g.evidence {
            ek := string(ev.Source) + "\x00" + ev.Location + "\x00" + ev.Details
            if _, dup := inverse.evKeys[ek]; dup {
                continue
            }
            inverse.evKeys[ek] = struct{}{}
            inverse.evidence = append(inverse.evidence, ev)
        }
        for s := range g.sources {
            inverse.sources[s] = struct{}{}
        }
        folded[k] = struct{}{}
    }

    var out []Relationship
    for _, k := range order {
        if _, gone := folded[k]; gone {
            continue
        }
        g := groups[k]
        out = append(out, Relationship{
            SourceEntity: g.source,
            TargetEntity: g.target,
            Type:         dominantType(g.types),
            Confidence:   scoreConfidence(g.sources),
            DetectedBy:   sortedSources(g.sources),
            Evidence:     g.evidence,
        })
    }
    return out
}

func belongsToOnly(types map[Type]struct{}) bool {
    _, ok := types[BelongsTo]
    return ok && len(types) == 1
}

// dominantType picks the record type when detectors disagree: array evidence
// outranks scalar evidence.
func dominantType(types map[Type]struct{}) Type {
    if _, ok := types[HasMany]; ok {
        return HasMany
    }
    if _, ok := types[HasOne]; ok {
        return HasOne
    }
    return BelongsTo
}

func scoreConfidence(sources map[Source]struct{}) Confidence {
    if len(sources) >= 2 {
        return High
    }
    if _, ok := sources[SourceSchemaRef]; ok {
        return Medium
    }
    return Low
}

func sortedSources(sources map[Source]struct{}) []Source {
    out := make([]Source, 0, len(sources))
    for s := range sources {
        out = append(out, s)
    }
    sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
    return out
}

// Mutual returns the entity pairs that have relationship records in both
// directions, each pair ordered lexicographically. The flag is derived here
// at presentation time rather than stored on the records.
func Mutual(rels []Relationship) [][2]string {
    forward := map[[2]string]struct{}{}
    for _, r := range rels {
        forward[[2]string{r.SourceEntity, r.TargetEntity}] = struct{}{}
    }
    seen := map[[2]string]struct{}{}
    var out [][2]string
    for _, r := range rels {
        a, b := r.SourceEntity, r.TargetEntity
        if a > b {
            a, b = b, a
        }
        pair := [2]string{a, b}
        if _, dup := seen[pair]; dup {
            continue
        }
        if _, fwd := forward[[2]string{a, b}]; !fwd {
            continue
        }
        if _, rev := forward[[2]string{b, a}]; !rev {
            continue
        }
        seen[pair] = struct{}{}
        out = append(out, pair)
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i][0] != out[j][0] {
            return out[i][0] < out[j][0]
        }
        return out[i][1] < out[j][1]
    })
    return out
}
