package mapping

// Pair is one parent/child composite produced by MatchPairs.
type Pair struct {
	Parent string
	Child  string
}

// MatchPairs re-composes parent/child composites from the two flat id lists
// the source record provides. The source lists domains and subdomains (and
// categories and subcategories) independently; EOSC wants them paired. Each
// child is resolved to its parent through parentOf and paired when that
// parent was also listed on the record.
//
// When the resolved parent is absent from the record, a diagnostic is
// emitted; if the record carries exactly one parent and exactly one child in
// total, that single pair is forced anyway with a diagnostic; it will
// likely fail remote validation, but single-valued records survive
// inconsistent upstream data. Parents that never matched any child are
// reported as an invariant violation, never silently dropped.
//
// Output order follows the child list; duplicates are preserved.
func MatchPairs(d *Diagnostics, parents, children []string, parentOf map[string]string, parentField, childField string) []Pair {
	pairs := []Pair{}
	used := make(map[string]bool)

	for _, childID := range children {
		parentID, ok := parentOf[childID]
		if !ok {
			d.Addf("No parent mapping for %s %q; cannot compose a %s/%s pair", childField, childID, parentField, childField)
			continue
		}

		if containsString(parents, parentID) {
			used[parentID] = true
			pairs = append(pairs, Pair{Parent: parentID, Child: childID})
			continue
		}

		d.Addf("Did not find %s %q in metadata (to match %s %q)", parentField, parentID, childField, childID)
		if len(parents) == 1 && len(children) == 1 {
			d.Addf("Assigning %s %q with %s %q because they are the only ones given. This may fail validation.",
				childField, children[0], parentField, parents[0])
			pairs = append(pairs, Pair{Parent: parents[0], Child: children[0]})
		}
	}

	for _, parentID := range parents {
		if !used[parentID] {
			d.Addf("%s %q was present but without a matching %s; every %s needs a %s",
				parentField, parentID, childField, parentField, childField)
		}
	}

	return pairs
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
