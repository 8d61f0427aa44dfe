package commit

// Aggregate folds the release types of a window into one authoritative
// type: the maximum under NONE < PATCH < MINOR < MAJOR. It is
// associative and commutative, so the retrieval order of inner commits
// can't change the decision. An empty window aggregates to ReleaseNone,
// meaning no release is due.
func Aggregate(types []ReleaseType) ReleaseType {
	max := ReleaseNone
	for _, t := range types {
		if t > max {
			max = t
		}
	}
	return max
}

func (acs AnalyzedCommits) Aggregate() ReleaseType {
	return Aggregate(acs.ReleaseTypes())
}
