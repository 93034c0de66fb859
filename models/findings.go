package models

import "strconv"

// ComputeFindingStats counts findings per stage: CAR as non-conformity,
// OBS and CR as observation, FAR as suggestion.
func ComputeFindingStats(findings []FindingItem) FindingStats {
	var counts [2][3]int
	for _, f := range findings {
		s := 0
		if f.Stage == StageS2 {
			s = 1
		}
		switch f.Type {
		case FindingTypeCAR:
			counts[s][0]++
		case FindingTypeOBS, FindingTypeCR:
			counts[s][1]++
		case FindingTypeFAR:
			counts[s][2]++
		}
	}
	toCounts := func(c [3]int) FindingCounts {
		return FindingCounts{
			NonConformity: strconv.Itoa(c[0]),
			Observation:   strconv.Itoa(c[1]),
			Suggestion:    strconv.Itoa(c[2]),
		}
	}
	return FindingStats{S1: toCounts(counts[0]), S2: toCounts(counts[1])}
}

// FindingsForStage keeps the findings of one stage in their original order.
func FindingsForStage(findings []FindingItem, stage Stage) []FindingItem {
	out := make([]FindingItem, 0, len(findings))
	for _, f := range findings {
		if f.Stage == stage {
			out = append(out, f)
		}
	}
	return out
}

// CarryOverKeptFindings copies every S1 finding kept open into S2, unless an
// S2 finding with the same description already exists. The copy has its
// result, review opinion and reviewer cleared. newID supplies ids for copies.
func CarryOverKeptFindings(findings []FindingItem, newID func() string) ([]FindingItem, bool) {
	s2 := make(map[string]bool)
	for _, f := range findings {
		if f.Stage == StageS2 {
			s2[f.Description] = true
		}
	}
	out := append([]FindingItem(nil), findings...)
	changed := false
	for _, f := range findings {
		if f.Stage != StageS1 || f.Result != FindingResultKeep || s2[f.Description] {
			continue
		}
		c := f
		c.ID = newID()
		c.Stage = StageS2
		c.Result = FindingResultNone
		c.ReviewOpinion = ""
		c.Reviewer = ""
		out = append(out, c)
		s2[f.Description] = true
		changed = true
	}
	return out, changed
}

// normalizeFindings re-derives the read-only parts of a findings report.
// Kept findings are carried over only when the stage advances to S2, so a
// carried copy deleted later in S2 stays deleted.
func normalizeFindings(prevStage Stage, r FindingsReport, newID func() string) FindingsReport {
	if r.BasicInfo.Stage == StageS2 && prevStage != StageS2 {
		r.Findings, _ = CarryOverKeptFindings(r.Findings, newID)
	}
	r.Stats = ComputeFindingStats(r.Findings)
	return r
}
