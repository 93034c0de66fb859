package models

// sharedField is one basic-info value kept identical across the reports.
// extract reads the value from the report being edited; some reports borrow
// it from G-3022 because they have no field of their own. inject writes it
// into a target report; a missing injector means the target never receives it.
// acceptFrom, when set, limits which sources may overwrite the target.
type sharedField struct {
	name       string
	extract    map[ReportCode]func(AppState) string
	inject     map[ReportCode]func(*AppState, string)
	acceptFrom map[ReportCode][]ReportCode
}

var sharedFields = []sharedField{
	{
		name: "caseNumber",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.BasicInfo.CaseNumber },
			ReportCodeObservation: func(s AppState) string { return s.Observation.BasicInfo.CaseNumber },
			ReportCodeFindings:    func(s AppState) string { return s.Findings.BasicInfo.CaseNumber },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     func(s *AppState, v string) { s.Summary.BasicInfo.CaseNumber = v },
			ReportCodeObservation: func(s *AppState, v string) { s.Observation.BasicInfo.CaseNumber = v },
			ReportCodeFindings:    func(s *AppState, v string) { s.Findings.BasicInfo.CaseNumber = v },
		},
	},
	{
		name: "clientName",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.BasicInfo.ClientName },
			ReportCodeObservation: func(s AppState) string { return s.Observation.BasicInfo.ClientName },
			ReportCodeFindings:    func(s AppState) string { return s.Summary.BasicInfo.ClientName },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     func(s *AppState, v string) { s.Summary.BasicInfo.ClientName = v },
			ReportCodeObservation: func(s *AppState, v string) { s.Observation.BasicInfo.ClientName = v },
		},
	},
	{
		name: "clientAddress",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.BasicInfo.ClientAddress },
			ReportCodeObservation: func(s AppState) string { return s.Observation.BasicInfo.ClientAddress },
			ReportCodeFindings:    func(s AppState) string { return s.Summary.BasicInfo.ClientAddress },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     func(s *AppState, v string) { s.Summary.BasicInfo.ClientAddress = v },
			ReportCodeObservation: func(s *AppState, v string) { s.Observation.BasicInfo.ClientAddress = v },
		},
	},
	{
		name: "leadVerifier",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.Conclusion.LeadVerifierName },
			ReportCodeObservation: func(s AppState) string { return s.Observation.LeadVerifierName },
			ReportCodeFindings:    func(s AppState) string { return s.Findings.BasicInfo.LeadVerifier },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     func(s *AppState, v string) { s.Summary.Conclusion.LeadVerifierName = v },
			ReportCodeObservation: func(s *AppState, v string) { s.Observation.LeadVerifierName = v },
			ReportCodeFindings:    func(s *AppState, v string) { s.Findings.BasicInfo.LeadVerifier = v },
		},
	},
	{
		name: "clientRep",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.Conclusion.ClientRepName },
			ReportCodeObservation: func(s AppState) string { return s.Summary.Conclusion.ClientRepName },
			ReportCodeFindings:    func(s AppState) string { return s.Findings.BasicInfo.AuditeeRep },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:  func(s *AppState, v string) { s.Summary.Conclusion.ClientRepName = v },
			ReportCodeFindings: func(s *AppState, v string) { s.Findings.BasicInfo.AuditeeRep = v },
		},
	},
	{
		name: "visitDate",
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     func(s AppState) string { return s.Summary.BasicInfo.VisitDate },
			ReportCodeObservation: func(s AppState) string { return s.Observation.BasicInfo.CheckDate },
			ReportCodeFindings:    func(s AppState) string { return s.Findings.BasicInfo.Date },
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     func(s *AppState, v string) { s.Summary.BasicInfo.VisitDate = v },
			ReportCodeObservation: func(s *AppState, v string) { s.Observation.BasicInfo.CheckDate = v },
			ReportCodeFindings:    func(s *AppState, v string) { s.Findings.BasicInfo.Date = v },
		},
	},
	docReferenceField("docReport",
		func(s AppState) string { return s.Summary.BasicInfo.ReportName },
		func(s *AppState, v string) { s.Summary.BasicInfo.ReportName = v },
		func(s AppState) string { return s.Observation.BasicInfo.ReportInfo },
		func(s *AppState, v string) { s.Observation.BasicInfo.ReportInfo = v },
	),
	docReferenceField("docInventory",
		func(s AppState) string { return s.Summary.BasicInfo.InventoryName },
		func(s *AppState, v string) { s.Summary.BasicInfo.InventoryName = v },
		func(s AppState) string { return s.Observation.BasicInfo.InventoryInfo },
		func(s *AppState, v string) { s.Observation.BasicInfo.InventoryInfo = v },
	),
	docReferenceField("docProcedure",
		func(s AppState) string { return s.Summary.BasicInfo.ProcedureName },
		func(s *AppState, v string) { s.Summary.BasicInfo.ProcedureName = v },
		func(s AppState) string { return s.Observation.BasicInfo.PowerFactorInfo },
		func(s *AppState, v string) { s.Observation.BasicInfo.PowerFactorInfo = v },
	),
}

// docReferenceField builds a document reference entry. G-3027 has no such
// fields and reads them from G-3022; G-3022 only accepts them from G-3026.
func docReferenceField(name string,
	getSummary func(AppState) string, setSummary func(*AppState, string),
	getObservation func(AppState) string, setObservation func(*AppState, string),
) sharedField {
	return sharedField{
		name: name,
		extract: map[ReportCode]func(AppState) string{
			ReportCodeSummary:     getSummary,
			ReportCodeObservation: getObservation,
			ReportCodeFindings:    getSummary,
		},
		inject: map[ReportCode]func(*AppState, string){
			ReportCodeSummary:     setSummary,
			ReportCodeObservation: setObservation,
		},
		acceptFrom: map[ReportCode][]ReportCode{
			ReportCodeSummary: {ReportCodeObservation},
		},
	}
}

func (f sharedField) accepts(target, source ReportCode) bool {
	allowed, limited := f.acceptFrom[target]
	if !limited {
		return true
	}
	for _, s := range allowed {
		if s == source {
			return true
		}
	}
	return false
}

// Sync copies the shared fields of the source report into the other two
// reports. Collections are never touched. Extraction happens on the
// incoming state before any injection, so the result does not depend on
// table order.
func Sync(source ReportCode, state AppState) AppState {
	if !source.IsValid() {
		return state
	}
	values := make([]string, len(sharedFields))
	for i, f := range sharedFields {
		values[i] = f.extract[source](state)
	}
	out := state
	for i, f := range sharedFields {
		for target, inject := range f.inject {
			if target == source || !f.accepts(target, source) {
				continue
			}
			inject(&out, values[i])
		}
	}
	return out
}

// SharedFieldNames lists the synchronized fields in table order.
func SharedFieldNames() []string {
	names := make([]string, 0, len(sharedFields))
	for _, f := range sharedFields {
		names = append(names, f.name)
	}
	return names
}
