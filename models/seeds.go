package models

import (
	"embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed seeds/*.yaml
var seedFS embed.FS

type seedFile struct {
	Report ReportCode `yaml:"report"`
	Items  []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		DocRef string `yaml:"docRef"`
	} `yaml:"items"`
}

var (
	seedOnce   sync.Once
	seedErr    error
	seedByCode map[ReportCode][]ChecklistItem
)

func loadSeeds() {
	seedByCode = make(map[ReportCode][]ChecklistItem)
	files := map[ReportCode]string{
		ReportCodeSummary:     "seeds/g3022.yaml",
		ReportCodeObservation: "seeds/g3026.yaml",
	}
	for code, name := range files {
		raw, err := seedFS.ReadFile(name)
		if err != nil {
			seedErr = err
			return
		}
		var f seedFile
		if err := yaml.Unmarshal(raw, &f); err != nil {
			seedErr = fmt.Errorf("parse %s: %w", name, err)
			return
		}
		items := make([]ChecklistItem, 0, len(f.Items))
		for _, it := range f.Items {
			items = append(items, ChecklistItem{
				ID:     it.ID,
				Name:   it.Name,
				DocRef: it.DocRef,
				Status: ComplianceStatusNA,
			})
		}
		seedByCode[code] = items
	}
}

// SeedChecklist returns a fresh copy of the default checklist of a report.
// G-3027 has no checklist and yields nil.
func SeedChecklist(code ReportCode) []ChecklistItem {
	seedOnce.Do(loadSeeds)
	if seedErr != nil {
		panic(seedErr)
	}
	return slices.Clone(seedByCode[code])
}
