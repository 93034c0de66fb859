package models

import "strings"

const checklistDelimiter = "."

// IsHeader reports whether the item is a section header (an id without a sub-level).
func (c ChecklistItem) IsHeader() bool {
	return !strings.Contains(c.ID, checklistDelimiter)
}

// RootSegment is the leading id segment shared by a header and its children.
func (c ChecklistItem) RootSegment() string {
	root, _, _ := strings.Cut(c.ID, checklistDelimiter)
	return root
}

// ChecklistGroup is a header with the child rows that follow it.
// Header is nil when children appear without a header of their own.
type ChecklistGroup struct {
	Prefix   string
	Header   *ChecklistItem
	Children []ChecklistItem
}

// Rows returns the group in render order, header first.
func (g ChecklistGroup) Rows() []ChecklistItem {
	rows := make([]ChecklistItem, 0, len(g.Children)+1)
	if g.Header != nil {
		rows = append(rows, *g.Header)
	}
	return append(rows, g.Children...)
}

// GroupChecklist groups items by root segment, keeping first-appearance order
// for groups and the original order inside each group.
func GroupChecklist(items []ChecklistItem) []ChecklistGroup {
	var groups []ChecklistGroup
	index := make(map[string]int)
	for _, item := range items {
		prefix := item.RootSegment()
		i, ok := index[prefix]
		if !ok {
			groups = append(groups, ChecklistGroup{Prefix: prefix})
			i = len(groups) - 1
			index[prefix] = i
		}
		if item.IsHeader() && groups[i].Header == nil {
			header := item
			groups[i].Header = &header
			continue
		}
		groups[i].Children = append(groups[i].Children, item)
	}
	return groups
}

func findChecklistItem(items []ChecklistItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func setChecklistStatus(items []ChecklistItem, id string, status ComplianceStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	i := findChecklistItem(items, id)
	if i < 0 {
		return ErrItemNotFound
	}
	if items[i].IsHeader() {
		return ErrHeaderNotMarkable
	}
	items[i].Status = status
	return nil
}

func markAllCompliant(items []ChecklistItem) {
	for i := range items {
		if !items[i].IsHeader() {
			items[i].Status = ComplianceStatusCompliant
		}
	}
}
