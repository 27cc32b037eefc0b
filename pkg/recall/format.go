package recall

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/soundprediction/graphrecall/pkg/types"
)

// Formatter maps engine output into per-scenario views. It performs no I/O
// and never returns nil slices, so empty result sets serialize as empty
// structures rather than null.
type Formatter struct{}

// NewFormatter creates a formatter.
func NewFormatter() *Formatter {
	return &Formatter{}
}

// SimilarDocument is one row of a similarity search view.
type SimilarDocument struct {
	Rank        int     `json:"rank"`
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Similarity  float64 `json:"similarity"`
	Decision    string  `json:"decision,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Reasoning   string  `json:"reasoning,omitempty"`
}

// SimilarDocumentsView is the similarity search scenario view.
type SimilarDocumentsView struct {
	Results []SimilarDocument `json:"results"`
}

// SimilarDocuments builds the similarity view from engine results.
func (f *Formatter) SimilarDocuments(results []types.RecallResult) SimilarDocumentsView {
	view := SimilarDocumentsView{Results: []SimilarDocument{}}
	for _, r := range results {
		doc := SimilarDocument{
			Rank:        r.Rank,
			ID:          r.Record.ID,
			Title:       r.Record.StringProp("title"),
			Description: r.Record.StringProp("description"),
			Status:      r.Record.StringProp("status"),
			Priority:    r.Record.StringProp("priority"),
			Similarity:  r.Score,
		}
		if r.Joined != nil {
			doc.Decision, _ = r.Joined["decision"].(string)
			doc.Confidence, _ = r.Joined["confidence"].(float64)
			doc.Reasoning, _ = r.Joined["reasoning"].(string)
		}
		view.Results = append(view.Results, doc)
	}
	return view
}

// Suggestion is one historical review comment offered for a new document.
type Suggestion struct {
	Content        string  `json:"content"`
	Recommendation string  `json:"recommendation"`
	RiskLevel      string  `json:"risk_level"`
	SourceDocument string  `json:"source_document"`
	Similarity     float64 `json:"similarity"`
}

// DepartmentSuggestions groups suggestions under one department.
type DepartmentSuggestions struct {
	Department  string       `json:"department"`
	Suggestions []Suggestion `json:"suggestions"`
}

// SuggestionsView is the review suggestion scenario view, grouped by
// department. Grouping partitions the results; nothing is discarded.
type SuggestionsView struct {
	Departments []DepartmentSuggestions `json:"departments"`
}

// Suggestions builds the grouped suggestion view. Departments come back in
// alphabetical order; suggestions keep their rank order within each group.
func (f *Formatter) Suggestions(results []types.RecallResult) SuggestionsView {
	byDept := make(map[string][]Suggestion)
	for _, r := range results {
		dept := r.Record.StringProp("department")
		s := Suggestion{
			Content:        r.Record.StringProp("content"),
			Recommendation: r.Record.StringProp("recommendation"),
			RiskLevel:      r.Record.StringProp("risk_level"),
			Similarity:     r.Score,
		}
		if r.Joined != nil {
			s.SourceDocument, _ = r.Joined["source_document"].(string)
		}
		byDept[dept] = append(byDept[dept], s)
	}

	view := SuggestionsView{Departments: []DepartmentSuggestions{}}
	depts := make([]string, 0, len(byDept))
	for dept := range byDept {
		depts = append(depts, dept)
	}
	sort.Strings(depts)
	for _, dept := range depts {
		view.Departments = append(view.Departments, DepartmentSuggestions{
			Department:  dept,
			Suggestions: byDept[dept],
		})
	}
	return view
}

// Risk is one surfaced risk assessment.
type Risk struct {
	Rank           int     `json:"rank"`
	ID             string  `json:"id"`
	Category       string  `json:"category"`
	Severity       string  `json:"severity"`
	Probability    float64 `json:"probability"`
	Impact         string  `json:"impact"`
	Mitigation     string  `json:"mitigation"`
	IdentifiedBy   string  `json:"identified_by,omitempty"`
	SourceDocument string  `json:"source_document,omitempty"`
	Similarity     float64 `json:"similarity"`
}

// RisksView is the risk identification scenario view.
type RisksView struct {
	Risks []Risk `json:"risks"`
}

// Risks builds the risk view from engine results.
func (f *Formatter) Risks(results []types.RecallResult) RisksView {
	view := RisksView{Risks: []Risk{}}
	for _, r := range results {
		risk := Risk{
			Rank:        r.Rank,
			ID:          r.Record.ID,
			Category:    r.Record.StringProp("risk_category"),
			Severity:    r.Record.StringProp("severity"),
			Probability: r.Record.FloatProp("probability"),
			Impact:      r.Record.StringProp("impact"),
			Mitigation:  r.Record.StringProp("mitigation_strategy"),
			Similarity:  r.Score,
		}
		if r.Joined != nil {
			risk.IdentifiedBy, _ = r.Joined["identified_by"].(string)
			risk.SourceDocument, _ = r.Joined["source_document"].(string)
		}
		view.Risks = append(view.Risks, risk)
	}
	return view
}

// KnowledgeEntry is one knowledge base match.
type KnowledgeEntry struct {
	Rank       int            `json:"rank"`
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	Similarity float64        `json:"similarity"`
	Props      map[string]any `json:"props,omitempty"`
}

// KnowledgeGroup partitions entries by a group attribute value.
type KnowledgeGroup struct {
	Group   string           `json:"group"`
	Entries []KnowledgeEntry `json:"entries"`
}

// KnowledgeBaseView is the knowledge base scenario view.
type KnowledgeBaseView struct {
	Label  string           `json:"label"`
	Groups []KnowledgeGroup `json:"groups"`
}

// KnowledgeBase partitions results by groupProp. Records without the group
// property fall into an empty-named group; every match appears exactly once.
// textProp names the property shown as the entry's text.
func (f *Formatter) KnowledgeBase(label, textProp, groupProp string, results []types.RecallResult) KnowledgeBaseView {
	byGroup := make(map[string][]KnowledgeEntry)
	for _, r := range results {
		entry := KnowledgeEntry{
			Rank:       r.Rank,
			ID:         r.Record.ID,
			Text:       r.Record.StringProp(textProp),
			Similarity: r.Score,
			Props:      r.Record.Props,
		}
		group := ""
		if groupProp != "" {
			group = r.Record.StringProp(groupProp)
		}
		byGroup[group] = append(byGroup[group], entry)
	}

	view := KnowledgeBaseView{Label: label, Groups: []KnowledgeGroup{}}
	groups := make([]string, 0, len(byGroup))
	for group := range byGroup {
		groups = append(groups, group)
	}
	sort.Strings(groups)
	for _, group := range groups {
		view.Groups = append(view.Groups, KnowledgeGroup{Group: group, Entries: byGroup[group]})
	}
	return view
}

// HybridResult is one row of a hybrid search view.
type HybridResult struct {
	Rank       int     `json:"rank"`
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Status     string  `json:"status"`
	Priority   string  `json:"priority"`
	Similarity float64 `json:"similarity"`
	Decision   string  `json:"decision,omitempty"`
	NumRisks   int     `json:"num_risks"`
}

// HybridView is the hybrid search scenario view.
type HybridView struct {
	Results []HybridResult `json:"results"`
}

// Hybrid builds the hybrid view from engine results.
func (f *Formatter) Hybrid(results []types.RecallResult) HybridView {
	view := HybridView{Results: []HybridResult{}}
	for _, r := range results {
		row := HybridResult{
			Rank:       r.Rank,
			ID:         r.Record.ID,
			Title:      r.Record.StringProp("title"),
			Status:     r.Record.StringProp("status"),
			Priority:   r.Record.StringProp("priority"),
			Similarity: r.Score,
		}
		if r.Joined != nil {
			row.Decision, _ = r.Joined["decision"].(string)
			if n, ok := r.Joined["num_risks"].(int); ok {
				row.NumRisks = n
			}
		}
		view.Results = append(view.Results, row)
	}
	return view
}

// RenderSimilarDocuments renders the similarity view as plain text for the
// CLI.
func (f *Formatter) RenderSimilarDocuments(view SimilarDocumentsView) string {
	if len(view.Results) == 0 {
		return "No similar documents found."
	}
	var b strings.Builder
	writeHeader(&b, "SIMILAR DOCUMENTS")
	for _, doc := range view.Results {
		fmt.Fprintf(&b, "\n[%d] %s\n", doc.Rank, doc.Title)
		fmt.Fprintf(&b, "    ID: %s\n", doc.ID)
		fmt.Fprintf(&b, "    Similarity: %.4f\n", doc.Similarity)
		fmt.Fprintf(&b, "    Status: %s | Priority: %s\n", doc.Status, doc.Priority)
		if doc.Decision != "" {
			fmt.Fprintf(&b, "    Decision: %s (confidence %.2f)\n", doc.Decision, doc.Confidence)
		}
		if doc.Description != "" {
			fmt.Fprintf(&b, "    Description: %s\n", truncate(doc.Description, 150))
		}
	}
	return b.String()
}

// RenderSuggestions renders the grouped suggestion view as plain text.
func (f *Formatter) RenderSuggestions(view SuggestionsView) string {
	if len(view.Departments) == 0 {
		return "No review suggestions found."
	}
	var b strings.Builder
	writeHeader(&b, "REVIEW SUGGESTIONS")
	for _, dept := range view.Departments {
		fmt.Fprintf(&b, "\n[%s]\n", dept.Department)
		for i, s := range dept.Suggestions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s.Content)
			fmt.Fprintf(&b, "     From: %s (similarity %.4f)\n", s.SourceDocument, s.Similarity)
			if s.Recommendation != "" {
				fmt.Fprintf(&b, "     Recommendation: %s | Risk: %s\n", s.Recommendation, s.RiskLevel)
			}
		}
	}
	return b.String()
}

// RenderRisks renders the risk view as plain text.
func (f *Formatter) RenderRisks(view RisksView) string {
	if len(view.Risks) == 0 {
		return "No potential risks identified."
	}
	var b strings.Builder
	writeHeader(&b, "POTENTIAL RISKS")
	for _, risk := range view.Risks {
		fmt.Fprintf(&b, "\n[%d] %s - %s\n", risk.Rank, risk.Category, risk.Severity)
		fmt.Fprintf(&b, "    Similarity: %.4f | Probability: %.2f\n", risk.Similarity, risk.Probability)
		fmt.Fprintf(&b, "    Impact: %s\n", risk.Impact)
		if risk.Mitigation != "" {
			fmt.Fprintf(&b, "    Mitigation: %s\n", risk.Mitigation)
		}
		if risk.IdentifiedBy != "" {
			fmt.Fprintf(&b, "    Identified by: %s\n", risk.IdentifiedBy)
		}
	}
	return b.String()
}

// RenderKnowledgeBase renders the knowledge base view as plain text.
func (f *Formatter) RenderKnowledgeBase(view KnowledgeBaseView) string {
	if len(view.Groups) == 0 {
		return fmt.Sprintf("No %s knowledge found.", view.Label)
	}
	var b strings.Builder
	writeHeader(&b, strings.ToUpper(view.Label)+" KNOWLEDGE BASE")
	for _, group := range view.Groups {
		if group.Group != "" {
			fmt.Fprintf(&b, "\n[%s]\n", group.Group)
		}
		for _, entry := range group.Entries {
			fmt.Fprintf(&b, "  %d. %s (similarity %.4f)\n", entry.Rank, truncate(entry.Text, 120), entry.Similarity)
		}
	}
	return b.String()
}

func writeHeader(b *strings.Builder, title string) {
	line := strings.Repeat("=", 80)
	b.WriteString(line + "\n")
	b.WriteString(title + "\n")
	b.WriteString(line + "\n")
}

// truncate shortens s to at most n bytes without splitting a UTF-8 rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
