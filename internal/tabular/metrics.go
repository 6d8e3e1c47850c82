package tabular

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Metric pairs an indicator label with the ordered header phrasings it has
// appeared under across handbook editions. Earlier candidates are preferred.
type Metric struct {
	Label      string   `yaml:"label"`
	Candidates []string `yaml:"candidates"`
}

// Dictionary is the full metric configuration for one ingestion run: the
// insurer-name column candidates plus every metric to extract. The slice
// order is the processing order, which fixes the last-write-wins outcome when
// two tables supply the same metric.
type Dictionary struct {
	NameCandidates []string `yaml:"name_candidates"`
	Metrics        []Metric `yaml:"metrics"`
}

// Labels returns the metric labels in dictionary order.
func (d Dictionary) Labels() []string {
	labels := make([]string, len(d.Metrics))
	for i, m := range d.Metrics {
		labels[i] = m.Label
	}
	return labels
}

// DefaultDictionary returns the built-in metric dictionary covering every
// header phrasing observed in the 2019-2024 handbook editions.
func DefaultDictionary() Dictionary {
	return Dictionary{
		NameCandidates: []string{
			"insurer", "insurer name", "company", "insurance company",
			"name", "name of insurer", "company name",
		},
		Metrics: []Metric{
			{Label: "claim_settlement_ratio", Candidates: []string{
				"claim settlement ratio", "claim-settlement ratio", "settlement ratio",
				"claim settlement (%)", "policyholder claims settled", "claim settlement %",
				"claim paid ratio", "claim paid (%)", "claims settled",
			}},
			{Label: "solvency_ratio", Candidates: []string{
				"solvency ratio", "solvency", "solvency margin ratio", "solvency ratio (%)",
				"available solvency margin", "required solvency margin", "actual solvency ratio",
			}},
			{Label: "gross_premium_total", Candidates: []string{
				"gross written premium", "gross direct premium", "gross premium", "gwp",
				"total gross premium", "gross premium income", "gdi", "total premium",
			}},
			{Label: "claims_ratio", Candidates: []string{
				"incurred claims ratio", "claims ratio", "icr", "net incurred claims ratio", "loss ratio",
			}},
			{Label: "eom_ratio", Candidates: []string{
				"expenses of management", "eom", "eom ratio", "expense of management ratio",
				"total management expenses", "management expense ratio",
			}},
			{Label: "commission_ratio", Candidates: []string{
				"commission", "commission ratio", "commission expenses",
				"commissions to premium", "commission expense ratio",
			}},
			{Label: "grievances_received", Candidates: []string{
				"grievances received", "complaints received", "total grievances received", "grievances - received",
			}},
			{Label: "grievances_resolved", Candidates: []string{
				"grievances resolved", "complaints resolved", "total grievances resolved", "grievances - resolved",
			}},
			{Label: "grievances_pending", Candidates: []string{
				"grievances pending", "complaints pending", "pending grievances", "grievances - pending",
			}},
			{Label: "grievances_within_tat_percent", Candidates: []string{
				"within tat", "tat", "resolved within tat", "within tat %", "resolved within turnaround time",
			}},
			{Label: "aum_total", Candidates: []string{
				"assets under management", "aum", "investments", "total investments", "funds under management",
			}},
		},
	}
}

// LoadDictionary reads a dictionary override from a YAML file. Metrics with
// an empty label or no candidates are rejected so a bad override fails loudly
// at startup rather than silently extracting nothing.
func LoadDictionary(path string) (Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dictionary{}, fmt.Errorf("read metric dictionary: %w", err)
	}
	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return Dictionary{}, fmt.Errorf("parse metric dictionary: %w", err)
	}
	if len(dict.NameCandidates) == 0 {
		return Dictionary{}, fmt.Errorf("metric dictionary %s: name_candidates is empty", path)
	}
	for i, m := range dict.Metrics {
		if m.Label == "" {
			return Dictionary{}, fmt.Errorf("metric dictionary %s: metric %d has no label", path, i)
		}
		if len(m.Candidates) == 0 {
			return Dictionary{}, fmt.Errorf("metric dictionary %s: metric %q has no candidates", path, m.Label)
		}
	}
	return dict, nil
}
