package analytics

import (
	"fmt"
	"strings"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

const (
	colorGain      = "#2e7d32"
	colorLoss      = "#c62828"
	colorHighlight = "#fff3cd"
)

// StyleCondition selects the cells a style applies to. FilterQuery uses the data
// table filter syntax, e.g. {cumulative_growth} contains "+".
type StyleCondition struct {
	FilterQuery string `json:"filter_query"`
	ColumnID    string `json:"column_id,omitempty"`
}

// StyleRule is a conditional formatting hint for the presentation layer.
type StyleRule struct {
	If              StyleCondition `json:"if"`
	Color           string         `json:"color,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	FontWeight      string         `json:"fontWeight,omitempty"`

	// evaluated form of If.FilterQuery
	column   string
	contains string
	company  domain.CompanyShort
}

// Matches reports whether the rule applies to the given cell of a row.
func (s StyleRule) Matches(row Row, column string) bool {
	if s.If.ColumnID != "" && s.If.ColumnID != column {
		return false
	}
	if s.company != "" {
		return row.CompanyShort == s.company
	}
	return strings.Contains(row.Value(s.column), s.contains)
}

// signedColumns lists the columns colored by sign, per table.
var signedColumns = map[TableID][]string{
	TableGrowth:       {ColCumulativeGrowth},
	TableAvgReturn:    {ColAvgYearlyReturn},
	TableExtremes:     {ColWorstQuarter, ColBestQuarter},
	TableParticipants: {ColParticipantsChange},
}

func tableStyles(def tableDef, selected domain.CompanyShort) []StyleRule {
	rules := []StyleRule{}
	for _, col := range signedColumns[def.id] {
		rules = append(rules,
			containsRule(col, "+", colorGain),
			containsRule(col, "-", colorLoss),
		)
	}
	if selected != "" {
		rules = append(rules, StyleRule{
			If:              StyleCondition{FilterQuery: fmt.Sprintf("{%s} = %q", ColCompany, string(selected))},
			BackgroundColor: colorHighlight,
			FontWeight:      "700",
			company:         selected,
		})
	}
	return rules
}

func containsRule(column, text, color string) StyleRule {
	return StyleRule{
		If: StyleCondition{
			FilterQuery: fmt.Sprintf("{%s} contains %q", column, text),
			ColumnID:    column,
		},
		Color:      color,
		FontWeight: "600",
		column:     column,
		contains:   text,
	}
}
