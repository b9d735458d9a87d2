package analytics

import (
	"math"
	"sort"

	"github.com/zygimantas124/pension-fund-lt/pkg/contracts/domain"
)

// TableID names one of the comparison tables.
type TableID string

const (
	TableGrowth       TableID = "growth"
	TableAvgReturn    TableID = "avg_return"
	TableExtremes     TableID = "extremes"
	TableParticipants TableID = "participants"
	TableExpenses     TableID = "expenses"
)

// Column ids of the comparison tables.
const (
	ColCompany            = "company_short"
	ColCumulativeGrowth   = "cumulative_growth"
	ColAvgYearlyReturn    = "avg_yearly_return"
	ColWorstQuarter       = "worst_quarter"
	ColBestQuarter        = "best_quarter"
	ColParticipantsLatest = "participants_latest"
	ColParticipantsChange = "participants_change"
	ColExpenseRatio       = "expense_ratio"
)

// TableIDs lists the tables in display order.
var TableIDs = []TableID{TableGrowth, TableAvgReturn, TableExtremes, TableParticipants, TableExpenses}

// Row is one owner's formatted cells in a table.
type Row struct {
	CompanyShort domain.CompanyShort `json:"company_short"`
	Cells        map[string]string   `json:"cells"`
	NoData       bool                `json:"no_data"`

	sortKey float64
}

// Table is a ranked, formatted comparison table.
type Table struct {
	ID      TableID     `json:"id"`
	Columns []string    `json:"columns"`
	Rows    []Row       `json:"rows"`
	Styles  []StyleRule `json:"styles"`
}

// Value returns the cell of a column, the owner name for the company column.
func (r Row) Value(column string) string {
	if column == ColCompany {
		return string(r.CompanyShort)
	}
	return r.Cells[column]
}

type tableDef struct {
	id         TableID
	columns    []string
	descending bool
	// sentinel used by the final sanitize pass
	noDataMsg func(Messages) string
	cells     func(FundMetrics, Messages) (map[string]string, float64)
}

var tableDefs = []tableDef{
	{
		id:         TableGrowth,
		columns:    []string{ColCompany, ColCumulativeGrowth},
		descending: true,
		cells: func(m FundMetrics, msg Messages) (map[string]string, float64) {
			return map[string]string{ColCumulativeGrowth: FormatSigned(m.Growth, msg.FundNotExist)}, m.Growth
		},
	},
	{
		id:         TableAvgReturn,
		columns:    []string{ColCompany, ColAvgYearlyReturn},
		descending: true,
		cells: func(m FundMetrics, msg Messages) (map[string]string, float64) {
			return map[string]string{ColAvgYearlyReturn: FormatSigned(m.Annualised, msg.FundNotExist)}, m.Annualised
		},
	},
	{
		id:      TableExtremes,
		columns: []string{ColCompany, ColWorstQuarter, ColBestQuarter},
		cells: func(m FundMetrics, msg Messages) (map[string]string, float64) {
			return map[string]string{
				ColWorstQuarter: FormatSigned(m.Worst, msg.FundNotExist),
				ColBestQuarter:  FormatSigned(m.Best, msg.FundNotExist),
			}, m.Worst
		},
	},
	{
		id:         TableParticipants,
		columns:    []string{ColCompany, ColParticipantsLatest, ColParticipantsChange},
		descending: true,
		cells: func(m FundMetrics, msg Messages) (map[string]string, float64) {
			if !m.ParticipantsLatest.Valid || !m.ParticipantsChange.Valid {
				return map[string]string{
					ColParticipantsLatest: msg.FundNotExist,
					ColParticipantsChange: msg.FundNotExist,
				}, math.Inf(-1)
			}
			return map[string]string{
				ColParticipantsLatest: formatCount(m.ParticipantsLatest),
				ColParticipantsChange: formatCountChange(m.ParticipantsChange),
			}, float64(m.ParticipantsLatest.Int32)
		},
	},
	{
		id:        TableExpenses,
		columns:   []string{ColCompany, ColExpenseRatio},
		noDataMsg: func(msg Messages) string { return msg.NoDataReported },
		cells: func(m FundMetrics, msg Messages) (map[string]string, float64) {
			if !m.ExpenseRatio.Valid {
				return map[string]string{ColExpenseRatio: msg.NoDataReported}, math.Inf(1)
			}
			return map[string]string{ColExpenseRatio: FormatExpenseRatio(m.ExpenseRatio, msg.NoDataReported)}, m.ExpenseRatio.Float64
		},
	},
}

// BuildTables formats and ranks the engine result into the five comparison tables.
// Owners with data are sorted by each table's key; owners without data follow in
// cohort order with every cell set to the "fund did not exist" message.
func BuildTables(result *Result, selected domain.CompanyShort, msg Messages) []Table {
	tables := make([]Table, 0, len(tableDefs))
	for _, def := range tableDefs {
		tables = append(tables, buildTable(def, result.Funds, selected, msg))
	}
	return tables
}

// EmptyTables returns the five tables with columns and no rows.
func EmptyTables() []Table {
	tables := make([]Table, 0, len(tableDefs))
	for _, def := range tableDefs {
		tables = append(tables, Table{ID: def.id, Columns: def.columns, Rows: []Row{}, Styles: []StyleRule{}})
	}
	return tables
}

func buildTable(def tableDef, funds []FundMetrics, selected domain.CompanyShort, msg Messages) Table {
	var ranked, noData []Row
	for _, f := range funds {
		if !f.HasData {
			cells := make(map[string]string, len(def.columns)-1)
			for _, col := range def.columns[1:] {
				cells[col] = msg.FundNotExist
			}
			noData = append(noData, Row{CompanyShort: f.Company, Cells: cells, NoData: true})
			continue
		}
		cells, key := def.cells(f, msg)
		ranked = append(ranked, Row{CompanyShort: f.Company, Cells: cells, sortKey: key})
	}

	rankRows(ranked, def.descending)
	rows := append(ranked, noData...)
	if rows == nil {
		rows = []Row{}
	}

	sentinel := msg.FundNotExist
	if def.noDataMsg != nil {
		sentinel = def.noDataMsg(msg)
	}
	sanitize(rows, sentinel)

	return Table{
		ID:      def.id,
		Columns: def.columns,
		Rows:    rows,
		Styles:  tableStyles(def, selected),
	}
}

// rankRows stable-sorts rows by key. NaN keys sort after every number.
func rankRows(rows []Row, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].sortKey, rows[j].sortKey
		if math.IsNaN(a) || math.IsNaN(b) {
			return !math.IsNaN(a) && math.IsNaN(b)
		}
		if descending {
			return a > b
		}
		return a < b
	})
}
