package htmlreport

import (
	"github.com/dkoosis/testhtml/pkg/host"
	"github.com/dkoosis/testhtml/pkg/reportdata"
	"github.com/dkoosis/testhtml/pkg/table"
)

// Hooks customise the report. Embed NopHooks to implement only some of them.
type Hooks interface {
	// ReportTitle may change the title via data.SetTitle.
	ReportTitle(data *reportdata.Data)
	// ResultsTableHeader adds or pops header cells.
	ResultsTableHeader(cells *table.Header)
	// ResultsTableRow adds cells to the row of report; deleting the row
	// drops the result from the report.
	ResultsTableRow(report *host.TestReport, cells *table.Row)
	// ResultsTableHTML adds markup to the expanded detail of report.
	ResultsTableHTML(report *host.TestReport, data *table.HTML)
	// ResultsSummary adds HTML around the summary section.
	ResultsSummary(prefix, summary, postfix *[]string)
}

// NopHooks implements every hook as a no-op.
type NopHooks struct{}

func (NopHooks) ReportTitle(*reportdata.Data)                   {}
func (NopHooks) ResultsTableHeader(*table.Header)               {}
func (NopHooks) ResultsTableRow(*host.TestReport, *table.Row)   {}
func (NopHooks) ResultsTableHTML(*host.TestReport, *table.HTML) {}
func (NopHooks) ResultsSummary(_, _, _ *[]string)               {}

var _ Hooks = NopHooks{}
