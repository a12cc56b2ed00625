package api

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"slices"
	"sort"
	"strings"

	"github.com/miradorstack/sales-insights/internal/models"
	"github.com/miradorstack/sales-insights/internal/utils"
)

type dashboardPage struct {
	tmpl *template.Template
}

func newDashboardPage() *dashboardPage {
	funcs := template.FuncMap{
		"count":   utils.FormatCount,
		"dollars": utils.FormatDollars,
		"date":    func(r models.SalesRecord) string { return r.Date.Format(models.DateLayout) },
	}
	return &dashboardPage{tmpl: template.Must(template.New("dashboard").Funcs(funcs).Parse(dashboardTemplate))}
}

func (p *dashboardPage) render(logger *slog.Logger, w http.ResponseWriter, statusCode int, data pageData) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

type pageData struct {
	Options   models.FilterOptions
	Start     string
	End       string
	Products  []choice
	Regions   []choice
	Result    *models.DashboardResult
	Charts    []chartView
	ExportURL string
	Error     string
}

type choice struct {
	Value    string
	Selected bool
}

type chartView struct {
	Title string
	Type  models.ChartType
	Bars  []barView
}

type barView struct {
	Label string
	Value string
	Width float64
}

func (d *pageData) fill(result models.DashboardResult, rawQuery string) {
	d.Result = &result
	d.Start = result.Criteria.Start
	d.End = result.Criteria.End
	d.Products = choices(d.Options.Products, result.Criteria.Products)
	d.Regions = choices(d.Options.Regions, result.Criteria.Regions)
	d.ExportURL = "/api/v1/dashboard/export.csv"
	if rawQuery != "" {
		d.ExportURL += "?" + rawQuery
	}
	for _, c := range result.Charts {
		d.Charts = append(d.Charts, newChartView(c))
	}
}

func (d *pageData) selectDefaults(opts models.FilterOptions) {
	d.Start = opts.MinDate
	d.End = opts.MaxDate
	d.Products = choices(opts.Products, opts.Products)
	d.Regions = choices(opts.Regions, opts.Regions)
}

func choices(all, selected []string) []choice {
	out := make([]choice, 0, len(all))
	for _, v := range all {
		out = append(out, choice{Value: v, Selected: slices.Contains(selected, v)})
	}
	return out
}

// newChartView scales every point against the largest value so bars share one axis.
func newChartView(c models.Chart) chartView {
	view := chartView{Title: c.Title, Type: c.ChartType}
	var peak float64
	for _, p := range c.Points {
		peak = math.Max(peak, p.Value)
	}
	for _, p := range c.Points {
		bar := barView{Label: p.Label}
		switch c.ChartType {
		case models.ChartTypePie:
			bar.Value = fmt.Sprintf("%s (%.1f%%)", utils.FormatDollars(p.Value), p.Share)
			bar.Width = p.Share
		case models.ChartTypeLine:
			bar.Value = utils.FormatCount(int64(p.Value))
		default:
			if c.ID == "region-revenue" {
				bar.Value = utils.FormatDollars(p.Value)
			} else {
				bar.Value = utils.FormatCount(int64(p.Value))
			}
		}
		if c.ChartType != models.ChartTypePie && peak > 0 {
			bar.Width = p.Value / peak * 100
		}
		view.Bars = append(view.Bars, bar)
	}
	return view
}

func describeAPIError(apiErr APIError) string {
	if len(apiErr.Details) == 0 {
		return apiErr.Message
	}
	fields := make([]string, 0, len(apiErr.Details))
	for field, msg := range apiErr.Details {
		fields = append(fields, field+" "+msg)
	}
	sort.Strings(fields)
	return apiErr.Message + ": " + strings.Join(fields, "; ")
}

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Sales Analytics Dashboard</title>
<style>
:root { --bg: #fff; --fg: #1a1a2e; --card-bg: #f8f9fa; --border: #dee2e6; --muted: #6c757d; --accent: #0d6efd; --error: #dc3545; }
* { box-sizing: border-box; margin: 0; padding: 0; }
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; background: var(--bg); color: var(--fg); line-height: 1.5; padding: 1rem; max-width: 1400px; margin: 0 auto; }
header { margin-bottom: 1.5rem; }
header h1 { font-size: 1.5rem; }
header p { color: var(--muted); font-size: .875rem; }
form.filters { display: flex; flex-wrap: wrap; gap: 1rem; margin-bottom: 1.5rem; align-items: flex-start; background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: .75rem; }
form.filters fieldset { border: none; }
form.filters legend { font-size: .75rem; color: var(--muted); text-transform: uppercase; }
.error { color: var(--error); margin-bottom: 1rem; }
.cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: .75rem; margin-bottom: 1.5rem; }
.card { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: .75rem; text-align: center; }
.card .value { font-size: 1.5rem; font-weight: 700; }
.card .label { font-size: .75rem; color: var(--muted); text-transform: uppercase; }
.charts { display: grid; grid-template-columns: repeat(2, 1fr); gap: 1rem; margin-bottom: 1.5rem; }
@media (max-width: 768px) { .charts { grid-template-columns: 1fr; } }
.chart-box { background: var(--card-bg); border: 1px solid var(--border); border-radius: 8px; padding: 1rem; }
.chart-box h3 { font-size: .875rem; margin-bottom: .5rem; }
.bar-row { display: grid; grid-template-columns: 110px 1fr 150px; gap: .5rem; align-items: center; font-size: .8125rem; }
.bar { background: var(--accent); height: .75rem; border-radius: 3px; }
table { width: 100%; border-collapse: collapse; font-size: .8125rem; margin-bottom: 1.5rem; }
th, td { padding: .5rem .625rem; text-align: left; border-bottom: 1px solid var(--border); }
h2 { font-size: 1.125rem; margin-bottom: .5rem; }
</style>
</head>
<body>
<header>
  <h1>Sales Analytics Dashboard</h1>
  <p>{{.Options.Rows}} rows available from {{.Options.MinDate}} to {{.Options.MaxDate}}</p>
</header>

<form class="filters" method="get" action="/">
  <fieldset><legend>Start date</legend><input type="date" name="start" value="{{.Start}}" min="{{.Options.MinDate}}" max="{{.Options.MaxDate}}"></fieldset>
  <fieldset><legend>End date</legend><input type="date" name="end" value="{{.End}}" min="{{.Options.MinDate}}" max="{{.Options.MaxDate}}"></fieldset>
  <fieldset><legend>Products</legend><input type="hidden" name="products" value="">
    {{range .Products}}<label><input type="checkbox" name="products" value="{{.Value}}"{{if .Selected}} checked{{end}}> {{.Value}}</label> {{end}}
  </fieldset>
  <fieldset><legend>Regions</legend><input type="hidden" name="regions" value="">
    {{range .Regions}}<label><input type="checkbox" name="regions" value="{{.Value}}"{{if .Selected}} checked{{end}}> {{.Value}}</label> {{end}}
  </fieldset>
  <fieldset><button type="submit">Apply</button></fieldset>
</form>

{{if .Error}}<p class="error">{{.Error}}</p>{{end}}

{{with .Result}}
<section class="cards" id="summary">
  <div class="card"><div class="value">{{.Display.TotalSales}}</div><div class="label">Total Sales</div></div>
  <div class="card"><div class="value">{{.Display.TotalRevenue}}</div><div class="label">Total Revenue</div></div>
  <div class="card"><div class="value">{{.Display.TotalProfit}}</div><div class="label">Total Profit</div></div>
  <div class="card"><div class="value">{{.Display.AvgProfitMargin}}</div><div class="label">Avg Profit Margin</div></div>
</section>
{{end}}

{{if .Charts}}
<section class="charts" id="charts">
  {{range .Charts}}
  <div class="chart-box"><h3>{{.Title}}</h3>
    {{range .Bars}}<div class="bar-row"><span>{{.Label}}</span><div class="bar" style="width: {{printf "%.1f" .Width}}%"></div><span>{{.Value}}</span></div>{{end}}
  </div>
  {{end}}
</section>
{{end}}

{{with .Result}}
<h2>Product Performance</h2>
<table>
  <thead><tr><th>Product</th><th>Sales</th><th>Revenue</th><th>Profit</th></tr></thead>
  <tbody>{{range .Insights.Products}}<tr><td>{{.Product}}</td><td>{{count .Sales}}</td><td>{{count .Revenue}}</td><td>{{dollars .Profit}}</td></tr>{{end}}</tbody>
</table>

<h2>Regional Sales</h2>
<table>
  <thead><tr><th>Region</th><th>Sales</th><th>Revenue</th></tr></thead>
  <tbody>{{range .Insights.Regions}}<tr><td>{{.Region}}</td><td>{{count .Sales}}</td><td>{{count .Revenue}}</td></tr>{{end}}</tbody>
</table>

<h2>Filtered Data Preview</h2>
<p>Showing {{len .Preview}} of {{.Rows}} rows.</p>
<table>
  <thead><tr><th>Date</th><th>Product</th><th>Category</th><th>Sales</th><th>Revenue</th><th>Profit</th><th>Region</th></tr></thead>
  <tbody>{{range .Preview}}<tr><td>{{date .}}</td><td>{{.Product}}</td><td>{{.Category}}</td><td>{{.Sales}}</td><td>{{.Revenue}}</td><td>{{printf "%.2f" .Profit}}</td><td>{{.Region}}</td></tr>{{end}}</tbody>
</table>
{{end}}

{{if .ExportURL}}<p><a href="{{.ExportURL}}" download>Download Filtered Data as CSV</a></p>{{end}}
</body>
</html>
`
