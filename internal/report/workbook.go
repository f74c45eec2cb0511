// Package report renders analytics results as spreadsheet workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"quiz-assessment-service/internal/analytics"
)

// Sheet names, in workbook order.
const (
	SheetTotals     = "Totals"
	SheetCategories = "Categories"
	SheetQuizzes    = "Quizzes"
	SheetQuestions  = "Questions"
	SheetAlerts     = "Quality Alerts"
	SheetStruggling = "Struggling"
	SheetUser       = "User"
)

type table struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// Workbook builds an in-memory workbook. The caller owns the result and must
// Close it.
type Workbook struct {
	file     *excelize.File
	bold     int
	tables   []table
	rendered bool
}

func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &Workbook{file: f, bold: bold}, nil
}

// AddOverview appends the platform sheets.
func (w *Workbook) AddOverview(o analytics.Overview) {
	t := o.Totals
	w.tables = append(w.tables, table{
		name:   SheetTotals,
		header: []interface{}{"Metric", "Value"},
		rows: [][]interface{}{
			{"Users", t.Users},
			{"Categories", t.Categories},
			{"Quizzes", t.Quizzes},
			{"Questions", t.Questions},
			{"Attempts", t.Attempts},
			{"Active users", t.ActiveUsers},
			{"Average percentage", t.AveragePercentage},
		},
	})

	categories := table{name: SheetCategories, header: []interface{}{"Category", "Success rate", "Attempts"}}
	for _, c := range o.Charts.CategorySuccess {
		categories.rows = append(categories.rows, []interface{}{c.CategoryName, c.SuccessRate, c.Attempts})
	}

	quizzes := table{name: SheetQuizzes, header: []interface{}{"Quiz", "Category", "Success rate", "Attempts"}}
	for _, q := range o.Charts.QuizSuccess {
		quizzes.rows = append(quizzes.rows, []interface{}{q.QuizTitle, q.CategoryName, q.SuccessRate, q.Attempts})
	}

	w.tables = append(w.tables,
		categories,
		quizzes,
		questionTable(SheetQuestions, o.Charts.HardestQuestions),
		questionTable(SheetAlerts, o.SmartInsights.QualityAlerts),
	)

	struggling := table{name: SheetStruggling, header: []interface{}{"User", "Category", "Success rate", "Attempts"}}
	for _, s := range o.SmartInsights.StrugglingAssignments {
		struggling.rows = append(struggling.rows, []interface{}{s.UserName, s.CategoryName, s.SuccessRate, s.Attempts})
	}
	w.tables = append(w.tables, struggling)
}

// AddUser appends one user's quiz performance and question insights.
func (w *Workbook) AddUser(userID string, r analytics.UserReport) {
	user := table{
		name:   SheetUser,
		header: []interface{}{"User", userID},
		rows: [][]interface{}{
			{"Total attempts", r.Summary.TotalAttempts},
			{"Average percentage", r.Summary.AveragePercentage},
			{"Improvement", r.Summary.Improvement},
			{},
			{"Quiz", "Success rate", "Correct", "Total"},
		},
	}
	for _, q := range r.QuizPerformance {
		user.rows = append(user.rows, []interface{}{q.QuizTitle, q.SuccessRate, q.Correct, q.Total})
	}
	user.rows = append(user.rows, []interface{}{}, []interface{}{"Question", "Incorrect rate", "Average time", "Flag"})
	for _, q := range r.QuestionInsights {
		flag := ""
		if q.Flag != nil {
			flag = *q.Flag
		}
		user.rows = append(user.rows, []interface{}{q.Content, q.IncorrectRate, q.AverageTime, flag})
	}
	w.tables = append(w.tables, user)
}

// Write renders every added table and streams the workbook to out.
func (w *Workbook) Write(out io.Writer) error {
	if err := w.build(); err != nil {
		return err
	}
	return w.file.Write(out)
}

// SaveAs renders the workbook to a file.
func (w *Workbook) SaveAs(path string) error {
	if err := w.build(); err != nil {
		return err
	}
	return w.file.SaveAs(path)
}

func (w *Workbook) build() error {
	if w.rendered {
		return nil
	}
	if len(w.tables) == 0 {
		return fmt.Errorf("workbook has no sheets")
	}
	for i, t := range w.tables {
		if err := w.render(i, t); err != nil {
			return fmt.Errorf("sheet %s: %w", t.name, err)
		}
	}
	w.file.SetActiveSheet(0)
	w.rendered = true
	return nil
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) render(i int, t table) error {
	if i == 0 {
		// NewFile starts with Sheet1; reuse it as the first table.
		if err := w.file.SetSheetName("Sheet1", t.name); err != nil {
			return err
		}
	} else if _, err := w.file.NewSheet(t.name); err != nil {
		return err
	}

	header := append([]interface{}(nil), t.header...)
	if err := w.file.SetSheetRow(t.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(t.name, "A1", last, w.bold); err != nil {
		return err
	}
	for r, row := range t.rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := append([]interface{}(nil), row...)
		if err := w.file.SetSheetRow(t.name, cell, &values); err != nil {
			return err
		}
	}
	return w.file.SetColWidth(t.name, "A", "A", 40)
}

func questionTable(name string, stats []analytics.QuestionStat) table {
	t := table{name: name, header: []interface{}{"Question", "Attempts", "Incorrect", "Incorrect rate", "Average time"}}
	for _, q := range stats {
		t.rows = append(t.rows, []interface{}{q.Content, q.Attempts, q.Incorrect, q.IncorrectRate, q.AverageTime})
	}
	return t
}
