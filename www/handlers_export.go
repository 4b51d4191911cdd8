package www

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"shopcore/store"
)

// apiExportWorkOrders streams the work order list as CSV or xlsx,
// selected by the format query param.
func (h *Handlers) apiExportWorkOrders(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	status := r.URL.Query().Get("status")

	orders, err := h.engine.DB().ListWorkOrders(status, 1000)
	if err != nil {
		h.jsonError(w, "list work orders: "+err.Error(), http.StatusInternalServerError)
		return
	}

	headers := []string{"WO Number", "Type", "Customer", "PO Number", "Priority", "Due Date", "Status", "Notes", "Created", "Completed"}
	data := make([][]string, 0, len(orders))
	for _, wo := range orders {
		data = append(data, []string{
			wo.WONumber, wo.OrderType, wo.Customer, wo.PONumber, wo.Priority,
			exportDate(wo.DueDate), wo.Status, wo.Notes,
			wo.CreatedAt.Format(time.RFC3339), exportTime(wo.CompletedAt),
		})
	}

	if format == "xlsx" {
		exportExcel(w, "Work Orders", headers, data)
	} else {
		exportCSV(w, "workorders.csv", headers, data)
	}
}

// apiExportJobs streams jobs as CSV or xlsx. A status query param narrows
// the set; otherwise the newest 500 jobs are exported.
func (h *Handlers) apiExportJobs(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var jobs []*store.Job
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		jobs, err = h.engine.DB().ListJobsByStatus(strings.Split(status, ",")...)
	} else {
		jobs, err = h.engine.DB().ListRecentJobs(500)
	}
	if err != nil {
		h.jsonError(w, "list jobs: "+err.Error(), http.StatusInternalServerError)
		return
	}

	headers := []string{"Job Number", "Work Order ID", "Machine ID", "Quantity", "Priority", "Status", "Good", "Bad", "Scheduled Start", "Scheduled End", "Created"}
	data := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		data = append(data, []string{
			j.JobNumber, fmt.Sprintf("%d", j.WorkOrderID), exportID(j.AssignedMachineID),
			fmt.Sprintf("%.2f", j.Quantity), j.Priority, j.Status,
			fmt.Sprintf("%.2f", j.GoodPieces), fmt.Sprintf("%.2f", j.BadPieces),
			exportTime(j.ScheduledStart), exportTime(j.ScheduledEnd),
			j.CreatedAt.Format(time.RFC3339),
		})
	}

	if format == "xlsx" {
		exportExcel(w, "Jobs", headers, data)
	} else {
		exportCSV(w, "jobs.csv", headers, data)
	}
}

func exportTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func exportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func exportID(id *int64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}

func exportCSV(w http.ResponseWriter, filename string, headers []string, data [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(headers); err != nil {
		http.Error(w, "write csv headers", http.StatusInternalServerError)
		return
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			http.Error(w, "write csv row", http.StatusInternalServerError)
			return
		}
	}
}

func exportExcel(w http.ResponseWriter, sheetName string, headers []string, data [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "create sheet", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		http.Error(w, "create header style", http.StatusInternalServerError)
		return
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+i)))
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	for rowIdx, row := range data {
		for colIdx, value := range row {
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", string(rune('A'+colIdx)), rowIdx+2), value)
		}
	}
	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 15)
	}
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", strings.ReplaceAll(strings.ToLower(sheetName), " ", "_")))
	if err := f.Write(w); err != nil {
		http.Error(w, "write workbook", http.StatusInternalServerError)
	}
}
