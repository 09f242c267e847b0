package handler

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/locvowork/todo_sync_sample/internal/logger"
	"github.com/locvowork/todo_sync_sample/internal/service"
	"github.com/locvowork/todo_sync_sample/internal/service/serviceutils"
)

// exportLayout is the optional YAML-tunable part of the export: sheet names
// and column widths. Missing config falls back to defaults.
type exportLayout struct {
	Filename   string  `yaml:"filename"`
	ListsSheet string  `yaml:"lists_sheet"`
	ItemsSheet string  `yaml:"items_sheet"`
	ColWidth   float64 `yaml:"column_width"`
}

func defaultLayout() exportLayout {
	return exportLayout{
		Filename:   "todo_lists.xlsx",
		ListsSheet: "Lists",
		ItemsSheet: "Items",
		ColWidth:   24,
	}
}

type ExportHandler struct {
	svc        service.TodoService
	configPath string
}

func NewExportHandler(svc service.TodoService, configPath string) *ExportHandler {
	return &ExportHandler{svc: svc, configPath: configPath}
}

func (h *ExportHandler) loadLayout(c echo.Context) exportLayout {
	layout := defaultLayout()
	if h.configPath == "" {
		return layout
	}
	data, err := os.ReadFile(h.configPath)
	if err != nil {
		logger.WarnLog(c.Request().Context(), "export: cannot read layout config %s: %v", h.configPath, err)
		return layout
	}
	var loaded exportLayout
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		logger.WarnLog(c.Request().Context(), "export: invalid layout config %s: %v", h.configPath, err)
		return layout
	}
	if loaded.Filename == "" {
		loaded.Filename = layout.Filename
	}
	if loaded.ListsSheet == "" {
		loaded.ListsSheet = layout.ListsSheet
	}
	if loaded.ItemsSheet == "" {
		loaded.ItemsSheet = layout.ItemsSheet
	}
	if loaded.ColWidth <= 0 {
		loaded.ColWidth = layout.ColWidth
	}
	return loaded
}

// ExportTodoLists streams all lists and their items as an xlsx workbook with
// one sheet per entity type.
func (h *ExportHandler) ExportTodoLists(c echo.Context) error {
	lists, err := h.svc.ListLists(c.Request().Context())
	if err != nil {
		return serviceutils.ResponseForError(c, "Failed to load todo lists for export", err)
	}

	layout := h.loadLayout(c)

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", layout.ListsSheet)
	if _, err := f.NewSheet(layout.ItemsSheet); err != nil {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, "Failed to build workbook", err)
	}

	listHeaders := []string{"ID", "Name", "Remote ID", "Items", "Created At", "Updated At", "Last Synced At"}
	itemHeaders := []string{"ID", "List", "Description", "Completed", "Remote ID", "Updated At"}
	writeRow(f, layout.ListsSheet, 1, toCells(listHeaders))
	writeRow(f, layout.ItemsSheet, 1, toCells(itemHeaders))

	itemRow := 2
	for i, list := range lists {
		writeRow(f, layout.ListsSheet, i+2, []interface{}{
			list.ID, list.Name, strOrEmpty(list.RemoteID), len(list.Items),
			list.CreatedAt, list.UpdatedAt, timeOrEmpty(list.LastSyncedAt),
		})
		for _, item := range list.Items {
			writeRow(f, layout.ItemsSheet, itemRow, []interface{}{
				item.ID, list.Name, item.Description, item.Completed,
				strOrEmpty(item.RemoteID), item.UpdatedAt,
			})
			itemRow++
		}
	}

	lastListCol, _ := excelize.ColumnNumberToName(len(listHeaders))
	lastItemCol, _ := excelize.ColumnNumberToName(len(itemHeaders))
	f.SetColWidth(layout.ListsSheet, "A", lastListCol, layout.ColWidth)
	f.SetColWidth(layout.ItemsSheet, "A", lastItemCol, layout.ColWidth)

	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, layout.Filename))
	return f.Write(c.Response().Writer)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cell, v)
	}
}

func toCells(headers []string) []interface{} {
	out := make([]interface{}, len(headers))
	for i, h := range headers {
		out[i] = h
	}
	return out
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
