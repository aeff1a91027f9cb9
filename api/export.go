package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jung-kurt/gofpdf"
	"github.com/labstack/echo/v4"

	"tasks-api/domain"
)

// exportTasks renders the current task list as json, csv or pdf.
func exportTasks(store TaskStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		format := strings.ToLower(c.QueryParam("format"))
		if format == "" {
			format = "json"
		}
		data, contentType, err := renderTasks(store.List(), format)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		return c.Blob(http.StatusOK, contentType, data)
	}
}

func renderTasks(tasks []domain.Task, format string) ([]byte, string, error) {
	switch format {
	case "json":
		data, err := sonic.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, "", err
		}
		return data, echo.MIMEApplicationJSON, nil
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "title", "done"})
		for _, t := range tasks {
			_ = w.Write([]string{strconv.FormatUint(t.ID, 10), t.Title, strconv.FormatBool(t.Done)})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", err
		}
		return b.Bytes(), "text/csv", nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task Report")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, t := range tasks {
			mark := "[ ]"
			if t.Done {
				mark = "[x]"
			}
			line := fmt.Sprintf("%s #%d %s", mark, t.ID, t.Title)
			pdf.MultiCell(0, 6, line, "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/pdf", nil
	default:
		return nil, "", fmt.Errorf("unknown format %s", format)
	}
}
