package usecase

import (
	"context"
	"io"
	"strings"

	"kursus-backend/internal/domain"
	"kursus-backend/pkg/logger"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var importColumns = []string{"name", "email", "password", "role"}

type userUsecase struct {
	auth domain.AuthUsecase
}

func NewUserUsecase(auth domain.AuthUsecase) domain.UserUsecase {
	return &userUsecase{auth: auth}
}

// ImportUsers reads the first sheet of an xlsx workbook with a
// name/email/password/role header. Rows are registered one by one; a bad row
// is reported and does not stop the others.
func (uc *userUsecase) ImportUsers(ctx context.Context, r io.Reader) (*domain.ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, domain.Validationf("cannot read spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.Validationf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, domain.Validationf("cannot read sheet %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, domain.Validationf("spreadsheet is empty")
	}

	col := make(map[string]int, len(importColumns))
	for i, h := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range importColumns[:3] {
		if _, ok := col[name]; !ok {
			return nil, domain.Validationf("missing column %q in header row", name)
		}
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	summary := &domain.ImportSummary{Errors: []domain.ImportRowError{}}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		rowNum := i + 2
		summary.Total++

		user := &domain.User{
			Name:     cell(row, "name"),
			Email:    cell(row, "email"),
			Password: cell(row, "password"),
			Role:     domain.Role(strings.ToLower(cell(row, "role"))),
		}
		if err := uc.auth.Register(ctx, user); err != nil {
			if domain.KindOf(err) == domain.KindServer {
				logger.Log.Error("import row failed", zap.Int("row", rowNum), zap.Error(err))
			}
			summary.Failed++
			summary.Errors = append(summary.Errors, domain.ImportRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		summary.Created++
	}
	return summary, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
