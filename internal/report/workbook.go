// Package report exports learner progress as a spreadsheet.
package report

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/pai-parametric/internal/curriculum"
	"github.com/p-n-ai/pai-parametric/internal/progress"
)

// Sheet names.
const (
	SheetCourses = "Courses"
	SheetQuizzes = "Quizzes"
	SheetBadges  = "Badges"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteWorkbook writes one row per catalog course, per module quiz and per
// earned badge. Courses without a progress record appear with empty
// progress.
func WriteWorkbook(w io.Writer, s *curriculum.Structure, rec progress.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCourses); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	for _, name := range []string{SheetQuizzes, SheetBadges} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	courses := [][]any{{"Module", "Cours", "Visité", "Terminé", "Progression (%)", "Exercices réussis", "Dernière visite"}}
	quizzes := [][]any{{"Module", "Meilleur score", "Dernier score", "Tentatives", "Réussi", "Dernière tentative"}}
	if s != nil {
		for _, m := range s.Modules {
			for _, c := range m.Courses {
				row := []any{m.Title, c.Title, false, false, 0, 0, ""}
				if cp, ok := rec.Courses[curriculum.CourseKey(m.ID, c.ID)]; ok {
					row = []any{m.Title, c.Title, cp.Visited, cp.Completed, cp.PercentCompleted, len(cp.ExercisesCompleted), stamp(cp.LastVisit)}
				}
				courses = append(courses, row)
			}
			if qp, ok := rec.Quizzes[m.ID]; ok {
				quizzes = append(quizzes, []any{m.Title, qp.BestScore, qp.LastScore, qp.Attempts, qp.Completed, stamp(qp.LastAttempt)})
			}
		}
	}

	badges := [][]any{{"Badge", "Titre", "Description", "Obtenu le"}}
	sorted := slices.Clone(rec.Badges)
	slices.SortStableFunc(sorted, func(a, b progress.Badge) int { return a.EarnedDate.Compare(b.EarnedDate) })
	for _, b := range sorted {
		badges = append(badges, []any{b.ID, b.Title, b.Description, b.EarnedDate.UTC().Format(time.RFC3339)})
	}

	for sheet, rows := range map[string][][]any{SheetCourses: courses, SheetQuizzes: quizzes, SheetBadges: badges} {
		if err := writeRows(f, sheet, rows); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%d cours terminés, %d minutes d'étude", rec.CompletedCourses, rec.TotalStudyTime)
	if err := f.SetCellValue(SheetCourses, cell(1, len(courses)+2), summary); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if err := f.SetSheetRow(sheet, cell(1, i+1), &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "A1"
	}
	return name
}

func stamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
