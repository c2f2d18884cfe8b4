package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
	"github.com/noah-isme/elearn-api/pkg/export"
)

const exportPageSize = 100

// ExportFile is a rendered roster ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders admin rosters as CSV or PDF.
type ExportService struct {
	students    adminStudentRepository
	instructors adminInstructorRepository
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students adminStudentRepository, instructors adminInstructorRepository, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, instructors: instructors, logger: logger}
}

// ExportStudents renders every student with their enrollment count.
func (s *ExportService) ExportStudents(ctx context.Context, rawFormat string) (*ExportFile, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Students",
		Columns: []export.Column{
			{Title: "Username", Weight: 2},
			{Title: "Email", Weight: 3},
			{Title: "Phone", Weight: 2},
			{Title: "Joined", Weight: 2},
			{Title: "Enrolled Courses"},
		},
	}
	for page := 1; ; page++ {
		items, total, err := s.students.List(ctx, models.StudentFilter{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
		}
		for _, st := range items {
			phone := ""
			if st.Phone != nil {
				phone = *st.Phone
			}
			table.Rows = append(table.Rows, []string{st.Username, st.Email, phone, st.CreatedAt.Format("2006-01-02"), strconv.Itoa(st.EnrolledCoursesCount)})
		}
		if len(items) == 0 || page*exportPageSize >= total {
			break
		}
	}
	return s.render(table, format, "students")
}

// ExportInstructors renders every instructor with course and student counts.
func (s *ExportService) ExportInstructors(ctx context.Context, rawFormat string) (*ExportFile, error) {
	format, err := parseExportFormat(rawFormat)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Title: "Instructors",
		Columns: []export.Column{
			{Title: "Username", Weight: 2},
			{Title: "Email", Weight: 3},
			{Title: "Specialization", Weight: 2},
			{Title: "Approved"},
			{Title: "Courses"},
			{Title: "Students"},
		},
	}
	for page := 1; ; page++ {
		items, total, err := s.instructors.List(ctx, models.InstructorFilter{Page: page, PageSize: exportPageSize})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
		}
		for _, in := range items {
			approved := "no"
			if in.IsApproved {
				approved = "yes"
			}
			table.Rows = append(table.Rows, []string{in.Username, in.Email, in.Specialization, approved, strconv.Itoa(in.TotalCourses), strconv.Itoa(in.TotalStudents)})
		}
		if len(items) == 0 || page*exportPageSize >= total {
			break
		}
	}
	return s.render(table, format, "instructors")
}

func (s *ExportService) render(table export.Table, format export.Format, base string) (*ExportFile, error) {
	body, err := export.Render(table, format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("roster exported", zap.String("roster", base), zap.String("format", string(format)), zap.Int("rows", len(table.Rows)))
	return &ExportFile{Filename: format.Filename(base), ContentType: format.ContentType(), Body: body}, nil
}

func parseExportFormat(raw string) (export.Format, error) {
	format, err := export.ParseFormat(raw)
	if err != nil {
		return "", appErrors.ErrValidation.WithField("format", "must be one of: csv pdf")
	}
	return format, nil
}
