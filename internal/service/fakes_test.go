package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

type fakeAudit struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (f *fakeAudit) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.logs))
	for _, l := range f.logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeCourses struct {
	items      map[string]*models.Course
	writes     int
	listErr    error
	lastFilter models.CourseFilter
	listed     []models.CourseListItem
}

func newFakeCourses(courses ...*models.Course) *fakeCourses {
	f := &fakeCourses{items: map[string]*models.Course{}}
	for _, c := range courses {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeCourses) List(ctx context.Context, filter models.CourseFilter) ([]models.CourseListItem, int, error) {
	f.lastFilter = filter
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	if f.listed != nil {
		return f.listed, len(f.listed), nil
	}
	out := make([]models.CourseListItem, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, models.CourseListItem{Course: *c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (f *fakeCourses) ListByInstructor(ctx context.Context, instructorID string) ([]models.CourseListItem, error) {
	var out []models.CourseListItem
	for _, c := range f.items {
		if c.InstructorID == instructorID {
			out = append(out, models.CourseListItem{Course: *c})
		}
	}
	return out, nil
}

func (f *fakeCourses) FindByID(ctx context.Context, id string) (*models.Course, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCourses) FindListItem(ctx context.Context, id string) (*models.CourseListItem, error) {
	c, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.CourseListItem{Course: *c}, nil
}

func (f *fakeCourses) Create(ctx context.Context, course *models.Course) error {
	f.writes++
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	clone := *course
	f.items[course.ID] = &clone
	return nil
}

func (f *fakeCourses) Update(ctx context.Context, course *models.Course) error {
	f.writes++
	if _, ok := f.items[course.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *course
	f.items[course.ID] = &clone
	return nil
}

func (f *fakeCourses) Delete(ctx context.Context, id string) error {
	f.writes++
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeLessons struct {
	items  map[string]*models.Lesson
	writes int
}

func newFakeLessons(lessons ...*models.Lesson) *fakeLessons {
	f := &fakeLessons{items: map[string]*models.Lesson{}}
	for _, l := range lessons {
		f.items[l.ID] = l
	}
	return f
}

func (f *fakeLessons) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.items {
		if l.CourseID == courseID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeLessons) CountByCourse(ctx context.Context, courseID string) (int, error) {
	lessons, _ := f.ListByCourse(ctx, courseID)
	return len(lessons), nil
}

func (f *fakeLessons) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	l, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *l
	return &clone, nil
}

func (f *fakeLessons) Create(ctx context.Context, lesson *models.Lesson) error {
	f.writes++
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	clone := *lesson
	f.items[lesson.ID] = &clone
	return nil
}

func (f *fakeLessons) Update(ctx context.Context, lesson *models.Lesson) error {
	f.writes++
	if _, ok := f.items[lesson.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *lesson
	f.items[lesson.ID] = &clone
	return nil
}

func (f *fakeLessons) Delete(ctx context.Context, id string) error {
	f.writes++
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	return nil
}

type fakeInstructors struct {
	items     map[string]*models.InstructorDetail
	created   []*models.Instructor
	stats     models.InstructorStats
	createErr error
}

func newFakeInstructors(ids ...string) *fakeInstructors {
	f := &fakeInstructors{items: map[string]*models.InstructorDetail{}}
	for _, id := range ids {
		f.items[id] = &models.InstructorDetail{Instructor: models.Instructor{ID: id, UserID: "user-" + id, IsApproved: true}, Username: "gopher-" + id}
	}
	return f
}

func (f *fakeInstructors) FindByID(ctx context.Context, id string) (*models.InstructorDetail, error) {
	in, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *in
	return &clone, nil
}

func (f *fakeInstructors) Create(ctx context.Context, instructor *models.Instructor) error {
	if f.createErr != nil {
		return f.createErr
	}
	if instructor.ID == "" {
		instructor.ID = uuid.NewString()
	}
	f.created = append(f.created, instructor)
	f.items[instructor.ID] = &models.InstructorDetail{Instructor: *instructor}
	return nil
}

func (f *fakeInstructors) Stats(ctx context.Context, id string) (models.InstructorStats, error) {
	return f.stats, nil
}

type enrollmentKey struct{ student, course string }

type fakeEnrollments struct {
	rows map[enrollmentKey]time.Time
}

func newFakeEnrollments() *fakeEnrollments {
	return &fakeEnrollments{rows: map[enrollmentKey]time.Time{}}
}

func (f *fakeEnrollments) Enroll(ctx context.Context, studentID, courseID string, at time.Time) (bool, error) {
	key := enrollmentKey{studentID, courseID}
	if _, ok := f.rows[key]; ok {
		return false, nil
	}
	f.rows[key] = at
	return true, nil
}

func (f *fakeEnrollments) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	_, ok := f.rows[enrollmentKey{studentID, courseID}]
	return ok, nil
}

func (f *fakeEnrollments) ListByStudent(ctx context.Context, studentID string) ([]models.EnrolledCourse, error) {
	var out []models.EnrolledCourse
	for key, at := range f.rows {
		if key.student == studentID {
			out = append(out, models.EnrolledCourse{Course: models.Course{ID: key.course}, EnrolledAt: at})
		}
	}
	return out, nil
}

type progressKey struct{ student, lesson string }

type fakeProgress struct {
	lessons   *fakeLessons
	completed map[progressKey]time.Time
	marks     int
}

func newFakeProgress(lessons *fakeLessons) *fakeProgress {
	return &fakeProgress{lessons: lessons, completed: map[progressKey]time.Time{}}
}

func (f *fakeProgress) MarkComplete(ctx context.Context, studentID, lessonID string, at time.Time) error {
	f.marks++
	key := progressKey{studentID, lessonID}
	if _, ok := f.completed[key]; !ok {
		f.completed[key] = at
	}
	return nil
}

func (f *fakeProgress) CompletedLessonIDs(ctx context.Context, studentID, courseID string) ([]string, error) {
	out := []string{}
	for key := range f.completed {
		if key.student != studentID {
			continue
		}
		if l, ok := f.lessons.items[key.lesson]; ok && l.CourseID == courseID {
			out = append(out, key.lesson)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memoryCache struct {
	entries map[string][]byte
	sets    int
	purges  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.sets++
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.purges++
	m.entries = map[string][]byte{}
	return nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func floatPtr(f float64) *float64 { return &f }

var timeZero = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }
