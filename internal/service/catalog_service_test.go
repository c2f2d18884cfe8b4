package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearn-api/internal/models"
	appErrors "github.com/noah-isme/elearn-api/pkg/errors"
)

const (
	instructorA = "3f1d8c2a-0a4e-4a37-9d61-6a0f1b1f0a01"
	instructorB = "3f1d8c2a-0a4e-4a37-9d61-6a0f1b1f0a02"
	courseOne   = "8b7a0f5e-2c1d-4e5b-9a3f-1d2c3b4a5e01"
)

type catalogFixture struct {
	svc         *CatalogService
	courses     *fakeCourses
	lessons     *fakeLessons
	instructors *fakeInstructors
	enrollments *fakeEnrollments
	progress    *fakeProgress
	audit       *fakeAudit
	cache       *memoryCache
}

func newCatalogFixture(courses ...*models.Course) *catalogFixture {
	f := &catalogFixture{
		courses:     newFakeCourses(courses...),
		lessons:     newFakeLessons(),
		instructors: newFakeInstructors(instructorA, instructorB),
		enrollments: newFakeEnrollments(),
		audit:       &fakeAudit{},
		cache:       newMemoryCache(),
	}
	f.progress = newFakeProgress(f.lessons)
	f.svc = NewCatalogService(CatalogServiceParams{
		Courses:     f.courses,
		Lessons:     f.lessons,
		Instructors: f.instructors,
		Enrollments: f.enrollments,
		Progress:    f.progress,
		Audit:       f.audit,
		Cache:       NewCacheService(f.cache, nil, 0, nil, true),
	})
	return f
}

func instructorIdentity(instructorID string) *models.Identity {
	return &models.Identity{UserID: "user-" + instructorID, Username: "gopher", Role: models.RoleInstructor, Active: true, InstructorID: strPtr(instructorID)}
}

func studentIdentity(studentID string) *models.Identity {
	return &models.Identity{UserID: "user-" + studentID, Username: "learner", Role: models.RoleStudent, Active: true, StudentID: strPtr(studentID)}
}

func adminIdentity() *models.Identity {
	return &models.Identity{UserID: "admin-user", Username: "admin", Role: models.RoleAdmin, Active: true}
}

func ownedCourse(id, instructorID string) *models.Course {
	return &models.Course{ID: id, InstructorID: instructorID, Title: "Go Basics", Category: "Development", IsActive: true}
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %T", err)
	return appErr.Fields[field]
}

func TestCreateCourseAssignsCallerAndDefaults(t *testing.T) {
	f := newCatalogFixture()
	f.cache.entries[cacheKeyHome] = []byte(`{}`)

	course, err := f.svc.CreateCourse(context.Background(), instructorIdentity(instructorA), models.CreateCourseRequest{
		Title:      "  Go Basics ",
		IsActive:   boolPtr(false),
		IsFeatured: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, instructorA, course.InstructorID)
	assert.Equal(t, "Go Basics", course.Title)
	assert.Equal(t, models.DefaultCourseCategory, course.Category)
	assert.True(t, course.IsActive)
	assert.False(t, course.IsFeatured)
	assert.Equal(t, 1, f.courses.writes)
	assert.Empty(t, f.cache.entries)
	assert.Equal(t, []string{models.AuditActionCreate}, f.audit.actions())
}

func TestCreateCoursePricingRules(t *testing.T) {
	cases := []struct {
		name  string
		req   models.CreateCourseRequest
		field string
	}{
		{name: "paid without price", req: models.CreateCourseRequest{Title: "Paid", IsPaid: true, Price: 0}, field: models.MsgPaidCourseNeedsPrice},
		{name: "free with price", req: models.CreateCourseRequest{Title: "Free", IsPaid: false, Price: 10}, field: models.MsgFreeCourseZeroPrice},
		{name: "paid below one cent", req: models.CreateCourseRequest{Title: "Paid", IsPaid: true, Price: 0.001}, field: models.MsgPriceWholeCents},
		{name: "paid with fractional cents", req: models.CreateCourseRequest{Title: "Paid", IsPaid: true, Price: 12.345}, field: models.MsgPriceWholeCents},
		{name: "price beyond column range", req: models.CreateCourseRequest{Title: "Paid", IsPaid: true, Price: 1e9}, field: "must be at most 99999999.99"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCatalogFixture()
			_, err := f.svc.CreateCourse(context.Background(), instructorIdentity(instructorA), tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
			assert.Equal(t, tc.field, fieldError(t, err, "price"))
			assert.Zero(t, f.courses.writes)
		})
	}

	f := newCatalogFixture()
	course, err := f.svc.CreateCourse(context.Background(), instructorIdentity(instructorA), models.CreateCourseRequest{Title: "Paid", IsPaid: true, Price: 49.5})
	require.NoError(t, err)
	assert.Equal(t, 49.5, course.Price)
}

func TestCreateCourseRejectsNonInstructor(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.svc.CreateCourse(context.Background(), studentIdentity("student-1"), models.CreateCourseRequest{Title: "Nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, f.courses.writes)
	assert.Empty(t, f.audit.actions())
}

func TestCreateCourseRoleWithoutInstructorRecord(t *testing.T) {
	f := newCatalogFixture()
	identity := &models.Identity{UserID: "u1", Role: models.RoleInstructor, Active: true}
	_, err := f.svc.CreateCourse(context.Background(), identity, models.CreateCourseRequest{Title: "Orphan"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Zero(t, f.courses.writes)
}

func TestCreateCourseAdminNamesInstructor(t *testing.T) {
	f := newCatalogFixture()

	_, err := f.svc.CreateCourse(context.Background(), adminIdentity(), models.CreateCourseRequest{Title: "No owner"})
	require.Error(t, err)
	assert.Equal(t, "this field is required", fieldError(t, err, "instructor_id"))

	course, err := f.svc.CreateCourse(context.Background(), adminIdentity(), models.CreateCourseRequest{
		Title:        "Owned",
		InstructorID: instructorB,
		IsFeatured:   boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, instructorB, course.InstructorID)
	assert.True(t, course.IsFeatured)

	_, err = f.svc.CreateCourse(context.Background(), adminIdentity(), models.CreateCourseRequest{
		Title:        "Ghost",
		InstructorID: "3f1d8c2a-0a4e-4a37-9d61-6a0f1b1f0aff",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestUpdateCourseOwnership(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))

	_, err := f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorB), courseOne, models.UpdateCourseRequest{Title: strPtr("Hijack")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Zero(t, f.courses.writes)

	updated, err := f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{Title: strPtr("Go Advanced")})
	require.NoError(t, err)
	assert.Equal(t, "Go Advanced", updated.Title)
	assert.Equal(t, "Go Advanced", f.courses.items[courseOne].Title)
}

func TestUpdateCourseAdminOnlyFields(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))

	_, err := f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsFeatured: boolPtr(true)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	// Sending the stored value back is not a change.
	_, err = f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)

	updated, err := f.svc.UpdateCourse(context.Background(), adminIdentity(), courseOne, models.UpdateCourseRequest{IsFeatured: boolPtr(true), InstructorID: strPtr(instructorB)})
	require.NoError(t, err)
	assert.True(t, updated.IsFeatured)
	assert.Equal(t, instructorB, updated.InstructorID)
}

func TestUpdateCourseRevalidatesMergedPrice(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))

	_, err := f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsPaid: boolPtr(true)})
	require.Error(t, err)
	assert.Equal(t, models.MsgPaidCourseNeedsPrice, fieldError(t, err, "price"))
	assert.False(t, f.courses.items[courseOne].IsPaid)

	_, err = f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsPaid: boolPtr(true), Price: floatPtr(0.001)})
	require.Error(t, err)
	assert.Equal(t, models.MsgPriceWholeCents, fieldError(t, err, "price"))

	_, err = f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsPaid: boolPtr(true), Price: floatPtr(1e9)})
	require.Error(t, err)
	assert.Equal(t, "must be at most 99999999.99", fieldError(t, err, "price"))
	assert.False(t, f.courses.items[courseOne].IsPaid)

	updated, err := f.svc.UpdateCourse(context.Background(), instructorIdentity(instructorA), courseOne, models.UpdateCourseRequest{IsPaid: boolPtr(true), Price: floatPtr(19.99)})
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)
}

func TestDeleteCourse(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))

	err := f.svc.DeleteCourse(context.Background(), instructorIdentity(instructorB), courseOne)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, f.svc.DeleteCourse(context.Background(), instructorIdentity(instructorA), courseOne))
	assert.NotContains(t, f.courses.items, courseOne)

	err = f.svc.DeleteCourse(context.Background(), instructorIdentity(instructorA), courseOne)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestLessonManagement(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))
	owner := instructorIdentity(instructorA)

	lesson, err := f.svc.CreateLesson(context.Background(), owner, courseOne, models.CreateLessonRequest{Title: "Intro", Order: 1, DurationMinutes: 10})
	require.NoError(t, err)
	assert.Equal(t, courseOne, lesson.CourseID)

	_, err = f.svc.CreateLesson(context.Background(), instructorIdentity(instructorB), courseOne, models.CreateLessonRequest{Title: "Other"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.CreateLesson(context.Background(), owner, courseOne, models.CreateLessonRequest{Title: "Bad", DurationMinutes: -1})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	updated, err := f.svc.UpdateLesson(context.Background(), owner, lesson.ID, models.UpdateLessonRequest{Title: strPtr("Welcome")})
	require.NoError(t, err)
	assert.Equal(t, "Welcome", updated.Title)

	lessons, err := f.svc.ListLessons(context.Background(), courseOne)
	require.NoError(t, err)
	require.Len(t, lessons, 1)

	require.NoError(t, f.svc.DeleteLesson(context.Background(), owner, lesson.ID))
	lessons, err = f.svc.ListLessons(context.Background(), courseOne)
	require.NoError(t, err)
	assert.Empty(t, lessons)
	assert.NotNil(t, lessons)

	_, err = f.svc.UpdateLesson(context.Background(), owner, lesson.ID, models.UpdateLessonRequest{Title: strPtr("Gone")})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestLessonMutationsPurgeCache(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))
	owner := instructorIdentity(instructorA)

	lesson, err := f.svc.CreateLesson(context.Background(), owner, courseOne, models.CreateLessonRequest{Title: "Intro", Order: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, f.cache.purges)

	f.cache.entries[cacheKeyHome] = []byte(`{}`)
	_, err = f.svc.UpdateLesson(context.Background(), owner, lesson.ID, models.UpdateLessonRequest{DurationMinutes: intPtr(45)})
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.purges)
	assert.Empty(t, f.cache.entries)

	f.cache.entries[cacheKeyHome] = []byte(`{}`)
	require.NoError(t, f.svc.DeleteLesson(context.Background(), owner, lesson.ID))
	assert.Equal(t, 3, f.cache.purges)
	assert.Empty(t, f.cache.entries)
}

func TestListLessonsUnknownCourse(t *testing.T) {
	f := newCatalogFixture()
	_, err := f.svc.ListLessons(context.Background(), courseOne)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestGetCourseDetailProgressForEnrolledStudent(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))
	f.lessons.items["l1"] = &models.Lesson{ID: "l1", CourseID: courseOne, Order: 1}
	f.lessons.items["l2"] = &models.Lesson{ID: "l2", CourseID: courseOne, Order: 2}

	anonymous, err := f.svc.GetCourseDetail(context.Background(), courseOne, nil)
	require.NoError(t, err)
	assert.False(t, anonymous.IsEnrolled)
	assert.Nil(t, anonymous.Progress)
	assert.Len(t, anonymous.Lessons, 2)

	student := studentIdentity("s1")
	_, _ = f.enrollments.Enroll(context.Background(), "s1", courseOne, timeZero)
	require.NoError(t, f.progress.MarkComplete(context.Background(), "s1", "l1", timeZero))

	detail, err := f.svc.GetCourseDetail(context.Background(), courseOne, student)
	require.NoError(t, err)
	assert.True(t, detail.IsEnrolled)
	require.NotNil(t, detail.Progress)
	assert.Equal(t, 50, detail.Progress.ProgressPercentage)
	assert.Equal(t, []string{"l1"}, detail.Progress.CompletedLessonIDs)
}

func TestListCoursesNormalisesPaging(t *testing.T) {
	f := newCatalogFixture(ownedCourse(courseOne, instructorA))
	items, page, err := f.svc.ListCourses(context.Background(), models.CourseFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 1, page.TotalCount)
}
