package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"kursus-backend/internal/domain"
	"kursus-backend/internal/repository"
	"kursus-backend/pkg/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	utils.PasswordCost = bcrypt.MinCost
}

type repos struct {
	db          *gorm.DB
	users       domain.UserRepository
	courses     domain.CourseRepository
	modules     domain.ModuleRepository
	questions   domain.QuestionRepository
	enrollments domain.EnrollmentRepository
	progress    domain.ProgressRepository
}

func newRepos(t *testing.T) *repos {
	t.Helper()
	dsn := fmt.Sprintf("file:uc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Course{},
		&domain.Module{},
		&domain.Question{},
		&domain.Enrollment{},
		&domain.UserProgress{},
	))

	return &repos{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		modules:     repository.NewModuleRepository(db),
		questions:   repository.NewQuestionRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
	}
}

// fixture is one learner enrolled in a course laid out as
// [Pre, Page1, Page2, Post], each quiz holding two questions with key "a".
type fixture struct {
	*repos
	user       *domain.User
	course     *domain.Course
	enrollment *domain.Enrollment
	pre        *domain.Module
	page1      *domain.Module
	page2      *domain.Module
	post       *domain.Module
}

func (f *fixture) slug() string { return f.course.Slug }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	r := newRepos(t)

	user := &domain.User{Name: "Siti Aminah", Email: "siti@example.com", Password: "x", Role: domain.RoleStudent}
	require.NoError(t, r.users.Create(ctx, user))

	course := &domain.Course{
		Title:                "Fisioterapi Dasar",
		Slug:                 "fisioterapi-dasar",
		NeedsPostTest:        true,
		MinimumPostTestScore: 70,
	}
	require.NoError(t, r.courses.Create(ctx, course))

	mk := func(order int, typ domain.ModuleType) *domain.Module {
		m := &domain.Module{CourseID: course.ID, Title: fmt.Sprintf("%s %d", typ, order), Type: typ, Order: order}
		require.NoError(t, r.modules.Create(ctx, m))
		if typ.IsQuiz() {
			for i := 1; i <= 2; i++ {
				q := &domain.Question{
					ModuleID:        m.ID,
					Text:            fmt.Sprintf("question %d", i),
					Type:            domain.QuestionMultipleChoice,
					Options:         []domain.QuestionOption{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}},
					CorrectOptionID: "a",
					Order:           i,
				}
				require.NoError(t, r.questions.Create(ctx, q))
			}
		}
		return m
	}

	f := &fixture{repos: r, user: user, course: course}
	f.pre = mk(1, domain.TypePreTestQuiz)
	f.page1 = mk(2, domain.TypePage)
	f.page2 = mk(3, domain.TypePage)
	f.post = mk(4, domain.TypePostTestQuiz)

	f.enrollment = &domain.Enrollment{UserID: user.ID, CourseID: course.ID, PracticalTestStatus: domain.StatusNotSubmitted}
	require.NoError(t, r.enrollments.Create(ctx, f.enrollment))
	return f
}

func (f *fixture) complete(t *testing.T, modules ...*domain.Module) {
	t.Helper()
	for _, m := range modules {
		_, err := f.progress.RecordAttempt(context.Background(), f.user.ID, f.course.ID, m.ID, nil, true)
		require.NoError(t, err)
	}
}

func (f *fixture) score(t *testing.T, m *domain.Module, score int) {
	t.Helper()
	_, err := f.progress.RecordAttempt(context.Background(), f.user.ID, f.course.ID, m.ID, &score, true)
	require.NoError(t, err)
}

// memStore is an in-memory FileStore for usecases that upload.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (s *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) (*domain.FileInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.objects[key] = b
	return &domain.FileInfo{Key: key, URL: "/api/v1/files/" + key, ContentType: contentType, Size: int64(len(b))}, nil
}

func (s *memStore) Open(_ context.Context, key string) (io.ReadCloser, *domain.FileInfo, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, nil, domain.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), &domain.FileInfo{Key: key, Size: int64(len(b))}, nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	if _, ok := s.objects[key]; !ok {
		return domain.ErrFileNotFound
	}
	delete(s.objects, key)
	return nil
}
