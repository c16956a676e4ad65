package repository

import (
	"context"
	"errors"
	"time"

	"kursus-backend/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ========== USER REPOSITORY ==========

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepo{db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return &user, err
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	return &user, err
}

func (r *userRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}

func (r *userRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

// ========== COURSE REPOSITORY ==========

type courseRepo struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) domain.CourseRepository {
	return &courseRepo{db}
}

func (r *courseRepo) Create(ctx context.Context, course *domain.Course) error {
	err := r.db.WithContext(ctx).Create(course).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlugTaken
	}
	return err
}

func (r *courseRepo) Update(ctx context.Context, course *domain.Course) error {
	err := r.db.WithContext(ctx).Save(course).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSlugTaken
	}
	return err
}

func (r *courseRepo) GetAll(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).Order("id ASC").Find(&courses).Error
	return courses, err
}

func (r *courseRepo) GetByID(ctx context.Context, id uint) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCourseNotFound
	}
	return &course, err
}

func (r *courseRepo) GetBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCourseNotFound
	}
	return &course, err
}

func (r *courseRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&domain.Course{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *courseRepo) DeleteCascade(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&domain.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&domain.UserProgress{}).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&domain.Question{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&domain.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrCourseNotFound
		}
		return nil
	})
}

func (r *courseRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Count(&count).Error
	return count, err
}

// ========== MODULE REPOSITORY ==========

type moduleRepo struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) domain.ModuleRepository {
	return &moduleRepo{db}
}

func (r *moduleRepo) Create(ctx context.Context, module *domain.Module) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(module).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrModuleOrderTaken
	}
	return err
}

func (r *moduleRepo) Update(ctx context.Context, module *domain.Module) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(module).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrModuleOrderTaken
	}
	return err
}

// Delete removes the module together with its questions and progress rows.
func (r *moduleRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("module_id = ?", id).Delete(&domain.UserProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&domain.Question{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Module{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrModuleNotFound
		}
		return nil
	})
}

func (r *moduleRepo) GetByID(ctx context.Context, id uint) (*domain.Module, error) {
	var module domain.Module
	err := r.db.WithContext(ctx).First(&module, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrModuleNotFound
	}
	return &module, err
}

func (r *moduleRepo) GetByCourseID(ctx context.Context, courseID uint) ([]domain.Module, error) {
	var modules []domain.Module
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, id ASC").
		Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) CountQuestions(ctx context.Context, moduleIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(moduleIDs))
	if len(moduleIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		ModuleID uint
		Total    int
	}
	err := r.db.WithContext(ctx).Model(&domain.Question{}).
		Select("module_id, COUNT(*) AS total").
		Where("module_id IN ?", moduleIDs).
		Group("module_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ModuleID] = row.Total
	}
	return counts, nil
}

// Reorder moves every listed module to a negative slot first so the
// (course_id, position) unique index holds at every step.
func (r *moduleRepo) Reorder(ctx context.Context, courseID uint, moduleIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range moduleIDs {
			res := tx.Model(&domain.Module{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", -(i + 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return domain.ErrModuleNotFound
			}
		}
		for i, id := range moduleIDs {
			if err := tx.Model(&domain.Module{}).
				Where("id = ? AND course_id = ?", id, courseID).
				Update("position", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ========== QUESTION REPOSITORY ==========

type questionRepo struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) domain.QuestionRepository {
	return &questionRepo{db}
}

func (r *questionRepo) Create(ctx context.Context, q *domain.Question) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionRepo) Update(ctx context.Context, q *domain.Question) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *questionRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Question{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id uint) (*domain.Question, error) {
	var q domain.Question
	err := r.db.WithContext(ctx).First(&q, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuestionNotFound
	}
	return &q, err
}

func (r *questionRepo) GetByModuleID(ctx context.Context, moduleID uint) ([]domain.Question, error) {
	var questions []domain.Question
	err := r.db.WithContext(ctx).
		Where("module_id = ?", moduleID).
		Order("position ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// ========== ENROLLMENT REPOSITORY ==========

type enrollmentRepo struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) domain.EnrollmentRepository {
	return &enrollmentRepo{db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrAlreadyEnrolled
	}
	return err
}

func (r *enrollmentRepo) Update(ctx context.Context, enrollment *domain.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(enrollment).Error
}

// GetByUserAndCourse returns nil, nil when the learner is not enrolled.
func (r *enrollmentRepo) GetByUserAndCourse(ctx context.Context, userID, courseID uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &enrollment, err
}

func (r *enrollmentRepo) GetByID(ctx context.Context, id uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Preload("User").Preload("Course").First(&enrollment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrEnrollmentNotFound
	}
	return &enrollment, err
}

func (r *enrollmentRepo) GetByUserID(ctx context.Context, userID uint) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Course").
		Order("enrolled_at DESC, id DESC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) GetByCourseID(ctx context.Context, courseID uint, status domain.PracticalTestStatus) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	q := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if status != "" {
		q = q.Where("practical_test_status = ?", status)
	}
	err := q.Preload("User").Order("id ASC").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) AssignPracticalTest(ctx context.Context, id uint, category string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("id = ? AND assigned_practical_test = ''", id).
		Updates(map[string]interface{}{
			"assigned_practical_test":       category,
			"practical_test_status":         domain.StatusNotSubmitted,
			"certificate_status_updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *enrollmentRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) CountByStatus(ctx context.Context, status domain.PracticalTestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).Where("practical_test_status = ?", status).Count(&count).Error
	return count, err
}

func (r *enrollmentRepo) CountApproved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).Where("certificate_admin_approved_at IS NOT NULL").Count(&count).Error
	return count, err
}

// ========== PROGRESS REPOSITORY ==========

type progressRepo struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) domain.ProgressRepository {
	return &progressRepo{db}
}

func (r *progressRepo) GetProgress(ctx context.Context, userID, courseID uint) ([]domain.UserProgress, error) {
	var rows []domain.UserProgress
	err := r.db.WithContext(ctx).
		Select("user_progress.*").
		Joins("JOIN modules ON modules.id = user_progress.module_id").
		Where("user_progress.user_id = ? AND user_progress.course_id = ?", userID, courseID).
		Order("modules.position ASC, modules.id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *progressRepo) RecordAttempt(ctx context.Context, userID, courseID, moduleID uint, score *int, complete bool) (*domain.UserProgress, error) {
	now := time.Now()
	row := domain.UserProgress{
		UserID:         userID,
		CourseID:       courseID,
		ModuleID:       moduleID,
		Score:          score,
		LastAccessedAt: &now,
	}

	set := map[string]interface{}{
		"last_accessed_at": now,
		"updated_at":       now,
	}
	if complete {
		row.CompletedAt = &now
		set["completed_at"] = gorm.Expr("COALESCE(user_progress.completed_at, excluded.completed_at)")
	}
	if score != nil {
		set["score"] = gorm.Expr("excluded.score")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "module_id"}},
		DoUpdates: clause.Assignments(set),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserAndModule(ctx, userID, moduleID)
}

func (r *progressRepo) TouchAccess(ctx context.Context, userID, courseID, moduleID uint) (*domain.UserProgress, error) {
	return r.RecordAttempt(ctx, userID, courseID, moduleID, nil, false)
}

// GetByUserAndModule returns nil, nil when the learner has no row for the module.
func (r *progressRepo) GetByUserAndModule(ctx context.Context, userID, moduleID uint) (*domain.UserProgress, error) {
	var row domain.UserProgress
	err := r.db.WithContext(ctx).Where("user_id = ? AND module_id = ?", userID, moduleID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}
