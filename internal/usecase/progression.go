package usecase

import (
	"kursus-backend/internal/domain"
)

// ProgressIndex maps module id to the learner's ledger row for it.
type ProgressIndex map[uint]*domain.UserProgress

func IndexProgress(rows []domain.UserProgress) ProgressIndex {
	idx := make(ProgressIndex, len(rows))
	for i := range rows {
		idx[rows[i].ModuleID] = &rows[i]
	}
	return idx
}

func (p ProgressIndex) Completed(moduleID uint) bool {
	return p[moduleID].Completed()
}

func findModuleType(modules []domain.Module, t domain.ModuleType) int {
	for i := range modules {
		if modules[i].Type == t {
			return i
		}
	}
	return -1
}

// ResolveResume picks the module to show when the learner has no explicit
// target. modules must already be in catalog order.
//
//  1. the most recently opened content module, completed or not
//  2. the first content module that is not completed
//  3. the pre-test, when present and not completed
//  4. the post-test, when present
//  5. the last content module, else the first module
func ResolveResume(modules []domain.Module, progress ProgressIndex) (*domain.Module, error) {
	if len(modules) == 0 {
		return nil, domain.ErrNoModulesAvailable
	}

	recent := -1
	for i := range modules {
		m := &modules[i]
		if !m.Type.IsContent() {
			continue
		}
		row := progress[m.ID]
		if row == nil || row.LastAccessedAt == nil {
			continue
		}
		if recent < 0 || row.LastAccessedAt.After(*progress[modules[recent].ID].LastAccessedAt) {
			recent = i
		}
	}
	if recent >= 0 {
		return &modules[recent], nil
	}

	for i := range modules {
		if modules[i].Type.IsContent() && !progress.Completed(modules[i].ID) {
			return &modules[i], nil
		}
	}

	if pre := findModuleType(modules, domain.TypePreTestQuiz); pre >= 0 && !progress.Completed(modules[pre].ID) {
		return &modules[pre], nil
	}

	if post := findModuleType(modules, domain.TypePostTestQuiz); post >= 0 {
		return &modules[post], nil
	}

	for i := len(modules) - 1; i >= 0; i-- {
		if modules[i].Type.IsContent() {
			return &modules[i], nil
		}
	}
	return &modules[0], nil
}

// ComputeLocks returns the locked flag for every module, index-aligned with modules.
func ComputeLocks(needsPreTest bool, modules []domain.Module, progress ProgressIndex) []bool {
	locked := make([]bool, len(modules))

	pre := findModuleType(modules, domain.TypePreTestQuiz)
	preGate := needsPreTest && pre >= 0 && !progress.Completed(modules[pre].ID)

	for i := range modules {
		m := &modules[i]
		switch {
		case progress.Completed(m.ID):
			locked[i] = false
		case preGate && i != pre:
			locked[i] = true
		case m.Type == domain.TypePostTestQuiz:
			locked[i] = !allContentCompleted(modules[:i], progress)
		case i == 0:
			locked[i] = false
		default:
			locked[i] = !progress.Completed(modules[i-1].ID)
		}
	}
	return locked
}

func allContentCompleted(modules []domain.Module, progress ProgressIndex) bool {
	for i := range modules {
		if modules[i].Type.IsContent() && !progress.Completed(modules[i].ID) {
			return false
		}
	}
	return true
}
