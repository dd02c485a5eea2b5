// Package repotest provides in-memory implementations of the repository interfaces for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/repositories"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

// Store is an in-memory stand-in for the database shared by the repositories of this package.
// It is not safe for concurrent use.
type Store struct {
	Accounts map[int64]*models.Account
	Students map[int64]*models.Student
	Pets     map[int64]*models.Pet
	nextID   int64
	clock    time.Time
}

// NewStore returns an empty store whose clock starts at 2024-03-10 09:00 UTC
func NewStore() *Store {
	return &Store{
		Accounts: map[int64]*models.Account{},
		Students: map[int64]*models.Student{},
		Pets:     map[int64]*models.Pet{},
		clock:    time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (f *Store) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *Store) tick() time.Time {
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func containsFold(s *string, sub string) bool {
	return s != nil && strings.Contains(strings.ToLower(*s), strings.ToLower(sub))
}

func page[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

// accounts

// AccountRepo implements repositories.IAccountRepository
type AccountRepo struct{ *Store }

var _ repositories.IAccountRepository = AccountRepo{}

func (r AccountRepo) Create(_ context.Context, a *models.Account) error {
	for _, existing := range r.Accounts {
		if existing.Username == a.Username {
			return apperrors.ErrDuplicateUsername
		}
		if existing.Email == a.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	a.ID = r.id()
	a.CreatedAt = r.tick()
	cp := *a
	r.Accounts[a.ID] = &cp
	return nil
}

func (r AccountRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if a, ok := r.Accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repositories.ErrAccountNotFound
}

func (r AccountRepo) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	for _, a := range r.Accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (r AccountRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r AccountRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, a := range r.Accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r AccountRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	a, ok := r.Accounts[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	a.LastLoginAt = &at
	return nil
}

func (r AccountRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	a, ok := r.Accounts[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

// students

// StudentRepo implements repositories.IStudentRepository. Delete cascades to pets.
type StudentRepo struct{ *Store }

var _ repositories.IStudentRepository = StudentRepo{}

// sortedStudents returns copies without photo bytes, like the real column list
func (r StudentRepo) sortedStudents(match func(*models.Student) bool) []models.Student {
	out := []models.Student{}
	for _, s := range r.Students {
		if match == nil || match(s) {
			cp := *s
			cp.Photo = nil
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r StudentRepo) List(_ context.Context, search string, offset, limit uint64) ([]models.Student, int64, error) {
	var match func(*models.Student) bool
	if search != "" {
		match = func(s *models.Student) bool {
			return containsFold(&s.Name, search) || containsFold(&s.EnrollmentCode, search) || containsFold(s.Course, search)
		}
	}
	all := r.sortedStudents(match)
	return page(all, offset, limit), int64(len(all)), nil
}

func (r StudentRepo) ListAll(context.Context) ([]models.Student, error) {
	return r.sortedStudents(nil), nil
}

func (r StudentRepo) Recent(_ context.Context, limit uint64) ([]models.Student, error) {
	all := r.sortedStudents(nil)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return page(all, 0, limit), nil
}

func (r StudentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := r.Students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	cp.Photo = nil
	return &cp, nil
}

func (r StudentRepo) GetPhoto(_ context.Context, id int64) (*models.StudentPhoto, error) {
	s, ok := r.Students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	photo := &models.StudentPhoto{Data: s.Photo}
	if s.PhotoFilename != nil {
		photo.Filename = *s.PhotoFilename
	}
	return photo, nil
}

func (r StudentRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.Students[id]
	return ok, nil
}

func (r StudentRepo) EnrollmentCodeTaken(_ context.Context, code string, excludeID int64) (bool, error) {
	for _, s := range r.Students {
		if s.EnrollmentCode == code && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r StudentRepo) Count(context.Context) (int64, error) {
	return int64(len(r.Students)), nil
}

func (r StudentRepo) Create(ctx context.Context, s *models.Student) error {
	if taken, _ := r.EnrollmentCodeTaken(ctx, s.EnrollmentCode, 0); taken {
		return apperrors.ErrDuplicateEnrollment
	}
	s.ID = r.id()
	s.CreatedAt = r.tick()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	r.Students[s.ID] = &cp
	return nil
}

func (r StudentRepo) Update(ctx context.Context, s *models.Student, replacePhoto bool) error {
	current, ok := r.Students[s.ID]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	if taken, _ := r.EnrollmentCodeTaken(ctx, s.EnrollmentCode, s.ID); taken {
		return apperrors.ErrDuplicateEnrollment
	}
	cp := *s
	cp.CreatedAt = current.CreatedAt
	if !replacePhoto {
		cp.Photo = current.Photo
		cp.PhotoFilename = current.PhotoFilename
	}
	cp.UpdatedAt = r.tick()
	s.UpdatedAt = cp.UpdatedAt
	r.Students[s.ID] = &cp
	return nil
}

func (r StudentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.Students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for pid, p := range r.Pets {
		if p.StudentID == id {
			delete(r.Pets, pid)
		}
	}
	delete(r.Students, id)
	return nil
}

// pets

// PetRepo implements repositories.IPetRepository and enforces the owner foreign key
type PetRepo struct{ *Store }

var _ repositories.IPetRepository = PetRepo{}

func (r PetRepo) withOwner(p *models.Pet) models.Pet {
	cp := *p
	if s, ok := r.Students[p.StudentID]; ok {
		cp.OwnerName = s.Name
	}
	return cp
}

func (r PetRepo) sortedPets(match func(models.Pet) bool, byID bool) []models.Pet {
	out := []models.Pet{}
	for _, p := range r.Pets {
		cp := r.withOwner(p)
		if match == nil || match(cp) {
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !byID && out[i].Nickname != out[j].Nickname {
			return out[i].Nickname < out[j].Nickname
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r PetRepo) List(_ context.Context, search string, offset, limit uint64) ([]models.Pet, int64, error) {
	var match func(models.Pet) bool
	if search != "" {
		match = func(p models.Pet) bool {
			return containsFold(&p.Nickname, search) || containsFold(p.Breed, search) || containsFold(&p.OwnerName, search)
		}
	}
	all := r.sortedPets(match, false)
	return page(all, offset, limit), int64(len(all)), nil
}

func (r PetRepo) ListAll(context.Context) ([]models.Pet, error) {
	return r.sortedPets(nil, true), nil
}

func (r PetRepo) ListByStudent(_ context.Context, studentID int64) ([]models.Pet, error) {
	return r.sortedPets(func(p models.Pet) bool { return p.StudentID == studentID }, false), nil
}

func (r PetRepo) ListByStudents(_ context.Context, ids []int64) ([]models.Pet, error) {
	set := map[int64]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return r.sortedPets(func(p models.Pet) bool { return set[p.StudentID] }, false), nil
}

func (r PetRepo) GetByID(_ context.Context, id int64) (*models.Pet, error) {
	p, ok := r.Pets[id]
	if !ok {
		return nil, apperrors.ErrPetNotFound
	}
	cp := r.withOwner(p)
	return &cp, nil
}

func (r PetRepo) Count(context.Context) (int64, error) {
	return int64(len(r.Pets)), nil
}

func (r PetRepo) Create(_ context.Context, p *models.Pet) error {
	if _, ok := r.Students[p.StudentID]; !ok {
		return apperrors.ErrOwnerNotFound
	}
	p.ID = r.id()
	p.CreatedAt = r.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.Pets[p.ID] = &cp
	return nil
}

func (r PetRepo) Update(_ context.Context, p *models.Pet) error {
	current, ok := r.Pets[p.ID]
	if !ok {
		return apperrors.ErrPetNotFound
	}
	if _, ok := r.Students[p.StudentID]; !ok {
		return apperrors.ErrOwnerNotFound
	}
	cp := *p
	cp.CreatedAt = current.CreatedAt
	cp.UpdatedAt = r.tick()
	p.UpdatedAt = cp.UpdatedAt
	r.Pets[p.ID] = &cp
	return nil
}

func (r PetRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.Pets[id]; !ok {
		return apperrors.ErrPetNotFound
	}
	delete(r.Pets, id)
	return nil
}

// stats

// StatsRepo implements repositories.IStatsRepository
type StatsRepo struct{ *Store }

var _ repositories.IStatsRepository = StatsRepo{}

func (r StatsRepo) AverageAge(context.Context) (*float64, error) {
	var sum, n int
	for _, s := range r.Students {
		if s.Age != nil {
			sum += *s.Age
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func groupSorted(counts map[string]int64) []models.CountByLabel {
	out := make([]models.CountByLabel, 0, len(counts))
	for label, n := range counts {
		out = append(out, models.CountByLabel{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r StatsRepo) StudentsByCourse(context.Context) ([]models.CountByLabel, error) {
	counts := map[string]int64{}
	for _, s := range r.Students {
		counts[deref(s.Course)]++
	}
	return groupSorted(counts), nil
}

func (r StatsRepo) StudentsBySex(context.Context) ([]models.CountByLabel, error) {
	counts := map[string]int64{}
	for _, s := range r.Students {
		counts[deref(s.Sex)]++
	}
	return groupSorted(counts), nil
}

func (r StatsRepo) StudentsByAgeBand(context.Context) ([]models.CountByLabel, error) {
	counts := map[string]int64{}
	for _, s := range r.Students {
		if s.Age != nil {
			counts[models.AgeBandOf(*s.Age)]++
		}
	}
	return groupSorted(counts), nil
}

func (r StatsRepo) PetsByBreed(_ context.Context, limit uint64) ([]models.CountByLabel, error) {
	counts := map[string]int64{}
	for _, p := range r.Pets {
		counts[deref(p.Breed)]++
	}
	return page(groupSorted(counts), 0, limit), nil
}
