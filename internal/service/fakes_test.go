package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/sqlgrader-api/internal/models"
	"github.com/noah-isme/sqlgrader-api/internal/ranking"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type fakeStudentRepo struct {
	students map[uint]models.Student
	nextID   uint
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[uint]models.Student{}, nextID: 1}
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (models.Student, error) {
	for _, student := range f.students {
		if student.Email == email {
			return student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	for _, existing := range f.students {
		if existing.Email == student.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	student.ID = f.nextID
	f.nextID++
	student.CreatedAt = time.Now()
	f.students[student.ID] = *student
	return nil
}

func (f *fakeStudentRepo) UpdatePasswordHash(_ context.Context, id uint, hash string) error {
	student, ok := f.students[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	student.PasswordHash = hash
	f.students[id] = student
	return nil
}

type fakeSubmissionRepo struct {
	submissions map[uint]models.Submission
	nextID      uint
	createErr   error
	updateErr   map[uint]error
	updateCalls int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{submissions: map[uint]models.Submission{}, nextID: 1, updateErr: map[uint]error{}}
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *models.Submission) error {
	if f.createErr != nil {
		return f.createErr
	}
	submission.ID = f.nextID
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id uint) (models.Submission, error) {
	submission, ok := f.submissions[id]
	if !ok {
		return models.Submission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (f *fakeSubmissionRepo) ListByStudent(_ context.Context, studentID uint) ([]models.Submission, error) {
	var result []models.Submission
	for id := f.nextID; id > 0; id-- {
		if submission, ok := f.submissions[id]; ok && submission.StudentID == studentID {
			result = append(result, submission)
		}
	}
	return result, nil
}

func (f *fakeSubmissionRepo) ListAll(_ context.Context) ([]models.Submission, error) {
	var result []models.Submission
	for id := uint(1); id < f.nextID; id++ {
		if submission, ok := f.submissions[id]; ok {
			result = append(result, submission)
		}
	}
	return result, nil
}

func (f *fakeSubmissionRepo) UpdateScore(_ context.Context, id uint, score int) error {
	if err := f.updateErr[id]; err != nil {
		return err
	}
	submission, ok := f.submissions[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	submission.Score = score
	f.submissions[id] = submission
	f.updateCalls++
	return nil
}

func (f *fakeSubmissionRepo) RankingRows(_ context.Context) ([]ranking.Row, error) {
	var rows []ranking.Row
	for id := uint(1); id < f.nextID; id++ {
		submission, ok := f.submissions[id]
		if !ok {
			continue
		}
		rows = append(rows, ranking.Row{
			StudentID:   submission.StudentID,
			StudentName: submission.Student.Name,
			QuestionID:  submission.QuestionID,
			Score:       submission.Score,
		})
	}
	return rows, nil
}

type fakeQuestionRepo struct {
	questions map[uint]models.Question
	nextID    uint
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: map[uint]models.Question{}, nextID: 1}
}

func (f *fakeQuestionRepo) add(question models.Question) models.Question {
	question.ID = f.nextID
	f.nextID++
	f.questions[question.ID] = question
	return question
}

func (f *fakeQuestionRepo) List(_ context.Context) ([]models.Question, error) {
	var result []models.Question
	for id := uint(1); id < f.nextID; id++ {
		if question, ok := f.questions[id]; ok {
			result = append(result, question)
		}
	}
	return result, nil
}

func (f *fakeQuestionRepo) GetByID(_ context.Context, id uint) (models.Question, error) {
	question, ok := f.questions[id]
	if !ok {
		return models.Question{}, gorm.ErrRecordNotFound
	}
	return question, nil
}

func (f *fakeQuestionRepo) CreateBatch(_ context.Context, questions []models.Question) (int64, error) {
	for _, question := range questions {
		f.add(question)
	}
	return int64(len(questions)), nil
}

type fakeRegradeRunRepo struct {
	runs []models.RegradeRun
}

func (f *fakeRegradeRunRepo) Create(_ context.Context, run *models.RegradeRun) error {
	run.ID = uint(len(f.runs) + 1)
	f.runs = append(f.runs, *run)
	return nil
}

func (f *fakeRegradeRunRepo) List(_ context.Context) ([]models.RegradeRun, error) {
	return f.runs, nil
}

type failingGrader struct{}

func (failingGrader) Grade(context.Context, string, uint) (float64, error) {
	return 0, errors.New("oracle timeout")
}
