package db

import (
	"database/sql"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/google/uuid"
)

type QuizRepository struct {
	queue *Queue
}

func NewQuizRepository(queue *Queue) *QuizRepository {
	return &QuizRepository{queue: queue}
}

func (r *QuizRepository) Create(quiz *models.Quiz) (string, error) {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	questionsJSON, err := quiz.QuestionsJSON()
	if err != nil {
		return "", err
	}
	_, err = r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		_, err := db.Exec(`
			INSERT INTO quizzes (id, lesson_id, questions, passing_score)
			VALUES (?, ?, ?, ?)
		`, quiz.ID, quiz.LessonID, questionsJSON, quiz.PassingScore)
		return nil, err
	})
	if err != nil {
		return "", err
	}
	return quiz.ID, nil
}

func (r *QuizRepository) GetByLesson(lessonID string) (*models.Quiz, error) {
	result, err := r.queue.Execute(func(db *sql.DB) (interface{}, error) {
		row := db.QueryRow(`
			SELECT id, lesson_id, questions, passing_score
			FROM quizzes WHERE lesson_id = ?
		`, lessonID)

		var quiz models.Quiz
		var questionsJSON string
		err := row.Scan(&quiz.ID, &quiz.LessonID, &questionsJSON, &quiz.PassingScore)
		if err != nil {
			return nil, err
		}
		quiz.Questions, err = models.ParseQuizQuestions(questionsJSON)
		if err != nil {
			return nil, err
		}
		return &quiz, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Quiz), nil
}
