package handlers

import (
	"net/http"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/go-chi/chi/v5"
)

// Content creation endpoints. Authorization is not this service's concern;
// callers are expected to front these with their own access control.

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FullName == "" {
		writeError(w, http.StatusBadRequest, "full_name is required")
		return
	}

	user := &models.User{
		FullName: req.FullName,
		Email:    req.Email,
		Role:     models.UserRole(req.Role),
	}
	if err := h.userRepo.Create(user); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": user.ID})
}

func (h *Handler) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		InstructorID string `json:"instructor_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	id, err := h.courseRepo.Create(&models.Course{
		Title:        req.Title,
		Description:  req.Description,
		InstructorID: req.InstructorID,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		Position int    `json:"position"`
		Type     string `json:"type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	lessonType := models.LessonType(req.Type)
	if req.Type == "" {
		lessonType = models.LessonTypeArticle
	} else if lessonType != models.LessonTypeArticle && lessonType != models.LessonTypeQuiz {
		writeError(w, http.StatusBadRequest, "type must be article or quiz")
		return
	}

	courseID := chi.URLParam(r, "courseID")
	if _, err := h.courseRepo.GetByID(courseID); err != nil {
		writeStoreError(w, err)
		return
	}

	id, err := h.lessonRepo.Create(&models.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
		Type:     lessonType,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Questions    []models.QuizQuestion `json:"questions"`
		PassingScore float64               `json:"passing_score"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PassingScore < 0 || req.PassingScore > 100 {
		writeError(w, http.StatusBadRequest, "passing_score must be between 0 and 100")
		return
	}
	for _, question := range req.Questions {
		if question.Points <= 0 {
			writeError(w, http.StatusBadRequest, "question points must be positive")
			return
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			writeError(w, http.StatusBadRequest, "correct_answer must index an option")
			return
		}
	}

	lessonID := chi.URLParam(r, "lessonID")
	lesson, err := h.lessonRepo.GetByID(lessonID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if !lesson.IsQuiz() {
		writeError(w, http.StatusBadRequest, "lesson is not a quiz lesson")
		return
	}

	id, err := h.quizRepo.Create(&models.Quiz{
		LessonID:     lessonID,
		Questions:    req.Questions,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}
