package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ad/go-eduhub/internal/db"
	"github.com/ad/go-eduhub/internal/models"
	"github.com/ad/go-eduhub/internal/services"
	"github.com/go-chi/chi/v5"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	userRepo       *db.UserRepository
	courseRepo     *db.CourseRepository
	lessonRepo     *db.LessonRepository
	quizRepo       *db.QuizRepository
	progressRepo   *db.ProgressRepository
	enrollmentRepo *db.EnrollmentRepository
	certRepo       *db.CertificateRepository

	progress    *services.ProgressService
	leaderboard *services.LeaderboardAggregator
	stats       *services.StatsService
	detector    *services.CompletionDetector
}

func New(
	userRepo *db.UserRepository,
	courseRepo *db.CourseRepository,
	lessonRepo *db.LessonRepository,
	quizRepo *db.QuizRepository,
	progressRepo *db.ProgressRepository,
	enrollmentRepo *db.EnrollmentRepository,
	certRepo *db.CertificateRepository,
	progress *services.ProgressService,
	leaderboard *services.LeaderboardAggregator,
	stats *services.StatsService,
) *Handler {
	return &Handler{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		lessonRepo:     lessonRepo,
		quizRepo:       quizRepo,
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
		certRepo:       certRepo,
		progress:       progress,
		leaderboard:    leaderboard,
		stats:          stats,
		detector:       services.NewCompletionDetector(),
	}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/courses", h.handleListCourses)
	r.Post("/api/courses", h.handleCreateCourse)
	r.Get("/api/courses/{courseID}", h.handleGetCourse)
	r.Get("/api/courses/{courseID}/lessons", h.handleListLessons)
	r.Post("/api/courses/{courseID}/lessons", h.handleCreateLesson)
	r.Get("/api/lessons/{lessonID}/quiz", h.handleGetQuiz)
	r.Post("/api/lessons/{lessonID}/quiz", h.handleCreateQuiz)
	r.Post("/api/users", h.handleCreateUser)
	r.Post("/api/enrollments", h.handleEnroll)
	r.Get("/api/users/{userID}/progress", h.handleGetProgress)
	r.Get("/api/users/{userID}/dashboard", h.handleDashboard)
	r.Get("/api/users/{userID}/certificates", h.handleListCertificates)
	r.Post("/api/progress/complete", h.handleMarkLesson)
	r.Post("/api/progress/quiz", h.handleSubmitQuiz)
	r.Get("/api/leaderboard", h.handleLeaderboard)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeStoreError maps record store failures. A failed read is never treated
// as "no records"; it surfaces as a retryable 503.
func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	log.Printf("[HTTP] store error: %v", err)
	writeError(w, http.StatusServiceUnavailable, "record store unavailable")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// parseRecordedAt reads the optional client action timestamp used for
// last-writer-wins ordering of retried requests.
func parseRecordedAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, value)
}

type progressRequest struct {
	UserID     string `json:"user_id"`
	CourseID   string `json:"course_id"`
	LessonID   string `json:"lesson_id"`
	Completed  *bool  `json:"completed,omitempty"`
	Answers    []int  `json:"answers,omitempty"`
	RecordedAt string `json:"recorded_at,omitempty"`
}

func (req *progressRequest) validate() string {
	if req.UserID == "" || req.CourseID == "" || req.LessonID == "" {
		return "user_id, course_id and lesson_id are required"
	}
	return ""
}

func (h *Handler) handleMarkLesson(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	at, err := parseRecordedAt(req.RecordedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "recorded_at must be RFC3339")
		return
	}

	completed := true
	if req.Completed != nil {
		completed = *req.Completed
	}

	result, err := h.progress.MarkLesson(req.UserID, req.CourseID, req.LessonID, completed, at)
	if err != nil {
		if errors.Is(err, services.ErrLessonNotInCourse) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, upsertResultJSON(result))
}

func (h *Handler) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	at, err := parseRecordedAt(req.RecordedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "recorded_at must be RFC3339")
		return
	}

	result, err := h.progress.SubmitQuiz(req.UserID, req.CourseID, req.LessonID, req.Answers, at)
	if err != nil {
		if errors.Is(err, services.ErrLessonNotInCourse) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}

	resp := quizResultJSON{
		Percentage: result.Score.Percentage,
		Passed:     result.Score.Passed,
		Upsert:     upsertResultJSON(result.Upsert),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	key, ok := models.ParseRankingKey(r.URL.Query().Get("sort"))
	if !ok {
		writeError(w, http.StatusBadRequest, "sort must be one of score, courses, certificates")
		return
	}

	entries, err := h.leaderboard.Aggregate(key)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := leaderboardJSON{
		SortedBy:  string(key),
		Community: services.Community(entries),
		Entries:   make([]leaderboardEntryJSON, 0, len(entries)),
	}
	for i, entry := range entries {
		resp.Entries = append(resp.Entries, leaderboardEntryJSON{
			Rank:             i + 1,
			UserID:           entry.UserID,
			FullName:         entry.FullName,
			TotalScore:       int(entry.TotalScore + 0.5),
			CompletedCourses: entry.CompletedCourses,
			Certificates:     entry.Certificates,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	courseID := r.URL.Query().Get("course_id")

	records, err := h.progressRepo.GetByUser(userID, courseID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := progressViewJSON{Records: make([]progressJSON, 0, len(records))}
	for _, record := range records {
		resp.Records = append(resp.Records, progressToJSON(record))
	}

	if courseID != "" {
		lessons, err := h.lessonRepo.GetByCourse(courseID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		ledger := services.NewProgressLedger(userID, records)
		fraction, err := ledger.CompletionFraction(courseID, len(lessons))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		status := string(h.detector.Status(ledger, courseID, lessons))
		resp.Status = &status
		resp.Fraction = &fraction
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(chi.URLParam(r, "userID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	recent := make([]progressJSON, 0, len(stats.RecentCompletions))
	for _, record := range stats.RecentCompletions {
		recent = append(recent, progressToJSON(record))
	}
	writeJSON(w, http.StatusOK, dashboardJSON{
		EnrolledCourses:   stats.EnrolledCourses,
		CompletedCourses:  stats.CompletedCourses,
		InProgressCourses: stats.InProgressCourses,
		Certificates:      stats.Certificates,
		RecentCompletions: recent,
	})
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"user_id"`
		CourseID string `json:"course_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.CourseID == "" {
		writeError(w, http.StatusBadRequest, "user_id and course_id are required")
		return
	}

	if _, err := h.userRepo.GetByID(req.UserID); err != nil {
		writeStoreError(w, err)
		return
	}
	if _, err := h.courseRepo.GetByID(req.CourseID); err != nil {
		writeStoreError(w, err)
		return
	}

	enrollment := &models.Enrollment{UserID: req.UserID, CourseID: req.CourseID}
	if err := h.enrollmentRepo.Create(enrollment); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": enrollment.ID})
}

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courseRepo.GetAll()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := make([]courseJSON, 0, len(courses))
	for _, course := range courses {
		resp = append(resp, courseToJSON(course))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.courseRepo.GetByID(chi.URLParam(r, "courseID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, courseToJSON(course))
}

func (h *Handler) handleListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessonRepo.GetByCourse(chi.URLParam(r, "courseID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := make([]lessonJSON, 0, len(lessons))
	for _, lesson := range lessons {
		resp = append(resp, lessonToJSON(lesson))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizRepo.GetByLesson(chi.URLParam(r, "lessonID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizToJSON(quiz))
}

func (h *Handler) handleListCertificates(w http.ResponseWriter, r *http.Request) {
	certs, err := h.certRepo.GetByUser(chi.URLParam(r, "userID"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	resp := make([]certificateJSON, 0, len(certs))
	for _, c := range certs {
		resp = append(resp, certificateJSON{
			ID:          c.ID,
			UserID:      c.UserID,
			CourseID:    c.CourseID,
			CourseTitle: c.CourseTitle,
			UserName:    c.UserName,
			FilePath:    c.FilePath,
			IssuedAt:    c.IssuedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
