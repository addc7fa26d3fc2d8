package handlers

import (
	"time"

	"github.com/ad/go-eduhub/internal/models"
	"github.com/ad/go-eduhub/internal/services"
)

type courseJSON struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	InstructorID   string    `json:"instructor_id,omitempty"`
	InstructorName string    `json:"instructor_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func courseToJSON(course *models.Course) courseJSON {
	return courseJSON{
		ID:             course.ID,
		Title:          course.Title,
		Description:    course.Description,
		InstructorID:   course.InstructorID,
		InstructorName: course.InstructorName,
		CreatedAt:      course.CreatedAt,
		UpdatedAt:      course.UpdatedAt,
	}
}

type lessonJSON struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
	Type     string `json:"type"`
}

func lessonToJSON(lesson *models.Lesson) lessonJSON {
	return lessonJSON{
		ID:       lesson.ID,
		CourseID: lesson.CourseID,
		Title:    lesson.Title,
		Content:  lesson.Content,
		Position: lesson.Position,
		Type:     string(lesson.Type),
	}
}

type quizJSON struct {
	ID           string                `json:"id"`
	LessonID     string                `json:"lesson_id"`
	Questions    []models.QuizQuestion `json:"questions"`
	PassingScore float64               `json:"passing_score"`
}

func quizToJSON(quiz *models.Quiz) quizJSON {
	return quizJSON{
		ID:           quiz.ID,
		LessonID:     quiz.LessonID,
		Questions:    quiz.Questions,
		PassingScore: quiz.PassingScore,
	}
}

type progressJSON struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	CourseID    string     `json:"course_id"`
	LessonID    string     `json:"lesson_id"`
	Completed   bool       `json:"completed"`
	Score       *float64   `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func progressToJSON(record *models.UserProgress) progressJSON {
	return progressJSON{
		ID:          record.ID,
		UserID:      record.UserID,
		CourseID:    record.CourseID,
		LessonID:    record.LessonID,
		Completed:   record.Completed,
		Score:       record.Score,
		CompletedAt: record.CompletedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

type progressViewJSON struct {
	Records  []progressJSON `json:"records"`
	Status   *string        `json:"status,omitempty"`
	Fraction *float64       `json:"fraction,omitempty"`
}

type upsertJSON struct {
	Record         progressJSON     `json:"record"`
	Applied        bool             `json:"applied"`
	Status         string           `json:"status"`
	Fraction       float64          `json:"fraction"`
	NewlyCompleted bool             `json:"newly_completed"`
	Certificate    *certificateJSON `json:"certificate,omitempty"`
}

func upsertResultJSON(result *services.UpsertResult) upsertJSON {
	resp := upsertJSON{
		Record:         progressToJSON(result.Record),
		Applied:        result.Applied,
		Status:         string(result.Status),
		Fraction:       result.Fraction,
		NewlyCompleted: result.NewlyCompleted,
	}
	if result.Certificate != nil {
		resp.Certificate = &certificateJSON{
			ID:          result.Certificate.ID,
			UserID:      result.Certificate.UserID,
			CourseID:    result.Certificate.CourseID,
			CourseTitle: result.Certificate.CourseTitle,
			UserName:    result.Certificate.UserName,
			FilePath:    result.Certificate.FilePath,
			IssuedAt:    result.Certificate.IssuedAt,
		}
	}
	return resp
}

type quizResultJSON struct {
	Percentage float64    `json:"percentage"`
	Passed     bool       `json:"passed"`
	Upsert     upsertJSON `json:"upsert"`
}

type certificateJSON struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CourseID    string    `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	UserName    string    `json:"user_name"`
	FilePath    string    `json:"file_path,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}

type leaderboardEntryJSON struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"user_id"`
	FullName         string `json:"full_name"`
	TotalScore       int    `json:"total_score"`
	CompletedCourses int    `json:"completed_courses"`
	Certificates     int    `json:"certificates"`
}

type leaderboardJSON struct {
	SortedBy  string                  `json:"sorted_by"`
	Community services.CommunityStats `json:"community"`
	Entries   []leaderboardEntryJSON  `json:"entries"`
}

type dashboardJSON struct {
	EnrolledCourses   int            `json:"enrolled_courses"`
	CompletedCourses  int            `json:"completed_courses"`
	InProgressCourses int            `json:"in_progress_courses"`
	Certificates      int            `json:"certificates"`
	RecentCompletions []progressJSON `json:"recent_completions"`
}
