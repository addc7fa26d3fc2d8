package models

type LessonType string

const (
	LessonTypeArticle LessonType = "article"
	LessonTypeQuiz    LessonType = "quiz"
)

type CourseStatus string

const (
	StatusNotStarted CourseStatus = "not_started"
	StatusInProgress CourseStatus = "in_progress"
	StatusCompleted  CourseStatus = "completed"
)

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleInstructor UserRole = "instructor"
	RoleLearner    UserRole = "learner"
)

type RankingKey string

const (
	RankByScore        RankingKey = "score"
	RankByCourses      RankingKey = "courses"
	RankByCertificates RankingKey = "certificates"
)

func ParseRankingKey(s string) (RankingKey, bool) {
	switch RankingKey(s) {
	case RankByScore, RankByCourses, RankByCertificates:
		return RankingKey(s), true
	case "":
		return RankByScore, true
	}
	return "", false
}
