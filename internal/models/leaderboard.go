package models

// LeaderboardEntry is one ranked row. TotalScore is the mean of the user's
// per-course averages, kept unrounded; callers round for display only.
type LeaderboardEntry struct {
	UserID           string
	FullName         string
	TotalScore       float64
	CompletedCourses int
	Certificates     int
}
