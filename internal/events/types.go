package events

// Route kinds carried by ContentLoaded.
const (
	KindStatic    = "static"
	KindCourse    = "course"
	KindQuiz      = "quiz"
	KindResources = "resources"
)

// ContentLoaded fires after a route's content has been rendered.
type ContentLoaded struct {
	RouteID  string `json:"routeId"`
	Kind     string `json:"kind"`
	ModuleID string `json:"moduleId,omitempty"`
	CourseID string `json:"courseId,omitempty"`
}

func (ContentLoaded) Name() string { return "contentLoaded" }

// CourseKey returns "<module>-<course>" for course routes and "" otherwise.
func (e ContentLoaded) CourseKey() string {
	if e.Kind != KindCourse {
		return ""
	}
	return e.ModuleID + "-" + e.CourseID
}

// ExerciseCompleted fires when an in-page exercise is checked.
// It is emitted for incorrect answers too.
type ExerciseCompleted struct {
	ExerciseID string `json:"exerciseId"`
	Correct    bool   `json:"correct"`
}

func (ExerciseCompleted) Name() string { return "exerciseCompleted" }

// QuizCompleted fires when a module quiz is submitted. Score is 0..100.
type QuizCompleted struct {
	ModuleID string `json:"moduleId"`
	Score    int    `json:"score"`
}

func (QuizCompleted) Name() string { return "quizCompleted" }

// ThemeChanged fires when the display theme changes.
type ThemeChanged struct {
	Theme string `json:"theme"`
}

func (ThemeChanged) Name() string { return "themeChanged" }

// ProgressChanged fires after any mutation of the progress record.
type ProgressChanged struct{}

func (ProgressChanged) Name() string { return "progressChanged" }

// BadgeEarned fires once per newly awarded badge.
type BadgeEarned struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (BadgeEarned) Name() string { return "badgeEarned" }

// ProgressReset fires after all progress has been cleared.
type ProgressReset struct{}

func (ProgressReset) Name() string { return "progressReset" }
