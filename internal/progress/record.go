// Package progress tracks the learner's advancement through courses and
// quizzes, awards badges and accrues study time.
package progress

import (
	"maps"
	"time"
)

// Record is the persisted progress document. JSON names match the stored
// "progress-data" key.
type Record struct {
	Courses          map[string]*CourseProgress `json:"courses"`
	Quizzes          map[string]*QuizProgress   `json:"quizzes"`
	TotalStudyTime   int                        `json:"totalStudyTime"`
	LastStudySession *time.Time                 `json:"lastStudySession"`
	CompletedCourses int                        `json:"completedCourses"`
	Badges           []Badge                    `json:"badges"`
}

// CourseProgress is the state of one course, keyed by "<module>-<course>".
type CourseProgress struct {
	Visited               bool            `json:"visited"`
	Completed             bool            `json:"completed"`
	PercentCompleted      int             `json:"percentCompleted"`
	LastVisit             *time.Time      `json:"lastVisit"`
	TotalTimeSpent        int             `json:"totalTimeSpent"`
	ExercisesCompleted    map[string]bool `json:"exercisesCompleted"`
	WasCountedAsCompleted bool            `json:"wasCountedAsCompleted,omitempty"`
}

// QuizProgress is the state of one module quiz.
type QuizProgress struct {
	BestScore   int        `json:"bestScore"`
	LastScore   int        `json:"lastScore"`
	Attempts    int        `json:"attempts"`
	Completed   bool       `json:"completed"`
	LastAttempt *time.Time `json:"lastAttempt"`
}

// Badge is a one-time achievement.
type Badge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedDate  time.Time `json:"earnedDate"`
}

// NewRecord returns the default empty record.
func NewRecord() Record {
	return Record{
		Courses: map[string]*CourseProgress{},
		Quizzes: map[string]*QuizProgress{},
		Badges:  []Badge{},
	}
}

// normalize replaces null collections left by older stored documents.
func (r *Record) normalize() {
	if r.Courses == nil {
		r.Courses = map[string]*CourseProgress{}
	}
	if r.Quizzes == nil {
		r.Quizzes = map[string]*QuizProgress{}
	}
	if r.Badges == nil {
		r.Badges = []Badge{}
	}
	for key, c := range r.Courses {
		if c == nil {
			delete(r.Courses, key)
			continue
		}
		if c.ExercisesCompleted == nil {
			c.ExercisesCompleted = map[string]bool{}
		}
	}
	for key, q := range r.Quizzes {
		if q == nil {
			delete(r.Quizzes, key)
		}
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := Record{
		Courses:          make(map[string]*CourseProgress, len(r.Courses)),
		Quizzes:          make(map[string]*QuizProgress, len(r.Quizzes)),
		TotalStudyTime:   r.TotalStudyTime,
		LastStudySession: cloneTime(r.LastStudySession),
		CompletedCourses: r.CompletedCourses,
		Badges:           append([]Badge{}, r.Badges...),
	}
	for key, c := range r.Courses {
		cp := *c
		cp.LastVisit = cloneTime(c.LastVisit)
		cp.ExercisesCompleted = maps.Clone(c.ExercisesCompleted)
		if cp.ExercisesCompleted == nil {
			cp.ExercisesCompleted = map[string]bool{}
		}
		out.Courses[key] = &cp
	}
	for key, q := range r.Quizzes {
		qp := *q
		qp.LastAttempt = cloneTime(q.LastAttempt)
		out.Quizzes[key] = &qp
	}
	return out
}

// HasBadge reports whether a badge with id has been earned.
func (r Record) HasBadge(id string) bool {
	for _, b := range r.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
