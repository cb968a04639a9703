package progress

// Badge identifiers.
const (
	BadgeFirstCourse  = "first_course"
	BadgeFiveCourses  = "five_courses"
	BadgeAllCourses   = "all_courses"
	BadgeOneHourStudy = "one_hour_study"
)

type badgeRule struct {
	id          string
	title       string
	description string
	earned      func(r *Record, catalogSize int) bool
}

var badgeRules = []badgeRule{
	{
		id:          BadgeFirstCourse,
		title:       "Premier cours terminé",
		description: "Vous avez terminé votre premier cours !",
		earned:      func(r *Record, _ int) bool { return r.CompletedCourses >= 1 },
	},
	{
		id:          BadgeFiveCourses,
		title:       "5 cours terminés",
		description: "Vous avez terminé 5 cours !",
		earned:      func(r *Record, _ int) bool { return r.CompletedCourses >= 5 },
	},
	{
		id:          BadgeAllCourses,
		title:       "Tous les cours terminés",
		description: "Félicitations ! Vous avez terminé tous les cours !",
		earned: func(r *Record, n int) bool {
			return n > 0 && r.CompletedCourses >= n
		},
	},
	{
		id:          BadgeOneHourStudy,
		title:       "1 heure d'étude",
		description: "Vous avez étudié pendant 1 heure !",
		earned:      func(r *Record, _ int) bool { return r.TotalStudyTime >= 60 },
	},
}
