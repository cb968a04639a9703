package curriculum

// Structure is the course catalogue: an ordered list of modules, each with
// an ordered list of courses.
type Structure struct {
	Modules []Module `json:"modules" yaml:"modules"`
}

// Module groups courses and owns one quiz and one resources page.
type Module struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Icon    string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	Courses []Course `json:"courses" yaml:"courses"`
}

// Course is one lesson page.
type Course struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CourseRef points at a course from outside its module.
type CourseRef struct {
	ModuleID string `json:"moduleId"`
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
}

// Key returns the course key of r.
func (r CourseRef) Key() string {
	return CourseKey(r.ModuleID, r.CourseID)
}

// CourseKey identifies a course in progress records and routes.
func CourseKey(moduleID, courseID string) string {
	return moduleID + "-" + courseID
}

// FindModule returns the module with id.
func (s *Structure) FindModule(id string) (Module, bool) {
	for _, m := range s.Modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// FindCourse returns the course courseID of module moduleID.
func (s *Structure) FindCourse(moduleID, courseID string) (Course, bool) {
	mi, ci, ok := s.CourseIndex(moduleID, courseID)
	if !ok {
		return Course{}, false
	}
	return s.Modules[mi].Courses[ci], true
}

// CourseIndex returns the module and course positions of a course.
func (s *Structure) CourseIndex(moduleID, courseID string) (moduleIdx, courseIdx int, ok bool) {
	for mi, m := range s.Modules {
		if m.ID != moduleID {
			continue
		}
		for ci, c := range m.Courses {
			if c.ID == courseID {
				return mi, ci, true
			}
		}
		return mi, -1, false
	}
	return -1, -1, false
}

// CourseCount returns the number of courses across all modules.
func (s *Structure) CourseCount() int {
	n := 0
	for _, m := range s.Modules {
		n += len(m.Courses)
	}
	return n
}

// CourseKeys returns every course key in catalogue order.
func (s *Structure) CourseKeys() []string {
	keys := make([]string, 0, s.CourseCount())
	for _, m := range s.Modules {
		for _, c := range m.Courses {
			keys = append(keys, CourseKey(m.ID, c.ID))
		}
	}
	return keys
}

// Neighbors returns the courses before and after a course. At a module
// boundary they wrap to the last course of the previous module or the
// first course of the next one. Modules without courses are skipped.
// Either result is nil when no such course exists.
func (s *Structure) Neighbors(moduleID, courseID string) (prev, next *CourseRef) {
	mi, ci, ok := s.CourseIndex(moduleID, courseID)
	if !ok {
		return nil, nil
	}
	m := s.Modules[mi]

	if ci > 0 {
		prev = ref(m, m.Courses[ci-1])
	} else {
		for i := mi - 1; i >= 0; i-- {
			if pm := s.Modules[i]; len(pm.Courses) > 0 {
				prev = ref(pm, pm.Courses[len(pm.Courses)-1])
				break
			}
		}
	}

	if ci < len(m.Courses)-1 {
		next = ref(m, m.Courses[ci+1])
	} else {
		for i := mi + 1; i < len(s.Modules); i++ {
			if nm := s.Modules[i]; len(nm.Courses) > 0 {
				next = ref(nm, nm.Courses[0])
				break
			}
		}
	}
	return prev, next
}

func ref(m Module, c Course) *CourseRef {
	return &CourseRef{ModuleID: m.ID, CourseID: c.ID, Title: c.Title}
}
