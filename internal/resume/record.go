package resume

// Record is the structured form of a resume. Optional scalars are pointers so
// an absent value stays distinct from an empty one.
type Record struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        *string         `json:"summary,omitempty" validate:"omitempty,max=500"`
	Experience     []Experience    `json:"experience" validate:"dive"`
	Education      []Education     `json:"education" validate:"dive"`
	Skills         []string        `json:"skills"`
	Certifications []Certification `json:"certifications,omitempty" validate:"omitempty,dive"`
}

type PersonalInfo struct {
	FullName string  `json:"fullName" validate:"max=200"`
	Email    string  `json:"email" validate:"omitempty,email"`
	Phone    string  `json:"phone" validate:"max=50"`
	Location string  `json:"location,omitempty"`
	Linkedin *string `json:"linkedin,omitempty"`
	Website  *string `json:"website,omitempty"`
}

type Experience struct {
	JobTitle     string   `json:"jobTitle"`
	Company      string   `json:"company"`
	Location     *string  `json:"location,omitempty"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"` // "Present" while current
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	Degree         string  `json:"degree"`
	Institution    string  `json:"institution"`
	Location       *string `json:"location,omitempty"`
	GraduationDate string  `json:"graduationDate"`
	GPA            *string `json:"gpa,omitempty"`
}

type Certification struct {
	Name   string  `json:"name"`
	Issuer string  `json:"issuer"`
	Date   *string `json:"date,omitempty"`
}

// canonicalize replaces nil lists with empty ones so a record always
// serializes its list fields as arrays. Certifications stay nil when absent.
func (r *Record) canonicalize() {
	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	for i := range r.Experience {
		if r.Experience[i].Achievements == nil {
			r.Experience[i].Achievements = []string{}
		}
	}
}

// DisplayName returns a short label for the record, used as a draft title.
func (r Record) DisplayName() string {
	if r.PersonalInfo.FullName != "" {
		return r.PersonalInfo.FullName + " Resume"
	}
	return "Untitled Resume"
}
