package jd

// Defaults returns the built-in job descriptions used when no other source is
// selected.
func Defaults() []JobDescription {
	return []JobDescription{
		{
			ID:     "JD1",
			Title:  "Software Engineer",
			Skills: []string{"Python", "Machine Learning", "AI", "SQL"},
			Roles:  []string{"Software Engineer"},
		},
		{
			ID:     "JD2",
			Title:  "Data Analyst",
			Skills: []string{"Excel", "Power BI", "Statistics", "Python"},
			Roles:  []string{"Data Analyst"},
		},
		{
			ID:     "JD3",
			Title:  "Graphic Designer",
			Skills: []string{"Photoshop", "Illustrator", "Creativity"},
			Roles:  []string{"Graphic Designer"},
		},
		{
			ID:     "JD4",
			Title:  "HR Manager",
			Skills: []string{"Recruitment", "Communication", "Payroll", "Leadership"},
			Roles:  []string{"HR Manager"},
		},
	}
}
