package vocabulary

var (
	defaultSkills = []string{
		"Python", "Java", "C++", "SQL", "Machine Learning", "AI", "Excel",
		"Power BI", "Statistics", "Photoshop", "Illustrator", "Communication",
		"Leadership", "Recruitment", "Payroll", "Deep Learning", "NLP",
	}
	defaultEducation = []string{
		"B.Tech", "BE", "M.Tech", "ME", "MBA", "B.Sc", "M.Sc", "PhD",
		"Diploma", "High School", "Intermediate", "BCA", "MCA",
	}
	defaultRoles = []string{
		"Software Engineer", "Data Analyst", "Graphic Designer", "HR Manager",
		"Teacher", "Consultant", "Accountant", "Engineer", "Finance Manager",
		"Sales Executive",
	}
)

// Default returns the built-in vocabularies.
func Default() Set {
	return Set{
		Skills:    New(defaultSkills...),
		Education: New(defaultEducation...),
		Roles:     New(defaultRoles...),
	}
}

// Override replaces every category of base that has labels in lists.
// Categories left empty in lists keep the base vocabulary.
func Override(base Set, lists Lists) Set {
	if len(lists.Skills) > 0 {
		base.Skills = New(lists.Skills...)
	}
	if len(lists.Education) > 0 {
		base.Education = New(lists.Education...)
	}
	if len(lists.Roles) > 0 {
		base.Roles = New(lists.Roles...)
	}
	return base
}
