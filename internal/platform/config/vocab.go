package config

// defaultKeywords identify placement-related notifications. A single
// occurrence in subject, plain body, or HTML body qualifies the message.
var defaultKeywords = []string{
	"talk", "test", "process", "online", "assessment", "exam",
	"ppt", "placement", "interview", "screening", "recruitment",
	"pre-placement", "registration", "opportunity", "drive", "hiring",
	"offer", "shortlist", "selected", "campus", "aptitude", "coding",
	"technical", "hr round", "group discussion", "gd", "resume",
	"application", "internship", "job", "role", "position", "opening",
	"pool campus", "off campus", "on campus", "walk-in", "company visit",
	"next round", "round 2", "round 3", "final round",
}

// OpenToAllVocabulary marks notices that apply to every student regardless
// of shortlists.
var OpenToAllVocabulary = []string{
	"all students",
	"all applied",
	"all opted",
	"all registered",
	"all candidates",
	"all participants",
	"all shortlisted",
	"all eligible",
	"open to all",
	"all branches",
	"any branch",
	"everyone who",
	"those who applied",
	"those who registered",
	"all who opted",
}

// defaultBranchAliases maps common free-text branch spellings to canonical
// branch names. "All" is the blanket-allowance canonical value.
var defaultBranchAliases = map[string]string{
	"cse":                              "Computer Science Engineering",
	"computer science":                 "Computer Science Engineering",
	"cs":                               "Computer Science Engineering",
	"btech cse":                        "Computer Science Engineering",
	"b.tech cse":                       "Computer Science Engineering",
	"computer science and engineering": "Computer Science Engineering",
	"computer science & engineering":   "Computer Science Engineering",
	"it":                               "Information Technology",
	"information technology":           "Information Technology",
	"ece":                              "Electronics and Communication Engineering",
	"electronics and communication":    "Electronics and Communication Engineering",
	"eee":                              "Electrical and Electronics Engineering",
	"electrical":                       "Electrical and Electronics Engineering",
	"mech":                             "Mechanical Engineering",
	"mechanical":                       "Mechanical Engineering",
	"civil":                            "Civil Engineering",
	"biomedical":                       "Biomedical Engineering",
	"bio":                              "Biomedical Engineering",
	"aids":                             "Artificial Intelligence and Data Science",
	"aiml":                             "Artificial Intelligence and Machine Learning",
	"all branches":                     "All",
	"all":                              "All",
	"any branch":                       "All",
	"open to all":                      "All",
}
