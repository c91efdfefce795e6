package form

// Schemas for the application's screens. Field names match the JSON payloads
// the screens submit.

var (
	parentalEducationLevels = []string{"HighSchool", "Bachelors", "Masters", "PhD"}
	yesNo                   = []string{"Yes", "No"}
)

// LoginSchema covers the sign-in screen.
func LoginSchema() Schema {
	return Schema{
		{Name: "email", Rules: []Rule{Required("email is required"), Email()}},
		{Name: "password", Rules: []Rule{Required("password is required")}},
	}
}

// SignupSchema covers the registration screen. The password policy follows
// the server's: length, no whitespace, not all numeric, not similar to the
// user's own attributes.
func SignupSchema() Schema {
	return Schema{
		{Name: "name", Rules: []Rule{Required("name is required"), MinLen(2, "name must contain at least 2 characters")}},
		{Name: "email", Rules: []Rule{Required("email is required"), Email()}},
		{
			Name: "password",
			Rules: []Rule{
				Required("password is required"),
				MinLen(8, "password must contain at least 8 characters"),
				NoWhitespace(),
				NotAllDigits(),
				NotSimilarTo("name", "email"),
			},
		},
		{
			Name:      "confirmPassword",
			Rules:     []Rule{Required("password confirmation is required"), MatchesField("password", "passwords do not match")},
			DependsOn: []string{"password"},
		},
	}
}

// PredictionSchema covers the student prediction screen inputs.
func PredictionSchema() Schema {
	return Schema{
		{Name: "studyHoursPerWeek", Rules: []Rule{
			Number("study hours are required"),
			NumberBetween(0, 168, "study hours must be between 0 and 168 per week"),
		}},
		{Name: "attendanceRate", Rules: []Rule{
			Number("attendance rate is required"),
			NumberBetween(0, 100, "attendance rate must be between 0% and 100%"),
		}},
		{Name: "pastExamScores", Rules: []Rule{
			Number("past exam scores are required"),
			NumberBetween(0, 100, "scores must be between 0 and 100"),
		}},
		{Name: "parentalEducationLevel", Rules: []Rule{
			Required("parental education level is required"),
			OneOf(parentalEducationLevels),
		}},
		{Name: "internetAccessAtHome", Rules: []Rule{
			Required("internet access is required"),
			OneOf(yesNo, "please choose Yes or No"),
		}},
		{Name: "extracurricularActivities", Rules: []Rule{
			Required("extracurricular activities is required"),
			OneOf(yesNo, "please choose Yes or No"),
		}},
	}
}
