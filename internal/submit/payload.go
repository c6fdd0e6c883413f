package submit

import (
	"strconv"
	"strings"

	"github.com/buildlink/onboarding-api/internal/models"
)

// BuildProfilePayload assembles the profile-service payload from the
// Personal section plus the preference fields that live on the account
// record. Normalization rules:
//   - absent or blank optional fields become an explicit null, never an
//     empty string
//   - array-valued fields are sent as JSON lists, empty lists as null
//   - experience ranges are reduced to their lower bound
func BuildProfilePayload(draft *models.Draft) map[string]any {
	p := &draft.Personal
	prefs := &draft.Preferences

	payload := map[string]any{
		"fullName":           nullable(p.FullName),
		"bio":                nullable(p.Bio),
		"role":               string(draft.Role),
		"onboardingComplete": true,
		"projectTypes":       nullableList(projectTypeStrings(prefs.ProjectTypes)),
		"preferredCities":    nullableList(prefs.PreferredCities),
		"budgetRange":        nullable(string(prefs.Budget)),
	}

	if draft.Role == models.RoleClient {
		payload["phone"] = nullable(p.Phone)
		payload["location"] = nullable(p.Location)
		payload["occupation"] = nullable(p.Occupation)
		payload["preferredContact"] = nullable(p.PreferredContact)
		return payload
	}

	payload["companyType"] = nullable(p.CompanyType)
	payload["yearsExperience"] = experienceLowerBound(p.YearsExperience)
	payload["citiesCovered"] = nullableList(p.CitiesCovered)
	payload["languages"] = nullableList(p.Languages)
	payload["workingStyle"] = nullable(string(prefs.WorkingStyle))
	payload["availability"] = nullable(string(prefs.Availability))
	payload["specializations"] = nullableList(prefs.Specializations)

	return payload
}

// BuildProjectPayload assembles the project-service payload for one
// portfolio project.
func BuildProjectPayload(userID int, project *models.Project) map[string]any {
	return map[string]any{
		"ownerId":     userID,
		"title":       strings.TrimSpace(project.Title),
		"type":        nullable(string(project.Type)),
		"location":    nullable(project.Location),
		"budgetRange": nullable(string(project.Budget)),
		"description": nullable(project.Description),
	}
}

// BuildPortfolioPayload assembles the optional developer portfolio record.
func BuildPortfolioPayload(userID int, draft *models.Draft) map[string]any {
	return map[string]any{
		"ownerId":      userID,
		"title":        nullable(draft.Personal.FullName),
		"projectCount": len(draft.Projects.Projects),
	}
}

// nullable maps a blank string to an explicit null marker.
func nullable(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

// nullableList maps an empty list to null; non-empty lists pass through as
// JSON arrays.
func nullableList(values []string) any {
	if len(values) == 0 {
		return nil
	}
	return values
}

func projectTypeStrings(types []models.ProjectType) []string {
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out
}

// experienceLowerBound reduces a range like "5-10" or "10+" to its lower
// bound. Unparsable values become null rather than a bad number.
func experienceLowerBound(rangeStr string) any {
	rangeStr = strings.TrimSpace(rangeStr)
	if rangeStr == "" {
		return nil
	}

	lower := rangeStr
	if idx := strings.IndexAny(rangeStr, "-+"); idx > 0 {
		lower = rangeStr[:idx]
	}

	n, err := strconv.Atoi(strings.TrimSpace(lower))
	if err != nil {
		return nil
	}
	return n
}
