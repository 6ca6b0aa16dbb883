package saved

import (
	"github.com/RegaWeng/riseUp/pkg/catalog"
	"github.com/RegaWeng/riseUp/pkg/nlp"
)

// Achievement is a milestone derived from training and application activity.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// Progress summarizes a role-context: skills gained from completed training
// and earned achievements.
type Progress struct {
	CompletedCount int           `json:"completedCount"`
	AppliedCount   int           `json:"appliedCount"`
	Skills         []string      `json:"skills"`
	Achievements   []Achievement `json:"achievements"`
}

const (
	fastLearnerVideos    = 5
	skillBuilderSkills   = 10
	activeApplicantCount = 5
)

// BuildProgress computes progress from completed video ids and the number of
// applied jobs. Skills keep catalog order and are deduplicated after
// normalization.
//
// CompletedCount, First Steps and Fast Learner count every completed id,
// including ids missing from the catalog. Skills, Skill Builder and
// Dedicated Learner only see ids that resolve against the catalog, so a
// stale id can raise the count without earning Dedicated Learner.
func BuildProgress(cat *catalog.Catalog, completedIDs []string, appliedCount int) Progress {
	videos := cat.Resolve(completedIDs)

	skills := make([]string, 0)
	seen := make(map[string]struct{})
	for _, v := range videos {
		for _, skill := range v.SkillsGained {
			key := nlp.NormalizeSkill(skill)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			skills = append(skills, nlp.Capitalize(skill))
		}
	}

	completed := len(completedIDs)
	return Progress{
		CompletedCount: completed,
		AppliedCount:   appliedCount,
		Skills:         skills,
		Achievements: []Achievement{
			{ID: "1", Title: "First Steps", Description: "Completed your first training video", Earned: completed >= 1},
			{ID: "2", Title: "Job Seeker", Description: "Applied to your first job", Earned: appliedCount >= 1},
			{ID: "3", Title: "Fast Learner", Description: "Completed 5+ training videos", Earned: completed >= fastLearnerVideos},
			{ID: "4", Title: "Skill Builder", Description: "Gained 10+ new skills", Earned: len(skills) >= skillBuilderSkills},
			{ID: "5", Title: "Dedicated Learner", Description: "Complete all training videos", Earned: cat.Len() > 0 && len(videos) == cat.Len()},
			{ID: "6", Title: "Active Applicant", Description: "Applied to 5+ jobs", Earned: appliedCount >= activeApplicantCount},
		},
	}
}
