package saved

import (
	"context"
	"slices"

	"github.com/RegaWeng/riseUp/pkg/role"
)

// Kind tags a saved item.
type Kind string

const (
	KindJob   Kind = "job"
	KindVideo Kind = "video"
)

// Item is a bookmarked job or training video. Only SavedJob and SavedVideo
// implement it, so a type switch over the two is exhaustive.
type Item interface {
	ItemID() string
	Kind() Kind
	isItem()
}

// SavedJob is a job bookmarked from a listing.
type SavedJob struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	Salary    string   `json:"salary"`
	Skills    []string `json:"skills"`
	SavedDate string   `json:"savedDate"`
	Type      Kind     `json:"type"`
}

func (j SavedJob) ItemID() string { return j.ID }
func (SavedJob) Kind() Kind       { return KindJob }
func (SavedJob) isItem()          {}

func (j SavedJob) clone() SavedJob {
	j.Skills = slices.Clone(j.Skills)
	j.Type = KindJob
	return j
}

// SavedVideo is a training video bookmarked from the catalog.
type SavedVideo struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	SkillsGained []string `json:"skillsGained"`
	SavedDate    string   `json:"savedDate"`
	Type         Kind     `json:"type"`
}

func (v SavedVideo) ItemID() string { return v.ID }
func (SavedVideo) Kind() Kind       { return KindVideo }
func (SavedVideo) isItem()          {}

func (v SavedVideo) clone() SavedVideo {
	v.SkillsGained = slices.Clone(v.SkillsGained)
	v.Type = KindVideo
	return v
}

// Snapshot is a copy of the four collections of one role-context.
type Snapshot struct {
	Role            role.Role    `json:"role"`
	SavedJobs       []SavedJob   `json:"savedJobs"`
	SavedVideos     []SavedVideo `json:"savedVideos"`
	CompletedVideos []string     `json:"completedVideos"`
	AppliedJobs     []string     `json:"appliedJobs"`
}

// Persister is the persistence adapter the state writes through.
// *kv.Store implements it.
type Persister interface {
	Store(ctx context.Context, key string, value any)
	Load(ctx context.Context, key string, dst any) bool
	Remove(ctx context.Context, key string)
}
