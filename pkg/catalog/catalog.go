// Package catalog holds the static training catalog shared by all accounts.
package catalog

import "slices"

// Video: обучающее видео из каталога. Неизменяемые справочные данные.
type Video struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	SkillsGained []string `json:"skillsGained"`
}

// Catalog is an ordered, read-only list of training videos.
type Catalog struct {
	videos []Video
	byID   map[string]int
}

// New builds a catalog preserving the given order. Later duplicates of an id
// are ignored.
func New(videos ...Video) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(videos))}
	for _, v := range videos {
		if _, ok := c.byID[v.ID]; ok {
			continue
		}
		v.SkillsGained = slices.Clone(v.SkillsGained)
		c.byID[v.ID] = len(c.videos)
		c.videos = append(c.videos, v)
	}
	return c
}

// Default returns the built-in catalog of eight videos.
func Default() *Catalog { return New(trainingVideos...) }

func (c *Catalog) Len() int { return len(c.videos) }

// Videos returns a copy of the catalog in catalog order.
func (c *Catalog) Videos() []Video {
	out := make([]Video, 0, len(c.videos))
	for _, v := range c.videos {
		out = append(out, v.clone())
	}
	return out
}

// Find looks a video up by id.
func (c *Catalog) Find(id string) (Video, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Video{}, false
	}
	return c.videos[i].clone(), true
}

// Resolve maps ids onto catalog entries. The result follows catalog order,
// not the order of ids; ids without a catalog entry are dropped.
func (c *Catalog) Resolve(ids []string) []Video {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]Video, 0, len(wanted))
	for _, v := range c.videos {
		if _, ok := wanted[v.ID]; ok {
			out = append(out, v.clone())
		}
	}
	return out
}

func (v Video) clone() Video {
	v.SkillsGained = slices.Clone(v.SkillsGained)
	return v
}

var trainingVideos = []Video{
	{
		ID:           "1",
		Title:        "Customer Service Basics",
		Category:     "Customer Service",
		Duration:     "8 min",
		Description:  "Learn how to handle customers professionally",
		SkillsGained: []string{"communication", "problem solving", "patience"},
	},
	{
		ID:           "2",
		Title:        "Cash Handling Safety",
		Category:     "Customer Service",
		Duration:     "5 min",
		Description:  "Proper cash register and money handling techniques",
		SkillsGained: []string{"cash handling", "accuracy", "security"},
	},
	{
		ID:           "3",
		Title:        "Safe Driving Tips",
		Category:     "Driving",
		Duration:     "12 min",
		Description:  "Essential safety tips for delivery drivers",
		SkillsGained: []string{"driving safety", "navigation", "time management"},
	},
	{
		ID:           "4",
		Title:        "Route Planning",
		Category:     "Driving",
		Duration:     "6 min",
		Description:  "How to plan efficient delivery routes",
		SkillsGained: []string{"navigation", "efficiency", "planning"},
	},
	{
		ID:           "5",
		Title:        "Cleaning Techniques",
		Category:     "Cleaning",
		Duration:     "10 min",
		Description:  "Professional cleaning methods and best practices",
		SkillsGained: []string{"attention to detail", "efficiency", "hygiene"},
	},
	{
		ID:           "6",
		Title:        "Safety Equipment",
		Category:     "Cleaning",
		Duration:     "7 min",
		Description:  "How to use cleaning equipment safely",
		SkillsGained: []string{"safety", "equipment handling", "protocols"},
	},
	{
		ID:           "7",
		Title:        "Food Safety Basics",
		Category:     "Food Service",
		Duration:     "9 min",
		Description:  "Essential food safety and hygiene practices",
		SkillsGained: []string{"food safety", "hygiene", "regulations"},
	},
	{
		ID:           "8",
		Title:        "Warehouse Organization",
		Category:     "Warehouse",
		Duration:     "11 min",
		Description:  "How to organize and manage warehouse inventory",
		SkillsGained: []string{"organization", "inventory", "efficiency"},
	},
}
