package entity

type MoodEntry struct {
	Name string `json:"name"`
	Mood string `json:"mood"`
}
