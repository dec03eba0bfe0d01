package fridge

import "FridgeMood/internal/entity"

type MoodResponse struct {
	Mood      string             `json:"mood"`
	Moods     []entity.MoodEntry `json:"moods"`
	FinalMood string             `json:"finalMood"`
	Filename  string             `json:"filename"`
}

type DetectorStatus struct {
	Backend string `json:"backend"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type HealthResponse struct {
	Message  string         `json:"message"`
	Detector DetectorStatus `json:"detector"`
}
