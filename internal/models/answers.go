// Gamecurator - AI-Assisted Steam Game Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gamecurator

package models

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Playstyle describes how intensely the user plays.
type Playstyle string

// Playstyle values accepted by the quiz.
const (
	PlaystyleCasual   Playstyle = "casual"
	PlaystyleBalanced Playstyle = "balanced"
	PlaystyleHardcore Playstyle = "hardcore"
)

// TimeAvailability describes how much time the user has per session.
type TimeAvailability string

// TimeAvailability values accepted by the quiz.
const (
	TimeShort  TimeAvailability = "short"
	TimeMedium TimeAvailability = "medium"
	TimeLong   TimeAvailability = "long"
)

// Difficulty describes the preferred challenge level.
type Difficulty string

// Difficulty values accepted by the quiz.
const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyNormal      Difficulty = "normal"
	DifficultyChallenging Difficulty = "challenging"
)

// QuizAnswers is the user-supplied preference tuple collected by the quiz.
// It is immutable once submitted; genre order is irrelevant.
type QuizAnswers struct {
	PreferredGenres      []string         `json:"preferredGenres" koanf:"preferred_genres" validate:"required,min=1,dive,min=1"`
	Playstyle            Playstyle        `json:"playstyle" validate:"required,oneof=casual balanced hardcore"`
	TimeAvailability     TimeAvailability `json:"timeAvailability" validate:"required,oneof=short medium long"`
	SpecificKeywords     string           `json:"specificKeywords"`
	DifficultyPreference Difficulty       `json:"difficultyPreference" validate:"required,oneof=easy normal challenging"`
}

// Normalized returns a canonical copy of the answers: genres sorted
// lexicographically, keywords trimmed and lowercased, enums verbatim.
// Two semantically identical submissions normalize to equal values.
func (a QuizAnswers) Normalized() QuizAnswers {
	genres := make([]string, len(a.PreferredGenres))
	copy(genres, a.PreferredGenres)
	sort.Strings(genres)

	return QuizAnswers{
		PreferredGenres:      genres,
		Playstyle:            a.Playstyle,
		TimeAvailability:     a.TimeAvailability,
		SpecificKeywords:     strings.ToLower(strings.TrimSpace(a.SpecificKeywords)),
		DifficultyPreference: a.DifficultyPreference,
	}
}

// AnswersHash computes the deterministic cache/dedup key for a set of quiz
// answers: base64 of the canonical JSON serialization of the normalized
// answers. This is a dedup key, not a security boundary, so no cryptographic
// digest is involved.
func AnswersHash(a QuizAnswers) (string, error) {
	data, err := json.Marshal(a.Normalized())
	if err != nil {
		return "", fmt.Errorf("marshal normalized answers: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
