package domain

import "time"

// QuestionEntry is one seed question in the question bank. Weight biases the
// random draw; weights are relative and need not sum to 1.
type QuestionEntry struct {
	CreatedAt time.Time `json:"created_at"`
	Language  Language  `json:"lang"`
	Weight    float64   `json:"weight"`
	Question  string    `json:"question"`
}
