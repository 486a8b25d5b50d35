package model

import "time"

// QuizID uniquely identifies a quiz
type QuizID int64

// QuizStatus is the moderation state of a quiz
type QuizStatus string

const (
	QuizPending  QuizStatus = "PENDING"
	QuizApproved QuizStatus = "APPROVED"
	QuizRejected QuizStatus = "REJECTED"
)

// Quiz represents a quiz as returned by the backend
type Quiz struct {
	ID              QuizID     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Category        string     `json:"category,omitempty"`
	Difficulty      string     `json:"difficulty,omitempty"`
	Status          QuizStatus `json:"status"`
	AuthorID        UserID     `json:"author_id"`
	AuthorName      string     `json:"author_name,omitempty"`
	Questions       []Question `json:"questions,omitempty"`
	QuestionCount   int        `json:"question_count,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

// Question is a single quiz question with its answer options
type Question struct {
	ID      int64    `json:"id,omitempty"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	// Correct is the index into Options; omitted by the server when
	// the quiz is fetched for play
	Correct *int `json:"correct,omitempty"`
	Points  int  `json:"points,omitempty"`
}

// QuizDraft is the payload for creating or updating a quiz
type QuizDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Difficulty  string     `json:"difficulty,omitempty"`
	Questions   []Question `json:"questions"`
}

// QuizSubmission carries a player's answers, indexed by question order
type QuizSubmission struct {
	Answers []int `json:"answers"`
}

// QuizResult is the outcome of a submitted quiz attempt
type QuizResult struct {
	QuizID     QuizID    `json:"quiz_id"`
	QuizTitle  string    `json:"quiz_title,omitempty"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Percentage float64   `json:"percentage"`
	TakenAt    time.Time `json:"taken_at"`
}

// LeaderboardEntry is one ranked row of a quiz leaderboard
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    UserID    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Score     int       `json:"score"`
	TakenAt   time.Time `json:"taken_at"`
}

// QuizStatistics is the per-quiz aggregate for moderators
type QuizStatistics struct {
	QuizID       QuizID  `json:"quiz_id"`
	Attempts     int     `json:"attempts"`
	AverageScore float64 `json:"average_score"`
	BestScore    int     `json:"best_score"`
	WorstScore   int     `json:"worst_score"`
}
