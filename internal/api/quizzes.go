package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quizhub/quizctl/internal/model"
)

// QuizList wraps the quiz listing response
type QuizList struct {
	Quizzes []model.Quiz `json:"quizzes"`
	Total   int          `json:"total,omitempty"`
}

// ListQuizzes fetches quizzes, optionally filtered by moderation status
func (c *Client) ListQuizzes(ctx context.Context, status model.QuizStatus) ([]model.Quiz, error) {
	path := "/api/quizzes"
	if status != "" {
		q := url.Values{}
		q.Set("status", string(status))
		path += "?" + q.Encode()
	}

	var list QuizList
	if err := c.Get(ctx, path, &list); err != nil {
		return nil, err
	}
	return list.Quizzes, nil
}

// ListMyQuizzes fetches the authenticated user's own quizzes
func (c *Client) ListMyQuizzes(ctx context.Context) ([]model.Quiz, error) {
	var list QuizList
	if err := c.Get(ctx, "/api/quizzes/mine", &list); err != nil {
		return nil, err
	}
	return list.Quizzes, nil
}

// CreateQuiz submits a new quiz for moderation
func (c *Client) CreateQuiz(ctx context.Context, draft *model.QuizDraft) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := c.Post(ctx, "/api/quizzes", draft, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// UpdateQuiz edits an existing quiz; editing resets it to pending
func (c *Client) UpdateQuiz(ctx context.Context, id model.QuizID, draft *model.QuizDraft) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := c.Put(ctx, fmt.Sprintf("/api/quizzes/%d", id), draft, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// ApproveQuiz approves a pending quiz (moderators and administrators)
func (c *Client) ApproveQuiz(ctx context.Context, id model.QuizID) error {
	return c.Post(ctx, fmt.Sprintf("/api/quizzes/%d/approve", id), nil, nil)
}

// RejectQuiz rejects a pending quiz with a reason
func (c *Client) RejectQuiz(ctx context.Context, id model.QuizID, reason string) error {
	req := map[string]string{"reason": reason}
	return c.Post(ctx, fmt.Sprintf("/api/quizzes/%d/reject", id), req, nil)
}

// GetQuizForPlay fetches a quiz with the correct answers stripped
func (c *Client) GetQuizForPlay(ctx context.Context, id model.QuizID) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := c.Get(ctx, fmt.Sprintf("/api/quizzes/%d/play", id), &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// SubmitQuiz submits answers and returns the scored result
func (c *Client) SubmitQuiz(ctx context.Context, id model.QuizID, submission *model.QuizSubmission) (*model.QuizResult, error) {
	var result model.QuizResult
	if err := c.Post(ctx, fmt.Sprintf("/api/quizzes/%d/submit", id), submission, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetLeaderboard fetches the ranked results for a quiz
func (c *Client) GetLeaderboard(ctx context.Context, id model.QuizID) ([]model.LeaderboardEntry, error) {
	var resp struct {
		Leaderboard []model.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.Get(ctx, fmt.Sprintf("/api/quizzes/%d/leaderboard", id), &resp); err != nil {
		return nil, err
	}
	return resp.Leaderboard, nil
}

// GetMyResults fetches the authenticated user's past quiz results
func (c *Client) GetMyResults(ctx context.Context) ([]model.QuizResult, error) {
	var resp struct {
		Results []model.QuizResult `json:"results"`
	}
	if err := c.Get(ctx, "/api/users/my-results", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// GetQuizStatistics fetches per-quiz aggregates (quiz author and moderators)
func (c *Client) GetQuizStatistics(ctx context.Context, id model.QuizID) (*model.QuizStatistics, error) {
	var stats model.QuizStatistics
	if err := c.Get(ctx, fmt.Sprintf("/api/quizzes/%d/statistics", id), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health checks backend availability
func (c *Client) Health(ctx context.Context) error {
	return c.Get(ctx, "/api/health", nil)
}
