package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/quizhub/quizctl/internal/api"
	"github.com/quizhub/quizctl/internal/model"
	"github.com/quizhub/quizctl/internal/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.User:
		o.printUser(v)
	case session.Result:
		o.printAuthResult(v)
	case *api.UserList:
		o.printUserList(v)
	case *model.UserStats:
		o.printUserStats(v)
	case []model.Quiz:
		o.printQuizzes(v)
	case *model.Quiz:
		o.printQuiz(v)
	case *model.QuizResult:
		o.printQuizResult(v)
	case []model.QuizResult:
		for i := range v {
			o.printQuizResult(&v[i])
		}
	case []model.LeaderboardEntry:
		o.printLeaderboard(v)
	case *model.QuizStatistics:
		o.printQuizStatistics(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printUser(u *model.User) {
	fmt.Printf("ID:    %d\n", u.ID)
	fmt.Printf("Name:  %s\n", u.DisplayName())
	fmt.Printf("Email: %s\n", u.Email)
	fmt.Printf("Role:  %s\n", u.Role)
	if u.Country != "" {
		fmt.Printf("Country: %s\n", u.Country)
	}
	if u.IsBlocked {
		if u.BlockedUntil != nil {
			fmt.Printf("Blocked until: %s\n", u.BlockedUntil.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Blocked: yes")
		}
	}
}

func (o *Output) printAuthResult(r session.Result) {
	if r.Success {
		fmt.Printf("Logged in as %s (%s)\n", r.User.DisplayName(), r.User.Role)
		return
	}
	if r.Blocked {
		fmt.Printf("Account blocked until %s (%d seconds remaining)\n", r.BlockedUntil, r.RemainingSeconds)
		return
	}
	if r.AttemptsLeft != nil {
		fmt.Printf("%s (%d attempts remaining)\n", r.Error, *r.AttemptsLeft)
		return
	}
	fmt.Println(r.Error)
}

func (o *Output) printUserList(list *api.UserList) {
	fmt.Printf("%-6s %-30s %-28s %-14s %s\n", "ID", "NAME", "EMAIL", "ROLE", "BLOCKED")
	for i := range list.Users {
		u := &list.Users[i]
		blocked := ""
		if u.IsBlocked {
			blocked = "yes"
		}
		fmt.Printf("%-6d %-30s %-28s %-14s %s\n", u.ID, u.DisplayName(), u.Email, u.Role, blocked)
	}
	fmt.Printf("Total: %d (page %d)\n", list.Total, list.Page)
}

func (o *Output) printUserStats(s *model.UserStats) {
	fmt.Printf("Total users:    %d\n", s.TotalUsers)
	fmt.Printf("Players:        %d\n", s.Players)
	fmt.Printf("Moderators:     %d\n", s.Moderators)
	fmt.Printf("Administrators: %d\n", s.Administrators)
	fmt.Printf("Blocked:        %d\n", s.BlockedUsers)
	fmt.Printf("New this month: %d\n", s.NewThisMonth)
}

func (o *Output) printQuizzes(quizzes []model.Quiz) {
	fmt.Printf("%-6s %-36s %-14s %-10s %s\n", "ID", "TITLE", "CATEGORY", "STATUS", "AUTHOR")
	for i := range quizzes {
		q := &quizzes[i]
		fmt.Printf("%-6d %-36s %-14s %-10s %s\n", q.ID, truncate(q.Title, 36), q.Category, q.Status, q.AuthorName)
	}
}

func (o *Output) printQuiz(q *model.Quiz) {
	fmt.Printf("ID:       %d\n", q.ID)
	fmt.Printf("Title:    %s\n", q.Title)
	if q.Description != "" {
		fmt.Printf("About:    %s\n", q.Description)
	}
	fmt.Printf("Status:   %s\n", q.Status)
	if q.RejectionReason != "" {
		fmt.Printf("Rejected: %s\n", q.RejectionReason)
	}
	for i, question := range q.Questions {
		fmt.Printf("\n%d. %s\n", i+1, question.Text)
		for j, opt := range question.Options {
			fmt.Printf("   %c) %s\n", 'a'+j, opt)
		}
	}
}

func (o *Output) printQuizResult(r *model.QuizResult) {
	title := r.QuizTitle
	if title == "" {
		title = fmt.Sprintf("quiz %d", r.QuizID)
	}
	fmt.Printf("%s: %d/%d (%.1f%%)\n", title, r.Score, r.MaxScore, r.Percentage)
}

func (o *Output) printLeaderboard(entries []model.LeaderboardEntry) {
	fmt.Printf("%-6s %-30s %s\n", "RANK", "PLAYER", "SCORE")
	for _, e := range entries {
		fmt.Printf("%-6d %-30s %d\n", e.Rank, e.UserName, e.Score)
	}
}

func (o *Output) printQuizStatistics(s *model.QuizStatistics) {
	fmt.Printf("Attempts:      %d\n", s.Attempts)
	fmt.Printf("Average score: %.1f\n", s.AverageScore)
	fmt.Printf("Best score:    %d\n", s.BestScore)
	fmt.Printf("Worst score:   %d\n", s.WorstScore)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimSpace(s[:max-3]) + "..."
}
