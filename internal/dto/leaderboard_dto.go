package dto

import "github.com/noah-isme/sqlgrader-api/internal/ranking"

// LeaderboardEntryResponse is one ranked student on the leaderboard.
type LeaderboardEntryResponse struct {
	StudentID    uint    `json:"student_id"`
	StudentName  string  `json:"student_name"`
	AverageScore float64 `json:"average_score"`
	Rank         int     `json:"rank"`
}

// LeaderboardResponse carries the full standings plus the top slice and the
// caller's own entry when they have submissions.
type LeaderboardResponse struct {
	Standings []LeaderboardEntryResponse `json:"standings"`
	Top       []LeaderboardEntryResponse `json:"top"`
	Me        *LeaderboardEntryResponse  `json:"me"`
}

// NewLeaderboardEntryResponse converts a ranking entry into a DTO.
func NewLeaderboardEntryResponse(entry ranking.Entry) LeaderboardEntryResponse {
	return LeaderboardEntryResponse{
		StudentID:    entry.StudentID,
		StudentName:  entry.StudentName,
		AverageScore: entry.AverageScore,
		Rank:         entry.Rank,
	}
}

// NewLeaderboardEntrySlice converts standings into DTOs.
func NewLeaderboardEntrySlice(entries ranking.Standings) []LeaderboardEntryResponse {
	responses := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, NewLeaderboardEntryResponse(entry))
	}

	return responses
}
