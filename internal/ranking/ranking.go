// Package ranking aggregates submission rows into an ordered leaderboard.
package ranking

import "sort"

// Row is the flat projection of a submission the ranking works on.
type Row struct {
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	QuestionID  uint   `json:"question_id"`
	Score       int    `json:"score"`
}

// Entry is one leaderboard position.
type Entry struct {
	StudentID    uint    `json:"student_id"`
	StudentName  string  `json:"student_name"`
	AverageScore float64 `json:"average_score"`
	Rank         int     `json:"rank"`
}

// Standings is the full leaderboard, ordered best-first.
type Standings []Entry

// Compute builds standings from submission rows. The best score per
// (student, question) pair wins, so resubmitting never lowers a ranking.
// Each student's average is taken over the distinct questions they
// attempted; students with no submissions do not appear. Ordering is by
// average score descending with ties broken by ascending student ID, and
// ranks are 1-based positions with no tie compression.
func Compute(rows []Row) Standings {
	type pair struct {
		student  uint
		question uint
	}

	best := make(map[pair]int)
	names := make(map[uint]string)
	for _, row := range rows {
		key := pair{student: row.StudentID, question: row.QuestionID}
		if current, ok := best[key]; !ok || row.Score > current {
			best[key] = row.Score
		}
		names[row.StudentID] = row.StudentName
	}

	type accumulator struct {
		total     int
		questions int
	}

	totals := make(map[uint]*accumulator)
	for key, score := range best {
		acc, ok := totals[key.student]
		if !ok {
			acc = &accumulator{}
			totals[key.student] = acc
		}
		acc.total += score
		acc.questions++
	}

	standings := make(Standings, 0, len(totals))
	for studentID, acc := range totals {
		standings = append(standings, Entry{
			StudentID:    studentID,
			StudentName:  names[studentID],
			AverageScore: float64(acc.total) / float64(acc.questions),
		})
	}

	sort.Slice(standings, func(i, j int) bool {
		if standings[i].AverageScore != standings[j].AverageScore {
			return standings[i].AverageScore > standings[j].AverageScore
		}
		return standings[i].StudentID < standings[j].StudentID
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings
}

// Top returns the first k entries, or all of them when fewer exist.
func (s Standings) Top(k int) Standings {
	if k < 0 {
		k = 0
	}
	if k > len(s) {
		k = len(s)
	}
	return s[:k]
}

// For returns the entry belonging to the given student, if any.
func (s Standings) For(studentID uint) (Entry, bool) {
	for _, entry := range s {
		if entry.StudentID == studentID {
			return entry, true
		}
	}
	return Entry{}, false
}
