package models

// FileStats is the rank distribution of one question file as stored in its sidecar.
type FileStats struct {
	FileID         string  `json:"file_id"`
	Name           string  `json:"name"`
	TotalQuestions int     `json:"total_questions"`
	RankCounts     [5]int  `json:"rank_counts"` // index 0 holds rank 1
	AverageRank    float64 `json:"average_rank"`
	Mastered       int     `json:"mastered"`
	IsSelected     bool    `json:"is_selected"`
}

func (s *FileStats) Add(rank int) {
	if rank < 1 || rank > len(s.RankCounts) {
		return
	}
	s.RankCounts[rank-1]++
}

// Finalize derives AverageRank and Mastered from RankCounts.
func (s *FileStats) Finalize() {
	var total, sum int
	for i, n := range s.RankCounts {
		total += n
		sum += (i + 1) * n
	}
	s.Mastered = s.RankCounts[len(s.RankCounts)-1]
	if total > 0 {
		s.AverageRank = float64(sum) / float64(total)
	}
}
