package services

import (
	"fmt"
	"strings"

	"github.com/Tn-Hub-777/rematcher/models"
	"github.com/Tn-Hub-777/rematcher/utils"
)

// BuyerMatches groups one buyer's ranked matches.
type BuyerMatches struct {
	BuyerID   string
	BuyerName string
	Matches   []models.Match
}

// MatchReport summarizes one matcher run for display.
type MatchReport struct {
	TotalMatches int
	Buyers       []BuyerMatches
	BestScore    int
}

// ReportService builds and prints per-buyer match summaries.
type ReportService struct {
	logger *utils.Logger
}

// NewReportService creates a ReportService with the given logger.
func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate groups ranked matches per buyer, preserving the matcher's
// buyer order.
func (s *ReportService) Generate(matches []models.Match) *MatchReport {
	report := &MatchReport{TotalMatches: len(matches)}

	index := make(map[string]int)
	for _, m := range matches {
		i, ok := index[m.BuyerID]
		if !ok {
			i = len(report.Buyers)
			index[m.BuyerID] = i
			report.Buyers = append(report.Buyers, BuyerMatches{
				BuyerID:   m.BuyerID,
				BuyerName: m.BuyerName,
			})
		}
		report.Buyers[i].Matches = append(report.Buyers[i].Matches, m)
		if m.Score > report.BestScore {
			report.BestScore = m.Score
		}
	}

	return report
}

// Print renders the report to stdout.
func (s *ReportService) Print(r *MatchReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  BUYER / LISTING MATCH REPORT\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("  Total matches : \033[1m%d\033[0m\n", r.TotalMatches)
	fmt.Printf("  Buyers matched: \033[1m%d\033[0m\n", len(r.Buyers))
	if r.TotalMatches > 0 {
		fmt.Printf("  Best score    : \033[1;32m%d\033[0m\n", r.BestScore)
	}
	fmt.Println()

	for _, b := range r.Buyers {
		name := b.BuyerName
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("\033[1;33m  %s\033[0m — %s (%d matches)\n", name, b.BuyerID, len(b.Matches))
		fmt.Printf("  %s\n", thin)
		for _, m := range b.Matches {
			title := m.ListingTitle
			if title == "" {
				title = m.ListingID
			}
			fmt.Printf("  %-40s ₹%-12.0f \033[1;32m%3d\033[0m\n",
				truncate(title, 38), m.ListingPrice, m.Score)
			if m.ListingLocation != "" {
				fmt.Printf("    %s\n", m.ListingLocation)
			}
		}
		fmt.Println()
	}

	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
