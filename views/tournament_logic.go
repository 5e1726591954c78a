package views

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/service"
)

type RoundColumn struct {
	Number  int
	Label   string
	Matches []service.MatchView
}

type BracketData struct {
	Columns []RoundColumn
	// Champion is set once a knockout final has a winner.
	Champion string
}

func PrepareBracketData(o service.Overview) BracketData {
	var data BracketData
	total := len(o.Rounds)

	for i, matches := range o.Rounds {
		if len(matches) == 0 {
			continue
		}
		sorted := slices.Clone(matches)
		slices.SortFunc(sorted, func(a, b service.MatchView) int {
			return cmp.Compare(a.ID, b.ID)
		})

		label := roundLabel(i+1, total)
		if o.Tournament.Format == bracket.League {
			label = "Fixtures"
		}
		data.Columns = append(data.Columns, RoundColumn{Number: i + 1, Label: label, Matches: sorted})
	}

	if o.Tournament.Format == bracket.Knockout && len(data.Columns) > 0 {
		last := data.Columns[len(data.Columns)-1]
		if len(last.Matches) == 1 {
			final := last.Matches[0]
			if final.IsCompleted() && final.WinnerID != nil {
				data.Champion = final.Team1Name
				if *final.WinnerID != *final.Team1ID {
					data.Champion = final.Team2Name
				}
			}
		}
	}
	return data
}

func roundLabel(round, total int) string {
	switch total - round {
	case 0:
		return "Final"
	case 1:
		return "Semi-finals"
	case 2:
		return "Quarter-finals"
	}
	return fmt.Sprintf("Round %d", round)
}
