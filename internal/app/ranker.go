package app

import (
	"fmt"
	"sort"
	"strings"

	"evaluation-console/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortField string

const (
	SortRank  SortField = "rank"
	SortName  SortField = "name"
	SortScore SortField = "score"
)

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortState is the ordering picked by the user on a results table.
type SortState struct {
	Field     SortField `json:"field"`
	Direction Direction `json:"direction"`
}

func DefaultSort() SortState {
	return SortState{Field: SortRank, Direction: Ascending}
}

// Toggle flips the direction when field is already active, otherwise it
// switches to field in ascending order.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Direction == Ascending {
			return SortState{Field: field, Direction: Descending}
		}
		return SortState{Field: field, Direction: Ascending}
	}
	return SortState{Field: field, Direction: Ascending}
}

// ParseSortState reads query values; empty values take the defaults.
func ParseSortState(field, direction string) (SortState, error) {
	s := DefaultSort()
	switch SortField(field) {
	case "":
	case SortRank, SortName, SortScore:
		s.Field = SortField(field)
	default:
		return s, fmt.Errorf("unknown sort field %q", field)
	}
	switch Direction(direction) {
	case "":
	case Ascending, Descending:
		s.Direction = Direction(direction)
	default:
		return s, fmt.Errorf("unknown sort direction %q", direction)
	}
	return s, nil
}

// Ranker orders and filters result records for display.
type Ranker struct {
	tag language.Tag
}

func NewRanker(tag language.Tag) *Ranker {
	return &Ranker{tag: tag}
}

// Apply returns the records matching filter, ordered by sort. The input is
// never modified. Ties fall back to rank then student id so that a descending
// pass is the exact reverse of the ascending one.
func (r *Ranker) Apply(records []domain.ResultRecord, filter string, sortState SortState) []domain.ResultRecord {
	// collators and casers keep internal buffers; one per call.
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter))

	out := make([]domain.ResultRecord, 0, len(records))
	for _, rec := range records {
		if needle == "" ||
			strings.Contains(fold.String(rec.DisplayName), needle) ||
			strings.Contains(fold.String(rec.StudentID), needle) {
			out = append(out, rec)
		}
	}

	coll := collate.New(r.tag, collate.IgnoreCase)
	compare := func(a, b domain.ResultRecord) int {
		c := 0
		switch sortState.Field {
		case SortName:
			c = coll.CompareString(a.DisplayName, b.DisplayName)
		case SortScore:
			c = compareFloat(a.ScorePercent, b.ScorePercent)
		}
		if c == 0 {
			c = compareInt(a.Rank, b.Rank)
		}
		if c == 0 {
			c = strings.Compare(a.StudentID, b.StudentID)
		}
		if sortState.Direction == Descending {
			return -c
		}
		return c
	}
	sort.SliceStable(out, func(i, j int) bool {
		return compare(out[i], out[j]) < 0
	})
	return out
}

// Rows attaches the color band of every record.
func (r *Ranker) Rows(records []domain.ResultRecord) []domain.ResultRow {
	rows := make([]domain.ResultRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, domain.ResultRow{ResultRecord: rec, Band: ColorBand(rec.ScorePercent)})
	}
	return rows
}

// ColorBand maps a score percentage to its severity band. Lower bounds are
// inclusive.
func ColorBand(scorePercent float64) domain.Band {
	switch {
	case scorePercent >= 80:
		return domain.BandSuccess
	case scorePercent >= 60:
		return domain.BandWarning
	case scorePercent >= 40:
		return domain.BandPrimary
	default:
		return domain.BandDanger
	}
}

// PassMark is the score from which a participant counts as passed.
const PassMark = 50.0

// Summarize aggregates the records of a snapshot.
func Summarize(records []domain.ResultRecord) domain.ResultSummary {
	sum := domain.ResultSummary{Participants: len(records)}
	if len(records) == 0 {
		return sum
	}
	total := 0.0
	for i, rec := range records {
		total += rec.ScorePercent
		if rec.ScorePercent >= PassMark {
			sum.Passed++
		}
		if i == 0 || rec.ScorePercent > sum.Best {
			sum.Best = rec.ScorePercent
		}
	}
	sum.Average = total / float64(len(records))
	return sum
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
