package history

import (
	"time"

	"github.com/kararbul/kararbul/internal/usecase/search"
)

// entryDTO is the stored JSON shape of one history entry.
type entryDTO struct {
	Query        string   `json:"query"`
	Institutions []string `json:"institutions"`
	ResultCount  int      `json:"resultCount"`
	ElapsedMS    int64    `json:"elapsedMs"`
	At           string   `json:"at"`
}

func fromEntry(e search.HistoryEntry) entryDTO {
	return entryDTO{
		Query:        e.Query,
		Institutions: e.Institutions,
		ResultCount:  e.ResultCount,
		ElapsedMS:    e.ElapsedMS,
		At:           e.At.UTC().Format(time.RFC3339),
	}
}

func (d entryDTO) toEntry() search.HistoryEntry {
	at, _ := time.Parse(time.RFC3339, d.At)
	return search.HistoryEntry{
		Query:        d.Query,
		Institutions: d.Institutions,
		ResultCount:  d.ResultCount,
		ElapsedMS:    d.ElapsedMS,
		At:           at,
	}
}
