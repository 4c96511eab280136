package bookmark

import "time"

// bookmarkDTO is the stored JSON shape of one bookmark.
type bookmarkDTO struct {
	DocumentID  string `json:"documentId"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	URL         string `json:"url"`
	Note        string `json:"note"`
	SavedAt     string `json:"savedAt"`
}

func fromBookmark(b Bookmark) bookmarkDTO {
	return bookmarkDTO{
		DocumentID:  b.DocumentID,
		Title:       b.Title,
		Institution: b.Institution,
		URL:         b.URL,
		Note:        b.Note,
		SavedAt:     b.SavedAt.UTC().Format(time.RFC3339),
	}
}

func (d bookmarkDTO) toBookmark() Bookmark {
	savedAt, _ := time.Parse(time.RFC3339, d.SavedAt)
	return Bookmark{
		DocumentID:  d.DocumentID,
		Title:       d.Title,
		Institution: d.Institution,
		URL:         d.URL,
		Note:        d.Note,
		SavedAt:     savedAt,
	}
}
