package mongo

import "github.com/reelworthy/cinedex/core"

// document is the BSON wire shape of an IndexedDocument. The deterministic
// identifier is the _id, so the collection's primary index enforces
// idempotent inserts without a separate unique index.
type document struct {
	ID          string    `bson:"_id"`
	Vector      []float32 `bson:"vector"`
	Text        string    `bson:"text"`
	Title       string    `bson:"title"`
	Rating      float64   `bson:"rating"`
	ReleaseDate string    `bson:"release_date"`
	Year        int       `bson:"year"`
	Providers   []string  `bson:"providers,omitempty"`
	SourceURL   string    `bson:"source_url,omitempty"`
	ChunkIndex  int       `bson:"chunk_index"`
	Score       float64   `bson:"score,omitempty"`
}

func fromCore(doc *core.IndexedDocument) document {
	return document{
		ID:          doc.ID,
		Vector:      doc.Vector,
		Text:        doc.Text,
		Title:       doc.Title,
		Rating:      doc.Rating,
		ReleaseDate: doc.ReleaseDate,
		Year:        doc.Year,
		Providers:   doc.Providers,
		SourceURL:   doc.SourceURL,
		ChunkIndex:  doc.ChunkIndex,
	}
}

func (d *document) toCore() *core.IndexedDocument {
	return &core.IndexedDocument{
		ID:          d.ID,
		Vector:      d.Vector,
		Text:        d.Text,
		Title:       d.Title,
		Rating:      d.Rating,
		ReleaseDate: d.ReleaseDate,
		Year:        d.Year,
		Providers:   d.Providers,
		SourceURL:   d.SourceURL,
		ChunkIndex:  d.ChunkIndex,
	}
}
