package extract

// Block is one fragment of recognized text in reading order, as returned by
// the document analysis service. A block may carry no text at all (layout
// markers, table geometry); such blocks still occupy a position in the
// sequence, and positions matter.
type Block struct {
	Text string
}
