package chunk

// Document represents a corpus file prior to chunking.
type Document struct {
	// Name is the file name relative to the corpus directory.
	Name string
	Text string
}

// Settings configures chunking behavior.
type Settings struct {
	Strategy string
	Size     int
	Overlap  int
}

// Chunk is an immutable unit of retrievable text.
type Chunk struct {
	ID      string
	Content string
	Source  string
}
