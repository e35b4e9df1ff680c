package ingest

// CandidateFile is a file selected for ingestion.
type CandidateFile struct {
	// Path is the absolute path inside the working copy.
	Path string

	// RelPath is the slash-separated path relative to the working copy
	// root. Working copies live in uniquely named temp directories, so
	// RelPath is the stable identity of a file across runs.
	RelPath string

	// Ext is the lowercased filename extension, including the leading
	// dot. Empty for extensionless convention files.
	Ext string
}

// Document is a loaded source file with provenance metadata.
type Document struct {
	// Content is the file's text, decoded permissively. Never empty or
	// all-whitespace.
	Content string

	// Source is the file's slash-separated path relative to the working
	// copy root, stable across runs.
	Source string

	// Filename is the display name (base name) of the file.
	Filename string

	// Ext is the lowercased extension, including the leading dot.
	Ext string
}

// Stats summarizes a candidate set by language extension.
type Stats struct {
	// TotalFiles is the number of selected files.
	TotalFiles int

	// Languages maps an extension (or convention filename, or "Other")
	// to its percentage share of the candidate set.
	Languages map[string]float64
}
