package review

// File is one changed file captured in a snapshot.
type File struct {
	Path      string
	IsBinary  bool
	Patch     string
	Additions int
	Deletions int
}

// Snapshot is an immutable view of a pull request taken at review time. It is
// built fresh per review and discarded once the review completes.
type Snapshot struct {
	Owner  string
	Repo   string
	Number int
	Title  string
	Body   string
	Files  []File
}
