package entities

// IssueKind classifies a validate/fix finding, grouped in console and JSON
// output as specified by the validate command contract.
type IssueKind string

const (
	IssueMissingFrontmatter IssueKind = "missing_frontmatter"
	IssueMissingField       IssueKind = "missing_field"
	IssueInvalidEnum        IssueKind = "invalid_enum"
	IssueInvalidType        IssueKind = "invalid_type"
	IssueFolderMismatch     IssueKind = "folder_mismatch"
)

// Issue is a single validate/fix finding for one file.
type Issue struct {
	Kind    IssueKind
	Path    string
	Field   string // populated for missing_field / invalid_enum / invalid_type
	Message string
}
