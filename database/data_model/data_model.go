package data_model

// PostType is the `PostTypeId` of a row in the Stack Overflow Posts dump.
type PostType int

const (
	PostTypeQuestion PostType = 1
	PostTypeAnswer   PostType = 2
)

// String returns lower case name of post type.
func (t PostType) String() string {
	switch t {
	case PostTypeQuestion:
		return "question"
	case PostTypeAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// IsValid reports whether t is a post type stored by this tool.
func (t PostType) IsValid() bool {
	return t == PostTypeQuestion || t == PostTypeAnswer
}

// Document is a sanitized piece of text stored in database, either a post or
// a comment.
type Document interface {
	GetID() int64
	GetText() string
}
