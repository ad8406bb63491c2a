package domain

// PostVisibility controls who a post's realtime comment events reach.
type PostVisibility string

const (
	VisibilityPublic  PostVisibility = "PUBLIC"
	VisibilityFriends PostVisibility = "FRIENDS"
	VisibilityGroup   PostVisibility = "GROUP"
)

func (v PostVisibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityFriends, VisibilityGroup:
		return true
	}
	return false
}

// CommentJob is the payload enqueued on the comment fan-out queue.
// Code distinguishes created/updated/deleted comment events; Comment is
// the opaque payload shipped to clients unchanged.
type CommentJob struct {
	Code       int            `json:"code"`
	AuthorID   string         `json:"authorId"`
	PostID     string         `json:"postId"`
	Visibility PostVisibility `json:"visibility"`
	GroupID    string         `json:"groupId,omitempty"`
	Comment    any            `json:"comment"`
}

func (j *CommentJob) Validate() error {
	if j.AuthorID == "" || j.PostID == "" {
		return ErrInvalidCommentJob
	}
	if !j.Visibility.IsValid() {
		return ErrInvalidVisibility
	}
	if j.Visibility == VisibilityGroup && j.GroupID == "" {
		return ErrInvalidCommentJob
	}
	return nil
}
