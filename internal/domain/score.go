package domain

import "time"

// Interaction is the kind of engagement that moves a post's weekly score.
type Interaction string

const (
	InteractionReaction Interaction = "reaction"
	InteractionComment  Interaction = "comment"
	InteractionShare    Interaction = "share"
	InteractionSave     Interaction = "save"
)

// interactionPoints is the per-interaction weight applied to the
// weekly aggregate.
var interactionPoints = map[Interaction]int{
	InteractionReaction: 1,
	InteractionComment:  2,
	InteractionShare:    3,
	InteractionSave:     2,
}

func (i Interaction) IsValid() bool {
	_, ok := interactionPoints[i]
	return ok
}

// Points returns the signed delta for the interaction: positive when the
// interaction was added, negative when it was withdrawn.
func (i Interaction) Points(isAdd bool) int {
	p := interactionPoints[i]
	if !isAdd {
		return -p
	}
	return p
}

// ScoreJob is the payload enqueued on the score queue.
type ScoreJob struct {
	PostID      string      `json:"postId"`
	Interaction Interaction `json:"interactionType"`
	IsAdd       bool        `json:"isAdd"`
}

func (j *ScoreJob) Validate() error {
	if j.PostID == "" {
		return ErrInvalidPostID
	}
	if !j.Interaction.IsValid() {
		return ErrInvalidInteraction
	}
	return nil
}

// WeekWindow returns the UTC week boundaries containing t, Sunday
// 00:00:00 through the following Saturday 23:59:59.999999999.
// Boundaries are computed at job-processing time, so a job straddling a
// week rollover is attributed to the week it is processed in.
func WeekWindow(t time.Time) (start, end time.Time) {
	t = t.UTC()
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	start = start.AddDate(0, 0, -int(t.Weekday()))
	end = start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return start, end
}
