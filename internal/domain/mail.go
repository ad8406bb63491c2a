package domain

// MailJob is the payload enqueued on the mail queue.
type MailJob struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (j *MailJob) Validate() error {
	if j.To == "" {
		return ErrInvalidRecipient
	}
	if j.Subject == "" {
		return ErrInvalidMailSubject
	}
	return nil
}
