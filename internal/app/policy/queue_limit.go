package policy

// QueueLimit rejects additions once the queue holds MaxLength tracks.
type QueueLimit struct {
	maxLength int
}

// NewQueueLimit creates the queue-length policy. A non-positive limit
// disables it.
func NewQueueLimit(maxLength int) *QueueLimit {
	return &QueueLimit{maxLength: maxLength}
}

// Name returns the policy name.
func (p *QueueLimit) Name() string {
	return "queue_limit"
}

// Check rejects when the queue is already at capacity.
func (p *QueueLimit) Check(_ Entry, queue []Entry) Result {
	if p.maxLength > 0 && len(queue) >= p.maxLength {
		return Reject("queue_full")
	}
	return Accept()
}
