// Package policy provides the admission chain applied to queue
// additions.
package policy

// Entry is the minimal view of a track a policy needs.
type Entry struct {
	ID     string
	Title  string
	Artist string
}

// Result represents the outcome of a policy check.
type Result struct {
	Accepted bool
	Code     string // e.g., "duplicate_track", "queue_full"
}

// Accept returns an accepted result.
func Accept() Result {
	return Result{Accepted: true}
}

// Reject returns a rejected result with the given code.
func Reject(code string) Result {
	return Result{Accepted: false, Code: code}
}

// Policy checks whether a candidate track may join the queue.
type Policy interface {
	// Name returns the policy name (used in config and logs).
	Name() string
	// Check inspects the candidate against the current queue contents.
	Check(candidate Entry, queue []Entry) Result
}

// Chain executes policies in sequence.
type Chain struct {
	policies []Policy
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{policies: make([]Policy, 0)}
}

// Add appends a policy to the chain.
func (c *Chain) Add(p Policy) {
	c.policies = append(c.policies, p)
}

// Execute runs all policies in sequence, returning the first rejection.
func (c *Chain) Execute(candidate Entry, queue []Entry) Result {
	for _, p := range c.policies {
		if result := p.Check(candidate, queue); !result.Accepted {
			return result
		}
	}
	return Accept()
}

// Policies returns the chain contents.
func (c *Chain) Policies() []Policy {
	return c.policies
}
