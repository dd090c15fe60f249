package judge

import "context"

// StubBackend returns canned replies in order, for tests and dry runs.
type StubBackend struct {
	Replies []string
	Errs    []error
	calls   int
}

func (s *StubBackend) Complete(ctx context.Context, system, user string) (string, error) {
	i := s.calls
	s.calls++
	var err error
	if i < len(s.Errs) {
		err = s.Errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.Replies) {
		return s.Replies[i], nil
	}
	if len(s.Replies) > 0 {
		return s.Replies[len(s.Replies)-1], nil
	}
	return "", context.Canceled
}

// Calls reports how many times the backend was invoked.
func (s *StubBackend) Calls() int { return s.calls }
