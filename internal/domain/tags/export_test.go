package tags

import "time"

func SetNow(s *Service, now func() time.Time) {
	s.now = now
}

func SetCodeSource(s *Service, next func() (string, error)) {
	s.newCode = next
}
