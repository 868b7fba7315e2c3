package listings

import "time"

func SetNow(s *Service, now func() time.Time) {
	s.now = now
}

func RepoOf(s *Service) Repository { return s.repo }
