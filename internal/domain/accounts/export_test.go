package accounts

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Helpers solo para tests externos (accounts_test).

func SetFastHashing(s *Service) {
	s.cost = bcrypt.MinCost
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.MinCost)
}

func SetNow(s *Service, now func() time.Time) {
	s.now = now
}
