package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

func (s *Service) SetClock(now func() time.Time) { s.now = now }

// UseMinCost keeps password hashing fast in tests.
func (s *Service) UseMinCost() { s.cost = bcrypt.MinCost }
