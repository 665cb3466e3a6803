package integration

import (
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"
)

func (s *StepsContext) registerAuthSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I use an expired token for "([^"]*)"$`, s.iUseAnExpiredTokenFor)
	sc.Step(`^I use a token for "([^"]*)" signed with "([^"]*)"$`, s.iUseATokenSignedWith)
	sc.Step(`^I use the bearer token "([^"]*)"$`, s.iUseTheBearerToken)
}

func (s *StepsContext) iUseAnExpiredTokenFor(subject string) error {
	now := time.Now()
	return s.sign(s.tc.Secret, jwt.RegisteredClaims{
		Issuer:    "snowforge",
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	})
}

func (s *StepsContext) iUseATokenSignedWith(subject, key string) error {
	return s.sign([]byte(key), jwt.RegisteredClaims{
		Issuer:    "snowforge",
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func (s *StepsContext) iUseTheBearerToken(token string) error {
	s.authToken = token
	return nil
}

func (s *StepsContext) sign(key []byte, claims jwt.RegisteredClaims) error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return err
	}
	s.authToken = token
	return nil
}
