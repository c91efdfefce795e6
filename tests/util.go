package testutil

import (
	"io/ioutil"
	"log"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/edupredict/predictcli/core"
	logsvc "github.com/edupredict/predictcli/services/logger"
)

// Logger returns a silent core.Logger for tests.
func Logger() core.Logger {
	return logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
}

// MakeJWT mints an unsigned-verification-friendly token with the given
// expiry, for exercising the client-side expiry check.
func MakeJWT(exp time.Time) string {
	claims := &jwt.StandardClaims{ExpiresAt: exp.Unix(), IssuedAt: time.Now().Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return ss
}
