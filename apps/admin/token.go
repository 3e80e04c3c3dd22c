package main

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt"

	echoapi "github.com/casitakids/backend/apps/api/echo"
)

// token mints a signed API access token for the given user.
func (cli *commandLine) token(userID int, name, email string, isAdmin bool) error {
	claims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{Subject: strconv.Itoa(userID)},
		Name:           name,
		Email:          email,
		IsAdmin:        isAdmin,
	}
	ss, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(ss)
	return nil
}
