// Command hashpass reads a password from stdin and prints the bcrypt hash to
// put in admin.password_hash.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/wb-go/wbf/zlog"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	zlog.Init()
	log := zlog.Logger

	fmt.Fprint(os.Stderr, "admin password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatal().Err(err).Msg("failed to read password")
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		log.Fatal().Err(errors.New("empty password")).Msg("password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash password")
	}
	fmt.Println(string(hash))
}
