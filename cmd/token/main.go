// Command token mints access tokens for the ledger API. It signs with the
// same secret the server is configured with.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/plateledger/internal/server/auth"
	"github.com/spf13/pflag"
)

func main() {

	var (
		secret   string
		actorID  int64
		admin    bool
		validity time.Duration
	)

	fs := pflag.NewFlagSet("token", pflag.ExitOnError)
	fs.StringVarP(&secret, "secret", "s", os.Getenv("PLATELEDGER_SECRET"), "JWT HMAC secret key")
	fs.Int64VarP(&actorID, "actor", "i", 0, "actor id the token speaks for")
	fs.BoolVar(&admin, "admin", false, "allow roster, archive and audit calls")
	fs.DurationVarP(&validity, "validity", "t", 24*time.Hour, "token lifetime")
	_ = fs.Parse(os.Args[1:])

	if secret == "" || actorID == 0 {
		fmt.Fprintln(os.Stderr, "both --secret and --actor are required")
		fs.Usage()
		os.Exit(2)
	}

	token, err := auth.GenerateToken(actorID, admin, []byte(secret), validity)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)

}
