package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/HerbHall/pollnow/internal/auth"
)

// runHashPassword prints a bcrypt hash for auth.admin_password_hash.
// The password is read from the first line of stdin.
func runHashPassword(args []string) {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	cost := fs.Int("cost", 0, "bcrypt cost (0 uses the library default)")
	_ = fs.Parse(args)

	fmt.Fprint(os.Stderr, "Password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintf(os.Stderr, "\nfailed to read password: %v\n", err)
		os.Exit(1)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := auth.ValidatePassword(password); err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	hash, err := auth.HashPassword(password, *cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Println(hash)
}
