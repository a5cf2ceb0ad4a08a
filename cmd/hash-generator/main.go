// Command hash-generator prints bcrypt hashes for provisioning users by
// hand, and can generate a random signing secret.
//
//	hash-generator                 prompt for a password without echo
//	hash-generator -cost 12 pw...  hash each argument
//	hash-generator -secret         print a random 256-bit hex secret
package main

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/phrazzld/bookshelf-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// readPassword reads a password from fd without echo. Tests replace it.
var readPassword = term.ReadPassword

func main() {
	cost := flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	secret := flag.Bool("secret", false, "print a random signing secret and exit")
	flag.Parse()

	if err := run(os.Stdout, os.Stdin, *cost, *secret, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, in *os.File, cost int, secret bool, passwords []string) error {
	if secret {
		s, err := generateSecret(auth.MinSecretLength)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	}

	if len(passwords) == 0 {
		pw, err := promptPassword(w, in)
		if err != nil {
			return err
		}
		passwords = []string{pw}
	}

	hasher := auth.NewBcryptVerifier(cost)
	for _, pw := range passwords {
		hash, err := hasher.Hash(pw)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, hash); err != nil {
			return err
		}
	}
	return nil
}

// promptPassword reads a password from the terminal, or a single line
// when input is piped.
func promptPassword(w io.Writer, in *os.File) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return nonEmpty(strings.TrimRight(line, "\r\n"))
	}

	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return nonEmpty(string(pw))
}

func nonEmpty(pw string) (string, error) {
	if pw == "" {
		return "", errors.New("password must not be empty")
	}
	return pw, nil
}

// generateSecret returns n random bytes, hex encoded.
func generateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
