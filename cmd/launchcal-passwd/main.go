package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/ulifigueroa/rocket-launches-calendar/internal/auth"
)

func main() {
	file := flag.String("file", "launchcal.secret", "Path to the credentials file")
	overwrite := flag.Bool("overwrite", false, "Overwrite an existing credentials file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: launchcal-passwd [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Creates a credentials file with an Argon2id password hash for auth method basic.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if _, err := os.Stat(*file); err == nil && !*overwrite {
		fmt.Fprintf(os.Stderr, "%s already exists, use -overwrite to replace it\n", *file)
		os.Exit(1)
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Enter username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading username: %v\n", err)
		os.Exit(1)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		fmt.Fprintln(os.Stderr, "Username cannot be empty")
		os.Exit(1)
	}

	password, err := readPassword(reader, "Enter password:   ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	confirm, err := readPassword(reader, "Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password confirmation: %v\n", err)
		os.Exit(1)
	}

	if password == "" {
		fmt.Fprintln(os.Stderr, "Password cannot be empty")
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "Passwords do not match")
		os.Exit(1)
	}

	if err := auth.WriteCredentials(*file, username, password); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s\n", *file)
	fmt.Println("\nAdd this to your config.yaml:")
	fmt.Printf("\nauth:\n  method: basic\n  credentialsFile: %q\n", *file)
}

// readPassword reads a line without echo when stdin is a terminal
func readPassword(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		return string(password), err
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
