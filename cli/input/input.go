package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal is a terminal used for input. If `nil`, stdin is used.
var Terminal *term.Terminal

// ReadWriter combines reader and writer.
type ReadWriter struct {
	io.Reader
	io.Writer
}

// ReadLine reads a line from the input without trailing '\n'.
func ReadLine(prompt string) (string, error) {
	trm := Terminal
	if trm == nil {
		s, err := readLine(os.Stdout, prompt)
		return strings.TrimRight(s, "\r\n"), err
	}
	_, err := trm.Write([]byte(prompt))
	if err != nil {
		return "", err
	}
	return trm.ReadLine()
}

func readLine(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	buf := bufio.NewReader(os.Stdin)
	return buf.ReadString('\n')
}

// ReadPassword reads the user's password with prompt.
func ReadPassword(prompt string) (string, error) {
	if Terminal != nil {
		return Terminal.ReadPassword(prompt)
	}
	return readSecurePassword(prompt)
}

// ConfirmPassword reads the password twice and returns it if both match.
func ConfirmPassword(prompt string) (string, error) {
	phrase, err := ReadPassword(prompt)
	if err != nil {
		return "", err
	}
	phraseCheck, err := ReadPassword("Confirm passphrase > ")
	if err != nil {
		return "", err
	}
	if phrase != phraseCheck {
		return "", errors.New("the passphrases do not match")
	}
	return phrase, nil
}
