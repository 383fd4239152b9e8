package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// promptConfirm asks a yes/no question. Anything but "y" or "yes" is a no,
// including end of input.
func promptConfirm(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)

	input, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// promptValue asks for a value, returning def when the answer is empty.
func promptValue(in *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	input, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// promptBool asks a yes/no setting with a default.
func promptBool(in *bufio.Reader, out io.Writer, label string, def bool) (bool, error) {
	defStr := "n"
	if def {
		defStr = "y"
	}

	for {
		answer, err := promptValue(in, out, label+" (y/n)", defStr)
		if err != nil {
			return def, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes", "true":
			return true, nil
		case "n", "no", "false":
			return false, nil
		}
		fmt.Fprintln(out, "Invalid choice, please try again.")
	}
}
