package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"tinybasic/pkg/program"
)

// ErrLineTooLong is returned for an input line over program.MaxLineLength
// bytes. The rest of that line is discarded and reading can continue.
var ErrLineTooLong = fmt.Errorf("line longer than %d bytes", program.MaxLineLength)

// ReaderInput reads lines from r, echoing each prompt to w first.
type ReaderInput struct {
	r *bufio.Reader
	w io.Writer
}

func NewReaderInput(r io.Reader, w io.Writer) *ReaderInput {
	return &ReaderInput{r: bufio.NewReader(r), w: w}
}

func (ri *ReaderInput) ReadLine(prompt string) (string, error) {
	if prompt != "" && ri.w != nil {
		if _, err := io.WriteString(ri.w, prompt); err != nil {
			return "", err
		}
	}

	var line []byte
	tooLong := false
	for {
		chunk, err := ri.r.ReadSlice('\n')
		if !tooLong {
			n := len(chunk)
			if n > 0 && chunk[n-1] == '\n' {
				n--
			}
			if len(line)+n > program.MaxLineLength {
				tooLong, line = true, nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			// A last line without a newline still counts.
			if errors.Is(err, io.EOF) && (len(line) > 0 || tooLong) {
				break
			}
			return "", err
		}
		break
	}

	if tooLong {
		return "", ErrLineTooLong
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}
