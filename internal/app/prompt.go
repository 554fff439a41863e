package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// PasswordPrompt はパスワードを対話的に読み取るインターフェース。
type PasswordPrompt interface {
	ReadPassword(label string) (string, error)
}

// terminalPrompt は端末からエコーなしでパスワードを読み取る。
// 標準入力が端末でない場合（パイプ入力）は1行ずつ読み取る。
type terminalPrompt struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func newTerminalPrompt(in *os.File, out io.Writer) *terminalPrompt {
	return &terminalPrompt{in: in, out: out, reader: bufio.NewReader(in)}
}

// ReadPassword はlabelを表示してパスワードを1つ読み取る。
func (p *terminalPrompt) ReadPassword(label string) (string, error) {
	fmt.Fprint(p.out, label)

	fd := int(p.in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
