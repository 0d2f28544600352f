package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/guilhermedcampos/event-management-system/internal/ems"
)

const maxLineSize = 1 << 20

var (
	seatListPattern = regexp.MustCompile(`^(\(\d+,\d+\))+$`)
	seatPattern     = regexp.MustCompile(`\((\d+),(\d+)\)`)
)

// Parser reads commands from a script, one line at a time.
type Parser struct {
	scanner *bufio.Scanner
	line    int
}

// NewParser creates a parser over r.
func NewParser(r io.Reader) *Parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Parser{scanner: scanner}
}

// Next parses the next line.
// Returns io.EOF at the end of the script and a STREAM_IO_ERROR if reading
// fails. Malformed lines are not errors: they come back as KindInvalid.
func (p *Parser) Next() (Command, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return Command{}, ems.NewStreamError(fmt.Sprintf("read script after line %d", p.line), err)
		}
		return Command{}, io.EOF
	}
	p.line++

	cmd := Parse(p.scanner.Text())
	cmd.Line = p.line
	return cmd, nil
}

// Parse parses a single script line. Line is left unset.
func Parse(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return Command{Kind: KindEmpty}
	}

	args := strings.Fields(text)
	keyword := args[0]
	rest := strings.TrimSpace(text[len(keyword):])
	args = args[1:]

	var (
		cmd Command
		err error
	)
	switch keyword {
	case "CREATE":
		cmd, err = parseCreate(args)
	case "RESERVE":
		cmd, err = parseReserve(rest)
	case "SHOW":
		cmd, err = parseShow(args)
	case "LIST":
		cmd, err = parseBare(KindList, args)
	case "WAIT":
		cmd, err = parseWait(args)
	case "BARRIER":
		cmd, err = parseBare(KindBarrier, args)
	case "HELP":
		cmd, err = parseBare(KindHelp, args)
	default:
		err = fmt.Errorf("unknown command %q", keyword)
	}

	if err != nil {
		return Command{Kind: KindInvalid, Err: err}
	}
	return cmd
}

func parseCreate(args []string) (Command, error) {
	if len(args) != 3 {
		return Command{}, errors.New("usage: CREATE <event_id> <num_rows> <num_columns>")
	}
	id, err := parseUint(args[0], "event_id")
	if err != nil {
		return Command{}, err
	}
	rows, err := parseUint(args[1], "num_rows")
	if err != nil {
		return Command{}, err
	}
	cols, err := parseUint(args[2], "num_columns")
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindCreate, EventID: id, Rows: int(rows), Cols: int(cols)}, nil
}

func parseReserve(rest string) (Command, error) {
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return Command{}, errors.New("usage: RESERVE <event_id> [(<x1>,<y1>) ...]")
	}
	id, err := parseUint(fields[0], "event_id")
	if err != nil {
		return Command{}, err
	}

	list := strings.TrimSpace(rest[len(fields[0]):])
	if !strings.HasPrefix(list, "[") || !strings.HasSuffix(list, "]") {
		return Command{}, errors.New("seat list must be enclosed in brackets")
	}
	inner := strings.Join(strings.Fields(list[1:len(list)-1]), "")
	if !seatListPattern.MatchString(inner) {
		return Command{}, fmt.Errorf("malformed seat list %q", list)
	}

	matches := seatPattern.FindAllStringSubmatch(inner, -1)
	if len(matches) > ems.MaxReservationSize {
		return Command{}, fmt.Errorf("too many seats: %d > %d", len(matches), ems.MaxReservationSize)
	}

	seats := make([]ems.Seat, 0, len(matches))
	for _, m := range matches {
		row, err := strconv.Atoi(m[1])
		if err != nil {
			return Command{}, fmt.Errorf("invalid row %q", m[1])
		}
		col, err := strconv.Atoi(m[2])
		if err != nil {
			return Command{}, fmt.Errorf("invalid column %q", m[2])
		}
		seats = append(seats, ems.Seat{Row: row, Col: col})
	}
	return Command{Kind: KindReserve, EventID: id, Seats: seats}, nil
}

func parseShow(args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, errors.New("usage: SHOW <event_id>")
	}
	id, err := parseUint(args[0], "event_id")
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindShow, EventID: id}, nil
}

func parseWait(args []string) (Command, error) {
	if len(args) < 1 || len(args) > 2 {
		return Command{}, errors.New("usage: WAIT <delay_ms> [thread_id]")
	}
	ms, err := parseUint(args[0], "delay_ms")
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Kind: KindWait, Delay: time.Duration(ms) * time.Millisecond}

	if len(args) == 2 {
		target, err := parseUint(args[1], "thread_id")
		if err != nil {
			return Command{}, err
		}
		if target == 0 {
			return Command{}, errors.New("thread_id must be at least 1")
		}
		cmd.Target = int(target)
	}
	return cmd, nil
}

func parseBare(kind Kind, args []string) (Command, error) {
	if len(args) != 0 {
		return Command{}, fmt.Errorf("%s takes no arguments", kind)
	}
	return Command{Kind: kind}, nil
}

func parseUint(s, name string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return uint32(v), nil
}
