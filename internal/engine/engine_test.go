package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guilhermedcampos/event-management-system/internal/command"
	"github.com/guilhermedcampos/event-management-system/internal/ems"
	"github.com/guilhermedcampos/event-management-system/internal/notify"
	"github.com/guilhermedcampos/event-management-system/internal/store"
	"github.com/guilhermedcampos/event-management-system/internal/testutil"
)

func runScript(t *testing.T, script string, opts ...Option) (string, *Report) {
	t.Helper()
	var out bytes.Buffer
	e := New(ems.NewTable(), &out, opts...)
	report, err := e.Run(context.Background(), command.NewParser(strings.NewReader(script)))
	require.NoError(t, err)
	return out.String(), report
}

func TestEngine_SingleWorkerScenario(t *testing.T) {
	script := "CREATE 1 2 2\nRESERVE 1 [(1,1)]\nSHOW 1\nRESERVE 1 [(1,1)]\nSHOW 1\n"

	out, report := runScript(t, script)

	assert.Equal(t, "1 0\n0 0\n1 0\n0 0\n", out)
	assert.Equal(t, 1, report.Generations)
	assert.Equal(t, 5, report.Lines)
	assert.Equal(t, 1, report.Failed, "second reserve of the same seat must fail")
}

func TestEngine_ListAndHelp(t *testing.T) {
	out, report := runScript(t, "LIST\nCREATE 3 1 1\nCREATE 1 1 1\nLIST\nHELP\n")

	var help bytes.Buffer
	require.NoError(t, ems.Help(&help))
	assert.Equal(t, "No events\nEvent: 3\nEvent: 1\n"+help.String(), out)
	assert.Zero(t, report.Failed)
}

func TestEngine_EmptyScript(t *testing.T) {
	out, report := runScript(t, "", WithWorkers(4))

	assert.Empty(t, out)
	assert.Equal(t, 1, report.Generations)
	assert.Zero(t, report.Lines)
}

func TestEngine_BarrierOrdersGenerations(t *testing.T) {
	script := strings.Join([]string{
		"CREATE 1 2 3",
		"BARRIER",
		"RESERVE 1 [(1,1) (2,3)]",
		"RESERVE 1 [(1,2)]",
		"RESERVE 1 [(2,1)]",
		"BARRIER",
		"SHOW 1",
		"",
	}, "\n")

	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			out, report := runScript(t, script, WithWorkers(n))

			assert.Equal(t, 3, report.Generations)
			assert.Zero(t, report.Failed)

			// Reservation ids depend on scheduling; the occupancy does not.
			rows := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
			require.Len(t, rows, 2)
			occupied := 0
			for _, row := range rows {
				for _, v := range strings.Fields(row) {
					if v != "0" {
						occupied++
					}
				}
			}
			assert.Equal(t, 4, occupied)
			assert.Equal(t, "0", strings.Fields(rows[1])[1], "seat (2,2) was never reserved")
		})
	}
}

func TestEngine_EveryLineExecutedOnceByOwner(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		switch {
		case i%9 == 8:
			lines = append(lines, "BARRIER")
		case i%7 == 3:
			lines = append(lines, "")
		case i%5 == 1:
			lines = append(lines, "WAIT 1")
		case i == 0:
			lines = append(lines, "CREATE 1 10 10")
		default:
			lines = append(lines, fmt.Sprintf("RESERVE 1 [(%d,%d)]", i/10+1, i%10+1))
		}
	}
	script := strings.Join(lines, "\n") + "\n"

	for _, n := range []int{1, 2, 3, 4, 7} {
		t.Run(fmt.Sprintf("workers=%d", n), func(t *testing.T) {
			journal := testutil.NewMemoryJournal()
			_, report := runScript(t, script, WithWorkers(n), WithJournal(journal), WithScript("s.jobs"))

			byLine := journal.ByLine("s.jobs")
			require.Len(t, byLine, len(lines))
			for line := 1; line <= len(lines); line++ {
				entries := byLine[line]
				require.Len(t, entries, 1, "line %d", line)
				assert.Equal(t, line%n+1, entries[0].Worker, "line %d owner", line)
			}
			assert.Equal(t, len(lines), report.Lines)
			assert.Equal(t, 5, report.Generations, "four barriers split the script into five generations")
		})
	}
}

func TestEngine_GenerationsDoNotOverlap(t *testing.T) {
	script := "CREATE 1 1 1\nRESERVE 1 [(1,1)]\nWAIT 5\nBARRIER\nSHOW 1\nLIST\nBARRIER\nHELP\n"
	journal := testutil.NewMemoryJournal()

	runScript(t, script, WithWorkers(3), WithJournal(journal))

	entries := journal.Entries()
	require.Len(t, entries, 8)
	for i := 1; i < len(entries); i++ {
		assert.LessOrEqual(t, entries[i-1].Generation, entries[i].Generation,
			"entry seq %d (gen %d) journaled after seq %d (gen %d)",
			entries[i-1].Seq, entries[i-1].Generation, entries[i].Seq, entries[i].Generation)
	}
	byLine := journal.ByLine("")
	assert.Equal(t, 1, byLine[4][0].Generation, "barrier belongs to the generation it ends")
	assert.Equal(t, 2, byLine[5][0].Generation)
	assert.Equal(t, 3, byLine[8][0].Generation)
}

func TestEngine_UntargetedWaitSleepsEveryWorker(t *testing.T) {
	start := time.Now()
	runScript(t, "WAIT 60\n", WithWorkers(3))
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestEngine_TargetedWaitReachesTarget(t *testing.T) {
	// Line 1 belongs to worker 2 and targets worker 1.
	journal := testutil.NewMemoryJournal()
	start := time.Now()

	_, report := runScript(t, "WAIT 80 1\nBARRIER\nLIST\n", WithWorkers(2), WithJournal(journal))

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	assert.Equal(t, 2, report.Generations)

	wait := journal.ByLine("")[1]
	require.Len(t, wait, 1)
	assert.Equal(t, 2, wait[0].Worker)
	assert.Equal(t, "WAIT", wait[0].Kind)
	assert.Equal(t, store.OutcomeOK, wait[0].Outcome)
}

func TestEngine_WaitTargetOutOfRange(t *testing.T) {
	journal := testutil.NewMemoryJournal()
	start := time.Now()

	_, report := runScript(t, "WAIT 5000 9\n", WithWorkers(2), WithJournal(journal))

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, report.Failed)
	wait := journal.ByLine("")[1]
	require.Len(t, wait, 1)
	assert.Equal(t, "no such worker", wait[0].Message)
}

func TestEngine_TargetedWaitAsLastLine(t *testing.T) {
	// Line 1 belongs to worker 2 and targets worker 1; nothing follows it.
	start := time.Now()
	_, report := runScript(t, "WAIT 200 1\n", WithWorkers(2))

	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, 1, report.Generations)
}

func TestEngine_TargetedWaitSleepsOnlyTarget(t *testing.T) {
	// Worker 1 sleeps before executing line 2; worker 2 runs line 3 at once.
	journal := testutil.NewMemoryJournal()
	runScript(t, "WAIT 150 1\nLIST\nLIST\n", WithWorkers(2), WithJournal(journal))

	byLine := journal.ByLine("")
	require.Len(t, byLine[2], 1)
	require.Len(t, byLine[3], 1)
	assert.Equal(t, 1, byLine[2][0].Worker)
	assert.Equal(t, 2, byLine[3][0].Worker)
	assert.Less(t, byLine[3][0].Seq, byLine[2][0].Seq)
}

func TestEngine_FailuresAreJournaledAndCounted(t *testing.T) {
	script := "SHOW 9\nCREATE 1 1 1\nCREATE 1 2 2\nRESERVE 1 [(2,2)]\nBOGUS\nRESERVE 1 [(1,1) (1,1)]\n"
	journal := testutil.NewMemoryJournal()

	out, report := runScript(t, script, WithJournal(journal), WithRunID("r1"), WithScript("x.jobs"))

	assert.Empty(t, out)
	assert.Equal(t, 5, report.Failed)

	byLine := journal.ByLine("x.jobs")
	want := map[int]string{
		1: string(ems.CodeEventNotFound),
		2: store.OutcomeOK,
		3: string(ems.CodeDuplicateEvent),
		4: string(ems.CodeInvalidSeat),
		5: OutcomeInvalid,
		6: string(ems.CodeDuplicateSeatInRequest),
	}
	for line, outcome := range want {
		require.Len(t, byLine[line], 1)
		assert.Equal(t, outcome, byLine[line][0].Outcome, "line %d", line)
		assert.Equal(t, "r1", byLine[line][0].RunID)
	}
	assert.NotEmpty(t, byLine[5][0].Message)
}

func TestEngine_JournalFailureDoesNotStopScript(t *testing.T) {
	journal := testutil.NewMemoryJournal()
	journal.FailAppends()

	out, report := runScript(t, "CREATE 1 1 2\nRESERVE 1 [(1,2)]\nSHOW 1\n", WithJournal(journal))

	assert.Equal(t, "0 1\n", out)
	assert.Zero(t, report.Failed)
}

func TestEngine_PublishesConfirmedReservations(t *testing.T) {
	rec := notify.NewRecorder()

	runScript(t, "CREATE 4 2 2\nRESERVE 4 [(1,1) (2,2)]\nRESERVE 4 [(1,1)]\nRESERVE 4 [(1,2)]\n",
		WithPublisher(rec), WithScript("p.jobs"), WithRunID("run"))

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, uint32(4), events[0].EventID)
	assert.Equal(t, uint32(1), events[0].ReservationID)
	assert.Equal(t, []ems.Seat{{Row: 1, Col: 1}, {Row: 2, Col: 2}}, events[0].Seats)
	assert.Equal(t, 2, events[0].Line)
	assert.Equal(t, "p.jobs", events[0].Script)
	assert.Equal(t, uint32(2), events[1].ReservationID)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, notify.ReservationConfirmed) error {
	return errors.New("broker down")
}

func TestEngine_PublishFailureKeepsReservation(t *testing.T) {
	out, report := runScript(t, "CREATE 1 1 1\nRESERVE 1 [(1,1)]\nSHOW 1\n", WithPublisher(failingPublisher{}))

	assert.Equal(t, "1\n", out)
	assert.Zero(t, report.Failed)
}

func TestEngine_ConcurrentDisjointReservations(t *testing.T) {
	const size = 12
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE 1 %d %d\nBARRIER\n", size, size)
	for r := 1; r <= size; r++ {
		for c := 1; c <= size; c++ {
			fmt.Fprintf(&b, "RESERVE 1 [(%d,%d)]\n", r, c)
		}
	}
	b.WriteString("BARRIER\nSHOW 1\n")

	out, report := runScript(t, b.String(), WithWorkers(8))
	assert.Zero(t, report.Failed)

	seen := make(map[string]bool)
	for _, v := range strings.Fields(out) {
		assert.NotEqual(t, "0", v)
		assert.False(t, seen[v], "reservation id %s issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, size*size)
}

type brokenSource struct {
	lines []string
	n     int
}

func (s *brokenSource) Next() (command.Command, error) {
	if s.n < len(s.lines) {
		s.n++
		cmd := command.Parse(s.lines[s.n-1])
		cmd.Line = s.n
		return cmd, nil
	}
	return command.Command{}, io.ErrUnexpectedEOF
}

func TestEngine_ReadErrorAbortsScriptAfterGeneration(t *testing.T) {
	var out bytes.Buffer
	e := New(ems.NewTable(), &out, WithWorkers(2))

	report, err := e.Run(context.Background(), &brokenSource{lines: []string{"CREATE 1 1 1", "BARRIER", "LIST"}})

	require.Error(t, err)
	assert.Equal(t, ems.CodeStreamIO, ems.CodeOf(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 2, report.Generations)
	assert.Equal(t, 3, report.Lines)
	assert.Equal(t, "Event: 1\n", out.String())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "barrier", HitBarrier.String())
	assert.Equal(t, "unknown", Status(42).String())
}
